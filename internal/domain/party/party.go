// Package party models buyers imported from a marketplace: the party
// itself, its postal addresses, its contact mechanisms, and the
// country/subdivision registry used to resolve free-text addresses.
package party

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Party Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidPartyName   = errors.New("party: name is required")
	ErrInvalidBuyer       = errors.New("party: marketplace user id is required")
	ErrDuplicateParty     = errors.New("party: a party already exists for this marketplace user")
	ErrDuplicateContact   = errors.New("party: contact mechanism already exists")
	ErrInvalidContactType = errors.New("party: invalid contact mechanism type")
	ErrInvalidPhone       = errors.New("party: phone number is empty after normalisation")
	ErrInvalidEmail       = errors.New("party: invalid email address")
	ErrUnknownCountry     = errors.New("party: unknown country code")
	ErrUnknownSubdivision = errors.New("party: unknown subdivision")
	ErrInvalidAddress     = errors.New("party: address requires a country")
)

// MarketplaceIdentity links a party to the user id a marketplace knows it
// by. (Source, ExternalUserID) is globally unique.
type MarketplaceIdentity struct {
	PartyID        uuid.UUID
	Source         string
	ExternalUserID string
}

// Party is a buyer known to the shop
type Party struct {
	shared.BaseEntity
	Name              string
	Identity          *MarketplaceIdentity
	Addresses         []Address
	ContactMechanisms []ContactMechanism
}

// NewParty creates a party with the given display name
func NewParty(name string) (*Party, error) {
	name = NormalizeText(name)
	if name == "" {
		return nil, ErrInvalidPartyName
	}
	return &Party{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// NewMarketplaceParty creates a party for a marketplace buyer. The user id
// doubles as the party name. An email contact is attached when the email
// is well formed; marketplaces mask addresses with placeholders like
// "Invalid Request", which are dropped.
func NewMarketplaceParty(source, userID, email string) (*Party, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidBuyer
	}
	p, err := NewParty(userID)
	if err != nil {
		return nil, err
	}
	p.Identity = &MarketplaceIdentity{
		PartyID:        p.ID,
		Source:         source,
		ExternalUserID: userID,
	}
	if email = strings.TrimSpace(email); email != "" {
		if cm, err := NewContactMechanism(p.ID, ContactTypeEmail, email); err == nil {
			p.ContactMechanisms = append(p.ContactMechanisms, *cm)
		}
	}
	return p, nil
}

// FindContact returns the contact mechanism with the given type and
// already-normalised value
func (p *Party) FindContact(typ ContactType, value string) *ContactMechanism {
	for i := range p.ContactMechanisms {
		cm := &p.ContactMechanisms[i]
		if cm.Type == typ && cm.Value == value {
			return cm
		}
	}
	return nil
}

// Phone returns the first phone number of the party, if any
func (p *Party) Phone() string {
	for _, cm := range p.ContactMechanisms {
		if cm.Type == ContactTypePhone {
			return cm.Value
		}
	}
	return ""
}

// Email returns the first email address of the party, if any
func (p *Party) Email() string {
	for _, cm := range p.ContactMechanisms {
		if cm.Type == ContactTypeEmail {
			return cm.Value
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Repository persists parties with their addresses and contacts
type Repository interface {
	// FindByIdentity loads a party with addresses and contact mechanisms.
	// Returns shared.ErrNotFound when no party carries the identity.
	FindByIdentity(ctx context.Context, source, externalUserID string) (*Party, error)
	// Create persists the party, its identity and its contact mechanisms.
	// Returns ErrDuplicateParty when the identity is already taken.
	Create(ctx context.Context, p *Party) error
	AddAddress(ctx context.Context, a *Address) error
	// AddContactMechanism returns ErrDuplicateContact on a
	// (party, type, value) collision.
	AddContactMechanism(ctx context.Context, cm *ContactMechanism) error
}

// Registry resolves countries and their subdivisions
type Registry interface {
	// FindCountry returns ErrUnknownCountry for codes not in the registry
	FindCountry(ctx context.Context, code string) (*Country, error)
	ListSubdivisions(ctx context.Context, countryCode string) ([]Subdivision, error)
}
