package party

import (
	"strings"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// Address is a postal address of a party. Once stored it is never
// modified by reconciliation.
type Address struct {
	shared.BaseEntity
	PartyID     uuid.UUID
	Name        string
	Street      string
	PostalCode  string
	City        string
	CountryCode string
	// SubdivisionID is nil when the state text could not be resolved
	// against the registry; SubdivisionName then holds the raw text.
	SubdivisionID   *uuid.UUID
	SubdivisionName string
}

// AddressInput is an address as received from a marketplace, before
// normalisation and registry resolution
type AddressInput struct {
	Name            string
	StreetLines     []string
	PostalCode      string
	City            string
	CountryCode     string
	StateOrProvince string
}

// NewAddressCandidate normalises an input into an unsaved address. The
// subdivision, when resolved, replaces the free-text state.
func NewAddressCandidate(in AddressInput, country *Country, subdivision *Subdivision) (*Address, error) {
	if country == nil {
		return nil, ErrInvalidAddress
	}
	a := &Address{
		Name:            NormalizeText(in.Name),
		Street:          NormalizeMultiline(in.StreetLines...),
		PostalCode:      strings.ToUpper(NormalizeText(in.PostalCode)),
		City:            NormalizeText(in.City),
		CountryCode:     strings.ToUpper(country.Code),
		SubdivisionName: NormalizeText(in.StateOrProvince),
	}
	if subdivision != nil {
		id := subdivision.ID
		a.SubdivisionID = &id
		a.SubdivisionName = subdivision.Name
	}
	return a, nil
}

// AttachTo assigns an identity and owner to a candidate address
func (a *Address) AttachTo(partyID uuid.UUID) {
	a.BaseEntity = shared.NewBaseEntity()
	a.PartyID = partyID
}
