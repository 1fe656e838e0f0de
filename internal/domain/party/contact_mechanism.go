package party

import (
	"net/mail"
	"strings"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactType is the kind of a contact mechanism
type ContactType string

const (
	ContactTypePhone   ContactType = "phone"
	ContactTypeMobile  ContactType = "mobile"
	ContactTypeEmail   ContactType = "email"
	ContactTypeWebsite ContactType = "website"
)

// IsValid returns true if the contact type is known
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypePhone, ContactTypeMobile, ContactTypeEmail, ContactTypeWebsite:
		return true
	}
	return false
}

// ContactMechanism is a way of reaching a party.
// (PartyID, Type, Value) is unique.
type ContactMechanism struct {
	shared.BaseEntity
	PartyID uuid.UUID
	Type    ContactType
	Value   string
}

// NewContactMechanism normalises value according to typ
func NewContactMechanism(partyID uuid.UUID, typ ContactType, value string) (*ContactMechanism, error) {
	if !typ.IsValid() {
		return nil, ErrInvalidContactType
	}
	normalized, err := normalizeContactValue(typ, value)
	if err != nil {
		return nil, err
	}
	return &ContactMechanism{
		BaseEntity: shared.NewBaseEntity(),
		PartyID:    partyID,
		Type:       typ,
		Value:      normalized,
	}, nil
}

func normalizeContactValue(typ ContactType, value string) (string, error) {
	switch typ {
	case ContactTypePhone, ContactTypeMobile:
		phone := NormalizePhone(value)
		if phone == "" {
			return "", ErrInvalidPhone
		}
		return phone, nil
	case ContactTypeEmail:
		email := strings.ToLower(strings.TrimSpace(value))
		if _, err := mail.ParseAddress(email); err != nil {
			return "", ErrInvalidEmail
		}
		return email, nil
	default:
		return strings.TrimSpace(value), nil
	}
}
