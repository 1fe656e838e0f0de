package models

import (
	"github.com/erp/marketsync/internal/domain/party"
	"github.com/google/uuid"
)

// PartyModel is the persistence model for parties
type PartyModel struct {
	BaseModel
	Name              string                  `gorm:"type:varchar(200);not null;index"`
	Identity          *PartyIdentityModel     `gorm:"foreignKey:PartyID"`
	Addresses         []AddressModel          `gorm:"foreignKey:PartyID"`
	ContactMechanisms []ContactMechanismModel `gorm:"foreignKey:PartyID"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the model, with any preloaded children, to a party
func (m *PartyModel) ToDomain() *party.Party {
	p := &party.Party{
		BaseEntity:        m.BaseModel.entity(),
		Name:              m.Name,
		Addresses:         make([]party.Address, len(m.Addresses)),
		ContactMechanisms: make([]party.ContactMechanism, len(m.ContactMechanisms)),
	}
	if m.Identity != nil {
		p.Identity = &party.MarketplaceIdentity{
			PartyID:        m.Identity.PartyID,
			Source:         m.Identity.Source,
			ExternalUserID: m.Identity.ExternalUserID,
		}
	}
	for i := range m.Addresses {
		p.Addresses[i] = *m.Addresses[i].ToDomain()
	}
	for i := range m.ContactMechanisms {
		p.ContactMechanisms[i] = *m.ContactMechanisms[i].ToDomain()
	}
	return p
}

// PartyModelFromDomain converts a party to its model, without children
func PartyModelFromDomain(p *party.Party) *PartyModel {
	m := &PartyModel{Name: p.Name}
	m.setEntity(p.BaseEntity)
	return m
}

// PartyIdentityModel links a party to a marketplace user id.
// (source, external_user_id) is the global buyer identity namespace.
type PartyIdentityModel struct {
	PartyID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Source         string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_party_identity_source_user,priority:1"`
	ExternalUserID string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_party_identity_source_user,priority:2"`
}

// TableName returns the table name for GORM
func (PartyIdentityModel) TableName() string {
	return "party_marketplace_identities"
}

// AddressModel is the persistence model for party addresses
type AddressModel struct {
	BaseModel
	PartyID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name            string     `gorm:"type:varchar(200)"`
	Street          string     `gorm:"type:text"`
	PostalCode      string     `gorm:"type:varchar(20)"`
	City            string     `gorm:"type:varchar(100)"`
	CountryCode     string     `gorm:"type:varchar(2);not null"`
	SubdivisionID   *uuid.UUID `gorm:"type:uuid"`
	SubdivisionName string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "party_addresses"
}

// ToDomain converts the model to a domain address
func (m *AddressModel) ToDomain() *party.Address {
	return &party.Address{
		BaseEntity:      m.BaseModel.entity(),
		PartyID:         m.PartyID,
		Name:            m.Name,
		Street:          m.Street,
		PostalCode:      m.PostalCode,
		City:            m.City,
		CountryCode:     m.CountryCode,
		SubdivisionID:   m.SubdivisionID,
		SubdivisionName: m.SubdivisionName,
	}
}

// AddressModelFromDomain converts a domain address to its model
func AddressModelFromDomain(a *party.Address) *AddressModel {
	m := &AddressModel{
		PartyID:         a.PartyID,
		Name:            a.Name,
		Street:          a.Street,
		PostalCode:      a.PostalCode,
		City:            a.City,
		CountryCode:     a.CountryCode,
		SubdivisionID:   a.SubdivisionID,
		SubdivisionName: a.SubdivisionName,
	}
	m.setEntity(a.BaseEntity)
	return m
}

// ContactMechanismModel is the persistence model for contact mechanisms.
// (party_id, type, value) is unique.
type ContactMechanismModel struct {
	BaseModel
	PartyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_party_type_value,priority:1"`
	Type    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_contact_party_type_value,priority:2"`
	Value   string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_contact_party_type_value,priority:3"`
}

// TableName returns the table name for GORM
func (ContactMechanismModel) TableName() string {
	return "party_contact_mechanisms"
}

// ToDomain converts the model to a domain contact mechanism
func (m *ContactMechanismModel) ToDomain() *party.ContactMechanism {
	return &party.ContactMechanism{
		BaseEntity: m.BaseModel.entity(),
		PartyID:    m.PartyID,
		Type:       party.ContactType(m.Type),
		Value:      m.Value,
	}
}

// ContactMechanismModelFromDomain converts a domain contact mechanism to its model
func ContactMechanismModelFromDomain(cm *party.ContactMechanism) *ContactMechanismModel {
	m := &ContactMechanismModel{
		PartyID: cm.PartyID,
		Type:    string(cm.Type),
		Value:   cm.Value,
	}
	m.setEntity(cm.BaseEntity)
	return m
}

// CountryModel is an ISO 3166-1 country
type CountryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code string    `gorm:"type:varchar(2);not null;uniqueIndex"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CountryModel) TableName() string {
	return "countries"
}

// ToDomain converts the model to a domain country
func (m *CountryModel) ToDomain() *party.Country {
	return &party.Country{ID: m.ID, Code: m.Code, Name: m.Name}
}

// SubdivisionModel is an ISO 3166-2 subdivision
type SubdivisionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CountryCode string    `gorm:"type:varchar(2);not null;index"`
	Code        string    `gorm:"type:varchar(10);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (SubdivisionModel) TableName() string {
	return "country_subdivisions"
}

// ToDomain converts the model to a domain subdivision
func (m *SubdivisionModel) ToDomain() party.Subdivision {
	return party.Subdivision{ID: m.ID, CountryCode: m.CountryCode, Code: m.Code, Name: m.Name}
}
