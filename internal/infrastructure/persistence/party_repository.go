package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/party"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartyRepository implements party.Repository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByIdentity loads the party linked to a marketplace user, with its
// addresses in creation order and its contact mechanisms
func (r *GormPartyRepository) FindByIdentity(ctx context.Context, source, externalUserID string) (*party.Party, error) {
	var identity models.PartyIdentityModel
	if err := r.db.WithContext(ctx).
		Where("source = ? AND external_user_id = ?", source, externalUserID).
		First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Withf("party identity %s/%s", source, externalUserID)
		}
		return nil, err
	}

	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		Preload("Identity").
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("ContactMechanisms", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", identity.PartyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Withf("party %s", identity.PartyID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create stores a party with its identity and contact mechanisms
func (r *GormPartyRepository) Create(ctx context.Context, p *party.Party) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(models.PartyModelFromDomain(p)).Error; err != nil {
			return err
		}
		if p.Identity != nil {
			identity := &models.PartyIdentityModel{
				PartyID:        p.ID,
				Source:         p.Identity.Source,
				ExternalUserID: p.Identity.ExternalUserID,
			}
			if err := tx.Create(identity).Error; err != nil {
				if isUniqueViolation(err) {
					return party.ErrDuplicateParty
				}
				return err
			}
		}
		for i := range p.ContactMechanisms {
			if err := tx.Create(models.ContactMechanismModelFromDomain(&p.ContactMechanisms[i])).Error; err != nil {
				if isUniqueViolation(err) {
					return party.ErrDuplicateContact
				}
				return err
			}
		}
		return nil
	})
}

// AddAddress stores a new address of a party
func (r *GormPartyRepository) AddAddress(ctx context.Context, a *party.Address) error {
	return r.db.WithContext(ctx).Create(models.AddressModelFromDomain(a)).Error
}

// AddContactMechanism stores a new contact mechanism of a party
func (r *GormPartyRepository) AddContactMechanism(ctx context.Context, cm *party.ContactMechanism) error {
	if err := r.db.WithContext(ctx).Create(models.ContactMechanismModelFromDomain(cm)).Error; err != nil {
		if isUniqueViolation(err) {
			return party.ErrDuplicateContact
		}
		return err
	}
	return nil
}

// Ensure GormPartyRepository implements party.Repository
var _ party.Repository = (*GormPartyRepository)(nil)
