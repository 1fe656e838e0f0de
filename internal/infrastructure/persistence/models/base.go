package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and timestamps every table carries
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	*m = BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&ChannelModel{},
		&MarketplaceSettingsModel{},
		&CountryModel{},
		&SubdivisionModel{},
		&PartyModel{},
		&PartyIdentityModel{},
		&AddressModel{},
		&ContactMechanismModel{},
		&ProductTemplateModel{},
		&ProductModel{},
		&ProductItemModel{},
		&SaleModel{},
		&SaleLineModel{},
		&OrderSyncRecordModel{},
	}
}
