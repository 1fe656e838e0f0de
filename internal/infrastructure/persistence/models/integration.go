package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
)

// OrderSyncRecordModel is the persistence model for order sync records
type OrderSyncRecordModel struct {
	BaseModel
	ChannelID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_order_sync_channel_order,priority:1"`
	ExternalOrderID string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_sync_channel_order,priority:2"`
	SaleID          *uuid.UUID `gorm:"type:uuid"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	ErrorMessage    string     `gorm:"type:text"`
	Attempts        int        `gorm:"not null;default:0"`
	LastAttemptAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSyncRecordModel) TableName() string {
	return "order_sync_records"
}

// ToDomain converts the model to a domain record
func (m *OrderSyncRecordModel) ToDomain() *integration.OrderSyncRecord {
	return &integration.OrderSyncRecord{
		ID:              m.ID,
		ChannelID:       m.ChannelID,
		ExternalOrderID: m.ExternalOrderID,
		SaleID:          m.SaleID,
		Status:          integration.SyncStatus(m.Status),
		ErrorMessage:    m.ErrorMessage,
		Attempts:        m.Attempts,
		LastAttemptAt:   m.LastAttemptAt.UTC(),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// OrderSyncRecordModelFromDomain converts a domain record to a model
func OrderSyncRecordModelFromDomain(r *integration.OrderSyncRecord) *OrderSyncRecordModel {
	return &OrderSyncRecordModel{
		BaseModel: BaseModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		ChannelID:       r.ChannelID,
		ExternalOrderID: r.ExternalOrderID,
		SaleID:          r.SaleID,
		Status:          string(r.Status),
		ErrorMessage:    r.ErrorMessage,
		Attempts:        r.Attempts,
		LastAttemptAt:   r.LastAttemptAt,
	}
}
