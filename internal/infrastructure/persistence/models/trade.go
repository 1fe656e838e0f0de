package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for sales.
// (channel_id, external_order_id) is unique.
type SaleModel struct {
	BaseModel
	ChannelID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sale_channel_order,priority:1"`
	ExternalOrderID   string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_sale_channel_order,priority:2"`
	PartyID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShipmentAddressID *uuid.UUID      `gorm:"type:uuid"`
	Reference         string          `gorm:"type:varchar(100)"`
	SaleDate          time.Time       `gorm:"not null"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	State             string          `gorm:"type:varchar(20);not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Lines             []SaleLineModel `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleLineModel is the persistence model for sale lines
type SaleLineModel struct {
	BaseModel
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:text"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExternalLineID string          `gorm:"type:varchar(100)"`
	Sequence       int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string {
	return "sale_lines"
}

// ToDomain converts the model, with preloaded lines, to a sale
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		BaseEntity:        m.BaseModel.entity(),
		ChannelID:         m.ChannelID,
		PartyID:           m.PartyID,
		ShipmentAddressID: m.ShipmentAddressID,
		ExternalOrderID:   m.ExternalOrderID,
		Reference:         m.Reference,
		SaleDate:          m.SaleDate.UTC(),
		Currency:          m.Currency,
		State:             trade.SaleState(m.State),
		Lines:             make([]trade.SaleLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		s.Lines[i] = trade.SaleLine{
			BaseEntity:     l.BaseModel.entity(),
			SaleID:         l.SaleID,
			ProductID:      l.ProductID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			ExternalLineID: l.ExternalLineID,
			Sequence:       l.Sequence,
		}
	}
	return s
}

// SaleModelFromDomain converts a sale, including its lines, to a model
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{
		ChannelID:         s.ChannelID,
		ExternalOrderID:   s.ExternalOrderID,
		PartyID:           s.PartyID,
		ShipmentAddressID: s.ShipmentAddressID,
		Reference:         s.Reference,
		SaleDate:          s.SaleDate,
		Currency:          s.Currency,
		State:             string(s.State),
		TotalAmount:       s.TotalAmount(),
		Lines:             make([]SaleLineModel, len(s.Lines)),
	}
	m.setEntity(s.BaseEntity)
	for i, l := range s.Lines {
		lm := SaleLineModel{
			SaleID:         s.ID,
			ProductID:      l.ProductID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			ExternalLineID: l.ExternalLineID,
			Sequence:       l.Sequence,
		}
		lm.setEntity(l.BaseEntity)
		m.Lines[i] = lm
	}
	return m
}
