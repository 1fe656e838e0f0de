package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/google/uuid"
)

// ChannelModel is the persistence model for sale channels
type ChannelModel struct {
	BaseModel
	Name        string                    `gorm:"type:varchar(200);not null"`
	Source      string                    `gorm:"type:varchar(20);not null;index"`
	DefaultUOM  string                    `gorm:"column:default_uom;type:varchar(50);not null"`
	Currency    string                    `gorm:"type:varchar(3);not null;default:'USD'"`
	Marketplace *MarketplaceSettingsModel `gorm:"foreignKey:ChannelID"`
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "channels"
}

// ToDomain converts the model to a domain channel
func (m *ChannelModel) ToDomain() *channel.Channel {
	ch := &channel.Channel{
		BaseEntity: m.BaseModel.entity(),
		Name:       m.Name,
		Source:     channel.Source(m.Source),
		DefaultUOM: m.DefaultUOM,
		Currency:   m.Currency,
	}
	if m.Marketplace != nil {
		ch.Marketplace = m.Marketplace.ToDomain()
	}
	return ch
}

// ChannelModelFromDomain converts a domain channel to its model, without
// the marketplace settings
func ChannelModelFromDomain(ch *channel.Channel) *ChannelModel {
	m := &ChannelModel{
		Name:       ch.Name,
		Source:     string(ch.Source),
		DefaultUOM: ch.DefaultUOM,
		Currency:   ch.Currency,
	}
	m.setEntity(ch.BaseEntity)
	return m
}

// MarketplaceSettingsModel is the marketplace extension of a channel.
// The credential tuple is unique.
type MarketplaceSettingsModel struct {
	ChannelID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	AppID          string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_marketplace_credentials,priority:1"`
	DevID          string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_marketplace_credentials,priority:2"`
	CertID         string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_marketplace_credentials,priority:3"`
	AuthToken      string    `gorm:"type:varchar(2048);not null;uniqueIndex:idx_marketplace_credentials,priority:4"`
	Sandbox        bool      `gorm:"not null;default:false"`
	SiteID         int       `gorm:"not null;default:0"`
	LastImportTime time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MarketplaceSettingsModel) TableName() string {
	return "channel_marketplace_settings"
}

// ToDomain converts the model to domain settings
func (m *MarketplaceSettingsModel) ToDomain() *channel.MarketplaceSettings {
	return &channel.MarketplaceSettings{
		ChannelID:      m.ChannelID,
		AppID:          m.AppID,
		DevID:          m.DevID,
		CertID:         m.CertID,
		AuthToken:      m.AuthToken,
		Sandbox:        m.Sandbox,
		SiteID:         m.SiteID,
		LastImportTime: m.LastImportTime.UTC(),
	}
}

// MarketplaceSettingsModelFromDomain converts domain settings to a model
func MarketplaceSettingsModelFromDomain(s *channel.MarketplaceSettings) *MarketplaceSettingsModel {
	return &MarketplaceSettingsModel{
		ChannelID:      s.ChannelID,
		AppID:          s.AppID,
		DevID:          s.DevID,
		CertID:         s.CertID,
		AuthToken:      s.AuthToken,
		Sandbox:        s.Sandbox,
		SiteID:         s.SiteID,
		LastImportTime: s.LastImportTime.UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}
