package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChannelRepository implements channel.Repository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// FindByID finds a channel with its marketplace settings
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).Preload("Marketplace").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource lists the channels of a source that have marketplace settings
func (r *GormChannelRepository) FindBySource(ctx context.Context, source channel.Source) ([]channel.Channel, error) {
	var channelModels []models.ChannelModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN channel_marketplace_settings ON channel_marketplace_settings.channel_id = channels.id").
		Preload("Marketplace").
		Where("channels.source = ?", string(source)).
		Order("channels.name ASC").
		Find(&channelModels).Error; err != nil {
		return nil, err
	}

	channels := make([]channel.Channel, len(channelModels))
	for i := range channelModels {
		channels[i] = *channelModels[i].ToDomain()
	}
	return channels, nil
}

// Create stores a channel and, when present, its marketplace settings
func (r *GormChannelRepository) Create(ctx context.Context, ch *channel.Channel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(models.ChannelModelFromDomain(ch)).Error; err != nil {
			return err
		}
		if ch.Marketplace == nil {
			return nil
		}
		ch.Marketplace.ChannelID = ch.ID
		if err := tx.Create(models.MarketplaceSettingsModelFromDomain(ch.Marketplace)).Error; err != nil {
			if isUniqueViolation(err) {
				return channel.ErrDuplicateCredentials
			}
			return err
		}
		return nil
	})
}

// AdvanceCursor moves last_import_time forward to t. A stored value later
// than t is left untouched.
func (r *GormChannelRepository) AdvanceCursor(ctx context.Context, channelID uuid.UUID, t time.Time) error {
	t = t.UTC()
	result := r.db.WithContext(ctx).
		Model(&models.MarketplaceSettingsModel{}).
		Where("channel_id = ? AND last_import_time <= ?", channelID, t).
		Updates(map[string]any{
			"last_import_time": t,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MarketplaceSettingsModel{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return channel.ErrMarketplaceNotConfigured
	}
	return nil
}

// Ensure GormChannelRepository implements channel.Repository
var _ channel.Repository = (*GormChannelRepository)(nil)
