package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderSyncRecordRepository implements integration.OrderSyncRecordRepository
type GormOrderSyncRecordRepository struct {
	db *gorm.DB
}

// NewGormOrderSyncRecordRepository creates a new GormOrderSyncRecordRepository
func NewGormOrderSyncRecordRepository(db *gorm.DB) *GormOrderSyncRecordRepository {
	return &GormOrderSyncRecordRepository{db: db}
}

// FindByExternalOrder finds the record of a marketplace order
func (r *GormOrderSyncRecordRepository) FindByExternalOrder(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*integration.OrderSyncRecord, error) {
	var model models.OrderSyncRecordModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND external_order_id = ?", channelID, externalOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Withf("sync record for order %s", externalOrderID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a record keyed by (channel_id, external_order_id)
func (r *GormOrderSyncRecordRepository) Save(ctx context.Context, record *integration.OrderSyncRecord) error {
	model := models.OrderSyncRecordModelFromDomain(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "channel_id"}, {Name: "external_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sale_id", "status", "error_message", "attempts", "last_attempt_at", "updated_at",
			}),
		}).
		Create(model).Error
}

// List returns a page of a channel's records, most recent attempt first
func (r *GormOrderSyncRecordRepository) List(ctx context.Context, channelID uuid.UUID, filter integration.OrderSyncRecordFilter) ([]integration.OrderSyncRecord, int64, error) {
	page := filter.Filter.Normalize()
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("channel_id = ?", channelID)
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderSyncRecordModel{}).
		Scopes(scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recordModels []models.OrderSyncRecordModel
	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("last_attempt_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]integration.OrderSyncRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, total, nil
}

// Ensure GormOrderSyncRecordRepository implements integration.OrderSyncRecordRepository
var _ integration.OrderSyncRecordRepository = (*GormOrderSyncRecordRepository)(nil)
