package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByExternalOrder finds the sale imported for a marketplace order
func (r *GormSaleRepository) FindByExternalOrder(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Where("channel_id = ? AND external_order_id = ?", channelID, externalOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Withf("sale for order %s", externalOrderID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create stores a sale and its lines
func (r *GormSaleRepository) Create(ctx context.Context, s *trade.Sale) error {
	model := models.SaleModelFromDomain(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return trade.ErrDuplicateSale
			}
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
}

// Ensure GormSaleRepository implements trade.SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
