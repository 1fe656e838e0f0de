package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.Repository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByItemID finds the product linked to a marketplace item
func (r *GormProductRepository) FindByItemID(ctx context.Context, itemID string) (*catalog.Product, error) {
	var item models.ProductItemModel
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Withf("product for item %s", itemID)
		}
		return nil, err
	}

	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Item").
		First(&model, "id = ?", item.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Withf("product %s", item.ProductID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create stores the template, then the variant, then the item link, in one
// transaction
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	if p.Template == nil {
		return errors.New("product template is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ProductTemplateModelFromDomain(p.Template)).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(models.ProductModelFromDomain(p)).Error; err != nil {
			return err
		}
		if p.Item == nil {
			return nil
		}
		item := &models.ProductItemModel{
			ProductID: p.ID,
			Source:    p.Item.Source,
			ItemID:    p.Item.ItemID,
		}
		if err := tx.Create(item).Error; err != nil {
			if isUniqueViolation(err) {
				return catalog.ErrDuplicateItemID
			}
			return err
		}
		return nil
	})
}

// Ensure GormProductRepository implements catalog.Repository
var _ catalog.Repository = (*GormProductRepository)(nil)
