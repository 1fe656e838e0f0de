package models

import (
	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductTemplateModel is the persistence model for product templates
type ProductTemplateModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null;index"`
	Description string          `gorm:"type:text"`
	Type        string          `gorm:"type:varchar(20);not null;default:'goods'"`
	ListPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DefaultUOM  string          `gorm:"column:default_uom;type:varchar(50);not null"`
	Salable     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductTemplateModel) TableName() string {
	return "product_templates"
}

// ProductModel is the persistence model for product variants
type ProductModel struct {
	BaseModel
	TemplateID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Template    *ProductTemplateModel `gorm:"foreignKey:TemplateID"`
	Code        string                `gorm:"type:varchar(100);index"`
	Description string                `gorm:"type:text"`
	Item        *ProductItemModel     `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductItemModel links a product to a marketplace item. item_id is
// globally unique.
type ProductItemModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Source    string    `gorm:"type:varchar(20);not null"`
	ItemID    string    `gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ProductItemModel) TableName() string {
	return "product_marketplace_items"
}

// ToDomain converts the model, with preloaded template and item, to a product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity:  m.BaseModel.entity(),
		TemplateID:  m.TemplateID,
		Code:        m.Code,
		Description: m.Description,
	}
	if m.Template != nil {
		p.Template = &catalog.ProductTemplate{
			BaseEntity:  m.Template.BaseModel.entity(),
			Name:        m.Template.Name,
			Description: m.Template.Description,
			Type:        catalog.ProductType(m.Template.Type),
			ListPrice:   m.Template.ListPrice,
			CostPrice:   m.Template.CostPrice,
			DefaultUOM:  m.Template.DefaultUOM,
			Salable:     m.Template.Salable,
		}
	}
	if m.Item != nil {
		p.Item = &catalog.MarketplaceItem{
			ProductID: m.Item.ProductID,
			Source:    m.Item.Source,
			ItemID:    m.Item.ItemID,
		}
	}
	return p
}

// ProductTemplateModelFromDomain converts a template to its model
func ProductTemplateModelFromDomain(t *catalog.ProductTemplate) *ProductTemplateModel {
	m := &ProductTemplateModel{
		Name:        t.Name,
		Description: t.Description,
		Type:        string(t.Type),
		ListPrice:   t.ListPrice,
		CostPrice:   t.CostPrice,
		DefaultUOM:  t.DefaultUOM,
		Salable:     t.Salable,
	}
	m.setEntity(t.BaseEntity)
	return m
}

// ProductModelFromDomain converts a variant to its model, without template
// and item link
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		TemplateID:  p.TemplateID,
		Code:        p.Code,
		Description: p.Description,
	}
	m.setEntity(p.BaseEntity)
	return m
}
