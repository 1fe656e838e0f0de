package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/marketsync/internal/domain/party"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRegistry implements party.Registry over the countries and
// country_subdivisions tables
type GormRegistry struct {
	db *gorm.DB
}

// NewGormRegistry creates a new GormRegistry
func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

// FindCountry finds a country by its ISO alpha-2 code
func (r *GormRegistry) FindCountry(ctx context.Context, code string) (*party.Country, error) {
	var model models.CountryModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, party.ErrUnknownCountry
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListSubdivisions lists the subdivisions of a country ordered by name
func (r *GormRegistry) ListSubdivisions(ctx context.Context, countryCode string) ([]party.Subdivision, error) {
	var subdivisionModels []models.SubdivisionModel
	if err := r.db.WithContext(ctx).
		Where("country_code = ?", strings.ToUpper(countryCode)).
		Order("name ASC").
		Find(&subdivisionModels).Error; err != nil {
		return nil, err
	}
	subdivisions := make([]party.Subdivision, len(subdivisionModels))
	for i := range subdivisionModels {
		subdivisions[i] = subdivisionModels[i].ToDomain()
	}
	return subdivisions, nil
}

// SaveCountry inserts a country, keeping an existing row with the same code
func (r *GormRegistry) SaveCountry(ctx context.Context, c *party.Country) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	model := &models.CountryModel{ID: c.ID, Code: strings.ToUpper(c.Code), Name: c.Name}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(model).Error
}

// SaveSubdivision inserts a subdivision, keeping an existing row with the
// same code
func (r *GormRegistry) SaveSubdivision(ctx context.Context, s *party.Subdivision) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	model := &models.SubdivisionModel{
		ID:          s.ID,
		CountryCode: strings.ToUpper(s.CountryCode),
		Code:        strings.ToUpper(s.Code),
		Name:        s.Name,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(model).Error
}

// Ensure GormRegistry implements party.Registry
var _ party.Registry = (*GormRegistry)(nil)
