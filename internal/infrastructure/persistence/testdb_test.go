package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/party"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedRegistry(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	registry := NewGormRegistry(db)
	for _, c := range []party.Country{{Code: "IN", Name: "India"}, {Code: "US", Name: "United States"}} {
		require.NoError(t, registry.SaveCountry(ctx, &c))
	}
	for _, s := range []party.Subdivision{
		{CountryCode: "IN", Code: "IN-UP", Name: "Uttar Pradesh"},
		{CountryCode: "US", Code: "US-NY", Name: "New York"},
		{CountryCode: "US", Code: "US-CA", Name: "California"},
	} {
		require.NoError(t, registry.SaveSubdivision(ctx, &s))
	}
}

func createTestChannel(t *testing.T, db *gorm.DB, token string) *channel.Channel {
	t.Helper()
	ch, err := channel.NewChannel("eBay "+token, channel.SourceEbay, "unit", "USD")
	require.NoError(t, err)
	settings, err := channel.NewMarketplaceSettings("app", "dev", "cert", token, true, time.Now())
	require.NoError(t, err)
	ch.AttachMarketplace(settings)
	require.NoError(t, NewGormChannelRepository(db).Create(context.Background(), ch))
	return ch
}
