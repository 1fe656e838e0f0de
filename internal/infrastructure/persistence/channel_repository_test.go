package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormChannelRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChannelRepository(db)
	ctx := context.Background()

	ch := createTestChannel(t, db, "token-1")

	found, err := repo.FindByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.Name, found.Name)
	assert.Equal(t, channel.SourceEbay, found.Source)
	require.NotNil(t, found.Marketplace)
	assert.Equal(t, "token-1", found.Marketplace.AuthToken)
	assert.True(t, found.Marketplace.Sandbox)
	assert.WithinDuration(t, ch.Marketplace.LastImportTime, found.Marketplace.LastImportTime, time.Second)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, channel.ErrChannelNotFound)
}

func TestGormChannelRepository_DuplicateCredentials(t *testing.T) {
	db := setupTestDB(t)
	createTestChannel(t, db, "shared-token")

	ch, err := channel.NewChannel("Second", channel.SourceEbay, "unit", "USD")
	require.NoError(t, err)
	settings, err := channel.NewMarketplaceSettings("app", "dev", "cert", "shared-token", true, time.Now())
	require.NoError(t, err)
	ch.AttachMarketplace(settings)

	err = NewGormChannelRepository(db).Create(context.Background(), ch)
	assert.ErrorIs(t, err, channel.ErrDuplicateCredentials)

	var count int64
	require.NoError(t, db.Table("channels").Where("id = ?", ch.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormChannelRepository_FindBySource(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChannelRepository(db)
	ctx := context.Background()

	a := createTestChannel(t, db, "a")
	b := createTestChannel(t, db, "b")
	manual, err := channel.NewChannel("Counter", channel.SourceManual, "unit", "USD")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, manual))

	channels, err := repo.FindBySource(ctx, channel.SourceEbay)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{channels[0].ID, channels[1].ID})
	for _, ch := range channels {
		assert.NotNil(t, ch.Marketplace)
	}
}

func TestGormChannelRepository_AdvanceCursor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChannelRepository(db)
	ctx := context.Background()
	ch := createTestChannel(t, db, "cursor")

	later := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.AdvanceCursor(ctx, ch.ID, later))

	found, err := repo.FindByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.True(t, later.Equal(found.Marketplace.LastImportTime))

	// An older timestamp leaves the cursor where it is
	require.NoError(t, repo.AdvanceCursor(ctx, ch.ID, later.Add(-time.Hour)))
	found, err = repo.FindByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.True(t, later.Equal(found.Marketplace.LastImportTime))

	err = repo.AdvanceCursor(ctx, uuid.New(), later)
	assert.ErrorIs(t, err, channel.ErrMarketplaceNotConfigured)
}

// newMockChannelRepository creates a GormChannelRepository with a mocked SQL connection
func newMockChannelRepository(t *testing.T) (*GormChannelRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormChannelRepository(gormDB), mock, mockDB
}

func TestGormChannelRepository_AdvanceCursor_SQL(t *testing.T) {
	t.Run("conditional update moves the cursor", func(t *testing.T) {
		repo, mock, mockDB := newMockChannelRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()
		mock.ExpectExec(`UPDATE "channel_marketplace_settings" SET .* WHERE channel_id = \$3 AND last_import_time <= \$4`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), channelID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdvanceCursor(context.Background(), channelID, time.Now())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("later stored cursor is not an error", func(t *testing.T) {
		repo, mock, mockDB := newMockChannelRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()
		mock.ExpectExec(`UPDATE "channel_marketplace_settings"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "channel_marketplace_settings" WHERE channel_id = \$1`).
			WithArgs(channelID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.AdvanceCursor(context.Background(), channelID, time.Now())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing settings", func(t *testing.T) {
		repo, mock, mockDB := newMockChannelRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "channel_marketplace_settings"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "channel_marketplace_settings"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.AdvanceCursor(context.Background(), uuid.New(), time.Now())
		assert.ErrorIs(t, err, channel.ErrMarketplaceNotConfigured)
	})
}
