package migration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/erp/marketsync/migrations"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("marketsync_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestMigrator_UpDown(t *testing.T) {
	db := startPostgres(t)

	m, err := New(db, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	version, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	var countries int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM countries WHERE code IN ('US', 'GB', 'DE')").Scan(&countries))
	assert.Equal(t, 3, countries)

	var subdivisions int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM country_subdivisions WHERE country_code = 'US' AND code = 'US-CA'").Scan(&subdivisions))
	assert.Equal(t, 1, subdivisions)

	// second Up is a no-op
	require.NoError(t, m.Up())

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	var exists bool
	require.NoError(t, db.QueryRow("SELECT to_regclass('public.sales') IS NOT NULL").Scan(&exists))
	assert.False(t, exists)
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(nil, os.DirFS("/nonexistent/migrations"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open migration source")
}

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := migrateLogger{logger: zap.New(core)}

	assert.True(t, l.Verbose())
	l.Printf("Start buffering %d/u %s\n", 1, "init_schema")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Start buffering 1/u init_schema", logs.All()[0].Message)

	quiet := migrateLogger{logger: zap.NewNop()}
	assert.False(t, quiet.Verbose())
}
