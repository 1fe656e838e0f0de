package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	connectAttempts   = 5
	connectMaxBackoff = 5 * time.Second
)

// Database is an open PostgreSQL connection pool
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// OpenOption configures Open
type OpenOption func(*openOptions)

type openOptions struct {
	gormLogger gormlogger.Interface
	logger     *zap.Logger
	attempts   uint
}

// WithGormLogger sets the logger gorm writes statements to
func WithGormLogger(l gormlogger.Interface) OpenOption {
	return func(o *openOptions) { o.gormLogger = l }
}

// WithConnectLogger logs failed connection attempts to l
func WithConnectLogger(l *zap.Logger) OpenOption {
	return func(o *openOptions) { o.logger = l }
}

// WithConnectAttempts bounds how often the first ping is tried
func WithConnectAttempts(n uint) OpenOption {
	return func(o *openOptions) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// Open connects to the database in cfg and waits, with exponential
// backoff, until it answers a ping. Unique violations surface as
// gorm.ErrDuplicatedKey.
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...OpenOption) (*Database, error) {
	o := openOptions{
		gormLogger: gormlogger.Discard,
		logger:     zap.NewNop(),
		attempts:   connectAttempts,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 o.gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	configurePool(sqlDB, cfg)

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = connectMaxBackoff
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, sqlDB.PingContext(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(o.attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			o.logger.Warn("Database not reachable, retrying",
				zap.String("host", cfg.Host),
				zap.Duration("retry_in", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &Database{DB: db, sql: sqlDB}, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sql.Close()
}

// Ping reports whether the database answers
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// AutoMigrate creates or updates every table from the persistence models.
// Production schemas come from the SQL migrations; this serves tests and
// local development.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
