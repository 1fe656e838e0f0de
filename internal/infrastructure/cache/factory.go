package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/marketsync/internal/domain/integration"
)

// RunLockFactory creates run locks based on configuration
type RunLockFactory struct {
	redisConfig           RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RunLockFactoryOption is a functional option for configuring the factory
type RunLockFactoryOption func(*RunLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RunLockFactoryOption {
	return func(f *RunLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lock
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) RunLockFactoryOption {
	return func(f *RunLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRunLockFactory creates a new factory
func NewRunLockFactory(cfg RedisConfig, opts ...RunLockFactoryOption) *RunLockFactory {
	f := &RunLockFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis run lock, or an in-memory one when Redis is not
// configured or unreachable and fallback is allowed
func (f *RunLockFactory) Create(ctx context.Context) (integration.RunLock, error) {
	if f.redisConfig.Addr == "" {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis address is required for the run lock")
		}
		f.logger.Info("redis not configured, using in-memory run lock")
		return NewInMemoryRunLock(), nil
	}

	lock, err := NewRedisRunLock(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis run lock", zap.String("addr", f.redisConfig.Addr))
		return lock, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for run lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory run lock. "+
		"Concurrent imports across instances are not prevented.",
		zap.Error(err),
	)
	return NewInMemoryRunLock(), nil
}
