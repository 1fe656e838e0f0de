package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpen_UnreachableDatabase(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := &config.DatabaseConfig{
		Host:         "127.0.0.1",
		Port:         1,
		User:         "marketsync",
		Password:     "secret",
		DBName:       "marketsync",
		SSLMode:      "disable",
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	}
	db, err := Open(ctx, cfg, WithConnectAttempts(2), WithConnectLogger(zap.New(core)))
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "ping database 127.0.0.1:1")

	retries := logs.FilterMessage("Database not reachable, retrying").All()
	require.Len(t, retries, 1)
	assert.Equal(t, "127.0.0.1", retries[0].ContextMap()["host"])
}
