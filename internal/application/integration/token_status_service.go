package integration

import (
	"context"
	"fmt"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenStatusService reports whether a channel's marketplace token is
// still usable. It never writes.
type TokenStatusService struct {
	channels     channel.Repository
	marketplaces integration.MarketplaceFactory
	logger       *zap.Logger
}

// NewTokenStatusService creates a new TokenStatusService
func NewTokenStatusService(channels channel.Repository, marketplaces integration.MarketplaceFactory, logger *zap.Logger) *TokenStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenStatusService{
		channels:     channels,
		marketplaces: marketplaces,
		logger:       logger.Named("token_status"),
	}
}

// CheckTokenStatus asks the marketplace for the status and expiry of the
// channel's auth token
func (s *TokenStatusService) CheckTokenStatus(ctx context.Context, channelID uuid.UUID) (*integration.TokenStatus, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := ch.ValidateMarketplace(); err != nil {
		return nil, err
	}

	marketplace, err := s.marketplaces.ForChannel(ch)
	if err != nil {
		return nil, fmt.Errorf("marketplace client: %w", err)
	}
	status, err := marketplace.FetchTokenStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch token status: %w", err)
	}

	s.logger.Debug("Token status checked",
		zap.String("channel_id", ch.ID.String()),
		zap.String("status", string(status.Status)),
		zap.Time("expires", status.ExpirationTime))
	return status, nil
}
