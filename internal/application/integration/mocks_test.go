package integration

import (
	"context"
	"time"

	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/party"
	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPartyRepository is a mock implementation of party.Repository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByIdentity(ctx context.Context, source, externalUserID string) (*party.Party, error) {
	args := m.Called(ctx, source, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) Create(ctx context.Context, p *party.Party) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPartyRepository) AddAddress(ctx context.Context, a *party.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockPartyRepository) AddContactMechanism(ctx context.Context, cm *party.ContactMechanism) error {
	return m.Called(ctx, cm).Error(0)
}

// MockRegistry is a mock implementation of party.Registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) FindCountry(ctx context.Context, code string) (*party.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Country), args.Error(1)
}

func (m *MockRegistry) ListSubdivisions(ctx context.Context, countryCode string) ([]party.Subdivision, error) {
	args := m.Called(ctx, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Subdivision), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.Repository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByItemID(ctx context.Context, itemID string) (*catalog.Product, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByExternalOrder(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*trade.Sale, error) {
	args := m.Called(ctx, channelID, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, s *trade.Sale) error {
	return m.Called(ctx, s).Error(0)
}

// MockChannelRepository is a mock implementation of channel.Repository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindBySource(ctx context.Context, source channel.Source) ([]channel.Channel, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.Channel), args.Error(1)
}

func (m *MockChannelRepository) Create(ctx context.Context, ch *channel.Channel) error {
	return m.Called(ctx, ch).Error(0)
}

func (m *MockChannelRepository) AdvanceCursor(ctx context.Context, channelID uuid.UUID, t time.Time) error {
	return m.Called(ctx, channelID, t).Error(0)
}

// MockOrderSyncRecordRepository is a mock implementation of integration.OrderSyncRecordRepository
type MockOrderSyncRecordRepository struct {
	mock.Mock
}

func (m *MockOrderSyncRecordRepository) FindByExternalOrder(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*integration.OrderSyncRecord, error) {
	args := m.Called(ctx, channelID, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.OrderSyncRecord), args.Error(1)
}

func (m *MockOrderSyncRecordRepository) Save(ctx context.Context, record *integration.OrderSyncRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockOrderSyncRecordRepository) List(ctx context.Context, channelID uuid.UUID, filter integration.OrderSyncRecordFilter) ([]integration.OrderSyncRecord, int64, error) {
	args := m.Called(ctx, channelID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]integration.OrderSyncRecord), args.Get(1).(int64), args.Error(2)
}

// MockMarketplace is a mock implementation of integration.Marketplace
type MockMarketplace struct {
	mock.Mock
}

func (m *MockMarketplace) FetchOrders(ctx context.Context, from, to time.Time) ([]integration.Order, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Order), args.Error(1)
}

func (m *MockMarketplace) FetchItemDetail(ctx context.Context, itemID string) (*integration.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Item), args.Error(1)
}

func (m *MockMarketplace) FetchTokenStatus(ctx context.Context) (*integration.TokenStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.TokenStatus), args.Error(1)
}

// staticMarketplaceFactory hands out the same client for every channel
type staticMarketplaceFactory struct {
	marketplace integration.Marketplace
	err         error
}

func (f *staticMarketplaceFactory) ForChannel(*channel.Channel) (integration.Marketplace, error) {
	return f.marketplace, f.err
}

// MockRunLock is a mock implementation of integration.RunLock
type MockRunLock struct {
	mock.Mock
}

func (m *MockRunLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockRunLock) Release(ctx context.Context, key, token string) error {
	return m.Called(ctx, key, token).Error(0)
}
