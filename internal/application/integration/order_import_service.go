package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/erp/marketsync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportMetrics receives the outcome of import runs
type ImportMetrics interface {
	RecordRun(ctx context.Context, result *integration.ImportResult)
	RecordRunError(ctx context.Context, channelID uuid.UUID, err error)
}

// OrderImportService pulls a channel's new marketplace orders and turns
// each into a sale
type OrderImportService struct {
	channels     channel.Repository
	syncRecords  integration.OrderSyncRecordRepository
	txScope      TransactionScope
	marketplaces integration.MarketplaceFactory
	lock         integration.RunLock
	metrics      ImportMetrics
	events       integration.EventPublisher
	config       ImportConfig
	now          func() time.Time
	logger       *zap.Logger
}

// OrderImportOption configures optional collaborators
type OrderImportOption func(*OrderImportService)

// WithRunLock guards each channel against overlapping runs
func WithRunLock(lock integration.RunLock) OrderImportOption {
	return func(s *OrderImportService) {
		s.lock = lock
	}
}

// WithImportMetrics reports run outcomes to m
func WithImportMetrics(m ImportMetrics) OrderImportOption {
	return func(s *OrderImportService) {
		s.metrics = m
	}
}

// WithEventPublisher announces created sales and finished runs on p.
// Delivery is best effort: a publish failure is logged and never undoes
// the import.
func WithEventPublisher(p integration.EventPublisher) OrderImportOption {
	return func(s *OrderImportService) {
		s.events = p
	}
}

// WithClock replaces time.Now as the source of window ends
func WithClock(now func() time.Time) OrderImportOption {
	return func(s *OrderImportService) {
		s.now = now
	}
}

// NewOrderImportService creates a new OrderImportService
func NewOrderImportService(
	channels channel.Repository,
	syncRecords integration.OrderSyncRecordRepository,
	txScope TransactionScope,
	marketplaces integration.MarketplaceFactory,
	config ImportConfig,
	logger *zap.Logger,
	opts ...OrderImportOption,
) *OrderImportService {
	if !config.CursorPolicy.IsValid() {
		config.CursorPolicy = CursorAdvanceBeforeFetch
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultImportConfig().LockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderImportService{
		channels:     channels,
		syncRecords:  syncRecords,
		txScope:      txScope,
		marketplaces: marketplaces,
		config:       config,
		now:          time.Now,
		logger:       logger.Named("order_import"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportOrders imports the orders created on the channel since its last
// import.
//
// Only a misconfigured channel, a held run lock, a failed cursor write or
// a failed order list fetch fail the run. Orders that cannot be imported
// are collected in the result's failures. With RequireOrders an empty
// window returns the result together with an *integration.NoOrdersError.
func (s *OrderImportService) ImportOrders(ctx context.Context, channelID uuid.UUID, opts ImportOptions) (*integration.ImportResult, error) {
	ctx, span := telemetry.StartOperation(ctx, "order_import", "import_orders",
		telemetry.AttrChannelID.String(channelID.String()),
	)
	result, err := s.importOrders(ctx, channelID, opts)
	if result != nil {
		span.SetAttributes(
			telemetry.AttrImportStatus.String(result.Status.String()),
			telemetry.AttrCreated.Int(len(result.Created)),
		)
	}
	telemetry.EndOperation(span, err, integration.ErrNoOrders)
	return result, err
}

func (s *OrderImportService) importOrders(ctx context.Context, channelID uuid.UUID, opts ImportOptions) (*integration.ImportResult, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := ch.ValidateMarketplace(); err != nil {
		return nil, err
	}

	if s.lock != nil {
		key := integration.RunLockKey(ch)
		token, err := s.lock.TryAcquire(ctx, key, s.config.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if token == "" {
			return nil, integration.ErrImportInProgress
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), key, token); err != nil {
				s.logger.Warn("Failed to release run lock", zap.String("channel_id", ch.ID.String()), zap.Error(err))
			}
		}()
	}

	result, err := s.run(ctx, ch, opts)
	if err != nil && !errors.Is(err, integration.ErrNoOrders) {
		if s.metrics != nil {
			s.metrics.RecordRunError(ctx, ch.ID, err)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRun(ctx, result)
	}
	s.publish(ctx, integration.TopicImportCompleted, ch.ID.String(), integration.NewImportCompletedEvent(result))
	return result, err
}

func (s *OrderImportService) publish(ctx context.Context, topic, key string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, key, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
	}
}

func (s *OrderImportService) run(ctx context.Context, ch *channel.Channel, opts ImportOptions) (*integration.ImportResult, error) {
	log := s.logger.With(zap.String("channel_id", ch.ID.String()), zap.String("channel", ch.Name))

	marketplace, err := s.marketplaces.ForChannel(ch)
	if err != nil {
		return nil, fmt.Errorf("marketplace client: %w", err)
	}

	lastImport := ch.Marketplace.LastImportTime
	windowStart := lastImport.Add(-s.config.WindowOverlap)
	windowEnd := s.now().UTC()
	if windowEnd.Before(lastImport) {
		windowEnd = lastImport
	}

	if s.config.CursorPolicy == CursorAdvanceBeforeFetch {
		if err := s.advanceCursor(ctx, ch, windowEnd); err != nil {
			return nil, err
		}
	}

	orders, err := marketplace.FetchOrders(ctx, windowStart, windowEnd)
	if err != nil {
		log.Error("Fetching orders failed",
			zap.Time("window_start", windowStart),
			zap.Time("window_end", windowEnd),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", integration.ErrOrderFetchFailed, err)
	}

	if s.config.CursorPolicy == CursorAdvanceAfterFetch {
		if err := s.advanceCursor(ctx, ch, windowEnd); err != nil {
			return nil, err
		}
	}

	result := integration.NewImportResult(ch.ID, windowStart, windowEnd)
	if len(orders) == 0 {
		result.Finish()
		log.Info("No new orders", zap.Time("since", windowStart))
		if opts.RequireOrders {
			return result, &integration.NoOrdersError{Since: windowStart}
		}
		return result, nil
	}

	for _, order := range orders {
		s.importOrder(ctx, ch, marketplace, order, result, log)
	}
	result.Finish()

	log.Info("Order import finished",
		zap.String("status", result.Status.String()),
		zap.Int("orders", len(orders)),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("duration", result.Duration()))
	return result, nil
}

func (s *OrderImportService) advanceCursor(ctx context.Context, ch *channel.Channel, windowEnd time.Time) error {
	if err := ch.Marketplace.AdvanceCursor(windowEnd); err != nil {
		return err
	}
	if err := s.channels.AdvanceCursor(ctx, ch.ID, windowEnd); err != nil {
		return fmt.Errorf("advance import cursor: %w", err)
	}
	return nil
}

// importOrder builds one sale in its own transaction and records the
// outcome. It never fails the run.
func (s *OrderImportService) importOrder(
	ctx context.Context,
	ch *channel.Channel,
	marketplace integration.Marketplace,
	order integration.Order,
	result *integration.ImportResult,
	log *zap.Logger,
) {
	orderID := strings.TrimSpace(order.OrderID)
	log = log.With(zap.String("order_id", orderID))

	ctx, span := telemetry.StartOperation(ctx, "order_import", "import_order",
		telemetry.AttrOrderID.String(orderID),
	)

	var sale *trade.Sale
	var created bool
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		builder := NewSaleBuilder(
			NewPartyReconciler(repos.PartyRepo(), repos.Registry(), ch.Source),
			NewProductReconciler(repos.ProductRepo(), marketplace, ch),
			repos.SaleRepo(),
		)
		var buildErr error
		sale, created, buildErr = builder.BuildSale(ctx, order, ch)
		return buildErr
	})

	if sale != nil {
		span.SetAttributes(telemetry.AttrSaleID.String(sale.ID.String()))
	}
	telemetry.EndOperation(span, err)

	switch {
	case err != nil:
		result.AddFailure(orderID, err)
		log.Warn("Order import failed", zap.Error(err))
	case !created:
		result.AddSkipped(orderID, sale.ID)
		log.Debug("Order already imported", zap.String("sale_id", sale.ID.String()))
	default:
		result.AddCreated(sale)
		log.Info("Sale created",
			zap.String("sale_id", sale.ID.String()),
			zap.Int("lines", len(sale.Lines)),
			zap.String("total", sale.TotalAmount().String()))
		s.publish(ctx, integration.TopicSaleImported, ch.ID.String(), integration.NewSaleImportedEvent(sale, s.now()))
	}

	if orderID == "" {
		return
	}
	s.recordAttempt(ctx, ch, orderID, sale, created, err, log)
}

func (s *OrderImportService) recordAttempt(
	ctx context.Context,
	ch *channel.Channel,
	orderID string,
	sale *trade.Sale,
	created bool,
	importErr error,
	log *zap.Logger,
) {
	if s.syncRecords == nil {
		return
	}
	record, err := s.syncRecords.FindByExternalOrder(ctx, ch.ID, orderID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			log.Error("Failed to load order sync record", zap.Error(err))
			return
		}
		record = integration.NewOrderSyncRecord(ch.ID, orderID)
	}

	switch {
	case importErr != nil:
		record.MarkFailed(importErr)
	case !created:
		record.MarkSkipped(sale.ID)
	default:
		record.MarkSucceeded(sale.ID)
	}
	if err := s.syncRecords.Save(ctx, record); err != nil {
		log.Error("Failed to save order sync record", zap.Error(err))
	}
}

// ListSyncRecords returns a page of the channel's order sync records
func (s *OrderImportService) ListSyncRecords(ctx context.Context, channelID uuid.UUID, filter integration.OrderSyncRecordFilter) (shared.Paginated[integration.OrderSyncRecord], error) {
	if _, err := s.channels.FindByID(ctx, channelID); err != nil {
		return shared.Paginated[integration.OrderSyncRecord]{}, err
	}
	filter.Filter = filter.Filter.Normalize()
	records, total, err := s.syncRecords.List(ctx, channelID, filter)
	if err != nil {
		return shared.Paginated[integration.OrderSyncRecord]{}, err
	}
	return shared.NewPaginated(records, total, filter.Page, filter.PageSize), nil
}
