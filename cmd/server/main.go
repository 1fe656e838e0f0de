package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"github.com/erp/marketsync/internal/infrastructure/auth"
	"github.com/erp/marketsync/internal/infrastructure/cache"
	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/erp/marketsync/internal/infrastructure/ecommerce"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/messaging"
	"github.com/erp/marketsync/internal/infrastructure/persistence"
	"github.com/erp/marketsync/internal/infrastructure/scheduler"
	"github.com/erp/marketsync/internal/infrastructure/telemetry"
	"github.com/erp/marketsync/internal/interfaces/http/handler"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/erp/marketsync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err.Error())
	}
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting marketsync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.HTTP.Port),
	)

	ctx := context.Background()

	// Telemetry: traces, metrics and the zap log bridge
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		Logs:              cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = tel.BridgeLogger(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.Open(ctx, &cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithConnectLogger(log))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := tel.Meter(cfg.Telemetry.ServiceName)
	if tel.MetricsEnabled() {
		if _, err := telemetry.RegisterDBPoolMetrics(db.DB, meter, log); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	// Repositories
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	syncRecordRepo := persistence.NewGormOrderSyncRecordRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Marketplace clients
	compatLevel := 0
	if cfg.Marketplace.CompatibilityLevel != "" {
		compatLevel, err = strconv.Atoi(cfg.Marketplace.CompatibilityLevel)
		if err != nil {
			log.Fatal("Invalid marketplace compatibility level",
				zap.String("value", cfg.Marketplace.CompatibilityLevel), zap.Error(err))
		}
	}
	marketplaces := ecommerce.NewClientFactory(ecommerce.FactoryOptions{
		Mode:               ecommerce.ClientMode(cfg.Marketplace.Mode),
		ReplayDir:          cfg.Marketplace.ReplayDir,
		CompatibilityLevel: compatLevel,
		ProductionURL:      cfg.Marketplace.ProductionURL,
		SandboxURL:         cfg.Marketplace.SandboxURL,
		TimeoutSeconds:     int(cfg.Marketplace.RequestTimeout / time.Second),
		Transport:          otelhttp.NewTransport(http.DefaultTransport),
		CallsPerSecond:     cfg.Marketplace.CallsPerSecond,
		CallBurst:          cfg.Marketplace.CallBurst,
	})

	// Run lock: Redis when configured, otherwise in-process
	runLock, err := cache.NewRunLockFactory(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithLogger(log), cache.WithInMemoryFallback(cfg.App.Env != "production")).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create run lock", zap.Error(err))
	}

	// Application services
	cursorPolicy, err := appintegration.ParseCursorPolicy(cfg.Import.CursorPolicy)
	if err != nil {
		log.Fatal("Invalid import cursor policy", zap.Error(err))
	}
	importOpts := []appintegration.OrderImportOption{appintegration.WithRunLock(runLock)}
	if tel.MetricsEnabled() {
		importMetrics, err := telemetry.NewImportMetrics(meter, log)
		if err != nil {
			log.Fatal("Failed to create import metrics", zap.Error(err))
		}
		importOpts = append(importOpts, appintegration.WithImportMetrics(importMetrics))
	}
	if len(cfg.Events.Brokers) > 0 {
		publisher, err := messaging.NewKafkaPublisher(messaging.KafkaConfig{
			Brokers:      cfg.Events.Brokers,
			ClientID:     cfg.Events.ClientID,
			BatchTimeout: cfg.Events.BatchTimeout,
			WriteTimeout: cfg.Events.WriteTimeout,
		})
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing event publisher", zap.Error(err))
			}
		}()
		importOpts = append(importOpts, appintegration.WithEventPublisher(publisher))
		log.Info("Publishing import events", zap.Strings("brokers", cfg.Events.Brokers))
	}
	importService := appintegration.NewOrderImportService(
		channelRepo,
		syncRecordRepo,
		txScope,
		marketplaces,
		appintegration.ImportConfig{
			CursorPolicy:  cursorPolicy,
			WindowOverlap: cfg.Import.WindowOverlap,
			LockTTL:       cfg.Import.LockTTL,
		},
		log,
		importOpts...,
	)
	tokenService := appintegration.NewTokenStatusService(channelRepo, marketplaces, log)

	// Periodic imports
	if cfg.Scheduler.Enabled {
		importScheduler, err := scheduler.NewImportScheduler(scheduler.ImportSchedulerConfig{
			Enabled:       cfg.Scheduler.Enabled,
			Workers:       cfg.Scheduler.Workers,
			QueueSize:     cfg.Scheduler.QueueSize,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
			Interval:      cfg.Scheduler.Interval,
		}, scheduler.NewImportExecutor(importService, log), log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := importScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start import scheduler", zap.Error(err))
		}
		defer func() {
			if err := importScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping import scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewImportCronTrigger(cfg.Scheduler.Interval, importScheduler, channelRepo, log)
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start import trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping import trigger", zap.Error(err))
			}
		}()
		log.Info("Import scheduler started",
			zap.Int("workers", cfg.Scheduler.Workers),
			zap.Duration("interval", cfg.Scheduler.Interval),
		)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	var httpMeter metric.Meter
	if tel.MetricsEnabled() {
		httpMeter = meter
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:      log,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     tel.TracingEnabled(),
		Meter:       httpMeter,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	routerOpts := []router.RouterOption{router.WithHealth(handler.NewHealthHandler(db, version).Health)}
	if cfg.Auth.Enabled() {
		verifier, err := auth.NewVerifier(auth.Config{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			Leeway:   cfg.Auth.Leeway,
		})
		if err != nil {
			log.Fatal("Failed to build token verifier", zap.Error(err))
		}
		routerOpts = append(routerOpts, router.WithAuth(middleware.Authenticate(verifier)))
	} else {
		log.Warn("API authentication disabled, auth.secret is empty")
	}
	router.NewRouter(engine, routerOpts...).
		Register(handler.NewChannelHandler(importService, tokenService, cfg.Import.RequireOrders)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
