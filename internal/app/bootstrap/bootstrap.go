package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	treasurygovernor "commonwealth/contexts/governance/treasury-governor"
	govmemory "commonwealth/contexts/governance/treasury-governor/adapters/memory"
	govpostgres "commonwealth/contexts/governance/treasury-governor/adapters/postgres"
	"commonwealth/contexts/governance/treasury-governor/application/workers"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
	authorization "commonwealth/contexts/identity-access/authorization-service"
	authcache "commonwealth/contexts/identity-access/authorization-service/adapters/cache"
	authmemory "commonwealth/contexts/identity-access/authorization-service/adapters/memory"
	authpostgres "commonwealth/contexts/identity-access/authorization-service/adapters/postgres"
	authports "commonwealth/contexts/identity-access/authorization-service/ports"
	contractsv1 "commonwealth/contracts/gen/events/v1"
	"commonwealth/internal/platform/config"
	"commonwealth/internal/platform/db"
	"commonwealth/internal/platform/httpserver"
	"commonwealth/internal/platform/messaging"
	"commonwealth/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const idempotencyTTL = 7 * 24 * time.Hour

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	kafka         *messaging.KafkaPublisher
	bus           *messaging.Bus
	relay         workers.OutboxRelay
	auditor       workers.LedgerAuditor
	metrics       *metrics.Metrics
	metricsServer *http.Server
	topic         string
	pollInterval  time.Duration
	logger        *slog.Logger
}

// BuildAPI wires the HTTP process. Without POSTGRES_DSN every store is kept
// in memory, which is only suitable for local development.
func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	genesis, err := governanceConfig(cfg.Governance)
	if err != nil {
		return nil, err
	}
	heights := govpostgres.IntervalHeight{
		Genesis:  cfg.Governance.Genesis,
		Interval: cfg.Governance.BlockInterval,
		Clock:    govpostgres.SystemClock{},
	}

	app := &APIApp{logger: logger}
	var permissionCache authports.PermissionCache
	if cfg.RedisURL != "" {
		client, err := authcache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.redis = client
		permissionCache = authcache.NewRedisPermissionCache(client)
	}

	var governance treasurygovernor.Module
	var authz authorization.Module
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Warn("POSTGRES_DSN is not set, using in-memory storage",
			"event", "bootstrap_in_memory_storage",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		authz, governance = buildInMemory(genesis, heights, permissionCache, logger)
	} else {
		pg, err := db.Connect(ctx, cfg.PostgresDSN, db.DefaultOptions())
		if err != nil {
			app.Close()
			return nil, err
		}
		app.postgres = pg
		authz, governance, err = buildPostgres(ctx, pg, genesis, heights, permissionCache, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	if cfg.BootstrapAdmin != "" {
		if err := authz.Handler.Roles.Bootstrap(ctx, cfg.BootstrapAdmin); err != nil {
			app.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	app.server = httpserver.New(governance, authz, metrics.New(""), logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func buildInMemory(
	genesis services.GovernanceConfig,
	heights ports.HeightSource,
	permissionCache authports.PermissionCache,
	logger *slog.Logger,
) (authorization.Module, treasurygovernor.Module) {
	authStore := authmemory.NewStore()
	if permissionCache == nil {
		permissionCache = authStore
	}
	authz := authorization.NewModule(authorization.Dependencies{
		Repository:      authStore,
		Idempotency:     authStore,
		PermissionCache: permissionCache,
		Clock:           authStore,
		IDGenerator:     authStore,
		Logger:          logger,
	})
	authz.Store = authStore

	store := govmemory.NewStore(genesis)
	governance := treasurygovernor.NewModule(treasurygovernor.Dependencies{
		Ledger:         store,
		Oracle:         permissionOracle{check: authz.Handler.CheckPermission},
		Transfers:      store,
		Events:         store,
		Idempotency:    store,
		Clock:          govpostgres.SystemClock{},
		Heights:        heights,
		IDGen:          govpostgres.UUIDGenerator{},
		IdempotencyTTL: idempotencyTTL,
		Logger:         logger,
	})
	governance.Store = store
	return authz, governance
}

func buildPostgres(
	ctx context.Context,
	pg *db.Postgres,
	genesis services.GovernanceConfig,
	heights ports.HeightSource,
	permissionCache authports.PermissionCache,
	logger *slog.Logger,
) (authorization.Module, treasurygovernor.Module, error) {
	authRepo := authpostgres.NewRepository(pg.DB, logger)
	if err := authRepo.Migrate(ctx); err != nil {
		return authorization.Module{}, treasurygovernor.Module{}, err
	}
	if permissionCache == nil {
		permissionCache = authmemory.NewStore()
	}
	authz := authorization.NewModule(authorization.Dependencies{
		Repository:      authRepo,
		Idempotency:     authRepo,
		PermissionCache: permissionCache,
		Clock:           authpostgres.SystemClock{},
		IDGenerator:     authpostgres.UUIDGenerator{},
		Logger:          logger,
	})

	repo := govpostgres.NewRepository(pg.DB, genesis, logger)
	if err := repo.Migrate(ctx); err != nil {
		return authorization.Module{}, treasurygovernor.Module{}, err
	}
	governance := treasurygovernor.NewModule(treasurygovernor.Dependencies{
		Ledger:         repo,
		Oracle:         permissionOracle{check: authz.Handler.CheckPermission},
		Transfers:      repo,
		Events:         repo,
		Idempotency:    repo,
		Clock:          govpostgres.SystemClock{},
		Heights:        heights,
		IDGen:          govpostgres.UUIDGenerator{},
		IdempotencyTTL: idempotencyTTL,
		Logger:         logger,
	})
	return authz, governance, nil
}

// BuildWorker wires the outbox relay and the ledger auditor. Events go to
// Kafka when KAFKA_BROKERS is set and to the in-process bus otherwise.
func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	genesis, err := governanceConfig(cfg.Governance)
	if err != nil {
		return nil, err
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN, db.DefaultOptions())
	if err != nil {
		return nil, err
	}
	repo := govpostgres.NewRepository(pg.DB, genesis, logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}

	app := &WorkerApp{
		postgres:     pg,
		metrics:      metrics.New(""),
		topic:        cfg.GovernanceTopic,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}

	var publisher ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := messaging.NewKafkaPublisher(cfg.KafkaBrokers, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		app.kafka = kafka
		publisher = kafka
	} else {
		app.bus = messaging.NewBus(logger)
		publisher = app.bus
	}

	app.relay = workers.OutboxRelay{
		Outbox:    repo,
		Publisher: publisher,
		Clock:     govpostgres.SystemClock{},
		Topic:     cfg.GovernanceTopic,
		BatchSize: cfg.OutboxBatchSize,
		Logger:    logger,
	}
	app.auditor = workers.LedgerAuditor{Store: repo, Logger: logger}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", app.metrics.Handler())
	app.metricsServer = &http.Server{
		Addr:              normalizeAddr(cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	errs := make(chan error, 1)
	go func() {
		errs <- a.server.Start()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.bus != nil {
		w.bus.Subscribe(ctx, w.topic, w.logDelivered)
	}
	go func() {
		if err := w.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("worker metrics server failed",
				"event", "bootstrap_worker_metrics_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.metricsServer.Shutdown(shutdownCtx)
	}()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"topic", w.topic,
	)

	for {
		if err := w.auditor.RunOnce(ctx); err != nil && domainerrors.IsFatal(err) {
			return err
		}
		// Publish failures are logged by the relay and retried next tick; rows
		// that can never publish are dead-lettered by the relay itself.
		published, _ := w.relay.RunOnce(ctx)
		w.metrics.AddOutboxPublished(published)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.kafka != nil {
		errs = append(errs, w.kafka.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) logDelivered(_ context.Context, event contractsv1.Envelope) error {
	w.logger.Info("governance event delivered",
		"event", "bootstrap_worker_event_delivered",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"sequence", event.Sequence,
	)
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
