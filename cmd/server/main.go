package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/aggregate"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/correlation"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	jwttoken "github.com/randi412-cooperh/RetailCrimeFhe/internal/jwt_token"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	ledgermetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger/metrics"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pattern"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pending"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/config"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/httpserver"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/logger"
	platformmetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/metrics"
	platformredis "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/redis"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/screening"
	httptransport "github.com/randi412-cooperh/RetailCrimeFhe/internal/transport/http"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/verifier"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := fhe.NewClient(cfg.GatewayURL)

	// Stores: memory by default, postgres/redis when configured.
	var ledgerStore ledger.Store = ledger.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pg := ledger.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		ledgerStore = pg
		log.Info("incident ledger backed by postgres")
	}

	var pendingStore pending.Store = pending.NewInMemoryStore()
	var aggregateStore aggregate.Store = aggregate.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		pendingStore = pending.NewRedisStore(redisClient.Client)
		aggregateStore = aggregate.NewRedisStore(redisClient.Client)
		log.Info("pending table and aggregates backed by redis")
	}

	// Notifications: kafka when brokers are configured, otherwise an
	// in-process worker draining into the memory sink.
	var notifier notify.Publisher
	var worker *notify.Worker
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, notify.WithLogger(log))
		if err != nil {
			return err
		}
		defer kafka.Close()
		notifier = notify.StampedPublisher{Sink: kafka}
		log.Info("notifications published to kafka", "topic", cfg.Kafka.Topic)
	} else {
		inbox := make(chan notify.Event, 256)
		worker = notify.NewWorker(notify.NewMemorySink(), inbox)
		notifier = notify.StampedPublisher{Sink: notify.NewChannelPublisher(inbox)}
	}

	protocolMetrics := platformmetrics.New()

	policy := access.NewPolicy()
	guard := pending.NewGuard(pendingStore,
		pending.WithLogger(log),
		pending.WithMetrics(protocolMetrics),
	)
	proofVerifier := verifier.New(gateway, log)

	patternStore := pattern.NewInMemoryStore()
	// The pattern store is process-local; restore the per-incident
	// placeholders for whatever the (possibly durable) ledger already holds.
	existing, err := ledgerStore.List(ctx)
	if err != nil {
		return err
	}
	if seeded, err := pattern.ReseedPlaceholders(ctx, patternStore, existing); err != nil {
		return err
	} else if seeded > 0 {
		log.Info("pattern placeholders reseeded from ledger", "count", seeded)
	}

	ledgerSvc := ledger.NewService(ledgerStore, policy, patternStore, notifier,
		ledger.WithLogger(log),
		ledger.WithMetrics(ledgermetrics.New()),
	)
	patternSvc := pattern.NewService(policy, ledgerSvc, gateway, guard, proofVerifier, patternStore, notifier,
		pattern.WithLogger(log),
		pattern.WithMetrics(protocolMetrics),
	)
	aggregateSvc := aggregate.NewService(aggregateStore, policy, gateway, guard, proofVerifier,
		aggregate.LogSink{Logger: log}, notifier,
		aggregate.WithLogger(log),
		aggregate.WithMetrics(protocolMetrics),
	)
	correlationSvc := correlation.NewService(policy, aggregateStore, gateway, guard, proofVerifier,
		correlation.NewInMemoryStore(), notifier,
		correlation.WithLogger(log),
		correlation.WithMetrics(protocolMetrics),
	)
	screeningSvc := screening.NewService(ledgerSvc, gateway,
		screening.WithLogger(log),
		screening.WithMetrics(protocolMetrics),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "retail-crime-core", "retailers")
	handler := httptransport.NewHandler(
		ledgerSvc, patternSvc, aggregateSvc, correlationSvc, screeningSvc,
		policy, gateway, log,
	)
	router := httptransport.NewRouter(handler, jwttoken.NewJWTServiceAdapter(jwtService), log)
	srv := httpserver.New(cfg.Addr, router)

	if worker != nil {
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification worker stopped", "error", err)
			}
		}()
	}

	// Pending-request hygiene: old entries get marked abandoned, never
	// deleted, so late callbacks still fail with a diagnosable error.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := guard.Sweep(ctx, cfg.AbandonHorizon); err != nil {
					log.ErrorContext(ctx, "pending sweep failed", "error", err)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("retail crime core listening", "addr", cfg.Addr, "gateway", cfg.GatewayURL)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
