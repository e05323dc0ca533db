package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/clinicore/scheduler-api/config"
	"github.com/clinicore/scheduler-api/internal/repository/postgres"
	"github.com/clinicore/scheduler-api/pkg/logger"
	"github.com/clinicore/scheduler-api/pkg/messaging/redis"
	"github.com/clinicore/scheduler-api/pkg/metrics"
	"github.com/clinicore/scheduler-api/pkg/worker"
)

// env holds worker-only settings overridable without touching the shared
// config file.
type env struct {
	HealthPort    int           `envconfig:"WORKER_HEALTH_PORT" default:"8081"`
	CleanupEvery  time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"1h"`
	RetainFor     time.Duration `envconfig:"OUTBOX_RETENTION" default:"168h"`
	ShutdownGrace time.Duration `envconfig:"WORKER_SHUTDOWN_GRACE" default:"10s"`
}

func main() {
	lg := logger.NewLogger(nil)

	var envCfg env
	if err := envconfig.Process("", &envCfg); err != nil {
		lg.Fatal(err, "failed to read worker environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		lg.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		lg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, lg.Zerolog())
	if err != nil {
		lg.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.NewMetrics("clinicore", "scheduler_worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, lg, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go cleanupLoop(ctx, outboxRepo, envCfg, lg)
	go serveHealth(envCfg.HealthPort, lg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down worker")
	cancel()
	time.Sleep(envCfg.ShutdownGrace)
}

// cleanupLoop prunes processed events past the retention window.
func cleanupLoop(ctx context.Context, repo interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}, envCfg env, lg *logger.Logger) {
	ticker := time.NewTicker(envCfg.CleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteProcessedBefore(ctx, time.Now().Add(-envCfg.RetainFor))
			if err != nil {
				lg.Error(err, "outbox cleanup failed")
				continue
			}
			if deleted > 0 {
				lg.Info("pruned processed outbox events", "deleted", deleted)
			}
		}
	}
}

func serveHealth(port int, lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		lg.Error(err, "health server stopped")
	}
}
