package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/api"
	"github.com/chainaware/trace-engine/internal/config"
	"github.com/chainaware/trace-engine/internal/engine"
	"github.com/chainaware/trace-engine/internal/events"
	"github.com/chainaware/trace-engine/internal/external"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/query"
	"github.com/chainaware/trace-engine/internal/registry"
	"github.com/chainaware/trace-engine/internal/risk"
	"github.com/chainaware/trace-engine/internal/score"
	"github.com/chainaware/trace-engine/internal/storage"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/chainaware.yaml", "Path to YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Stores ───────────────────────────────────────────────────────────────
	var readingStore ledger.Store = ledger.NewMemoryStore(cfg.Ledger.MaxReadingsPerProduct)
	var alertStore alert.Store = alert.NewMemoryStore()
	if cfg.Storage.DatabaseURL != "" {
		pool, err := storage.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := storage.RunMigrations(ctx, pool); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		readingStore = storage.NewReadingStore(pool)
		alertStore = storage.NewAlertStore(pool)
		slog.Info("using postgres-backed stores")
	}

	// ── Event sink ───────────────────────────────────────────────────────────
	capTimeout := time.Duration(cfg.Engine.CapabilityTimeoutMs) * time.Millisecond
	var emitter events.Emitter = events.LogEmitter{}
	if len(cfg.Events.KafkaBrokers) > 0 {
		kafkaEmitter := events.NewKafkaEmitter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, capTimeout)
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
		slog.Info("publishing events to kafka", "topic", cfg.Events.KafkaTopic)
	}

	// ── Core components ──────────────────────────────────────────────────────
	reg := registry.New()
	led := ledger.New(readingStore, reg)
	riskEngine := risk.NewEngine(risk.PolicyFromConfig(cfg.Risk))
	alerts := alert.New(alertStore)
	scorer := score.New(reg, led, alerts)
	router := query.New(reg, led, alerts)

	tracker := engine.New(ctx, reg, led, riskEngine, alerts, scorer, external.Capabilities{}, emitter, engine.Options{
		IngestWorkers:     cfg.Engine.IngestWorkers,
		QueueDepth:        cfg.Engine.QueueDepth,
		CapabilityTimeout: capTimeout,
	})

	// ── Hot-reload watcher ───────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		riskEngine.SwapPolicy(risk.PolicyFromConfig(newCfg.Risk))
		slog.Info("risk policy hot-reloaded")
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := api.New(tracker, reg, led, alerts, router)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop ingest workers
	tracker.Shutdown()
	slog.Info("goodbye")
}
