package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strata/internal/adapters/clickhouse"
	"strata/internal/adapters/config"
	"strata/internal/adapters/errors/noop"
	"strata/internal/adapters/errors/sentry"
	"strata/internal/adapters/kafka"
	"strata/internal/adapters/redis"
	"strata/internal/events"
	"strata/internal/metrics"
	chrepo "strata/internal/repository/clickhouse"
	"strata/internal/services/analysis"
	"strata/internal/services/report"
	"strata/internal/workers"
	levelsworker "strata/internal/workers/levels"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	redisClient := initRedis(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
		metricsCollector := metrics.NewCustomCollector(log, chClient.Conn(), redisClient.Client())
		registerCollector(metricsCollector, log)
	}

	marketData := chrepo.NewMarketDataRepository(chClient.Conn())

	var cache *analysis.LevelsCache
	if cfg.Analysis.CacheEnabled && redisClient != nil {
		cacheCfg := analysis.DefaultCacheConfig()
		cacheCfg.TTL = cfg.Analysis.CacheTTL
		cache = analysis.NewLevelsCache(cacheCfg, redisClient)
	}

	service, err := analysis.NewService(marketData, cache, cfg.Analysis)
	if err != nil {
		log.Fatalf("Failed to build analysis service: %v", err)
	}

	formatter := report.NewFormatter(cfg.Output.ReportLevels)
	writer, err := report.NewWriter(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	publisher := initPublisher(cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.Workers.Enabled {
		runOnce(ctx, cfg, service, formatter, writer, publisher, log)
		return
	}

	registry := workers.NewRegistry()
	scheduler := workers.NewScheduler()
	scheduler.SetRegistry(registry)
	scheduler.SetShutdownTimeout(time.Duration(cfg.Workers.ShutdownTimeoutSeconds) * time.Second)
	scheduler.RegisterWorker(levelsworker.NewWorker(
		service, formatter, writer, publisher,
		cfg.Workers.LevelsSymbols,
		cfg.Workers.LevelsInterval,
		true,
	))

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	if cfg.Workers.MetricsEnabled {
		go serveMetrics(cfg.Workers.MetricsListenAddr, chClient, redisClient, registry, log)
	}

	log.Info("System initialized successfully")
	waitForShutdown(cancel, scheduler, errorTracker, log)
}

// runOnce performs a single analysis of the configured symbol, prints
// the levels report and saves both report files
func runOnce(
	ctx context.Context,
	cfg *config.Config,
	service *analysis.Service,
	formatter *report.Formatter,
	writer *report.Writer,
	publisher *events.Publisher,
	log *logger.Logger,
) {
	snap, err := service.Analyze(ctx, cfg.Analysis.Symbol)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	levelsText := formatter.Levels(snap)
	fmt.Println(levelsText)

	if _, err := writer.SaveLevels(levelsText, snap.Symbol, snap.GeneratedAt); err != nil {
		log.Errorf("Failed to save levels report: %v", err)
	}
	if _, err := writer.SaveSwingPoints(formatter.SwingPoints(snap), snap.Symbol, snap.GeneratedAt); err != nil {
		log.Errorf("Failed to save swing points report: %v", err)
	}

	if err := publisher.PublishLevelsComputed(ctx, &events.LevelsComputedEvent{
		RunID:        snap.RunID,
		Symbol:       snap.Symbol,
		Timeframe:    snap.Timeframe,
		GeneratedAt:  snap.GeneratedAt,
		CurrentPrice: snap.Result.CurrentPrice,
		Support:      snap.Result.Support,
		Resistance:   snap.Result.Resistance,
		FromCache:    snap.FromCache,
	}); err != nil {
		log.Errorf("Failed to publish levels: %v", err)
	}
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initRedis connects to Redis. Redis only backs the cache, so failure
// degrades to uncached operation instead of aborting startup.
func initRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	client, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Warnf("Failed to connect to Redis, caching disabled: %v", err)
		return nil
	}
	return client
}

// initPublisher builds the Kafka publisher, or nil when disabled
func initPublisher(cfg *config.Config, log *logger.Logger) *events.Publisher {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		log.Info("Kafka publishing disabled")
		return nil
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	log.Info("Kafka publisher initialized", "brokers", cfg.Kafka.Brokers)
	return events.NewPublisher(producer, log)
}

func registerCollector(c *metrics.CustomCollector, log *logger.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("Failed to register custom collector: %v", r)
		}
	}()
	metrics.Register(c)
}

// workerStatus is the JSON view of one worker's health
type workerStatus struct {
	LastRun     time.Time `json:"last_run"`
	RunCount    int64     `json:"run_count"`
	ErrorCount  int64     `json:"error_count"`
	AvgDuration string    `json:"avg_duration"`
	LastError   string    `json:"last_error,omitempty"`
	IsRunning   bool      `json:"is_running"`
	Enabled     bool      `json:"enabled"`
}

type healthResponse struct {
	Status    string                  `json:"status"`
	Unhealthy []string                `json:"unhealthy,omitempty"`
	Workers   map[string]workerStatus `json:"workers"`
}

func workerStatuses(registry *workers.Registry) map[string]workerStatus {
	out := make(map[string]workerStatus)
	for name, h := range registry.AllHealth() {
		st := workerStatus{
			LastRun:     h.LastRun,
			RunCount:    h.RunCount,
			ErrorCount:  h.ErrorCount,
			AvgDuration: h.AvgDuration.String(),
			IsRunning:   h.IsRunning,
			Enabled:     h.Enabled,
		}
		if h.LastError != nil {
			st.LastError = h.LastError.Error()
		}
		out[name] = st
	}
	return out
}

// serveMetrics exposes /metrics and /health
func serveMetrics(addr string, ch *clickhouse.Client, rd *redis.Client, registry *workers.Registry, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := ch.Health(ctx); err != nil {
			http.Error(w, "clickhouse unavailable", http.StatusServiceUnavailable)
			return
		}
		if rd != nil {
			if err := rd.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		resp := healthResponse{
			Status:  "ok",
			Workers: workerStatuses(registry),
		}
		code := http.StatusOK
		if unhealthy := registry.Unhealthy(); len(unhealthy) > 0 {
			resp.Status = "degraded"
			resp.Unhealthy = unhealthy
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})

	log.Info("Metrics server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server stopped: %v", err)
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(cancel context.CancelFunc, scheduler *workers.Scheduler, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()
	if err := scheduler.Stop(); err != nil {
		log.Errorf("Scheduler shutdown: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := errorTracker.Flush(flushCtx); err != nil {
		log.Warnf("Error tracker flush: %v", err)
	}
	log.Info("Shutdown complete")
}
