package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jkc55555/betsup-engine/internal/adapters/cache"
	"github.com/jkc55555/betsup-engine/internal/adapters/http/api"
	"github.com/jkc55555/betsup-engine/internal/adapters/messaging"
	app "github.com/jkc55555/betsup-engine/internal/app"
	"github.com/jkc55555/betsup-engine/internal/config"
	"github.com/jkc55555/betsup-engine/pkg/logger"
	"github.com/jkc55555/betsup-engine/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	statsInterval         = 5 * time.Second
	redisPingTimeout      = 3 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since the logger isn't available yet.
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithShardCount(cfg.ShardCount),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxStandingsLimit(cfg.MaxStandingsLimit),
		app.WithRecomputeTimeout(time.Duration(cfg.RecomputeTimeoutMS) * time.Millisecond),
		app.WithRecomputeRetries(cfg.RecomputeRetries),
	}

	var mirror *cache.StandingsMirror
	if cfg.RedisEnabled {
		mirror = cache.New(
			cache.WithAddr(cfg.RedisAddr),
			cache.WithTTL(time.Duration(cfg.RedisTTLSeconds)*time.Second),
			cache.WithLogger(log.Named("cache")),
		)
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		if err := mirror.Ping(pingCtx); err != nil {
			log.Warn(ctx, "redis unreachable; standings mirror will retry per publish",
				logger.String("addr", cfg.RedisAddr), logger.Error(err))
		}
		cancel()
		defer func() { _ = mirror.Close() }()
		opts = append(opts, app.WithStandingsPublisher(mirror))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	if cfg.KafkaEnabled {
		consumer := messaging.NewResolutionConsumer(cfg.KafkaBrokers, svc,
			messaging.WithTopic(cfg.KafkaTopic),
			messaging.WithGroupID(cfg.KafkaGroupID),
			messaging.WithLogger(log.Named("messaging")),
		)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error(ctx, "resolution consumer exited", logger.Error(err))
			}
		}()
	}

	go startSystemMetricsUpdater(ctx)
	go startStatsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// startStatsUpdater periodically refreshes service gauges via GetStats.
func startStatsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the series/participant gauges as a side effect.
			_ = svc.GetStats()
		}
	}
}
