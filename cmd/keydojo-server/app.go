package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"keydojo/adapters/jsonfile"
	"keydojo/adapters/memory"
	redisAdapter "keydojo/adapters/redis"
	sqlxAdapter "keydojo/adapters/sqlx"
	"keydojo/analytics"
	"keydojo/api/httpapi"
	"keydojo/config"
	"keydojo/engine"
	"keydojo/integrations/webhook"
	"keydojo/leaderboard"
	"keydojo/progression"
	"keydojo/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Hub        *realtime.Hub
	Board      leaderboard.Board
	Metrics    *analytics.Metrics
	Aggregator *analytics.AggregationEngine
	Service    *engine.ProgressionService
	Handler    http.Handler
	Server     *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideBoard() leaderboard.Board {
	return leaderboard.NewSkipList()
}

func provideMetrics() *analytics.Metrics {
	return analytics.NewMetrics()
}

func provideAggregator(cfg *config.Config, metrics *analytics.Metrics, logger *slog.Logger) *analytics.AggregationEngine {
	return analytics.NewAggregationEngine(metrics, cfg.Analytics.AggregationInterval, logger)
}

func provideStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	return setupStorage(ctx, cfg)
}

func provideService(cfg *config.Config, hub *realtime.Hub, storage engine.Storage, board leaderboard.Board, metrics *analytics.Metrics) *engine.ProgressionService {
	opts := []progression.Option{
		progression.WithRealtime(hub),
		progression.WithStorage(storage),
		progression.WithLeaderboard(board),
		progression.WithAnalytics(metrics),
		progression.WithDispatchMode(engine.DispatchAsync),
	}
	if len(cfg.Webhooks.Endpoints) > 0 {
		var sinkOpts []webhook.Option
		if types := cfg.Webhooks.EventTypes(); len(types) > 0 {
			sinkOpts = append(sinkOpts, webhook.WithEventTypes(types...))
		}
		opts = append(opts, progression.WithAnalytics(webhook.New(cfg.Webhooks.Endpoints, sinkOpts...)))
	}
	return progression.New(opts...)
}

func provideHandler(svc *engine.ProgressionService, hub *realtime.Hub, board leaderboard.Board, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
		Board:            board,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the appropriate storage adapter based on configuration.
func setupStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return memory.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "file":
		return jsonfile.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
