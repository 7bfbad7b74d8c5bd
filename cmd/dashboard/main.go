package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/securecookie"
	"github.com/harara-heat/harara-dashboard/internal/adapter/harara"
	httpadapter "github.com/harara-heat/harara-dashboard/internal/adapter/http"
	kafkaadapter "github.com/harara-heat/harara-dashboard/internal/adapter/kafka"
	"github.com/harara-heat/harara-dashboard/internal/config"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/observability"
	"github.com/harara-heat/harara-dashboard/internal/session"
	"github.com/harara-heat/harara-dashboard/internal/views"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A missing .env is fine; the environment is authoritative.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	client := harara.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)
	ready := []httpadapter.ReadinessChecker{client}

	var (
		store session.Store
		rdb   *redis.Client
	)
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := session.NewRedisStore(rdb, secret, cfg.SessionCookieSecure)
		store = rs
		ready = append(ready, httpadapter.ReadinessFunc(rs.Ping))
		logger.Info("redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	default:
		store = session.NewCookieStore(secret, nil, cfg.SessionCookieSecure)
		logger.Info("cookie session store")
	}

	var (
		recorder domain.ActionRecorder = domain.NopRecorder{}
		audit    *kafkaadapter.AuditWriter
	)
	if cfg.AuditEnabled {
		audit = kafkaadapter.NewAuditWriter(cfg, metrics, logger)
		recorder = audit
		logger.Info("operator audit enabled", "topic", cfg.AuditTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("operator audit disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Options{
		Sessions:        store,
		Auth:            session.NewController(client, cfg.SessionVerify, metrics, logger),
		Views:           views.NewService(recorder, cfg.HistoryDays, metrics, logger),
		Ready:           httpadapter.Readiness(ready...),
		FlashSecret:     secret,
		SecureCookies:   cfg.SessionCookieSecure,
		RefreshInterval: cfg.SettingsRefreshInterval,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()
	logger.Info("dashboard started", "api", cfg.APIBaseURL)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if audit != nil {
		if err := audit.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
