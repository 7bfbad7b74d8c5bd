package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Session storage backends.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// DefaultAPIURL is the hosted Harara backend.
const DefaultAPIURL = "https://harara-heat-dror.onrender.com"

// Config holds all dashboard settings, populated from environment variables
// and, when CONFIG_FILE is set, a YAML file of the same keys.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Harara backend.
	APIBaseURL string
	APITimeout time.Duration

	// Operator sessions.
	SessionSecret       string
	SessionBackend      string
	SessionCookieSecure bool
	SessionVerify       bool
	RedisAddr           string
	RedisPassword       string
	RedisDB             int

	// Views.
	SettingsRefreshInterval time.Duration
	HistoryDays             int

	// Operator action audit stream.
	AuditEnabled bool
	KafkaBrokers []string
	AuditTopic   string
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	src, err := newSource()
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	apiTimeout, err := src.duration("API_TIMEOUT", "0s", true)
	if err != nil {
		return nil, err
	}
	refresh, err := src.duration("SETTINGS_REFRESH_INTERVAL", "30s", false)
	if err != nil {
		return nil, err
	}
	historyDays, err := src.integer("HISTORY_DAYS", 7)
	if err != nil {
		return nil, err
	}
	redisDB, err := src.integer("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	brokers := sharedcfg.ParseBrokers(src.get("KAFKA_BROKERS", ""))
	auditEnabled := len(brokers) > 0
	if v := src.get("AUDIT_ENABLED", ""); v != "" {
		auditEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        src.get("HTTP_ADDR", ":8080"),
		LogLevel:        src.get("LOG_LEVEL", "info"),
		LogFormat:       src.get("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		APIBaseURL: src.get("HARARA_API_URL", DefaultAPIURL),
		APITimeout: apiTimeout,

		SessionSecret:       src.get("SESSION_SECRET", ""),
		SessionBackend:      src.get("SESSION_BACKEND", SessionBackendCookie),
		SessionCookieSecure: src.get("SESSION_COOKIE_SECURE", "false") == "true",
		SessionVerify:       src.get("SESSION_VERIFY", "false") == "true",
		RedisAddr:           src.get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       src.get("REDIS_PASSWORD", ""),
		RedisDB:             redisDB,

		SettingsRefreshInterval: refresh,
		HistoryDays:             historyDays,

		AuditEnabled: auditEnabled,
		KafkaBrokers: brokers,
		AuditTopic:   src.get("AUDIT_TOPIC", "harara-operator-actions"),
	}

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("HARARA_API_URL must be an absolute URL")
	}
	switch cfg.SessionBackend {
	case SessionBackendCookie:
	case SessionBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required when SESSION_BACKEND is redis")
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if !ValidHistoryDays(cfg.HistoryDays) {
		return nil, errors.New("HISTORY_DAYS must be one of 7, 14, 30")
	}
	if cfg.AuditEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("AUDIT_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.AuditEnabled && cfg.AuditTopic == "" {
		return nil, errors.New("AUDIT_TOPIC is required")
	}

	return cfg, nil
}

// HistoryWindows lists the prediction history windows offered to operators.
var HistoryWindows = []int{7, 14, 30}

// ValidHistoryDays reports whether days is one of HistoryWindows.
func ValidHistoryDays(days int) bool {
	for _, d := range HistoryWindows {
		if d == days {
			return true
		}
	}
	return false
}
