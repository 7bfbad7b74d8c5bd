package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/harara-heat/harara-dashboard/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and makes
// it the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "harara-dashboard")
	slog.SetDefault(logger)
	return logger
}
