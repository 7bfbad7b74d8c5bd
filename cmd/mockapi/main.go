// Command mockapi serves a stand-in Harara backend for local dashboard
// development. Its fixtures are derived from the date, so pinning -date gives
// reproducible data.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8000 -date 2025-04-26
//	HARARA_API_URL=http://localhost:8000 go run ./cmd/dashboard
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mockapi failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", ":8000", "listen address")
	date := flag.String("date", "", "pin the clock to 06:00 UTC on this day (YYYY-MM-DD)")
	username := flag.String("username", "admin", "operator username")
	password := flag.String("password", "admin", "operator password")
	tokenTTL := flag.Duration("token-ttl", 30*time.Minute, "issued token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *date != "" {
		day, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(day.Add(6 * time.Hour)))
		defer domain.SetClock(nil)
	}

	api := &mockAPI{
		fx:       newFixtures(domain.Now(), maxHistoryDays),
		username: *username,
		password: *password,
		secret:   securecookie.GenerateRandomKey(32),
		tokenTTL: *tokenTTL,
		logger:   logger,
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock api listening", "addr", *addr, "today", domain.Now().Format(time.DateOnly))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
