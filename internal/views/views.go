// Package views loads the data behind each dashboard page and runs the
// operator's mutations against the backend.
//
// Every loader follows the same policy: a rejected session (domain.ErrUnauthorized)
// is returned to the caller, any other failure is logged and turned into a
// notice on a page rendered with empty data. Mutations await the backend and
// report the outcome as a Notice; the caller redirects back to the page, which
// loads fresh data.
package views

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/harara-heat/harara-dashboard/internal/config"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/observability"
)

// API is the slice of the backend client the views use.
type API interface {
	CurrentUser(ctx context.Context) (domain.Operator, error)
	Health(ctx context.Context) (domain.Health, error)
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	RunPredictions(ctx context.Context) error
	TodayPredictions(ctx context.Context) ([]domain.Prediction, error)
	PredictionHistory(ctx context.Context, days int) (domain.History, error)
	LatestAlerts(ctx context.Context) ([]domain.Alert, error)
	SendManualAlert(ctx context.Context, alert domain.ManualAlert) error
	TriggerDemoAlert(ctx context.Context) error
	TownUsers(ctx context.Context, town string) ([]domain.User, error)
	RegisterUser(ctx context.Context, reg domain.Registration) error
	SchedulerStatus(ctx context.Context) (domain.SchedulerStatus, error)
	RunSchedulerNow(ctx context.Context) error
	Export(ctx context.Context, kind domain.ExportKind) (domain.Payload, error)
	TodayChart(ctx context.Context) (domain.Payload, error)
}

// NoticeKind distinguishes confirmations from failures.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message shown above a page.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

func success(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }
func failure(text string) Notice { return Notice{Kind: NoticeError, Text: text} }

// Service builds pages and runs mutations.
type Service struct {
	recorder    domain.ActionRecorder
	historyDays int
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewService creates a view service. historyDays is the Predictions window used
// when a request names none or an invalid one.
func NewService(recorder domain.ActionRecorder, historyDays int, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	if !config.ValidHistoryDays(historyDays) {
		historyDays = config.HistoryWindows[0]
	}
	return &Service{recorder: recorder, historyDays: historyDays, metrics: metrics, logger: logger}
}

// loadFailed applies the loader error policy. It returns err when the session
// was rejected, and otherwise logs it and returns the notice to display.
func (s *Service) loadFailed(view string, err error) (*Notice, error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		return nil, err
	}
	s.logger.Warn("view load failed", "view", view, "error", err)
	n := failure("Could not load " + view + " data, so the figures below are empty. Refresh to try again.")
	return &n, nil
}

// mutationFailed applies the mutation error policy.
func (s *Service) mutationFailed(action domain.Action, err error, text string) (Notice, error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		return Notice{}, err
	}
	s.logger.Error("operator action failed", "action", action, "error", err)
	return failure(text), nil
}

func (s *Service) rendered(view string) {
	s.metrics.PageRenders.WithLabelValues(view).Inc()
}

// Record publishes an operator action to the audit stream. Failures are logged
// and never affect the operator's request.
func (s *Service) Record(ctx context.Context, operator string, action domain.Action, town string, err error) {
	outcome := domain.OutcomeSuccess
	detail := ""
	if err != nil {
		outcome = domain.OutcomeFailure
		detail = err.Error()
	}
	rec := domain.OperatorAction{
		ID:         uuid.NewString(),
		Action:     action,
		Operator:   operator,
		Town:       town,
		Detail:     detail,
		Outcome:    outcome,
		OccurredAt: domain.Now(),
	}
	if rerr := s.recorder.Record(ctx, rec); rerr != nil {
		s.logger.Warn("audit record failed", "action", action, "error", rerr)
	}
}
