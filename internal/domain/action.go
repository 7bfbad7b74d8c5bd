package domain

import (
	"context"
	"time"
)

// Action names an operator activity recorded in the audit stream.
type Action string

const (
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionRunPredictions Action = "run_predictions"
	ActionManualAlert    Action = "manual_alert"
	ActionDemoAlert      Action = "demo_alert"
	ActionRegisterUser   Action = "register_user"
	ActionRunScheduler   Action = "run_scheduler"
	ActionExport         Action = "export"
)

// Outcomes of an operator action.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// OperatorAction is one audit record.
type OperatorAction struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Operator   string    `json:"operator,omitempty"`
	Town       string    `json:"town,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Outcome    string    `json:"outcome"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActionRecorder stores operator actions.
type ActionRecorder interface {
	Record(ctx context.Context, action OperatorAction) error
}

// NopRecorder discards actions. It is used when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, OperatorAction) error { return nil }
