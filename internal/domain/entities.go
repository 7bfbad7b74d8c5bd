package domain

import (
	"fmt"
	"sort"
)

// NotScheduled is shown when the scheduler has no upcoming job.
const NotScheduled = "Not scheduled"

// Prediction is a town's heatwave probability for a day.
type Prediction struct {
	Town        string  `json:"town"`
	Probability float64 `json:"probability"`
	Alert       bool    `json:"alert"`
	Severity    Level   `json:"severity"`
	Date        string  `json:"date,omitempty"`
}

// Risk classifies the prediction's probability.
func (p Prediction) Risk() Level {
	return Classify(p.Probability)
}

// Percent formats the probability as a percentage with one decimal.
func (p Prediction) Percent() string {
	return FormatPercent(p.Probability)
}

// SeverityLabel is the backend severity, or "N/A" when absent.
func (p Prediction) SeverityLabel() string {
	if p.Severity == LevelUnknown {
		return "N/A"
	}
	return p.Severity.String()
}

// FormatPercent renders a probability in [0,1] as "80.0%".
func FormatPercent(probability float64) string {
	return fmt.Sprintf("%.1f%%", probability*100)
}

// Alert is a heatwave alert record.
type Alert struct {
	Town      string    `json:"town"`
	Message   string    `json:"message"`
	Severity  Level     `json:"severity"`
	Timestamp Timestamp `json:"timestamp"`
	Date      string    `json:"date,omitempty"`
	Alert     bool      `json:"alert"`
}

// When is the alert time, falling back to the date field.
func (a Alert) When() Timestamp {
	if !a.Timestamp.IsZero() {
		return a.Timestamp
	}
	ts, _ := ParseTimestamp(a.Date)
	return ts
}

// User is an SMS alert recipient.
type User struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone_number"`
	Town      string    `json:"town"`
	Active    bool      `json:"active"`
	CreatedAt Timestamp `json:"created_at"`
}

// DisplayName is the recipient name, or "N/A" when not given.
func (u User) DisplayName() string {
	if u.Name == "" {
		return "N/A"
	}
	return u.Name
}

// History maps an ISO date to that day's predictions.
type History map[string][]Prediction

// HistoryDay is one day of History.
type HistoryDay struct {
	Date        string
	Predictions []Prediction
}

// Days returns the history ordered newest first.
func (h History) Days() []HistoryDay {
	days := make([]HistoryDay, 0, len(h))
	for date, preds := range h {
		days = append(days, HistoryDay{Date: date, Predictions: preds})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days
}

// Health is the backend's component readiness.
type Health struct {
	Status         SystemStatus `json:"status"`
	EEReady        bool         `json:"ee_ready"`
	FirestoreReady bool         `json:"firestore_ready"`
	ModelLoaded    bool         `json:"model_loaded"`
	Timestamp      Timestamp    `json:"timestamp"`
}

// DashboardStats are the backend's precomputed dashboard counters.
type DashboardStats struct {
	ActiveAlerts  int       `json:"active_alerts"`
	HighRiskTowns int       `json:"high_risk_towns"`
	TotalUsers    int       `json:"total_users"`
	SystemStatus  *Health   `json:"system_status"`
	LastUpdated   Timestamp `json:"last_updated"`
}

// SchedulerJob is one scheduled backend job.
type SchedulerJob struct {
	ID          string `json:"id"`
	NextRunTime string `json:"next_run_time"`
	Trigger     string `json:"trigger"`
}

// SchedulerStatus describes the backend's daily prediction scheduler.
type SchedulerStatus struct {
	Enabled bool           `json:"enabled"`
	Jobs    []SchedulerJob `json:"jobs"`
}

// NextRun is the first job's next run time, or NotScheduled.
func (s SchedulerStatus) NextRun() string {
	if len(s.Jobs) == 0 || s.Jobs[0].NextRunTime == "" {
		return NotScheduled
	}
	return s.Jobs[0].NextRunTime
}

// Scheduled reports whether a next run is known.
func (s SchedulerStatus) Scheduled() bool {
	return s.NextRun() != NotScheduled
}

// Operator is the signed-in dashboard account.
type Operator struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
