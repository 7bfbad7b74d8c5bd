package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/observability"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("connection refused")

// fakeAPI serves canned responses and records which operations ran.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	preds     []domain.Prediction
	alerts    []domain.Alert
	health    domain.Health
	stats     domain.DashboardStats
	scheduler domain.SchedulerStatus
	history   domain.History
	operator  domain.Operator
	users     map[string][]domain.User
	payload   domain.Payload

	errs     map[string]error
	townErrs map[string]error
	days     int
	sent     []any
}

func (f *fakeAPI) call(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeAPI) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeAPI) CurrentUser(context.Context) (domain.Operator, error) {
	return f.operator, f.call("current_user")
}

func (f *fakeAPI) Health(context.Context) (domain.Health, error) {
	return f.health, f.call("health")
}

func (f *fakeAPI) DashboardStats(context.Context) (domain.DashboardStats, error) {
	return f.stats, f.call("dashboard_stats")
}

func (f *fakeAPI) RunPredictions(context.Context) error { return f.call("run_predictions") }

func (f *fakeAPI) TodayPredictions(context.Context) ([]domain.Prediction, error) {
	return f.preds, f.call("today_predictions")
}

func (f *fakeAPI) PredictionHistory(_ context.Context, days int) (domain.History, error) {
	f.mu.Lock()
	f.days = days
	f.mu.Unlock()
	return f.history, f.call("prediction_history")
}

func (f *fakeAPI) LatestAlerts(context.Context) ([]domain.Alert, error) {
	return f.alerts, f.call("latest_alerts")
}

func (f *fakeAPI) SendManualAlert(_ context.Context, alert domain.ManualAlert) error {
	f.mu.Lock()
	f.sent = append(f.sent, alert)
	f.mu.Unlock()
	return f.call("send_manual_alert")
}

func (f *fakeAPI) TriggerDemoAlert(context.Context) error { return f.call("trigger_demo_alert") }

func (f *fakeAPI) TownUsers(_ context.Context, town string) ([]domain.User, error) {
	if err := f.call("town_users"); err != nil {
		return nil, err
	}
	if err := f.townErrs[town]; err != nil {
		return nil, err
	}
	return f.users[town], nil
}

func (f *fakeAPI) RegisterUser(_ context.Context, reg domain.Registration) error {
	f.mu.Lock()
	f.sent = append(f.sent, reg)
	f.mu.Unlock()
	return f.call("register_user")
}

func (f *fakeAPI) SchedulerStatus(context.Context) (domain.SchedulerStatus, error) {
	return f.scheduler, f.call("scheduler_status")
}

func (f *fakeAPI) RunSchedulerNow(context.Context) error { return f.call("run_scheduler_now") }

func (f *fakeAPI) Export(_ context.Context, kind domain.ExportKind) (domain.Payload, error) {
	return f.payload, f.call("export_" + kind.Slug())
}

func (f *fakeAPI) TodayChart(context.Context) (domain.Payload, error) {
	return f.payload, f.call("today_chart")
}

type recordingRecorder struct {
	mu      sync.Mutex
	actions []domain.OperatorAction
	err     error
}

func (r *recordingRecorder) Record(_ context.Context, a domain.OperatorAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return r.err
}

func testService() (*Service, *recordingRecorder, *observability.Metrics) {
	rec := &recordingRecorder{}
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(rec, 7, metrics, logger), rec, metrics
}

func usersFor(n int, town string) []domain.User {
	users := make([]domain.User, n)
	for i := range users {
		users[i] = domain.User{Name: fmt.Sprintf("%s-%d", town, i), Phone: fmt.Sprintf("+21191%07d", i)}
	}
	return users
}

func populatedAPI() *fakeAPI {
	return &fakeAPI{
		preds: []domain.Prediction{
			{Town: "Juba", Probability: 0.8, Alert: true, Severity: domain.LevelHigh},
			{Town: "Wau", Probability: 0.7},
			{Town: "Bor", Probability: 0.2},
		},
		alerts: []domain.Alert{
			{Town: "Juba", Severity: domain.LevelHigh}, {Town: "Wau", Severity: domain.LevelModerate},
			{Town: "Bor", Severity: domain.LevelLow}, {Town: "Juba", Severity: domain.LevelHigh},
			{Town: "Yambio", Severity: domain.LevelUnknown}, {Town: "Bentiu", Severity: domain.LevelLow},
		},
		health:    domain.Health{Status: domain.StatusOnline, EEReady: true},
		stats:     domain.DashboardStats{ActiveAlerts: 2, HighRiskTowns: 1, TotalUsers: 21},
		scheduler: domain.SchedulerStatus{Enabled: true, Jobs: []domain.SchedulerJob{{ID: "daily", NextRunTime: "2025-07-02T07:00:00+02:00"}}},
		users: map[string][]domain.User{
			"Juba": usersFor(6, "Juba"), "Wau": usersFor(5, "Wau"), "Yambio": usersFor(4, "Yambio"),
			"Bor": usersFor(3, "Bor"), "Malakal": usersFor(2, "Malakal"), "Bentiu": usersFor(1, "Bentiu"),
		},
	}
}

func cardValues(cards []widgets.StatCard) map[string]string {
	out := make(map[string]string, len(cards))
	for _, c := range cards {
		out[c.Title] = c.Value
	}
	return out
}

func TestDashboard_Populated(t *testing.T) {
	svc, _, metrics := testService()
	api := populatedAPI()

	page, err := svc.Dashboard(context.Background(), api)
	require.NoError(t, err)

	assert.Nil(t, page.Notice)
	assert.Len(t, page.Predictions, 3)
	assert.Len(t, page.RecentAlerts, recentAlertLimit)
	assert.Len(t, page.Map.Markers, 6)
	assert.Equal(t, 21, page.Users.Total())
	assert.Empty(t, page.UnavailableTowns)
	assert.Equal(t, map[string]string{
		"Active Alerts":    "2",
		"High Risk Towns":  "1",
		"System Status":    "Online",
		"Registered Users": "21",
	}, cardValues(page.Cards))
	assert.Equal(t, "EE: Ready | Model: Not Loaded", page.Cards[2].Subtitle)
	assert.Equal(t, widgets.ToneRed, page.Cards[0].Tone)

	for _, op := range []string{"today_predictions", "latest_alerts", "health", "scheduler_status", "dashboard_stats"} {
		assert.Equal(t, 1, api.called(op), op)
	}
	assert.Equal(t, 6, api.called("town_users"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PageRenders.WithLabelValues("dashboard")))
}

func TestDashboard_StatsSystemStatusWinsOverHealth(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.stats.SystemStatus = &domain.Health{Status: domain.StatusOffline, ModelLoaded: true}

	page, err := svc.Dashboard(context.Background(), api)
	require.NoError(t, err)

	assert.Equal(t, "Offline", cardValues(page.Cards)["System Status"])
	assert.Equal(t, "EE: Not Ready | Model: Loaded", page.Cards[2].Subtitle)
	assert.Equal(t, widgets.ToneRed, page.Cards[2].Tone)
}

func TestDashboard_OneTownFailingStillRenders(t *testing.T) {
	svc, _, metrics := testService()
	api := populatedAPI()
	api.townErrs = map[string]error{"Malakal": errBackend}

	page, err := svc.Dashboard(context.Background(), api)
	require.NoError(t, err)

	assert.Nil(t, page.Notice)
	assert.Equal(t, []string{"Malakal"}, page.UnavailableTowns)
	assert.Empty(t, page.Users["Malakal"])
	assert.NotNil(t, page.Users["Malakal"])
	assert.Equal(t, 19, page.Users.Total())
	for _, town := range []string{"Juba", "Wau", "Yambio", "Bor", "Bentiu"} {
		assert.NotEmpty(t, page.Users[town], town)
	}
	assert.Len(t, page.Predictions, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TownFetchFailures.WithLabelValues("Malakal")))
}

func TestDashboard_TopLevelFailureRendersNotice(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.errs = map[string]error{"health": errBackend}

	page, err := svc.Dashboard(context.Background(), api)
	require.NoError(t, err)

	require.NotNil(t, page.Notice)
	assert.Equal(t, NoticeError, page.Notice.Kind)
	assert.Equal(t, "Could not load dashboard data, so the figures below are empty. Refresh to try again.", page.Notice.Text)
	assert.Empty(t, page.Predictions)
	assert.Len(t, page.Map.Markers, 6)
	assert.Equal(t, "Offline", cardValues(page.Cards)["System Status"])
	assert.Zero(t, api.called("town_users"))
}

func TestDashboard_UnauthorizedAborts(t *testing.T) {
	tests := map[string]*fakeAPI{
		"top level": func() *fakeAPI {
			api := populatedAPI()
			api.errs = map[string]error{"dashboard_stats": domain.ErrUnauthorized}
			return api
		}(),
		"town fan-out": func() *fakeAPI {
			api := populatedAPI()
			api.townErrs = map[string]error{"Wau": fmt.Errorf("town users: %w", domain.ErrUnauthorized)}
			return api
		}(),
	}
	for name, api := range tests {
		t.Run(name, func(t *testing.T) {
			svc, _, _ := testService()
			page, err := svc.Dashboard(context.Background(), api)
			require.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Nil(t, page)
		})
	}
}

func TestUsers_Aggregates(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.users["Bentiu"] = nil
	api.townErrs = map[string]error{"Bor": errBackend}

	page, err := svc.Users(context.Background(), api)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Total Users":    "17",
		"Active Towns":   "4",
		"Avg Users/Town": "4",
	}, cardValues(page.Cards))
	assert.Equal(t, []string{"Bor"}, page.UnavailableTowns)
	require.Len(t, page.Recipients, 17)
	assert.Equal(t, "Juba", page.Recipients[0].Town)
	assert.Equal(t, "Malakal", page.Recipients[16].Town)
}

func TestUsers_AllTownsFailing(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.townErrs = map[string]error{}
	for _, name := range domain.TownNames() {
		api.townErrs[name] = errBackend
	}

	page, err := svc.Users(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, domain.TownNames(), page.UnavailableTowns)
	assert.Zero(t, page.Users.Total())
}

func TestRegisterUser(t *testing.T) {
	t.Run("empty phone issues no request", func(t *testing.T) {
		svc, rec, _ := testService()
		api := &fakeAPI{}

		notice, err := svc.RegisterUser(context.Background(), api, "admin", domain.Registration{Town: "Juba", Name: "A"})
		require.NoError(t, err)
		assert.Equal(t, NoticeError, notice.Kind)
		assert.Zero(t, api.called("register_user"))
		assert.Empty(t, rec.actions)
	})

	t.Run("unknown town issues no request", func(t *testing.T) {
		svc, _, _ := testService()
		api := &fakeAPI{}

		notice, err := svc.RegisterUser(context.Background(), api, "admin", domain.Registration{Phone: "+211", Town: "Nairobi"})
		require.NoError(t, err)
		assert.Equal(t, NoticeError, notice.Kind)
		assert.Zero(t, api.called("register_user"))
	})

	t.Run("success is recorded", func(t *testing.T) {
		svc, rec, _ := testService()
		api := &fakeAPI{}
		reg := domain.Registration{Phone: "+211912345678", Town: "Bor", Name: "Deng"}

		notice, err := svc.RegisterUser(context.Background(), api, "admin", reg)
		require.NoError(t, err)
		assert.Equal(t, success("User registered successfully!"), notice)
		assert.Equal(t, []any{reg}, api.sent)
		require.Len(t, rec.actions, 1)
		assert.Equal(t, domain.ActionRegisterUser, rec.actions[0].Action)
		assert.Equal(t, "Bor", rec.actions[0].Town)
		assert.Equal(t, domain.OutcomeSuccess, rec.actions[0].Outcome)
		assert.NotEmpty(t, rec.actions[0].ID)
	})

	t.Run("backend failure", func(t *testing.T) {
		svc, rec, _ := testService()
		api := &fakeAPI{errs: map[string]error{"register_user": errBackend}}

		notice, err := svc.RegisterUser(context.Background(), api, "admin", domain.Registration{Phone: "+211", Town: "Bor"})
		require.NoError(t, err)
		assert.Equal(t, failure("Failed to register user"), notice)
		assert.Equal(t, domain.OutcomeFailure, rec.actions[0].Outcome)
	})
}

func TestPredictions(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.history = domain.History{
		"2025-06-30": {{Town: "Juba", Probability: 0.5}, {Town: "Wau", Probability: 0.4}},
		"2025-07-01": {{Town: "Juba", Probability: 0.6}},
	}

	page, err := svc.Predictions(context.Background(), api, 14)
	require.NoError(t, err)

	assert.Equal(t, 14, api.days)
	assert.Equal(t, map[string]string{
		"Total Predictions":   "3",
		"Average Probability": "56.7%",
		"Active Towns":        "3",
	}, cardValues(page.Cards))
	assert.Equal(t, "Last 14 days", page.Cards[0].Subtitle)
	require.Len(t, page.History, 2)
	assert.Equal(t, "2025-07-01", page.History[0].Date)
}

func TestPredictions_FailureKeepsPageRenderable(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.errs = map[string]error{"prediction_history": errBackend}

	page, err := svc.Predictions(context.Background(), api, 7)
	require.NoError(t, err)
	require.NotNil(t, page.Notice)
	assert.Contains(t, page.Notice.Text, "Could not load predictions data, so the figures below are empty.")
	assert.Empty(t, page.Predictions)
	assert.Equal(t, "0.0%", cardValues(page.Cards)["Average Probability"])
}

func TestHistoryWindow(t *testing.T) {
	svc, _, _ := testService()
	tests := map[string]int{"": 7, "7": 7, "14": 14, "30": 30, "31": 7, "abc": 7, "-14": 7}
	for raw, want := range tests {
		assert.Equal(t, want, svc.HistoryWindow(raw), raw)
	}
}

func TestAlerts(t *testing.T) {
	svc, _, _ := testService()
	page, err := svc.Alerts(context.Background(), populatedAPI())
	require.NoError(t, err)

	assert.Equal(t, domain.SeverityCounts{High: 2, Moderate: 1, Low: 2}, page.Counts)
	assert.Len(t, page.Alerts, 6)
	assert.Equal(t, domain.TownNames(), page.Towns)
}

func TestSendManualAlert(t *testing.T) {
	svc, rec, _ := testService()
	api := &fakeAPI{}

	notice, err := svc.SendManualAlert(context.Background(), api, "admin", domain.ManualAlert{Town: "Juba", Severity: domain.LevelHigh})
	require.NoError(t, err)
	assert.Equal(t, NoticeError, notice.Kind)
	assert.Zero(t, api.called("send_manual_alert"))

	alert := domain.ManualAlert{Town: "Juba", Message: "Stay hydrated", Severity: domain.LevelHigh}
	notice, err = svc.SendManualAlert(context.Background(), api, "admin", alert)
	require.NoError(t, err)
	assert.Equal(t, success("Alert sent successfully!"), notice)
	assert.Equal(t, []any{alert}, api.sent)
	require.Len(t, rec.actions, 1)
	assert.Equal(t, "admin", rec.actions[0].Operator)
}

func TestMutations_UnauthorizedPropagates(t *testing.T) {
	svc, _, _ := testService()
	api := &fakeAPI{errs: map[string]error{
		"trigger_demo_alert": domain.ErrUnauthorized,
		"run_predictions":    domain.ErrUnauthorized,
		"run_scheduler_now":  domain.ErrUnauthorized,
	}}
	ctx := context.Background()

	_, err := svc.TriggerDemoAlert(ctx, api, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.RunPredictions(ctx, api, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.RunSchedulerNow(ctx, api, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMutations_Messages(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := testService()

	ok := &fakeAPI{}
	n, _ := svc.RunPredictions(ctx, ok, "")
	assert.Equal(t, "Predictions updated successfully!", n.Text)
	n, _ = svc.RunSchedulerNow(ctx, ok, "")
	assert.Equal(t, "Scheduler job executed successfully!", n.Text)
	n, _ = svc.TriggerDemoAlert(ctx, ok, "")
	assert.Equal(t, "Demo alert triggered!", n.Text)

	bad := &fakeAPI{errs: map[string]error{
		"run_predictions": errBackend, "run_scheduler_now": errBackend, "trigger_demo_alert": errBackend,
	}}
	n, _ = svc.RunPredictions(ctx, bad, "")
	assert.Equal(t, failure("Failed to run predictions"), n)
	n, _ = svc.RunSchedulerNow(ctx, bad, "")
	assert.Equal(t, failure("Failed to run scheduler job"), n)
	n, _ = svc.TriggerDemoAlert(ctx, bad, "")
	assert.Equal(t, failure("Failed to trigger demo alert"), n)
}

func TestRecorderFailureDoesNotFailMutation(t *testing.T) {
	svc, rec, _ := testService()
	rec.err = errors.New("broker down")

	n, err := svc.RunPredictions(context.Background(), &fakeAPI{}, "admin")
	require.NoError(t, err)
	assert.Equal(t, NoticeSuccess, n.Kind)
}

func TestSettings(t *testing.T) {
	svc, _, _ := testService()
	api := populatedAPI()
	api.operator = domain.Operator{Username: "admin", Role: "admin"}

	page, err := svc.Settings(context.Background(), api, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"API Status":   "Online",
		"Earth Engine": "Ready",
		"Scheduler":    "Enabled",
		"Next Run":     "Scheduled",
	}, cardValues(page.Cards))
	assert.Equal(t, "1 active jobs", page.Cards[2].Subtitle)
	require.NotNil(t, page.Operator)
	assert.Equal(t, "admin", page.Operator.Username)
	assert.Equal(t, 30*time.Second, page.Refresh)
}

func TestSettings_IdentityIsOptional(t *testing.T) {
	svc, _, _ := testService()
	api := &fakeAPI{errs: map[string]error{"current_user": errBackend}}

	page, err := svc.Settings(context.Background(), api, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, page.Notice)
	assert.Nil(t, page.Operator)
	assert.Equal(t, map[string]string{
		"API Status":   "Offline",
		"Earth Engine": "Not Ready",
		"Scheduler":    "Disabled",
		"Next Run":     "None",
	}, cardValues(page.Cards))
	assert.Equal(t, widgets.ToneYellow, page.Cards[3].Tone)
}

func TestExport(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	svc, rec, metrics := testService()
	api := &fakeAPI{payload: domain.Payload{Data: []byte("town,probability\n")}}

	dl, err := svc.Export(context.Background(), api, "admin", domain.ExportPredictions)
	require.NoError(t, err)
	assert.Equal(t, "predictions_2025-03-09.csv", dl.Filename)
	assert.Equal(t, "text/csv", dl.ContentType)
	assert.Equal(t, []byte("town,probability\n"), dl.Data)

	api.payload = domain.Payload{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"}
	dl, err = svc.Export(context.Background(), api, "admin", domain.ExportReport)
	require.NoError(t, err)
	assert.Equal(t, "harara_report_2025-03.pdf", dl.Filename)
	assert.Equal(t, "application/pdf", dl.ContentType)

	assert.Len(t, rec.actions, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Exports.WithLabelValues("report", domain.OutcomeSuccess)))
}

func TestExport_Failure(t *testing.T) {
	svc, _, metrics := testService()
	api := &fakeAPI{errs: map[string]error{"export_logs": errBackend}}

	dl, err := svc.Export(context.Background(), api, "admin", domain.ExportLogs)
	require.ErrorIs(t, err, errBackend)
	assert.Nil(t, dl)
	assert.Equal(t, "Failed to export logs", ExportFailure(domain.ExportLogs).Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Exports.WithLabelValues("logs", domain.OutcomeFailure)))
}

func TestExports_Concurrent(t *testing.T) {
	svc, _, _ := testService()
	api := &fakeAPI{payload: domain.Payload{Data: []byte("x")}}

	var wg sync.WaitGroup
	errs := make([]error, len(domain.ExportKinds))
	for i, kind := range domain.ExportKinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Export(context.Background(), api, "admin", kind)
		}()
	}
	wg.Wait()

	for i, kind := range domain.ExportKinds {
		assert.NoError(t, errs[i])
		assert.Equal(t, 1, api.called("export_"+kind.Slug()))
	}
}
