package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/adapter/harara"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.April, 26, 6, 0, 0, 0, time.UTC)

type bearer struct {
	token       string
	invalidated bool
}

func (b *bearer) Token() string                { return b.token }
func (b *bearer) Invalidate(_ context.Context) { b.invalidated = true }

func newMock(t *testing.T) (*harara.Client, *fixtures) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	fx := newFixtures(domain.Now(), maxHistoryDays)
	api := &mockAPI{
		fx:       fx,
		username: "admin",
		password: "admin",
		secret:   []byte("mock-secret"),
		tokenTTL: 30 * time.Minute,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)

	client := harara.NewClient(srv.URL, 5*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return client, fx
}

func login(t *testing.T, client *harara.Client) *bearer {
	t.Helper()
	res, err := client.Login(context.Background(), domain.Credentials{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1800), res.ExpiresIn)
	return &bearer{token: res.AccessToken}
}

func TestFixturesAreDeterministic(t *testing.T) {
	a := newFixtures(fixedNow, maxHistoryDays)
	b := newFixtures(fixedNow, maxHistoryDays)

	assert.Equal(t, a.todayPredictions(), b.todayPredictions())
	assert.Len(t, a.historySince(maxHistoryDays), maxHistoryDays)
	assert.Len(t, a.historySince(7), 7)
	assert.Equal(t, 12, a.totalUsers())

	for _, p := range a.todayPredictions() {
		assert.GreaterOrEqual(t, p.Probability, 0.05)
		assert.LessOrEqual(t, p.Probability, 0.98)
		assert.Equal(t, p.Risk(), p.Severity)
		assert.Equal(t, p.Risk() == domain.LevelHigh, p.Alert)
		assert.Equal(t, "2025-04-26", p.Date)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	client, _ := newMock(t)

	_, err := client.Login(context.Background(), domain.Credentials{Username: "admin", Password: "nope"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Incorrect username or password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	client, _ := newMock(t)
	creds := &bearer{token: "forged"}

	_, err := client.For(creds).TodayPredictions(context.Background())

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, creds.invalidated)
}

func TestTokenExpires(t *testing.T) {
	client, _ := newMock(t)
	creds := login(t, client)

	domain.SetClock(clockwork.NewFakeClockAt(fixedNow.Add(31 * time.Minute)))
	_, err := client.For(creds).CurrentUser(context.Background())

	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClientOperations(t *testing.T) {
	client, fx := newMock(t)
	ctx := context.Background()
	api := client.For(login(t, client))

	require.NoError(t, api.VerifyToken(ctx))

	op, err := api.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Operator{Username: "admin", Role: "admin"}, op)

	health, err := api.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.Status.Online())
	assert.True(t, health.ModelLoaded)

	stats, err := api.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalUsers)
	require.NotNil(t, stats.SystemStatus)

	preds, err := api.TodayPredictions(ctx)
	require.NoError(t, err)
	assert.Len(t, preds, len(domain.Towns))

	history, err := api.PredictionHistory(ctx, 14)
	require.NoError(t, err)
	assert.Len(t, history, 14)

	users, err := api.TownUsers(ctx, "Wau")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, api.RegisterUser(ctx, domain.Registration{Phone: "+211955000111", Town: "Wau", Name: "Ayen"}))
	users, err = api.TownUsers(ctx, "Wau")
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, "Ayen", users[2].Name)

	before := len(fx.latestAlerts(1000))
	require.NoError(t, api.SendManualAlert(ctx, domain.ManualAlert{Town: "Bor", Message: "Heat advisory", Severity: domain.LevelModerate}))
	require.NoError(t, api.TriggerDemoAlert(ctx))
	alerts, err := api.LatestAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, min(before+2, 20))

	sched, err := api.SchedulerStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-27 05:00:00+00:00", sched.NextRun())

	require.NoError(t, api.RunPredictions(ctx))
	require.NoError(t, api.RunSchedulerNow(ctx))
}

func TestRegisterRejectsUnknownTown(t *testing.T) {
	client, _ := newMock(t)
	api := client.For(login(t, client))

	err := api.RegisterUser(context.Background(), domain.Registration{Phone: "+211955000111", Town: "Atlantis"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestExports(t *testing.T) {
	client, _ := newMock(t)
	api := client.For(login(t, client))

	payload, err := api.Export(context.Background(), domain.ExportPredictions)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", payload.ContentType)
	lines := strings.Split(strings.TrimSpace(string(payload.Data)), "\n")
	assert.Equal(t, "date,town,probability,risk,alert", lines[0])
	assert.Len(t, lines, 1+maxHistoryDays*len(domain.Towns))

	_, err = api.Export(context.Background(), domain.ExportReport)
	require.Error(t, err)
}

func TestChartIsPNG(t *testing.T) {
	client, _ := newMock(t)
	api := client.For(login(t, client))

	chart, err := api.TodayChart(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "image/png", chart.ContentType)
	img, err := png.Decode(bytes.NewReader(chart.Data))
	require.NoError(t, err)
	assert.Equal(t, 16+len(domain.Towns)*64, img.Bounds().Dx())
}

func TestHistoryRejectsOversizedWindow(t *testing.T) {
	client, _ := newMock(t)
	api := client.For(login(t, client))

	_, err := api.PredictionHistory(context.Background(), 90)

	require.Error(t, err)
}

func TestHealthIsPublic(t *testing.T) {
	client, _ := newMock(t)

	require.NoError(t, client.CheckReadiness(context.Background()))
	_, err := client.Health(context.Background())
	require.NoError(t, err)
}

func TestHexColor(t *testing.T) {
	c := hexColor(domain.LevelHigh.Color())
	assert.Equal(t, uint8(0xef), c.R)
	assert.Equal(t, uint8(0x44), c.G)
	assert.Equal(t, uint8(0x44), c.B)
}
