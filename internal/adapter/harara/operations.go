package harara

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harara-heat/harara-dashboard/internal/domain"
)

// LoginResult is the backend's token response.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login exchanges operator credentials for an access token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (LoginResult, error) {
	var out LoginResult
	err := c.call(ctx, request{op: "login", method: http.MethodPost, path: "/auth/login", body: creds}, &out)
	return out, err
}

// VerifyToken asks the backend to confirm the bound token.
func (c *Client) VerifyToken(ctx context.Context) error {
	return c.call(ctx, request{op: "verify_token", method: http.MethodPost, path: "/auth/verify"}, nil)
}

// CurrentUser returns the operator behind the bound token.
func (c *Client) CurrentUser(ctx context.Context) (domain.Operator, error) {
	var out domain.Operator
	err := c.call(ctx, request{op: "current_user", method: http.MethodGet, path: "/auth/me"}, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var out domain.Health
	err := c.call(ctx, request{op: "health", method: http.MethodGet, path: "/health"}, &out)
	return out, err
}

func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	err := c.call(ctx, request{op: "dashboard_stats", method: http.MethodGet, path: "/dashboard/stats"}, &out)
	return out, err
}

// RunPredictions triggers the backend's prediction run and waits for it.
func (c *Client) RunPredictions(ctx context.Context) error {
	return c.call(ctx, request{op: "run_predictions", method: http.MethodPost, path: "/predict/run"}, nil)
}

func (c *Client) TodayPredictions(ctx context.Context) ([]domain.Prediction, error) {
	var out struct {
		Predictions []domain.Prediction `json:"predictions"`
	}
	err := c.call(ctx, request{op: "today_predictions", method: http.MethodGet, path: "/firestore/predictions/today"}, &out)
	return out.Predictions, err
}

func (c *Client) PredictionHistory(ctx context.Context, days int) (domain.History, error) {
	var out struct {
		Records domain.History `json:"records"`
	}
	path := "/firestore/history/" + strconv.Itoa(days)
	err := c.call(ctx, request{op: "prediction_history", method: http.MethodGet, path: path}, &out)
	if out.Records == nil {
		out.Records = domain.History{}
	}
	return out.Records, err
}

func (c *Client) LatestAlerts(ctx context.Context) ([]domain.Alert, error) {
	var out struct {
		LatestAlerts []domain.Alert `json:"latest_alerts"`
	}
	err := c.call(ctx, request{op: "latest_alerts", method: http.MethodGet, path: "/firestore/alerts/latest"}, &out)
	return out.LatestAlerts, err
}

func (c *Client) SendManualAlert(ctx context.Context, alert domain.ManualAlert) error {
	return c.call(ctx, request{op: "manual_alert", method: http.MethodPost, path: "/alerts/manual", body: alert}, nil)
}

func (c *Client) TriggerDemoAlert(ctx context.Context) error {
	return c.call(ctx, request{op: "demo_alert", method: http.MethodPost, path: "/alerts/trigger-demo"}, nil)
}

func (c *Client) TownUsers(ctx context.Context, town string) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	path := "/users/town/" + url.PathEscape(town)
	err := c.call(ctx, request{op: "town_users", method: http.MethodGet, path: path}, &out)
	return out.Users, err
}

// RegisterUser signs a recipient up. The values travel both as the JSON body
// and as query parameters, which is where the backend handler reads them.
func (c *Client) RegisterUser(ctx context.Context, reg domain.Registration) error {
	q := url.Values{"phone": {reg.Phone}, "town": {reg.Town}, "name": {reg.Name}}
	return c.call(ctx, request{op: "register_user", method: http.MethodPost, path: "/users/register", query: q, body: reg}, nil)
}

func (c *Client) SchedulerStatus(ctx context.Context) (domain.SchedulerStatus, error) {
	var out domain.SchedulerStatus
	err := c.call(ctx, request{op: "scheduler_status", method: http.MethodGet, path: "/scheduler/status"}, &out)
	return out, err
}

func (c *Client) RunSchedulerNow(ctx context.Context) error {
	return c.call(ctx, request{op: "run_scheduler", method: http.MethodPost, path: "/scheduler/run-now"}, nil)
}

// Export downloads one of the backend exports as raw bytes.
func (c *Client) Export(ctx context.Context, kind domain.ExportKind) (domain.Payload, error) {
	data, contentType, err := c.fetch(ctx, request{
		op:     "export_" + kind.Slug(),
		method: http.MethodGet,
		path:   kind.Path(),
		accept: kind.Accept(),
	})
	if err != nil {
		return domain.Payload{}, err
	}
	if contentType == "" {
		contentType = kind.Accept()
	}
	return domain.Payload{Data: data, ContentType: contentType}, nil
}

// TodayChart fetches the backend's rendered chart of today's predictions.
func (c *Client) TodayChart(ctx context.Context) (domain.Payload, error) {
	data, contentType, err := c.fetch(ctx, request{op: "today_chart", method: http.MethodGet, path: "/viz/today.png", accept: "image/png"})
	if err != nil {
		return domain.Payload{}, err
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return domain.Payload{Data: data, ContentType: contentType}, nil
}
