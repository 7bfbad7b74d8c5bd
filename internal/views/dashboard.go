package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
	"golang.org/x/sync/errgroup"
)

// recentAlertLimit caps the dashboard's alert feed.
const recentAlertLimit = 5

// DashboardPage is the overview shown after login.
type DashboardPage struct {
	Cards            []widgets.StatCard
	Predictions      []domain.Prediction
	RecentAlerts     []domain.Alert
	Map              widgets.RiskMap
	Scheduler        domain.SchedulerStatus
	Users            domain.TownUsers
	UnavailableTowns []string
	Notice           *Notice
}

// Dashboard loads predictions, alerts, health, scheduler status, and stats
// concurrently, then every town's recipients.
func (s *Service) Dashboard(ctx context.Context, api API) (*DashboardPage, error) {
	defer s.rendered("dashboard")

	var (
		preds     []domain.Prediction
		alerts    []domain.Alert
		health    domain.Health
		scheduler domain.SchedulerStatus
		stats     domain.DashboardStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		preds, err = api.TodayPredictions(gctx)
		return err
	})
	g.Go(func() (err error) {
		alerts, err = api.LatestAlerts(gctx)
		return err
	})
	g.Go(func() (err error) {
		health, err = api.Health(gctx)
		return err
	})
	g.Go(func() (err error) {
		scheduler, err = api.SchedulerStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = api.DashboardStats(gctx)
		return err
	})

	page := &DashboardPage{}
	if err := g.Wait(); err != nil {
		notice, err := s.loadFailed("dashboard", err)
		if err != nil {
			return nil, err
		}
		page.Notice = notice
		page.fill(nil, nil, domain.Health{}, domain.SchedulerStatus{}, domain.DashboardStats{})
		return page, nil
	}

	tu, unavailable, err := s.loadTownUsers(ctx, api)
	if err != nil {
		return nil, err
	}
	page.Users = tu
	page.UnavailableTowns = unavailable
	page.fill(preds, alerts, health, scheduler, stats)
	return page, nil
}

func (p *DashboardPage) fill(preds []domain.Prediction, alerts []domain.Alert, health domain.Health, scheduler domain.SchedulerStatus, stats domain.DashboardStats) {
	if preds == nil {
		preds = []domain.Prediction{}
	}
	p.Predictions = preds
	p.RecentAlerts = alerts[:min(len(alerts), recentAlertLimit)]
	p.Scheduler = scheduler
	p.Map = widgets.BuildMap(preds)

	status := health
	if stats.SystemStatus != nil {
		status = *stats.SystemStatus
	}
	p.Cards = []widgets.StatCard{
		{
			Title:    "Active Alerts",
			Value:    strconv.Itoa(stats.ActiveAlerts),
			Subtitle: pick(stats.ActiveAlerts > 0, "Requiring attention", "No active alerts"),
			Tone:     widgets.Toggle(stats.ActiveAlerts > 0, widgets.ToneRed, widgets.ToneGreen),
		},
		{
			Title:    "High Risk Towns",
			Value:    strconv.Itoa(stats.HighRiskTowns),
			Subtitle: pick(stats.HighRiskTowns > 0, "Above 75% probability", "No high risk towns"),
			Tone:     widgets.Toggle(stats.HighRiskTowns > 0, widgets.ToneRed, widgets.ToneGreen),
		},
		{
			Title: "System Status",
			Value: status.Status.String(),
			Subtitle: fmt.Sprintf("EE: %s | Model: %s",
				pick(status.EEReady, "Ready", "Not Ready"),
				pick(status.ModelLoaded, "Loaded", "Not Loaded")),
			Tone: widgets.Toggle(status.Status.Online(), widgets.ToneInfo, widgets.ToneRed),
		},
		{
			Title:    "Registered Users",
			Value:    strconv.Itoa(stats.TotalUsers),
			Subtitle: "SMS alert recipients",
			Tone:     widgets.ToneDefault,
		},
	}
}

// RunPredictions asks the backend to recompute today's predictions.
func (s *Service) RunPredictions(ctx context.Context, api API, operator string) (Notice, error) {
	err := api.RunPredictions(ctx)
	s.Record(ctx, operator, domain.ActionRunPredictions, "", err)
	if err != nil {
		return s.mutationFailed(domain.ActionRunPredictions, err, "Failed to run predictions")
	}
	return success("Predictions updated successfully!"), nil
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
