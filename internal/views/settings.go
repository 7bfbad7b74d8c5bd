package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
	"golang.org/x/sync/errgroup"
)

// SettingsPage shows backend and scheduler status.
type SettingsPage struct {
	Cards     []widgets.StatCard
	Health    domain.Health
	Scheduler domain.SchedulerStatus
	Operator  *domain.Operator
	Refresh   time.Duration
	Notice    *Notice
}

// Settings loads health and scheduler status. The signed-in operator's
// identity is added when the backend provides it.
func (s *Service) Settings(ctx context.Context, api API, refresh time.Duration) (*SettingsPage, error) {
	defer s.rendered("settings")

	var (
		health    domain.Health
		scheduler domain.SchedulerStatus
		operator  domain.Operator
		haveOp    bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		health, err = api.Health(gctx)
		return err
	})
	g.Go(func() (err error) {
		scheduler, err = api.SchedulerStatus(gctx)
		return err
	})
	g.Go(func() error {
		op, err := api.CurrentUser(gctx)
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		if err != nil {
			s.logger.Debug("operator identity unavailable", "error", err)
			return nil
		}
		operator, haveOp = op, true
		return nil
	})

	page := &SettingsPage{Refresh: refresh}
	if err := g.Wait(); err != nil {
		notice, err := s.loadFailed("settings", err)
		if err != nil {
			return nil, err
		}
		page.Notice = notice
		health, scheduler, haveOp = domain.Health{}, domain.SchedulerStatus{}, false
	}
	if haveOp {
		page.Operator = &operator
	}

	page.Health = health
	page.Scheduler = scheduler
	online := health.Status.Online()
	page.Cards = []widgets.StatCard{
		{Title: "API Status", Value: health.Status.String(), Subtitle: "FastAPI Backend", Tone: widgets.Toggle(online, widgets.ToneGreen, widgets.ToneRed)},
		{Title: "Earth Engine", Value: pick(health.EEReady, "Ready", "Not Ready"), Subtitle: "Google Earth Engine", Tone: widgets.Toggle(health.EEReady, widgets.ToneGreen, widgets.ToneRed)},
		{Title: "Scheduler", Value: pick(scheduler.Enabled, "Enabled", "Disabled"), Subtitle: fmt.Sprintf("%d active jobs", len(scheduler.Jobs)), Tone: widgets.Toggle(scheduler.Enabled, widgets.ToneGreen, widgets.ToneRed)},
		{Title: "Next Run", Value: pick(scheduler.Scheduled(), "Scheduled", "None"), Subtitle: "Daily predictions", Tone: widgets.Toggle(scheduler.Scheduled(), widgets.ToneBlue, widgets.ToneYellow)},
	}
	return page, nil
}

// RunSchedulerNow runs the backend's daily prediction job immediately.
func (s *Service) RunSchedulerNow(ctx context.Context, api API, operator string) (Notice, error) {
	err := api.RunSchedulerNow(ctx)
	s.Record(ctx, operator, domain.ActionRunScheduler, "", err)
	if err != nil {
		return s.mutationFailed(domain.ActionRunScheduler, err, "Failed to run scheduler job")
	}
	return success("Scheduler job executed successfully!"), nil
}
