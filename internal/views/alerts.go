package views

import (
	"context"
	"strconv"

	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
)

// AlertsPage lists the latest alerts with the manual alert form.
type AlertsPage struct {
	Cards      []widgets.StatCard
	Alerts     []domain.Alert
	Counts     domain.SeverityCounts
	Towns      []string
	Severities []domain.Level
	Notice     *Notice
}

func (s *Service) Alerts(ctx context.Context, api API) (*AlertsPage, error) {
	defer s.rendered("alerts")

	page := &AlertsPage{
		Towns:      domain.TownNames(),
		Severities: []domain.Level{domain.LevelHigh, domain.LevelModerate, domain.LevelLow},
	}
	alerts, err := api.LatestAlerts(ctx)
	if err != nil {
		notice, err := s.loadFailed("alerts", err)
		if err != nil {
			return nil, err
		}
		page.Notice = notice
		alerts = nil
	}

	page.Alerts = alerts
	page.Counts = domain.CountBySeverity(alerts)
	page.Cards = []widgets.StatCard{
		{Title: "High Severity", Value: strconv.Itoa(page.Counts.High), Subtitle: "Latest alerts", Tone: widgets.ToneRed},
		{Title: "Moderate Severity", Value: strconv.Itoa(page.Counts.Moderate), Subtitle: "Latest alerts", Tone: widgets.ToneWarning},
		{Title: "Low Severity", Value: strconv.Itoa(page.Counts.Low), Subtitle: "Latest alerts", Tone: widgets.ToneGreen},
	}
	return page, nil
}

// SendManualAlert issues an operator alert. An invalid form is rejected
// without contacting the backend.
func (s *Service) SendManualAlert(ctx context.Context, api API, operator string, alert domain.ManualAlert) (Notice, error) {
	if err := alert.Validate(); err != nil {
		return failure("Town, message and severity are required"), nil
	}
	err := api.SendManualAlert(ctx, alert)
	s.Record(ctx, operator, domain.ActionManualAlert, alert.Town, err)
	if err != nil {
		return s.mutationFailed(domain.ActionManualAlert, err, "Failed to send alert")
	}
	return success("Alert sent successfully!"), nil
}

// TriggerDemoAlert asks the backend to send its demonstration alert.
func (s *Service) TriggerDemoAlert(ctx context.Context, api API, operator string) (Notice, error) {
	err := api.TriggerDemoAlert(ctx)
	s.Record(ctx, operator, domain.ActionDemoAlert, "", err)
	if err != nil {
		return s.mutationFailed(domain.ActionDemoAlert, err, "Failed to trigger demo alert")
	}
	return success("Demo alert triggered!"), nil
}
