package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harara-heat/harara-dashboard/internal/config"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
	"golang.org/x/sync/errgroup"
)

// PredictionsPage shows today's predictions and recent history.
type PredictionsPage struct {
	Days        int
	Windows     []int
	Cards       []widgets.StatCard
	Predictions []domain.Prediction
	History     []domain.HistoryDay
	Notice      *Notice
}

// HistoryWindow resolves a requested history window, falling back to the
// configured default for anything other than a supported window.
func (s *Service) HistoryWindow(raw string) int {
	days, err := strconv.Atoi(raw)
	if err != nil || !config.ValidHistoryDays(days) {
		return s.historyDays
	}
	return days
}

func (s *Service) Predictions(ctx context.Context, api API, days int) (*PredictionsPage, error) {
	defer s.rendered("predictions")

	var (
		preds   []domain.Prediction
		history domain.History
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		preds, err = api.TodayPredictions(gctx)
		return err
	})
	g.Go(func() (err error) {
		history, err = api.PredictionHistory(gctx, days)
		return err
	})

	page := &PredictionsPage{Days: days, Windows: config.HistoryWindows}
	if err := g.Wait(); err != nil {
		notice, err := s.loadFailed("predictions", err)
		if err != nil {
			return nil, err
		}
		page.Notice = notice
		preds, history = nil, nil
	}
	if preds == nil {
		preds = []domain.Prediction{}
	}

	page.Predictions = preds
	page.History = history.Days()
	page.Cards = []widgets.StatCard{
		{Title: "Total Predictions", Value: strconv.Itoa(domain.HistoryTotal(history)), Subtitle: fmt.Sprintf("Last %d days", days), Tone: widgets.ToneDefault},
		{Title: "Average Probability", Value: domain.AveragePercent(preds), Subtitle: "Current predictions", Tone: widgets.ToneWarning},
		{Title: "Active Towns", Value: strconv.Itoa(len(preds)), Subtitle: "With predictions today", Tone: widgets.ToneInfo},
	}
	return page, nil
}

// TodayChart proxies the backend's chart of today's predictions.
func (s *Service) TodayChart(ctx context.Context, api API) (domain.Payload, error) {
	return api.TodayChart(ctx)
}
