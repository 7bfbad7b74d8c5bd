package main

import (
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/domain"
)

// Fixtures are generated from the date alone so two runs on the same -date
// serve identical data.
type fixtures struct {
	mu          sync.Mutex
	today       time.Time
	runs        int
	predictions []domain.Prediction
	history     domain.History
	alerts      []domain.Alert
	users       map[string][]domain.User
}

func newFixtures(now time.Time, historyDays int) *fixtures {
	today := now.UTC().Truncate(24 * time.Hour)
	fx := &fixtures{
		today:   today,
		history: domain.History{},
		users:   map[string][]domain.User{},
	}

	for d := historyDays - 1; d >= 1; d-- {
		day := today.AddDate(0, 0, -d)
		fx.history[day.Format(time.DateOnly)] = predictionsFor(day, 0)
	}
	fx.predictions = predictionsFor(today, 0)
	fx.history[today.Format(time.DateOnly)] = fx.predictions

	for _, p := range fx.predictions {
		if p.Alert {
			fx.alerts = append(fx.alerts, alertFor(p, now.Add(-time.Hour)))
		}
	}

	phones := 0
	for i, town := range domain.Towns {
		for j := range i%3 + 1 {
			phones++
			fx.users[town.Name] = append(fx.users[town.Name], domain.User{
				Name:      recipientNames[(i+j)%len(recipientNames)],
				Phone:     phoneNumber(phones),
				Town:      town.Name,
				Active:    j != 2,
				CreatedAt: domain.Timestamp{Time: today.AddDate(0, 0, -(i*5 + j))},
			})
		}
	}
	return fx
}

var recipientNames = []string{"Deng Garang", "Achol Mayen", "Lado Wani", "Nyibol Akec", "Gatluak Puok"}

func phoneNumber(n int) string {
	return "+" + strconv.Itoa(211912000000+n)
}

// predictionsFor derives each town's probability from the day and run count.
// The curve peaks mid-year, when the dry season heat is worst.
func predictionsFor(day time.Time, run int) []domain.Prediction {
	season := math.Sin(float64(day.YearDay()) / 365 * 2 * math.Pi)
	preds := make([]domain.Prediction, 0, len(domain.Towns))
	for i, town := range domain.Towns {
		wobble := float64((i*7+day.Day()*3+run*5)%9) / 40
		p := math.Round((0.5+0.15*season+wobble)*1000) / 1000
		p = math.Max(0.05, math.Min(0.98, p))
		risk := domain.Classify(p)
		preds = append(preds, domain.Prediction{
			Town:        town.Name,
			Probability: p,
			Alert:       risk == domain.LevelHigh,
			Severity:    risk,
			Date:        day.Format(time.DateOnly),
		})
	}
	return preds
}

func alertFor(p domain.Prediction, at time.Time) domain.Alert {
	return domain.Alert{
		Town:      p.Town,
		Message:   "Heatwave warning for " + p.Town + ": probability " + p.Percent() + ". Stay hydrated and avoid midday sun.",
		Severity:  p.Risk(),
		Timestamp: domain.Timestamp{Time: at.UTC()},
		Date:      at.UTC().Format(time.DateOnly),
		Alert:     true,
	}
}

// rerun regenerates today's predictions as a prediction run would and raises
// alerts for the high risk towns.
func (fx *fixtures) rerun(now time.Time) {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	fx.runs++
	fx.predictions = predictionsFor(fx.today, fx.runs)
	fx.history[fx.today.Format(time.DateOnly)] = fx.predictions
	for _, p := range fx.predictions {
		if p.Alert {
			fx.alerts = append(fx.alerts, alertFor(p, now))
		}
	}
}

func (fx *fixtures) addAlert(a domain.Alert) {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	fx.alerts = append(fx.alerts, a)
}

func (fx *fixtures) addUser(u domain.User) {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	fx.users[u.Town] = append(fx.users[u.Town], u)
}

func (fx *fixtures) todayPredictions() []domain.Prediction {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]domain.Prediction(nil), fx.predictions...)
}

// historySince returns the days within the window ending today.
func (fx *fixtures) historySince(days int) domain.History {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	cutoff := fx.today.AddDate(0, 0, -(days - 1)).Format(time.DateOnly)
	out := domain.History{}
	for date, preds := range fx.history {
		if date >= cutoff {
			out[date] = preds
		}
	}
	return out
}

// latestAlerts returns up to n alerts, newest first.
func (fx *fixtures) latestAlerts(n int) []domain.Alert {
	fx.mu.Lock()
	alerts := append([]domain.Alert(nil), fx.alerts...)
	fx.mu.Unlock()
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Timestamp.After(alerts[j].Timestamp.Time) })
	return alerts[:min(n, len(alerts))]
}

func (fx *fixtures) townUsers(town string) []domain.User {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]domain.User{}, fx.users[town]...)
}

func (fx *fixtures) totalUsers() int {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	n := 0
	for _, us := range fx.users {
		n += len(us)
	}
	return n
}
