package domain

import "math"

// SeverityCounts tallies alerts by severity.
type SeverityCounts struct {
	High     int
	Moderate int
	Low      int
}

// CountBySeverity counts alerts per severity. Alerts without a recognised
// severity are not counted.
func CountBySeverity(alerts []Alert) SeverityCounts {
	var c SeverityCounts
	for _, a := range alerts {
		switch a.Severity {
		case LevelHigh:
			c.High++
		case LevelModerate:
			c.Moderate++
		case LevelLow:
			c.Low++
		case LevelUnknown:
		}
	}
	return c
}

// AveragePercent is the mean probability as a percentage string, "0.0%" for none.
func AveragePercent(preds []Prediction) string {
	if len(preds) == 0 {
		return FormatPercent(0)
	}
	var sum float64
	for _, p := range preds {
		sum += p.Probability
	}
	return FormatPercent(sum / float64(len(preds)))
}

// HistoryTotal counts predictions across all days.
func HistoryTotal(h History) int {
	n := 0
	for _, preds := range h {
		n += len(preds)
	}
	return n
}

// TownUsers holds recipients per registry town.
type TownUsers map[string][]User

// Total counts all recipients.
func (tu TownUsers) Total() int {
	n := 0
	for _, users := range tu {
		n += len(users)
	}
	return n
}

// ActiveTowns counts towns with at least one recipient.
func (tu TownUsers) ActiveTowns() int {
	n := 0
	for _, users := range tu {
		if len(users) > 0 {
			n++
		}
	}
	return n
}

// AveragePerActiveTown is Total over ActiveTowns, rounded, or 0.
func (tu TownUsers) AveragePerActiveTown() int {
	active := tu.ActiveTowns()
	if active == 0 {
		return 0
	}
	return int(math.Round(float64(tu.Total()) / float64(active)))
}

// Flatten lists recipients in registry order, tagging each with its town.
func (tu TownUsers) Flatten() []User {
	out := make([]User, 0, tu.Total())
	for _, t := range Towns {
		for _, u := range tu[t.Name] {
			u.Town = t.Name
			out = append(out, u)
		}
	}
	return out
}
