package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Risk thresholds, inclusive lower bounds.
const (
	HighRiskThreshold     = 0.75
	ModerateRiskThreshold = 0.67
)

// Level is a heatwave risk level or alert severity.
type Level int

const (
	LevelUnknown Level = iota
	LevelLow
	LevelModerate
	LevelHigh
)

// Levels lists the known levels from most to least severe.
var Levels = []Level{LevelHigh, LevelModerate, LevelLow}

// Classify maps a heatwave probability to a risk level. It is the only place
// the thresholds are applied.
func Classify(probability float64) Level {
	switch {
	case probability >= HighRiskThreshold:
		return LevelHigh
	case probability >= ModerateRiskThreshold:
		return LevelModerate
	default:
		return LevelLow
	}
}

// ParseLevel parses "High", "Moderate", or "Low", case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return LevelHigh, nil
	case "moderate":
		return LevelModerate, nil
	case "low":
		return LevelLow, nil
	default:
		return LevelUnknown, fmt.Errorf("unknown severity %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "High"
	case LevelModerate:
		return "Moderate"
	case LevelLow:
		return "Low"
	case LevelUnknown:
		return "Info"
	default:
		panic(fmt.Sprintf("domain: unhandled level %d", int(l)))
	}
}

// RiskLabel is the legend text for a risk level.
func (l Level) RiskLabel() string {
	switch l {
	case LevelHigh:
		return "High Risk"
	case LevelModerate:
		return "Moderate Risk"
	case LevelLow:
		return "Low Risk"
	case LevelUnknown:
		return "No Data"
	default:
		panic(fmt.Sprintf("domain: unhandled level %d", int(l)))
	}
}

// Color is the hex colour used for badges and map markers.
func (l Level) Color() string {
	switch l {
	case LevelHigh:
		return "#ef4444"
	case LevelModerate:
		return "#f59e0b"
	case LevelLow:
		return "#10b981"
	case LevelUnknown:
		return "#6b7280"
	default:
		panic(fmt.Sprintf("domain: unhandled level %d", int(l)))
	}
}

// MarshalJSON writes the backend's string form. Unknown levels encode as null.
func (l Level) MarshalJSON() ([]byte, error) {
	if l == LevelUnknown {
		return []byte("null"), nil
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the backend strings; anything else becomes LevelUnknown.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*l = LevelUnknown
		return nil //nolint:nilerr // non-string severities are tolerated as unknown
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		*l = LevelUnknown
		return nil //nolint:nilerr // unrecognised severities are tolerated as unknown
	}
	*l = parsed
	return nil
}
