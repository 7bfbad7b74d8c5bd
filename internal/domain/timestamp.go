package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Timestamp is a backend time value. The zero value means "not provided".
type Timestamp struct {
	time.Time
}

type firestoreTime struct {
	Seconds       *int64 `json:"seconds"`
	Nanoseconds   int64  `json:"nanoseconds"`
	LegacySeconds *int64 `json:"_seconds"`
	LegacyNanos   int64  `json:"_nanoseconds"`
}

// UnmarshalJSON accepts Firestore objects, ISO-8601 strings, numeric epoch
// seconds, and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	switch data[0] {
	case '{':
		var ft firestoreTime
		if err := json.Unmarshal(data, &ft); err != nil {
			return fmt.Errorf("decode timestamp object: %w", err)
		}
		switch {
		case ft.Seconds != nil:
			*t = Timestamp{time.Unix(*ft.Seconds, ft.Nanoseconds).UTC()}
		case ft.LegacySeconds != nil:
			*t = Timestamp{time.Unix(*ft.LegacySeconds, ft.LegacyNanos).UTC()}
		default:
			*t = Timestamp{}
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode timestamp string: %w", err)
		}
		// Unrecognised layouts display as "N/A" rather than failing the whole list.
		*t, _ = ParseTimestamp(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode timestamp number: %w", err)
		}
		if secs, err := n.Int64(); err == nil {
			*t = Timestamp{time.Unix(secs, 0).UTC()}
			return nil
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("decode timestamp number: %w", err)
		}
		whole, frac := math.Modf(f)
		*t = Timestamp{time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()}
		return nil
	}
}

// ParseTimestamp parses the string layouts the backend emits.
func ParseTimestamp(s string) (Timestamp, bool) {
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return Timestamp{parsed}, true
		}
	}
	return Timestamp{}, false
}

// Display formats the time for tables, or "N/A" when absent.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02 15:04")
}

// DisplayDate formats the date only, or "N/A" when absent.
func (t Timestamp) DisplayDate() string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.DateOnly)
}
