package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemStatus is the backend's reported availability.
type SystemStatus int

const (
	StatusOffline SystemStatus = iota
	StatusOnline
)

// ParseSystemStatus maps "ok" and "online" to StatusOnline and everything
// else ("degraded", "error", empty) to StatusOffline.
func ParseSystemStatus(s string) SystemStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok", "online":
		return StatusOnline
	default:
		return StatusOffline
	}
}

func (s SystemStatus) String() string {
	switch s {
	case StatusOnline:
		return "Online"
	case StatusOffline:
		return "Offline"
	default:
		panic(fmt.Sprintf("domain: unhandled system status %d", int(s)))
	}
}

// Online reports whether the status is StatusOnline.
func (s SystemStatus) Online() bool {
	return s == StatusOnline
}

func (s *SystemStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StatusOffline
		return nil //nolint:nilerr // a non-string status is treated as offline
	}
	*s = ParseSystemStatus(raw)
	return nil
}
