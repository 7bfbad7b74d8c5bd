package widgets

import "github.com/harara-heat/harara-dashboard/internal/domain"

// Map viewport over South Sudan.
const (
	MapCenterLat = 7.5
	MapCenterLng = 30.0
	MapZoom      = 6
)

// Marker is one town on the risk map.
type Marker struct {
	Town        string  `json:"town"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Probability float64 `json:"probability"`
	Alert       bool    `json:"alert"`
	Risk        string  `json:"risk"`
	Color       string  `json:"color"`
	Percent     string  `json:"percent"`
	AlertLabel  string  `json:"alert_label"`
}

// RiskMap is the data behind the Leaflet map.
type RiskMap struct {
	CenterLat float64  `json:"center_lat"`
	CenterLng float64  `json:"center_lng"`
	Zoom      int      `json:"zoom"`
	Markers   []Marker `json:"markers"`
}

// BuildMap places one marker per registry town. Towns missing from preds are
// shown with zero probability and no alert.
func BuildMap(preds []domain.Prediction) RiskMap {
	byTown := make(map[string]domain.Prediction, len(preds))
	for _, p := range preds {
		if _, seen := byTown[p.Town]; !seen {
			byTown[p.Town] = p
		}
	}

	markers := make([]Marker, 0, len(domain.Towns))
	for _, t := range domain.Towns {
		p := byTown[t.Name]
		level := domain.Classify(p.Probability)
		label := "No Alert"
		if p.Alert {
			label = "Alert Active"
		}
		markers = append(markers, Marker{
			Town:        t.Name,
			Lat:         t.Lat,
			Lng:         t.Lng,
			Probability: p.Probability,
			Alert:       p.Alert,
			Risk:        level.RiskLabel(),
			Color:       level.Color(),
			Percent:     domain.FormatPercent(p.Probability),
			AlertLabel:  label,
		})
	}
	return RiskMap{CenterLat: MapCenterLat, CenterLng: MapCenterLng, Zoom: MapZoom, Markers: markers}
}
