package widgets

import (
	"testing"

	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMap_OneMarkerPerRegistryTown(t *testing.T) {
	m := BuildMap([]domain.Prediction{{Town: "Juba", Probability: 0.8, Alert: true}})

	require.Len(t, m.Markers, 6)
	assert.Equal(t, MapCenterLat, m.CenterLat)
	assert.Equal(t, MapZoom, m.Zoom)

	juba := m.Markers[0]
	assert.Equal(t, "Juba", juba.Town)
	assert.Equal(t, domain.LevelHigh.Color(), juba.Color)
	assert.Equal(t, "High Risk", juba.Risk)
	assert.Equal(t, "80.0%", juba.Percent)
	assert.Equal(t, "Alert Active", juba.AlertLabel)

	for _, mk := range m.Markers[1:] {
		assert.Equal(t, domain.LevelLow.Color(), mk.Color, mk.Town)
		assert.Zero(t, mk.Probability, mk.Town)
		assert.False(t, mk.Alert, mk.Town)
		assert.Equal(t, "0.0%", mk.Percent, mk.Town)
		assert.Equal(t, "No Alert", mk.AlertLabel, mk.Town)
	}
}

func TestBuildMap_IgnoresUnknownTownsAndUsesRegistryCoordinates(t *testing.T) {
	m := BuildMap([]domain.Prediction{
		{Town: "Atlantis", Probability: 0.99},
		{Town: "Bentiu", Probability: 0.7},
	})

	require.Len(t, m.Markers, 6)
	for i, town := range domain.Towns {
		assert.Equal(t, town.Name, m.Markers[i].Town)
		assert.Equal(t, town.Lat, m.Markers[i].Lat)
		assert.Equal(t, town.Lng, m.Markers[i].Lng)
	}
	assert.Equal(t, domain.LevelModerate.Color(), m.Markers[5].Color)
}

func TestBuildMap_Empty(t *testing.T) {
	m := BuildMap(nil)
	require.Len(t, m.Markers, 6)
	for _, mk := range m.Markers {
		assert.Equal(t, "Low Risk", mk.Risk)
	}
}

func TestNav_MarksActiveItem(t *testing.T) {
	items := Nav("/alerts")
	require.Len(t, items, 6)

	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Name)
		}
	}
	assert.Equal(t, []string{"Alerts"}, active)
	assert.Equal(t, "/", items[0].Href)

	for _, it := range Nav("/nowhere") {
		assert.False(t, it.Active)
	}
}

func TestTone(t *testing.T) {
	assert.Equal(t, ToneRed, Toggle(true, ToneRed, ToneGreen))
	assert.Equal(t, ToneGreen, Toggle(false, ToneRed, ToneGreen))
}
