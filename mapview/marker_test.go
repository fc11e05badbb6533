package mapview

import (
	"testing"

	"go-photomap/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildMarkersSkipsRecordsWithoutCoordinates(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	records := []types.LocationRecord{
		record(1, 1, "A", "X"),
		{Title: "no coordinates", Competition: "A", Team: "X"},
		{Title: "latitude only", Latitude: types.Float(5), Competition: "A", Team: "X"},
		{Title: "longitude only", Longitude: types.Float(5), Competition: "A", Team: "X"},
		record(2, 2, "A", "Y"),
	}

	markers, skipped, err := BuildMarkers(records, "", logger)
	require.NoError(t, err)

	assert.Equal(t, 3, skipped)
	require.Len(t, markers, 2)
	assert.Equal(t, records[0].Title, markers[0].Title)
	assert.Equal(t, records[4].Title, markers[1].Title)
	assert.Equal(t, 4, markers[1].Index)

	warnings := logs.FilterMessage("Invalid coordinates for marker").All()
	require.Len(t, warnings, 3)
	assert.Equal(t, "no coordinates", warnings[0].ContextMap()["title"])
}

func TestBuildMarkersPopup(t *testing.T) {
	r := types.LocationRecord{
		Latitude:    types.Float(47.497912),
		Longitude:   types.Float(19.040241),
		URL:         "https://img.example.com/1.jpg",
		Title:       "Parliament <b>",
		Description: "river side",
		Competition: "Spring Rally",
		Team:        "Red",
	}

	t.Run("all teams view shows coordinates", func(t *testing.T) {
		markers, _, err := BuildMarkers([]types.LocationRecord{r}, "", zap.NewNop())
		require.NoError(t, err)
		require.Len(t, markers, 1)

		popup := markers[0].Popup
		assert.Contains(t, popup, `src="https://img.example.com/1.jpg"`)
		assert.Contains(t, popup, "Koordináta: (47.49791, 19.04024)")
		assert.Contains(t, popup, "Verseny: Spring Rally")
		assert.Contains(t, popup, "Csapat: Red")
		assert.Contains(t, popup, "<p>river side</p>")
		assert.Contains(t, popup, "Parliament &lt;b&gt;", "title is escaped")
	})

	t.Run("single team view hides coordinates", func(t *testing.T) {
		markers, _, err := BuildMarkers([]types.LocationRecord{r}, "Red", zap.NewNop())
		require.NoError(t, err)
		require.Len(t, markers, 1)
		assert.NotContains(t, markers[0].Popup, "Koordináta")
		assert.Contains(t, markers[0].Popup, "Csapat: Red")
	})
}

func TestMarkerIconIsDefaultForEverySelection(t *testing.T) {
	assert.Equal(t, DefaultMarkerIcon, markerIcon(""))
	assert.Equal(t, DefaultMarkerIcon, markerIcon("Red"))
}

func TestBuildMarkersNeverPlacesRecordsWithoutCoordinates(t *testing.T) {
	var records []types.LocationRecord
	for i := 0; i < 40; i++ {
		r := record(float64(i), float64(i), "A", "X")
		switch i % 4 {
		case 1:
			r.Latitude = nil
		case 2:
			r.Longitude = nil
		case 3:
			r.Latitude, r.Longitude = nil, nil
		}
		records = append(records, r)
	}

	markers, skipped, err := BuildMarkers(records, "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 30, skipped)
	for _, m := range markers {
		assert.True(t, records[m.Index].HasCoordinates())
	}
}
