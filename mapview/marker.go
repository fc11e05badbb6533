package mapview

import (
	"fmt"
	"html/template"
	"strings"

	"go-photomap/types"

	"go.uber.org/zap"
)

// Icon mirrors the browser map library's icon options.
type Icon struct {
	IconURL     string `json:"iconUrl"`
	IconSize    [2]int `json:"iconSize"`
	IconAnchor  [2]int `json:"iconAnchor"`
	PopupAnchor [2]int `json:"popupAnchor"`
	ShadowURL   string `json:"shadowUrl"`
}

var DefaultMarkerIcon = Icon{
	IconURL:     "https://unpkg.com/leaflet@1.7.1/dist/images/marker-icon.png",
	IconSize:    [2]int{25, 41},
	IconAnchor:  [2]int{12, 41},
	PopupAnchor: [2]int{1, -34},
	ShadowURL:   "https://unpkg.com/leaflet@1.7.1/dist/images/marker-shadow.png",
}

// Marker is one placed record.
type Marker struct {
	Index int     `json:"index"` // position within the visible records
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Title string  `json:"title"`
	Icon  Icon    `json:"icon"`
	Popup string  `json:"popup"`
}

func (m Marker) Position() (float64, float64) {
	return m.Lat, m.Lon
}

var popupTemplate = template.Must(template.New("popup").Parse(`<div>
  <img src="{{.URL}}" alt="{{.Title}}" style="width:100px;height:auto;" />
  <p><strong>{{.Title}}</strong></p>
  <p>{{.Description}}</p>
  {{- if .ShowCoordinates}}
  <p>Koordináta: ({{.Lat}}, {{.Lon}})</p>
  {{- end}}
  <p>Verseny: {{.Competition}}</p>
  <p>Csapat: {{.Team}}</p>
</div>`))

type popupData struct {
	types.LocationRecord
	ShowCoordinates bool
	Lat, Lon        string
}

// markerIcon picks the icon for the current team selection. There are no
// team-specific icons yet, so every marker gets the default one.
func markerIcon(selectedTeam string) Icon {
	if selectedTeam == "" {
		return DefaultMarkerIcon
	}
	return DefaultMarkerIcon
}

// BuildMarkers turns records into markers. Records without coordinates are
// skipped with a warning; the number skipped is returned. Coordinates are only
// shown in popups when no single team is selected.
func BuildMarkers(records []types.LocationRecord, selectedTeam string, logger *zap.Logger) ([]Marker, int, error) {
	markers := make([]Marker, 0, len(records))
	skipped := 0
	icon := markerIcon(selectedTeam)

	for i, r := range records {
		if !r.HasCoordinates() {
			logger.Warn("Invalid coordinates for marker", zap.String("title", r.Title), zap.Int("index", i))
			skipped++
			continue
		}

		lat, lon := *r.Latitude, *r.Longitude
		popup, err := renderPopup(popupData{
			LocationRecord:  r,
			ShowCoordinates: selectedTeam == "",
			Lat:             fmt.Sprintf("%.5f", lat),
			Lon:             fmt.Sprintf("%.5f", lon),
		})
		if err != nil {
			return nil, skipped, fmt.Errorf("render popup for %q: %w", r.Title, err)
		}

		markers = append(markers, Marker{
			Index: i,
			Lat:   lat,
			Lon:   lon,
			Title: r.Title,
			Icon:  icon,
			Popup: popup,
		})
	}
	return markers, skipped, nil
}

func renderPopup(data popupData) (string, error) {
	var sb strings.Builder
	if err := popupTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
