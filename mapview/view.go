package mapview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-photomap/cluster"
	"go-photomap/types"

	"go.uber.org/zap"
)

var (
	ErrInvalidSlot = errors.New("compare slot must be 1 or 2")
	ErrViewClosed  = errors.New("view is closed")
)

// DefaultZoom is the initial zoom of the admin map.
const DefaultZoom = 3

// Loader fetches the full location listing.
type Loader interface {
	FetchLocations(ctx context.Context) (*types.LocationsPayload, error)
}

// Recorder receives view events for metrics. NopRecorder discards them.
type Recorder interface {
	cluster.Observer
	LoadFailed()
	MarkerSkipped(n int)
	ViewOpened()
	ViewClosed()
}

type NopRecorder struct{}

func (NopRecorder) LayerAdded()       {}
func (NopRecorder) LayerRemoved()     {}
func (NopRecorder) LoadFailed()       {}
func (NopRecorder) MarkerSkipped(int) {}
func (NopRecorder) ViewOpened()       {}
func (NopRecorder) ViewClosed()       {}

// Frame is the result of a render: everything the page needs to draw the
// filters and the marker overlay.
type Frame struct {
	ViewID       string                 `json:"viewId"`
	Loaded       bool                   `json:"loaded"`
	Selection    Selection              `json:"selection"`
	Competitions []string               `json:"competitions"`
	Teams        []string               `json:"teams"`
	Zoom         int                    `json:"zoom"`
	Visible      int                    `json:"visible"`
	Skipped      int                    `json:"skipped"`
	Layer        *cluster.Layer[Marker] `json:"layer"`
}

// View is the state of one mounted admin map. Operations are serialised so
// two filter changes never interleave.
type View struct {
	id       string
	logger   *zap.Logger
	recorder Recorder

	loadOnce sync.Once

	mu           sync.Mutex
	loaded       bool
	closed       bool
	locations    []types.LocationRecord
	competitions []string
	selection    Selection
	overlay      *cluster.Map[Marker]
}

func NewView(id string, logger *zap.Logger, recorder Recorder) *View {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &View{
		id:           id,
		logger:       logger.With(zap.String("view", id)),
		recorder:     recorder,
		locations:    []types.LocationRecord{},
		competitions: []string{},
		overlay:      cluster.NewMap[Marker](recorder),
	}
}

func (v *View) ID() string { return v.id }

// Load fetches the locations once per view. Later calls do nothing. A failed
// fetch is logged and leaves the view empty; it is not retried.
func (v *View) Load(ctx context.Context, loader Loader) {
	v.loadOnce.Do(func() {
		payload, err := loader.FetchLocations(ctx)
		if err != nil {
			v.logger.Error("Failed to fetch locations", zap.Error(err))
			v.recorder.LoadFailed()
			return
		}
		if payload == nil {
			v.logger.Error("Failed to fetch locations: empty payload")
			v.recorder.LoadFailed()
			return
		}

		v.mu.Lock()
		defer v.mu.Unlock()
		if payload.Locations != nil {
			v.locations = payload.Locations
		}
		if payload.Competitions != nil {
			v.competitions = payload.Competitions
		}
		v.loaded = true
		v.logger.Info("Locations loaded",
			zap.Int("locations", len(v.locations)),
			zap.Int("competitions", len(v.competitions)))
	})
}

// SelectCompetition changes the competition and clears the team selection and
// both compare slots, since team lists are scoped to a competition.
func (v *View) SelectCompetition(competition string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Competition = competition
	v.selection.Team = ""
	v.selection.Team1 = ""
	v.selection.Team2 = ""
}

func (v *View) SelectTeam(team string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Team = team
}

// ToggleCompare flips compare mode and returns the new value.
func (v *View) ToggleCompare() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Compare = !v.selection.Compare
	return v.selection.Compare
}

// SelectCompareTeam sets team1 (slot 1) or team2 (slot 2). The same team may
// be picked for both slots.
func (v *View) SelectCompareTeam(slot int, team string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch slot {
	case 1:
		v.selection.Team1 = team
	case 2:
		v.selection.Team2 = team
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidSlot, slot)
	}
	return nil
}

func (v *View) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection
}

func (v *View) Teams() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return TeamsForCompetition(v.locations, v.selection.Competition)
}

func (v *View) Visible() []types.LocationRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VisibleRecords(v.locations, v.selection)
}

// Render builds markers for the visible records and swaps them in as the
// view's only overlay, clustered for the zoom level.
func (v *View) Render(zoom int) (Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return Frame{}, ErrViewClosed
	}

	zoom = cluster.ClampZoom(zoom)
	visible := VisibleRecords(v.locations, v.selection)
	markers, skipped, err := BuildMarkers(visible, v.selection.Team, v.logger)
	if err != nil {
		return Frame{}, err
	}
	if skipped > 0 {
		v.recorder.MarkerSkipped(skipped)
	}

	layer, err := v.overlay.Acquire(markers, cluster.RadiusForZoom(zoom))
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		ViewID:       v.id,
		Loaded:       v.loaded,
		Selection:    v.selection,
		Competitions: v.competitions,
		Teams:        TeamsForCompetition(v.locations, v.selection.Competition),
		Zoom:         zoom,
		Visible:      len(visible),
		Skipped:      skipped,
		Layer:        layer,
	}, nil
}

// OverlayStats reports the overlay lifecycle counters of the view.
func (v *View) OverlayStats() cluster.Stats {
	return v.overlay.Stats()
}

// Close releases the overlay. Safe to call more than once.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.overlay.Close()
	v.logger.Debug("View closed")
}
