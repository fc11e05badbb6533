package cluster

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrMapClosed = errors.New("cluster: map is closed")

// Observer is told about overlay lifecycle changes. Used for metrics.
type Observer interface {
	LayerAdded()
	LayerRemoved()
}

// Layer is the marker overlay produced by one render.
type Layer[M Locatable] struct {
	ID       string       `json:"id"`
	RadiusKM float64      `json:"radiusKm"`
	Clusters []Cluster[M] `json:"clusters"`

	owner *Map[M]
}

// Release removes the layer from its map if it is still the active one.
// Calling it more than once is harmless.
func (l *Layer[M]) Release() {
	if l == nil || l.owner == nil {
		return
	}
	l.owner.release(l)
}

// MarkerCount is the number of markers across all clusters.
func (l *Layer[M]) MarkerCount() int {
	n := 0
	for _, c := range l.Clusters {
		n += c.Count
	}
	return n
}

type Stats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Active  int `json:"active"`
}

// Map owns the overlay slot of one rendered map. At most one layer is active;
// acquiring a new one removes the previous layer first.
type Map[M Locatable] struct {
	mu       sync.Mutex
	active   *Layer[M]
	closed   bool
	added    int
	removed  int
	observer Observer
}

// NewMap returns an empty map. observer may be nil.
func NewMap[M Locatable](observer Observer) *Map[M] {
	return &Map[M]{observer: observer}
}

// Acquire removes the active layer, clusters markers with the given radius
// and installs the result as the new active layer.
func (m *Map[M]) Acquire(markers []M, radiusKM float64) (*Layer[M], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrMapClosed
	}
	m.removeActiveLocked()

	layer := &Layer[M]{
		ID:       uuid.NewString(),
		RadiusKM: radiusKM,
		Clusters: Group(markers, radiusKM),
		owner:    m,
	}
	m.active = layer
	m.added++
	if m.observer != nil {
		m.observer.LayerAdded()
	}
	return layer, nil
}

// Active returns the current layer or nil.
func (m *Map[M]) Active() *Layer[M] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Close releases the active layer. Further Acquire calls fail.
func (m *Map[M]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeActiveLocked()
	m.closed = true
}

func (m *Map[M]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{Added: m.added, Removed: m.removed}
	if m.active != nil {
		s.Active = 1
	}
	return s
}

func (m *Map[M]) release(l *Layer[M]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == l {
		m.removeActiveLocked()
	}
}

func (m *Map[M]) removeActiveLocked() {
	if m.active == nil {
		return
	}
	m.active = nil
	m.removed++
	if m.observer != nil {
		m.observer.LayerRemoved()
	}
}
