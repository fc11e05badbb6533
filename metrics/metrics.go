// Package metrics exposes Prometheus counters for the map views on a private
// registry.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "photomap"

// Metrics implements mapview.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	layersAdded    prometheus.Counter
	layersRemoved  prometheus.Counter
	activeLayers   prometheus.Gauge
	loadFailures   prometheus.Counter
	skippedMarkers prometheus.Counter
	openViews      prometheus.Gauge
	refreshes      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		layersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_layers_added_total",
			Help:      "Cluster overlays added to a map view.",
		}),
		layersRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_layers_removed_total",
			Help:      "Cluster overlays removed from a map view.",
		}),
		activeLayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_layers_active",
			Help:      "Cluster overlays currently attached.",
		}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_load_failures_total",
			Help:      "Map views whose location fetch failed.",
		}),
		skippedMarkers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markers_skipped_total",
			Help:      "Visible records rendered without a marker because coordinates were missing.",
		}),
		openViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "views_open",
			Help:      "Mounted admin map views.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refreshes_total",
			Help:      "Location snapshot refreshes by trigger and result.",
		}, []string{"trigger", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.layersAdded,
		m.layersRemoved,
		m.activeLayers,
		m.loadFailures,
		m.skippedMarkers,
		m.openViews,
		m.refreshes,
	)
	return m
}

func (m *Metrics) LayerAdded() {
	m.layersAdded.Inc()
	m.activeLayers.Inc()
}

func (m *Metrics) LayerRemoved() {
	m.layersRemoved.Inc()
	m.activeLayers.Dec()
}

func (m *Metrics) LoadFailed() { m.loadFailures.Inc() }

func (m *Metrics) MarkerSkipped(n int) {
	if n > 0 {
		m.skippedMarkers.Add(float64(n))
	}
}

func (m *Metrics) ViewOpened() { m.openViews.Inc() }
func (m *Metrics) ViewClosed() { m.openViews.Dec() }

// RefreshDone counts a snapshot refresh. trigger is e.g. "cron", "kafka" or
// "api".
func (m *Metrics) RefreshDone(trigger string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(trigger, result).Inc()
}

// Refresher reloads the location snapshot and reports its size.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

type instrumented struct {
	m       *Metrics
	trigger string
	next    Refresher
}

func (i instrumented) Refresh(ctx context.Context) (int, error) {
	n, err := i.next.Refresh(ctx)
	i.m.RefreshDone(i.trigger, err)
	return n, err
}

// Instrument wraps r so every refresh is counted under trigger.
func (m *Metrics) Instrument(trigger string, r Refresher) Refresher {
	return instrumented{m: m, trigger: trigger, next: r}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
