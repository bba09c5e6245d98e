package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RealtimeMetrics records gateway connection and event counts.
type RealtimeMetrics struct {
	connections prometheus.Gauge
	events      *prometheus.CounterVec
	dropped     *prometheus.CounterVec
}

// NewRealtimeMetrics registers the realtime gateway metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Currently open realtime connections.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Realtime events processed, by event name.",
	}, []string{"event"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_dropped_total",
		Help: "Realtime events dropped because a client send buffer was full.",
	}, []string{"event"})
	reg.MustRegister(connections, events, dropped)
	return &RealtimeMetrics{
		connections: connections,
		events:      events,
		dropped:     dropped,
	}
}

// ConnOpened increments the open connection gauge.
func (m *RealtimeMetrics) ConnOpened() {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Inc()
}

// ConnClosed decrements the open connection gauge.
func (m *RealtimeMetrics) ConnClosed() {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Dec()
}

// IncEvent increments the processed counter for the named event.
func (m *RealtimeMetrics) IncEvent(event string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncDropped increments the dropped counter for the named event.
func (m *RealtimeMetrics) IncDropped(event string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
