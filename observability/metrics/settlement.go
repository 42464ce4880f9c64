package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"atomicswap/core/events"
)

// SettlementMetrics counts settlement state transitions by event type.
type SettlementMetrics struct {
	transitions *prometheus.CounterVec
}

var (
	settlementOnce     sync.Once
	settlementRegistry *SettlementMetrics
)

// Settlement returns the process-wide settlement metrics, registering the
// collectors on first use.
func Settlement() *SettlementMetrics {
	settlementOnce.Do(func() {
		settlementRegistry = &SettlementMetrics{
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "settlement_transitions_total",
				Help: "Count of settlement state transitions by event type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(settlementRegistry.transitions)
	})
	return settlementRegistry
}

// ObserveTransition records one settlement transition of the given event type.
func (m *SettlementMetrics) ObserveTransition(eventType string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.transitions.WithLabelValues(eventType).Inc()
}

// Emitter counts every settlement event before forwarding it to the wrapped
// emitter, so engines stay free of metrics imports.
type Emitter struct {
	Metrics *SettlementMetrics
	Next    events.Emitter
}

// Emit implements the events.Emitter interface.
func (e Emitter) Emit(ev events.Event) {
	if ev == nil {
		return
	}
	metrics := e.Metrics
	if metrics == nil {
		metrics = Settlement()
	}
	metrics.ObserveTransition(ev.EventType())
	if e.Next != nil {
		e.Next.Emit(ev)
	}
}
