package metrics

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"atomicswap/core/events"
)

type sinkEmitter struct {
	received []events.Event
}

func (s *sinkEmitter) Emit(ev events.Event) {
	s.received = append(s.received, ev)
}

func TestEmitterCountsAndForwards(t *testing.T) {
	metrics := Settlement()
	next := &sinkEmitter{}
	emitter := Emitter{Metrics: metrics, Next: next}

	before := testutil.ToFloat64(metrics.transitions.WithLabelValues(events.TypeOrderCreated))
	emitter.Emit(events.OrderCreated{Amount: big.NewInt(1)})
	emitter.Emit(events.OrderCreated{Amount: big.NewInt(2)})
	after := testutil.ToFloat64(metrics.transitions.WithLabelValues(events.TypeOrderCreated))

	if after-before != 2 {
		t.Fatalf("counter delta %v, want 2", after-before)
	}
	if len(next.received) != 2 {
		t.Fatalf("forwarded %d events, want 2", len(next.received))
	}
	if next.received[0].EventType() != events.TypeOrderCreated {
		t.Fatalf("forwarded type %q", next.received[0].EventType())
	}
}

func TestEmitterIgnoresNil(t *testing.T) {
	next := &sinkEmitter{}
	emitter := Emitter{Next: next}
	emitter.Emit(nil)
	if len(next.received) != 0 {
		t.Fatalf("forwarded %d events, want 0", len(next.received))
	}
}
