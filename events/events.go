// Package events defines the structured event stream the lifecycle
// manager emits. Metrics, logging, or any other collaborator observes
// these events rather than being called directly from the core — this
// is what keeps counters and latency samplers outside the core.
package events

import "time"

// Kind tags the domain event that occurred.
type Kind string

const (
	OrderAccepted        Kind = "order_accepted"
	OrderFilled          Kind = "order_filled"
	OrderPartiallyFilled Kind = "order_partially_filled"
	OrderRejected        Kind = "order_rejected"
	OrderCancelled       Kind = "order_cancelled"
)

// Event is one occurrence in the order lifecycle, carrying just enough
// detail for an observer to count or log it without reaching back into
// engine state.
type Event struct {
	Kind      Kind
	Symbol    string
	OrderID   string
	ClOrdID   string
	Qty       float64
	Price     float64
	Reason    string
	Timestamp time.Time
}

// Observer receives events as they occur. Implementations must not
// block or panic — a misbehaving observer must never affect order
// processing.
type Observer interface {
	Observe(Event)
}

// Multi fans a single event out to several observers, in order.
type Multi []Observer

func (m Multi) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Discard is an Observer that does nothing, used where no observer is
// configured.
type Discard struct{}

func (Discard) Observe(Event) {}

// Recorder is an in-memory Observer that keeps every event it sees, in
// order. It exists for tests that need to assert on the event stream.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Observe(e Event) {
	r.Events = append(r.Events, e)
}
