// Package metrics wires Prometheus counters and a latency histogram as
// an external observer of the order lifecycle's event stream — the
// core never imports this package directly, matching the requirement
// that metrics stay outside the matching/booking hot path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tradecore/tradecore/events"
)

// Collector observes the lifecycle's event stream and maintains the
// process's Prometheus counters and latency histogram.
type Collector struct {
	ordersReceived   prometheus.Counter
	ordersFilled     prometheus.Counter
	ordersRejected   prometheus.Counter
	ordersCancelled  prometheus.Counter
	partialFills     prometheus.Counter
	notionalTotal    prometheus.Counter
	requestLatency   prometheus.Histogram
}

// NewCollector registers the engine's metrics against reg and returns
// a Collector ready to observe events. Passing prometheus.DefaultRegisterer
// registers against the global registry, as most hosts want.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ordersReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradecore_orders_received_total",
			Help: "Total number of new order requests accepted for processing.",
		}),
		ordersFilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradecore_orders_filled_total",
			Help: "Total number of orders that reached a filled status.",
		}),
		ordersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradecore_orders_rejected_total",
			Help: "Total number of new order requests rejected.",
		}),
		ordersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradecore_orders_cancelled_total",
			Help: "Total number of orders cancelled.",
		}),
		partialFills: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradecore_partial_fills_total",
			Help: "Total number of partial-fill execution reports emitted.",
		}),
		notionalTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradecore_notional_total",
			Help: "Cumulative notional value (qty * price) of all fills.",
		}),
		requestLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradecore_request_latency_seconds",
			Help:    "Latency of handle_new_order/handle_cancel_request calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Observe implements events.Observer.
func (c *Collector) Observe(e events.Event) {
	switch e.Kind {
	case events.OrderAccepted:
		c.ordersReceived.Inc()
	case events.OrderFilled:
		c.ordersFilled.Inc()
		c.notionalTotal.Add(e.Qty * e.Price)
	case events.OrderPartiallyFilled:
		c.partialFills.Inc()
		c.notionalTotal.Add(e.Qty * e.Price)
	case events.OrderRejected:
		c.ordersRejected.Inc()
	case events.OrderCancelled:
		c.ordersCancelled.Inc()
	}
}

// Timer returns a func() that, when called, records the elapsed time
// since Timer was called as a request-latency observation.
func (c *Collector) Timer() func() {
	start := time.Now()
	return func() {
		c.requestLatency.Observe(time.Since(start).Seconds())
	}
}
