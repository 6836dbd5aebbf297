// Package metrics exposes Prometheus collectors for orders and RPC traffic.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/bistro/internal/events"
)

// Metrics holds every collector the server registers.
type Metrics struct {
	ordersCreated    prometheus.Counter
	ordersCancelled  prometheus.Counter
	orderValue       prometheus.Histogram
	itemTransitions  *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
	menuChanges      *prometheus.CounterVec
	rpcRequests      *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ordersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bistro",
			Name:      "orders_created_total",
			Help:      "Orders placed through checkout.",
		}),
		ordersCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bistro",
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled before preparation started.",
		}),
		orderValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bistro",
			Name:      "order_total_dollars",
			Help:      "Order totals including fees and tax.",
			Buckets:   []float64{5, 10, 20, 30, 50, 75, 100, 150},
		}),
		itemTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bistro",
			Name:      "item_transitions_total",
			Help:      "Order item status transitions.",
		}, []string{"from", "to"}),
		orderTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bistro",
			Name:      "order_transitions_total",
			Help:      "Derived order status changes by target status.",
		}, []string{"status"}),
		menuChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bistro",
			Name:      "menu_changes_total",
			Help:      "Catalog writes by kind.",
		}, []string{"kind"}),
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bistro",
			Name:      "rpc_requests_total",
			Help:      "RPCs handled by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bistro",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

// Observe records a domain event. Register it with events.Bus.Handle.
func (m *Metrics) Observe(e events.Event) {
	switch ev := e.(type) {
	case events.OrderCreated:
		m.ordersCreated.Inc()
		if ev.Order != nil {
			m.orderValue.Observe(ev.Order.Total.InexactFloat64())
		}
	case events.OrderCancelled:
		m.ordersCancelled.Inc()
	case events.ItemStatusChanged:
		m.itemTransitions.WithLabelValues(ev.From.String(), ev.To.String()).Inc()
	case events.OrderStatusChanged:
		m.orderTransitions.WithLabelValues(ev.To.String()).Inc()
	case events.MenuItemChanged:
		kind := "upsert"
		if ev.Deleted {
			kind = "delete"
		}
		m.menuChanges.WithLabelValues(kind).Inc()
	}
}

// Interceptor counts unary RPCs and their latency.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := codeOf(err)
			m.rpcDuration.WithLabelValues(procedure, code).Observe(time.Since(start).Seconds())
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			return resp, err
		}
	}
}

func codeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
