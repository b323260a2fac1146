// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courier_dispatch"

// Outcome labels.
const (
	OutcomeAssigned  = "assigned"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeMoved     = "moved"
	OutcomeCompleted = "completed"
	OutcomeOK        = "ok"
	OutcomeIdle      = "idle"
	OutcomeLocked    = "locked"
	OutcomePoison    = "poison"
)

type Metrics struct {
	registry *prometheus.Registry

	Orders          *prometheus.CounterVec
	Couriers        *prometheus.CounterVec
	JobRuns         *prometheus.CounterVec
	JobDuration     *prometheus.HistogramVec
	OutboxPublished *prometheus.CounterVec
	ConsumedEvents  *prometheus.CounterVec
	BreakerState    *prometheus.GaugeVec
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_orders_total",
			Help:      "Orders handled by the assignment job, by outcome.",
		}, []string{"outcome"}),
		Couriers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "courier_steps_total",
			Help:      "Couriers handled by the movement job, by outcome.",
		}, []string{"outcome"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Job ticks, by job and result.",
		}, []string{"job", "result"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of job ticks that did work.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"job"}),
		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_messages_total",
			Help:      "Outbox messages handed to the message bus, by event and result.",
		}, []string{"event", "result"}),
		ConsumedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consumed_events_total",
			Help:      "Inbound messages, by topic and result.",
		}, []string{"topic", "result"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
	}

	registry.MustRegister(
		m.Orders,
		m.Couriers,
		m.JobRuns,
		m.JobDuration,
		m.OutboxPublished,
		m.ConsumedEvents,
		m.BreakerState,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordAssignment(assigned, skipped, failed int) {
	m.Orders.WithLabelValues(OutcomeAssigned).Add(float64(assigned))
	m.Orders.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	m.Orders.WithLabelValues(OutcomeFailed).Add(float64(failed))
}

func (m *Metrics) RecordMovement(moved, completed, skipped, failed int) {
	m.Couriers.WithLabelValues(OutcomeMoved).Add(float64(moved))
	m.Couriers.WithLabelValues(OutcomeCompleted).Add(float64(completed))
	m.Couriers.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	m.Couriers.WithLabelValues(OutcomeFailed).Add(float64(failed))
}

func (m *Metrics) RecordJobRun(job, result string, duration time.Duration) {
	m.JobRuns.WithLabelValues(job, result).Inc()
	if result == OutcomeOK {
		m.JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordOutboxPublish(event string, ok bool) {
	result := OutcomeOK
	if !ok {
		result = OutcomeFailed
	}
	m.OutboxPublished.WithLabelValues(event, result).Inc()
}

func (m *Metrics) RecordConsumed(topic, result string) {
	m.ConsumedEvents.WithLabelValues(topic, result).Inc()
}

func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}
