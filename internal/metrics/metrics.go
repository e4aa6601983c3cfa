package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics captures bridge poller and emitter counters.
type Metrics interface {
	IncPollCycles()
	IncPollErrors(tenantID string)
	IncEventsIngested(category string)
	IncEnqueueFailures(tenantID string)
	IncEmissions(status string)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncPollCycles()            {}
func (Noop) IncPollErrors(string)      {}
func (Noop) IncEventsIngested(string)  {}
func (Noop) IncEnqueueFailures(string) {}
func (Noop) IncEmissions(string)       {}

// Prom implements Metrics backed by a private Prometheus registry.
type Prom struct {
	registry        *prometheus.Registry
	pollCycles      prometheus.Counter
	pollErrors      *prometheus.CounterVec
	eventsIngested  *prometheus.CounterVec
	enqueueFailures *prometheus.CounterVec
	emissions       *prometheus.CounterVec
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		pollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Completed poll cycles across all tenants",
		}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Per-tenant poll failures",
		}, []string{"tenant"}),
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_total",
			Help:      "Inbound labeler events by category",
		}, []string{"category"}),
		enqueueFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enqueue_failures_total",
			Help:      "Review queue enqueue failures per tenant",
		}, []string{"tenant"}),
		emissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emissions_total",
			Help:      "Outbound emissions by terminal status",
		}, []string{"status"}),
	}
	p.registry.MustRegister(p.pollCycles, p.pollErrors, p.eventsIngested, p.enqueueFailures, p.emissions)
	return p
}

func (p *Prom) IncPollCycles() { p.pollCycles.Inc() }

func (p *Prom) IncPollErrors(tenantID string) { p.pollErrors.WithLabelValues(tenantID).Inc() }

func (p *Prom) IncEventsIngested(category string) { p.eventsIngested.WithLabelValues(category).Inc() }

func (p *Prom) IncEnqueueFailures(tenantID string) {
	p.enqueueFailures.WithLabelValues(tenantID).Inc()
}

func (p *Prom) IncEmissions(status string) { p.emissions.WithLabelValues(status).Inc() }

// Handler serves the registry for scraping.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
