package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by the advisory pipeline.
type Metrics struct {
	Assemblies *prometheus.CounterVec
	LLMLatency *prometheus.HistogramVec
	LLMErrors  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which tests use.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Assemblies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assemble_total",
			Help:      "Assembled responses by domain, outcome and fallback reason.",
		}, []string{"domain", "outcome", "reason"}),
		LLMLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_seconds",
			Help:      "Latency of text-generation calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"engine", "status"}),
		LLMErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Failed text-generation calls by engine.",
		}, []string{"engine"}),
	}
	if reg != nil {
		reg.MustRegister(m.Assemblies, m.LLMLatency, m.LLMErrors)
	}
	return m
}

// Assembled counts one assembler result. Safe on a nil receiver.
func (m *Metrics) Assembled(domain, outcome, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.Assemblies.WithLabelValues(domain, outcome, reason).Inc()
}

// ObserveLLM records one model call. Safe on a nil receiver.
func (m *Metrics) ObserveLLM(engine string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		m.LLMErrors.WithLabelValues(engine).Inc()
	}
	m.LLMLatency.WithLabelValues(engine, status).Observe(d.Seconds())
}
