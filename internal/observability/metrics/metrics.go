package metrics

import "github.com/prometheus/client_golang/prometheus"

// QuoteMetrics exposes counters/histograms for the smart-quote chat flow.
type QuoteMetrics struct {
	modelAttempts     *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	replies           *prometheus.CounterVec
	leads             *prometheus.CounterVec
	analyticsEvents   *prometheus.CounterVec
}

func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	m := &QuoteMetrics{
		modelAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartquote",
			Subsystem: "gateway",
			Name:      "model_attempts_total",
			Help:      "Generation attempts per candidate model and outcome",
		}, []string{"model", "outcome"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartquote",
			Subsystem: "gateway",
			Name:      "generation_latency_seconds",
			Help:      "Latency of a single model generation call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartquote",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Chat replies returned, split by quote detection",
		}, []string{"quote_complete"}),
		leads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartquote",
			Subsystem: "leads",
			Name:      "dispatched_total",
			Help:      "Lead dispatch attempts by status",
		}, []string{"source", "status"}),
		analyticsEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartquote",
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Analytics events received by logging outcome",
		}, []string{"logged"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.modelAttempts, m.generationLatency, m.replies, m.leads, m.analyticsEvents)
	return m
}

func (m *QuoteMetrics) ObserveAttempt(model, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.modelAttempts.WithLabelValues(model, outcome).Inc()
	m.generationLatency.WithLabelValues(model).Observe(seconds)
}

func (m *QuoteMetrics) ObserveReply(quoteComplete bool) {
	if m == nil {
		return
	}
	m.replies.WithLabelValues(boolLabel(quoteComplete)).Inc()
}

func (m *QuoteMetrics) ObserveLead(source string, sent bool) {
	if m == nil {
		return
	}
	status := "failed"
	if sent {
		status = "sent"
	}
	m.leads.WithLabelValues(source, status).Inc()
}

func (m *QuoteMetrics) ObserveAnalyticsEvent(logged bool) {
	if m == nil {
		return
	}
	m.analyticsEvents.WithLabelValues(boolLabel(logged)).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
