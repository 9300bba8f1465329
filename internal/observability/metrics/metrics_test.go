package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestQuoteMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQuoteMetrics(reg)

	m.ObserveAttempt("gemini-1.5", "unavailable", 0.2)
	m.ObserveAttempt("gemini-1.5", "unavailable", 0.1)
	m.ObserveAttempt("gemini-1.0", "ok", 1.4)
	m.ObserveReply(true)
	m.ObserveLead("chat-api", false)
	m.ObserveAnalyticsEvent(true)

	if got := counterValue(t, reg, "smartquote_gateway_model_attempts_total", map[string]string{"model": "gemini-1.5", "outcome": "unavailable"}); got != 2 {
		t.Fatalf("expected 2 unavailable attempts, got %v", got)
	}
	if got := counterValue(t, reg, "smartquote_chat_replies_total", map[string]string{"quote_complete": "true"}); got != 1 {
		t.Fatalf("expected 1 quote reply, got %v", got)
	}
	if got := counterValue(t, reg, "smartquote_leads_dispatched_total", map[string]string{"source": "chat-api", "status": "failed"}); got != 1 {
		t.Fatalf("expected 1 failed lead, got %v", got)
	}
}

func TestQuoteMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	defer func() { prometheus.DefaultRegisterer = prev }()

	m := NewQuoteMetrics(nil)
	m.ObserveReply(false)
	if got := counterValue(t, reg, "smartquote_chat_replies_total", map[string]string{"quote_complete": "false"}); got != 1 {
		t.Fatalf("expected reply registered on default registerer, got %v", got)
	}
}

func TestQuoteMetricsNilSafe(t *testing.T) {
	var m *QuoteMetrics
	m.ObserveAttempt("model", "ok", 0.1)
	m.ObserveReply(true)
	m.ObserveLead("web", true)
	m.ObserveAnalyticsEvent(false)
}
