package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestLeadMetricsObserve(t *testing.T) {
	m := NewLeadMetrics(prometheus.NewRegistry())
	m.ObserveSubmission("demo", OutcomeAccepted)
	m.ObserveSubmission("demo", OutcomeAccepted)
	m.ObserveSubmission("presentation", OutcomeSpam)

	if got := counterValue(t, m.submissionsTotal.WithLabelValues("demo", OutcomeAccepted)); got != 2 {
		t.Fatalf("expected 2 accepted demo submissions, got %v", got)
	}
	if got := counterValue(t, m.submissionsTotal.WithLabelValues("presentation", OutcomeSpam)); got != 1 {
		t.Fatalf("expected 1 spam presentation submission, got %v", got)
	}
}

func TestLeadMetricsUnknownFormType(t *testing.T) {
	m := NewLeadMetrics(prometheus.NewRegistry())
	m.ObserveSubmission("", OutcomeInvalid)
	if got := counterValue(t, m.submissionsTotal.WithLabelValues("unknown", OutcomeInvalid)); got != 1 {
		t.Fatalf("expected unknown form type bucket, got %v", got)
	}
}

func TestLeadMetricsValidationFailures(t *testing.T) {
	m := NewLeadMetrics(prometheus.NewRegistry())
	m.ObserveValidationFailure([]string{"email", "name"})
	m.ObserveValidationFailure(nil)

	if got := counterValue(t, m.validationFailures.WithLabelValues("email")); got != 1 {
		t.Fatalf("expected email failure counted, got %v", got)
	}
	if got := counterValue(t, m.validationFailures.WithLabelValues("_form")); got != 1 {
		t.Fatalf("expected form-level failure counted, got %v", got)
	}
}

func TestLeadMetricsPersistLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.ObservePersistLatency("demo", 0.02)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != "site_leads_persist_seconds" {
			continue
		}
		if got := fam.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
			t.Fatalf("expected one latency sample, got %d", got)
		}
		return
	}
	t.Fatal("persist latency histogram not registered")
}

func TestLeadMetricsNilSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveSubmission("demo", OutcomeAccepted)
	m.ObserveValidationFailure([]string{"email"})
	m.ObservePersistLatency("demo", 0.1)
}
