package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded by LeadMetrics.
const (
	OutcomeAccepted  = "accepted"
	OutcomeSpam      = "spam"
	OutcomeThrottled = "throttled"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// LeadMetrics exposes counters/histograms for the lead intake flow.
type LeadMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	persistLatency     *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead form submissions by form type and outcome",
		}, []string{"form_type", "outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site",
			Subsystem: "leads",
			Name:      "validation_failures_total",
			Help:      "Rejected lead fields by field name",
		}, []string{"field"}),
		persistLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "site",
			Subsystem: "leads",
			Name:      "persist_seconds",
			Help:      "Latency of the contact request transaction",
			Buckets:   prometheus.DefBuckets,
		}, []string{"form_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.validationFailures, m.persistLatency)
	return m
}

func (m *LeadMetrics) ObserveSubmission(formType, outcome string) {
	if m == nil {
		return
	}
	if formType == "" {
		formType = "unknown"
	}
	m.submissionsTotal.WithLabelValues(formType, outcome).Inc()
}

func (m *LeadMetrics) ObserveValidationFailure(fields []string) {
	if m == nil {
		return
	}
	if len(fields) == 0 {
		m.validationFailures.WithLabelValues("_form").Inc()
		return
	}
	for _, f := range fields {
		m.validationFailures.WithLabelValues(f).Inc()
	}
}

func (m *LeadMetrics) ObservePersistLatency(formType string, seconds float64) {
	if m == nil {
		return
	}
	m.persistLatency.WithLabelValues(formType).Observe(seconds)
}
