package leads

import (
	"context"
	"errors"
	"time"

	"github.com/didax-edu/site-api/internal/observability/metrics"
	"github.com/didax-edu/site-api/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Throttler decides whether a client may submit again.
type Throttler interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Outcome reports what happened to an intake.
type Outcome struct {
	ID   int64
	Spam bool
}

// Service runs the intake pipeline: spam check, throttle, normalization and
// persistence.
type Service struct {
	repo     Repository
	throttle Throttler
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
}

// NewService wires the pipeline. throttle and m may be nil.
func NewService(repo Repository, throttle Throttler, m *metrics.LeadMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, throttle: throttle, metrics: m, logger: logger.With("component", "leads")}
}

// Intake validates a raw body and records rejected fields.
func (s *Service) Intake(body []byte) (*Lead, error) {
	lead, err := Parse(body)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.ObserveSubmission("", metrics.OutcomeInvalid)
			s.metrics.ObserveValidationFailure(verr.Fields())
		}
		return nil, err
	}
	return lead, nil
}

// Submit persists a validated lead. Honeypot hits return Outcome{Spam: true}
// without touching storage.
func (s *Service) Submit(ctx context.Context, lead *Lead, meta RequestMeta) (Outcome, error) {
	if lead == nil || lead.Form == nil {
		return Outcome{}, ErrNoForm
	}
	formType := string(lead.Form.Type())

	ctx, span := leadsTracer.Start(ctx, "leads.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("lead.form_type", formType),
		attribute.String("lead.product", lead.Product),
	)

	if lead.IsSpam() {
		s.metrics.ObserveSubmission(formType, metrics.OutcomeSpam)
		span.SetAttributes(attribute.Bool("lead.spam", true))
		s.logger.Info("lead discarded by honeypot", "product", lead.Product, "form_type", formType)
		return Outcome{Spam: true}, nil
	}

	if s.throttle != nil && meta.IP != nil {
		allowed, err := s.throttle.Allow(ctx, *meta.IP)
		if err != nil {
			s.logger.Warn("throttle check failed; allowing submission", "error", err, "form_type", formType)
		} else if !allowed {
			s.metrics.ObserveSubmission(formType, metrics.OutcomeThrottled)
			return Outcome{}, ErrThrottled
		}
	}

	req := NewContactRequest(lead, meta)

	start := time.Now()
	id, err := s.repo.Create(ctx, req)
	s.metrics.ObservePersistLatency(formType, time.Since(start).Seconds())
	if err != nil {
		s.metrics.ObserveSubmission(formType, metrics.OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return Outcome{}, err
	}

	s.metrics.ObserveSubmission(formType, metrics.OutcomeAccepted)
	s.logger.Info("lead created",
		"id", id,
		"product", req.Product,
		"form_type", formType,
		"modules", len(req.ModuleCodes),
		"interest_resolved", req.InterestID != nil,
	)
	return Outcome{ID: id}, nil
}
