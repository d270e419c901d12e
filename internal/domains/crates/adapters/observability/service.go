package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	cratetypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

const tracerName = "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/observability/service"

// Service decorates the crates application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Calculate(ctx context.Context, input cratetypes.CalculateInput) (*cratetypes.CalculateResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Calculate",
		attribute.Bool("crate.strict", input.Strict),
		attribute.Bool("pet.snub_nosed", input.Measurements.IsSnubNosed),
	)
	defer span.End()

	result, err := s.inner.Calculate(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "crate calculation failed", slog.Bool("strict", input.Strict))
	}
	span.SetAttributes(attribute.Bool("crate.complete", result.Complete))
	if result.Recommendation != nil {
		s.recordRecommendation(ctx, span, result.Recommendation)
	}
	return result, nil
}

func (s *Service) CalculateBatch(ctx context.Context, input cratetypes.BatchInput) ([]cratetypes.BatchItemResult, error) {
	ctx, span := s.startSpan(ctx, "Service.CalculateBatch", attribute.Int("crate.batch.size", len(input.Items)))
	defer span.End()

	s.logInfo(ctx, "sizing crate batch", slog.Int("items", len(input.Items)))
	results, err := s.inner.CalculateBatch(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "crate batch failed", slog.Int("items", len(input.Items)))
	}
	failed := 0
	for _, item := range results {
		if item.Err != nil {
			failed++
			continue
		}
		if item.Recommendation != nil {
			s.metrics.recordCalculation(ctx, item.Recommendation)
		}
	}
	span.SetAttributes(attribute.Int("crate.batch.failed", failed))
	s.logInfo(ctx, "crate batch sized", slog.Int("items", len(results)), slog.Int("failed", failed))
	return results, nil
}

func (s *Service) Catalog(ctx context.Context) (*domain.Catalog, error) {
	ctx, span := s.startSpan(ctx, "Service.Catalog")
	defer span.End()

	catalog, err := s.inner.Catalog(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load crate catalog")
	}
	span.SetAttributes(attribute.String("crate.catalog.version", catalog.Version()), attribute.Int("crate.catalog.size", catalog.Len()))
	return catalog, nil
}

// CreateAssessment records a booking assessment with instrumentation.
func (s *Service) CreateAssessment(ctx context.Context, input cratetypes.CreateAssessmentInput) (*cratetypes.AssessmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateAssessment",
		attribute.String("booking.ref", input.BookingRef),
		attribute.Bool("idempotency.key_present", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "recording crate assessment", slog.String("booking.ref", input.BookingRef))
	result, err := s.inner.CreateAssessment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record crate assessment", slog.String("booking.ref", input.BookingRef))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.Int64("assessment.id", result.Entity.ID))
		s.metrics.recordAssessment(ctx, result.Entity.Recommendation.CrateType)
		s.logInfo(ctx, "crate assessment recorded",
			slog.Int64("assessment.id", result.Entity.ID),
			slog.String("crate.type", string(result.Entity.Recommendation.CrateType)),
		)
	}
	return result, nil
}

func (s *Service) GetAssessment(ctx context.Context, input cratetypes.AssessmentIdentifier) (*cratetypes.AssessmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetAssessment", attribute.Int64("assessment.id", input.ID))
	defer span.End()

	result, err := s.inner.GetAssessment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load crate assessment", slog.Int64("assessment.id", input.ID))
	}
	return result, nil
}

func (s *Service) ListAssessments(ctx context.Context, input cratetypes.ListAssessmentsInput) ([]*cratetypes.AssessmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListAssessments", attribute.String("booking.ref", input.BookingRef))
	defer span.End()

	result, err := s.inner.ListAssessments(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list crate assessments", slog.String("booking.ref", input.BookingRef))
	}
	span.SetAttributes(attribute.Int("assessment.result.count", len(result)))
	return result, nil
}

// AuditCalculation asks the advisory auditor to review a fresh calculation.
func (s *Service) AuditCalculation(ctx context.Context, input cratetypes.AuditInput) (*cratetypes.AuditResult, error) {
	ctx, span := s.startSpan(ctx, "Service.AuditCalculation", attribute.String("pet.breed", input.Breed))
	defer span.End()

	s.logInfo(ctx, "auditing crate calculation", slog.String("breed", input.Breed))
	result, err := s.inner.AuditCalculation(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "crate audit failed", slog.String("breed", input.Breed))
	}
	if result.Finding != nil {
		span.SetAttributes(attribute.Int("audit.safety_score", result.Finding.SafetyScore))
		s.metrics.recordAudit(ctx, result.Finding.Verdict)
	}
	return result, nil
}

func (s *Service) AuditAssessment(ctx context.Context, input cratetypes.AssessmentIdentifier) (*cratetypes.AssessmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AuditAssessment", attribute.Int64("assessment.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "auditing crate assessment", slog.Int64("assessment.id", input.ID))
	result, err := s.inner.AuditAssessment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "crate assessment audit failed", slog.Int64("assessment.id", input.ID))
	}
	if result != nil && result.Entity != nil && result.Entity.Audit != nil {
		s.metrics.recordAudit(ctx, result.Entity.Audit.Verdict)
		s.logInfo(ctx, "crate assessment audited",
			slog.Int64("assessment.id", result.Entity.ID),
			slog.Int("safety_score", result.Entity.Audit.SafetyScore),
		)
	}
	return result, nil
}

func (s *Service) recordRecommendation(ctx context.Context, span trace.Span, rec *domain.Recommendation) {
	attrs := []attribute.KeyValue{
		attribute.String("crate.type", string(rec.CrateType)),
		attribute.String("crate.formula", string(rec.Formula)),
		attribute.String("crate.catalog.version", rec.CatalogVersion),
	}
	if rec.RecommendedCrate != nil {
		attrs = append(attrs, attribute.String("crate.id", rec.RecommendedCrate.ID))
	}
	span.SetAttributes(attrs...)
	s.metrics.recordCalculation(ctx, rec)
	if rec.IsCustomBuildNeeded {
		s.logInfo(ctx, "custom crate build required",
			slog.Float64("required.length", rec.MinInternal.Length),
			slog.Float64("required.width", rec.MinInternal.Width),
			slog.Float64("required.height", rec.MinInternal.Height),
		)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	calculations metric.Int64Counter
	customBuilds metric.Int64Counter
	assessments  metric.Int64Counter
	audits       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	calculations, _ := m.Int64Counter("crates.service.calculations", metric.WithDescription("Number of completed crate calculations"))
	customBuilds, _ := m.Int64Counter("crates.service.custom_builds", metric.WithDescription("Calculations that exceeded every catalog crate"))
	assessments, _ := m.Int64Counter("crates.service.assessments", metric.WithDescription("Number of recorded crate assessments"))
	audits, _ := m.Int64Counter("crates.service.audits", metric.WithDescription("Number of advisory crate audits"))
	return serviceMetrics{
		calculations: calculations,
		customBuilds: customBuilds,
		assessments:  assessments,
		audits:       audits,
	}
}

func (m serviceMetrics) recordCalculation(ctx context.Context, rec *domain.Recommendation) {
	addCounter(ctx, m.calculations, 1, attribute.String("crate.type", string(rec.CrateType)))
	if rec.IsCustomBuildNeeded {
		addCounter(ctx, m.customBuilds, 1)
	}
}

func (m serviceMetrics) recordAssessment(ctx context.Context, crateType domain.CrateType) {
	addCounter(ctx, m.assessments, 1, attribute.String("crate.type", string(crateType)))
}

func (m serviceMetrics) recordAudit(ctx context.Context, verdict string) {
	addCounter(ctx, m.audits, 1, attribute.String("audit.verdict", verdict))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
