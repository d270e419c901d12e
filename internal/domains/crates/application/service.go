package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

// Service orchestrates the crates bounded context use cases.
type Service struct {
	catalogs    ports.CatalogRepository
	assessments ports.AssessmentRepository
	idempotency ports.IdempotencyStore
	auditor     ports.Auditor
	events      ports.EventPublisher
	formula     domain.Formula
	now         func() time.Time
}

// Option customises the service wiring.
type Option func(*Service)

// WithIdempotencyStore enables replay-safe assessment creation.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithAuditor plugs the advisory crate auditor.
func WithAuditor(auditor ports.Auditor) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithEventPublisher receives domain events raised by the service.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithDefaultFormula sets the height formula used when a request does not name one.
func WithDefaultFormula(f domain.Formula) Option {
	return func(s *Service) {
		if f != "" {
			s.formula = f
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the crates service with its dependencies.
func NewService(catalogs ports.CatalogRepository, assessments ports.AssessmentRepository, opts ...Option) *Service {
	s := &Service{
		catalogs:    catalogs,
		assessments: assessments,
		formula:     domain.FormulaHeadClearance,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Calculate sizes a crate for one pet against the current catalog.
func (s *Service) Calculate(ctx context.Context, input types.CalculateInput) (*types.CalculateResult, error) {
	catalog, err := s.catalogs.Current(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	formula, err := s.resolveFormula(input.Formula)
	if err != nil {
		return nil, err
	}
	if input.Strict {
		rec, err := domain.SizeStrict(input.Measurements, catalog, domain.WithFormula(formula))
		if err != nil {
			return nil, mapError(err)
		}
		return &types.CalculateResult{Complete: true, Recommendation: rec}, nil
	}
	rec := domain.Size(input.Measurements, catalog, domain.WithFormula(formula))
	return &types.CalculateResult{Complete: rec != nil, Recommendation: rec}, nil
}

// CalculateBatch sizes every item strictly. Item failures are reported per item.
func (s *Service) CalculateBatch(ctx context.Context, input types.BatchInput) ([]types.BatchItemResult, error) {
	catalog, err := s.catalogs.Current(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	formula, err := s.resolveFormula(input.Formula)
	if err != nil {
		return nil, err
	}
	results := make([]types.BatchItemResult, 0, len(input.Items))
	for i, m := range input.Items {
		rec, err := domain.SizeStrict(m, catalog, domain.WithFormula(formula))
		results = append(results, types.BatchItemResult{Index: i, Recommendation: rec, Err: mapError(err)})
	}
	return results, nil
}

// Catalog returns the active crate catalog.
func (s *Service) Catalog(ctx context.Context) (*domain.Catalog, error) {
	catalog, err := s.catalogs.Current(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return catalog, nil
}

// CreateAssessment records a strict calculation for a booking, replaying idempotent retries.
func (s *Service) CreateAssessment(ctx context.Context, input types.CreateAssessmentInput) (*types.AssessmentProjection, error) {
	if err := ValidateAssessmentInput(input); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintAssessment(input)
		if err != nil {
			return nil, err
		}
		fingerprint = hash
		existing, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replay(ctx, existing, fingerprint)
		}
	}

	assessment, err := s.buildAssessment(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.assessments.Save(ctx, assessment)
	if err != nil {
		return nil, mapError(err)
	}
	if fingerprint != "" {
		record, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:          key,
			RequestHash:  fingerprint,
			AssessmentID: saved.Entity.ID,
		})
		if errors.Is(err, ports.ErrIdempotencyConflict) && record != nil {
			return s.replay(ctx, record, fingerprint)
		}
		if err != nil {
			return nil, err
		}
	}
	s.publish(ctx, domain.NewAssessmentRecorded(saved.Entity, s.now()))
	return saved, nil
}

// GetAssessment loads a single assessment.
func (s *Service) GetAssessment(ctx context.Context, input types.AssessmentIdentifier) (*types.AssessmentProjection, error) {
	projection, err := s.assessments.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// ListAssessments returns every assessment recorded for a booking reference.
func (s *Service) ListAssessments(ctx context.Context, input types.ListAssessmentsInput) ([]*types.AssessmentProjection, error) {
	ref := strings.TrimSpace(input.BookingRef)
	if ref == "" {
		return nil, mapError(domain.ErrEmptyBookingRef)
	}
	result, err := s.assessments.ListByBookingRef(ctx, ref)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// AuditCalculation computes a strict recommendation and asks the advisory auditor to review it.
func (s *Service) AuditCalculation(ctx context.Context, input types.AuditInput) (*types.AuditResult, error) {
	if s.auditor == nil {
		return nil, ports.ErrAuditUnavailable
	}
	result, err := s.Calculate(ctx, types.CalculateInput{Measurements: input.Measurements, Formula: input.Formula, Strict: true})
	if err != nil {
		return nil, err
	}
	if input.WeightKg < 0 {
		return nil, mapError(domain.ErrInvalidWeight)
	}
	finding, err := s.auditor.Audit(ctx, ports.AuditRequest{
		Measurements:   input.Measurements,
		Recommendation: *result.Recommendation,
		Breed:          strings.TrimSpace(input.Breed),
		WeightKg:       input.WeightKg,
		Destination:    strings.TrimSpace(input.Destination),
	})
	if err != nil {
		return nil, err
	}
	return &types.AuditResult{Recommendation: result.Recommendation, Finding: finding}, nil
}

// AuditAssessment runs the advisory audit for a stored assessment and attaches the finding.
func (s *Service) AuditAssessment(ctx context.Context, input types.AssessmentIdentifier) (*types.AssessmentProjection, error) {
	if s.auditor == nil {
		return nil, ports.ErrAuditUnavailable
	}
	projection, err := s.assessments.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	assessment := projection.Entity
	finding, err := s.auditor.Audit(ctx, ports.AuditRequest{
		Measurements:   assessment.Measurements,
		Recommendation: assessment.Recommendation,
		Breed:          assessment.Breed,
		WeightKg:       assessment.WeightKg,
		Destination:    assessment.Destination,
	})
	if err != nil {
		return nil, err
	}
	if finding.AuditedAt.IsZero() {
		finding.AuditedAt = s.now().UTC()
	}
	if err := assessment.AttachAudit(*finding); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.assessments.Save(ctx, assessment)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.AssessmentAudited{
		BaseEvent:    domain.BaseEvent{Timestamp: s.now()},
		AssessmentID: assessment.ID,
		SafetyScore:  finding.SafetyScore,
		Verdict:      finding.Verdict,
	})
	return saved, nil
}

// ValidateAssessmentInput checks the request without touching storage, so callers can reject bad
// input before starting durable work.
func ValidateAssessmentInput(input types.CreateAssessmentInput) error {
	if strings.TrimSpace(input.BookingRef) == "" {
		return mapError(domain.ErrEmptyBookingRef)
	}
	if err := input.Measurements.Validate(); err != nil {
		return mapError(err)
	}
	if input.WeightKg < 0 {
		return mapError(domain.ErrInvalidWeight)
	}
	if input.Formula != "" {
		if _, err := domain.ParseFormula(string(input.Formula)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil
}

func (s *Service) buildAssessment(ctx context.Context, input types.CreateAssessmentInput) (*domain.Assessment, error) {
	catalog, err := s.catalogs.Current(ctx)
	if err != nil {
		return nil, err
	}
	formula, err := s.resolveFormula(input.Formula)
	if err != nil {
		return nil, err
	}
	assessment, err := domain.NewAssessment(input.BookingRef, input.Measurements, catalog, domain.WithFormula(formula))
	if err != nil {
		return nil, err
	}
	if err := assessment.DescribePet(input.Breed, input.WeightKg, input.Destination); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *Service) replay(ctx context.Context, record *ports.IdempotencyRecord, fingerprint string) (*types.AssessmentProjection, error) {
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	projection, err := s.assessments.GetByID(ctx, record.AssessmentID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

func (s *Service) resolveFormula(f domain.Formula) (domain.Formula, error) {
	if f == "" {
		return s.formula, nil
	}
	formula, err := domain.ParseFormula(string(f))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return formula, nil
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, event)
}

var _ ports.Service = (*Service)(nil)
