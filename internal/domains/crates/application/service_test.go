package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cratememory "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/memory"
	cratetypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

var boxer = domain.Measurements{LengthA: 60, ElbowB: 30, WidthC: 35, HeightD: 55}

type stubAuditor struct {
	finding *domain.AuditFinding
	err     error
	calls   int
	last    ports.AuditRequest
}

func (a *stubAuditor) Audit(_ context.Context, req ports.AuditRequest) (*domain.AuditFinding, error) {
	a.calls++
	a.last = req
	if a.err != nil {
		return nil, a.err
	}
	finding := *a.finding
	return &finding, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newTestService(opts ...Option) *Service {
	return NewService(cratememory.NewCatalogRepository(nil), cratememory.NewAssessmentRepository(), opts...)
}

func TestCalculate_Interactive(t *testing.T) {
	svc := newTestService()

	result, err := svc.Calculate(context.Background(), cratetypes.CalculateInput{Measurements: boxer})
	require.NoError(t, err)
	require.True(t, result.Complete)
	require.NotNil(t, result.Recommendation.RecommendedCrate)
	require.Equal(t, "sky-700", result.Recommendation.RecommendedCrate.ID)
	require.Equal(t, domain.DefaultCatalogVersion, result.Recommendation.CatalogVersion)

	partial, err := svc.Calculate(context.Background(), cratetypes.CalculateInput{Measurements: domain.Measurements{LengthA: 60}})
	require.NoError(t, err)
	require.False(t, partial.Complete)
	require.Nil(t, partial.Recommendation)
}

func TestCalculate_StrictRejectsIncomplete(t *testing.T) {
	svc := newTestService()

	_, err := svc.Calculate(context.Background(), cratetypes.CalculateInput{
		Measurements: domain.Measurements{LengthA: 60, ElbowB: 30, WidthC: 35},
		Strict:       true,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrIncompleteInput)
}

func TestCalculate_FormulaSelection(t *testing.T) {
	svc := newTestService(WithDefaultFormula(domain.FormulaElbowStacked))

	result, err := svc.Calculate(context.Background(), cratetypes.CalculateInput{Measurements: boxer})
	require.NoError(t, err)
	require.Equal(t, domain.FormulaElbowStacked, result.Recommendation.Formula)
	require.True(t, result.Recommendation.IsCustomBuildNeeded)

	result, err = svc.Calculate(context.Background(), cratetypes.CalculateInput{Measurements: boxer, Formula: "Head-Clearance"})
	require.NoError(t, err)
	require.Equal(t, domain.FormulaHeadClearance, result.Recommendation.Formula)

	_, err = svc.Calculate(context.Background(), cratetypes.CalculateInput{Measurements: boxer, Formula: "diagonal"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculateBatch_ReportsPerItem(t *testing.T) {
	svc := newTestService()

	results, err := svc.CalculateBatch(context.Background(), cratetypes.BatchInput{Items: []domain.Measurements{
		boxer,
		{LengthA: 60, ElbowB: -3, WidthC: 35, HeightD: 55},
		{LengthA: 30, ElbowB: 10, WidthC: 12, HeightD: 25},
	}})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.Equal(t, "sky-700", results[0].Recommendation.RecommendedCrate.ID)

	require.Equal(t, 1, results[1].Index)
	require.Nil(t, results[1].Recommendation)
	require.ErrorIs(t, results[1].Err, ErrInvalidInput)

	require.NoError(t, results[2].Err)
	require.Equal(t, "sky-100", results[2].Recommendation.RecommendedCrate.ID)
}

func TestCreateAssessment_PersistsAndPublishes(t *testing.T) {
	events := &recordingPublisher{}
	svc := newTestService(WithEventPublisher(events))

	proj, err := svc.CreateAssessment(context.Background(), cratetypes.CreateAssessmentInput{
		BookingRef:   " BK-100 ",
		Breed:        "Boxer",
		WeightKg:     30,
		Destination:  "LHR",
		Measurements: boxer,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), proj.Entity.ID)
	require.Equal(t, "BK-100", proj.Entity.BookingRef)
	require.Equal(t, "sky-700", proj.Entity.Recommendation.RecommendedCrate.ID)
	require.False(t, proj.Metadata.CreatedAt.IsZero())

	require.Len(t, events.events, 1)
	recorded, ok := events.events[0].(domain.AssessmentRecorded)
	require.True(t, ok)
	require.Equal(t, int64(1), recorded.AssessmentID)
	require.Equal(t, "sky-700", recorded.CrateID)

	list, err := svc.ListAssessments(context.Background(), cratetypes.ListAssessmentsInput{BookingRef: "BK-100"})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreateAssessment_InvalidInput(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateAssessment(context.Background(), cratetypes.CreateAssessmentInput{BookingRef: "BK-1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateAssessment(context.Background(), cratetypes.CreateAssessmentInput{BookingRef: "  ", Measurements: boxer})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyBookingRef)

	_, err = svc.CreateAssessment(context.Background(), cratetypes.CreateAssessmentInput{BookingRef: "BK-1", Measurements: boxer, WeightKg: -1})
	require.ErrorIs(t, err, domain.ErrInvalidWeight)
}

func TestCreateAssessment_IdempotentReplay(t *testing.T) {
	store := cratememory.NewIdempotencyStore()
	events := &recordingPublisher{}
	svc := newTestService(WithIdempotencyStore(store), WithEventPublisher(events))

	input := cratetypes.CreateAssessmentInput{IdempotencyKey: "key-1", BookingRef: "BK-7", Measurements: boxer}
	first, err := svc.CreateAssessment(context.Background(), input)
	require.NoError(t, err)

	second, err := svc.CreateAssessment(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.Entity.ID, second.Entity.ID)
	require.Len(t, events.events, 1)

	changed := input
	changed.Measurements.HeightD = 40
	_, err = svc.CreateAssessment(context.Background(), changed)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	list, err := svc.ListAssessments(context.Background(), cratetypes.ListAssessmentsInput{BookingRef: "BK-7"})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestGetAssessment_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.GetAssessment(context.Background(), cratetypes.AssessmentIdentifier{ID: 42})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListAssessments_RequiresBookingRef(t *testing.T) {
	svc := newTestService()
	_, err := svc.ListAssessments(context.Background(), cratetypes.ListAssessmentsInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuditCalculation(t *testing.T) {
	_, err := newTestService().AuditCalculation(context.Background(), cratetypes.AuditInput{Measurements: boxer})
	require.ErrorIs(t, err, ports.ErrAuditUnavailable)

	auditor := &stubAuditor{finding: &domain.AuditFinding{SafetyScore: 88, Verdict: "pass"}}
	svc := newTestService(WithAuditor(auditor))

	result, err := svc.AuditCalculation(context.Background(), cratetypes.AuditInput{
		Measurements: boxer,
		Breed:        " Boxer ",
		WeightKg:     30,
	})
	require.NoError(t, err)
	require.Equal(t, 88, result.Finding.SafetyScore)
	require.Equal(t, "sky-700", result.Recommendation.RecommendedCrate.ID)
	require.Equal(t, "Boxer", auditor.last.Breed)
	require.Equal(t, 75.0, auditor.last.Recommendation.MinInternal.Length)

	_, err = svc.AuditCalculation(context.Background(), cratetypes.AuditInput{Measurements: domain.Measurements{LengthA: 1}})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 1, auditor.calls)
}

func TestAuditAssessment_AttachesFinding(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	auditor := &stubAuditor{finding: &domain.AuditFinding{SafetyScore: 64, Verdict: "review", Issues: []string{"tight headroom"}}}
	events := &recordingPublisher{}
	svc := newTestService(WithAuditor(auditor), WithEventPublisher(events), WithClock(func() time.Time { return fixed }))

	created, err := svc.CreateAssessment(context.Background(), cratetypes.CreateAssessmentInput{BookingRef: "BK-9", Measurements: boxer})
	require.NoError(t, err)

	audited, err := svc.AuditAssessment(context.Background(), cratetypes.AssessmentIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)
	require.NotNil(t, audited.Entity.Audit)
	assert.Equal(t, 64, audited.Entity.Audit.SafetyScore)
	assert.Equal(t, fixed, audited.Entity.Audit.AuditedAt)
	assert.Equal(t, created.Metadata.CreatedAt, audited.Metadata.CreatedAt)
	assert.Equal(t, created.Entity.Recommendation, audited.Entity.Recommendation)

	require.Len(t, events.events, 2)
	assert.Equal(t, "crates.assessment.audited", events.events[1].EventName())
}

func TestAuditAssessment_AuditorFailure(t *testing.T) {
	auditor := &stubAuditor{err: errors.New("upstream down")}
	svc := newTestService(WithAuditor(auditor))

	created, err := svc.CreateAssessment(context.Background(), cratetypes.CreateAssessmentInput{BookingRef: "BK-10", Measurements: boxer})
	require.NoError(t, err)

	_, err = svc.AuditAssessment(context.Background(), cratetypes.AssessmentIdentifier{ID: created.Entity.ID})
	require.Error(t, err)

	stored, err := svc.GetAssessment(context.Background(), cratetypes.AssessmentIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)
	require.Nil(t, stored.Entity.Audit)
}

func TestFingerprintAssessment_IgnoresKeyAndWhitespace(t *testing.T) {
	a, err := FingerprintAssessment(cratetypes.CreateAssessmentInput{IdempotencyKey: "a", BookingRef: "BK-1", Measurements: boxer, Formula: "Head-Clearance"})
	require.NoError(t, err)
	b, err := FingerprintAssessment(cratetypes.CreateAssessmentInput{IdempotencyKey: "b", BookingRef: " BK-1 ", Measurements: boxer, Formula: "head-clearance"})
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := FingerprintAssessment(cratetypes.CreateAssessmentInput{BookingRef: "BK-2", Measurements: boxer})
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
