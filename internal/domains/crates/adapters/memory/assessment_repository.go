package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	"github.com/Apurer/pet-crate-sizer/internal/shared/projection"
)

var _ ports.AssessmentRepository = (*AssessmentRepository)(nil)

type storedAssessment struct {
	assessment *domain.Assessment
	createdAt  time.Time
	updatedAt  time.Time
}

// AssessmentRepository is an in-memory assessment persistence adapter.
type AssessmentRepository struct {
	mu      sync.RWMutex
	records map[int64]storedAssessment
	nextID  int64
	now     func() time.Time
}

func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{records: map[int64]storedAssessment{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *AssessmentRepository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Save inserts a new assessment (ID zero) or replaces an existing one.
func (r *AssessmentRepository) Save(_ context.Context, assessment *domain.Assessment) (*projection.Projection[*domain.Assessment], error) {
	if assessment == nil {
		return nil, errors.New("assessment is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	clone := cloneAssessment(assessment)
	stored := storedAssessment{assessment: clone, createdAt: now, updatedAt: now}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else {
		if existing, ok := r.records[clone.ID]; ok {
			stored.createdAt = existing.createdAt
		}
		if clone.ID > r.nextID {
			r.nextID = clone.ID
		}
	}
	r.records[clone.ID] = stored
	assessment.ID = clone.ID
	return toProjection(stored), nil
}

func (r *AssessmentRepository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Assessment], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.records[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return toProjection(stored), nil
}

// ListByBookingRef returns assessments for the booking ordered by ID.
func (r *AssessmentRepository) ListByBookingRef(_ context.Context, bookingRef string) ([]*projection.Projection[*domain.Assessment], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*projection.Projection[*domain.Assessment], 0)
	for _, stored := range r.records {
		if stored.assessment.BookingRef == bookingRef {
			list = append(list, toProjection(stored))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.ID < list[j].Entity.ID })
	return list, nil
}

func toProjection(stored storedAssessment) *projection.Projection[*domain.Assessment] {
	return projection.New(cloneAssessment(stored.assessment), stored.createdAt, stored.updatedAt)
}

func cloneAssessment(a *domain.Assessment) *domain.Assessment {
	clone := *a
	if a.Recommendation.RecommendedCrate != nil {
		entry := *a.Recommendation.RecommendedCrate
		if entry.External != nil {
			external := *entry.External
			entry.External = &external
		}
		clone.Recommendation.RecommendedCrate = &entry
	}
	if a.Audit != nil {
		audit := *a.Audit
		audit.Issues = append([]string(nil), a.Audit.Issues...)
		clone.Audit = &audit
	}
	return &clone
}
