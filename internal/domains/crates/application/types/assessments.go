package types

import (
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/shared/projection"
)

// AssessmentProjection transports an assessment together with its persistence metadata.
type AssessmentProjection = projection.Projection[*domain.Assessment]

// CreateAssessmentInput records a strict crate calculation against a booking reference.
type CreateAssessmentInput struct {
	IdempotencyKey string
	BookingRef     string
	Breed          string
	WeightKg       float64
	Destination    string
	Measurements   domain.Measurements
	Formula        domain.Formula
}

// AssessmentIdentifier addresses a single assessment.
type AssessmentIdentifier struct {
	ID int64
}

// ListAssessmentsInput filters assessments by booking reference.
type ListAssessmentsInput struct {
	BookingRef string
}
