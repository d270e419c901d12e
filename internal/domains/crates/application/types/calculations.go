package types

import "github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"

// CalculateInput asks for a single crate size. Measurements are already in centimeters.
type CalculateInput struct {
	Measurements domain.Measurements
	Formula      domain.Formula
	// Strict rejects incomplete or invalid measurements instead of returning no result.
	Strict bool
}

// CalculateResult carries the recommendation, nil while the measurements are incomplete.
type CalculateResult struct {
	Complete       bool
	Recommendation *domain.Recommendation
}

// BatchInput sizes several pets in one call. Every item is validated strictly.
type BatchInput struct {
	Items   []domain.Measurements
	Formula domain.Formula
}

// BatchItemResult reports the outcome for one batch item.
type BatchItemResult struct {
	Index          int
	Recommendation *domain.Recommendation
	Err            error
}

// AuditInput requests an advisory audit of a freshly computed recommendation.
type AuditInput struct {
	Measurements domain.Measurements
	Formula      domain.Formula
	Breed        string
	WeightKg     float64
	Destination  string
}

// AuditResult pairs the deterministic recommendation with the advisory finding.
type AuditResult struct {
	Recommendation *domain.Recommendation
	Finding        *domain.AuditFinding
}
