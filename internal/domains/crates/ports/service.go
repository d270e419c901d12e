package ports

import (
	"context"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
)

// Service defines the crate sizing use cases exposed to adapters (inbound/driving port).
type Service interface {
	Calculate(ctx context.Context, input types.CalculateInput) (*types.CalculateResult, error)
	CalculateBatch(ctx context.Context, input types.BatchInput) ([]types.BatchItemResult, error)
	Catalog(ctx context.Context) (*domain.Catalog, error)
	CreateAssessment(ctx context.Context, input types.CreateAssessmentInput) (*types.AssessmentProjection, error)
	GetAssessment(ctx context.Context, input types.AssessmentIdentifier) (*types.AssessmentProjection, error)
	ListAssessments(ctx context.Context, input types.ListAssessmentsInput) ([]*types.AssessmentProjection, error)
	AuditCalculation(ctx context.Context, input types.AuditInput) (*types.AuditResult, error)
	AuditAssessment(ctx context.Context, input types.AssessmentIdentifier) (*types.AssessmentProjection, error)
}
