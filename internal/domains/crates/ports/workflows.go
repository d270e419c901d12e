package ports

import (
	"context"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the crates bounded context.
type WorkflowOrchestrator interface {
	RecordAssessment(ctx context.Context, input types.CreateAssessmentInput) (*types.AssessmentProjection, error)
}
