package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	crateactivities "github.com/Apurer/pet-crate-sizer/internal/platform/temporal/activities/crates"
)

// RunAssessmentSequence records the assessment and, when requested, runs the advisory audit.
// Audit failures are logged and never fail the sequence.
func RunAssessmentSequence(ctx workflow.Context, input cratestypes.CreateAssessmentInput, audit bool) (*cratestypes.AssessmentProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("assessment sequence started", "bookingRef", input.BookingRef)
	recordOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	auditOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var projection cratestypes.AssessmentProjection
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, recordOptions), crateactivities.RecordAssessmentActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("assessment sequence failed", "bookingRef", input.BookingRef, "error", err)
		return nil, err
	}
	if projection.Entity == nil {
		logger.Info("assessment sequence recorded")
		return &projection, nil
	}
	logger.Info("assessment sequence recorded", "assessmentId", projection.Entity.ID)
	if !audit {
		return &projection, nil
	}

	id := cratestypes.AssessmentIdentifier{ID: projection.Entity.ID}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, auditOptions), crateactivities.AuditAssessmentActivityName, id).Get(ctx, nil); err != nil {
		logger.Warn("assessment sequence audit skipped", "assessmentId", id.ID, "error", err)
		return &projection, nil
	}
	logger.Info("assessment sequence audited", "assessmentId", id.ID)
	return &projection, nil
}
