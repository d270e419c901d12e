package crates

import (
	"go.temporal.io/sdk/workflow"

	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/platform/temporal/sequences"
)

const (
	// AssessmentWorkflowName is the public identifier for registering the workflow.
	AssessmentWorkflowName = "crates.workflows.Assessment"
	// AssessmentTaskQueue is the queue consumed by the worker processing crate workflows.
	AssessmentTaskQueue = "CRATE_ASSESSMENT"
)

// AssessmentWorkflowInput captures the payload required to record a crate assessment.
type AssessmentWorkflowInput struct {
	Command cratestypes.CreateAssessmentInput
	Audit   bool
	TraceID string
}

// AssessmentWorkflow records a crate assessment and runs the optional advisory audit.
func AssessmentWorkflow(ctx workflow.Context, input AssessmentWorkflowInput) (*cratestypes.AssessmentProjection, error) {
	logger := workflow.GetLogger(ctx)
	bookingRef := input.Command.BookingRef
	logger.Info("AssessmentWorkflow started", withTraceID(input.TraceID, "bookingRef", bookingRef)...)
	projection, err := sequences.RunAssessmentSequence(ctx, input.Command, input.Audit)
	if err != nil {
		logger.Error("AssessmentWorkflow failed", withTraceID(input.TraceID, "bookingRef", bookingRef, "error", err)...)
		return nil, err
	}
	if projection != nil && projection.Entity != nil {
		logger.Info("AssessmentWorkflow completed", withTraceID(input.TraceID, "assessmentId", projection.Entity.ID)...)
	} else {
		logger.Info("AssessmentWorkflow completed", withTraceID(input.TraceID)...)
	}
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
