package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	cratesapp "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	crateactivities "github.com/Apurer/pet-crate-sizer/internal/platform/temporal/activities/crates"
	crateworkflows "github.com/Apurer/pet-crate-sizer/internal/platform/temporal/workflows/crates"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalAssessmentWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineAssessmentWorkflows)(nil)
)

// TemporalAssessmentWorkflows starts crate workflows on a Temporal cluster.
type TemporalAssessmentWorkflows struct {
	client    client.Client
	taskQueue string
	audit     bool
}

// NewTemporalAssessmentWorkflows wires a Temporal client into the orchestrator.
// When audit is set the workflow runs the advisory audit after recording.
func NewTemporalAssessmentWorkflows(c client.Client, audit bool) *TemporalAssessmentWorkflows {
	return &TemporalAssessmentWorkflows{client: c, taskQueue: crateworkflows.AssessmentTaskQueue, audit: audit}
}

// RecordAssessment starts the Temporal workflow that records an assessment and waits for its result.
func (o *TemporalAssessmentWorkflows) RecordAssessment(ctx context.Context, input cratestypes.CreateAssessmentInput) (*cratestypes.AssessmentProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal assessment workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildAssessmentWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		crateworkflows.AssessmentWorkflow,
		crateworkflows.AssessmentWorkflowInput{Command: input, Audit: o.audit, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var projection cratestypes.AssessmentProjection
			if err := existingRun.Get(ctx, &projection); err != nil {
				return nil, translateWorkflowError(err)
			}
			return &projection, nil
		}
		return nil, err
	}
	var projection cratestypes.AssessmentProjection
	if err := run.Get(ctx, &projection); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &projection, nil
}

// translateWorkflowError restores the sentinel errors carried as application error types.
func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case crateactivities.InvalidInputErrorType:
		return fmt.Errorf("%w: %s", cratesapp.ErrInvalidInput, appErr.Message())
	case crateactivities.IdempotencyConflictErrorType:
		return fmt.Errorf("%w: %s", ports.ErrIdempotencyConflict, appErr.Message())
	case crateactivities.CatalogMissingErrorType:
		return fmt.Errorf("%w: %s", ports.ErrCatalogNotFound, appErr.Message())
	default:
		return err
	}
}

// InlineAssessmentWorkflows executes the service directly without Temporal, used in tests and dev fallbacks.
type InlineAssessmentWorkflows struct {
	service ports.Service
}

// NewInlineAssessmentWorkflows wraps the crates service for synchronous execution.
func NewInlineAssessmentWorkflows(service ports.Service) *InlineAssessmentWorkflows {
	return &InlineAssessmentWorkflows{service: service}
}

// RecordAssessment delegates to the application service without durable orchestration.
func (o *InlineAssessmentWorkflows) RecordAssessment(ctx context.Context, input cratestypes.CreateAssessmentInput) (*cratestypes.AssessmentProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline assessment workflows not configured")
	}
	return o.service.CreateAssessment(ctx, input)
}

func buildAssessmentWorkflowID(input cratestypes.CreateAssessmentInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("crate-assessment-idem-%s", hashIdempotencyKey(key))
	}
	ref := strings.ToLower(strings.TrimSpace(input.BookingRef))
	if ref == "" {
		ref = "unknown"
	}
	return fmt.Sprintf("crate-assessment-%s-%s", ref, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
