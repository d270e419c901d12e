package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/temporal"

	cratememory "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/memory"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	cratetypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	crateactivities "github.com/Apurer/pet-crate-sizer/internal/platform/temporal/activities/crates"
)

func TestBuildAssessmentWorkflowID(t *testing.T) {
	a := buildAssessmentWorkflowID(cratetypes.CreateAssessmentInput{IdempotencyKey: " key-1 "}, "trace")
	b := buildAssessmentWorkflowID(cratetypes.CreateAssessmentInput{IdempotencyKey: "key-1", BookingRef: "other"}, "other-trace")
	require.Equal(t, a, b)
	require.True(t, strings.HasPrefix(a, "crate-assessment-idem-"))
	require.Len(t, strings.TrimPrefix(a, "crate-assessment-idem-"), 16)

	require.Equal(t, "crate-assessment-bk-1-trace", buildAssessmentWorkflowID(cratetypes.CreateAssessmentInput{BookingRef: " BK-1 "}, "trace"))
}

func TestWorkflowTraceComponent(t *testing.T) {
	require.True(t, strings.HasPrefix(workflowTraceComponent(context.Background()), "fallback-"))

	traceID, err := oteltrace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := oteltrace.ContextWithSpanContext(context.Background(), oteltrace.NewSpanContext(oteltrace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))
	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", workflowTraceComponent(ctx))
}

func TestInlineAssessmentWorkflows(t *testing.T) {
	svc := application.NewService(cratememory.NewCatalogRepository(nil), cratememory.NewAssessmentRepository())
	proj, err := NewInlineAssessmentWorkflows(svc).RecordAssessment(context.Background(), cratetypes.CreateAssessmentInput{
		BookingRef:   "BK-1",
		Measurements: domain.Measurements{LengthA: 60, ElbowB: 30, WidthC: 35, HeightD: 55},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), proj.Entity.ID)

	_, err = (*InlineAssessmentWorkflows)(nil).RecordAssessment(context.Background(), cratetypes.CreateAssessmentInput{})
	require.Error(t, err)
}

func TestTranslateWorkflowError(t *testing.T) {
	conflict := temporal.NewNonRetryableApplicationError("idempotency conflict", crateactivities.IdempotencyConflictErrorType, nil)
	require.ErrorIs(t, translateWorkflowError(conflict), ports.ErrIdempotencyConflict)

	invalid := temporal.NewNonRetryableApplicationError("bad", crateactivities.InvalidInputErrorType, nil)
	require.ErrorIs(t, translateWorkflowError(invalid), application.ErrInvalidInput)

	other := errors.New("boom")
	require.Equal(t, other, translateWorkflowError(other))
}
