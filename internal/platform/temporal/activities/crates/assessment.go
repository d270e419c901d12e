package crates

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	cratesapp "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	cratesports "github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

const (
	// RecordAssessmentActivityName persists a crate assessment.
	RecordAssessmentActivityName = "crates.activities.RecordAssessment"
	// AuditAssessmentActivityName attaches an advisory audit to a stored assessment.
	AuditAssessmentActivityName = "crates.activities.AuditAssessment"

	// Application error types for failures that retries cannot fix.
	InvalidInputErrorType        = "InvalidCrateInput"
	IdempotencyConflictErrorType = "IdempotencyConflict"
	CatalogMissingErrorType      = "CatalogMissing"
	NotFoundErrorType            = "AssessmentNotFound"
)

// Activities groups activities that operate on the crates bounded context.
type Activities struct {
	service cratesports.Service
}

// NewActivities wires the crates service into the Temporal activities bundle.
func NewActivities(service cratesports.Service) *Activities {
	return &Activities{service: service}
}

// RecordAssessment stores a new assessment and returns its projection. Validation failures are not retried.
func (a *Activities) RecordAssessment(ctx context.Context, input cratestypes.CreateAssessmentInput) (*cratestypes.AssessmentProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("record assessment activity not initialized", "bookingRef", input.BookingRef)
		return nil, errors.New("record assessment activity not initialized")
	}
	logger.Info("RecordAssessment activity started", "bookingRef", input.BookingRef)
	projection, err := a.service.CreateAssessment(ctx, input)
	if err != nil {
		logger.Error("RecordAssessment activity failed", "bookingRef", input.BookingRef, "error", err)
		if errType := permanentErrorType(err); errType != "" {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), errType, err)
		}
		return nil, err
	}
	if projection != nil && projection.Entity != nil {
		logger.Info("RecordAssessment activity completed", "assessmentId", projection.Entity.ID)
	}
	return projection, nil
}

// AuditAssessment runs the advisory audit. A missing auditor is not an error.
func (a *Activities) AuditAssessment(ctx context.Context, input cratestypes.AssessmentIdentifier) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("audit assessment activity not initialized", "assessmentId", input.ID)
		return errors.New("audit assessment activity not initialized")
	}

	var hb auditHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("AuditAssessment already completed in prior attempt; skipping", "assessmentId", input.ID)
		return nil
	}

	logger.Info("AuditAssessment activity started", "assessmentId", input.ID)
	if _, err := a.service.AuditAssessment(ctx, input); err != nil {
		if errors.Is(err, cratesports.ErrAuditUnavailable) && isUnconfigured(err) {
			logger.Info("crate auditor not configured; skipping", "assessmentId", input.ID)
			return nil
		}
		logger.Error("AuditAssessment activity failed", "assessmentId", input.ID, "error", err)
		if errors.Is(err, cratesports.ErrNotFound) {
			return temporal.NewNonRetryableApplicationError(err.Error(), NotFoundErrorType, err)
		}
		return err
	}
	activity.RecordHeartbeat(ctx, auditHeartbeat{Completed: true})
	logger.Info("AuditAssessment activity completed", "assessmentId", input.ID)
	return nil
}

type auditHeartbeat struct {
	Completed bool
}

func permanentErrorType(err error) string {
	switch {
	case errors.Is(err, cratesapp.ErrInvalidInput):
		return InvalidInputErrorType
	case errors.Is(err, cratesports.ErrIdempotencyConflict):
		return IdempotencyConflictErrorType
	case errors.Is(err, cratesports.ErrCatalogNotFound):
		return CatalogMissingErrorType
	default:
		return ""
	}
}

// isUnconfigured distinguishes a bare ErrAuditUnavailable (no auditor wired) from a wrapped transport failure.
func isUnconfigured(err error) bool {
	return err == cratesports.ErrAuditUnavailable
}
