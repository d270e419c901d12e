package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
)

// ErrAuditUnavailable is returned when no advisory auditor is configured or reachable.
var ErrAuditUnavailable = errors.New("crate audit unavailable")

// AuditRequest is the context handed to the advisory auditor.
type AuditRequest struct {
	Measurements   domain.Measurements
	Recommendation domain.Recommendation
	Breed          string
	WeightKg       float64
	Destination    string
}

// Auditor re-assesses crate suitability. Its verdict is advisory and never
// alters the computed recommendation.
type Auditor interface {
	Audit(ctx context.Context, req AuditRequest) (*domain.AuditFinding, error)
}

// EventPublisher receives domain events raised by the application service.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
