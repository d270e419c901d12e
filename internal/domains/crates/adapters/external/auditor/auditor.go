package auditor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-crate-sizer/internal/clients/http/crateaudit"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

// Auditor implements the advisory audit port over the crate audit HTTP API.
type Auditor struct {
	client *crateaudit.Client
}

// New wires an audit HTTP client into the auditor port.
func New(client *crateaudit.Client) *Auditor {
	return &Auditor{client: client}
}

// Audit asks the remote auditor to review the recommendation. Transport failures are reported as
// ErrAuditUnavailable so callers can treat them as best effort.
func (a *Auditor) Audit(ctx context.Context, req ports.AuditRequest) (*domain.AuditFinding, error) {
	if a == nil || a.client == nil {
		return nil, ports.ErrAuditUnavailable
	}
	resp, err := a.client.Audit(ctx, ToPayload(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrAuditUnavailable, err)
	}
	finding := FromResponse(resp)
	if finding == nil {
		return nil, fmt.Errorf("%w: empty audit response", ports.ErrAuditUnavailable)
	}
	return finding, nil
}

// Noop is used when no audit endpoint is configured.
type Noop struct{}

func (Noop) Audit(context.Context, ports.AuditRequest) (*domain.AuditFinding, error) {
	return nil, ports.ErrAuditUnavailable
}

// IsUnavailable reports whether err means the auditor could not produce a verdict.
func IsUnavailable(err error) bool {
	return errors.Is(err, ports.ErrAuditUnavailable)
}

var (
	_ ports.Auditor = (*Auditor)(nil)
	_ ports.Auditor = Noop{}
)
