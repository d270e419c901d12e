package domain

import (
	"errors"
	"strings"
	"time"
)

// AuditFinding is the advisory verdict returned by the external crate auditor.
type AuditFinding struct {
	SafetyScore int
	Verdict     string
	Issues      []string
	AuditedAt   time.Time
}

// Assessment attaches a crate recommendation to a booking reference.
type Assessment struct {
	ID             int64
	BookingRef     string
	Breed          string
	WeightKg       float64
	Destination    string
	Measurements   Measurements
	Recommendation Recommendation
	Audit          *AuditFinding
}

var (
	ErrEmptyBookingRef = errors.New("booking reference is required")
	ErrInvalidWeight   = errors.New("weight must be greater or equal to zero")
	ErrInvalidScore    = errors.New("safety score must be between 0 and 100")
)

// NewAssessment sizes the crate strictly and builds the aggregate.
func NewAssessment(bookingRef string, m Measurements, catalog *Catalog, opts ...SizeOption) (*Assessment, error) {
	if strings.TrimSpace(bookingRef) == "" {
		return nil, ErrEmptyBookingRef
	}
	rec, err := SizeStrict(m, catalog, opts...)
	if err != nil {
		return nil, err
	}
	return &Assessment{
		BookingRef:     strings.TrimSpace(bookingRef),
		Measurements:   m,
		Recommendation: *rec,
	}, nil
}

// DescribePet stores the optional context used by the advisory audit.
func (a *Assessment) DescribePet(breed string, weightKg float64, destination string) error {
	if weightKg < 0 {
		return ErrInvalidWeight
	}
	a.Breed = strings.TrimSpace(breed)
	a.WeightKg = weightKg
	a.Destination = strings.TrimSpace(destination)
	return nil
}

// AttachAudit records the advisory audit. The recommendation is left untouched.
func (a *Assessment) AttachAudit(finding AuditFinding) error {
	if finding.SafetyScore < 0 || finding.SafetyScore > 100 {
		return ErrInvalidScore
	}
	clone := finding
	clone.Issues = append([]string(nil), finding.Issues...)
	a.Audit = &clone
	return nil
}
