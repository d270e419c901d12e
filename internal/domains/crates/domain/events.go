package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AssessmentRecorded is raised when a crate assessment is persisted.
type AssessmentRecorded struct {
	BaseEvent
	AssessmentID int64
	BookingRef   string
	CrateType    CrateType
	CrateID      string
}

// EventName returns the event type identifier.
func (e AssessmentRecorded) EventName() string {
	return "crates.assessment.recorded"
}

// AssessmentAudited is raised when an advisory audit is attached.
type AssessmentAudited struct {
	BaseEvent
	AssessmentID int64
	SafetyScore  int
	Verdict      string
}

// EventName returns the event type identifier.
func (e AssessmentAudited) EventName() string {
	return "crates.assessment.audited"
}

// NewAssessmentRecorded builds the event for a persisted assessment.
func NewAssessmentRecorded(a *Assessment, at time.Time) AssessmentRecorded {
	event := AssessmentRecorded{
		BaseEvent:    BaseEvent{Timestamp: at},
		AssessmentID: a.ID,
		BookingRef:   a.BookingRef,
		CrateType:    a.Recommendation.CrateType,
	}
	if a.Recommendation.RecommendedCrate != nil {
		event.CrateID = a.Recommendation.RecommendedCrate.ID
	}
	return event
}
