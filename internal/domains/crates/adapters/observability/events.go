package observability

import (
	"context"
	"log/slog"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

// EventLogger publishes domain events as structured log records.
type EventLogger struct {
	logger *slog.Logger
}

func NewEventLogger(logger *slog.Logger) *EventLogger {
	if logger == nil {
		logger = defaultLogger()
	}
	return &EventLogger{logger: logger}
}

func (p *EventLogger) Publish(ctx context.Context, event domain.Event) {
	if event == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("event", event.EventName()),
		slog.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case domain.AssessmentRecorded:
		attrs = append(attrs,
			slog.Int64("assessment.id", e.AssessmentID),
			slog.String("booking.ref", e.BookingRef),
			slog.String("crate.type", string(e.CrateType)),
			slog.String("crate.id", e.CrateID),
		)
	case domain.AssessmentAudited:
		attrs = append(attrs,
			slog.Int64("assessment.id", e.AssessmentID),
			slog.Int("audit.safety_score", e.SafetyScore),
			slog.String("audit.verdict", e.Verdict),
		)
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "domain event", attrs...)
}

var _ ports.EventPublisher = (*EventLogger)(nil)
