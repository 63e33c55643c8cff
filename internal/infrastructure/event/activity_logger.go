package event

import (
	"context"

	"github.com/contractflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogger is a wildcard handler that writes every published domain
// event to the structured log. It gives operators a flat activity feed
// without coupling any business handler to logging.
type ActivityLogger struct {
	logger *zap.Logger
}

// NewActivityLogger creates a new activity logger
func NewActivityLogger(logger *zap.Logger) *ActivityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLogger{logger: logger.Named("activity")}
}

// Handle logs the event
func (l *ActivityLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	l.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("company_id", event.CompanyID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice: the logger receives all events
func (l *ActivityLogger) EventTypes() []string {
	return nil
}

// Ensure ActivityLogger implements EventHandler
var _ shared.EventHandler = (*ActivityLogger)(nil)
