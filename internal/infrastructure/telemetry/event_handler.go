package telemetry

import (
	"context"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
)

// MetricsEventHandler records business metrics from published domain events.
// It subscribes to the lifecycle events that carry metric-relevant payloads
// and stays out of the transactional path: a dropped metric never fails a
// transition.
type MetricsEventHandler struct {
	metrics *BusinessMetrics
}

// NewMetricsEventHandler creates a metrics event handler
func NewMetricsEventHandler(metrics *BusinessMetrics) *MetricsEventHandler {
	return &MetricsEventHandler{metrics: metrics}
}

// Handle records the metric matching the event type
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.metrics == nil {
		return nil
	}

	switch e := event.(type) {
	case *contract.ContractTransitionedEvent:
		action := contract.ActionForStatus(e.ToStatus)
		h.metrics.RecordTransition(ctx, e.CompanyID(), string(action), string(e.FromStatus), string(e.ToStatus))
	case *contract.CascadeRolledBackEvent:
		h.metrics.RecordCascadeWarning(ctx, e.CompanyID())
	case *contract.ContractExpiredEvent:
		h.metrics.RecordExpired(ctx, e.CompanyID(), 1)
	case *contract.RenewalDecidedEvent:
		h.metrics.RecordRenewalDecision(ctx, e.CompanyID(), string(e.Mode))
	}
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (h *MetricsEventHandler) EventTypes() []string {
	return []string{
		contract.EventTypeContractTransitioned,
		contract.EventTypeCascadeRolledBack,
		contract.EventTypeContractExpired,
		contract.EventTypeRenewalDecided,
	}
}

var _ shared.EventHandler = (*MetricsEventHandler)(nil)
