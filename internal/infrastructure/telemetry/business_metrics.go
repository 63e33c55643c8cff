package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Attribute keys for contract metrics labeling
var (
	AttrCompanyID  = attribute.Key("company_id")
	AttrAction     = attribute.Key("action")
	AttrFromStatus = attribute.Key("from_status")
	AttrToStatus   = attribute.Key("to_status")
	AttrStatus     = attribute.Key("status")
	AttrMode       = attribute.Key("mode")
)

// MetricsError describes a metrics setup failure.
type MetricsError struct {
	Op  string
	Err string
}

// Error implements the error interface.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// BusinessMetrics tracks contract lifecycle activity: committed transitions,
// expiry sweeps, supersession cascade warnings and renewal decisions.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	transitionTotal      *Counter
	expiredTotal         *Counter
	cascadeWarningTotal  *Counter
	renewalDecisionTotal *Counter

	// Gauge metrics (point-in-time values)
	contractsByStatus *Gauge
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.transitionTotal, err = NewCounter(
		cfg.Meter,
		"clm_contract_transition_total",
		"Total number of committed contract lifecycle transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	bm.expiredTotal, err = NewCounter(
		cfg.Meter,
		"clm_contract_expired_total",
		"Total number of contracts moved to EXPIRED by the sweeper",
		"{contracts}",
	)
	if err != nil {
		return nil, err
	}

	bm.cascadeWarningTotal, err = NewCounter(
		cfg.Meter,
		"clm_supersession_cascade_warning_total",
		"Total number of supersession cascades that failed after the successor committed",
		"{warnings}",
	)
	if err != nil {
		return nil, err
	}

	bm.renewalDecisionTotal, err = NewCounter(
		cfg.Meter,
		"clm_renewal_decision_total",
		"Total number of renewal request decisions",
		"{decisions}",
	)
	if err != nil {
		return nil, err
	}

	bm.contractsByStatus, err = NewGauge(
		cfg.Meter,
		"clm_contracts_by_status",
		"Current number of contracts per lifecycle status",
		"{contracts}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordTransition records a committed lifecycle transition.
func (bm *BusinessMetrics) RecordTransition(ctx context.Context, companyID uuid.UUID, action, fromStatus, toStatus string) {
	bm.transitionTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrAction.String(action),
		AttrFromStatus.String(fromStatus),
		AttrToStatus.String(toStatus),
	)
}

// RecordExpired records contracts expired by one sweep.
func (bm *BusinessMetrics) RecordExpired(ctx context.Context, companyID uuid.UUID, count int64) {
	if count == 0 {
		return
	}
	bm.expiredTotal.Add(ctx, count,
		AttrCompanyID.String(companyID.String()),
	)
}

// RecordCascadeWarning records a supersession cascade that rolled back.
func (bm *BusinessMetrics) RecordCascadeWarning(ctx context.Context, companyID uuid.UUID) {
	bm.cascadeWarningTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
	)
}

// RecordRenewalDecision records a renewal request decision by mode.
func (bm *BusinessMetrics) RecordRenewalDecision(ctx context.Context, companyID uuid.UUID, mode string) {
	bm.renewalDecisionTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrMode.String(mode),
	)
}

// RecordStatusCount records the current contract count for one status.
// Called from the sweep loop so the gauge tracks portfolio composition.
func (bm *BusinessMetrics) RecordStatusCount(ctx context.Context, companyID uuid.UUID, status string, count int64) {
	bm.contractsByStatus.Record(ctx, count,
		AttrCompanyID.String(companyID.String()),
		AttrStatus.String(status),
	)
}
