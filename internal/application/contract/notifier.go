package contract

import (
	"context"

	"github.com/google/uuid"
)

// Notification types emitted by the lifecycle and renewal services
const (
	NotifyContractTransitioned = "CONTRACT_TRANSITIONED"
	NotifyApprovalRequested    = "APPROVAL_REQUESTED"
	NotifyContractExpired      = "CONTRACT_EXPIRED"
	NotifyRenewalQueued        = "RENEWAL_QUEUED"
	NotifyRenewalDecided       = "RENEWAL_DECIDED"
)

// Notifier delivers best-effort user notifications. Implementations must
// never block the caller and must swallow delivery failures; a failed
// notification is logged by the implementation, not surfaced.
type Notifier interface {
	Emit(ctx context.Context, userID uuid.UUID, notifType, message, relatedType string, relatedID uuid.UUID)
}

// NopNotifier discards all notifications
type NopNotifier struct{}

// Emit implements Notifier
func (NopNotifier) Emit(ctx context.Context, userID uuid.UUID, notifType, message, relatedType string, relatedID uuid.UUID) {
}
