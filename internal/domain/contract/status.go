package contract

// ContractStatus represents the lifecycle status of a contract
type ContractStatus string

const (
	StatusDraft            ContractStatus = "DRAFT"
	StatusInReview         ContractStatus = "IN_REVIEW"
	StatusPendingApproval  ContractStatus = "PENDING_APPROVAL"
	StatusSentForSignature ContractStatus = "SENT_FOR_SIGNATURE"
	StatusFullyExecuted    ContractStatus = "FULLY_EXECUTED"
	StatusActive           ContractStatus = "ACTIVE"
	StatusExpired          ContractStatus = "EXPIRED"
	StatusTerminated       ContractStatus = "TERMINATED"
	StatusSuperseded       ContractStatus = "SUPERSEDED"
	StatusArchived         ContractStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusPendingApproval, StatusSentForSignature,
		StatusFullyExecuted, StatusActive, StatusExpired, StatusTerminated,
		StatusSuperseded, StatusArchived:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that end the lifecycle
func (s ContractStatus) IsTerminal() bool {
	switch s {
	case StatusExpired, StatusTerminated, StatusSuperseded, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// A transition back to IN_REVIEW covers both version resubmission and the
// revert applied when an approval step is rejected.
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	if target == StatusArchived {
		return !s.IsTerminal()
	}
	switch s {
	case StatusDraft:
		return target == StatusInReview
	case StatusInReview:
		return target == StatusPendingApproval || target == StatusInReview
	case StatusPendingApproval:
		return target == StatusSentForSignature || target == StatusInReview
	case StatusSentForSignature:
		return target == StatusFullyExecuted
	case StatusFullyExecuted:
		return target == StatusActive
	case StatusActive:
		// IN_REVIEW reopens an active contract for an amendment round
		return target == StatusExpired || target == StatusTerminated ||
			target == StatusSuperseded || target == StatusInReview
	}
	return false
}

// TransitionAction is the action vocabulary of the atomic transition operation.
// Every ContractStatus value is an action; APPROVE_STEP and REJECT_STEP act on
// a single approval step and may advance the contract as a side effect.
type TransitionAction string

const (
	ActionApproveStep TransitionAction = "APPROVE_STEP"
	ActionRejectStep  TransitionAction = "REJECT_STEP"
)

// ActionForStatus returns the transition action that targets the given status
func ActionForStatus(s ContractStatus) TransitionAction {
	return TransitionAction(s)
}

// TargetStatus returns the status this action targets, or false for the
// step-level pseudo-actions
func (a TransitionAction) TargetStatus() (ContractStatus, bool) {
	if a == ActionApproveStep || a == ActionRejectStep {
		return "", false
	}
	s := ContractStatus(a)
	if !s.IsValid() {
		return "", false
	}
	return s, true
}

// IsValid checks if the action is part of the transition vocabulary
func (a TransitionAction) IsValid() bool {
	if a == ActionApproveStep || a == ActionRejectStep {
		return true
	}
	_, ok := a.TargetStatus()
	return ok
}

// SigningStatus tracks counterparty signature progress once a contract has
// been sent for signature
type SigningStatus string

const (
	SigningAwaitingInternal     SigningStatus = "AWAITING_INTERNAL"
	SigningSentToCounterparty   SigningStatus = "SENT_TO_COUNTERPARTY"
	SigningViewedByCounterparty SigningStatus = "VIEWED_BY_COUNTERPARTY"
	SigningSignedByCounterparty SigningStatus = "SIGNED_BY_COUNTERPARTY"
)

var signingRank = map[SigningStatus]int{
	SigningAwaitingInternal:     0,
	SigningSentToCounterparty:   1,
	SigningViewedByCounterparty: 2,
	SigningSignedByCounterparty: 3,
}

// IsValid checks if the status is a valid SigningStatus
func (s SigningStatus) IsValid() bool {
	_, ok := signingRank[s]
	return ok
}

// String returns the string representation of SigningStatus
func (s SigningStatus) String() string {
	return string(s)
}

// CanAdvanceTo returns true when target is the same or a later signing stage.
// Signing progress is monotonic; writing the current stage again is an
// idempotent no-op, writing an earlier stage is rejected.
func (s SigningStatus) CanAdvanceTo(target SigningStatus) bool {
	from, okFrom := signingRank[s]
	to, okTo := signingRank[target]
	if !okFrom || !okTo {
		return false
	}
	return to >= from
}
