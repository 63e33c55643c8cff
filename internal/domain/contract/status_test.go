package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  ContractStatus
		isValid bool
	}{
		{StatusDraft, true},
		{StatusInReview, true},
		{StatusPendingApproval, true},
		{StatusSentForSignature, true},
		{StatusFullyExecuted, true},
		{StatusActive, true},
		{StatusExpired, true},
		{StatusTerminated, true},
		{StatusSuperseded, true},
		{StatusArchived, true},
		{ContractStatus("INVALID"), false},
		{ContractStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestContractStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     ContractStatus
		to       ContractStatus
		canTrans bool
	}{
		// Forward path
		{StatusDraft, StatusInReview, true},
		{StatusInReview, StatusPendingApproval, true},
		{StatusPendingApproval, StatusSentForSignature, true},
		{StatusSentForSignature, StatusFullyExecuted, true},
		{StatusFullyExecuted, StatusActive, true},
		{StatusActive, StatusExpired, true},
		{StatusActive, StatusTerminated, true},
		{StatusActive, StatusSuperseded, true},
		// Review loop: resubmission and rejection revert
		{StatusInReview, StatusInReview, true},
		{StatusPendingApproval, StatusInReview, true},
		// Amendment rounds reopen an active contract
		{StatusActive, StatusInReview, true},
		// Archive from any non-terminal state
		{StatusDraft, StatusArchived, true},
		{StatusInReview, StatusArchived, true},
		{StatusPendingApproval, StatusArchived, true},
		{StatusSentForSignature, StatusArchived, true},
		{StatusFullyExecuted, StatusArchived, true},
		{StatusActive, StatusArchived, true},
		// Terminal states cannot be archived
		{StatusExpired, StatusArchived, false},
		{StatusTerminated, StatusArchived, false},
		{StatusSuperseded, StatusArchived, false},
		{StatusArchived, StatusArchived, false},
		// No skipping stages
		{StatusDraft, StatusPendingApproval, false},
		{StatusDraft, StatusActive, false},
		{StatusInReview, StatusSentForSignature, false},
		{StatusPendingApproval, StatusFullyExecuted, false},
		{StatusSentForSignature, StatusActive, false},
		{StatusFullyExecuted, StatusExpired, false},
		// No backwards motion outside the review loop
		{StatusSentForSignature, StatusInReview, false},
		{StatusActive, StatusFullyExecuted, false},
		{StatusFullyExecuted, StatusSentForSignature, false},
		// Terminal states have no outgoing edges
		{StatusExpired, StatusActive, false},
		{StatusTerminated, StatusActive, false},
		{StatusSuperseded, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestContractStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.True(t, StatusTerminated.IsTerminal())
	assert.True(t, StatusSuperseded.IsTerminal())
	assert.True(t, StatusArchived.IsTerminal())
}

func TestTransitionAction(t *testing.T) {
	t.Run("status actions target their status", func(t *testing.T) {
		target, ok := TransitionAction("ACTIVE").TargetStatus()
		assert.True(t, ok)
		assert.Equal(t, StatusActive, target)
	})

	t.Run("step actions have no target status", func(t *testing.T) {
		_, ok := ActionApproveStep.TargetStatus()
		assert.False(t, ok)
		_, ok = ActionRejectStep.TargetStatus()
		assert.False(t, ok)
	})

	t.Run("validity", func(t *testing.T) {
		assert.True(t, ActionApproveStep.IsValid())
		assert.True(t, ActionRejectStep.IsValid())
		assert.True(t, TransitionAction("EXPIRED").IsValid())
		assert.False(t, TransitionAction("DESTROY").IsValid())
	})
}

func TestSigningStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from SigningStatus
		to   SigningStatus
		ok   bool
	}{
		{SigningAwaitingInternal, SigningSentToCounterparty, true},
		{SigningAwaitingInternal, SigningSignedByCounterparty, true},
		{SigningSentToCounterparty, SigningViewedByCounterparty, true},
		{SigningViewedByCounterparty, SigningSignedByCounterparty, true},
		// Idempotent same-state writes
		{SigningSentToCounterparty, SigningSentToCounterparty, true},
		{SigningSignedByCounterparty, SigningSignedByCounterparty, true},
		// Backward writes are rejected
		{SigningSentToCounterparty, SigningAwaitingInternal, false},
		{SigningViewedByCounterparty, SigningSentToCounterparty, false},
		{SigningSignedByCounterparty, SigningViewedByCounterparty, false},
		// Unknown values
		{SigningAwaitingInternal, SigningStatus("BOGUS"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanAdvanceTo(tt.to))
		})
	}
}
