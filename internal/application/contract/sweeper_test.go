package contract

import (
	"context"
	"testing"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildContract(t *testing.T, companyID uuid.UUID, status contract.ContractStatus, endDate *time.Time) contract.Contract {
	t.Helper()
	c, err := contract.NewContract(companyID, contract.NewContractParams{
		Title:            "Maintenance Agreement",
		Type:             contract.TypeService,
		Value:            decimal.NewFromInt(1000),
		BillingFrequency: contract.BillingMonthly,
		OwnerID:          uuid.New(),
		CounterpartyID:   uuid.New(),
		InitialContent:   "initial terms",
	})
	require.NoError(t, err)
	c.Status = status
	c.EndDate = endDate
	c.ClearDomainEvents()
	return *c
}

func expiredCopy(c contract.Contract) *contract.TransitionResult {
	copied := c
	copied.Status = contract.StatusExpired
	now := time.Now()
	copied.ExpiredAt = &now
	copied.Version = c.Version + 1
	copied.UpdatedAt = now
	return &contract.TransitionResult{Contract: &copied}
}

func TestExpirySweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	today := testDate(2024, 7, 15)

	t.Run("expires only overdue active contracts", func(t *testing.T) {
		pastEnd := testDate(2024, 6, 30)
		futureEnd := testDate(2024, 12, 31)

		overdue := buildContract(t, companyID, contract.StatusActive, &pastEnd)
		current := buildContract(t, companyID, contract.StatusActive, &futureEnd)
		draft := buildContract(t, companyID, contract.StatusDraft, &pastEnd)
		contracts := []contract.Contract{overdue, current, draft}

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, companyID, overdue.ID,
			contract.ActionForStatus(contract.StatusExpired), mock.Anything).
			Return(expiredCopy(overdue), nil)

		notifier := &recordingNotifier{}
		sweeper := NewExpirySweeper(store, notifier, nil)
		sweeper.now = func() time.Time { return today }

		result := sweeper.Sweep(ctx, companyID, contracts)

		assert.Equal(t, 3, result.Checked)
		assert.Equal(t, []uuid.UUID{overdue.ID}, result.Expired)
		assert.Empty(t, result.Failures)
		assert.NoError(t, result.PartialFailure())

		// Committed outcome merged in place
		assert.Equal(t, contract.StatusExpired, contracts[0].Status)
		assert.NotNil(t, contracts[0].ExpiredAt)
		assert.Equal(t, overdue.Version+1, contracts[0].Version)
		// Untouched entries keep their state
		assert.Equal(t, contract.StatusActive, contracts[1].Status)
		assert.Equal(t, contract.StatusDraft, contracts[2].Status)

		emitted := notifier.byType(NotifyContractExpired)
		require.Len(t, emitted, 1)
		assert.Equal(t, overdue.OwnerID, emitted[0].UserID)

		store.AssertExpectations(t)
		store.AssertNumberOfCalls(t, "Transition", 1)

		// A second pass over the merged slice is a no-op
		again := sweeper.Sweep(ctx, companyID, contracts)
		assert.Equal(t, 3, again.Checked)
		assert.Empty(t, again.Expired)
		assert.Empty(t, again.Failures)
		store.AssertNumberOfCalls(t, "Transition", 1)
		assert.Len(t, notifier.byType(NotifyContractExpired), 1)
	})

	t.Run("collects per-contract failures without blocking the rest", func(t *testing.T) {
		endA := testDate(2024, 5, 1)
		endB := testDate(2024, 6, 1)
		a := buildContract(t, companyID, contract.StatusActive, &endA)
		b := buildContract(t, companyID, contract.StatusActive, &endB)
		contracts := []contract.Contract{a, b}

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, companyID, a.ID, mock.Anything, mock.Anything).
			Return(nil, contract.NewTransitionError(a.ID, contract.ActionForStatus(contract.StatusExpired),
				"CONCURRENCY_CONFLICT", "contract was modified by another process"))
		store.On("Transition", mock.Anything, companyID, b.ID, mock.Anything, mock.Anything).
			Return(expiredCopy(b), nil)

		sweeper := NewExpirySweeper(store, nil, nil)
		sweeper.now = func() time.Time { return today }

		result := sweeper.Sweep(ctx, companyID, contracts)

		assert.Equal(t, []uuid.UUID{b.ID}, result.Expired)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, a.ID, result.Failures[0].ContractID)

		err := result.PartialFailure()
		require.Error(t, err)
		assert.Contains(t, err.Error(), a.ID.String())

		// The failed contract keeps its stored state for the next sweep
		assert.Equal(t, contract.StatusActive, contracts[0].Status)
		assert.Equal(t, contract.StatusExpired, contracts[1].Status)
	})

	t.Run("end date on the reference day is not overdue", func(t *testing.T) {
		end := testDate(2024, 7, 15)
		c := buildContract(t, companyID, contract.StatusActive, &end)

		store := new(MockTransitionStore)
		sweeper := NewExpirySweeper(store, nil, nil)
		sweeper.now = func() time.Time { return today.Add(23 * time.Hour) }

		result := sweeper.Sweep(ctx, companyID, []contract.Contract{c})

		assert.Empty(t, result.Expired)
		assert.Empty(t, result.Failures)
		store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("contracts without an end date are skipped", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusActive, nil)

		store := new(MockTransitionStore)
		sweeper := NewExpirySweeper(store, nil, nil)
		sweeper.now = func() time.Time { return today }

		result := sweeper.Sweep(ctx, companyID, []contract.Contract{c})
		assert.Empty(t, result.Expired)
		store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
