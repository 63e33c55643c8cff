package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeadlines(t *testing.T) {
	t.Run("notice deadline is end date minus notice period", func(t *testing.T) {
		notice, internal := ComputeDeadlines(date(2024, time.December, 31), 60)
		assert.Equal(t, date(2024, time.November, 1), notice)
		assert.Equal(t, date(2024, time.October, 2), internal)
	})

	t.Run("zero notice period", func(t *testing.T) {
		notice, internal := ComputeDeadlines(date(2025, time.June, 30), 0)
		assert.Equal(t, date(2025, time.June, 30), notice)
		assert.Equal(t, date(2025, time.May, 31), internal)
	})
}

func TestNewRenewalRequest(t *testing.T) {
	t.Run("queued with computed deadlines", func(t *testing.T) {
		contractID := uuid.New()
		ownerID := uuid.New()
		r, err := NewRenewalRequest(contractID, ownerID, date(2024, time.December, 31), 60)
		require.NoError(t, err)

		assert.Equal(t, RenewalQueued, r.Status)
		assert.Nil(t, r.Mode)
		assert.Equal(t, contractID, r.ContractID)
		assert.Equal(t, ownerID, r.OwnerID)
		assert.Equal(t, date(2024, time.November, 1), r.NoticeDeadline)
		assert.Equal(t, date(2024, time.October, 2), r.InternalDecisionDeadline)
		assert.True(t, r.IsOpen())
	})

	t.Run("requires owner", func(t *testing.T) {
		_, err := NewRenewalRequest(uuid.New(), uuid.Nil, date(2024, time.December, 31), 60)
		require.Error(t, err)
	})
}

func TestRenewalRequest_Decide(t *testing.T) {
	newRequest := func(t *testing.T) *RenewalRequest {
		r, err := NewRenewalRequest(uuid.New(), uuid.New(), date(2025, time.December, 31), 30)
		require.NoError(t, err)
		return r
	}

	t.Run("amendment keeps the request open", func(t *testing.T) {
		r := newRequest(t)
		require.NoError(t, r.Decide(ModeAmendment, "redline clause 4"))
		assert.Equal(t, RenewalInProgress, r.Status)
		require.NotNil(t, r.Mode)
		assert.Equal(t, ModeAmendment, *r.Mode)
		assert.Equal(t, "redline clause 4", r.Notes)
	})

	t.Run("new contract keeps the request open", func(t *testing.T) {
		r := newRequest(t)
		require.NoError(t, r.Decide(ModeNewContract, ""))
		assert.Equal(t, RenewalInProgress, r.Status)
	})

	t.Run("terminate cancels the request", func(t *testing.T) {
		r := newRequest(t)
		require.NoError(t, r.Decide(ModeTerminate, "switching vendors"))
		assert.Equal(t, RenewalCancelled, r.Status)
		assert.False(t, r.IsOpen())
	})

	t.Run("renew as-is activates the request", func(t *testing.T) {
		r := newRequest(t)
		require.NoError(t, r.Decide(ModeRenewAsIs, ""))
		assert.Equal(t, RenewalActivated, r.Status)
	})

	t.Run("terminal request cannot be re-decided", func(t *testing.T) {
		r := newRequest(t)
		require.NoError(t, r.Decide(ModeTerminate, ""))
		err := r.Decide(ModeAmendment, "")
		require.Error(t, err)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		r := newRequest(t)
		require.Error(t, r.Decide(RenewalMode("MAYBE"), ""))
	})
}

func TestRenewalRequest_UpdateTerms(t *testing.T) {
	r, err := NewRenewalRequest(uuid.New(), uuid.New(), date(2025, time.December, 31), 30)
	require.NoError(t, err)

	term := 24
	notice := 90
	uplift := decimal.NewFromFloat(3.5)
	require.NoError(t, r.UpdateTerms(&term, &notice, &uplift))

	require.NotNil(t, r.RenewalTermMonths)
	assert.Equal(t, 24, *r.RenewalTermMonths)
	require.NotNil(t, r.NoticePeriodDays)
	assert.Equal(t, 90, *r.NoticePeriodDays)
	require.NotNil(t, r.UpliftPercent)
	assert.True(t, uplift.Equal(*r.UpliftPercent))
	// Updating terms never changes status
	assert.Equal(t, RenewalQueued, r.Status)

	t.Run("rejects non-positive term", func(t *testing.T) {
		bad := 0
		require.Error(t, r.UpdateTerms(&bad, nil, nil))
	})

	t.Run("rejects negative notice", func(t *testing.T) {
		bad := -1
		require.Error(t, r.UpdateTerms(nil, &bad, nil))
	})
}

func TestRenewalRequest_ResolveFallbacks(t *testing.T) {
	r, err := NewRenewalRequest(uuid.New(), uuid.New(), date(2025, time.December, 31), 30)
	require.NoError(t, err)

	// Contract defaults win while the request carries no terms of its own
	assert.Equal(t, 12, r.ResolveTerm(12))
	assert.Equal(t, 60, r.ResolveNoticeDays(60))
	assert.True(t, decimal.NewFromInt(5).Equal(r.ResolveUplift(decimal.NewFromInt(5))))

	term := 36
	uplift := decimal.NewFromInt(8)
	require.NoError(t, r.UpdateTerms(&term, nil, &uplift))

	assert.Equal(t, 36, r.ResolveTerm(12))
	assert.True(t, decimal.NewFromInt(8).Equal(r.ResolveUplift(decimal.NewFromInt(5))))
}

func TestRenewalRequest_Activate(t *testing.T) {
	r, err := NewRenewalRequest(uuid.New(), uuid.New(), date(2025, time.December, 31), 30)
	require.NoError(t, err)

	require.NoError(t, r.Decide(ModeNewContract, ""))
	require.NoError(t, r.Activate())
	assert.Equal(t, RenewalActivated, r.Status)

	t.Run("cancelled request cannot activate", func(t *testing.T) {
		r2, err := NewRenewalRequest(uuid.New(), uuid.New(), date(2025, time.December, 31), 30)
		require.NoError(t, err)
		require.NoError(t, r2.Decide(ModeTerminate, ""))
		require.Error(t, r2.Activate())
	})
}
