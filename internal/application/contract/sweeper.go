package contract

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SweepFailure records one contract whose expiry transition was rejected or
// errored during a sweep
type SweepFailure struct {
	ContractID uuid.UUID
	Err        error
}

// PartialSweepError aggregates the failures of one sweep. The succeeded
// transitions stay committed; failed contracts are retried on the next sweep.
type PartialSweepError struct {
	Failures []SweepFailure
}

// Error implements the error interface
func (e *PartialSweepError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.ContractID, f.Err)
	}
	return fmt.Sprintf("expiry sweep failed for %d contract(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

// SweepResult is the outcome of one expiry sweep
type SweepResult struct {
	Checked  int
	Expired  []uuid.UUID
	Failures []SweepFailure
}

// PartialFailure returns the aggregated sweep error, or nil when every
// overdue contract expired cleanly
func (r SweepResult) PartialFailure() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialSweepError{Failures: r.Failures}
}

// ExpirySweeper moves active contracts whose end date has passed into
// EXPIRED. Every transition goes through the transactional store, one
// concurrent call per overdue contract, so racing sweeps and user actions
// are arbitrated by the store rather than by the sweeper.
type ExpirySweeper struct {
	store    contract.TransitionStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewExpirySweeper creates an expiry sweeper
func NewExpirySweeper(store contract.TransitionStore, notifier Notifier, logger *zap.Logger) *ExpirySweeper {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Sweep expires every overdue contract in the given portfolio and merges the
// committed outcomes back into the slice in place. It never returns an error
// for individual rejections; those are collected in the result.
func (s *ExpirySweeper) Sweep(ctx context.Context, companyID uuid.UUID, contracts []contract.Contract) SweepResult {
	now := s.now()

	overdue := make([]int, 0)
	for i := range contracts {
		if contracts[i].IsOverdue(now) {
			overdue = append(overdue, i)
		}
	}
	result := SweepResult{Checked: len(contracts)}
	if len(overdue) == 0 {
		return result
	}

	type outcome struct {
		index int
		res   *contract.TransitionResult
		err   error
	}
	outcomes := make([]outcome, len(overdue))

	var wg sync.WaitGroup
	for slot, idx := range overdue {
		wg.Add(1)
		go func(slot, idx int) {
			defer wg.Done()
			res, err := s.store.Transition(ctx, companyID, contracts[idx].ID,
				contract.ActionForStatus(contract.StatusExpired), contract.Payload{})
			outcomes[slot] = outcome{index: idx, res: res, err: err}
		}(slot, idx)
	}
	wg.Wait()

	for _, o := range outcomes {
		c := &contracts[o.index]
		if o.err != nil {
			result.Failures = append(result.Failures, SweepFailure{ContractID: c.ID, Err: o.err})
			s.logger.Warn("expiry transition failed",
				zap.String("contract_id", c.ID.String()),
				zap.Error(o.err))
			continue
		}

		// Merge the committed state without a reload
		c.Status = o.res.Contract.Status
		c.ExpiredAt = o.res.Contract.ExpiredAt
		c.Version = o.res.Contract.Version
		c.UpdatedAt = o.res.Contract.UpdatedAt
		result.Expired = append(result.Expired, c.ID)

		s.notifier.Emit(ctx, c.OwnerID, NotifyContractExpired,
			fmt.Sprintf("Contract %q has expired", c.Title), "contract", c.ID)
	}

	if len(result.Failures) > 0 {
		s.logger.Warn("expiry sweep completed with failures",
			zap.String("company_id", companyID.String()),
			zap.Int("expired", len(result.Expired)),
			zap.Int("failed", len(result.Failures)))
	} else if len(result.Expired) > 0 {
		s.logger.Info("expiry sweep completed",
			zap.String("company_id", companyID.String()),
			zap.Int("expired", len(result.Expired)))
	}

	return result
}
