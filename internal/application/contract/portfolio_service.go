package contract

import (
	"context"

	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PortfolioService is the read-side coordinator: it assembles the company
// portfolio, runs the expiry sweep over it and caches the merged result.
// It owns the portfolio cache; mutating services only invalidate it.
type PortfolioService struct {
	assembler *Assembler
	sweeper   *ExpirySweeper
	cache     *PortfolioCache
	logger    *zap.Logger
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(assembler *Assembler, sweeper *ExpirySweeper, cache *PortfolioCache, logger *zap.Logger) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		assembler: assembler,
		sweeper:   sweeper,
		cache:     cache,
		logger:    logger,
	}
}

// Cache exposes the portfolio cache for invalidation wiring
func (s *PortfolioService) Cache() *PortfolioCache {
	return s.cache
}

// LoadAggregates assembles every contract of the company as a full aggregate,
// expires the overdue ones and returns the merged, deterministic portfolio.
// A fresh cached portfolio is served without reassembling; the expiry sweep
// still runs on every load. Sweep failures are logged and retried on the
// next load, never surfaced.
func (s *PortfolioService) LoadAggregates(ctx context.Context, companyID, userID uuid.UUID) ([]ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}

	contracts, cached := s.cache.Get(companyID)
	if !cached {
		var err error
		contracts, err = s.assembler.Load(ctx, companyID, shared.Filter{})
		if err != nil {
			return nil, err
		}
	}

	result := s.sweeper.Sweep(ctx, companyID, contracts)
	if err := result.PartialFailure(); err != nil {
		s.logger.Warn("portfolio sweep partially failed",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
	}

	if !cached || len(result.Expired) > 0 {
		s.cache.Put(companyID, contracts)
	}

	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = ToContractResponse(&contracts[i])
	}
	return responses, nil
}
