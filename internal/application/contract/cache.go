package contract

import (
	"sync"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
)

// CacheInvalidator drops the cached portfolio of a company after a mutation
type CacheInvalidator interface {
	Invalidate(companyID uuid.UUID)
}

// PortfolioCache holds the last assembled portfolio per company. It is owned
// by the portfolio service; mutating services only invalidate, never write.
type PortfolioCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]portfolioEntry
}

type portfolioEntry struct {
	contracts []contract.Contract
	loadedAt  time.Time
}

// NewPortfolioCache creates a portfolio cache with the given entry TTL.
// A non-positive TTL disables expiry.
func NewPortfolioCache(ttl time.Duration) *PortfolioCache {
	return &PortfolioCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]portfolioEntry),
	}
}

// Get returns the cached portfolio of a company when present and fresh
func (c *PortfolioCache) Get(companyID uuid.UUID) ([]contract.Contract, bool) {
	c.mu.RLock()
	entry, ok := c.entries[companyID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.loadedAt) > c.ttl {
		c.Invalidate(companyID)
		return nil, false
	}
	return entry.contracts, true
}

// Put stores the assembled portfolio of a company
func (c *PortfolioCache) Put(companyID uuid.UUID, contracts []contract.Contract) {
	c.mu.Lock()
	c.entries[companyID] = portfolioEntry{contracts: contracts, loadedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops the cached portfolio of a company
func (c *PortfolioCache) Invalidate(companyID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, companyID)
	c.mu.Unlock()
}
