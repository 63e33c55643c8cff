package persistence

import (
	"context"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByContracts loads the allocations of many contracts in one query
func (r *GormAllocationRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.PropertyAllocation, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var allocations []contract.PropertyAllocation
	if err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("contract_id, created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// Save creates or updates an allocation
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *contract.PropertyAllocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ contract.AllocationRepository = (*GormAllocationRepository)(nil)
