package persistence

import (
	"context"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRepository implements AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// FindByContracts loads recent audit entries of many contracts, newest first,
// capped per contract
func (r *GormAuditRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID, limitPerContract int) ([]contract.AuditEntry, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var entries []contract.AuditEntry
	if err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	if limitPerContract <= 0 {
		return entries, nil
	}

	counts := make(map[uuid.UUID]int, len(contractIDs))
	capped := make([]contract.AuditEntry, 0, len(entries))
	for i := range entries {
		cid := entries[i].ContractID
		if counts[cid] >= limitPerContract {
			continue
		}
		counts[cid]++
		capped = append(capped, entries[i])
	}
	return capped, nil
}

// Save appends an audit entry
func (r *GormAuditRepository) Save(ctx context.Context, entry *contract.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Ensure GormAuditRepository implements AuditRepository
var _ contract.AuditRepository = (*GormAuditRepository)(nil)
