package persistence

import (
	"context"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalStepRepository implements ApprovalStepRepository using GORM
type GormApprovalStepRepository struct {
	db *gorm.DB
}

// NewGormApprovalStepRepository creates a new GormApprovalStepRepository
func NewGormApprovalStepRepository(db *gorm.DB) *GormApprovalStepRepository {
	return &GormApprovalStepRepository{db: db}
}

// FindByContracts loads the steps of many contracts in one query
func (r *GormApprovalStepRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.ApprovalStep, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var steps []contract.ApprovalStep
	if err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("contract_id, created_at ASC").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// ReplaceForContract discards a contract's steps and inserts the new set
func (r *GormApprovalStepRepository) ReplaceForContract(ctx context.Context, contractID uuid.UUID, steps []contract.ApprovalStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contractID).
			Delete(&contract.ApprovalStep{}).Error; err != nil {
			return err
		}
		for i := range steps {
			steps[i].ContractID = contractID
			if err := tx.Create(&steps[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Save updates a single step
func (r *GormApprovalStepRepository) Save(ctx context.Context, step *contract.ApprovalStep) error {
	return r.db.WithContext(ctx).Save(step).Error
}

// Ensure GormApprovalStepRepository implements ApprovalStepRepository
var _ contract.ApprovalStepRepository = (*GormApprovalStepRepository)(nil)
