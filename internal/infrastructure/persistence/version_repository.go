package persistence

import (
	"context"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVersionRepository implements VersionRepository using GORM
type GormVersionRepository struct {
	db *gorm.DB
}

// NewGormVersionRepository creates a new GormVersionRepository
func NewGormVersionRepository(db *gorm.DB) *GormVersionRepository {
	return &GormVersionRepository{db: db}
}

// FindByContract loads all versions of one contract, ascending by number
func (r *GormVersionRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.ContractVersion, error) {
	var versions []contract.ContractVersion
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("version_number ASC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// FindByContracts loads the versions of many contracts in one query
func (r *GormVersionRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.ContractVersion, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var versions []contract.ContractVersion
	if err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("contract_id, version_number ASC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// FindCommentsByVersions loads the comments of many versions in one query
func (r *GormVersionRepository) FindCommentsByVersions(ctx context.Context, versionIDs []uuid.UUID) ([]contract.VersionComment, error) {
	if len(versionIDs) == 0 {
		return nil, nil
	}
	var comments []contract.VersionComment
	if err := r.db.WithContext(ctx).
		Where("version_id IN ?", versionIDs).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Save creates or updates a version
func (r *GormVersionRepository) Save(ctx context.Context, version *contract.ContractVersion) error {
	return r.db.WithContext(ctx).Save(version).Error
}

// SaveComment creates a comment on a version
func (r *GormVersionRepository) SaveComment(ctx context.Context, comment *contract.VersionComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Ensure GormVersionRepository implements VersionRepository
var _ contract.VersionRepository = (*GormVersionRepository)(nil)
