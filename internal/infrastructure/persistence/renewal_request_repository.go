package persistence

import (
	"context"
	"errors"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRenewalRequestRepository implements RenewalRequestRepository using GORM
type GormRenewalRequestRepository struct {
	db *gorm.DB
}

// NewGormRenewalRequestRepository creates a new GormRenewalRequestRepository
func NewGormRenewalRequestRepository(db *gorm.DB) *GormRenewalRequestRepository {
	return &GormRenewalRequestRepository{db: db}
}

// FindByID finds a renewal request by its ID
func (r *GormRenewalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.RenewalRequest, error) {
	var request contract.RenewalRequest
	if err := r.db.WithContext(ctx).
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindOpenByContract returns the open request of a contract, or nil
func (r *GormRenewalRequestRepository) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*contract.RenewalRequest, error) {
	var request contract.RenewalRequest
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND status IN ?", contractID,
			[]string{string(contract.RenewalQueued), string(contract.RenewalInProgress)}).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindRecentByContracts loads, per contract, the most recent request
// (preferring open ones) for many contracts in one query
func (r *GormRenewalRequestRepository) FindRecentByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.RenewalRequest, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var requests []contract.RenewalRequest
	if err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}

	// Reduce to one request per contract: the open one when present,
	// otherwise the most recent
	picked := make(map[uuid.UUID]int, len(contractIDs))
	result := make([]contract.RenewalRequest, 0, len(contractIDs))
	for i := range requests {
		cid := requests[i].ContractID
		if idx, ok := picked[cid]; ok {
			if !result[idx].Status.IsOpen() && requests[i].Status.IsOpen() {
				result[idx] = requests[i]
			}
			continue
		}
		picked[cid] = len(result)
		result = append(result, requests[i])
	}
	return result, nil
}

// Save creates or updates a renewal request
func (r *GormRenewalRequestRepository) Save(ctx context.Context, request *contract.RenewalRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// FindFeedbackByRequests loads feedback entries of many requests
func (r *GormRenewalRequestRepository) FindFeedbackByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]contract.RenewalFeedback, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var feedback []contract.RenewalFeedback
	if err := r.db.WithContext(ctx).
		Where("renewal_request_id IN ?", requestIDs).
		Order("created_at ASC").
		Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// SaveFeedback creates a feedback entry
func (r *GormRenewalRequestRepository) SaveFeedback(ctx context.Context, feedback *contract.RenewalFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// Ensure GormRenewalRequestRepository implements RenewalRequestRepository
var _ contract.RenewalRequestRepository = (*GormRenewalRequestRepository)(nil)
