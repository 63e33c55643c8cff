package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// Create persists a new contract together with its initial version and
// allocations in one transaction
func (r *GormContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for i := range c.Versions {
			c.Versions[i].ContractID = c.ID
			if err := tx.Create(&c.Versions[i]).Error; err != nil {
				return err
			}
		}
		for i := range c.Allocations {
			c.Allocations[i].ContractID = c.ID
			if err := tx.Create(&c.Allocations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var c contract.Contract
	if err := r.db.WithContext(ctx).
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDForCompany finds a contract by ID within a company
func (r *GormContractRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*contract.Contract, error) {
	var c contract.Contract
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllForCompany finds all contracts for a company with filtering
func (r *GormContractRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	var contracts []contract.Contract
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&contract.Contract{}).Where("company_id = ?", companyID),
		filter,
	)

	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// FindByParent finds the renewal successors of a contract
func (r *GormContractRepository) FindByParent(ctx context.Context, companyID, parentID uuid.UUID) ([]contract.Contract, error) {
	var contracts []contract.Contract
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND parent_contract_id = ?", companyID, parentID).
		Order("created_at ASC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// Save creates or updates a contract row
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&contract.Contract{}).
			Where("id = ?", c.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != c.Version {
			return shared.ErrConcurrencyConflict
		}

		c.Version++
		c.UpdatedAt = time.Now()

		result := tx.Model(&contract.Contract{}).
			Where("id = ? AND version = ?", c.ID, currentVersion).
			Updates(map[string]interface{}{
				"title":               c.Title,
				"type":                c.Type,
				"status":              c.Status,
				"risk_level":          c.RiskLevel,
				"effective_date":      c.EffectiveDate,
				"start_date":          c.StartDate,
				"end_date":            c.EndDate,
				"value":               c.Value,
				"billing_frequency":   c.BillingFrequency,
				"seasonal_months":     c.SeasonalMonths,
				"allocation_type":     c.AllocationType,
				"owner_id":            c.OwnerID,
				"counterparty_id":     c.CounterpartyID,
				"property_id":         c.PropertyID,
				"auto_renew":          c.AutoRenew,
				"notice_period_days":  c.NoticePeriodDays,
				"renewal_term_months": c.RenewalTermMonths,
				"uplift_percent":      c.UpliftPercent,
				"termination_reason":  c.TerminationReason,
				"version":             c.Version,
				"updated_at":          c.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// CountForCompany counts contracts for a company with optional filters
func (r *GormContractRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&contract.Contract{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts contracts by status for a company
func (r *GormContractRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status contract.ContractStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&contract.Contract{}).
		Where("company_id = ? AND status = ?", companyID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CompanyIDsWithStatus returns the distinct companies that hold at least
// one contract in the given status
func (r *GormContractRepository) CompanyIDsWithStatus(ctx context.Context, status contract.ContractStatus) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&contract.Contract{}).
		Where("status = ?", status).
		Distinct("company_id").
		Pluck("company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// applyFilter applies filter options to the query
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		// Default ordering
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ?", searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "type":
			query = query.Where("type = ?", value)
		case "risk_level":
			query = query.Where("risk_level = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "counterparty_id":
			query = query.Where("counterparty_id = ?", value)
		case "property_id":
			query = query.Where("property_id = ?", value)
		case "parent_contract_id":
			query = query.Where("parent_contract_id = ?", value)
		case "auto_renew":
			if b, ok := value.(bool); ok {
				query = query.Where("auto_renew = ?", b)
			}
		case "end_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("end_date IS NOT NULL AND end_date <= ?", t)
			}
		case "end_after":
			if t, ok := value.(time.Time); ok {
				query = query.Where("end_date IS NOT NULL AND end_date >= ?", t)
			}
		case "min_value":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("value >= ?", d)
			}
		case "max_value":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("value <= ?", d)
			}
		}
	}

	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ contract.ContractRepository = (*GormContractRepository)(nil)
