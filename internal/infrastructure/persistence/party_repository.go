package persistence

import (
	"context"
	"errors"

	"github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByIDForCompany finds a user by ID within a company
func (r *GormUserRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.User, error) {
	var user party.User
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAllForCompany loads every user of a company
func (r *GormUserRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]party.User, error) {
	var users []party.User
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("full_name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *party.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// GormCounterpartyRepository implements CounterpartyRepository using GORM
type GormCounterpartyRepository struct {
	db *gorm.DB
}

// NewGormCounterpartyRepository creates a new GormCounterpartyRepository
func NewGormCounterpartyRepository(db *gorm.DB) *GormCounterpartyRepository {
	return &GormCounterpartyRepository{db: db}
}

// FindByIDForCompany finds a counterparty by ID within a company
func (r *GormCounterpartyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.Counterparty, error) {
	var counterparty party.Counterparty
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&counterparty).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &counterparty, nil
}

// FindAllForCompany loads every counterparty of a company
func (r *GormCounterpartyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]party.Counterparty, error) {
	var counterparties []party.Counterparty
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&counterparties).Error; err != nil {
		return nil, err
	}
	return counterparties, nil
}

// Save creates or updates a counterparty
func (r *GormCounterpartyRepository) Save(ctx context.Context, counterparty *party.Counterparty) error {
	return r.db.WithContext(ctx).Save(counterparty).Error
}

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByIDForCompany finds a property by ID within a company
func (r *GormPropertyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.Property, error) {
	var property party.Property
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// FindAllForCompany loads every property of a company
func (r *GormPropertyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]party.Property, error) {
	var properties []party.Property
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *party.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// Interface satisfaction checks
var (
	_ party.UserRepository         = (*GormUserRepository)(nil)
	_ party.CounterpartyRepository = (*GormCounterpartyRepository)(nil)
	_ party.PropertyRepository     = (*GormPropertyRepository)(nil)
)
