package party

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByIDForCompany finds a user by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*User, error)

	// FindAllForCompany loads every user of a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}

// CounterpartyRepository defines the interface for counterparty persistence
type CounterpartyRepository interface {
	// FindByIDForCompany finds a counterparty by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Counterparty, error)

	// FindAllForCompany loads every counterparty of a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]Counterparty, error)

	// Save creates or updates a counterparty
	Save(ctx context.Context, counterparty *Counterparty) error
}

// PropertyRepository defines the interface for property persistence
type PropertyRepository interface {
	// FindByIDForCompany finds a property by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Property, error)

	// FindAllForCompany loads every property of a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]Property, error)

	// Save creates or updates a property
	Save(ctx context.Context, property *Property) error
}
