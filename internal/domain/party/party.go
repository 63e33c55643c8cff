package party

import (
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// User is a member of the organization who can own contracts,
// approve steps and drive renewal decisions.
type User struct {
	shared.BaseEntity
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Email     string    `gorm:"size:255;not null"`
	FullName  string    `gorm:"size:255;not null"`
	Active    bool      `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (User) TableName() string { return "users" }

// NewUser creates a new user reference
func NewUser(companyID uuid.UUID, email, fullName string) (*User, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		Email:      email,
		FullName:   fullName,
		Active:     true,
	}, nil
}

// Counterparty is the external party a contract is signed with.
type Counterparty struct {
	shared.BaseEntity
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"size:255;not null"`
	Registration string    `gorm:"size:100"`
	ContactEmail string    `gorm:"size:255"`
	ContactPhone string    `gorm:"size:50"`
}

// TableName returns the database table name
func (Counterparty) TableName() string { return "counterparties" }

// NewCounterparty creates a new counterparty
func NewCounterparty(companyID uuid.UUID, name string) (*Counterparty, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Counterparty name cannot be empty")
	}
	return &Counterparty{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		Name:       name,
	}, nil
}

// Property is a real-estate asset a contract (or allocation) can be tied to.
type Property struct {
	shared.BaseEntity
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"size:255;not null"`
	Address   string    `gorm:"size:500"`
	Code      string    `gorm:"size:50"`
}

// TableName returns the database table name
func (Property) TableName() string { return "properties" }

// NewProperty creates a new property
func NewProperty(companyID uuid.UUID, name, address string) (*Property, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	return &Property{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		Name:       name,
		Address:    address,
	}, nil
}
