// Package party exposes the reference data behind contracts: the users
// who own and approve them, the counterparties they are signed with and
// the properties they are tied to.
package party

import (
	"context"
	"time"

	"github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateUserRequest represents a request to register a user reference
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"required,min=1,max=255"`
}

// CreateCounterpartyRequest represents a request to register a counterparty
type CreateCounterpartyRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=255"`
	Registration string `json:"registration" binding:"max=100"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=255"`
	ContactPhone string `json:"contact_phone" binding:"max=50"`
}

// CreatePropertyRequest represents a request to register a property
type CreatePropertyRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Address string `json:"address" binding:"max=500"`
	Code    string `json:"code" binding:"max=50"`
}

// UserResponse represents a user in responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CounterpartyResponse represents a counterparty in responses
type CounterpartyResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Registration string    `json:"registration,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PropertyResponse represents a property in responses
type PropertyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DirectoryService manages the party reference data of a company
type DirectoryService struct {
	userRepo         party.UserRepository
	counterpartyRepo party.CounterpartyRepository
	propertyRepo     party.PropertyRepository
	logger           *zap.Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(
	userRepo party.UserRepository,
	counterpartyRepo party.CounterpartyRepository,
	propertyRepo party.PropertyRepository,
	logger *zap.Logger,
) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		userRepo:         userRepo,
		counterpartyRepo: counterpartyRepo,
		propertyRepo:     propertyRepo,
		logger:           logger,
	}
}

// CreateUser registers a user reference
func (s *DirectoryService) CreateUser(ctx context.Context, companyID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	user, err := party.NewUser(companyID, req.Email, req.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("company_id", companyID.String()),
		zap.String("user_id", user.ID.String()))

	return toUserResponse(user), nil
}

// ListUsers loads every user of the company
func (s *DirectoryService) ListUsers(ctx context.Context, companyID uuid.UUID) ([]UserResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	users, err := s.userRepo.FindAllForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *toUserResponse(&users[i]))
	}
	return responses, nil
}

// GetUser loads one user of the company
func (s *DirectoryService) GetUser(ctx context.Context, companyID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForCompany(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// CreateCounterparty registers a counterparty
func (s *DirectoryService) CreateCounterparty(ctx context.Context, companyID uuid.UUID, req CreateCounterpartyRequest) (*CounterpartyResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	counterparty, err := party.NewCounterparty(companyID, req.Name)
	if err != nil {
		return nil, err
	}
	counterparty.Registration = req.Registration
	counterparty.ContactEmail = req.ContactEmail
	counterparty.ContactPhone = req.ContactPhone

	if err := s.counterpartyRepo.Save(ctx, counterparty); err != nil {
		return nil, err
	}

	s.logger.Info("counterparty registered",
		zap.String("company_id", companyID.String()),
		zap.String("counterparty_id", counterparty.ID.String()))

	return toCounterpartyResponse(counterparty), nil
}

// ListCounterparties loads every counterparty of the company
func (s *DirectoryService) ListCounterparties(ctx context.Context, companyID uuid.UUID) ([]CounterpartyResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	counterparties, err := s.counterpartyRepo.FindAllForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]CounterpartyResponse, 0, len(counterparties))
	for i := range counterparties {
		responses = append(responses, *toCounterpartyResponse(&counterparties[i]))
	}
	return responses, nil
}

// GetCounterparty loads one counterparty of the company
func (s *DirectoryService) GetCounterparty(ctx context.Context, companyID, counterpartyID uuid.UUID) (*CounterpartyResponse, error) {
	counterparty, err := s.counterpartyRepo.FindByIDForCompany(ctx, companyID, counterpartyID)
	if err != nil {
		return nil, err
	}
	return toCounterpartyResponse(counterparty), nil
}

// CreateProperty registers a property
func (s *DirectoryService) CreateProperty(ctx context.Context, companyID uuid.UUID, req CreatePropertyRequest) (*PropertyResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	property, err := party.NewProperty(companyID, req.Name, req.Address)
	if err != nil {
		return nil, err
	}
	property.Code = req.Code

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("property registered",
		zap.String("company_id", companyID.String()),
		zap.String("property_id", property.ID.String()))

	return toPropertyResponse(property), nil
}

// ListProperties loads every property of the company
func (s *DirectoryService) ListProperties(ctx context.Context, companyID uuid.UUID) ([]PropertyResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	properties, err := s.propertyRepo.FindAllForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]PropertyResponse, 0, len(properties))
	for i := range properties {
		responses = append(responses, *toPropertyResponse(&properties[i]))
	}
	return responses, nil
}

// GetProperty loads one property of the company
func (s *DirectoryService) GetProperty(ctx context.Context, companyID, propertyID uuid.UUID) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByIDForCompany(ctx, companyID, propertyID)
	if err != nil {
		return nil, err
	}
	return toPropertyResponse(property), nil
}

func toUserResponse(u *party.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func toCounterpartyResponse(cp *party.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		ID:           cp.ID,
		Name:         cp.Name,
		Registration: cp.Registration,
		ContactEmail: cp.ContactEmail,
		ContactPhone: cp.ContactPhone,
		CreatedAt:    cp.CreatedAt,
	}
}

func toPropertyResponse(p *party.Property) *PropertyResponse {
	return &PropertyResponse{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Code:      p.Code,
		CreatedAt: p.CreatedAt,
	}
}
