package party

import (
	"context"
	"testing"

	domainparty "github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*domainparty.User, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainparty.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]domainparty.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainparty.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domainparty.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockCounterpartyRepository struct {
	mock.Mock
}

func (m *MockCounterpartyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*domainparty.Counterparty, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainparty.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]domainparty.Counterparty, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainparty.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) Save(ctx context.Context, counterparty *domainparty.Counterparty) error {
	args := m.Called(ctx, counterparty)
	return args.Error(0)
}

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*domainparty.Property, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainparty.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]domainparty.Property, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainparty.Property), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, property *domainparty.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func newTestDirectoryService() (*DirectoryService, *MockUserRepository, *MockCounterpartyRepository, *MockPropertyRepository) {
	userRepo := new(MockUserRepository)
	counterpartyRepo := new(MockCounterpartyRepository)
	propertyRepo := new(MockPropertyRepository)
	svc := NewDirectoryService(userRepo, counterpartyRepo, propertyRepo, zap.NewNop())
	return svc, userRepo, counterpartyRepo, propertyRepo
}

func TestDirectoryService_CreateUser(t *testing.T) {
	svc, userRepo, _, _ := newTestDirectoryService()
	companyID := uuid.New()

	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*party.User")).Return(nil)

	resp, err := svc.CreateUser(context.Background(), companyID, CreateUserRequest{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, "Alice Smith", resp.FullName)
	assert.True(t, resp.Active)
	userRepo.AssertExpectations(t)
}

func TestDirectoryService_CreateUser_MissingEmail(t *testing.T) {
	svc, _, _, _ := newTestDirectoryService()

	_, err := svc.CreateUser(context.Background(), uuid.New(), CreateUserRequest{FullName: "Alice"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_EMAIL", domainErr.Code)
}

func TestDirectoryService_CreateUser_MissingCompany(t *testing.T) {
	svc, _, _, _ := newTestDirectoryService()

	_, err := svc.CreateUser(context.Background(), uuid.Nil, CreateUserRequest{
		Email:    "alice@example.com",
		FullName: "Alice",
	})

	assert.ErrorIs(t, err, shared.ErrMissingContext)
}

func TestDirectoryService_ListUsers(t *testing.T) {
	svc, userRepo, _, _ := newTestDirectoryService()
	companyID := uuid.New()

	u1, err := domainparty.NewUser(companyID, "a@example.com", "Alice")
	require.NoError(t, err)
	u2, err := domainparty.NewUser(companyID, "b@example.com", "Bob")
	require.NoError(t, err)

	userRepo.On("FindAllForCompany", mock.Anything, companyID).Return([]domainparty.User{*u1, *u2}, nil)

	users, err := svc.ListUsers(context.Background(), companyID)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].FullName)
}

func TestDirectoryService_CreateCounterparty(t *testing.T) {
	svc, _, counterpartyRepo, _ := newTestDirectoryService()
	companyID := uuid.New()

	counterpartyRepo.On("Save", mock.Anything, mock.AnythingOfType("*party.Counterparty")).Return(nil)

	resp, err := svc.CreateCounterparty(context.Background(), companyID, CreateCounterpartyRequest{
		Name:         "Acme Facilities Ltd",
		Registration: "HRB 12345",
		ContactEmail: "legal@acme.example",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Facilities Ltd", resp.Name)
	assert.Equal(t, "HRB 12345", resp.Registration)
	counterpartyRepo.AssertExpectations(t)
}

func TestDirectoryService_GetProperty_NotFound(t *testing.T) {
	svc, _, _, propertyRepo := newTestDirectoryService()
	companyID := uuid.New()
	propertyID := uuid.New()

	propertyRepo.On("FindByIDForCompany", mock.Anything, companyID, propertyID).Return(nil, shared.ErrNotFound)

	_, err := svc.GetProperty(context.Background(), companyID, propertyID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDirectoryService_CreateProperty(t *testing.T) {
	svc, _, _, propertyRepo := newTestDirectoryService()
	companyID := uuid.New()

	propertyRepo.On("Save", mock.Anything, mock.AnythingOfType("*party.Property")).Return(nil)

	resp, err := svc.CreateProperty(context.Background(), companyID, CreatePropertyRequest{
		Name:    "North Campus",
		Address: "1 Main St",
		Code:    "NC-01",
	})

	require.NoError(t, err)
	assert.Equal(t, "North Campus", resp.Name)
	assert.Equal(t, "NC-01", resp.Code)
}
