package contract

import (
	"context"
	"sync"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockContractRepository is a mock implementation of ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByParent(ctx context.Context, companyID, parentID uuid.UUID) ([]contract.Contract, error) {
	args := m.Called(ctx, companyID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status contract.ContractStatus) (int64, error) {
	args := m.Called(ctx, companyID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) CompanyIDsWithStatus(ctx context.Context, status contract.ContractStatus) ([]uuid.UUID, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockVersionRepository is a mock implementation of VersionRepository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.ContractVersion, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.ContractVersion), args.Error(1)
}

func (m *MockVersionRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.ContractVersion, error) {
	args := m.Called(ctx, contractIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.ContractVersion), args.Error(1)
}

func (m *MockVersionRepository) FindCommentsByVersions(ctx context.Context, versionIDs []uuid.UUID) ([]contract.VersionComment, error) {
	args := m.Called(ctx, versionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.VersionComment), args.Error(1)
}

func (m *MockVersionRepository) Save(ctx context.Context, version *contract.ContractVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockVersionRepository) SaveComment(ctx context.Context, comment *contract.VersionComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

// MockApprovalStepRepository is a mock implementation of ApprovalStepRepository
type MockApprovalStepRepository struct {
	mock.Mock
}

func (m *MockApprovalStepRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.ApprovalStep, error) {
	args := m.Called(ctx, contractIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.ApprovalStep), args.Error(1)
}

func (m *MockApprovalStepRepository) ReplaceForContract(ctx context.Context, contractID uuid.UUID, steps []contract.ApprovalStep) error {
	args := m.Called(ctx, contractID, steps)
	return args.Error(0)
}

func (m *MockApprovalStepRepository) Save(ctx context.Context, step *contract.ApprovalStep) error {
	args := m.Called(ctx, step)
	return args.Error(0)
}

// MockAllocationRepository is a mock implementation of AllocationRepository
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.PropertyAllocation, error) {
	args := m.Called(ctx, contractIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.PropertyAllocation), args.Error(1)
}

func (m *MockAllocationRepository) Save(ctx context.Context, allocation *contract.PropertyAllocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

// MockRenewalRequestRepository is a mock implementation of RenewalRequestRepository
type MockRenewalRequestRepository struct {
	mock.Mock
}

func (m *MockRenewalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.RenewalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RenewalRequest), args.Error(1)
}

func (m *MockRenewalRequestRepository) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*contract.RenewalRequest, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RenewalRequest), args.Error(1)
}

func (m *MockRenewalRequestRepository) FindRecentByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]contract.RenewalRequest, error) {
	args := m.Called(ctx, contractIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.RenewalRequest), args.Error(1)
}

func (m *MockRenewalRequestRepository) Save(ctx context.Context, request *contract.RenewalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRenewalRequestRepository) FindFeedbackByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]contract.RenewalFeedback, error) {
	args := m.Called(ctx, requestIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.RenewalFeedback), args.Error(1)
}

func (m *MockRenewalRequestRepository) SaveFeedback(ctx context.Context, feedback *contract.RenewalFeedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) FindByContracts(ctx context.Context, contractIDs []uuid.UUID, limitPerContract int) ([]contract.AuditEntry, error) {
	args := m.Called(ctx, contractIDs, limitPerContract)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) Save(ctx context.Context, entry *contract.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of party.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.User, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]party.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *party.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockCounterpartyRepository is a mock implementation of party.CounterpartyRepository
type MockCounterpartyRepository struct {
	mock.Mock
}

func (m *MockCounterpartyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.Counterparty, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]party.Counterparty, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) Save(ctx context.Context, counterparty *party.Counterparty) error {
	args := m.Called(ctx, counterparty)
	return args.Error(0)
}

// MockPropertyRepository is a mock implementation of party.PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.Property, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]party.Property, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Property), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, property *party.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

// MockTransitionStore is a mock implementation of TransitionStore
type MockTransitionStore struct {
	mock.Mock
}

func (m *MockTransitionStore) Transition(ctx context.Context, companyID, contractID uuid.UUID, action contract.TransitionAction, payload contract.Payload) (*contract.TransitionResult, error) {
	args := m.Called(ctx, companyID, contractID, action, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.TransitionResult), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// recordingNotifier captures emitted notifications for assertions
type recordingNotifier struct {
	mu      sync.Mutex
	emitted []recordedNotification
}

type recordedNotification struct {
	UserID    uuid.UUID
	Type      string
	Message   string
	RelatedID uuid.UUID
}

func (n *recordingNotifier) Emit(ctx context.Context, userID uuid.UUID, notifType, message, relatedType string, relatedID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emitted = append(n.emitted, recordedNotification{
		UserID:    userID,
		Type:      notifType,
		Message:   message,
		RelatedID: relatedID,
	})
}

func (n *recordingNotifier) byType(notifType string) []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedNotification, 0)
	for _, e := range n.emitted {
		if e.Type == notifType {
			out = append(out, e)
		}
	}
	return out
}
