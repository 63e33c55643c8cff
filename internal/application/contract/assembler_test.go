package contract

import (
	"context"
	"testing"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type assemblerMocks struct {
	contracts      *MockContractRepository
	versions       *MockVersionRepository
	steps          *MockApprovalStepRepository
	allocations    *MockAllocationRepository
	renewals       *MockRenewalRequestRepository
	audits         *MockAuditRepository
	users          *MockUserRepository
	counterparties *MockCounterpartyRepository
	properties     *MockPropertyRepository
}

func newAssemblerMocks() *assemblerMocks {
	return &assemblerMocks{
		contracts:      new(MockContractRepository),
		versions:       new(MockVersionRepository),
		steps:          new(MockApprovalStepRepository),
		allocations:    new(MockAllocationRepository),
		renewals:       new(MockRenewalRequestRepository),
		audits:         new(MockAuditRepository),
		users:          new(MockUserRepository),
		counterparties: new(MockCounterpartyRepository),
		properties:     new(MockPropertyRepository),
	}
}

func (m *assemblerMocks) assembler() *Assembler {
	return NewAssembler(m.contracts, m.versions, m.steps, m.allocations,
		m.renewals, m.audits, m.users, m.counterparties, m.properties, nil)
}

// stubChildren wires empty results for every child family
func (m *assemblerMocks) stubChildren() {
	m.versions.On("FindByContracts", mock.Anything, mock.Anything).Return([]contract.ContractVersion{}, nil)
	m.versions.On("FindCommentsByVersions", mock.Anything, mock.Anything).Return([]contract.VersionComment{}, nil)
	m.steps.On("FindByContracts", mock.Anything, mock.Anything).Return([]contract.ApprovalStep{}, nil)
	m.allocations.On("FindByContracts", mock.Anything, mock.Anything).Return([]contract.PropertyAllocation{}, nil)
	m.renewals.On("FindRecentByContracts", mock.Anything, mock.Anything).Return([]contract.RenewalRequest{}, nil)
	m.renewals.On("FindFeedbackByRequests", mock.Anything, mock.Anything).Return([]contract.RenewalFeedback{}, nil)
	m.audits.On("FindByContracts", mock.Anything, mock.Anything, mock.Anything).Return([]contract.AuditEntry{}, nil)
	m.users.On("FindAllForCompany", mock.Anything, mock.Anything).Return([]party.User{}, nil)
	m.counterparties.On("FindAllForCompany", mock.Anything, mock.Anything).Return([]party.Counterparty{}, nil)
	m.properties.On("FindAllForCompany", mock.Anything, mock.Anything).Return([]party.Property{}, nil)
}

func TestAssembler_Load(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("empty portfolio skips child queries", func(t *testing.T) {
		m := newAssemblerMocks()
		m.contracts.On("FindAllForCompany", mock.Anything, companyID, mock.Anything).
			Return([]contract.Contract{}, nil)

		result, err := m.assembler().Load(ctx, companyID, shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, result)
		m.versions.AssertNotCalled(t, "FindByContracts", mock.Anything, mock.Anything)
		m.users.AssertNotCalled(t, "FindAllForCompany", mock.Anything, mock.Anything)
	})

	t.Run("joins children and resolves party references", func(t *testing.T) {
		owner, _ := party.NewUser(companyID, "owner@example.com", "Dana Reeve")
		counterparty, _ := party.NewCounterparty(companyID, "Acme Facilities Ltd")
		prop, _ := party.NewProperty(companyID, "North Tower", "1 Main St")

		c := buildContract(t, companyID, contract.StatusInReview, nil)
		c.OwnerID = owner.ID
		c.CounterpartyID = counterparty.ID
		c.PropertyID = &prop.ID

		// Versions returned out of order; the assembler must sort ascending
		v1, _ := contract.NewContractVersion(c.ID, owner.ID, 1, "first draft")
		v2, _ := contract.NewContractVersion(c.ID, owner.ID, 2, "second draft")
		comment, _ := contract.NewVersionComment(v2.ID, owner.ID, "tighten clause 4")

		step, _ := contract.NewApprovalStep(c.ID, owner.ID)
		allocation := contract.NewPortfolioAllocation(c.ID)

		request, _ := contract.NewRenewalRequest(c.ID, owner.ID, testDate(2024, 12, 31), 60)
		feedback, _ := contract.NewRenewalFeedback(request.ID, owner.ID, "counterparty wants 5 percent")

		audit := contract.NewAuditEntry(companyID, c.ID, &owner.ID, "SUBMIT_VERSION", "DRAFT", "IN_REVIEW", "")

		m := newAssemblerMocks()
		m.contracts.On("FindAllForCompany", mock.Anything, companyID, mock.Anything).
			Return([]contract.Contract{c}, nil)
		m.versions.On("FindByContracts", mock.Anything, []uuid.UUID{c.ID}).
			Return([]contract.ContractVersion{*v2, *v1}, nil)
		m.versions.On("FindCommentsByVersions", mock.Anything, mock.Anything).
			Return([]contract.VersionComment{*comment}, nil)
		m.steps.On("FindByContracts", mock.Anything, []uuid.UUID{c.ID}).
			Return([]contract.ApprovalStep{*step}, nil)
		m.allocations.On("FindByContracts", mock.Anything, []uuid.UUID{c.ID}).
			Return([]contract.PropertyAllocation{*allocation}, nil)
		m.renewals.On("FindRecentByContracts", mock.Anything, []uuid.UUID{c.ID}).
			Return([]contract.RenewalRequest{*request}, nil)
		m.renewals.On("FindFeedbackByRequests", mock.Anything, []uuid.UUID{request.ID}).
			Return([]contract.RenewalFeedback{*feedback}, nil)
		m.audits.On("FindByContracts", mock.Anything, []uuid.UUID{c.ID}, auditEntriesPerContract).
			Return([]contract.AuditEntry{*audit}, nil)
		m.users.On("FindAllForCompany", mock.Anything, companyID).Return([]party.User{*owner}, nil)
		m.counterparties.On("FindAllForCompany", mock.Anything, companyID).Return([]party.Counterparty{*counterparty}, nil)
		m.properties.On("FindAllForCompany", mock.Anything, companyID).Return([]party.Property{*prop}, nil)

		result, err := m.assembler().Load(ctx, companyID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, result, 1)
		got := result[0]

		require.Len(t, got.Versions, 2)
		assert.Equal(t, 1, got.Versions[0].VersionNumber)
		assert.Equal(t, 2, got.Versions[1].VersionNumber)
		require.Len(t, got.Versions[1].Comments, 1)
		assert.Equal(t, "tighten clause 4", got.Versions[1].Comments[0].Body)
		assert.Empty(t, got.Versions[0].Comments)

		require.Len(t, got.ApprovalSteps, 1)
		require.Len(t, got.Allocations, 1)

		require.NotNil(t, got.RenewalRequest)
		assert.Equal(t, request.ID, got.RenewalRequest.ID)
		require.Len(t, got.RenewalRequest.Feedback, 1)

		require.Len(t, got.AuditEntries, 1)

		require.NotNil(t, got.Owner)
		assert.Equal(t, "Dana Reeve", got.Owner.FullName)
		require.NotNil(t, got.Counterparty)
		assert.Equal(t, "Acme Facilities Ltd", got.Counterparty.Name)
		require.NotNil(t, got.Property)
		assert.Equal(t, "North Tower", got.Property.Name)
	})

	t.Run("resolved renewal requests are not attached", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusActive, nil)

		resolved, _ := contract.NewRenewalRequest(c.ID, uuid.New(), testDate(2024, 12, 31), 60)
		require.NoError(t, resolved.Decide(contract.ModeTerminate, "not renewing"))

		m := newAssemblerMocks()
		m.contracts.On("FindAllForCompany", mock.Anything, companyID, mock.Anything).
			Return([]contract.Contract{c}, nil)
		m.stubChildren()
		m.renewals.ExpectedCalls = nil
		m.renewals.On("FindRecentByContracts", mock.Anything, mock.Anything).
			Return([]contract.RenewalRequest{*resolved}, nil)
		m.renewals.On("FindFeedbackByRequests", mock.Anything, mock.Anything).
			Return([]contract.RenewalFeedback{}, nil)

		result, err := m.assembler().Load(ctx, companyID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Nil(t, result[0].RenewalRequest)
	})

	t.Run("newest open renewal request wins", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusActive, nil)

		older, _ := contract.NewRenewalRequest(c.ID, uuid.New(), testDate(2024, 12, 31), 60)
		older.CreatedAt = time.Now().Add(-48 * time.Hour)
		newer, _ := contract.NewRenewalRequest(c.ID, uuid.New(), testDate(2024, 12, 31), 60)

		m := newAssemblerMocks()
		m.contracts.On("FindAllForCompany", mock.Anything, companyID, mock.Anything).
			Return([]contract.Contract{c}, nil)
		m.stubChildren()
		m.renewals.ExpectedCalls = nil
		m.renewals.On("FindRecentByContracts", mock.Anything, mock.Anything).
			Return([]contract.RenewalRequest{*older, *newer}, nil)
		m.renewals.On("FindFeedbackByRequests", mock.Anything, mock.Anything).
			Return([]contract.RenewalFeedback{}, nil)

		result, err := m.assembler().Load(ctx, companyID, shared.Filter{})
		require.NoError(t, err)
		require.NotNil(t, result[0].RenewalRequest)
		assert.Equal(t, newer.ID, result[0].RenewalRequest.ID)
	})

	t.Run("portfolio order is newest first with stable tiebreak", func(t *testing.T) {
		older := buildContract(t, companyID, contract.StatusDraft, nil)
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer := buildContract(t, companyID, contract.StatusDraft, nil)

		m := newAssemblerMocks()
		m.contracts.On("FindAllForCompany", mock.Anything, companyID, mock.Anything).
			Return([]contract.Contract{older, newer}, nil)
		m.stubChildren()

		result, err := m.assembler().Load(ctx, companyID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, newer.ID, result[0].ID)
		assert.Equal(t, older.ID, result[1].ID)
	})
}

func TestAssembler_LoadOne(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	c := buildContract(t, companyID, contract.StatusDraft, nil)

	m := newAssemblerMocks()
	m.contracts.On("FindByIDForCompany", mock.Anything, companyID, c.ID).Return(&c, nil)
	m.stubChildren()

	got, err := m.assembler().LoadOne(ctx, companyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Empty(t, got.Versions)
}
