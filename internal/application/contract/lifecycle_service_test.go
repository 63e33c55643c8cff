package contract

import (
	"context"
	"sync"
	"testing"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu         sync.Mutex
	companyIDs []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(companyID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companyIDs = append(r.companyIDs, companyID)
}

func newLifecycleService(contractRepo *MockContractRepository, versionRepo *MockVersionRepository, store *MockTransitionStore) *LifecycleService {
	return NewLifecycleService(contractRepo, versionRepo, store, nil, nil)
}

func validCreateRequest() CreateContractRequest {
	return CreateContractRequest{
		Title:            "Cleaning Services 2024",
		Type:             string(contract.TypeService),
		Value:            decimal.NewFromInt(24000),
		BillingFrequency: string(contract.BillingMonthly),
		OwnerID:          uuid.New(),
		CounterpartyID:   uuid.New(),
		NoticePeriodDays: 60,
		InitialContent:   "full service terms",
	}
}

func TestLifecycleService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	userID := uuid.New()

	t.Run("creates draft with first version and portfolio allocation", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		var saved *contract.Contract
		contractRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*contract.Contract) }).
			Return(nil)

		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		invalidator := &recordingInvalidator{}

		service := newLifecycleService(contractRepo, new(MockVersionRepository), new(MockTransitionStore))
		service.SetEventPublisher(publisher)
		service.SetCacheInvalidator(invalidator)

		resp, err := service.Create(ctx, companyID, userID, validCreateRequest())
		require.NoError(t, err)

		assert.Equal(t, string(contract.StatusDraft), resp.Status)
		require.Len(t, resp.Versions, 1)
		assert.Equal(t, 1, resp.Versions[0].VersionNumber)
		require.Len(t, resp.Allocations, 1)
		assert.True(t, resp.Allocations[0].PortfolioWide)

		require.NotNil(t, saved)
		assert.Equal(t, companyID, saved.CompanyID)
		assert.NotNil(t, saved.DraftVersionID)

		publisher.AssertNumberOfCalls(t, "Publish", 1)
		assert.Equal(t, []uuid.UUID{companyID}, invalidator.companyIDs)
	})

	t.Run("per-property allocation when a property is set", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		contractRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		service := newLifecycleService(contractRepo, new(MockVersionRepository), new(MockTransitionStore))

		req := validCreateRequest()
		propertyID := uuid.New()
		req.PropertyID = &propertyID
		req.AllocationType = string(contract.AllocationPerProperty)

		resp, err := service.Create(ctx, companyID, userID, req)
		require.NoError(t, err)
		require.Len(t, resp.Allocations, 1)
		assert.False(t, resp.Allocations[0].PortfolioWide)
		require.NotNil(t, resp.Allocations[0].PropertyID)
		assert.Equal(t, propertyID, *resp.Allocations[0].PropertyID)
	})

	t.Run("missing context is rejected", func(t *testing.T) {
		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), new(MockTransitionStore))
		_, err := service.Create(ctx, uuid.Nil, userID, validCreateRequest())
		assert.ErrorIs(t, err, shared.ErrMissingContext)
	})
}

func TestLifecycleService_Transition(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	userID := uuid.New()
	contractID := uuid.New()

	t.Run("unknown action is rejected before the store", func(t *testing.T) {
		store := new(MockTransitionStore)
		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)

		_, err := service.Transition(ctx, companyID, userID, contractID, TransitionRequest{Action: "DELETE"})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ACTION", domainErr.Code)
		store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("actor is stamped into the payload", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusDraft, nil)

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, companyID, contractID,
			contract.ActionForStatus(contract.StatusInReview),
			mock.MatchedBy(func(p contract.Payload) bool {
				actor := p.ActorID()
				return actor != nil && *actor == userID && p.String(contract.PayloadKeyContent) == "v2 terms"
			})).
			Return(&contract.TransitionResult{Contract: &c}, nil)

		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)
		_, err := service.Transition(ctx, companyID, userID, contractID, TransitionRequest{
			Action:  "IN_REVIEW",
			Payload: map[string]interface{}{contract.PayloadKeyContent: "v2 terms"},
		})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("store rejection is surfaced verbatim", func(t *testing.T) {
		rejection := contract.NewTransitionError(contractID, contract.ActionForStatus(contract.StatusActive),
			"INVALID_TRANSITION", "Cannot transition contract from DRAFT to ACTIVE")

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, rejection)

		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)
		_, err := service.Activate(ctx, companyID, userID, contractID)
		var transitionErr *contract.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "INVALID_TRANSITION", transitionErr.Code)
	})

	t.Run("cascade warning does not fail the activation", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusActive, nil)
		predecessorID := uuid.New()
		c.ParentContractID = &predecessorID

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&contract.TransitionResult{
				Contract: &c,
				CascadeWarning: &contract.CascadeError{
					SuccessorID:   c.ID,
					PredecessorID: predecessorID,
					Err:           shared.ErrConcurrencyConflict,
				},
			}, nil)

		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)
		resp, err := service.Activate(ctx, companyID, userID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, string(contract.StatusActive), resp.Status)
	})
}

func TestLifecycleService_UpdateSigning(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	userID := uuid.New()

	signedContract := func(status contract.SigningStatus) *contract.Contract {
		c := buildContract(t, companyID, contract.StatusSentForSignature, nil)
		c.SigningStatus = &status
		return &c
	}

	t.Run("regression is rejected before the store is touched", func(t *testing.T) {
		c := signedContract(contract.SigningSignedByCounterparty)

		contractRepo := new(MockContractRepository)
		contractRepo.On("FindByIDForCompany", mock.Anything, companyID, c.ID).Return(c, nil)
		store := new(MockTransitionStore)

		service := newLifecycleService(contractRepo, new(MockVersionRepository), store)
		_, err := service.UpdateSigning(ctx, companyID, userID, c.ID,
			SigningUpdateRequest{SigningStatus: string(contract.SigningViewedByCounterparty)})

		assert.ErrorIs(t, err, shared.ErrSigningRegression)
		store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("forward advance goes through the store", func(t *testing.T) {
		c := signedContract(contract.SigningAwaitingInternal)

		contractRepo := new(MockContractRepository)
		contractRepo.On("FindByIDForCompany", mock.Anything, companyID, c.ID).Return(c, nil)

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, companyID, c.ID,
			contract.ActionForStatus(contract.StatusSentForSignature),
			mock.MatchedBy(func(p contract.Payload) bool {
				s, ok := p.SigningStatus()
				return ok && s == contract.SigningSentToCounterparty
			})).
			Return(&contract.TransitionResult{Contract: c}, nil)

		service := newLifecycleService(contractRepo, new(MockVersionRepository), store)
		_, err := service.UpdateSigning(ctx, companyID, userID, c.ID,
			SigningUpdateRequest{SigningStatus: string(contract.SigningSentToCounterparty)})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("unknown signing status is rejected", func(t *testing.T) {
		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), new(MockTransitionStore))
		_, err := service.UpdateSigning(ctx, companyID, userID, uuid.New(),
			SigningUpdateRequest{SigningStatus: "NOTARIZED"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_SIGNING_STATUS", domainErr.Code)
	})
}

func TestLifecycleService_ApprovalActions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	userID := uuid.New()

	t.Run("assign approvers notifies each approver", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusPendingApproval, nil)
		approvers := []uuid.UUID{uuid.New(), uuid.New()}

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, companyID, c.ID,
			contract.ActionForStatus(contract.StatusPendingApproval), mock.Anything).
			Return(&contract.TransitionResult{Contract: &c}, nil)

		notifier := &recordingNotifier{}
		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)
		service.SetNotifier(notifier)

		_, err := service.AssignApprovers(ctx, companyID, userID, c.ID, AssignApproversRequest{Approvers: approvers})
		require.NoError(t, err)

		requested := notifier.byType(NotifyApprovalRequested)
		require.Len(t, requested, 2)
		assert.Equal(t, approvers[0], requested[0].UserID)
		assert.Equal(t, approvers[1], requested[1].UserID)
	})

	t.Run("empty approver list is rejected", func(t *testing.T) {
		store := new(MockTransitionStore)
		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)

		_, err := service.AssignApprovers(ctx, companyID, userID, uuid.New(), AssignApproversRequest{})
		require.Error(t, err)
		store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reject step routes the step action", func(t *testing.T) {
		c := buildContract(t, companyID, contract.StatusInReview, nil)
		stepID := uuid.New()

		store := new(MockTransitionStore)
		store.On("Transition", mock.Anything, companyID, c.ID, contract.ActionRejectStep,
			mock.MatchedBy(func(p contract.Payload) bool {
				id, ok := p.StepID()
				return ok && id == stepID && p.String(contract.PayloadKeyComment) == "needs legal review"
			})).
			Return(&contract.TransitionResult{Contract: &c}, nil)

		service := newLifecycleService(new(MockContractRepository), new(MockVersionRepository), store)
		_, err := service.RejectStep(ctx, companyID, userID, c.ID,
			ResolveStepRequest{StepID: stepID, Comment: "needs legal review"})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestLifecycleService_AddVersionComment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	userID := uuid.New()
	versionID := uuid.New()

	versionRepo := new(MockVersionRepository)
	versionRepo.On("SaveComment", mock.Anything, mock.MatchedBy(func(c *contract.VersionComment) bool {
		return c.VersionID == versionID && c.AuthorID == userID && c.Body == "looks good"
	})).Return(nil)

	service := newLifecycleService(new(MockContractRepository), versionRepo, new(MockTransitionStore))
	resp, err := service.AddVersionComment(ctx, companyID, userID, versionID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "looks good", resp.Body)
	versionRepo.AssertExpectations(t)
}
