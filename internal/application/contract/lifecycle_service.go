package contract

import (
	"context"
	"fmt"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleService drives contracts through their lifecycle. Every status
// change funnels into the transactional transition store; the service itself
// only validates the command, shapes the payload and handles the outcome.
type LifecycleService struct {
	contractRepo   contract.ContractRepository
	versionRepo    contract.VersionRepository
	store          contract.TransitionStore
	assembler      *Assembler
	eventPublisher shared.EventPublisher
	notifier       Notifier
	invalidator    CacheInvalidator
	logger         *zap.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	contractRepo contract.ContractRepository,
	versionRepo contract.VersionRepository,
	store contract.TransitionStore,
	assembler *Assembler,
	logger *zap.Logger,
) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		contractRepo: contractRepo,
		versionRepo:  versionRepo,
		store:        store,
		assembler:    assembler,
		notifier:     NopNotifier{},
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNotifier sets the best-effort user notifier
func (s *LifecycleService) SetNotifier(notifier Notifier) {
	if notifier != nil {
		s.notifier = notifier
	}
}

// SetCacheInvalidator wires the portfolio cache invalidation hook
func (s *LifecycleService) SetCacheInvalidator(invalidator CacheInvalidator) {
	s.invalidator = invalidator
}

// Create creates a contract draft together with its first version and
// initial allocation rows
func (s *LifecycleService) Create(ctx context.Context, companyID, userID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}

	params := contract.NewContractParams{
		Title:             req.Title,
		Type:              contract.ContractType(req.Type),
		RiskLevel:         contract.RiskLevel(req.RiskLevel),
		EffectiveDate:     req.EffectiveDate,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Value:             req.Value,
		BillingFrequency:  contract.BillingFrequency(req.BillingFrequency),
		SeasonalMonths:    req.SeasonalMonths,
		AllocationType:    contract.AllocationType(req.AllocationType),
		OwnerID:           req.OwnerID,
		CounterpartyID:    req.CounterpartyID,
		PropertyID:        req.PropertyID,
		AutoRenew:         req.AutoRenew,
		NoticePeriodDays:  req.NoticePeriodDays,
		RenewalTermMonths: req.RenewalTermMonths,
		InitialContent:    req.InitialContent,
	}
	if req.UpliftPercent != nil {
		params.UpliftPercent = *req.UpliftPercent
	}

	c, err := contract.NewContract(companyID, params)
	if err != nil {
		return nil, err
	}

	if c.AllocationType == contract.AllocationPerProperty && c.PropertyID != nil {
		allocation, err := contract.NewPropertyAllocation(c.ID, *c.PropertyID)
		if err != nil {
			return nil, err
		}
		c.Allocations = append(c.Allocations, *allocation)
	} else {
		c.Allocations = append(c.Allocations, *contract.NewPortfolioAllocation(c.ID))
	}

	if err := s.contractRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)
	s.invalidate(companyID)

	response := ToContractResponse(c)
	return &response, nil
}

// GetByID retrieves a fully assembled contract aggregate
func (s *LifecycleService) GetByID(ctx context.Context, companyID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.assembler.LoadOne(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	response := ToContractResponse(c)
	return &response, nil
}

// List retrieves contracts with filtering and pagination
func (s *LifecycleService) List(ctx context.Context, companyID uuid.UUID, filter ContractListFilter) ([]ContractListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}
	if filter.OwnerID != nil {
		domainFilter.Filters["owner_id"] = *filter.OwnerID
	}
	if filter.CounterpartyID != nil {
		domainFilter.Filters["counterparty_id"] = *filter.CounterpartyID
	}
	if filter.PropertyID != nil {
		domainFilter.Filters["property_id"] = *filter.PropertyID
	}
	if filter.EndBefore != nil {
		domainFilter.Filters["end_before"] = *filter.EndBefore
	}

	contracts, err := s.contractRepo.FindAllForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contractRepo.CountForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToContractListItemResponses(contracts), total, nil
}

// Transition executes an arbitrary lifecycle action against the store
func (s *LifecycleService) Transition(ctx context.Context, companyID, userID, contractID uuid.UUID, req TransitionRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	action := contract.TransitionAction(req.Action)
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Unknown transition action %s", req.Action))
	}

	payload := contract.Payload{}
	for k, v := range req.Payload {
		payload[k] = v
	}
	payload[contract.PayloadKeyActorID] = userID

	return s.execute(ctx, companyID, contractID, action, payload)
}

// SubmitVersion submits a new contract version and moves the contract into
// review
func (s *LifecycleService) SubmitVersion(ctx context.Context, companyID, userID, contractID uuid.UUID, req SubmitVersionRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	payload := contract.Payload{
		contract.PayloadKeyContent: req.Content,
		contract.PayloadKeyActorID: userID,
	}
	if req.FileKey != "" {
		payload[contract.PayloadKeyFileKey] = req.FileKey
	}
	return s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusInReview), payload)
}

// AssignApprovers assigns the approval round and moves the contract into
// PENDING_APPROVAL
func (s *LifecycleService) AssignApprovers(ctx context.Context, companyID, userID, contractID uuid.UUID, req AssignApproversRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	if len(req.Approvers) == 0 {
		return nil, shared.NewDomainError("NO_APPROVERS", "At least one approver is required")
	}
	payload := contract.Payload{
		contract.PayloadKeyApprovers: req.Approvers,
		contract.PayloadKeyActorID:   userID,
	}
	response, err := s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusPendingApproval), payload)
	if err != nil {
		return nil, err
	}
	for _, approverID := range req.Approvers {
		s.notifier.Emit(ctx, approverID, NotifyApprovalRequested,
			fmt.Sprintf("Contract %q needs your approval", response.Title), "contract", contractID)
	}
	return response, nil
}

// ApproveStep resolves one approval step as approved
func (s *LifecycleService) ApproveStep(ctx context.Context, companyID, userID, contractID uuid.UUID, req ResolveStepRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	payload := contract.Payload{
		contract.PayloadKeyStepID:  req.StepID,
		contract.PayloadKeyComment: req.Comment,
		contract.PayloadKeyActorID: userID,
	}
	return s.execute(ctx, companyID, contractID, contract.ActionApproveStep, payload)
}

// RejectStep resolves one approval step as rejected, reverting the contract
// into review
func (s *LifecycleService) RejectStep(ctx context.Context, companyID, userID, contractID uuid.UUID, req ResolveStepRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	payload := contract.Payload{
		contract.PayloadKeyStepID:  req.StepID,
		contract.PayloadKeyComment: req.Comment,
		contract.PayloadKeyActorID: userID,
	}
	return s.execute(ctx, companyID, contractID, contract.ActionRejectStep, payload)
}

// UpdateSigning advances the signing sub-machine. Regressions are rejected
// before the store is touched.
func (s *LifecycleService) UpdateSigning(ctx context.Context, companyID, userID, contractID uuid.UUID, req SigningUpdateRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	target := contract.SigningStatus(req.SigningStatus)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_SIGNING_STATUS", fmt.Sprintf("Unknown signing status %s", req.SigningStatus))
	}

	current, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if current.SigningStatus == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Contract has not been sent for signature")
	}
	if !current.SigningStatus.CanAdvanceTo(target) {
		return nil, shared.ErrSigningRegression
	}

	payload := contract.Payload{
		contract.PayloadKeySigningStatus: target,
		contract.PayloadKeyActorID:       userID,
	}
	return s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusSentForSignature), payload)
}

// MarkExecuted records the contract as fully executed
func (s *LifecycleService) MarkExecuted(ctx context.Context, companyID, userID, contractID uuid.UUID) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	payload := contract.Payload{contract.PayloadKeyActorID: userID}
	return s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusFullyExecuted), payload)
}

// Activate puts an executed contract into force. When the contract is a
// renewal successor, its predecessor is superseded in the same operation.
func (s *LifecycleService) Activate(ctx context.Context, companyID, userID, contractID uuid.UUID) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	payload := contract.Payload{contract.PayloadKeyActorID: userID}
	return s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusActive), payload)
}

// Terminate ends an active contract early
func (s *LifecycleService) Terminate(ctx context.Context, companyID, userID, contractID uuid.UUID, req TerminateRequest) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Termination reason is required")
	}
	payload := contract.Payload{
		contract.PayloadKeyReason:  req.Reason,
		contract.PayloadKeyActorID: userID,
	}
	return s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusTerminated), payload)
}

// Archive soft-archives a non-terminal contract
func (s *LifecycleService) Archive(ctx context.Context, companyID, userID, contractID uuid.UUID) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	payload := contract.Payload{contract.PayloadKeyActorID: userID}
	return s.execute(ctx, companyID, contractID, contract.ActionForStatus(contract.StatusArchived), payload)
}

// AddVersionComment attaches reviewer feedback to a contract version
func (s *LifecycleService) AddVersionComment(ctx context.Context, companyID, userID, versionID uuid.UUID, body string) (*CommentResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	comment, err := contract.NewVersionComment(versionID, userID, body)
	if err != nil {
		return nil, err
	}
	if err := s.versionRepo.SaveComment(ctx, comment); err != nil {
		return nil, err
	}
	return &CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// execute runs one action through the store and handles the shared outcome
// path: cascade warnings, domain events, cache invalidation and the owner
// notification
func (s *LifecycleService) execute(ctx context.Context, companyID, contractID uuid.UUID, action contract.TransitionAction, payload contract.Payload) (*ContractResponse, error) {
	result, err := s.store.Transition(ctx, companyID, contractID, action, payload)
	if err != nil {
		return nil, err
	}
	c := result.Contract

	if result.CascadeWarning != nil {
		s.logger.Warn("supersession cascade failed after successor activation",
			zap.String("successor_id", result.CascadeWarning.SuccessorID.String()),
			zap.String("predecessor_id", result.CascadeWarning.PredecessorID.String()),
			zap.Error(result.CascadeWarning.Err))
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, contract.NewCascadeRolledBackEvent(c, result.CascadeWarning)); err != nil {
				s.logger.Error("failed to publish cascade rollback event", zap.Error(err))
			}
		}
	}

	s.publishEvents(ctx, c)
	s.invalidate(companyID)

	s.notifier.Emit(ctx, c.OwnerID, NotifyContractTransitioned,
		fmt.Sprintf("Contract %q is now %s", c.Title, c.Status), "contract", c.ID)

	response := ToContractResponse(c)
	return &response, nil
}

// publishEvents flushes the aggregate's pending domain events
func (s *LifecycleService) publishEvents(ctx context.Context, c *contract.Contract) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range c.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	c.ClearDomainEvents()
}

func (s *LifecycleService) invalidate(companyID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(companyID)
	}
}

// requireContext rejects calls without an authenticated company and user
func requireContext(companyID, userID uuid.UUID) error {
	if companyID == uuid.Nil || userID == uuid.Nil {
		return shared.ErrMissingContext
	}
	return nil
}
