package contract

import (
	"context"
	"fmt"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Renegotiation step names reported on partial failure
const (
	StepCreateSuccessor = "create_successor"
	StepCopyAllocations = "copy_allocations"
	StepUpdateRequest   = "update_request"
)

// RenegotiationError reports which step of the successor creation sequence
// failed. Earlier steps stay committed; the caller decides how to resume.
type RenegotiationError struct {
	Step        string
	SuccessorID *uuid.UUID
	Err         error
}

// Error implements the error interface
func (e *RenegotiationError) Error() string {
	return fmt.Sprintf("renegotiation step %s failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying failure
func (e *RenegotiationError) Unwrap() error {
	return e.Err
}

// RenewalService runs the renewal workflow: queueing requests ahead of the
// notice deadline, recording the decision, and executing the chosen mode.
type RenewalService struct {
	contractRepo   contract.ContractRepository
	versionRepo    contract.VersionRepository
	allocationRepo contract.AllocationRepository
	renewalRepo    contract.RenewalRequestRepository
	store          contract.TransitionStore
	eventPublisher shared.EventPublisher
	notifier       Notifier
	invalidator    CacheInvalidator
	logger         *zap.Logger
}

// NewRenewalService creates a new RenewalService
func NewRenewalService(
	contractRepo contract.ContractRepository,
	versionRepo contract.VersionRepository,
	allocationRepo contract.AllocationRepository,
	renewalRepo contract.RenewalRequestRepository,
	store contract.TransitionStore,
	logger *zap.Logger,
) *RenewalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenewalService{
		contractRepo:   contractRepo,
		versionRepo:    versionRepo,
		allocationRepo: allocationRepo,
		renewalRepo:    renewalRepo,
		store:          store,
		notifier:       NopNotifier{},
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *RenewalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNotifier sets the best-effort user notifier
func (s *RenewalService) SetNotifier(notifier Notifier) {
	if notifier != nil {
		s.notifier = notifier
	}
}

// SetCacheInvalidator wires the portfolio cache invalidation hook
func (s *RenewalService) SetCacheInvalidator(invalidator CacheInvalidator) {
	s.invalidator = invalidator
}

// CreateRenewalRequest queues a renewal request for a contract. At most one
// open request may exist per contract.
func (s *RenewalService) CreateRenewalRequest(ctx context.Context, companyID, userID, contractID uuid.UUID, req CreateRenewalRequestInput) (*RenewalRequestResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}

	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c.EndDate == nil {
		return nil, shared.NewDomainError("MISSING_END_DATE", "Contract has no end date to renew against")
	}

	open, err := s.renewalRepo.FindOpenByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, shared.ErrOpenRenewalExists
	}

	ownerID := c.OwnerID
	if req.OwnerID != nil && *req.OwnerID != uuid.Nil {
		ownerID = *req.OwnerID
	}

	request, err := contract.NewRenewalRequest(c.ID, ownerID, *c.EndDate, c.NoticePeriodDays)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		request.Notes = req.Notes
	}

	if err := s.renewalRepo.Save(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, contract.NewRenewalRequestedEvent(c, request))
	s.invalidate(companyID)
	s.notifier.Emit(ctx, ownerID, NotifyRenewalQueued,
		fmt.Sprintf("Contract %q is due for a renewal decision by %s", c.Title, request.InternalDecisionDeadline.Format("2006-01-02")),
		"renewal_request", request.ID)

	response := ToRenewalRequestResponse(request)
	return &response, nil
}

// DecideRenewal records the renewal mode and executes its workflow:
// TERMINATE ends the contract, RENEW_AS_IS extends it in place, AMENDMENT
// reopens it for review and NEW_CONTRACT drafts a successor.
func (s *RenewalService) DecideRenewal(ctx context.Context, companyID, userID, requestID uuid.UUID, req DecideRenewalRequest) (*RenewalRequestResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	mode := contract.RenewalMode(req.Mode)
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("Unknown renewal mode %s", req.Mode))
	}

	request, err := s.renewalRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsOpen() {
		return nil, shared.NewDomainError("RENEWAL_CLOSED", "Renewal request has already been resolved")
	}
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, request.ContractID)
	if err != nil {
		return nil, err
	}

	switch mode {
	case contract.ModeTerminate:
		err = s.terminate(ctx, companyID, userID, c, request, req.Notes)
	case contract.ModeRenewAsIs:
		err = s.applyRenewAsIs(ctx, companyID, c, request, req.Notes)
	case contract.ModeAmendment:
		err = s.startAmendment(ctx, companyID, userID, c, request, req.Notes)
	case contract.ModeNewContract:
		_, err = s.startRenegotiation(ctx, companyID, c, request, req.Notes)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, contract.NewRenewalDecidedEvent(c, request, mode))
	s.invalidate(companyID)
	s.notifier.Emit(ctx, request.OwnerID, NotifyRenewalDecided,
		fmt.Sprintf("Renewal of contract %q decided: %s", c.Title, mode), "renewal_request", request.ID)

	response := ToRenewalRequestResponse(request)
	return &response, nil
}

// RenewAsIs extends an active contract under its current (or renegotiated)
// terms without drafting a successor
func (s *RenewalService) RenewAsIs(ctx context.Context, companyID, userID, contractID uuid.UUID, notes string) (*ContractResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	request, err := s.requireOpenRequest(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := s.applyRenewAsIs(ctx, companyID, c, request, notes); err != nil {
		return nil, err
	}

	s.publish(ctx, contract.NewRenewalDecidedEvent(c, request, contract.ModeRenewAsIs))
	s.invalidate(companyID)
	s.notifier.Emit(ctx, request.OwnerID, NotifyRenewalDecided,
		fmt.Sprintf("Contract %q renewed until %s", c.Title, c.EndDate.Format("2006-01-02")), "contract", c.ID)

	response := ToContractResponse(c)
	return &response, nil
}

// StartRenegotiation drafts a successor contract from the predecessor's
// latest terms and moves the renewal request into progress. The sequence is
// multi-step and best-effort: a failure reports the step, earlier steps stay
// committed.
func (s *RenewalService) StartRenegotiation(ctx context.Context, companyID, userID, contractID uuid.UUID, notes string) (*StartRenegotiationResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	request, err := s.requireOpenRequest(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	successor, err := s.startRenegotiation(ctx, companyID, c, request, notes)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, contract.NewRenewalDecidedEvent(c, request, contract.ModeNewContract))
	s.invalidate(companyID)
	s.notifier.Emit(ctx, request.OwnerID, NotifyRenewalDecided,
		fmt.Sprintf("Renegotiation of contract %q started", c.Title), "contract", successor.ID)

	return &StartRenegotiationResponse{
		Successor:      ToContractResponse(successor),
		PredecessorID:  c.ID,
		RenewalRequest: ToRenewalRequestResponse(request),
	}, nil
}

// UpdateRenewalTerms adjusts the negotiated parameters of an open request
func (s *RenewalService) UpdateRenewalTerms(ctx context.Context, companyID, userID, requestID uuid.UUID, req UpdateRenewalTermsRequest) (*RenewalRequestResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	request, err := s.renewalRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.contractRepo.FindByIDForCompany(ctx, companyID, request.ContractID); err != nil {
		return nil, err
	}
	if !request.IsOpen() {
		return nil, shared.NewDomainError("RENEWAL_CLOSED", "Renewal request has already been resolved")
	}
	if err := request.UpdateTerms(req.RenewalTermMonths, req.NoticePeriodDays, req.UpliftPercent); err != nil {
		return nil, err
	}
	if err := s.renewalRepo.Save(ctx, request); err != nil {
		return nil, err
	}
	response := ToRenewalRequestResponse(request)
	return &response, nil
}

// AddFeedback attaches a dated note to a renewal request
func (s *RenewalService) AddFeedback(ctx context.Context, companyID, userID, requestID uuid.UUID, req AddFeedbackRequest) (*FeedbackResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	request, err := s.renewalRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.contractRepo.FindByIDForCompany(ctx, companyID, request.ContractID); err != nil {
		return nil, err
	}
	feedback, err := contract.NewRenewalFeedback(request.ID, userID, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.renewalRepo.SaveFeedback(ctx, feedback); err != nil {
		return nil, err
	}
	return &FeedbackResponse{
		ID:        feedback.ID,
		AuthorID:  feedback.AuthorID,
		Body:      feedback.Body,
		CreatedAt: feedback.CreatedAt,
	}, nil
}

// ListFeedback returns the feedback trail of a renewal request
func (s *RenewalService) ListFeedback(ctx context.Context, companyID, userID, requestID uuid.UUID) ([]FeedbackResponse, error) {
	if err := requireContext(companyID, userID); err != nil {
		return nil, err
	}
	request, err := s.renewalRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.contractRepo.FindByIDForCompany(ctx, companyID, request.ContractID); err != nil {
		return nil, err
	}
	entries, err := s.renewalRepo.FindFeedbackByRequests(ctx, []uuid.UUID{request.ID})
	if err != nil {
		return nil, err
	}
	responses := make([]FeedbackResponse, len(entries))
	for i, entry := range entries {
		responses[i] = FeedbackResponse{
			ID:        entry.ID,
			AuthorID:  entry.AuthorID,
			Body:      entry.Body,
			CreatedAt: entry.CreatedAt,
		}
	}
	return responses, nil
}

// terminate ends the contract and cancels the request. The transition runs
// first; a request save failure afterwards is logged as an inconsistency
// rather than rolled back.
func (s *RenewalService) terminate(ctx context.Context, companyID, userID uuid.UUID, c *contract.Contract, request *contract.RenewalRequest, notes string) error {
	reason := notes
	if reason == "" {
		reason = "Renewal declined"
	}
	payload := contract.Payload{
		contract.PayloadKeyReason:  reason,
		contract.PayloadKeyActorID: userID,
	}
	result, err := s.store.Transition(ctx, companyID, c.ID, contract.ActionForStatus(contract.StatusTerminated), payload)
	if err != nil {
		return err
	}
	*c = *result.Contract

	if err := request.Decide(contract.ModeTerminate, notes); err != nil {
		return err
	}
	if err := s.renewalRepo.Save(ctx, request); err != nil {
		s.logger.Error("contract terminated but renewal request not updated",
			zap.String("contract_id", c.ID.String()),
			zap.String("request_id", request.ID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// applyRenewAsIs extends the contract in place using the request's
// renegotiated term and uplift, falling back to the contract defaults
func (s *RenewalService) applyRenewAsIs(ctx context.Context, companyID uuid.UUID, c *contract.Contract, request *contract.RenewalRequest, notes string) error {
	if c.EndDate == nil {
		return shared.NewDomainError("MISSING_END_DATE", "Contract has no end date to renew against")
	}
	term := request.ResolveTerm(c.RenewalTermMonths)
	uplift := request.ResolveUplift(c.UpliftPercent)

	newEndDate := c.EndDate.AddDate(0, term, 0)
	newValue := contract.UpliftedValue(c.Value, uplift)

	if err := c.ApplyRenewAsIs(newEndDate, newValue); err != nil {
		return err
	}
	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return err
	}

	if err := request.Decide(contract.ModeRenewAsIs, notes); err != nil {
		return err
	}
	if err := s.renewalRepo.Save(ctx, request); err != nil {
		s.logger.Error("contract renewed but renewal request not updated",
			zap.String("contract_id", c.ID.String()),
			zap.String("request_id", request.ID.String()),
			zap.Error(err))
		return err
	}

	s.publishAggregateEvents(ctx, c)
	return nil
}

// startAmendment reopens the active contract for review, seeding the new
// round with the latest version's content
func (s *RenewalService) startAmendment(ctx context.Context, companyID, userID uuid.UUID, c *contract.Contract, request *contract.RenewalRequest, notes string) error {
	versions, err := s.versionRepo.FindByContract(ctx, c.ID)
	if err != nil {
		return err
	}
	content, fileKey := "", ""
	if len(versions) > 0 {
		latest := versions[len(versions)-1]
		content, fileKey = latest.Content, latest.FileKey
	}

	payload := contract.Payload{
		contract.PayloadKeyContent: content,
		contract.PayloadKeyActorID: userID,
	}
	if fileKey != "" {
		payload[contract.PayloadKeyFileKey] = fileKey
	}
	result, err := s.store.Transition(ctx, companyID, c.ID, contract.ActionForStatus(contract.StatusInReview), payload)
	if err != nil {
		return err
	}
	*c = *result.Contract

	if err := request.Decide(contract.ModeAmendment, notes); err != nil {
		return err
	}
	return s.renewalRepo.Save(ctx, request)
}

// startRenegotiation drafts the successor: created from the predecessor's
// latest terms, linked via the parent reference, with allocations copied
// verbatim. Each persistence step is reported individually on failure.
func (s *RenewalService) startRenegotiation(ctx context.Context, companyID uuid.UUID, c *contract.Contract, request *contract.RenewalRequest, notes string) (*contract.Contract, error) {
	if c.EndDate == nil {
		return nil, shared.NewDomainError("MISSING_END_DATE", "Contract has no end date to renew against")
	}
	term := request.ResolveTerm(c.RenewalTermMonths)
	uplift := request.ResolveUplift(c.UpliftPercent)
	noticeDays := request.ResolveNoticeDays(c.NoticePeriodDays)

	newStart := c.EndDate.AddDate(0, 0, 1)
	newEnd := newStart.AddDate(0, term, 0)
	newValue := contract.UpliftedValue(c.Value, uplift)

	content := ""
	versions, err := s.versionRepo.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(versions) > 0 {
		content = versions[len(versions)-1].Content
	}

	successor, err := contract.NewContract(companyID, contract.NewContractParams{
		Title:             c.Title,
		Type:              c.Type,
		RiskLevel:         c.RiskLevel,
		EffectiveDate:     &newStart,
		StartDate:         &newStart,
		EndDate:           &newEnd,
		Value:             newValue,
		BillingFrequency:  c.BillingFrequency,
		SeasonalMonths:    c.SeasonalMonths,
		AllocationType:    c.AllocationType,
		OwnerID:           c.OwnerID,
		CounterpartyID:    c.CounterpartyID,
		PropertyID:        c.PropertyID,
		AutoRenew:         c.AutoRenew,
		NoticePeriodDays:  noticeDays,
		RenewalTermMonths: term,
		UpliftPercent:     uplift,
		InitialContent:    content,
	})
	if err != nil {
		return nil, err
	}
	successor.ParentContractID = &c.ID

	if err := s.contractRepo.Create(ctx, successor); err != nil {
		return nil, &RenegotiationError{Step: StepCreateSuccessor, Err: err}
	}

	if err := s.copyAllocations(ctx, c.ID, successor); err != nil {
		return successor, &RenegotiationError{Step: StepCopyAllocations, SuccessorID: &successor.ID, Err: err}
	}

	if err := request.Decide(contract.ModeNewContract, notes); err != nil {
		return successor, &RenegotiationError{Step: StepUpdateRequest, SuccessorID: &successor.ID, Err: err}
	}
	if err := s.renewalRepo.Save(ctx, request); err != nil {
		return successor, &RenegotiationError{Step: StepUpdateRequest, SuccessorID: &successor.ID, Err: err}
	}

	s.publish(ctx, contract.NewRenewalSuccessorCreatedEvent(c, successor))
	s.publishAggregateEvents(ctx, successor)

	return successor, nil
}

// copyAllocations carries the predecessor's allocation rows over verbatim
func (s *RenewalService) copyAllocations(ctx context.Context, predecessorID uuid.UUID, successor *contract.Contract) error {
	allocations, err := s.allocationRepo.FindByContracts(ctx, []uuid.UUID{predecessorID})
	if err != nil {
		return err
	}
	for i := range allocations {
		src := &allocations[i]
		var copied *contract.PropertyAllocation
		if src.PortfolioWide || src.PropertyID == nil {
			copied = contract.NewPortfolioAllocation(successor.ID)
		} else {
			copied, err = contract.NewPropertyAllocation(successor.ID, *src.PropertyID)
			if err != nil {
				return err
			}
		}
		copied.CopyFrom(src)
		if err := s.allocationRepo.Save(ctx, copied); err != nil {
			return err
		}
		successor.Allocations = append(successor.Allocations, *copied)
	}
	return nil
}

// requireOpenRequest loads the contract's open renewal request
func (s *RenewalService) requireOpenRequest(ctx context.Context, contractID uuid.UUID) (*contract.RenewalRequest, error) {
	request, err := s.renewalRepo.FindOpenByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, shared.NewDomainError("NO_RENEWAL_REQUEST", "Contract has no open renewal request")
	}
	return request, nil
}

func (s *RenewalService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

func (s *RenewalService) publishAggregateEvents(ctx context.Context, c *contract.Contract) {
	if s.eventPublisher == nil {
		c.ClearDomainEvents()
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

func (s *RenewalService) invalidate(companyID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(companyID)
	}
}
