package contract

import (
	"time"

	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeContract = "Contract"

// Event type constants
const (
	EventTypeContractCreated          = "ContractCreated"
	EventTypeContractTransitioned     = "ContractTransitioned"
	EventTypeContractExpired          = "ContractExpired"
	EventTypeContractSuperseded       = "ContractSuperseded"
	EventTypeCascadeRolledBack        = "SupersessionCascadeRolledBack"
	EventTypeContractRenewed          = "ContractRenewed"
	EventTypeRenewalRequested         = "RenewalRequested"
	EventTypeRenewalDecided           = "RenewalDecided"
	EventTypeRenewalSuccessorCreated  = "RenewalSuccessorCreated"
)

// ContractCreatedEvent is raised when a new draft contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID    `json:"contract_id"`
	Title          string       `json:"title"`
	ContractType   ContractType `json:"contract_type"`
	OwnerID        uuid.UUID    `json:"owner_id"`
	CounterpartyID uuid.UUID    `json:"counterparty_id"`
	ParentID       *uuid.UUID   `json:"parent_contract_id,omitempty"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:      c.ID,
		Title:           c.Title,
		ContractType:    c.Type,
		OwnerID:         c.OwnerID,
		CounterpartyID:  c.CounterpartyID,
		ParentID:        c.ParentContractID,
	}
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string {
	return EventTypeContractCreated
}

// ContractTransitionedEvent is raised on every committed status transition
type ContractTransitionedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID      `json:"contract_id"`
	Title      string         `json:"title"`
	OwnerID    uuid.UUID      `json:"owner_id"`
	FromStatus ContractStatus `json:"from_status"`
	ToStatus   ContractStatus `json:"to_status"`
}

// NewContractTransitionedEvent creates a new ContractTransitionedEvent
func NewContractTransitionedEvent(c *Contract, from, to ContractStatus) *ContractTransitionedEvent {
	return &ContractTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractTransitioned, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:      c.ID,
		Title:           c.Title,
		OwnerID:         c.OwnerID,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// EventType returns the event type name
func (e *ContractTransitionedEvent) EventType() string {
	return EventTypeContractTransitioned
}

// ContractExpiredEvent is raised when the sweep (or a manual action) expires
// an overdue contract
type ContractExpiredEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID  `json:"contract_id"`
	Title      string     `json:"title"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// NewContractExpiredEvent creates a new ContractExpiredEvent
func NewContractExpiredEvent(c *Contract) *ContractExpiredEvent {
	return &ContractExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractExpired, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:      c.ID,
		Title:           c.Title,
		OwnerID:         c.OwnerID,
		EndDate:         c.EndDate,
	}
}

// EventType returns the event type name
func (e *ContractExpiredEvent) EventType() string {
	return EventTypeContractExpired
}

// ContractSupersededEvent is raised on the predecessor when its renewal
// successor activates
type ContractSupersededEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Title      string    `json:"title"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewContractSupersededEvent creates a new ContractSupersededEvent
func NewContractSupersededEvent(c *Contract) *ContractSupersededEvent {
	return &ContractSupersededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractSuperseded, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:      c.ID,
		Title:           c.Title,
		OwnerID:         c.OwnerID,
	}
}

// EventType returns the event type name
func (e *ContractSupersededEvent) EventType() string {
	return EventTypeContractSuperseded
}

// CascadeRolledBackEvent is raised on the successor when its activation
// committed but the predecessor supersession rolled back to the savepoint
type CascadeRolledBackEvent struct {
	shared.BaseDomainEvent
	SuccessorID   uuid.UUID `json:"successor_id"`
	PredecessorID uuid.UUID `json:"predecessor_id"`
	Reason        string    `json:"reason"`
}

// NewCascadeRolledBackEvent creates a new CascadeRolledBackEvent
func NewCascadeRolledBackEvent(c *Contract, cascadeErr *CascadeError) *CascadeRolledBackEvent {
	return &CascadeRolledBackEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCascadeRolledBack, AggregateTypeContract, c.ID, c.CompanyID),
		SuccessorID:     cascadeErr.SuccessorID,
		PredecessorID:   cascadeErr.PredecessorID,
		Reason:          cascadeErr.Err.Error(),
	}
}

// EventType returns the event type name
func (e *CascadeRolledBackEvent) EventType() string {
	return EventTypeCascadeRolledBack
}

// ContractRenewedEvent is raised when a contract is extended in place
// (RENEW_AS_IS)
type ContractRenewedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID       `json:"contract_id"`
	Title      string          `json:"title"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	EndDate    *time.Time      `json:"end_date,omitempty"`
	Value      decimal.Decimal `json:"value"`
}

// NewContractRenewedEvent creates a new ContractRenewedEvent
func NewContractRenewedEvent(c *Contract) *ContractRenewedEvent {
	return &ContractRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractRenewed, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:      c.ID,
		Title:           c.Title,
		OwnerID:         c.OwnerID,
		EndDate:         c.EndDate,
		Value:           c.Value,
	}
}

// EventType returns the event type name
func (e *ContractRenewedEvent) EventType() string {
	return EventTypeContractRenewed
}

// RenewalRequestedEvent is raised when a renewal request is queued
type RenewalRequestedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID `json:"contract_id"`
	RenewalRequestID uuid.UUID `json:"renewal_request_id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	NoticeDeadline   time.Time `json:"notice_deadline"`
	DecisionDeadline time.Time `json:"internal_decision_deadline"`
}

// NewRenewalRequestedEvent creates a new RenewalRequestedEvent
func NewRenewalRequestedEvent(c *Contract, r *RenewalRequest) *RenewalRequestedEvent {
	return &RenewalRequestedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeRenewalRequested, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:       c.ID,
		RenewalRequestID: r.ID,
		OwnerID:          r.OwnerID,
		NoticeDeadline:   r.NoticeDeadline,
		DecisionDeadline: r.InternalDecisionDeadline,
	}
}

// EventType returns the event type name
func (e *RenewalRequestedEvent) EventType() string {
	return EventTypeRenewalRequested
}

// RenewalDecidedEvent is raised when a renewal mode is chosen
type RenewalDecidedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID   `json:"contract_id"`
	RenewalRequestID uuid.UUID   `json:"renewal_request_id"`
	Mode             RenewalMode `json:"mode"`
	OwnerID          uuid.UUID   `json:"owner_id"`
}

// NewRenewalDecidedEvent creates a new RenewalDecidedEvent
func NewRenewalDecidedEvent(c *Contract, r *RenewalRequest, mode RenewalMode) *RenewalDecidedEvent {
	return &RenewalDecidedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeRenewalDecided, AggregateTypeContract, c.ID, c.CompanyID),
		ContractID:       c.ID,
		RenewalRequestID: r.ID,
		Mode:             mode,
		OwnerID:          r.OwnerID,
	}
}

// EventType returns the event type name
func (e *RenewalDecidedEvent) EventType() string {
	return EventTypeRenewalDecided
}

// RenewalSuccessorCreatedEvent is raised when renegotiation spawns a successor
// draft contract linked to its predecessor
type RenewalSuccessorCreatedEvent struct {
	shared.BaseDomainEvent
	PredecessorID uuid.UUID `json:"predecessor_id"`
	SuccessorID   uuid.UUID `json:"successor_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
}

// NewRenewalSuccessorCreatedEvent creates a new RenewalSuccessorCreatedEvent
func NewRenewalSuccessorCreatedEvent(predecessor, successor *Contract) *RenewalSuccessorCreatedEvent {
	return &RenewalSuccessorCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRenewalSuccessorCreated, AggregateTypeContract, successor.ID, successor.CompanyID),
		PredecessorID:   predecessor.ID,
		SuccessorID:     successor.ID,
		OwnerID:         successor.OwnerID,
	}
}

// EventType returns the event type name
func (e *RenewalSuccessorCreatedEvent) EventType() string {
	return EventTypeRenewalSuccessorCreated
}
