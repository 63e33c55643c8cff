package contract

import (
	"context"
	"fmt"

	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Payload is the open key/value bag accompanying a transition action.
// Recognized keys are defined as constants below; actions may carry extras.
type Payload map[string]interface{}

// Recognized payload keys
const (
	PayloadKeyApprovers     = "approvers"
	PayloadKeySigningStatus = "signing_status"
	PayloadKeyStepID        = "step_id"
	PayloadKeyComment       = "comment"
	PayloadKeyContent       = "content"
	PayloadKeyFileKey       = "file_key"
	PayloadKeyReason        = "reason"
	PayloadKeyActorID       = "actor_id"
)

// ApproverIDs extracts the approvers list from the payload
func (p Payload) ApproverIDs() ([]uuid.UUID, bool) {
	v, ok := p[PayloadKeyApprovers]
	if !ok {
		return nil, false
	}
	ids, ok := v.([]uuid.UUID)
	return ids, ok
}

// SigningStatus extracts the signing status from the payload
func (p Payload) SigningStatus() (SigningStatus, bool) {
	v, ok := p[PayloadKeySigningStatus]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case SigningStatus:
		return s, true
	case string:
		return SigningStatus(s), true
	}
	return "", false
}

// StepID extracts the approval step ID from the payload
func (p Payload) StepID() (uuid.UUID, bool) {
	v, ok := p[PayloadKeyStepID]
	if !ok {
		return uuid.Nil, false
	}
	switch id := v.(type) {
	case uuid.UUID:
		return id, true
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	}
	return uuid.Nil, false
}

// String extracts a string value from the payload
func (p Payload) String(key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ActorID extracts the acting user from the payload
func (p Payload) ActorID() *uuid.UUID {
	v, ok := p[PayloadKeyActorID]
	if !ok {
		return nil
	}
	switch id := v.(type) {
	case uuid.UUID:
		return &id
	case *uuid.UUID:
		return id
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

// TransitionError is the store's rejection of an atomic transition: an
// invalid edge or a concurrent conflict. The contract's state is unchanged
// and the message is surfaced verbatim to the caller.
type TransitionError struct {
	ContractID uuid.UUID
	Action     TransitionAction
	Code       string
	Message    string
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s rejected for contract %s: %s", e.Action, e.ContractID, e.Message)
}

// NewTransitionError creates a transition rejection error
func NewTransitionError(contractID uuid.UUID, action TransitionAction, code, message string) *TransitionError {
	return &TransitionError{ContractID: contractID, Action: action, Code: code, Message: message}
}

// CascadeError reports a supersession side effect that failed after the
// successor's own transition had already committed. It is a consistency
// warning, never a rollback of the successor.
type CascadeError struct {
	SuccessorID   uuid.UUID
	PredecessorID uuid.UUID
	Err           error
}

// Error implements the error interface
func (e *CascadeError) Error() string {
	return fmt.Sprintf("supersession cascade from successor %s to predecessor %s failed: %v",
		e.SuccessorID, e.PredecessorID, e.Err)
}

// Unwrap returns the underlying failure
func (e *CascadeError) Unwrap() error {
	return e.Err
}

// TransitionResult is the outcome of a committed transition
type TransitionResult struct {
	Contract *Contract
	// CascadeWarning is set when the contract itself committed but the
	// supersession side effect on its predecessor could not be applied
	CascadeWarning *CascadeError
}

// TransitionStore is the atomic transition operation against the transactional
// store. It validates the current status against the edge table, writes the
// new status plus the corresponding stage timestamp and all side-effect rows
// in one commit, and is the sole arbiter between racing callers.
type TransitionStore interface {
	Transition(ctx context.Context, companyID, contractID uuid.UUID, action TransitionAction, payload Payload) (*TransitionResult, error)
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// Create persists a new contract together with its initial version and
	// allocations in one transaction
	Create(ctx context.Context, contract *Contract) error

	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForCompany finds a contract by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Contract, error)

	// FindAllForCompany finds all contracts for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Contract, error)

	// FindByParent finds the renewal successors of a contract
	FindByParent(ctx context.Context, companyID, parentID uuid.UUID) ([]Contract, error)

	// Save creates or updates a contract row (no children)
	Save(ctx context.Context, contract *Contract) error

	// SaveWithLock saves with optimistic locking (aggregate version check)
	SaveWithLock(ctx context.Context, contract *Contract) error

	// CountForCompany counts contracts for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts contracts by status for a company
	CountByStatus(ctx context.Context, companyID uuid.UUID, status ContractStatus) (int64, error)

	// CompanyIDsWithStatus returns the distinct companies that hold at least
	// one contract in the given status
	CompanyIDsWithStatus(ctx context.Context, status ContractStatus) ([]uuid.UUID, error)
}

// VersionRepository defines the interface for contract version persistence
type VersionRepository interface {
	// FindByContract loads all versions of one contract, ascending by number
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]ContractVersion, error)

	// FindByContracts loads the versions of many contracts in one query
	FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]ContractVersion, error)

	// FindCommentsByVersions loads the comments of many versions in one query
	FindCommentsByVersions(ctx context.Context, versionIDs []uuid.UUID) ([]VersionComment, error)

	// Save creates or updates a version
	Save(ctx context.Context, version *ContractVersion) error

	// SaveComment creates a comment on a version
	SaveComment(ctx context.Context, comment *VersionComment) error
}

// ApprovalStepRepository defines the interface for approval step persistence
type ApprovalStepRepository interface {
	// FindByContracts loads the steps of many contracts in one query
	FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]ApprovalStep, error)

	// ReplaceForContract discards a contract's steps and inserts the new set
	ReplaceForContract(ctx context.Context, contractID uuid.UUID, steps []ApprovalStep) error

	// Save updates a single step
	Save(ctx context.Context, step *ApprovalStep) error
}

// AllocationRepository defines the interface for property allocation persistence
type AllocationRepository interface {
	// FindByContracts loads the allocations of many contracts in one query
	FindByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]PropertyAllocation, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, allocation *PropertyAllocation) error
}

// RenewalRequestRepository defines the interface for renewal request persistence
type RenewalRequestRepository interface {
	// FindByID finds a renewal request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RenewalRequest, error)

	// FindOpenByContract returns the open request of a contract, or nil
	FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*RenewalRequest, error)

	// FindRecentByContracts loads, per contract, the most recent request
	// (preferring open ones) for many contracts in one query
	FindRecentByContracts(ctx context.Context, contractIDs []uuid.UUID) ([]RenewalRequest, error)

	// Save creates or updates a renewal request
	Save(ctx context.Context, request *RenewalRequest) error

	// FindFeedbackByRequests loads feedback entries of many requests
	FindFeedbackByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]RenewalFeedback, error)

	// SaveFeedback creates a feedback entry
	SaveFeedback(ctx context.Context, feedback *RenewalFeedback) error
}

// AuditRepository defines the interface for audit entry persistence
type AuditRepository interface {
	// FindByContracts loads recent audit entries of many contracts
	FindByContracts(ctx context.Context, contractIDs []uuid.UUID, limitPerContract int) ([]AuditEntry, error)

	// Save appends an audit entry
	Save(ctx context.Context, entry *AuditEntry) error
}
