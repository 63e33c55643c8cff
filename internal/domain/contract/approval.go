package contract

import (
	"time"

	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalStepStatus is the per-approver decision state
type ApprovalStepStatus string

const (
	StepPending  ApprovalStepStatus = "PENDING"
	StepApproved ApprovalStepStatus = "APPROVED"
	StepRejected ApprovalStepStatus = "REJECTED"
)

// IsValid checks if the status is a valid ApprovalStepStatus
func (s ApprovalStepStatus) IsValid() bool {
	switch s {
	case StepPending, StepApproved, StepRejected:
		return true
	}
	return false
}

// ApprovalStep is a single approver's decision on the version under review.
// Steps are wholly replaced whenever a new version enters review.
type ApprovalStep struct {
	shared.BaseEntity
	ContractID uuid.UUID          `gorm:"type:uuid;not null;index"`
	ApproverID uuid.UUID          `gorm:"type:uuid;not null"`
	Status     ApprovalStepStatus `gorm:"size:20;not null"`
	ApprovedAt *time.Time
	Comment    string `gorm:"type:text"`
}

// TableName returns the database table name
func (ApprovalStep) TableName() string { return "approval_steps" }

// NewApprovalStep creates a pending step for an approver
func NewApprovalStep(contractID, approverID uuid.UUID) (*ApprovalStep, error) {
	if approverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	return &ApprovalStep{
		BaseEntity: shared.NewBaseEntity(),
		ContractID: contractID,
		ApproverID: approverID,
		Status:     StepPending,
	}, nil
}

// Approve resolves the step positively. Only pending steps can be resolved.
func (s *ApprovalStep) Approve(comment string) error {
	if s.Status != StepPending {
		return shared.NewDomainError("STEP_ALREADY_RESOLVED", "Approval step has already been resolved")
	}
	now := time.Now()
	s.Status = StepApproved
	s.ApprovedAt = &now
	s.Comment = comment
	s.Touch()
	return nil
}

// Reject resolves the step negatively. Only pending steps can be resolved.
func (s *ApprovalStep) Reject(comment string) error {
	if s.Status != StepPending {
		return shared.NewDomainError("STEP_ALREADY_RESOLVED", "Approval step has already been resolved")
	}
	now := time.Now()
	s.Status = StepRejected
	s.ApprovedAt = &now
	s.Comment = comment
	s.Touch()
	return nil
}

// IsResolved returns true once the step is no longer pending
func (s *ApprovalStep) IsResolved() bool {
	return s.Status != StepPending
}
