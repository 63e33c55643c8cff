package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTransitionStore is the transactional arbiter of the contract lifecycle.
// Every status change funnels through Transition: the current state is loaded,
// validated and written back together with all side-effect rows and an audit
// entry in one commit. Racing callers are serialized by the optimistic version
// check on the contract row.
type GormTransitionStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormTransitionStore creates a new GormTransitionStore
func NewGormTransitionStore(db *gorm.DB, logger *zap.Logger) *GormTransitionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTransitionStore{db: db, logger: logger}
}

// Ensure GormTransitionStore implements TransitionStore
var _ contract.TransitionStore = (*GormTransitionStore)(nil)

// Transition executes one lifecycle action atomically
func (s *GormTransitionStore) Transition(ctx context.Context, companyID, contractID uuid.UUID, action contract.TransitionAction, payload contract.Payload) (*contract.TransitionResult, error) {
	if !action.IsValid() {
		return nil, contract.NewTransitionError(contractID, action, "INVALID_ACTION",
			fmt.Sprintf("Unknown transition action %s", action))
	}
	if payload == nil {
		payload = contract.Payload{}
	}

	var result *contract.TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.loadForUpdate(tx, companyID, contractID)
		if err != nil {
			return err
		}

		fromStatus := c.Status
		loadedVersion := c.Version

		detail, err := s.apply(tx, c, action, payload)
		if err != nil {
			return asTransitionError(contractID, action, err)
		}

		if err := s.persistContract(tx, c, loadedVersion); err != nil {
			return asTransitionError(contractID, action, err)
		}

		audit := contract.NewAuditEntry(companyID, c.ID, payload.ActorID(),
			string(action), string(fromStatus), string(c.Status), detail)
		if err := tx.Create(audit).Error; err != nil {
			return err
		}

		res := &contract.TransitionResult{Contract: c}

		// A successor going into force supersedes its predecessor inside the
		// same transaction. The cascade runs under a savepoint: its failure
		// must never roll back the successor's own committed transition.
		if c.Status == contract.StatusActive && fromStatus != contract.StatusActive && c.HasParent() {
			if cascadeErr := s.cascadeSupersede(tx, c, payload.ActorID()); cascadeErr != nil {
				res.CascadeWarning = &contract.CascadeError{
					SuccessorID:   c.ID,
					PredecessorID: *c.ParentContractID,
					Err:           cascadeErr,
				}
				s.logger.Warn("supersession cascade rolled back to savepoint",
					zap.String("successor_id", c.ID.String()),
					zap.String("predecessor_id", c.ParentContractID.String()),
					zap.Error(cascadeErr))
			}
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadForUpdate loads the contract with its versions and approval steps inside
// the transaction, scoped to the company
func (s *GormTransitionStore) loadForUpdate(tx *gorm.DB, companyID, contractID uuid.UUID) (*contract.Contract, error) {
	var c contract.Contract
	if err := tx.Where("company_id = ? AND id = ?", companyID, contractID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Where("contract_id = ?", contractID).
		Order("version_number ASC").
		Find(&c.Versions).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&c.ApprovalSteps).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// apply dispatches the action to the aggregate and writes the side-effect rows
func (s *GormTransitionStore) apply(tx *gorm.DB, c *contract.Contract, action contract.TransitionAction, payload contract.Payload) (string, error) {
	switch action {
	case contract.ActionApproveStep:
		return s.applyStepResolution(tx, c, payload, true)
	case contract.ActionRejectStep:
		return s.applyStepResolution(tx, c, payload, false)
	}

	target, _ := action.TargetStatus()
	switch target {
	case contract.StatusInReview:
		return s.applySubmission(tx, c, payload)

	case contract.StatusPendingApproval:
		return s.applyApproverAssignment(tx, c, payload)

	case contract.StatusSentForSignature:
		// SENT_FOR_SIGNATURE is reached by resolving the last approval step;
		// issued directly it carries a signing progress update instead.
		signing, ok := payload.SigningStatus()
		if !ok {
			return "", shared.NewDomainError("INVALID_PAYLOAD", "Signing status is required")
		}
		if err := c.UpdateSigning(signing); err != nil {
			return "", err
		}
		return string(signing), nil

	case contract.StatusFullyExecuted:
		return "", c.MarkExecuted()

	case contract.StatusActive:
		return "", c.Activate()

	case contract.StatusExpired:
		return "", c.Expire()

	case contract.StatusTerminated:
		reason := payload.String(contract.PayloadKeyReason)
		return reason, c.Terminate(reason)

	case contract.StatusSuperseded:
		return "", c.Supersede()

	case contract.StatusArchived:
		return "", c.Archive()
	}

	return "", shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Action %s cannot be issued directly", action))
}

// applySubmission appends the next version, replaces the approval round and
// moves the contract into review
func (s *GormTransitionStore) applySubmission(tx *gorm.DB, c *contract.Contract, payload contract.Payload) (string, error) {
	authorID := c.OwnerID
	if actor := payload.ActorID(); actor != nil {
		authorID = *actor
	}
	content := payload.String(contract.PayloadKeyContent)
	fileKey := payload.String(contract.PayloadKeyFileKey)

	version, err := c.SubmitVersion(authorID, content, fileKey)
	if err != nil {
		return "", err
	}

	if err := tx.Create(version).Error; err != nil {
		return "", err
	}
	// The new version voids the previous approval round
	if err := tx.Where("contract_id = ?", c.ID).Delete(&contract.ApprovalStep{}).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("version %d", version.VersionNumber), nil
}

// applyApproverAssignment replaces the approval steps and moves the contract
// into PENDING_APPROVAL
func (s *GormTransitionStore) applyApproverAssignment(tx *gorm.DB, c *contract.Contract, payload contract.Payload) (string, error) {
	approvers, ok := payload.ApproverIDs()
	if !ok {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Approver list is required")
	}
	if err := c.AssignApprovers(approvers); err != nil {
		return "", err
	}

	if err := tx.Where("contract_id = ?", c.ID).Delete(&contract.ApprovalStep{}).Error; err != nil {
		return "", err
	}
	for i := range c.ApprovalSteps {
		if err := tx.Create(&c.ApprovalSteps[i]).Error; err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%d approvers", len(approvers)), nil
}

// applyStepResolution resolves a single approval step; approving the last
// pending step advances the contract in the same commit
func (s *GormTransitionStore) applyStepResolution(tx *gorm.DB, c *contract.Contract, payload contract.Payload, approve bool) (string, error) {
	stepID, ok := payload.StepID()
	if !ok {
		return "", shared.NewDomainError("INVALID_PAYLOAD", "Approval step ID is required")
	}
	comment := payload.String(contract.PayloadKeyComment)

	if approve {
		if _, err := c.ApproveStep(stepID, comment); err != nil {
			return "", err
		}
	} else {
		if err := c.RejectStep(stepID, comment); err != nil {
			return "", err
		}
	}

	for i := range c.ApprovalSteps {
		if c.ApprovalSteps[i].ID == stepID {
			if err := tx.Save(&c.ApprovalSteps[i]).Error; err != nil {
				return "", err
			}
			break
		}
	}
	return comment, nil
}

// persistContract writes the mutated contract row guarded by the version it
// was loaded with
func (s *GormTransitionStore) persistContract(tx *gorm.DB, c *contract.Contract, loadedVersion int) error {
	c.Version = loadedVersion + 1
	c.UpdatedAt = time.Now()

	update := tx.Model(&contract.Contract{}).
		Where("id = ? AND version = ?", c.ID, loadedVersion).
		Updates(map[string]interface{}{
			"status":                c.Status,
			"value":                 c.Value,
			"end_date":              c.EndDate,
			"submitted_at":          c.SubmittedAt,
			"review_started_at":     c.ReviewStartedAt,
			"approval_started_at":   c.ApprovalStartedAt,
			"approval_completed_at": c.ApprovalCompletedAt,
			"sent_for_signature_at": c.SentForSignatureAt,
			"executed_at":           c.ExecutedAt,
			"active_at":             c.ActiveAt,
			"expired_at":            c.ExpiredAt,
			"terminated_at":         c.TerminatedAt,
			"superseded_at":         c.SupersededAt,
			"archived_at":           c.ArchivedAt,
			"draft_version_id":      c.DraftVersionID,
			"executed_version_id":   c.ExecutedVersionID,
			"signing_status":        c.SigningStatus,
			"signing_updated_at":    c.SigningUpdatedAt,
			"termination_reason":    c.TerminationReason,
			"version":               c.Version,
			"updated_at":            c.UpdatedAt,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// cascadeSupersede marks the predecessor SUPERSEDED and closes its renewal
// request. Runs under a savepoint so a failure leaves the successor's own
// transition committed.
func (s *GormTransitionStore) cascadeSupersede(tx *gorm.DB, successor *contract.Contract, actorID *uuid.UUID) error {
	const savepoint = "supersession_cascade"
	tx.SavePoint(savepoint)

	err := func() error {
		parent, err := s.loadForUpdate(tx, successor.CompanyID, *successor.ParentContractID)
		if err != nil {
			return err
		}

		fromStatus := parent.Status
		loadedVersion := parent.Version
		if err := parent.Supersede(); err != nil {
			return err
		}
		if err := s.persistContract(tx, parent, loadedVersion); err != nil {
			return err
		}

		audit := contract.NewAuditEntry(parent.CompanyID, parent.ID, actorID,
			string(contract.ActionForStatus(contract.StatusSuperseded)),
			string(fromStatus), string(parent.Status),
			fmt.Sprintf("superseded by %s", successor.ID))
		if err := tx.Create(audit).Error; err != nil {
			return err
		}

		// Close the renewal request that produced the successor
		var request contract.RenewalRequest
		findErr := tx.Where("contract_id = ? AND status IN ?", parent.ID,
			[]string{string(contract.RenewalQueued), string(contract.RenewalInProgress)}).
			Order("created_at DESC").
			First(&request).Error
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil
			}
			return findErr
		}
		if err := request.Activate(); err != nil {
			return err
		}
		return tx.Save(&request).Error
	}()
	if err != nil {
		tx.RollbackTo(savepoint)
		return err
	}
	return nil
}

// asTransitionError wraps aggregate rejections into the store's rejection type
func asTransitionError(contractID uuid.UUID, action contract.TransitionAction, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return contract.NewTransitionError(contractID, action, domainErr.Code, domainErr.Message)
	}
	return err
}
