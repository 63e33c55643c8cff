package contract

import (
	"time"

	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RenewalStatus is the workflow state of a renewal request
type RenewalStatus string

const (
	RenewalQueued     RenewalStatus = "QUEUED"
	RenewalInProgress RenewalStatus = "IN_PROGRESS"
	RenewalActivated  RenewalStatus = "ACTIVATED"
	RenewalCancelled  RenewalStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RenewalStatus
func (s RenewalStatus) IsValid() bool {
	switch s {
	case RenewalQueued, RenewalInProgress, RenewalActivated, RenewalCancelled:
		return true
	}
	return false
}

// IsOpen returns true while the request still needs a decision or completion
func (s RenewalStatus) IsOpen() bool {
	return s == RenewalQueued || s == RenewalInProgress
}

// RenewalMode is the decision taken on a renewal request
type RenewalMode string

const (
	ModeNewContract RenewalMode = "NEW_CONTRACT"
	ModeRenewAsIs   RenewalMode = "RENEW_AS_IS"
	ModeAmendment   RenewalMode = "AMENDMENT"
	ModeTerminate   RenewalMode = "TERMINATE"
)

// IsValid checks if the mode is a valid RenewalMode
func (m RenewalMode) IsValid() bool {
	switch m {
	case ModeNewContract, ModeRenewAsIs, ModeAmendment, ModeTerminate:
		return true
	}
	return false
}

// internalDecisionLead is how far before the notice deadline the organization
// wants its own decision made
const internalDecisionLead = 30 * 24 * time.Hour

// RenewalRequest tracks the decision process for a contract approaching its
// end date. At most one open request exists per contract.
type RenewalRequest struct {
	shared.BaseEntity
	ContractID               uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status                   RenewalStatus `gorm:"size:20;not null"`
	Mode                     *RenewalMode  `gorm:"size:20"` // nil until decided
	RenewalTermMonths        *int
	NoticePeriodDays         *int
	UpliftPercent            *decimal.Decimal `gorm:"type:decimal(7,4)"`
	NoticeDeadline           time.Time        `gorm:"type:date;not null"`
	InternalDecisionDeadline time.Time        `gorm:"type:date;not null"`
	Notes                    string           `gorm:"type:text"`
	OwnerID                  uuid.UUID        `gorm:"type:uuid;not null"`

	Feedback []RenewalFeedback `gorm:"-"`
}

// TableName returns the database table name
func (RenewalRequest) TableName() string { return "renewal_requests" }

// ComputeDeadlines derives the notice deadline from the contract end date and
// notice period, and the internal decision deadline 30 days ahead of it
func ComputeDeadlines(endDate time.Time, noticePeriodDays int) (notice, internal time.Time) {
	notice = endDate.AddDate(0, 0, -noticePeriodDays)
	internal = notice.Add(-internalDecisionLead)
	return notice, internal
}

// NewRenewalRequest queues a renewal request for a contract. The owner
// defaults to the contract owner when no explicit renewal owner is given.
func NewRenewalRequest(contractID, ownerID uuid.UUID, endDate time.Time, noticePeriodDays int) (*RenewalRequest, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Renewal owner cannot be empty")
	}
	notice, internal := ComputeDeadlines(endDate, noticePeriodDays)
	return &RenewalRequest{
		BaseEntity:               shared.NewBaseEntity(),
		ContractID:               contractID,
		Status:                   RenewalQueued,
		NoticeDeadline:           notice,
		InternalDecisionDeadline: internal,
		OwnerID:                  ownerID,
		Feedback:                 make([]RenewalFeedback, 0),
	}, nil
}

// IsOpen returns true while the request is QUEUED or IN_PROGRESS
func (r *RenewalRequest) IsOpen() bool {
	return r.Status.IsOpen()
}

// Decide records the chosen mode. Terminal requests cannot be re-decided.
func (r *RenewalRequest) Decide(mode RenewalMode, notes string) error {
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_MODE", "Unknown renewal mode")
	}
	if !r.IsOpen() {
		return shared.NewDomainError("RENEWAL_CLOSED", "Renewal request has already been resolved")
	}
	r.Mode = &mode
	if notes != "" {
		r.Notes = notes
	}
	switch mode {
	case ModeTerminate:
		r.Status = RenewalCancelled
	case ModeRenewAsIs:
		r.Status = RenewalActivated
	default: // NEW_CONTRACT, AMENDMENT keep the request open while work proceeds
		r.Status = RenewalInProgress
	}
	r.Touch()
	return nil
}

// Activate closes the request as successfully completed
func (r *RenewalRequest) Activate() error {
	if r.Status == RenewalCancelled {
		return shared.NewDomainError("RENEWAL_CLOSED", "Cancelled renewal request cannot be activated")
	}
	r.Status = RenewalActivated
	r.Touch()
	return nil
}

// UpdateTerms adjusts the negotiated renewal parameters in place
func (r *RenewalRequest) UpdateTerms(termMonths, noticeDays *int, uplift *decimal.Decimal) error {
	if termMonths != nil {
		if *termMonths <= 0 {
			return shared.NewDomainError("INVALID_TERM", "Renewal term must be positive")
		}
		r.RenewalTermMonths = termMonths
	}
	if noticeDays != nil {
		if *noticeDays < 0 {
			return shared.NewDomainError("INVALID_NOTICE", "Notice period cannot be negative")
		}
		r.NoticePeriodDays = noticeDays
	}
	if uplift != nil {
		r.UpliftPercent = uplift
	}
	r.Touch()
	return nil
}

// ResolveTerm returns the request's renewal term when set, else the fallback
func (r *RenewalRequest) ResolveTerm(fallback int) int {
	if r.RenewalTermMonths != nil {
		return *r.RenewalTermMonths
	}
	return fallback
}

// ResolveUplift returns the request's uplift when set, else the fallback
func (r *RenewalRequest) ResolveUplift(fallback decimal.Decimal) decimal.Decimal {
	if r.UpliftPercent != nil {
		return *r.UpliftPercent
	}
	return fallback
}

// ResolveNoticeDays returns the request's notice period when set, else the fallback
func (r *RenewalRequest) ResolveNoticeDays(fallback int) int {
	if r.NoticePeriodDays != nil {
		return *r.NoticePeriodDays
	}
	return fallback
}

// RenewalFeedback is a dated note collected while a renewal is being decided
type RenewalFeedback struct {
	shared.BaseEntity
	RenewalRequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID         uuid.UUID `gorm:"type:uuid;not null"`
	Body             string    `gorm:"type:text;not null"`
}

// TableName returns the database table name
func (RenewalFeedback) TableName() string { return "renewal_feedback" }

// NewRenewalFeedback creates a feedback entry on a renewal request
func NewRenewalFeedback(requestID, authorID uuid.UUID, body string) (*RenewalFeedback, error) {
	if body == "" {
		return nil, shared.NewDomainError("INVALID_FEEDBACK", "Feedback body cannot be empty")
	}
	return &RenewalFeedback{
		BaseEntity:       shared.NewBaseEntity(),
		RenewalRequestID: requestID,
		AuthorID:         authorID,
		Body:             body,
	}, nil
}
