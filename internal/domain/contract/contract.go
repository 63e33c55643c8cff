package contract

import (
	"fmt"
	"time"

	"github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractType categorizes the legal nature of the agreement
type ContractType string

const (
	TypeService    ContractType = "SERVICE"
	TypeLease      ContractType = "LEASE"
	TypeSupply     ContractType = "SUPPLY"
	TypeEmployment ContractType = "EMPLOYMENT"
	TypeOther      ContractType = "OTHER"
)

// IsValid checks if the type is a valid ContractType
func (t ContractType) IsValid() bool {
	switch t {
	case TypeService, TypeLease, TypeSupply, TypeEmployment, TypeOther:
		return true
	}
	return false
}

// RiskLevel is the assessed legal/commercial risk of the contract
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// IsValid checks if the level is a valid RiskLevel
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// BillingFrequency is the invoicing cadence of the contract value
type BillingFrequency string

const (
	BillingMonthly    BillingFrequency = "MONTHLY"
	BillingQuarterly  BillingFrequency = "QUARTERLY"
	BillingSemiAnnual BillingFrequency = "SEMI_ANNUAL"
	BillingAnnual     BillingFrequency = "ANNUAL"
	BillingSeasonal   BillingFrequency = "SEASONAL"
	BillingOneTime    BillingFrequency = "ONE_TIME"
)

// IsValid checks if the frequency is a valid BillingFrequency
func (f BillingFrequency) IsValid() bool {
	switch f {
	case BillingMonthly, BillingQuarterly, BillingSemiAnnual, BillingAnnual, BillingSeasonal, BillingOneTime:
		return true
	}
	return false
}

// Contract is the aggregate root of the contract lifecycle. It owns the
// lifecycle state machine, the signing sub-machine, the ordered version
// history, the approval steps of the version under review, the property
// allocations and at most one open renewal request.
type Contract struct {
	shared.CompanyAggregateRoot
	Title     string         `gorm:"size:255;not null"`
	Type      ContractType   `gorm:"size:30;not null"`
	Status    ContractStatus `gorm:"size:30;not null;index"`
	RiskLevel RiskLevel      `gorm:"size:20;not null"`

	EffectiveDate *time.Time `gorm:"type:date"`
	StartDate     *time.Time `gorm:"type:date"`
	EndDate       *time.Time `gorm:"type:date;index"`

	Value            decimal.Decimal  `gorm:"type:decimal(18,2)"`
	BillingFrequency BillingFrequency `gorm:"size:20;not null"`
	SeasonalMonths   []string         `gorm:"serializer:json;type:jsonb"`
	AllocationType   AllocationType   `gorm:"size:20;not null"`

	OwnerID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	CounterpartyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	PropertyID     *uuid.UUID `gorm:"type:uuid;index"`

	// Stage timestamps, one per lifecycle milestone
	SubmittedAt         *time.Time
	ReviewStartedAt     *time.Time
	ApprovalStartedAt   *time.Time
	ApprovalCompletedAt *time.Time
	SentForSignatureAt  *time.Time
	ExecutedAt          *time.Time
	ActiveAt            *time.Time
	ExpiredAt           *time.Time
	TerminatedAt        *time.Time
	SupersededAt        *time.Time
	ArchivedAt          *time.Time

	DraftVersionID    *uuid.UUID `gorm:"type:uuid"`
	ExecutedVersionID *uuid.UUID `gorm:"type:uuid"`

	AutoRenew         bool            `gorm:"not null;default:false"`
	NoticePeriodDays  int             `gorm:"not null;default:0"`
	RenewalTermMonths int             `gorm:"not null;default:12"`
	UpliftPercent     decimal.Decimal `gorm:"type:decimal(7,4)"`

	// Renewal lineage: successors point back at their predecessor, never the
	// reverse, so the chain is acyclic by construction.
	ParentContractID *uuid.UUID `gorm:"type:uuid;index"`

	SigningStatus    *SigningStatus `gorm:"size:30"`
	SigningUpdatedAt *time.Time

	TerminationReason string `gorm:"size:500"`

	// Assembled children, loaded from normalized rows
	Versions       []ContractVersion    `gorm:"-"`
	ApprovalSteps  []ApprovalStep       `gorm:"-"`
	Allocations    []PropertyAllocation `gorm:"-"`
	RenewalRequest *RenewalRequest      `gorm:"-"`
	AuditEntries   []AuditEntry         `gorm:"-"`

	// Resolved references, attached by the assembler
	Owner        *party.User         `gorm:"-"`
	Counterparty *party.Counterparty `gorm:"-"`
	Property     *party.Property     `gorm:"-"`
}

// TableName returns the database table name
func (Contract) TableName() string { return "contracts" }

// NewContractParams carries the commercial terms of a new draft
type NewContractParams struct {
	Title             string
	Type              ContractType
	RiskLevel         RiskLevel
	EffectiveDate     *time.Time
	StartDate         *time.Time
	EndDate           *time.Time
	Value             decimal.Decimal
	BillingFrequency  BillingFrequency
	SeasonalMonths    []string
	AllocationType    AllocationType
	OwnerID           uuid.UUID
	CounterpartyID    uuid.UUID
	PropertyID        *uuid.UUID
	AutoRenew         bool
	NoticePeriodDays  int
	RenewalTermMonths int
	UpliftPercent     decimal.Decimal
	InitialContent    string
}

// NewContract creates a contract in DRAFT together with version 1
func NewContract(companyID uuid.UUID, p NewContractParams) (*Contract, error) {
	if p.Title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Contract title cannot be empty")
	}
	if !p.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown contract type")
	}
	if p.OwnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Contract owner is mandatory")
	}
	if p.CounterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty is mandatory")
	}
	if p.Value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Contract value cannot be negative")
	}
	if !p.BillingFrequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", "Unknown billing frequency")
	}
	if p.RiskLevel == "" {
		p.RiskLevel = RiskMedium
	}
	if !p.RiskLevel.IsValid() {
		return nil, shared.NewDomainError("INVALID_RISK", "Unknown risk level")
	}
	if p.AllocationType == "" {
		p.AllocationType = AllocationPortfolio
	}
	if !p.AllocationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALLOCATION_TYPE", "Unknown allocation type")
	}
	if p.NoticePeriodDays < 0 {
		return nil, shared.NewDomainError("INVALID_NOTICE", "Notice period cannot be negative")
	}
	if p.RenewalTermMonths <= 0 {
		p.RenewalTermMonths = 12
	}

	c := &Contract{
		CompanyAggregateRoot: shared.NewCompanyAggregateRootWithCreator(companyID, p.OwnerID),
		Title:                p.Title,
		Type:                 p.Type,
		Status:               StatusDraft,
		RiskLevel:            p.RiskLevel,
		EffectiveDate:        p.EffectiveDate,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		Value:                p.Value,
		BillingFrequency:     p.BillingFrequency,
		SeasonalMonths:       p.SeasonalMonths,
		AllocationType:       p.AllocationType,
		OwnerID:              p.OwnerID,
		CounterpartyID:       p.CounterpartyID,
		PropertyID:           p.PropertyID,
		AutoRenew:            p.AutoRenew,
		NoticePeriodDays:     p.NoticePeriodDays,
		RenewalTermMonths:    p.RenewalTermMonths,
		UpliftPercent:        p.UpliftPercent,
		Versions:             make([]ContractVersion, 0, 1),
		ApprovalSteps:        make([]ApprovalStep, 0),
		Allocations:          make([]PropertyAllocation, 0),
	}

	version, err := NewContractVersion(c.ID, p.OwnerID, 1, p.InitialContent)
	if err != nil {
		return nil, err
	}
	version.SnapshotTerms(c.Value, c.EffectiveDate, c.EndDate, c.BillingFrequency, c.PropertyID)
	c.Versions = append(c.Versions, *version)
	c.DraftVersionID = &c.Versions[0].ID

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// transitionTo validates the edge and applies the target status plus its
// stage timestamp
func (c *Contract) transitionTo(target ContractStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Unknown target status %s", target))
	}
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition contract from %s to %s", c.Status, target))
	}
	from := c.Status
	now := time.Now()
	c.Status = target
	c.applyStageTimestamp(target, now)
	c.UpdatedAt = now
	c.AddDomainEvent(NewContractTransitionedEvent(c, from, target))
	return nil
}

func (c *Contract) applyStageTimestamp(target ContractStatus, now time.Time) {
	switch target {
	case StatusInReview:
		c.SubmittedAt = &now
		if c.ReviewStartedAt == nil {
			c.ReviewStartedAt = &now
		}
	case StatusPendingApproval:
		c.ApprovalStartedAt = &now
	case StatusSentForSignature:
		c.ApprovalCompletedAt = &now
		c.SentForSignatureAt = &now
	case StatusFullyExecuted:
		c.ExecutedAt = &now
	case StatusActive:
		c.ActiveAt = &now
	case StatusExpired:
		c.ExpiredAt = &now
	case StatusTerminated:
		c.TerminatedAt = &now
	case StatusSuperseded:
		c.SupersededAt = &now
	case StatusArchived:
		c.ArchivedAt = &now
	}
}

// NextVersionNumber returns the number the next submitted version must carry
func (c *Contract) NextVersionNumber() int {
	max := 0
	for i := range c.Versions {
		if c.Versions[i].VersionNumber > max {
			max = c.Versions[i].VersionNumber
		}
	}
	return max + 1
}

// LatestVersion returns the newest version, or nil when none are loaded
func (c *Contract) LatestVersion() *ContractVersion {
	var latest *ContractVersion
	for i := range c.Versions {
		if latest == nil || c.Versions[i].VersionNumber > latest.VersionNumber {
			latest = &c.Versions[i]
		}
	}
	return latest
}

// SubmitVersion appends the next version, discards any approval steps from the
// previous round and moves the contract into IN_REVIEW. Allowed from DRAFT,
// IN_REVIEW (resubmission), PENDING_APPROVAL (supersedes the round under
// approval) and ACTIVE (amendment round).
func (c *Contract) SubmitVersion(authorID uuid.UUID, content, fileKey string) (*ContractVersion, error) {
	switch c.Status {
	case StatusDraft, StatusInReview, StatusPendingApproval, StatusActive:
	default:
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot submit a new version in %s status", c.Status))
	}

	version, err := NewContractVersion(c.ID, authorID, c.NextVersionNumber(), content)
	if err != nil {
		return nil, err
	}
	version.SnapshotTerms(c.Value, c.EffectiveDate, c.EndDate, c.BillingFrequency, c.PropertyID)
	if fileKey != "" {
		version.AttachFile(fileKey)
	}

	if err := c.transitionTo(StatusInReview); err != nil {
		return nil, err
	}

	c.Versions = append(c.Versions, *version)
	c.DraftVersionID = &version.ID
	c.ApprovalSteps = c.ApprovalSteps[:0] // prior round is void

	return version, nil
}

// AssignApprovers replaces the approval steps with a pending step per approver
// and moves the contract into PENDING_APPROVAL
func (c *Contract) AssignApprovers(approverIDs []uuid.UUID) error {
	if len(approverIDs) == 0 {
		return shared.NewDomainError("NO_APPROVERS", "At least one approver is required")
	}
	if c.Status != StatusInReview {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Approvers can only be assigned in %s status", StatusInReview))
	}

	steps := make([]ApprovalStep, 0, len(approverIDs))
	seen := make(map[uuid.UUID]struct{}, len(approverIDs))
	for _, approverID := range approverIDs {
		if _, dup := seen[approverID]; dup {
			return shared.NewDomainError("DUPLICATE_APPROVER", "Approver listed more than once")
		}
		seen[approverID] = struct{}{}
		step, err := NewApprovalStep(c.ID, approverID)
		if err != nil {
			return err
		}
		steps = append(steps, *step)
	}

	if err := c.transitionTo(StatusPendingApproval); err != nil {
		return err
	}
	c.ApprovalSteps = steps
	return nil
}

// findStep locates an approval step by ID
func (c *Contract) findStep(stepID uuid.UUID) *ApprovalStep {
	for i := range c.ApprovalSteps {
		if c.ApprovalSteps[i].ID == stepID {
			return &c.ApprovalSteps[i]
		}
	}
	return nil
}

// AllStepsApproved reports whether every approval step is resolved APPROVED
func (c *Contract) AllStepsApproved() bool {
	if len(c.ApprovalSteps) == 0 {
		return false
	}
	for i := range c.ApprovalSteps {
		if c.ApprovalSteps[i].Status != StepApproved {
			return false
		}
	}
	return true
}

// ApproveStep resolves one step APPROVED. Resolving the last pending step
// advances the contract to SENT_FOR_SIGNATURE and initializes the signing
// sub-machine, all as part of the same logical operation.
func (c *Contract) ApproveStep(stepID uuid.UUID, comment string) (advanced bool, err error) {
	if c.Status != StatusPendingApproval {
		return false, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Approval steps can only be resolved in %s status", StatusPendingApproval))
	}
	step := c.findStep(stepID)
	if step == nil {
		return false, shared.NewDomainError("STEP_NOT_FOUND", "Approval step not found")
	}
	if err := step.Approve(comment); err != nil {
		return false, err
	}
	if !c.AllStepsApproved() {
		return false, nil
	}
	if err := c.transitionTo(StatusSentForSignature); err != nil {
		return false, err
	}
	c.initSigning()
	return true, nil
}

// RejectStep resolves one step REJECTED and reverts the contract to IN_REVIEW
// so a revised version can be submitted. The resolved steps stay on record
// until the next submission replaces them.
func (c *Contract) RejectStep(stepID uuid.UUID, comment string) error {
	if c.Status != StatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Approval steps can only be resolved in %s status", StatusPendingApproval))
	}
	step := c.findStep(stepID)
	if step == nil {
		return shared.NewDomainError("STEP_NOT_FOUND", "Approval step not found")
	}
	if err := step.Reject(comment); err != nil {
		return err
	}
	return c.transitionTo(StatusInReview)
}

func (c *Contract) initSigning() {
	now := time.Now()
	s := SigningAwaitingInternal
	c.SigningStatus = &s
	c.SigningUpdatedAt = &now
}

// UpdateSigning advances the signing sub-machine. Forward-only: an attempt to
// write an earlier stage is rejected; rewriting the current stage is an
// idempotent no-op apart from the timestamp.
func (c *Contract) UpdateSigning(target SigningStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_SIGNING_STATUS", "Unknown signing status")
	}
	if c.SigningStatus == nil {
		return shared.NewDomainError("INVALID_STATE", "Contract has not been sent for signature")
	}
	if !c.SigningStatus.CanAdvanceTo(target) {
		return shared.ErrSigningRegression
	}
	now := time.Now()
	c.SigningStatus = &target
	c.SigningUpdatedAt = &now
	c.UpdatedAt = now
	return nil
}

// MarkExecuted records the explicit "mark executed" action after the
// counterparty signed. Pins the executed version to the latest one.
func (c *Contract) MarkExecuted() error {
	if err := c.transitionTo(StatusFullyExecuted); err != nil {
		return err
	}
	if latest := c.LatestVersion(); latest != nil {
		c.ExecutedVersionID = &latest.ID
	}
	return nil
}

// Activate puts an executed contract into force
func (c *Contract) Activate() error {
	return c.transitionTo(StatusActive)
}

// Expire force-expires an active contract past its end date
func (c *Contract) Expire() error {
	if err := c.transitionTo(StatusExpired); err != nil {
		return err
	}
	c.AddDomainEvent(NewContractExpiredEvent(c))
	return nil
}

// Terminate ends an active contract early
func (c *Contract) Terminate(reason string) error {
	if err := c.transitionTo(StatusTerminated); err != nil {
		return err
	}
	c.TerminationReason = reason
	return nil
}

// Supersede marks the predecessor of an activated renewal successor
func (c *Contract) Supersede() error {
	if err := c.transitionTo(StatusSuperseded); err != nil {
		return err
	}
	c.AddDomainEvent(NewContractSupersededEvent(c))
	return nil
}

// Archive soft-archives a contract; terminal contracts stay as they are
func (c *Contract) Archive() error {
	return c.transitionTo(StatusArchived)
}

// ApplyRenewAsIs extends the contract in place with the renewed end date and
// uplifted value
func (c *Contract) ApplyRenewAsIs(newEndDate time.Time, newValue decimal.Decimal) error {
	if c.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active contracts can be renewed as-is")
	}
	c.EndDate = &newEndDate
	c.Value = newValue
	c.Touch()
	c.AddDomainEvent(NewContractRenewedEvent(c))
	return nil
}

// OpenRenewal returns the attached renewal request while it is open
func (c *Contract) OpenRenewal() *RenewalRequest {
	if c.RenewalRequest != nil && c.RenewalRequest.IsOpen() {
		return c.RenewalRequest
	}
	return nil
}

// HasParent returns true when this contract is a renewal successor
func (c *Contract) HasParent() bool {
	return c.ParentContractID != nil && *c.ParentContractID != uuid.Nil
}

// IsOverdue reports whether an active contract's end date lies strictly
// before the reference day (day granularity, time-of-day ignored)
func (c *Contract) IsOverdue(now time.Time) bool {
	if c.Status != StatusActive || c.EndDate == nil {
		return false
	}
	end := c.EndDate
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return endDay.Before(today)
}

// UpliftedValue applies a percentage uplift to the contract value
func UpliftedValue(value, upliftPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(upliftPercent.Div(decimal.NewFromInt(100)))
	return value.Mul(factor).Round(2)
}
