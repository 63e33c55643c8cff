package contract

import (
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Contract DTOs ====================

// CreateContractRequest represents a request to create a contract draft
type CreateContractRequest struct {
	Title             string           `json:"title" binding:"required,min=1,max=255"`
	Type              string           `json:"type" binding:"required"`
	RiskLevel         string           `json:"risk_level"`
	EffectiveDate     *time.Time       `json:"effective_date"`
	StartDate         *time.Time       `json:"start_date"`
	EndDate           *time.Time       `json:"end_date"`
	Value             decimal.Decimal  `json:"value"`
	BillingFrequency  string           `json:"billing_frequency" binding:"required"`
	SeasonalMonths    []string         `json:"seasonal_months"`
	AllocationType    string           `json:"allocation_type"`
	OwnerID           uuid.UUID        `json:"owner_id" binding:"required"`
	CounterpartyID    uuid.UUID        `json:"counterparty_id" binding:"required"`
	PropertyID        *uuid.UUID       `json:"property_id"`
	AutoRenew         bool             `json:"auto_renew"`
	NoticePeriodDays  int              `json:"notice_period_days"`
	RenewalTermMonths int              `json:"renewal_term_months"`
	UpliftPercent     *decimal.Decimal `json:"uplift_percent"`
	InitialContent    string           `json:"initial_content"`
}

// TransitionRequest represents a lifecycle transition command
type TransitionRequest struct {
	Action  string                 `json:"action" binding:"required"`
	Payload map[string]interface{} `json:"payload"`
}

// SubmitVersionRequest represents a new contract version submission
type SubmitVersionRequest struct {
	Content string `json:"content"`
	FileKey string `json:"file_key"`
}

// AssignApproversRequest represents the approver assignment command
type AssignApproversRequest struct {
	Approvers []uuid.UUID `json:"approvers" binding:"required,min=1"`
}

// ResolveStepRequest represents an approve/reject decision on one step
type ResolveStepRequest struct {
	StepID  uuid.UUID `json:"step_id" binding:"required"`
	Comment string    `json:"comment"`
}

// SigningUpdateRequest represents a signing sub-machine advance
type SigningUpdateRequest struct {
	SigningStatus string `json:"signing_status" binding:"required"`
}

// TerminateRequest represents an early termination command
type TerminateRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ContractListFilter represents filter options for the contract list
type ContractListFilter struct {
	Search         string     `form:"search"`
	Status         *string    `form:"status"`
	Statuses       []string   `form:"statuses"`
	Type           *string    `form:"type"`
	OwnerID        *uuid.UUID `form:"owner_id"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	PropertyID     *uuid.UUID `form:"property_id"`
	EndBefore      *time.Time `form:"end_before"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir"`
}

// ==================== Renewal DTOs ====================

// CreateRenewalRequestInput represents a request to queue a renewal
type CreateRenewalRequestInput struct {
	OwnerID *uuid.UUID `json:"owner_id"`
	Notes   string     `json:"notes"`
}

// DecideRenewalRequest represents a renewal mode decision
type DecideRenewalRequest struct {
	Mode  string `json:"mode" binding:"required"`
	Notes string `json:"notes"`
}

// UpdateRenewalTermsRequest represents negotiated renewal parameter changes
type UpdateRenewalTermsRequest struct {
	RenewalTermMonths *int             `json:"renewal_term_months"`
	NoticePeriodDays  *int             `json:"notice_period_days"`
	UpliftPercent     *decimal.Decimal `json:"uplift_percent"`
}

// AddFeedbackRequest represents a note on an in-flight renewal
type AddFeedbackRequest struct {
	Body string `json:"body" binding:"required,min=1"`
}

// ==================== Responses ====================

// VersionResponse represents a contract version in responses
type VersionResponse struct {
	ID               uuid.UUID         `json:"id"`
	VersionNumber    int               `json:"version_number"`
	AuthorID         uuid.UUID         `json:"author_id"`
	Content          string            `json:"content"`
	FileKey          string            `json:"file_key,omitempty"`
	Value            decimal.Decimal   `json:"value"`
	EffectiveDate    *time.Time        `json:"effective_date,omitempty"`
	EndDate          *time.Time        `json:"end_date,omitempty"`
	BillingFrequency string            `json:"billing_frequency"`
	Comments         []CommentResponse `json:"comments"`
	CreatedAt        time.Time         `json:"created_at"`
}

// CommentResponse represents a version comment in responses
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ApprovalStepResponse represents an approval step in responses
type ApprovalStepResponse struct {
	ID         uuid.UUID  `json:"id"`
	ApproverID uuid.UUID  `json:"approver_id"`
	Status     string     `json:"status"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Comment    string     `json:"comment,omitempty"`
}

// AllocationResponse represents a property allocation in responses
type AllocationResponse struct {
	ID             uuid.UUID                  `json:"id"`
	PropertyID     *uuid.UUID                 `json:"property_id,omitempty"`
	PortfolioWide  bool                       `json:"portfolio_wide"`
	MonthlyValues  map[string]decimal.Decimal `json:"monthly_values"`
	ManualMonths   []string                   `json:"manual_months"`
	AllocatedTotal decimal.Decimal            `json:"allocated_total"`
}

// FeedbackResponse represents renewal feedback in responses
type FeedbackResponse struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// RenewalRequestResponse represents a renewal request in responses
type RenewalRequestResponse struct {
	ID                       uuid.UUID          `json:"id"`
	ContractID               uuid.UUID          `json:"contract_id"`
	Status                   string             `json:"status"`
	Mode                     *string            `json:"mode,omitempty"`
	RenewalTermMonths        *int               `json:"renewal_term_months,omitempty"`
	NoticePeriodDays         *int               `json:"notice_period_days,omitempty"`
	UpliftPercent            *decimal.Decimal   `json:"uplift_percent,omitempty"`
	NoticeDeadline           time.Time          `json:"notice_deadline"`
	InternalDecisionDeadline time.Time          `json:"internal_decision_deadline"`
	Notes                    string             `json:"notes,omitempty"`
	OwnerID                  uuid.UUID          `json:"owner_id"`
	Feedback                 []FeedbackResponse `json:"feedback"`
	CreatedAt                time.Time          `json:"created_at"`
	UpdatedAt                time.Time          `json:"updated_at"`
}

// AuditEntryResponse represents an audit entry in responses
type AuditEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Action     string     `json:"action"`
	FromStatus string     `json:"from_status,omitempty"`
	ToStatus   string     `json:"to_status,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PartyRefResponse is a resolved owner/counterparty/property reference
type PartyRefResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ContractResponse represents a fully assembled contract
type ContractResponse struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        uuid.UUID       `json:"company_id"`
	Title            string          `json:"title"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	RiskLevel        string          `json:"risk_level"`
	EffectiveDate    *time.Time      `json:"effective_date,omitempty"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	Value            decimal.Decimal `json:"value"`
	BillingFrequency string          `json:"billing_frequency"`
	SeasonalMonths   []string        `json:"seasonal_months,omitempty"`
	AllocationType   string          `json:"allocation_type"`

	OwnerID        uuid.UUID         `json:"owner_id"`
	Owner          *PartyRefResponse `json:"owner,omitempty"`
	CounterpartyID uuid.UUID         `json:"counterparty_id"`
	Counterparty   *PartyRefResponse `json:"counterparty,omitempty"`
	PropertyID     *uuid.UUID        `json:"property_id,omitempty"`
	Property       *PartyRefResponse `json:"property,omitempty"`

	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	ReviewStartedAt     *time.Time `json:"review_started_at,omitempty"`
	ApprovalStartedAt   *time.Time `json:"approval_started_at,omitempty"`
	ApprovalCompletedAt *time.Time `json:"approval_completed_at,omitempty"`
	SentForSignatureAt  *time.Time `json:"sent_for_signature_at,omitempty"`
	ExecutedAt          *time.Time `json:"executed_at,omitempty"`
	ActiveAt            *time.Time `json:"active_at,omitempty"`
	ExpiredAt           *time.Time `json:"expired_at,omitempty"`
	TerminatedAt        *time.Time `json:"terminated_at,omitempty"`
	SupersededAt        *time.Time `json:"superseded_at,omitempty"`
	ArchivedAt          *time.Time `json:"archived_at,omitempty"`

	DraftVersionID    *uuid.UUID `json:"draft_version_id,omitempty"`
	ExecutedVersionID *uuid.UUID `json:"executed_version_id,omitempty"`

	AutoRenew         bool            `json:"auto_renew"`
	NoticePeriodDays  int             `json:"notice_period_days"`
	RenewalTermMonths int             `json:"renewal_term_months"`
	UpliftPercent     decimal.Decimal `json:"uplift_percent"`
	ParentContractID  *uuid.UUID      `json:"parent_contract_id,omitempty"`

	SigningStatus    *string    `json:"signing_status,omitempty"`
	SigningUpdatedAt *time.Time `json:"signing_updated_at,omitempty"`

	TerminationReason string `json:"termination_reason,omitempty"`

	Versions       []VersionResponse       `json:"versions"`
	ApprovalSteps  []ApprovalStepResponse  `json:"approval_steps"`
	Allocations    []AllocationResponse    `json:"allocations"`
	RenewalRequest *RenewalRequestResponse `json:"renewal_request,omitempty"`
	AuditEntries   []AuditEntryResponse    `json:"audit_entries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ContractListItemResponse represents a contract in list responses
type ContractListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	RiskLevel        string          `json:"risk_level"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	Value            decimal.Decimal `json:"value"`
	BillingFrequency string          `json:"billing_frequency"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	SigningStatus    *string         `json:"signing_status,omitempty"`
	ParentContractID *uuid.UUID      `json:"parent_contract_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StartRenegotiationResponse reports the successor created for a renewal
type StartRenegotiationResponse struct {
	Successor      ContractResponse       `json:"successor"`
	PredecessorID  uuid.UUID              `json:"predecessor_id"`
	RenewalRequest RenewalRequestResponse `json:"renewal_request"`
}

// ==================== Converters ====================

// ToVersionResponse converts a domain version to a response DTO
func ToVersionResponse(v *contract.ContractVersion) VersionResponse {
	comments := make([]CommentResponse, len(v.Comments))
	for i := range v.Comments {
		comments[i] = CommentResponse{
			ID:        v.Comments[i].ID,
			AuthorID:  v.Comments[i].AuthorID,
			Body:      v.Comments[i].Body,
			CreatedAt: v.Comments[i].CreatedAt,
		}
	}
	return VersionResponse{
		ID:               v.ID,
		VersionNumber:    v.VersionNumber,
		AuthorID:         v.AuthorID,
		Content:          v.Content,
		FileKey:          v.FileKey,
		Value:            v.Value,
		EffectiveDate:    v.EffectiveDate,
		EndDate:          v.EndDate,
		BillingFrequency: string(v.BillingFrequency),
		Comments:         comments,
		CreatedAt:        v.CreatedAt,
	}
}

// ToApprovalStepResponse converts a domain step to a response DTO
func ToApprovalStepResponse(s *contract.ApprovalStep) ApprovalStepResponse {
	return ApprovalStepResponse{
		ID:         s.ID,
		ApproverID: s.ApproverID,
		Status:     string(s.Status),
		ApprovedAt: s.ApprovedAt,
		Comment:    s.Comment,
	}
}

// ToAllocationResponse converts a domain allocation to a response DTO
func ToAllocationResponse(a *contract.PropertyAllocation) AllocationResponse {
	return AllocationResponse{
		ID:             a.ID,
		PropertyID:     a.PropertyID,
		PortfolioWide:  a.PortfolioWide,
		MonthlyValues:  a.MonthlyValues,
		ManualMonths:   a.ManualMonths,
		AllocatedTotal: a.AllocatedTotal,
	}
}

// ToRenewalRequestResponse converts a domain renewal request to a response DTO
func ToRenewalRequestResponse(r *contract.RenewalRequest) RenewalRequestResponse {
	feedback := make([]FeedbackResponse, len(r.Feedback))
	for i := range r.Feedback {
		feedback[i] = FeedbackResponse{
			ID:        r.Feedback[i].ID,
			AuthorID:  r.Feedback[i].AuthorID,
			Body:      r.Feedback[i].Body,
			CreatedAt: r.Feedback[i].CreatedAt,
		}
	}
	var mode *string
	if r.Mode != nil {
		m := string(*r.Mode)
		mode = &m
	}
	return RenewalRequestResponse{
		ID:                       r.ID,
		ContractID:               r.ContractID,
		Status:                   string(r.Status),
		Mode:                     mode,
		RenewalTermMonths:        r.RenewalTermMonths,
		NoticePeriodDays:         r.NoticePeriodDays,
		UpliftPercent:            r.UpliftPercent,
		NoticeDeadline:           r.NoticeDeadline,
		InternalDecisionDeadline: r.InternalDecisionDeadline,
		Notes:                    r.Notes,
		OwnerID:                  r.OwnerID,
		Feedback:                 feedback,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

// ToAuditEntryResponse converts a domain audit entry to a response DTO
func ToAuditEntryResponse(e *contract.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Detail:     e.Detail,
		CreatedAt:  e.CreatedAt,
	}
}

// ToContractResponse converts an assembled domain contract to a response DTO
func ToContractResponse(c *contract.Contract) ContractResponse {
	versions := make([]VersionResponse, len(c.Versions))
	for i := range c.Versions {
		versions[i] = ToVersionResponse(&c.Versions[i])
	}
	steps := make([]ApprovalStepResponse, len(c.ApprovalSteps))
	for i := range c.ApprovalSteps {
		steps[i] = ToApprovalStepResponse(&c.ApprovalSteps[i])
	}
	allocations := make([]AllocationResponse, len(c.Allocations))
	for i := range c.Allocations {
		allocations[i] = ToAllocationResponse(&c.Allocations[i])
	}
	audits := make([]AuditEntryResponse, len(c.AuditEntries))
	for i := range c.AuditEntries {
		audits[i] = ToAuditEntryResponse(&c.AuditEntries[i])
	}

	var renewal *RenewalRequestResponse
	if c.RenewalRequest != nil {
		r := ToRenewalRequestResponse(c.RenewalRequest)
		renewal = &r
	}

	var signing *string
	if c.SigningStatus != nil {
		s := string(*c.SigningStatus)
		signing = &s
	}

	resp := ContractResponse{
		ID:                  c.ID,
		CompanyID:           c.CompanyID,
		Title:               c.Title,
		Type:                string(c.Type),
		Status:              string(c.Status),
		RiskLevel:           string(c.RiskLevel),
		EffectiveDate:       c.EffectiveDate,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		Value:               c.Value,
		BillingFrequency:    string(c.BillingFrequency),
		SeasonalMonths:      c.SeasonalMonths,
		AllocationType:      string(c.AllocationType),
		OwnerID:             c.OwnerID,
		CounterpartyID:      c.CounterpartyID,
		PropertyID:          c.PropertyID,
		SubmittedAt:         c.SubmittedAt,
		ReviewStartedAt:     c.ReviewStartedAt,
		ApprovalStartedAt:   c.ApprovalStartedAt,
		ApprovalCompletedAt: c.ApprovalCompletedAt,
		SentForSignatureAt:  c.SentForSignatureAt,
		ExecutedAt:          c.ExecutedAt,
		ActiveAt:            c.ActiveAt,
		ExpiredAt:           c.ExpiredAt,
		TerminatedAt:        c.TerminatedAt,
		SupersededAt:        c.SupersededAt,
		ArchivedAt:          c.ArchivedAt,
		DraftVersionID:      c.DraftVersionID,
		ExecutedVersionID:   c.ExecutedVersionID,
		AutoRenew:           c.AutoRenew,
		NoticePeriodDays:    c.NoticePeriodDays,
		RenewalTermMonths:   c.RenewalTermMonths,
		UpliftPercent:       c.UpliftPercent,
		ParentContractID:    c.ParentContractID,
		SigningStatus:       signing,
		SigningUpdatedAt:    c.SigningUpdatedAt,
		TerminationReason:   c.TerminationReason,
		Versions:            versions,
		ApprovalSteps:       steps,
		Allocations:         allocations,
		RenewalRequest:      renewal,
		AuditEntries:        audits,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		Version:             c.Version,
	}

	if c.Owner != nil {
		resp.Owner = &PartyRefResponse{ID: c.Owner.ID, Name: c.Owner.FullName}
	}
	if c.Counterparty != nil {
		resp.Counterparty = &PartyRefResponse{ID: c.Counterparty.ID, Name: c.Counterparty.Name}
	}
	if c.Property != nil {
		resp.Property = &PartyRefResponse{ID: c.Property.ID, Name: c.Property.Name}
	}

	return resp
}

// ToContractListItemResponse converts a domain contract to a list item DTO
func ToContractListItemResponse(c *contract.Contract) ContractListItemResponse {
	var signing *string
	if c.SigningStatus != nil {
		s := string(*c.SigningStatus)
		signing = &s
	}
	return ContractListItemResponse{
		ID:               c.ID,
		Title:            c.Title,
		Type:             string(c.Type),
		Status:           string(c.Status),
		RiskLevel:        string(c.RiskLevel),
		EndDate:          c.EndDate,
		Value:            c.Value,
		BillingFrequency: string(c.BillingFrequency),
		OwnerID:          c.OwnerID,
		CounterpartyID:   c.CounterpartyID,
		SigningStatus:    signing,
		ParentContractID: c.ParentContractID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ToContractListItemResponses converts a contract slice to list item DTOs
func ToContractListItemResponses(contracts []contract.Contract) []ContractListItemResponse {
	items := make([]ContractListItemResponse, len(contracts))
	for i := range contracts {
		items[i] = ToContractListItemResponse(&contracts[i])
	}
	return items
}
