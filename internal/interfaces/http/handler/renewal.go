package handler

import (
	contractapp "github.com/contractflow/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RenewalHandler handles renewal workflow API endpoints
type RenewalHandler struct {
	BaseHandler
	renewalService *contractapp.RenewalService
}

// NewRenewalHandler creates a new RenewalHandler
func NewRenewalHandler(renewalService *contractapp.RenewalService) *RenewalHandler {
	return &RenewalHandler{
		renewalService: renewalService,
	}
}

// RenewalNotesRequest carries optional notes on a renewal shortcut
type RenewalNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// RegisterRoutes implements the router registrar interface
func (h *RenewalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST(":id/renewals", h.Create)
		contracts.POST(":id/renewals/renew-as-is", h.RenewAsIs)
		contracts.POST(":id/renewals/renegotiate", h.StartRenegotiation)
	}

	renewals := rg.Group("/renewals")
	{
		renewals.POST(":id/decision", h.Decide)
		renewals.PUT(":id/terms", h.UpdateTerms)
		renewals.POST(":id/feedback", h.AddFeedback)
		renewals.GET(":id/feedback", h.ListFeedback)
	}
}

// Create queues a renewal request for a contract
func (h *RenewalHandler) Create(c *gin.Context) {
	companyID, userID, resourceID, ok := h.identity(c, "contract")
	if !ok {
		return
	}

	var req contractapp.CreateRenewalRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	renewal, err := h.renewalService.CreateRenewalRequest(c.Request.Context(), companyID, userID, resourceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, renewal)
}

// Decide records the renewal mode decision on an open request
func (h *RenewalHandler) Decide(c *gin.Context) {
	companyID, userID, requestID, ok := h.identity(c, "renewal request")
	if !ok {
		return
	}

	var req contractapp.DecideRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	renewal, err := h.renewalService.DecideRenewal(c.Request.Context(), companyID, userID, requestID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, renewal)
}

// RenewAsIs rolls the contract forward on unchanged terms
func (h *RenewalHandler) RenewAsIs(c *gin.Context) {
	companyID, userID, contractID, ok := h.identity(c, "contract")
	if !ok {
		return
	}

	var req RenewalNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.renewalService.RenewAsIs(c.Request.Context(), companyID, userID, contractID, req.Notes)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// StartRenegotiation spawns a successor draft linked to the active contract
func (h *RenewalHandler) StartRenegotiation(c *gin.Context) {
	companyID, userID, contractID, ok := h.identity(c, "contract")
	if !ok {
		return
	}

	var req RenewalNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.renewalService.StartRenegotiation(c.Request.Context(), companyID, userID, contractID, req.Notes)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// UpdateTerms adjusts the negotiated renewal parameters of an open request
func (h *RenewalHandler) UpdateTerms(c *gin.Context) {
	companyID, userID, requestID, ok := h.identity(c, "renewal request")
	if !ok {
		return
	}

	var req contractapp.UpdateRenewalTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	renewal, err := h.renewalService.UpdateRenewalTerms(c.Request.Context(), companyID, userID, requestID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, renewal)
}

// AddFeedback attaches a note to an in-flight renewal request
func (h *RenewalHandler) AddFeedback(c *gin.Context) {
	companyID, userID, requestID, ok := h.identity(c, "renewal request")
	if !ok {
		return
	}

	var req contractapp.AddFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.renewalService.AddFeedback(c.Request.Context(), companyID, userID, requestID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, feedback)
}

// ListFeedback returns the feedback trail of a renewal request
func (h *RenewalHandler) ListFeedback(c *gin.Context) {
	companyID, userID, requestID, ok := h.identity(c, "renewal request")
	if !ok {
		return
	}

	feedback, err := h.renewalService.ListFeedback(c.Request.Context(), companyID, userID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, feedback)
}

// identity parses company, user and the :id path parameter
func (h *RenewalHandler) identity(c *gin.Context, what string) (companyID, userID, resourceID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	userID, err = getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	resourceID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid "+what+" ID format")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return companyID, userID, resourceID, true
}
