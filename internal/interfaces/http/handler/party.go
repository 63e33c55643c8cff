package handler

import (
	partyapp "github.com/contractflow/backend/internal/application/party"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartyHandler handles party directory API endpoints
type PartyHandler struct {
	BaseHandler
	directoryService *partyapp.DirectoryService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(directoryService *partyapp.DirectoryService) *PartyHandler {
	return &PartyHandler{
		directoryService: directoryService,
	}
}

// RegisterRoutes implements the router registrar interface
func (h *PartyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET(":id", h.GetUser)
	}

	counterparties := rg.Group("/counterparties")
	{
		counterparties.POST("", h.CreateCounterparty)
		counterparties.GET("", h.ListCounterparties)
		counterparties.GET(":id", h.GetCounterparty)
	}

	properties := rg.Group("/properties")
	{
		properties.POST("", h.CreateProperty)
		properties.GET("", h.ListProperties)
		properties.GET(":id", h.GetProperty)
	}
}

// CreateUser registers a user reference
func (h *PartyHandler) CreateUser(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req partyapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.directoryService.CreateUser(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, user)
}

// ListUsers lists the company's users
func (h *PartyHandler) ListUsers(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	users, err := h.directoryService.ListUsers(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, users)
}

// GetUser returns one user
func (h *PartyHandler) GetUser(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	user, err := h.directoryService.GetUser(c.Request.Context(), companyID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, user)
}

// CreateCounterparty registers a counterparty
func (h *PartyHandler) CreateCounterparty(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req partyapp.CreateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	counterparty, err := h.directoryService.CreateCounterparty(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, counterparty)
}

// ListCounterparties lists the company's counterparties
func (h *PartyHandler) ListCounterparties(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	counterparties, err := h.directoryService.ListCounterparties(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, counterparties)
}

// GetCounterparty returns one counterparty
func (h *PartyHandler) GetCounterparty(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	counterpartyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid counterparty ID format")
		return
	}

	counterparty, err := h.directoryService.GetCounterparty(c.Request.Context(), companyID, counterpartyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, counterparty)
}

// CreateProperty registers a property
func (h *PartyHandler) CreateProperty(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req partyapp.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	property, err := h.directoryService.CreateProperty(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, property)
}

// ListProperties lists the company's properties
func (h *PartyHandler) ListProperties(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	properties, err := h.directoryService.ListProperties(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, properties)
}

// GetProperty returns one property
func (h *PartyHandler) GetProperty(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	property, err := h.directoryService.GetProperty(c.Request.Context(), companyID, propertyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, property)
}
