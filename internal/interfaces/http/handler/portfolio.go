package handler

import (
	contractapp "github.com/contractflow/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
)

// PortfolioHandler handles the portfolio view API endpoints
type PortfolioHandler struct {
	BaseHandler
	portfolioService *contractapp.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *contractapp.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// RegisterRoutes implements the router registrar interface
func (h *PortfolioHandler) RegisterRoutes(rg *gin.RouterGroup) {
	portfolio := rg.Group("/portfolio")
	{
		portfolio.GET("", h.Load)
	}
}

// Load returns the fully assembled contract aggregates of the company
func (h *PortfolioHandler) Load(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	contracts, err := h.portfolioService.LoadAggregates(c.Request.Context(), companyID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contracts)
}
