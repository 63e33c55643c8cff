package handler

import (
	contractapp "github.com/contractflow/backend/internal/application/contract"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles contract lifecycle API endpoints
type ContractHandler struct {
	BaseHandler
	lifecycleService *contractapp.LifecycleService
	documentService  *contractapp.DocumentService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(lifecycleService *contractapp.LifecycleService, documentService *contractapp.DocumentService) *ContractHandler {
	return &ContractHandler{
		lifecycleService: lifecycleService,
		documentService:  documentService,
	}
}

// AddCommentRequest represents a request to comment on a contract version
type AddCommentRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}

// RegisterRoutes implements the router registrar interface
func (h *ContractHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST("", h.Create)
		contracts.GET("", h.List)
		contracts.GET(":id", h.GetByID)
		contracts.POST(":id/transition", h.Transition)
		contracts.POST(":id/submit", h.SubmitVersion)
		contracts.POST(":id/approvers", h.AssignApprovers)
		contracts.POST(":id/approve", h.ApproveStep)
		contracts.POST(":id/reject", h.RejectStep)
		contracts.POST(":id/signing", h.UpdateSigning)
		contracts.POST(":id/execute", h.MarkExecuted)
		contracts.POST(":id/activate", h.Activate)
		contracts.POST(":id/terminate", h.Terminate)
		contracts.POST(":id/archive", h.Archive)
		contracts.POST(":id/documents/upload-url", h.RequestDocumentUpload)
		contracts.GET(":id/documents/:versionId/download-url", h.DocumentDownloadURL)
	}

	versions := rg.Group("/versions")
	{
		versions.POST(":id/comments", h.AddVersionComment)
	}
}

// Create registers a new contract draft
func (h *ContractHandler) Create(c *gin.Context) {
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

	var req contractapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.lifecycleService.Create(c.Request.Context(), companyID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, contract)
}

// GetByID returns the full contract aggregate
func (h *ContractHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	contract, err := h.lifecycleService.GetByID(c.Request.Context(), companyID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// List returns a paginated list of contracts
func (h *ContractHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var filter contractapp.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	contracts, total, err := h.lifecycleService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// Transition applies a raw lifecycle action with an arbitrary payload
func (h *ContractHandler) Transition(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.Transition(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// SubmitVersion submits a draft as a new version for review
func (h *ContractHandler) SubmitVersion(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.SubmitVersionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.SubmitVersion(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// AssignApprovers moves the contract into approval with the given chain
func (h *ContractHandler) AssignApprovers(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.AssignApproversRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.AssignApprovers(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// ApproveStep records an approval decision on one step
func (h *ContractHandler) ApproveStep(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.ResolveStepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.ApproveStep(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// RejectStep records a rejection on one step and sends the contract back to review
func (h *ContractHandler) RejectStep(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.ResolveStepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.RejectStep(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// UpdateSigning advances the signing progress of a contract out for signature
func (h *ContractHandler) UpdateSigning(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.SigningUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.UpdateSigning(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// MarkExecuted marks a fully signed contract as executed
func (h *ContractHandler) MarkExecuted(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		contract, err := h.lifecycleService.MarkExecuted(c.Request.Context(), companyID, userID, contractID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// Activate brings an executed contract into force
func (h *ContractHandler) Activate(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		contract, err := h.lifecycleService.Activate(c.Request.Context(), companyID, userID, contractID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// Terminate ends a contract early with a reason
func (h *ContractHandler) Terminate(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		var req contractapp.TerminateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		contract, err := h.lifecycleService.Terminate(c.Request.Context(), companyID, userID, contractID, req)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// Archive removes a non-terminal contract from the working set
func (h *ContractHandler) Archive(c *gin.Context) {
	h.withContract(c, func(companyID, userID, contractID uuid.UUID) {
		contract, err := h.lifecycleService.Archive(c.Request.Context(), companyID, userID, contractID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, contract)
	})
}

// AddVersionComment attaches a comment to a contract version
func (h *ContractHandler) AddVersionComment(c *gin.Context) {
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

	versionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid version ID format")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	comment, err := h.lifecycleService.AddVersionComment(c.Request.Context(), companyID, userID, versionID, req.Body)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, comment)
}

// RequestDocumentUpload issues a presigned upload URL for a contract document
func (h *ContractHandler) RequestDocumentUpload(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req contractapp.RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	upload, err := h.documentService.RequestUpload(c.Request.Context(), companyID, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, upload)
}

// DocumentDownloadURL issues a presigned download URL for a version's document
func (h *ContractHandler) DocumentDownloadURL(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	versionID, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		h.BadRequest(c, "Invalid version ID format")
		return
	}

	download, err := h.documentService.DownloadURL(c.Request.Context(), companyID, contractID, versionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, download)
}

// withContract parses company, user and contract identity before running fn
func (h *ContractHandler) withContract(c *gin.Context, fn func(companyID, userID, contractID uuid.UUID)) {
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
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}
	fn(companyID, userID, contractID)
}
