package contract

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage defines the interface for document storage operations.
// Implemented by the infrastructure layer against any S3-compatible backend.
type ObjectStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// RequestUploadRequest asks for a presigned upload slot for a contract document
type RequestUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// DocumentUploadResponse carries the presigned upload URL and the key the
// client must echo back when submitting the version
type DocumentUploadResponse struct {
	FileKey   string    `json:"file_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentDownloadResponse carries a presigned download URL
type DocumentDownloadResponse struct {
	FileKey     string    `json:"file_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// allowedDocumentTypes maps accepted content types to their extensions
var allowedDocumentTypes = map[string][]string{
	"application/pdf": {".pdf"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"application/msword": {".doc"},
	"text/plain":         {".txt"},
}

// DocumentService issues presigned URLs for contract document files. The
// actual bytes never pass through the API; clients upload and download
// directly against object storage.
type DocumentService struct {
	contractRepo contract.ContractRepository
	versionRepo  contract.VersionRepository
	storage      ObjectStorage
	urlExpiry    time.Duration
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	contractRepo contract.ContractRepository,
	versionRepo contract.VersionRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		contractRepo: contractRepo,
		versionRepo:  versionRepo,
		storage:      storage,
		urlExpiry:    15 * time.Minute,
		logger:       logger,
	}
}

// RequestUpload validates the file and returns a presigned upload URL. The
// returned file key is what SubmitVersion later records on the version.
func (s *DocumentService) RequestUpload(ctx context.Context, companyID, contractID uuid.UUID, req RequestUploadRequest) (*DocumentUploadResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	if err := validateDocumentType(req.FileName, req.ContentType); err != nil {
		return nil, err
	}

	// The contract must exist in the caller's company before any storage
	// key is handed out
	c, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}

	fileKey := fmt.Sprintf("contracts/%s/%s/%s%s",
		companyID, c.ID, uuid.New(), strings.ToLower(path.Ext(req.FileName)))

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, fileKey, req.ContentType, s.urlExpiry)
	if err != nil {
		s.logger.Error("failed to presign upload",
			zap.String("contract_id", contractID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Could not prepare document upload")
	}

	return &DocumentUploadResponse{
		FileKey:   fileKey,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// DownloadURL returns a presigned download URL for the file attached to one
// version of a contract
func (s *DocumentService) DownloadURL(ctx context.Context, companyID, contractID, versionID uuid.UUID) (*DocumentDownloadResponse, error) {
	if companyID == uuid.Nil {
		return nil, shared.ErrMissingContext
	}

	if _, err := s.contractRepo.FindByIDForCompany(ctx, companyID, contractID); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.FindByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	var fileKey string
	for i := range versions {
		if versions[i].ID == versionID {
			fileKey = versions[i].FileKey
			break
		}
	}
	if fileKey == "" {
		return nil, shared.NewDomainError("NO_DOCUMENT", "The version has no document attached")
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, fileKey, s.urlExpiry)
	if err != nil {
		s.logger.Error("failed to presign download",
			zap.String("contract_id", contractID.String()),
			zap.String("version_id", versionID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Could not prepare document download")
	}

	return &DocumentDownloadResponse{
		FileKey:     fileKey,
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// validateDocumentType checks the content type and extension pair
func validateDocumentType(fileName, contentType string) error {
	extensions, ok := allowedDocumentTypes[contentType]
	if !ok {
		return shared.NewDomainError("UNSUPPORTED_DOCUMENT_TYPE",
			fmt.Sprintf("Content type %s is not accepted", contentType))
	}
	ext := strings.ToLower(path.Ext(fileName))
	for _, allowed := range extensions {
		if ext == allowed {
			return nil
		}
	}
	return shared.NewDomainError("UNSUPPORTED_DOCUMENT_TYPE",
		fmt.Sprintf("Extension %s does not match content type %s", ext, contentType))
}
