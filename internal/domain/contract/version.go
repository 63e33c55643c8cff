package contract

import (
	"time"

	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractVersion is a numbered snapshot of the negotiated document and its
// commercial terms. Numbers are 1-based, contiguous and strictly increasing
// per contract.
type ContractVersion struct {
	shared.BaseEntity
	ContractID    uuid.UUID `gorm:"type:uuid;not null;index"`
	VersionNumber int       `gorm:"not null"`
	AuthorID      uuid.UUID `gorm:"type:uuid;not null"`
	Content       string    `gorm:"type:text"`
	FileKey       string    `gorm:"size:500"`

	// Snapshot of the commercial terms at the time this version was drafted
	Value            decimal.Decimal  `gorm:"type:decimal(18,2)"`
	EffectiveDate    *time.Time       `gorm:"type:date"`
	EndDate          *time.Time       `gorm:"type:date"`
	BillingFrequency BillingFrequency `gorm:"size:20"`
	PropertyID       *uuid.UUID       `gorm:"type:uuid"` // optional override of the contract-level property

	Comments []VersionComment `gorm:"-"`
}

// TableName returns the database table name
func (ContractVersion) TableName() string { return "contract_versions" }

// NewContractVersion creates a version snapshot for a contract. The caller is
// responsible for passing the next contiguous version number.
func NewContractVersion(contractID, authorID uuid.UUID, versionNumber int, content string) (*ContractVersion, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author ID cannot be empty")
	}
	if versionNumber < 1 {
		return nil, shared.NewDomainError("INVALID_VERSION_NUMBER", "Version numbers start at 1")
	}
	return &ContractVersion{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    contractID,
		VersionNumber: versionNumber,
		AuthorID:      authorID,
		Content:       content,
	}, nil
}

// SnapshotTerms copies the contract's current commercial terms into the version
func (v *ContractVersion) SnapshotTerms(value decimal.Decimal, effectiveDate, endDate *time.Time, frequency BillingFrequency, propertyID *uuid.UUID) {
	v.Value = value
	v.EffectiveDate = effectiveDate
	v.EndDate = endDate
	v.BillingFrequency = frequency
	v.PropertyID = propertyID
	v.Touch()
}

// AttachFile records the stored document key for this version
func (v *ContractVersion) AttachFile(fileKey string) {
	v.FileKey = fileKey
	v.Touch()
}

// VersionComment is reviewer feedback attached to a specific version
type VersionComment struct {
	shared.BaseEntity
	VersionID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Body      string    `gorm:"type:text;not null"`
}

// TableName returns the database table name
func (VersionComment) TableName() string { return "version_comments" }

// NewVersionComment creates a comment on a contract version
func NewVersionComment(versionID, authorID uuid.UUID, body string) (*VersionComment, error) {
	if body == "" {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment body cannot be empty")
	}
	return &VersionComment{
		BaseEntity: shared.NewBaseEntity(),
		VersionID:  versionID,
		AuthorID:   authorID,
		Body:       body,
	}, nil
}
