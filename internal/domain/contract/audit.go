package contract

import (
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditEntry records who did what to a contract. The transition store writes
// one entry in the same commit as every status change.
type AuditEntry struct {
	shared.BaseEntity
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ContractID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Action     string     `gorm:"size:50;not null"`
	FromStatus string     `gorm:"size:30"`
	ToStatus   string     `gorm:"size:30"`
	Detail     string     `gorm:"type:text"`
}

// TableName returns the database table name
func (AuditEntry) TableName() string { return "audit_entries" }

// NewAuditEntry creates an audit record for a contract action
func NewAuditEntry(companyID, contractID uuid.UUID, actorID *uuid.UUID, action, fromStatus, toStatus, detail string) *AuditEntry {
	return &AuditEntry{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		ContractID: contractID,
		ActorID:    actorID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Detail:     detail,
	}
}
