package contract

import (
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationType describes how a contract's value is spread across properties
type AllocationType string

const (
	AllocationPortfolio   AllocationType = "PORTFOLIO"
	AllocationPerProperty AllocationType = "PER_PROPERTY"
)

// IsValid checks if the type is a valid AllocationType
func (t AllocationType) IsValid() bool {
	return t == AllocationPortfolio || t == AllocationPerProperty
}

// PropertyAllocation distributes a slice of the contract value across a
// property (or the whole portfolio) as a per-month breakdown. Months are keyed
// "01".."12"; a month carrying a manual edit is never recomputed.
type PropertyAllocation struct {
	shared.BaseEntity
	ContractID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	PropertyID     *uuid.UUID `gorm:"type:uuid"` // nil marks a portfolio-wide allocation
	PortfolioWide  bool       `gorm:"not null;default:false"`
	MonthlyValues  MonthlyBreakdown `gorm:"serializer:json;type:jsonb"`
	ManualMonths   []string         `gorm:"serializer:json;type:jsonb"`
	AllocatedTotal decimal.Decimal  `gorm:"type:decimal(18,2)"`
}

// MonthlyBreakdown maps month keys ("01".."12") to allocated values
type MonthlyBreakdown map[string]decimal.Decimal

// TableName returns the database table name
func (PropertyAllocation) TableName() string { return "property_allocations" }

// NewPropertyAllocation creates an allocation for one property
func NewPropertyAllocation(contractID, propertyID uuid.UUID) (*PropertyAllocation, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	return &PropertyAllocation{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    contractID,
		PropertyID:    &propertyID,
		MonthlyValues: make(MonthlyBreakdown),
		ManualMonths:  make([]string, 0),
	}, nil
}

// NewPortfolioAllocation creates a portfolio-wide allocation
func NewPortfolioAllocation(contractID uuid.UUID) *PropertyAllocation {
	return &PropertyAllocation{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    contractID,
		PortfolioWide: true,
		MonthlyValues: make(MonthlyBreakdown),
		ManualMonths:  make([]string, 0),
	}
}

// SetMonth writes one month's value; manual marks protect it from recomputation
func (a *PropertyAllocation) SetMonth(month string, value decimal.Decimal, manual bool) error {
	if _, ok := monthKeys[month]; !ok {
		return shared.NewDomainError("INVALID_MONTH", "Month key must be 01..12")
	}
	a.MonthlyValues[month] = value
	if manual && !a.isManual(month) {
		a.ManualMonths = append(a.ManualMonths, month)
	}
	a.recalculateTotal()
	a.Touch()
	return nil
}

// CopyFrom duplicates another allocation's breakdown onto this one
func (a *PropertyAllocation) CopyFrom(src *PropertyAllocation) {
	a.PropertyID = src.PropertyID
	a.PortfolioWide = src.PortfolioWide
	a.MonthlyValues = make(MonthlyBreakdown, len(src.MonthlyValues))
	for k, v := range src.MonthlyValues {
		a.MonthlyValues[k] = v
	}
	a.ManualMonths = append([]string(nil), src.ManualMonths...)
	a.AllocatedTotal = src.AllocatedTotal
	a.Touch()
}

func (a *PropertyAllocation) isManual(month string) bool {
	for _, m := range a.ManualMonths {
		if m == month {
			return true
		}
	}
	return false
}

func (a *PropertyAllocation) recalculateTotal() {
	total := decimal.Zero
	for _, v := range a.MonthlyValues {
		total = total.Add(v)
	}
	a.AllocatedTotal = total
}

var monthKeys = map[string]struct{}{
	"01": {}, "02": {}, "03": {}, "04": {}, "05": {}, "06": {},
	"07": {}, "08": {}, "09": {}, "10": {}, "11": {}, "12": {},
}
