package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// Location represents a named stock-holding site (warehouse, store room,
// fulfillment center). Allocation walks active locations in ascending
// Priority order.
type Location struct {
	shared.BaseAggregateRoot
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_tenant_code,priority:1"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_location_tenant_code,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Active   bool      `gorm:"not null;default:true"`
	Priority int       `gorm:"not null;default:0;index"`
	Address  string    `gorm:"type:text"`
	Notes    string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a new active location
func NewLocation(tenantID uuid.UUID, code, name string, priority int) (*Location, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Location code must be 1-50 characters")
	}
	if strings.TrimSpace(name) == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Location name must be 1-200 characters")
	}
	if priority < 0 {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Location priority cannot be negative")
	}

	return &Location{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		Code:              strings.ToUpper(code),
		Name:              name,
		Active:            true,
		Priority:          priority,
	}, nil
}

// Update updates the location's basic information
func (l *Location) Update(name, address, notes string) error {
	if strings.TrimSpace(name) == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Location name must be 1-200 characters")
	}
	l.Name = name
	l.Address = address
	l.Notes = notes
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// SetPriority changes the allocation ordering of this location
func (l *Location) SetPriority(priority int) error {
	if priority < 0 {
		return shared.NewDomainError("INVALID_PRIORITY", "Location priority cannot be negative")
	}
	l.Priority = priority
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Activate marks the location as participating in availability and allocation
func (l *Location) Activate() {
	l.Active = true
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// Deactivate removes the location from availability sums and allocation order.
// Ledger rows it holds are retained.
func (l *Location) Deactivate() {
	l.Active = false
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}
