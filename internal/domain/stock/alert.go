package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// ResolutionNoteReplenished is the standard note applied when an alert is
// resolved because available quantity rose back above the threshold.
const ResolutionNoteReplenished = "stock replenished"

// LowStockAlert records that a stock item's available quantity fell to or
// below its reorder point. At most one unresolved alert exists per
// (location, product, variant) at any time; the uniqueness check happens in
// the same transaction as the ledger write that triggered it.
type LowStockAlert struct {
	shared.BaseEntity
	TenantID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	StockItemID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	LocationID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_alert_key"`
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_alert_key"`
	VariantID         *uuid.UUID `gorm:"type:uuid;index:idx_alert_key"`
	ReorderPoint      int64      `gorm:"not null"` // Threshold at the time the alert opened
	AvailableQuantity int64      `gorm:"not null"` // Available quantity at the time the alert opened
	Resolved          bool       `gorm:"not null;default:false;index"`
	ResolvedAt        *time.Time `gorm:""`
	ResolutionNote    string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (LowStockAlert) TableName() string {
	return "low_stock_alerts"
}

// NewLowStockAlert opens an alert capturing the threshold and the available
// quantity observed when the condition was detected.
func NewLowStockAlert(item *StockItem) (*LowStockAlert, error) {
	if item.ReorderPoint == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot open an alert for an item without a reorder point")
	}
	return &LowStockAlert{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          item.TenantID,
		StockItemID:       item.ID,
		LocationID:        item.LocationID,
		ProductID:         item.ProductID,
		VariantID:         item.VariantID,
		ReorderPoint:      *item.ReorderPoint,
		AvailableQuantity: item.AvailableQuantity(),
	}, nil
}

// IsResolved returns true if the alert has been resolved
func (a *LowStockAlert) IsResolved() bool {
	return a.Resolved
}

// Resolve closes the alert with a timestamp and note. Resolving twice is an
// invalid state transition.
func (a *LowStockAlert) Resolve(note string) error {
	if a.Resolved {
		return shared.ErrInvalidState
	}
	now := time.Now()
	a.Resolved = true
	a.ResolvedAt = &now
	a.ResolutionNote = note
	a.UpdatedAt = now
	return nil
}
