package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// StockItem is the authoritative on-hand quantity for one product (and
// optional variant) at one location. It is the aggregate root for all
// ledger and reservation mutations; the composite identifier is
// LocationID + ProductID + VariantID.
//
// Invariant: 0 <= ReservedQuantity <= Quantity after every mutation, so
// AvailableQuantity is never negative.
type StockItem struct {
	shared.BaseAggregateRoot
	TenantID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_key,priority:1"`
	LocationID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_key,priority:2"`
	ProductID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_key,priority:3"`
	VariantID        *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_stock_item_key,priority:4"`
	Quantity         int64               `gorm:"not null;default:0"` // On-hand units
	ReservedQuantity int64               `gorm:"not null;default:0"` // Sum of active holds sourced here
	ReorderPoint     *int64              `gorm:""`                   // Low-stock threshold, nil disables alerts
	UnitCost         decimal.NullDecimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates an empty ledger row for a location-product combination.
// Rows are created lazily on the first stock event and never hard-deleted.
func NewStockItem(tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*StockItem, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		LocationID:        locationID,
		ProductID:         productID,
		VariantID:         variantID,
	}, nil
}

// AvailableQuantity returns on-hand minus reserved. Never negative.
func (i *StockItem) AvailableQuantity() int64 {
	return i.Quantity - i.ReservedQuantity
}

// CanFulfill returns true if the available quantity covers the request
func (i *StockItem) CanFulfill(qty int64) bool {
	return i.AvailableQuantity() >= qty
}

// Receive increases on-hand quantity. Always succeeds for positive amounts.
func (i *StockItem) Receive(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity += qty
	i.touch()
	return nil
}

// Remove decreases on-hand quantity. Fails when the decrease would eat into
// units already promised to reservations.
func (i *StockItem) Remove(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.AvailableQuantity() < qty {
		return shared.ErrInsufficientStock
	}
	i.Quantity -= qty
	i.touch()
	return nil
}

// AdjustTo sets on-hand quantity to an absolute value and returns the signed
// delta applied. A zero delta leaves the item untouched.
func (i *StockItem) AdjustTo(newQty int64) (int64, error) {
	if newQty < 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if newQty < i.ReservedQuantity {
		return 0, shared.NewDomainError("INVALID_STATE",
			"Cannot adjust quantity below the amount held by active reservations")
	}
	delta := newQty - i.Quantity
	if delta == 0 {
		return 0, nil
	}
	i.Quantity = newQty
	i.touch()
	return delta, nil
}

// ReserveUnits moves units from available to reserved. Fails with
// ErrInsufficientStock when the available quantity cannot cover the request.
func (i *StockItem) ReserveUnits(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.AvailableQuantity() < qty {
		return shared.ErrInsufficientStock
	}
	i.ReservedQuantity += qty
	i.touch()
	return nil
}

// ReleaseUnits returns previously reserved units to available. Releasing more
// than is reserved clamps to zero rather than going negative.
func (i *StockItem) ReleaseUnits(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.ReservedQuantity -= qty
	if i.ReservedQuantity < 0 {
		i.ReservedQuantity = 0
	}
	i.touch()
	return nil
}

// SetReorderPoint sets or clears the low-stock threshold
func (i *StockItem) SetReorderPoint(point *int64) error {
	if point != nil && *point < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reorder point cannot be negative")
	}
	i.ReorderPoint = point
	i.touch()
	return nil
}

// SetUnitCost records the per-unit cost used for valuation
func (i *StockItem) SetUnitCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	i.UnitCost = decimal.NewNullDecimal(cost)
	i.touch()
	return nil
}

// IsBelowReorderPoint returns true when a threshold is set and available
// quantity has fallen to or below it.
func (i *StockItem) IsBelowReorderPoint() bool {
	return i.ReorderPoint != nil && i.AvailableQuantity() <= *i.ReorderPoint
}

// Valuation returns quantity times unit cost, or zero when no cost is recorded
func (i *StockItem) Valuation() decimal.Decimal {
	if !i.UnitCost.Valid {
		return decimal.Zero
	}
	return i.UnitCost.Decimal.Mul(decimal.NewFromInt(i.Quantity))
}

func (i *StockItem) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
