package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// MovementType classifies a ledger mutation
type MovementType string

const (
	// MovementTypeIn records stock entering a location (receipt, return)
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut records stock leaving a location (shipment, sale)
	MovementTypeOut MovementType = "OUT"
	// MovementTypeAdjustment records a count correction with a signed delta
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of a single change to on-hand
// quantity. Exactly one movement is written per ledger mutation; corrections
// are made with new movements, never by editing existing ones. The movement
// log is the single source of truth for why stock changed.
type StockMovement struct {
	shared.BaseEntity
	TenantID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_tenant_time,priority:1"`
	StockItemID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	LocationID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	VariantID      *uuid.UUID   `gorm:"type:uuid;index"`
	MovementType   MovementType `gorm:"type:varchar(20);not null;index"`
	QuantityDelta  int64        `gorm:"not null"`                                 // Signed change applied to on-hand quantity
	QuantityBefore int64        `gorm:"not null"`                                 // On-hand quantity before the mutation
	QuantityAfter  int64        `gorm:"not null"`                                 // On-hand quantity after the mutation
	ReferenceType  string       `gorm:"type:varchar(50);index:idx_movement_ref"`  // e.g. "order", "return"
	ReferenceID    string       `gorm:"type:varchar(100);index:idx_movement_ref"` // ID of the referencing document
	Reason         string       `gorm:"type:varchar(255)"`
	OccurredAt     time.Time    `gorm:"not null;index:idx_movement_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record for a ledger mutation. The
// before/after values must be consistent with the signed delta.
func NewStockMovement(
	item *StockItem,
	movementType MovementType,
	delta, before, after int64,
	reason, referenceType, referenceID string,
) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if before+delta != after {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement delta does not match before/after quantities")
	}
	switch movementType {
	case MovementTypeIn:
		if delta <= 0 {
			return nil, shared.NewDomainError("INVALID_MOVEMENT", "IN movements must have a positive delta")
		}
	case MovementTypeOut:
		if delta >= 0 {
			return nil, shared.NewDomainError("INVALID_MOVEMENT", "OUT movements must have a negative delta")
		}
	case MovementTypeAdjustment:
		if delta == 0 {
			return nil, shared.NewDomainError("INVALID_MOVEMENT", "Adjustment movements must have a non-zero delta")
		}
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       item.TenantID,
		StockItemID:    item.ID,
		LocationID:     item.LocationID,
		ProductID:      item.ProductID,
		VariantID:      item.VariantID,
		MovementType:   movementType,
		QuantityDelta:  delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         reason,
		ReferenceType:  referenceType,
		ReferenceID:    referenceID,
		OccurredAt:     time.Now(),
	}, nil
}
