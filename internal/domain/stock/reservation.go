package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// Reservation is a time-bounded provisional claim on stock held for an
// in-progress shopping session. At most one active reservation exists per
// (cart, product, variant); quantity changes update the row in place rather
// than accumulating rows. A reservation that outlives its TTL is deleted by
// the background sweep, which frees the capacity it held.
type Reservation struct {
	shared.BaseEntity
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CartID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reservation_cart_product,priority:1"`
	SessionID   string     `gorm:"type:varchar(100)"` // Diagnostic only, not part of the uniqueness key
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reservation_cart_product,priority:2"`
	VariantID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reservation_cart_product,priority:3"`
	StockItemID uuid.UUID  `gorm:"type:uuid;not null;index"` // Sourcing ledger row
	LocationID  uuid.UUID  `gorm:"type:uuid;not null"`
	Quantity    int64      `gorm:"not null"`
	ExpiresAt   time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// NewReservation creates a reservation against the given stock item
func NewReservation(item *StockItem, cartID uuid.UUID, sessionID string, qty int64, ttl time.Duration) (*Reservation, error) {
	if cartID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CART", "Cart ID cannot be empty")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if ttl <= 0 {
		return nil, shared.NewDomainError("INVALID_TTL", "Reservation TTL must be positive")
	}

	return &Reservation{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    item.TenantID,
		CartID:      cartID,
		SessionID:   sessionID,
		ProductID:   item.ProductID,
		VariantID:   item.VariantID,
		StockItemID: item.ID,
		LocationID:  item.LocationID,
		Quantity:    qty,
		ExpiresAt:   time.Now().Add(ttl),
	}, nil
}

// IsExpired returns true once the TTL has elapsed
func (r *Reservation) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// SetQuantity replaces the reserved quantity in place
func (r *Reservation) SetQuantity(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	r.Quantity = qty
	r.UpdatedAt = time.Now()
	return nil
}

// Extend pushes the expiry forward from now by the given TTL
func (r *Reservation) Extend(ttl time.Duration) {
	now := time.Now()
	r.ExpiresAt = now.Add(ttl)
	r.UpdatedAt = now
}

// TimeUntilExpiry returns the duration until expiry, negative if expired
func (r *Reservation) TimeUntilExpiry() time.Duration {
	return time.Until(r.ExpiresAt)
}
