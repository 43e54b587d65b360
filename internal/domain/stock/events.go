package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockItem = "StockItem"

// Event type constants
const (
	EventTypeStockReceived       = "StockReceived"
	EventTypeStockRemoved        = "StockRemoved"
	EventTypeStockAdjusted       = "StockAdjusted"
	EventTypeStockReserved       = "StockReserved"
	EventTypeReservationReleased = "ReservationReleased"
	EventTypeReservationExpired  = "ReservationExpired"
	EventTypeStockAllocated      = "StockAllocated"
	EventTypeAllocationReleased  = "AllocationReleased"
	EventTypeLowStockOpened      = "LowStockOpened"
	EventTypeLowStockResolved    = "LowStockResolved"
)

// StockReceivedEvent is raised after an IN movement commits
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	StockItemID uuid.UUID  `json:"stock_item_id"`
	LocationID  uuid.UUID  `json:"location_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	Quantity    int64      `json:"quantity"`
	Reason      string     `json:"reason,omitempty"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(item *StockItem, qty int64, reason string) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		LocationID:      item.LocationID,
		ProductID:       item.ProductID,
		VariantID:       item.VariantID,
		Quantity:        qty,
		Reason:          reason,
	}
}

// StockRemovedEvent is raised after an OUT movement commits
type StockRemovedEvent struct {
	shared.BaseDomainEvent
	StockItemID uuid.UUID  `json:"stock_item_id"`
	LocationID  uuid.UUID  `json:"location_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	Quantity    int64      `json:"quantity"`
	Reason      string     `json:"reason,omitempty"`
}

// NewStockRemovedEvent creates a new StockRemovedEvent
func NewStockRemovedEvent(item *StockItem, qty int64, reason string) *StockRemovedEvent {
	return &StockRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRemoved, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		LocationID:      item.LocationID,
		ProductID:       item.ProductID,
		VariantID:       item.VariantID,
		Quantity:        qty,
		Reason:          reason,
	}
}

// StockAdjustedEvent is raised after an ADJUSTMENT movement commits
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	StockItemID    uuid.UUID `json:"stock_item_id"`
	LocationID     uuid.UUID `json:"location_id"`
	ProductID      uuid.UUID `json:"product_id"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	Reason         string    `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(item *StockItem, before, after int64, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		LocationID:      item.LocationID,
		ProductID:       item.ProductID,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Reason:          reason,
	}
}

// StockReservedEvent is raised when a cart reservation is created or its
// quantity changes
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StockItemID   uuid.UUID  `json:"stock_item_id"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	CartID        uuid.UUID  `json:"cart_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	VariantID     *uuid.UUID `json:"variant_id,omitempty"`
	Quantity      int64      `json:"quantity"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(item *StockItem, res *Reservation) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		ReservationID:   res.ID,
		CartID:          res.CartID,
		ProductID:       res.ProductID,
		VariantID:       res.VariantID,
		Quantity:        res.Quantity,
		ExpiresAt:       res.ExpiresAt,
	}
}

// ReservationReleasedEvent is raised when a reservation is released
// explicitly (cart removal, order completion)
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	StockItemID   uuid.UUID `json:"stock_item_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	CartID        uuid.UUID `json:"cart_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int64     `json:"quantity"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(item *StockItem, res *Reservation) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		ReservationID:   res.ID,
		CartID:          res.CartID,
		ProductID:       res.ProductID,
		Quantity:        res.Quantity,
	}
}

// ReservationExpiredEvent is raised when the background sweep deletes a
// reservation past its TTL
type ReservationExpiredEvent struct {
	shared.BaseDomainEvent
	StockItemID   uuid.UUID `json:"stock_item_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	CartID        uuid.UUID `json:"cart_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// NewReservationExpiredEvent creates a new ReservationExpiredEvent
func NewReservationExpiredEvent(item *StockItem, res *Reservation) *ReservationExpiredEvent {
	return &ReservationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationExpired, AggregateTypeStockItem, item.ID, item.TenantID),
		StockItemID:     item.ID,
		ReservationID:   res.ID,
		CartID:          res.CartID,
		ProductID:       res.ProductID,
		Quantity:        res.Quantity,
		ExpiredAt:       res.ExpiresAt,
	}
}

// StockAllocatedEvent is raised when a multi-location allocation commits
type StockAllocatedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID    `json:"product_id"`
	VariantID     *uuid.UUID   `json:"variant_id,omitempty"`
	ReferenceType string       `json:"reference_type"`
	ReferenceID   string       `json:"reference_id"`
	Allocations   []Allocation `json:"allocations"`
	TotalQuantity int64        `json:"total_quantity"`
}

// NewStockAllocatedEvent creates a new StockAllocatedEvent
func NewStockAllocatedEvent(tenantID, productID uuid.UUID, variantID *uuid.UUID, refType, refID string, allocations []Allocation) *StockAllocatedEvent {
	var total int64
	for _, a := range allocations {
		total += a.Quantity
	}
	return &StockAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAllocated, AggregateTypeStockItem, productID, tenantID),
		ProductID:       productID,
		VariantID:       variantID,
		ReferenceType:   refType,
		ReferenceID:     refID,
		Allocations:     allocations,
		TotalQuantity:   total,
	}
}

// AllocationReleasedEvent is raised when committed allocation holds are
// handed back (order cancelled before shipment)
type AllocationReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID    `json:"product_id"`
	ReferenceType string       `json:"reference_type"`
	ReferenceID   string       `json:"reference_id"`
	Allocations   []Allocation `json:"allocations"`
}

// NewAllocationReleasedEvent creates a new AllocationReleasedEvent
func NewAllocationReleasedEvent(tenantID, productID uuid.UUID, refType, refID string, allocations []Allocation) *AllocationReleasedEvent {
	return &AllocationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationReleased, AggregateTypeStockItem, productID, tenantID),
		ProductID:       productID,
		ReferenceType:   refType,
		ReferenceID:     refID,
		Allocations:     allocations,
	}
}

// LowStockOpenedEvent is raised when available quantity crosses down through
// the reorder point and an alert is opened
type LowStockOpenedEvent struct {
	shared.BaseDomainEvent
	AlertID           uuid.UUID  `json:"alert_id"`
	StockItemID       uuid.UUID  `json:"stock_item_id"`
	LocationID        uuid.UUID  `json:"location_id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	ReorderPoint      int64      `json:"reorder_point"`
	AvailableQuantity int64      `json:"available_quantity"`
}

// NewLowStockOpenedEvent creates a new LowStockOpenedEvent
func NewLowStockOpenedEvent(item *StockItem, alert *LowStockAlert) *LowStockOpenedEvent {
	return &LowStockOpenedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeLowStockOpened, AggregateTypeStockItem, item.ID, item.TenantID),
		AlertID:           alert.ID,
		StockItemID:       item.ID,
		LocationID:        item.LocationID,
		ProductID:         item.ProductID,
		VariantID:         item.VariantID,
		ReorderPoint:      alert.ReorderPoint,
		AvailableQuantity: alert.AvailableQuantity,
	}
}

// LowStockResolvedEvent is raised when available quantity rises back above
// the reorder point and the open alert is resolved
type LowStockResolvedEvent struct {
	shared.BaseDomainEvent
	AlertID           uuid.UUID `json:"alert_id"`
	StockItemID       uuid.UUID `json:"stock_item_id"`
	LocationID        uuid.UUID `json:"location_id"`
	ProductID         uuid.UUID `json:"product_id"`
	AvailableQuantity int64     `json:"available_quantity"`
}

// NewLowStockResolvedEvent creates a new LowStockResolvedEvent
func NewLowStockResolvedEvent(item *StockItem, alert *LowStockAlert) *LowStockResolvedEvent {
	return &LowStockResolvedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeLowStockResolved, AggregateTypeStockItem, item.ID, item.TenantID),
		AlertID:           alert.ID,
		StockItemID:       item.ID,
		LocationID:        item.LocationID,
		ProductID:         item.ProductID,
		AvailableQuantity: item.AvailableQuantity(),
	}
}
