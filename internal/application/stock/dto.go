package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/stockcore/internal/domain/stock"
)

// AddStockRequest carries the inputs for a stock receipt
type AddStockRequest struct {
	LocationID    uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Quantity      int64
	Reason        string
	ReferenceType string
	ReferenceID   string
	UnitCost      *decimal.Decimal
}

// RemoveStockRequest carries the inputs for a direct stock decrement
type RemoveStockRequest struct {
	LocationID    uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Quantity      int64
	Reason        string
	ReferenceType string
	ReferenceID   string
}

// AdjustStockRequest sets on-hand quantity to an absolute value
type AdjustStockRequest struct {
	LocationID  uuid.UUID
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	NewQuantity int64
	Reason      string
}

// SetReorderPointRequest sets or clears the low-stock threshold
type SetReorderPointRequest struct {
	LocationID   uuid.UUID
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	ReorderPoint *int64
}

// StockItemResponse is the API-facing view of a ledger row
type StockItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	LocationID        uuid.UUID  `json:"location_id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	Quantity          int64      `json:"quantity"`
	ReservedQuantity  int64      `json:"reserved_quantity"`
	AvailableQuantity int64      `json:"available_quantity"`
	ReorderPoint      *int64     `json:"reorder_point,omitempty"`
	UnitCost          *string    `json:"unit_cost,omitempty"`
	BelowReorderPoint bool       `json:"below_reorder_point"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

// ToStockItemResponse converts a domain StockItem to its response form
func ToStockItemResponse(item *stock.StockItem) StockItemResponse {
	resp := StockItemResponse{
		ID:                item.ID,
		TenantID:          item.TenantID,
		LocationID:        item.LocationID,
		ProductID:         item.ProductID,
		VariantID:         item.VariantID,
		Quantity:          item.Quantity,
		ReservedQuantity:  item.ReservedQuantity,
		AvailableQuantity: item.AvailableQuantity(),
		ReorderPoint:      item.ReorderPoint,
		BelowReorderPoint: item.IsBelowReorderPoint(),
		UpdatedAt:         item.UpdatedAt,
		Version:           item.Version,
	}
	if item.UnitCost.Valid {
		s := item.UnitCost.Decimal.String()
		resp.UnitCost = &s
	}
	return resp
}

// MovementResponse is the API-facing view of an audit record
type MovementResponse struct {
	ID             uuid.UUID  `json:"id"`
	StockItemID    uuid.UUID  `json:"stock_item_id"`
	LocationID     uuid.UUID  `json:"location_id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	MovementType   string     `json:"movement_type"`
	QuantityDelta  int64      `json:"quantity_delta"`
	QuantityBefore int64      `json:"quantity_before"`
	QuantityAfter  int64      `json:"quantity_after"`
	ReferenceType  string     `json:"reference_type,omitempty"`
	ReferenceID    string     `json:"reference_id,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// ToMovementResponse converts a domain StockMovement to its response form
func ToMovementResponse(m *stock.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		StockItemID:    m.StockItemID,
		LocationID:     m.LocationID,
		ProductID:      m.ProductID,
		VariantID:      m.VariantID,
		MovementType:   m.MovementType.String(),
		QuantityDelta:  m.QuantityDelta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		OccurredAt:     m.OccurredAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []stock.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, ToMovementResponse(&movements[i]))
	}
	return out
}

// MovementListFilter narrows movement history queries
type MovementListFilter struct {
	Page         int
	PageSize     int
	LocationID   *uuid.UUID
	ProductID    *uuid.UUID
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
}

// ReserveRequest carries the inputs for a cart reservation
type ReserveRequest struct {
	CartID     uuid.UUID
	SessionID  string
	LocationID uuid.UUID
	ProductID  uuid.UUID
	VariantID  *uuid.UUID
	Quantity   int64
}

// ReservationResponse is the API-facing view of a reservation
type ReservationResponse struct {
	ID         uuid.UUID  `json:"id"`
	CartID     uuid.UUID  `json:"cart_id"`
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	LocationID uuid.UUID  `json:"location_id"`
	Quantity   int64      `json:"quantity"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// ToReservationResponse converts a domain Reservation to its response form
func ToReservationResponse(r *stock.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		CartID:     r.CartID,
		ProductID:  r.ProductID,
		VariantID:  r.VariantID,
		LocationID: r.LocationID,
		Quantity:   r.Quantity,
		ExpiresAt:  r.ExpiresAt,
	}
}

// ToReservationResponses converts a slice of reservations
func ToReservationResponses(reservations []stock.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, ToReservationResponse(&reservations[i]))
	}
	return out
}

// AllocateRequest asks for qty units of a product sourced from one or more
// locations, preferred location first.
type AllocateRequest struct {
	ProductID           uuid.UUID
	VariantID           *uuid.UUID
	Quantity            int64
	ReferenceType       string
	ReferenceID         string
	PreferredLocationID *uuid.UUID
}

// ReleaseAllocationRequest hands previously committed allocation holds back
type ReleaseAllocationRequest struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	ReferenceType string
	ReferenceID   string
	Allocations   []stock.Allocation
}

// LocationSummary is one location's slice of an inventory summary
type LocationSummary struct {
	LocationID    uuid.UUID       `json:"location_id"`
	LocationCode  string          `json:"location_code"`
	LocationName  string          `json:"location_name"`
	ItemCount     int64           `json:"item_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalReserved int64           `json:"total_reserved"`
	Valuation     decimal.Decimal `json:"valuation"`
}

// InventorySummary is the dashboard view of a tenant's stock position
type InventorySummary struct {
	Locations        []LocationSummary `json:"locations"`
	TotalQuantity    int64             `json:"total_quantity"`
	TotalReserved    int64             `json:"total_reserved"`
	UnresolvedAlerts int64             `json:"unresolved_alerts"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// ReservationStats is the ops view of reservation pressure
type ReservationStats struct {
	ActiveCount   int64 `json:"active_count"`
	ReservedUnits int64 `json:"reserved_units"`
}

// AlertResponse is the API-facing view of a low-stock alert
type AlertResponse struct {
	ID                uuid.UUID  `json:"id"`
	LocationID        uuid.UUID  `json:"location_id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	ReorderPoint      int64      `json:"reorder_point"`
	AvailableQuantity int64      `json:"available_quantity"`
	Resolved          bool       `json:"resolved"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ResolutionNote    string     `json:"resolution_note,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToAlertResponse converts a domain LowStockAlert to its response form
func ToAlertResponse(a *stock.LowStockAlert) AlertResponse {
	return AlertResponse{
		ID:                a.ID,
		LocationID:        a.LocationID,
		ProductID:         a.ProductID,
		VariantID:         a.VariantID,
		ReorderPoint:      a.ReorderPoint,
		AvailableQuantity: a.AvailableQuantity,
		Resolved:          a.Resolved,
		ResolvedAt:        a.ResolvedAt,
		ResolutionNote:    a.ResolutionNote,
		CreatedAt:         a.CreatedAt,
	}
}

// ToAlertResponses converts a slice of alerts
func ToAlertResponses(alerts []stock.LowStockAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, ToAlertResponse(&alerts[i]))
	}
	return out
}

// LocationResponse is the API-facing view of a location
type LocationResponse struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Active   bool      `json:"active"`
	Priority int       `json:"priority"`
	Address  string    `json:"address,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// ToLocationResponse converts a domain Location to its response form
func ToLocationResponse(l *stock.Location) LocationResponse {
	return LocationResponse{
		ID:       l.ID,
		Code:     l.Code,
		Name:     l.Name,
		Active:   l.Active,
		Priority: l.Priority,
		Address:  l.Address,
		Notes:    l.Notes,
	}
}

// ToLocationResponses converts a slice of locations
func ToLocationResponses(locations []stock.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(locations))
	for i := range locations {
		out = append(out, ToLocationResponse(&locations[i]))
	}
	return out
}
