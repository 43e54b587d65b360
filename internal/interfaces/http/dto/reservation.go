package dto

// ReserveRequest is the payload for placing a cart hold
type ReserveRequest struct {
	CartID     string `json:"cart_id" binding:"required,uuid"`
	SessionID  string `json:"session_id" binding:"omitempty,max=100"`
	LocationID string `json:"location_id" binding:"required,uuid"`
	ProductID  string `json:"product_id" binding:"required,uuid"`
	VariantID  string `json:"variant_id" binding:"omitempty,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
}

// UpdateReservationRequest resizes an existing hold. Zero releases it.
type UpdateReservationRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	VariantID string `json:"variant_id" binding:"omitempty,uuid"`
	Quantity  *int64 `json:"quantity" binding:"required,gte=0"`
}

// ReleaseReservationRequest names the hold to drop from a cart
type ReleaseReservationRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	VariantID string `json:"variant_id" binding:"omitempty,uuid"`
}
