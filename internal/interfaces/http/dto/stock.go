package dto

// AddStockRequest is the payload for receiving stock into a location
type AddStockRequest struct {
	LocationID    string `json:"location_id" binding:"required,uuid"`
	ProductID     string `json:"product_id" binding:"required,uuid"`
	VariantID     string `json:"variant_id" binding:"omitempty,uuid"`
	Quantity      int64  `json:"quantity" binding:"required,gt=0"`
	Reason        string `json:"reason" binding:"required,max=255"`
	ReferenceType string `json:"reference_type" binding:"omitempty,max=50"`
	ReferenceID   string `json:"reference_id" binding:"omitempty,max=100"`
	UnitCost      string `json:"unit_cost" binding:"omitempty,decimal"`
}

// RemoveStockRequest is the payload for removing stock from a location
type RemoveStockRequest struct {
	LocationID    string `json:"location_id" binding:"required,uuid"`
	ProductID     string `json:"product_id" binding:"required,uuid"`
	VariantID     string `json:"variant_id" binding:"omitempty,uuid"`
	Quantity      int64  `json:"quantity" binding:"required,gt=0"`
	Reason        string `json:"reason" binding:"required,max=255"`
	ReferenceType string `json:"reference_type" binding:"omitempty,max=50"`
	ReferenceID   string `json:"reference_id" binding:"omitempty,max=100"`
}

// AdjustStockRequest sets the on-hand quantity to an absolute value
type AdjustStockRequest struct {
	LocationID  string `json:"location_id" binding:"required,uuid"`
	ProductID   string `json:"product_id" binding:"required,uuid"`
	VariantID   string `json:"variant_id" binding:"omitempty,uuid"`
	NewQuantity *int64 `json:"new_quantity" binding:"required,gte=0"`
	Reason      string `json:"reason" binding:"required,max=255"`
}

// SetReorderPointRequest sets or clears a row's low-stock threshold.
// A null reorder_point disables monitoring for the row.
type SetReorderPointRequest struct {
	LocationID   string `json:"location_id" binding:"required,uuid"`
	ProductID    string `json:"product_id" binding:"required,uuid"`
	VariantID    string `json:"variant_id" binding:"omitempty,uuid"`
	ReorderPoint *int64 `json:"reorder_point" binding:"omitempty,gte=0"`
}

// ResolveAlertRequest is the payload for acknowledging a low-stock alert
type ResolveAlertRequest struct {
	Note string `json:"note" binding:"omitempty,max=500"`
}

// MovementListRequest is the query form for the movement log
type MovementListRequest struct {
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	LocationID   string `form:"location_id" binding:"omitempty,uuid"`
	ProductID    string `form:"product_id" binding:"omitempty,uuid"`
	MovementType string `form:"movement_type" binding:"omitempty,oneof=IN OUT ADJUSTMENT"`
	StartDate    string `form:"start_date" binding:"omitempty"`
	EndDate      string `form:"end_date" binding:"omitempty"`
}
