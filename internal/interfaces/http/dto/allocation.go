package dto

// AllocateRequest asks for units to be held across locations
type AllocateRequest struct {
	ProductID           string `json:"product_id" binding:"required,uuid"`
	VariantID           string `json:"variant_id" binding:"omitempty,uuid"`
	Quantity            int64  `json:"quantity" binding:"required,gt=0"`
	ReferenceType       string `json:"reference_type" binding:"required,max=50"`
	ReferenceID         string `json:"reference_id" binding:"required,max=100"`
	PreferredLocationID string `json:"preferred_location_id" binding:"omitempty,uuid"`
}

// AllocationLine is one location's share of an allocation
type AllocationLine struct {
	StockItemID string `json:"stock_item_id" binding:"required,uuid"`
	LocationID  string `json:"location_id" binding:"required,uuid"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
}

// AllocationActionRequest hands an allocation's lines back for release
// or final commitment
type AllocationActionRequest struct {
	ProductID     string           `json:"product_id" binding:"required,uuid"`
	VariantID     string           `json:"variant_id" binding:"omitempty,uuid"`
	ReferenceType string           `json:"reference_type" binding:"required,max=50"`
	ReferenceID   string           `json:"reference_id" binding:"required,max=100"`
	Allocations   []AllocationLine `json:"allocations" binding:"required,min=1,dive"`
}
