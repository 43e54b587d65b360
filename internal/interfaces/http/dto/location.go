package dto

// CreateLocationRequest registers a new fulfillment location
type CreateLocationRequest struct {
	Code     string `json:"code" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=255"`
	Priority int    `json:"priority" binding:"omitempty,gte=0"`
	Address  string `json:"address" binding:"omitempty,max=500"`
	Notes    string `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateLocationRequest carries mutable location fields
type UpdateLocationRequest struct {
	Name     string `json:"name" binding:"omitempty,max=255"`
	Priority *int   `json:"priority" binding:"omitempty,gte=0"`
	Address  string `json:"address" binding:"omitempty,max=500"`
	Notes    string `json:"notes" binding:"omitempty,max=1000"`
}

// SetLocationActiveRequest toggles a location in or out of service
type SetLocationActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
