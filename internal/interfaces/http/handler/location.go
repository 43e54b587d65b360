package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/interfaces/http/dto"
)

// LocationHandler exposes fulfillment locations over HTTP
type LocationHandler struct {
	BaseHandler
	locations *appstock.LocationService
	logger    *zap.Logger
}

// NewLocationHandler creates a LocationHandler
func NewLocationHandler(locations *appstock.LocationService, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{locations: locations, logger: logger}
}

// RegisterRoutes registers all location routes
func (h *LocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	locations := rg.Group("/locations")
	{
		locations.POST("", h.Create)
		locations.GET("", h.List)
		locations.GET("/:locationId", h.Get)
		locations.PUT("/:locationId", h.Update)
		locations.PUT("/:locationId/active", h.SetActive)
	}
}

// Create handles POST /api/v1/locations
func (h *LocationHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	location, err := h.locations.Create(c.Request.Context(), tenantID, appstock.CreateLocationRequest{
		Code:     req.Code,
		Name:     req.Name,
		Priority: req.Priority,
		Address:  req.Address,
		Notes:    req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, location)
}

// Update handles PUT /api/v1/locations/:locationId
func (h *LocationHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	locationID, err := uuid.Parse(c.Param("locationId"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID")
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	location, err := h.locations.Update(c.Request.Context(), tenantID, locationID, appstock.UpdateLocationRequest{
		Name:     req.Name,
		Priority: req.Priority,
		Address:  req.Address,
		Notes:    req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// SetActive handles PUT /api/v1/locations/:locationId/active
func (h *LocationHandler) SetActive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	locationID, err := uuid.Parse(c.Param("locationId"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID")
		return
	}

	var req dto.SetLocationActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	location, err := h.locations.SetActive(c.Request.Context(), tenantID, locationID, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// Get handles GET /api/v1/locations/:locationId
func (h *LocationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	locationID, err := uuid.Parse(c.Param("locationId"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID")
		return
	}

	location, err := h.locations.Get(c.Request.Context(), tenantID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// List handles GET /api/v1/locations
func (h *LocationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	listReq.Normalize()

	result, err := h.locations.List(c.Request.Context(), tenantID, listReq.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
