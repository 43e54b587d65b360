package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/domain/stock"
	"github.com/storefront/stockcore/internal/interfaces/http/dto"
)

// AllocationHandler exposes multi-location allocation over HTTP
type AllocationHandler struct {
	BaseHandler
	allocations *appstock.AllocationService
	logger      *zap.Logger
}

// NewAllocationHandler creates an AllocationHandler
func NewAllocationHandler(allocations *appstock.AllocationService, logger *zap.Logger) *AllocationHandler {
	return &AllocationHandler{allocations: allocations, logger: logger}
}

// RegisterRoutes registers all allocation routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	allocations := rg.Group("/allocations")
	{
		allocations.POST("", h.Allocate)
		allocations.POST("/release", h.Release)
		allocations.POST("/commit", h.Commit)
	}
}

// Allocate handles POST /api/v1/allocations
func (h *AllocationHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}
	preferredID, err := parseOptionalUUID(req.PreferredLocationID)
	if err != nil {
		h.BadRequest(c, "Invalid preferred_location_id")
		return
	}

	allocations, err := h.allocations.ReserveStock(c.Request.Context(), tenantID, appstock.AllocateRequest{
		ProductID:           productID,
		VariantID:           variantID,
		Quantity:            req.Quantity,
		ReferenceType:       req.ReferenceType,
		ReferenceID:         req.ReferenceID,
		PreferredLocationID: preferredID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, gin.H{
		"product_id":     productID,
		"variant_id":     variantID,
		"quantity":       req.Quantity,
		"reference_type": req.ReferenceType,
		"reference_id":   req.ReferenceID,
		"allocations":    allocations,
	})
}

// Release handles POST /api/v1/allocations/release
func (h *AllocationHandler) Release(c *gin.Context) {
	tenantID, req, ok := h.bindAction(c)
	if !ok {
		return
	}

	if err := h.allocations.ReleaseAllocation(c.Request.Context(), tenantID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Commit handles POST /api/v1/allocations/commit
func (h *AllocationHandler) Commit(c *gin.Context) {
	tenantID, req, ok := h.bindAction(c)
	if !ok {
		return
	}

	if err := h.allocations.CommitAllocation(c.Request.Context(), tenantID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"reference_type": req.ReferenceType,
		"reference_id":   req.ReferenceID,
		"committed":      true,
	})
}

func (h *AllocationHandler) bindAction(c *gin.Context) (uuid.UUID, appstock.ReleaseAllocationRequest, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return uuid.Nil, appstock.ReleaseAllocationRequest{}, false
	}

	var req dto.AllocationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return uuid.Nil, appstock.ReleaseAllocationRequest{}, false
	}

	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return uuid.Nil, appstock.ReleaseAllocationRequest{}, false
	}

	lines := make([]stock.Allocation, 0, len(req.Allocations))
	for _, line := range req.Allocations {
		itemID, err := uuid.Parse(line.StockItemID)
		if err != nil {
			h.BadRequest(c, "Invalid stock_item_id in allocations")
			return uuid.Nil, appstock.ReleaseAllocationRequest{}, false
		}
		locationID, err := uuid.Parse(line.LocationID)
		if err != nil {
			h.BadRequest(c, "Invalid location_id in allocations")
			return uuid.Nil, appstock.ReleaseAllocationRequest{}, false
		}
		lines = append(lines, stock.Allocation{
			StockItemID: itemID,
			LocationID:  locationID,
			Quantity:    line.Quantity,
		})
	}

	return tenantID, appstock.ReleaseAllocationRequest{
		ProductID:     productID,
		VariantID:     variantID,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Allocations:   lines,
	}, true
}
