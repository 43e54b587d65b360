package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/interfaces/http/dto"
)

// StockHandler exposes the stock ledger over HTTP
type StockHandler struct {
	BaseHandler
	ledger *appstock.LedgerService
	logger *zap.Logger
}

// NewStockHandler creates a StockHandler
func NewStockHandler(ledger *appstock.LedgerService, logger *zap.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, logger: logger}
}

// RegisterRoutes registers all stock ledger routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/add", h.AddStock)
		stock.POST("/remove", h.RemoveStock)
		stock.POST("/adjust", h.AdjustStock)
		stock.PUT("/reorder-point", h.SetReorderPoint)
		stock.GET("/item", h.GetItem)
		stock.GET("/items", h.ListItems)
		stock.GET("/products/:productId/totals", h.GetProductTotals)
		stock.GET("/movements", h.ListMovements)
		stock.GET("/summary", h.GetSummary)
		stock.GET("/alerts", h.ListAlerts)
		stock.POST("/alerts/:alertId/resolve", h.ResolveAlert)
	}
}

// AddStock handles POST /api/v1/stock/add
//
//	@Summary	Receive stock into a location
//	@Tags		stock
//	@Accept		json
//	@Produce	json
//	@Param		request	body	dto.AddStockRequest	true	"receipt"
//	@Success	200	{object}	dto.Response
//	@Router		/stock/add [post]
func (h *StockHandler) AddStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	appReq, err := h.toAddStockRequest(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.ledger.AddStock(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// RemoveStock handles POST /api/v1/stock/remove
//
//	@Summary	Remove on-hand stock
//	@Tags		stock
//	@Accept		json
//	@Produce	json
//	@Param		request	body	dto.RemoveStockRequest	true	"removal"
//	@Success	200	{object}	dto.Response
//	@Failure	422	{object}	dto.Response	"insufficient stock"
//	@Router		/stock/remove [post]
func (h *StockHandler) RemoveStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.RemoveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	locationID, _ := uuid.Parse(req.LocationID)
	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}

	item, err := h.ledger.RemoveStock(c.Request.Context(), tenantID, appstock.RemoveStockRequest{
		LocationID:    locationID,
		ProductID:     productID,
		VariantID:     variantID,
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// AdjustStock handles POST /api/v1/stock/adjust
//
//	@Summary	Set on-hand stock to an absolute quantity
//	@Tags		stock
//	@Accept		json
//	@Produce	json
//	@Param		request	body	dto.AdjustStockRequest	true	"adjustment"
//	@Success	200	{object}	dto.Response
//	@Router		/stock/adjust [post]
func (h *StockHandler) AdjustStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	locationID, _ := uuid.Parse(req.LocationID)
	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}

	item, err := h.ledger.AdjustStock(c.Request.Context(), tenantID, appstock.AdjustStockRequest{
		LocationID:  locationID,
		ProductID:   productID,
		VariantID:   variantID,
		NewQuantity: *req.NewQuantity,
		Reason:      req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// SetReorderPoint handles PUT /api/v1/stock/reorder-point
func (h *StockHandler) SetReorderPoint(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.SetReorderPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	locationID, _ := uuid.Parse(req.LocationID)
	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}

	item, err := h.ledger.SetReorderPoint(c.Request.Context(), tenantID, appstock.SetReorderPointRequest{
		LocationID:   locationID,
		ProductID:    productID,
		VariantID:    variantID,
		ReorderPoint: req.ReorderPoint,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// GetItem handles GET /api/v1/stock/item
func (h *StockHandler) GetItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		h.BadRequest(c, "Invalid location_id")
		return
	}
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id")
		return
	}
	variantID, err := parseOptionalUUID(c.Query("variant_id"))
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}

	item, err := h.ledger.GetStockItem(c.Request.Context(), tenantID, locationID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ListItems handles GET /api/v1/stock/items
func (h *StockHandler) ListItems(c *gin.Context) {
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

	filter := listReq.ToFilter()
	if locationID := c.Query("location_id"); locationID != "" {
		id, err := uuid.Parse(locationID)
		if err != nil {
			h.BadRequest(c, "Invalid location_id")
			return
		}
		filter.Filters["location_id"] = id
	}
	if productID := c.Query("product_id"); productID != "" {
		id, err := uuid.Parse(productID)
		if err != nil {
			h.BadRequest(c, "Invalid product_id")
			return
		}
		filter.Filters["product_id"] = id
	}

	result, err := h.ledger.ListStockItems(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetProductTotals handles GET /api/v1/stock/products/:productId/totals
func (h *StockHandler) GetProductTotals(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := parseOptionalUUID(c.Query("variant_id"))
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}

	ctx := c.Request.Context()
	total, err := h.ledger.GetTotalStock(ctx, tenantID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	available, err := h.ledger.GetTotalAvailable(ctx, tenantID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"product_id":      productID,
		"variant_id":      variantID,
		"total_quantity":  total,
		"total_available": available,
	})
}

// ListMovements handles GET /api/v1/stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.MovementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := appstock.MovementListFilter{
		Page:         req.Page,
		PageSize:     req.PageSize,
		MovementType: req.MovementType,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	if req.LocationID != "" {
		id, _ := uuid.Parse(req.LocationID)
		filter.LocationID = &id
	}
	if req.ProductID != "" {
		id, _ := uuid.Parse(req.ProductID)
		filter.ProductID = &id
	}
	if req.StartDate != "" {
		t, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			h.BadRequest(c, "Invalid start_date, expected RFC3339")
			return
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected RFC3339")
			return
		}
		filter.EndDate = &t
	}

	result, err := h.ledger.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetSummary handles GET /api/v1/stock/summary
func (h *StockHandler) GetSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	summary, err := h.ledger.GetInventorySummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListAlerts handles GET /api/v1/stock/alerts
func (h *StockHandler) ListAlerts(c *gin.Context) {
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

	unresolvedOnly := c.DefaultQuery("unresolved_only", "true") == "true"

	alerts, err := h.ledger.ListAlerts(c.Request.Context(), tenantID, unresolvedOnly, listReq.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}

// ResolveAlert handles POST /api/v1/stock/alerts/:alertId/resolve
func (h *StockHandler) ResolveAlert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	var req dto.ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	alert, err := h.ledger.ResolveAlert(c.Request.Context(), tenantID, alertID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alert)
}

func (h *StockHandler) toAddStockRequest(req dto.AddStockRequest) (appstock.AddStockRequest, error) {
	locationID, _ := uuid.Parse(req.LocationID)
	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		return appstock.AddStockRequest{}, errInvalidVariantID
	}

	var unitCost *decimal.Decimal
	if req.UnitCost != "" {
		cost, err := decimal.NewFromString(req.UnitCost)
		if err != nil || cost.IsNegative() {
			return appstock.AddStockRequest{}, errInvalidUnitCost
		}
		unitCost = &cost
	}

	return appstock.AddStockRequest{
		LocationID:    locationID,
		ProductID:     productID,
		VariantID:     variantID,
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		UnitCost:      unitCost,
	}, nil
}
