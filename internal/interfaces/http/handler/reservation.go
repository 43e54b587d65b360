package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/interfaces/http/dto"
)

// ReservationHandler exposes cart reservations over HTTP
type ReservationHandler struct {
	BaseHandler
	reservations *appstock.ReservationService
	logger       *zap.Logger
}

// NewReservationHandler creates a ReservationHandler
func NewReservationHandler(reservations *appstock.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, logger: logger}
}

// RegisterRoutes registers all reservation routes
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.Reserve)
		reservations.GET("/availability", h.GetAvailability)
		reservations.GET("/stats", h.GetStats)
		reservations.GET("/carts/:cartId", h.GetCart)
		reservations.PUT("/carts/:cartId", h.UpdateQuantity)
		reservations.DELETE("/carts/:cartId", h.ReleaseAll)
		reservations.DELETE("/carts/:cartId/items", h.Release)
		reservations.POST("/carts/:cartId/convert", h.ConvertToOrder)
		reservations.POST("/carts/:cartId/extend", h.ExtendAll)
	}
}

// Reserve handles POST /api/v1/reservations
//
//	@Summary	Place a cart hold against available stock
//	@Tags		reservations
//	@Accept		json
//	@Produce	json
//	@Param		request	body	dto.ReserveRequest	true	"hold"
//	@Success	201	{object}	dto.Response
//	@Failure	422	{object}	dto.Response	"insufficient stock"
//	@Router		/reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cartID, _ := uuid.Parse(req.CartID)
	locationID, _ := uuid.Parse(req.LocationID)
	productID, _ := uuid.Parse(req.ProductID)
	variantID, err := parseOptionalUUID(req.VariantID)
	if err != nil {
		h.BadRequest(c, "Invalid variant_id")
		return
	}

	res, err := h.reservations.Reserve(c.Request.Context(), tenantID, appstock.ReserveRequest{
		CartID:     cartID,
		SessionID:  req.SessionID,
		LocationID: locationID,
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, res)
}

// UpdateQuantity handles PUT /api/v1/reservations/carts/:cartId
func (h *ReservationHandler) UpdateQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	var req dto.UpdateReservationRequest
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

	res, err := h.reservations.UpdateQuantity(c.Request.Context(), tenantID, cartID, productID, variantID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if res == nil {
		h.NoContent(c)
		return
	}

	h.Success(c, res)
}

// Release handles DELETE /api/v1/reservations/carts/:cartId/items
func (h *ReservationHandler) Release(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	var req dto.ReleaseReservationRequest
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

	if err := h.reservations.Release(c.Request.Context(), tenantID, cartID, productID, variantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ReleaseAll handles DELETE /api/v1/reservations/carts/:cartId
func (h *ReservationHandler) ReleaseAll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	if err := h.reservations.ReleaseAll(c.Request.Context(), tenantID, cartID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ConvertToOrder handles POST /api/v1/reservations/carts/:cartId/convert
//
//	@Summary	Hand a cart's holds to order fulfillment
//	@Tags		reservations
//	@Produce	json
//	@Param		cartId	path	string	true	"cart ID"
//	@Success	200	{object}	dto.Response
//	@Failure	409	{object}	dto.Response	"a hold expired"
//	@Router		/reservations/carts/{cartId}/convert [post]
func (h *ReservationHandler) ConvertToOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	if err := h.reservations.ConvertToOrder(c.Request.Context(), tenantID, cartID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"cart_id": cartID, "converted": true})
}

// ExtendAll handles POST /api/v1/reservations/carts/:cartId/extend
func (h *ReservationHandler) ExtendAll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	if err := h.reservations.ExtendAll(c.Request.Context(), tenantID, cartID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetCart handles GET /api/v1/reservations/carts/:cartId
func (h *ReservationHandler) GetCart(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	reservations, err := h.reservations.GetCartReservations(c.Request.Context(), tenantID, cartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reservations)
}

// GetAvailability handles GET /api/v1/reservations/availability
func (h *ReservationHandler) GetAvailability(c *gin.Context) {
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

	available, err := h.reservations.GetAvailableStock(c.Request.Context(), tenantID, locationID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"location_id": locationID,
		"product_id":  productID,
		"variant_id":  variantID,
		"available":   available,
	})
}

// GetStats handles GET /api/v1/reservations/stats
func (h *ReservationHandler) GetStats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	stats, err := h.reservations.GetStats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
