package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/domain/stock"
	"github.com/storefront/stockcore/internal/infrastructure/persistence"
)

type reservationAPIFixture struct {
	*stockAPIFixture
}

// newReservationAPIFixture extends the stock fixture with the reservation
// routes over the same database, so ledger writes and cart holds interact.
func newReservationAPIFixture(t *testing.T) *reservationAPIFixture {
	t.Helper()

	base := newStockAPIFixture(t)

	reservations := appstock.NewReservationService(
		persistence.NewGormTransactionScope(base.db),
		persistence.NewGormStockItemRepository(base.db),
		persistence.NewGormReservationRepository(base.db),
		nil,
		zap.NewNop(),
		time.Minute,
	)

	api := base.engine.Group("/api/v1")
	NewReservationHandler(reservations, zap.NewNop()).RegisterRoutes(api)

	return &reservationAPIFixture{stockAPIFixture: base}
}

func (fx *reservationAPIFixture) reserve(t *testing.T, cartID, productID uuid.UUID, qty int64) *httptest.ResponseRecorder {
	t.Helper()
	return fx.do(t, "POST", "/api/v1/reservations", gin.H{
		"cart_id":     cartID.String(),
		"location_id": fx.location.ID.String(),
		"product_id":  productID.String(),
		"quantity":    qty,
	})
}

func TestReservationHandler_Reserve(t *testing.T) {
	fx := newReservationAPIFixture(t)
	productID := uuid.New()
	fx.addStock(t, productID, 10)

	t.Run("places a hold", func(t *testing.T) {
		w := fx.reserve(t, uuid.New(), productID, 4)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.EqualValues(t, 4, data["quantity"])
		assert.NotEmpty(t, data["expires_at"])
	})

	t.Run("insufficient capacity maps to 422", func(t *testing.T) {
		w := fx.reserve(t, uuid.New(), productID, 100)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", decodeResponse(t, w).Error.Code)
	})

	t.Run("unknown product maps to 404", func(t *testing.T) {
		w := fx.reserve(t, uuid.New(), uuid.New(), 1)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReservationHandler_CartLifecycle(t *testing.T) {
	fx := newReservationAPIFixture(t)
	productID := uuid.New()
	fx.addStock(t, productID, 10)
	cartID := uuid.New()

	w := fx.reserve(t, cartID, productID, 4)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("availability excludes held units", func(t *testing.T) {
		w := fx.do(t, "GET",
			"/api/v1/reservations/availability?location_id="+fx.location.ID.String()+"&product_id="+productID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.EqualValues(t, 6, data["available"])
	})

	t.Run("cart listing shows the hold", func(t *testing.T) {
		w := fx.do(t, "GET", "/api/v1/reservations/carts/"+cartID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		holds := decodeResponse(t, w).Data.([]any)
		require.Len(t, holds, 1)
	})

	t.Run("resize to zero releases the hold", func(t *testing.T) {
		w := fx.do(t, "PUT", "/api/v1/reservations/carts/"+cartID.String(), gin.H{
			"product_id": productID.String(),
			"quantity":   0,
		})
		require.Equal(t, http.StatusNoContent, w.Code)

		var item stock.StockItem
		require.NoError(t, fx.db.First(&item, "product_id = ?", productID).Error)
		assert.EqualValues(t, 0, item.ReservedQuantity)
	})
}

func TestReservationHandler_ConvertToOrder(t *testing.T) {
	fx := newReservationAPIFixture(t)
	productID := uuid.New()
	fx.addStock(t, productID, 10)
	cartID := uuid.New()

	require.Equal(t, http.StatusCreated, fx.reserve(t, cartID, productID, 3).Code)

	w := fx.do(t, "POST", "/api/v1/reservations/carts/"+cartID.String()+"/convert", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["converted"])

	// converting frees the hold; on-hand stock is untouched until the
	// order pipeline posts its own removal
	var item stock.StockItem
	require.NoError(t, fx.db.First(&item, "product_id = ?", productID).Error)
	assert.EqualValues(t, 10, item.Quantity)
	assert.EqualValues(t, 0, item.ReservedQuantity)

	w = fx.do(t, "POST", "/api/v1/stock/remove", gin.H{
		"location_id":    fx.location.ID.String(),
		"product_id":     productID.String(),
		"quantity":       3,
		"reason":         "order fulfilled",
		"reference_type": "order",
		"reference_id":   "ord-1001",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, fx.db.First(&item, "product_id = ?", productID).Error)
	assert.EqualValues(t, 7, item.Quantity)
	assert.EqualValues(t, 0, item.ReservedQuantity)

	var movements int64
	fx.db.Model(&stock.StockMovement{}).
		Where("reference_id = ?", "ord-1001").Count(&movements)
	assert.EqualValues(t, 1, movements)
}

func TestReservationHandler_ReleaseAllIsIdempotent(t *testing.T) {
	fx := newReservationAPIFixture(t)
	productID := uuid.New()
	fx.addStock(t, productID, 5)
	cartID := uuid.New()

	require.Equal(t, http.StatusCreated, fx.reserve(t, cartID, productID, 2).Code)

	for range 2 {
		w := fx.do(t, "DELETE", "/api/v1/reservations/carts/"+cartID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	var item stock.StockItem
	require.NoError(t, fx.db.First(&item, "product_id = ?", productID).Error)
	assert.EqualValues(t, 0, item.ReservedQuantity)
}

func TestReservationHandler_Stats(t *testing.T) {
	fx := newReservationAPIFixture(t)
	productID := uuid.New()
	fx.addStock(t, productID, 10)

	require.Equal(t, http.StatusCreated, fx.reserve(t, uuid.New(), productID, 2).Code)
	require.Equal(t, http.StatusCreated, fx.reserve(t, uuid.New(), productID, 3).Code)

	w := fx.do(t, "GET", "/api/v1/reservations/stats", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 2, data["active_count"])
	assert.EqualValues(t, 5, data["reserved_units"])
}
