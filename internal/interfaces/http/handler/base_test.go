package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetTenantID(t *testing.T) {
	t.Run("valid header", func(t *testing.T) {
		c, _ := newTestContext(t)
		want := uuid.New()
		c.Request.Header.Set("X-Tenant-ID", want.String())

		got, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing header", func(t *testing.T) {
		c, _ := newTestContext(t)

		_, err := getTenantID(c)
		assert.Error(t, err)
	})

	t.Run("malformed header", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set("X-Tenant-ID", "not-a-uuid")

		_, err := getTenantID(c)
		assert.Error(t, err)
	})
}

func TestParseOptionalUUID(t *testing.T) {
	t.Run("empty means absent", func(t *testing.T) {
		id, err := parseOptionalUUID("")
		require.NoError(t, err)
		assert.Nil(t, id)
	})

	t.Run("valid value", func(t *testing.T) {
		want := uuid.New()
		id, err := parseOptionalUUID(want.String())
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, want, *id)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseOptionalUUID("nope")
		assert.Error(t, err)
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success envelope", func(t *testing.T) {
		c, w := newTestContext(t)
		h.Success(c, gin.H{"quantity": 5})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("created", func(t *testing.T) {
		c, w := newTestContext(t)
		h.Created(c, gin.H{"id": uuid.New()})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("paginated meta", func(t *testing.T) {
		c, w := newTestContext(t)
		h.SuccessWithMeta(c, []int{1, 2}, 7, 1, 2)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.EqualValues(t, 7, resp.Meta.Total)
		assert.Equal(t, 4, resp.Meta.TotalPages)
	})

	t.Run("bad request carries the request id", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Set("request_id", "req-7")
		h.BadRequest(c, "missing field")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "req-7", resp.Error.RequestID)
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"stock item not found", shared.ErrStockItemNotFound, http.StatusNotFound, "STOCK_ITEM_NOT_FOUND"},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"reservation expired", shared.ErrReservationExpired, http.StatusConflict, "RESERVATION_EXPIRED"},
		{"custom domain code", shared.NewDomainError("LOCATION_CODE_TAKEN", "code in use"), http.StatusConflict, "LOCATION_CODE_TAKEN"},
		{"wrapped domain error", fmt.Errorf("reserving: %w", shared.ErrInsufficientStock), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	t.Run("unknown errors surface as opaque 500", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleError(c, fmt.Errorf("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq:", "driver details must not leak")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleError(c, nil)

		assert.Empty(t, w.Body.String())
	})
}
