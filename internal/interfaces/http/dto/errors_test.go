package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"STOCK_ITEM_NOT_FOUND", http.StatusNotFound},
		{"LOCATION_CODE_TAKEN", http.StatusConflict},
		{"RESERVATION_EXPIRED", http.StatusConflict},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"INVALID_MOVEMENT_TYPE", http.StatusBadRequest},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}

	t.Run("unknown code defaults to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_NEW"))
	})
}

func TestListRequest_Normalize(t *testing.T) {
	r := &ListRequest{}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)

	r = &ListRequest{Page: 3, PageSize: 50}
	r.Normalize()
	assert.Equal(t, 3, r.Page)
	assert.Equal(t, 50, r.PageSize)
}

func TestListRequest_ToFilter(t *testing.T) {
	r := &ListRequest{Page: 2, PageSize: 10, OrderBy: "created_at", OrderDir: "asc"}
	f := r.ToFilter()

	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, 10, f.Offset())
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	t.Run("rounds total pages up", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{"a"}, 21, 1, 10)
		assert.True(t, resp.Success)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("exact multiple", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta(nil, 20, 2, 10)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})
}
