package dto

import "net/http"

// Error codes surfaced by the API. Domain codes pass through unchanged so
// clients can branch on them; the table below decides the HTTP status.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	"NOT_FOUND":            http.StatusNotFound,
	"STOCK_ITEM_NOT_FOUND": http.StatusNotFound,
	"LOCATION_CODE_TAKEN":  http.StatusConflict,

	"INVALID_QUANTITY":      http.StatusBadRequest,
	"INVALID_MOVEMENT_TYPE": http.StatusBadRequest,

	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":  http.StatusUnprocessableEntity,
	"RESERVATION_EXPIRED": http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
