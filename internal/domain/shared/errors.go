package shared

import "fmt"

// DomainError pairs a stable machine-readable code with a caller-safe
// message. The HTTP layer maps codes to statuses and passes both through to
// clients unchanged.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomainError builds a DomainError for a one-off failure condition, such
// as a constructor rejecting its arguments.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinel errors for conditions callers branch on; compare with errors.Is.
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidState       = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock  = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrStockItemNotFound  = NewDomainError("STOCK_ITEM_NOT_FOUND", "No stock ledger row exists for this location and product")
	ErrReservationExpired = NewDomainError("RESERVATION_EXPIRED", "Reservation expired before it could be used")
)
