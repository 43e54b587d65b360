package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// LocationRepository defines the interface for location persistence
type LocationRepository interface {
	// FindByID finds a location by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)

	// FindByCode finds a location by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Location, error)

	// FindActiveByPriority returns all active locations ordered by ascending priority
	FindActiveByPriority(ctx context.Context, tenantID uuid.UUID) ([]Location, error)

	// FindAllForTenant returns all locations for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Location, error)

	// CountForTenant counts locations for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Save creates or updates a location
	Save(ctx context.Context, location *Location) error
}

// StockItemRepository defines the interface for stock ledger row persistence.
//
// FindByKeyForUpdate acquires an exclusive row lock (SELECT ... FOR UPDATE)
// and must only be called inside a transaction; every read-modify-write on
// quantity or reserved quantity goes through it. The plain readers are
// lock-free and may observe slightly stale data, which is acceptable for
// advisory paths only.
type StockItemRepository interface {
	// FindByID finds a stock item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByKey finds the stock item for a location-product-variant combination
	FindByKey(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*StockItem, error)

	// FindByKeyForUpdate finds the stock item for a key with an exclusive row lock
	FindByKeyForUpdate(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*StockItem, error)

	// FindByIDForUpdate finds a stock item by ID with an exclusive row lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*StockItem, error)

	// GetOrCreateForUpdate returns the locked stock item for a key, lazily
	// creating an empty row when none exists
	GetOrCreateForUpdate(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*StockItem, error)

	// FindByProduct returns all stock items for a product across locations
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) ([]StockItem, error)

	// FindAllForTenant returns stock items for a tenant with paging
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// CountForTenant counts stock items for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// SumQuantityByProduct sums on-hand quantity across active locations
	SumQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error)

	// SumAvailableByProduct sums available quantity across active locations
	SumAvailableByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error)

	// SumValuationByLocation sums quantity * unit_cost for a location
	SumValuationByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a stock item
	Save(ctx context.Context, item *StockItem) error
}

// StockMovementRepository defines the interface for the append-only movement
// log. Movements are never updated or deleted.
type StockMovementRepository interface {
	// Create appends a movement record
	Create(ctx context.Context, movement *StockMovement) error

	// FindForTenant returns movements matching the filter
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByStockItem returns movements for a single ledger row
	FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ReservationRepository defines the interface for cart reservation rows
type ReservationRepository interface {
	// FindByCartAndProduct finds the single active reservation for a cart-product-variant key
	FindByCartAndProduct(ctx context.Context, tenantID, cartID, productID uuid.UUID, variantID *uuid.UUID) (*Reservation, error)

	// FindByCart returns all reservations held by a cart
	FindByCart(ctx context.Context, tenantID, cartID uuid.UUID) ([]Reservation, error)

	// FindExpired returns reservations past their expiry at the given instant
	FindExpired(ctx context.Context, now time.Time) ([]Reservation, error)

	// Save creates or updates a reservation
	Save(ctx context.Context, reservation *Reservation) error

	// Delete removes a reservation row
	Delete(ctx context.Context, id uuid.UUID) error

	// CountActive counts unexpired reservations for a tenant
	CountActive(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)

	// SumActiveQuantity sums unexpired reserved units for a tenant
	SumActiveQuantity(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
}

// LowStockAlertRepository defines the interface for alert persistence
type LowStockAlertRepository interface {
	// FindUnresolved finds the open alert for a location-product-variant key, if any
	FindUnresolved(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*LowStockAlert, error)

	// FindByID finds an alert by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LowStockAlert, error)

	// FindForTenant returns alerts matching the filter
	FindForTenant(ctx context.Context, tenantID uuid.UUID, unresolvedOnly bool, filter shared.Filter) ([]LowStockAlert, error)

	// CountUnresolved counts open alerts for a tenant
	CountUnresolved(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Save creates or updates an alert
	Save(ctx context.Context, alert *LowStockAlert) error
}
