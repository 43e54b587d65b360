package stock

import (
	"context"

	"github.com/storefront/stockcore/internal/domain/stock"
)

// TransactionScope provides transactional access to the stock repositories.
// Every mutating engine operation runs inside Execute so that the row locks
// taken by the repositories are held until commit and released on rollback.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back;
	// otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within
// a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Items returns the stock item repository scoped to the current transaction
	Items() stock.StockItemRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() stock.StockMovementRepository
	// Reservations returns the reservation repository scoped to the current transaction
	Reservations() stock.ReservationRepository
	// Alerts returns the alert repository scoped to the current transaction
	Alerts() stock.LowStockAlertRepository
	// Locations returns the location repository scoped to the current transaction
	Locations() stock.LocationRepository
}

// NoOpTransactionScope runs functions without a real transaction. Useful for
// tests and for backends that do not need transactional semantics.
type NoOpTransactionScope struct {
	ItemRepo        stock.StockItemRepository
	MovementRepo    stock.StockMovementRepository
	ReservationRepo stock.ReservationRepository
	AlertRepo       stock.LowStockAlertRepository
	LocationRepo    stock.LocationRepository
}

// Execute runs the function directly against the configured repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Items returns the stock item repository
func (s *NoOpTransactionScope) Items() stock.StockItemRepository { return s.ItemRepo }

// Movements returns the movement repository
func (s *NoOpTransactionScope) Movements() stock.StockMovementRepository { return s.MovementRepo }

// Reservations returns the reservation repository
func (s *NoOpTransactionScope) Reservations() stock.ReservationRepository { return s.ReservationRepo }

// Alerts returns the alert repository
func (s *NoOpTransactionScope) Alerts() stock.LowStockAlertRepository { return s.AlertRepo }

// Locations returns the location repository
func (s *NoOpTransactionScope) Locations() stock.LocationRepository { return s.LocationRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
