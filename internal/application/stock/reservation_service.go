package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// DefaultReservationTTL is used when no TTL is configured
const DefaultReservationTTL = 15 * time.Minute

// ReservationService manages cart-scoped stock reservations. A cart holds at
// most one reservation per product+variant; reserving again for the same
// product replaces the hold rather than stacking a second one. Holds expire
// after a TTL and expired holds are swept back into available capacity.
type ReservationService struct {
	scope        TransactionScope
	items        stock.StockItemRepository
	reservations stock.ReservationRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
	defaultTTL   time.Duration
}

// NewReservationService creates a ReservationService. A non-positive ttl
// falls back to DefaultReservationTTL.
func NewReservationService(
	scope TransactionScope,
	items stock.StockItemRepository,
	reservations stock.ReservationRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	ttl time.Duration,
) *ReservationService {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &ReservationService{
		scope:        scope,
		items:        items,
		reservations: reservations,
		publisher:    publisher,
		logger:       logger,
		defaultTTL:   ttl,
	}
}

// Reserve places or replaces a cart's hold on a product at a location. When
// the cart already holds this product, the hold is resized to the requested
// quantity and its expiry restarts. Availability is checked excluding the
// cart's own existing hold, so growing a hold only needs the increment.
func (s *ReservationService) Reserve(ctx context.Context, tenantID uuid.UUID, req ReserveRequest) (*ReservationResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var (
		result *stock.Reservation
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().FindByKeyForUpdate(ctx, tenantID, req.LocationID, req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		existing, err := repos.Reservations().FindByCartAndProduct(ctx, tenantID, req.CartID, req.ProductID, req.VariantID)
		if err != nil && !isNotFound(err) {
			return err
		}

		// an expired hold still present means the sweeper has not run yet;
		// its units are still counted in ReservedQuantity, so free them
		// before treating the request as fresh
		if existing != nil && existing.IsExpired() {
			if err := item.ReleaseUnits(existing.Quantity); err != nil {
				return err
			}
			if err := repos.Reservations().Delete(ctx, existing.ID); err != nil {
				return err
			}
			item.AddDomainEvent(stock.NewReservationExpiredEvent(item, existing))
			existing = nil
		}

		if existing == nil {
			if !item.CanFulfill(req.Quantity) {
				return shared.ErrInsufficientStock
			}
			if err := item.ReserveUnits(req.Quantity); err != nil {
				return err
			}
			res, err := stock.NewReservation(item, req.CartID, req.SessionID, req.Quantity, s.defaultTTL)
			if err != nil {
				return err
			}
			if err := repos.Reservations().Save(ctx, res); err != nil {
				return err
			}
			item.AddDomainEvent(stock.NewStockReservedEvent(item, res))
			result = res
		} else {
			delta := req.Quantity - existing.Quantity
			if delta > 0 {
				if !item.CanFulfill(delta) {
					return shared.ErrInsufficientStock
				}
				if err := item.ReserveUnits(delta); err != nil {
					return err
				}
			} else if delta < 0 {
				if err := item.ReleaseUnits(-delta); err != nil {
					return err
				}
			}
			if err := existing.SetQuantity(req.Quantity); err != nil {
				return err
			}
			existing.Extend(s.defaultTTL)
			if err := repos.Reservations().Save(ctx, existing); err != nil {
				return err
			}
			item.AddDomainEvent(stock.NewStockReservedEvent(item, existing))
			result = existing
		}

		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}
		events = item.GetDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	resp := ToReservationResponse(result)
	return &resp, nil
}

// UpdateQuantity resizes an existing hold. Quantity zero releases it. A hold
// that expired between the caller's read and this call fails with
// RESERVATION_EXPIRED rather than silently recreating it.
func (s *ReservationService) UpdateQuantity(ctx context.Context, tenantID, cartID, productID uuid.UUID, variantID *uuid.UUID, quantity int64) (*ReservationResponse, error) {
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if quantity == 0 {
		if err := s.Release(ctx, tenantID, cartID, productID, variantID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var (
		result *stock.Reservation
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		res, err := repos.Reservations().FindByCartAndProduct(ctx, tenantID, cartID, productID, variantID)
		if err != nil {
			return err
		}
		if res.IsExpired() {
			return shared.ErrReservationExpired
		}

		item, err := repos.Items().FindByIDForUpdate(ctx, tenantID, res.StockItemID)
		if err != nil {
			return err
		}

		delta := quantity - res.Quantity
		if delta > 0 {
			if !item.CanFulfill(delta) {
				return shared.ErrInsufficientStock
			}
			if err := item.ReserveUnits(delta); err != nil {
				return err
			}
		} else if delta < 0 {
			if err := item.ReleaseUnits(-delta); err != nil {
				return err
			}
		}
		if err := res.SetQuantity(quantity); err != nil {
			return err
		}
		res.Extend(s.defaultTTL)
		if err := repos.Reservations().Save(ctx, res); err != nil {
			return err
		}

		item.AddDomainEvent(stock.NewStockReservedEvent(item, res))
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		result = res
		events = item.GetDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	resp := ToReservationResponse(result)
	return &resp, nil
}

// Release frees a cart's hold on one product. Releasing a hold that does not
// exist is a no-op, so abandoned-cart cleanup can be retried safely.
func (s *ReservationService) Release(ctx context.Context, tenantID, cartID, productID uuid.UUID, variantID *uuid.UUID) error {
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		res, err := repos.Reservations().FindByCartAndProduct(ctx, tenantID, cartID, productID, variantID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		released, err := s.releaseOne(ctx, repos, res)
		if err != nil {
			return err
		}
		events = released
		return nil
	})
	if err != nil {
		return err
	}
	s.publishEvents(ctx, events)
	return nil
}

// ReleaseAll frees every hold a cart has. Idempotent like Release.
func (s *ReservationService) ReleaseAll(ctx context.Context, tenantID, cartID uuid.UUID) error {
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservations, err := repos.Reservations().FindByCart(ctx, tenantID, cartID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		for i := range reservations {
			released, err := s.releaseOne(ctx, repos, &reservations[i])
			if err != nil {
				return err
			}
			events = append(events, released...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publishEvents(ctx, events)
	return nil
}

// ConvertToOrder hands a cart's holds over to order fulfillment: each
// hold is deleted and its reserved units freed, leaving on-hand stock
// untouched for the subsequent ledger deduction. The whole cart converts
// or nothing does; a single expired hold fails the conversion.
func (s *ReservationService) ConvertToOrder(ctx context.Context, tenantID, cartID uuid.UUID) error {
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservations, err := repos.Reservations().FindByCart(ctx, tenantID, cartID)
		if err != nil {
			return err
		}
		if len(reservations) == 0 {
			return shared.ErrNotFound
		}

		for i := range reservations {
			res := &reservations[i]
			if res.IsExpired() {
				return shared.ErrReservationExpired
			}

			item, err := repos.Items().FindByIDForUpdate(ctx, tenantID, res.StockItemID)
			if err != nil {
				return err
			}
			if err := item.ReleaseUnits(res.Quantity); err != nil {
				return err
			}
			if err := repos.Reservations().Delete(ctx, res.ID); err != nil {
				return err
			}

			item.AddDomainEvent(stock.NewReservationReleasedEvent(item, res))
			if err := repos.Items().Save(ctx, item); err != nil {
				return err
			}
			events = append(events, item.GetDomainEvents()...)
			item.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publishEvents(ctx, events)
	return nil
}

// ExtendAll restarts the expiry clock on every live hold in a cart, for
// example when the shopper reaches checkout.
func (s *ReservationService) ExtendAll(ctx context.Context, tenantID, cartID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservations, err := repos.Reservations().FindByCart(ctx, tenantID, cartID)
		if err != nil {
			return err
		}
		for i := range reservations {
			res := &reservations[i]
			if res.IsExpired() {
				continue
			}
			res.Extend(s.defaultTTL)
			if err := repos.Reservations().Save(ctx, res); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetCartReservations returns a cart's holds, expired ones included
func (s *ReservationService) GetCartReservations(ctx context.Context, tenantID, cartID uuid.UUID) ([]ReservationResponse, error) {
	reservations, err := s.reservations.FindByCart(ctx, tenantID, cartID)
	if err != nil {
		return nil, err
	}
	return ToReservationResponses(reservations), nil
}

// GetAvailableStock returns units available to reserve at a location
func (s *ReservationService) GetAvailableStock(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	item, err := s.items.FindByKey(ctx, tenantID, locationID, productID, variantID)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return item.AvailableQuantity(), nil
}

// IsAvailable reports whether qty units can currently be reserved
func (s *ReservationService) IsAvailable(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID, qty int64) (bool, error) {
	available, err := s.GetAvailableStock(ctx, tenantID, locationID, productID, variantID)
	if err != nil {
		return false, err
	}
	return available >= qty, nil
}

// GetStats returns the tenant's live reservation pressure
func (s *ReservationService) GetStats(ctx context.Context, tenantID uuid.UUID) (*ReservationStats, error) {
	now := time.Now().UTC()
	count, err := s.reservations.CountActive(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	units, err := s.reservations.SumActiveQuantity(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	return &ReservationStats{ActiveCount: count, ReservedUnits: units}, nil
}

// CleanupExpired sweeps expired holds back into available capacity and
// returns how many were freed. Each hold is swept in its own transaction so
// one contended row does not stall the whole pass.
func (s *ReservationService) CleanupExpired(ctx context.Context) (int, error) {
	expired, err := s.reservations.FindExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for i := range expired {
		res := expired[i]
		var events []shared.DomainEvent
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			item, err := repos.Items().FindByIDForUpdate(ctx, res.TenantID, res.StockItemID)
			if err != nil {
				return err
			}
			// another request may have released it since FindExpired
			current, err := repos.Reservations().FindByCartAndProduct(ctx, res.TenantID, res.CartID, res.ProductID, res.VariantID)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return err
			}
			if current.ID != res.ID || !current.IsExpired() {
				return nil
			}
			if err := item.ReleaseUnits(current.Quantity); err != nil {
				return err
			}
			if err := repos.Reservations().Delete(ctx, current.ID); err != nil {
				return err
			}
			item.AddDomainEvent(stock.NewReservationExpiredEvent(item, current))
			if err := repos.Items().Save(ctx, item); err != nil {
				return err
			}
			events = item.GetDomainEvents()
			item.ClearDomainEvents()
			cleaned++
			return nil
		})
		if err != nil {
			s.logger.Error("failed to sweep expired reservation",
				zap.String("reservation_id", res.ID.String()),
				zap.String("tenant_id", res.TenantID.String()),
				zap.Error(err))
			continue
		}
		s.publishEvents(ctx, events)
	}

	if cleaned > 0 {
		s.logger.Info("swept expired reservations", zap.Int("count", cleaned))
	}
	return cleaned, nil
}

// releaseOne frees one hold inside an already-open transaction and returns
// the events to publish after commit.
func (s *ReservationService) releaseOne(ctx context.Context, repos TransactionalRepositories, res *stock.Reservation) ([]shared.DomainEvent, error) {
	item, err := repos.Items().FindByIDForUpdate(ctx, res.TenantID, res.StockItemID)
	if err != nil {
		return nil, err
	}
	if err := item.ReleaseUnits(res.Quantity); err != nil {
		return nil, err
	}
	if err := repos.Reservations().Delete(ctx, res.ID); err != nil {
		return nil, err
	}
	if res.IsExpired() {
		item.AddDomainEvent(stock.NewReservationExpiredEvent(item, res))
	} else {
		item.AddDomainEvent(stock.NewReservationReleasedEvent(item, res))
	}
	if err := repos.Items().Save(ctx, item); err != nil {
		return nil, err
	}
	events := item.GetDomainEvents()
	item.ClearDomainEvents()
	return events, nil
}

func (s *ReservationService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrStockItemNotFound)
}
