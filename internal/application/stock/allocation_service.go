package stock

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// AllocationService fills an order's demand for a product from one or more
// locations. The preferred location is drained first, then the rest in
// priority order. All rows lock inside one transaction, so the split either
// commits whole or rolls back whole; a shortfall across every location fails
// the request before anything is taken.
type AllocationService struct {
	scope     TransactionScope
	allocator *stock.Allocator
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAllocationService creates an AllocationService
func NewAllocationService(scope TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *AllocationService {
	return &AllocationService{
		scope:     scope,
		allocator: stock.NewAllocator(),
		publisher: publisher,
		logger:    logger,
	}
}

// ReserveStock places allocation holds for the requested quantity across the
// tenant's active locations and returns the per-location split. The caller
// keeps the returned lines; they are the handle for releasing or committing
// the allocation later.
func (s *AllocationService) ReserveStock(ctx context.Context, tenantID uuid.UUID, req AllocateRequest) ([]stock.Allocation, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var (
		allocations []stock.Allocation
		events      []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		locations, err := repos.Locations().FindActiveByPriority(ctx, tenantID)
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			return shared.ErrStockItemNotFound
		}

		// rows lock in priority order on every code path, which keeps
		// concurrent allocators from deadlocking against each other
		candidates := make([]stock.AllocationCandidate, 0, len(locations))
		for i := range locations {
			loc := &locations[i]
			item, err := repos.Items().FindByKeyForUpdate(ctx, tenantID, loc.ID, req.ProductID, req.VariantID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return err
			}
			candidates = append(candidates, stock.AllocationCandidate{
				Item:      item,
				Priority:  loc.Priority,
				Preferred: req.PreferredLocationID != nil && *req.PreferredLocationID == loc.ID,
			})
		}
		if len(candidates) == 0 {
			return shared.ErrStockItemNotFound
		}

		planned, err := s.allocator.Plan(candidates, req.Quantity)
		if err != nil {
			return err
		}

		for i := range candidates {
			if err := repos.Items().Save(ctx, candidates[i].Item); err != nil {
				return err
			}
		}

		allocations = planned
		events = append(events, stock.NewStockAllocatedEvent(
			tenantID, req.ProductID, req.VariantID,
			req.ReferenceType, req.ReferenceID, planned))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock allocated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("quantity", req.Quantity),
		zap.Int("locations", len(allocations)))
	s.publishEvents(ctx, events)
	return allocations, nil
}

// ReleaseAllocation hands previously committed holds back to available
// capacity, for example when an order is cancelled before fulfillment.
func (s *AllocationService) ReleaseAllocation(ctx context.Context, tenantID uuid.UUID, req ReleaseAllocationRequest) error {
	if len(req.Allocations) == 0 {
		return nil
	}

	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, alloc := range req.Allocations {
			item, err := repos.Items().FindByIDForUpdate(ctx, tenantID, alloc.StockItemID)
			if err != nil {
				return err
			}
			if err := item.ReleaseUnits(alloc.Quantity); err != nil {
				return err
			}
			if err := repos.Items().Save(ctx, item); err != nil {
				return err
			}
		}
		events = append(events, stock.NewAllocationReleasedEvent(
			tenantID, req.ProductID, req.ReferenceType, req.ReferenceID, req.Allocations))
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, events)
	return nil
}

// CommitAllocation consumes the held units: on-hand and reserved decrement
// together per location and each line lands in the audit trail as an OUT
// movement referencing the order.
func (s *AllocationService) CommitAllocation(ctx context.Context, tenantID uuid.UUID, req ReleaseAllocationRequest) error {
	if len(req.Allocations) == 0 {
		return nil
	}

	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, alloc := range req.Allocations {
			item, err := repos.Items().FindByIDForUpdate(ctx, tenantID, alloc.StockItemID)
			if err != nil {
				return err
			}

			before := item.Quantity
			if err := item.ReleaseUnits(alloc.Quantity); err != nil {
				return err
			}
			if err := item.Remove(alloc.Quantity); err != nil {
				return err
			}

			movement, err := stock.NewStockMovement(item, stock.MovementTypeOut,
				-alloc.Quantity, before, item.Quantity,
				"allocation fulfilled", req.ReferenceType, req.ReferenceID)
			if err != nil {
				return err
			}
			if err := repos.Movements().Create(ctx, movement); err != nil {
				return err
			}

			item.AddDomainEvent(stock.NewStockRemovedEvent(item, alloc.Quantity, "allocation fulfilled"))
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

func (s *AllocationService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
