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

// SummaryCache caches tenant inventory summaries. Implementations may be
// backed by redis; a nil cache disables caching entirely.
type SummaryCache interface {
	GetSummary(ctx context.Context, tenantID uuid.UUID) (*InventorySummary, error)
	SetSummary(ctx context.Context, tenantID uuid.UUID, summary *InventorySummary) error
	InvalidateSummary(ctx context.Context, tenantID uuid.UUID) error
}

// LedgerService owns the per-location stock ledger: receipts, removals,
// absolute adjustments and the movement audit trail. Every mutation runs
// inside a single transaction with the affected row locked, writes exactly
// one movement record, and re-evaluates low-stock alerts before commit.
type LedgerService struct {
	scope     TransactionScope
	items     stock.StockItemRepository
	movements stock.StockMovementRepository
	alerts    stock.LowStockAlertRepository
	locations stock.LocationRepository
	monitor   *LowStockMonitor
	publisher shared.EventPublisher
	cache     SummaryCache
	logger    *zap.Logger
}

// NewLedgerService creates a LedgerService
func NewLedgerService(
	scope TransactionScope,
	items stock.StockItemRepository,
	movements stock.StockMovementRepository,
	alerts stock.LowStockAlertRepository,
	locations stock.LocationRepository,
	monitor *LowStockMonitor,
	publisher shared.EventPublisher,
	cache SummaryCache,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		scope:     scope,
		items:     items,
		movements: movements,
		alerts:    alerts,
		locations: locations,
		monitor:   monitor,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// AddStock receives quantity units into a location. The stock item row is
// created on first receipt.
func (s *LedgerService) AddStock(ctx context.Context, tenantID uuid.UUID, req AddStockRequest) (*StockItemResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var (
		result *stock.StockItem
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().GetOrCreateForUpdate(ctx, tenantID, req.LocationID, req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		before := item.Quantity
		if err := item.Receive(req.Quantity); err != nil {
			return err
		}
		if req.UnitCost != nil {
			if err := item.SetUnitCost(*req.UnitCost); err != nil {
				return err
			}
		}

		movement, err := stock.NewStockMovement(item, stock.MovementTypeIn,
			req.Quantity, before, item.Quantity,
			req.Reason, req.ReferenceType, req.ReferenceID)
		if err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return err
		}

		item.AddDomainEvent(stock.NewStockReceivedEvent(item, req.Quantity, req.Reason))
		if err := s.monitor.Reevaluate(ctx, repos, item); err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		result = item
		events = item.GetDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, tenantID, events)
	resp := ToStockItemResponse(result)
	return &resp, nil
}

// RemoveStock decrements on-hand quantity. Reserved units cannot be removed:
// the decrement fails when it would dip into reserved capacity.
func (s *LedgerService) RemoveStock(ctx context.Context, tenantID uuid.UUID, req RemoveStockRequest) (*StockItemResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var (
		result *stock.StockItem
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().FindByKeyForUpdate(ctx, tenantID, req.LocationID, req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		before := item.Quantity
		if err := item.Remove(req.Quantity); err != nil {
			return err
		}

		movement, err := stock.NewStockMovement(item, stock.MovementTypeOut,
			-req.Quantity, before, item.Quantity,
			req.Reason, req.ReferenceType, req.ReferenceID)
		if err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return err
		}

		item.AddDomainEvent(stock.NewStockRemovedEvent(item, req.Quantity, req.Reason))
		if err := s.monitor.Reevaluate(ctx, repos, item); err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		result = item
		events = item.GetDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, tenantID, events)
	resp := ToStockItemResponse(result)
	return &resp, nil
}

// AdjustStock sets on-hand quantity to an absolute value, recording the
// signed delta. Setting the current quantity is a no-op and writes nothing.
func (s *LedgerService) AdjustStock(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*StockItemResponse, error) {
	if req.NewQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	var (
		result *stock.StockItem
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().GetOrCreateForUpdate(ctx, tenantID, req.LocationID, req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		before := item.Quantity
		delta, err := item.AdjustTo(req.NewQuantity)
		if err != nil {
			return err
		}
		if delta == 0 {
			result = item
			return nil
		}

		movement, err := stock.NewStockMovement(item, stock.MovementTypeAdjustment,
			delta, before, item.Quantity,
			req.Reason, "", "")
		if err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return err
		}

		item.AddDomainEvent(stock.NewStockAdjustedEvent(item, before, item.Quantity, req.Reason))
		if err := s.monitor.Reevaluate(ctx, repos, item); err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		result = item
		events = item.GetDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, tenantID, events)
	resp := ToStockItemResponse(result)
	return &resp, nil
}

// SetReorderPoint sets or clears the low-stock threshold for an item and
// immediately re-evaluates alert state against it.
func (s *LedgerService) SetReorderPoint(ctx context.Context, tenantID uuid.UUID, req SetReorderPointRequest) (*StockItemResponse, error) {
	var (
		result *stock.StockItem
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().GetOrCreateForUpdate(ctx, tenantID, req.LocationID, req.ProductID, req.VariantID)
		if err != nil {
			return err
		}
		if err := item.SetReorderPoint(req.ReorderPoint); err != nil {
			return err
		}
		if err := s.monitor.Reevaluate(ctx, repos, item); err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		result = item
		events = item.GetDomainEvents()
		item.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, tenantID, events)
	resp := ToStockItemResponse(result)
	return &resp, nil
}

// GetStockItem returns a single ledger row
func (s *LedgerService) GetStockItem(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*StockItemResponse, error) {
	item, err := s.items.FindByKey(ctx, tenantID, locationID, productID, variantID)
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// ListStockItems returns a page of ledger rows for a tenant
func (s *LedgerService) ListStockItems(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockItemResponse], error) {
	items, err := s.items.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.items.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]StockItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToStockItemResponse(&items[i]))
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetTotalStock returns on-hand quantity for a product summed across all
// locations.
func (s *LedgerService) GetTotalStock(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	return s.items.SumQuantityByProduct(ctx, tenantID, productID, variantID)
}

// GetTotalAvailable returns available quantity (on hand minus reserved) for
// a product summed across all locations.
func (s *LedgerService) GetTotalAvailable(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	return s.items.SumAvailableByProduct(ctx, tenantID, productID, variantID)
}

// ListMovements returns a page of the tenant's audit trail, newest first
func (s *LedgerService) ListMovements(ctx context.Context, tenantID uuid.UUID, f MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.OrderBy = "occurred_at"
	filter.OrderDir = "desc"
	if f.LocationID != nil {
		filter.Filters["location_id"] = *f.LocationID
	}
	if f.ProductID != nil {
		filter.Filters["product_id"] = *f.ProductID
	}
	if f.MovementType != "" {
		if !stock.MovementType(f.MovementType).IsValid() {
			return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
		}
		filter.Filters["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		filter.Filters["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		filter.Filters["end_date"] = *f.EndDate
	}

	movements, err := s.movements.FindForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.movements.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToMovementResponses(movements), total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetItemMovements returns a page of one item's history, newest first
func (s *LedgerService) GetItemMovements(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	filter.OrderBy = "occurred_at"
	filter.OrderDir = "desc"
	movements, err := s.movements.FindByStockItem(ctx, stockItemID, filter)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// GetInventorySummary builds the per-location dashboard view. Summaries are
// served from cache when available and rebuilt on miss.
func (s *LedgerService) GetInventorySummary(ctx context.Context, tenantID uuid.UUID) (*InventorySummary, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSummary(ctx, tenantID)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	locations, err := s.locations.FindActiveByPriority(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 10000
	items, err := s.items.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	byLocation := make(map[uuid.UUID]*LocationSummary, len(locations))
	summary := &InventorySummary{
		Locations:   make([]LocationSummary, 0, len(locations)),
		GeneratedAt: time.Now().UTC(),
	}
	for i := range locations {
		loc := &locations[i]
		valuation, err := s.items.SumValuationByLocation(ctx, tenantID, loc.ID)
		if err != nil {
			return nil, err
		}
		summary.Locations = append(summary.Locations, LocationSummary{
			LocationID:   loc.ID,
			LocationCode: loc.Code,
			LocationName: loc.Name,
			Valuation:    valuation,
		})
		byLocation[loc.ID] = &summary.Locations[len(summary.Locations)-1]
	}
	for i := range items {
		item := &items[i]
		summary.TotalQuantity += item.Quantity
		summary.TotalReserved += item.ReservedQuantity
		if ls, ok := byLocation[item.LocationID]; ok {
			ls.ItemCount++
			ls.TotalQuantity += item.Quantity
			ls.TotalReserved += item.ReservedQuantity
		}
	}

	unresolved, err := s.alerts.CountUnresolved(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary.UnresolvedAlerts = unresolved

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, tenantID, summary); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}
	return summary, nil
}

// ListAlerts returns a page of low-stock alerts
func (s *LedgerService) ListAlerts(ctx context.Context, tenantID uuid.UUID, unresolvedOnly bool, filter shared.Filter) ([]AlertResponse, error) {
	alerts, err := s.alerts.FindForTenant(ctx, tenantID, unresolvedOnly, filter)
	if err != nil {
		return nil, err
	}
	return ToAlertResponses(alerts), nil
}

// ResolveAlert manually resolves a low-stock alert with an operator note
func (s *LedgerService) ResolveAlert(ctx context.Context, tenantID, alertID uuid.UUID, note string) (*AlertResponse, error) {
	var result *stock.LowStockAlert
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		alert, err := repos.Alerts().FindByID(ctx, tenantID, alertID)
		if err != nil {
			return err
		}
		if err := alert.Resolve(note); err != nil {
			return err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return err
		}
		result = alert
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToAlertResponse(result)
	return &resp, nil
}

// afterCommit publishes events accumulated during a committed transaction
// and drops the tenant's cached summary. Failures here are logged, never
// surfaced: the ledger write already succeeded.
func (s *LedgerService) afterCommit(ctx context.Context, tenantID uuid.UUID, events []shared.DomainEvent) {
	if len(events) > 0 && s.publisher != nil {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish domain events",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("count", len(events)),
				zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSummary(ctx, tenantID); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("summary cache invalidation failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}
}
