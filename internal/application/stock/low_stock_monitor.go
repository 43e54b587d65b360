package stock

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// LowStockMonitor derives alert state from the ledger. It is invoked after
// every mutation that can move available quantity across the reorder point,
// inside the same transaction as the mutation, so the "at most one unresolved
// alert per key" rule cannot be broken by a concurrent writer.
//
// Events describing the transition are appended to the stock item aggregate
// and published by the calling service after commit.
type LowStockMonitor struct {
	logger *zap.Logger
}

// NewLowStockMonitor creates a new LowStockMonitor
func NewLowStockMonitor(logger *zap.Logger) *LowStockMonitor {
	return &LowStockMonitor{logger: logger}
}

// Reevaluate opens or resolves the alert for the item's key based on its
// current available quantity. Items without a reorder point only ever resolve.
func (m *LowStockMonitor) Reevaluate(ctx context.Context, repos TransactionalRepositories, item *stock.StockItem) error {
	open, err := repos.Alerts().FindUnresolved(ctx, item.TenantID, item.LocationID, item.ProductID, item.VariantID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if item.IsBelowReorderPoint() {
		if open != nil {
			return nil // Condition already alerted
		}
		alert, err := stock.NewLowStockAlert(item)
		if err != nil {
			return err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return err
		}
		item.AddDomainEvent(stock.NewLowStockOpenedEvent(item, alert))
		m.logger.Warn("low stock alert opened",
			zap.String("tenant_id", item.TenantID.String()),
			zap.String("location_id", item.LocationID.String()),
			zap.String("product_id", item.ProductID.String()),
			zap.Int64("available", item.AvailableQuantity()),
			zap.Int64("reorder_point", alert.ReorderPoint),
		)
		return nil
	}

	if open == nil {
		return nil
	}
	if err := open.Resolve(stock.ResolutionNoteReplenished); err != nil {
		return err
	}
	if err := repos.Alerts().Save(ctx, open); err != nil {
		return err
	}
	item.AddDomainEvent(stock.NewLowStockResolvedEvent(item, open))
	m.logger.Info("low stock alert resolved",
		zap.String("tenant_id", item.TenantID.String()),
		zap.String("product_id", item.ProductID.String()),
		zap.Int64("available", item.AvailableQuantity()),
	)
	return nil
}
