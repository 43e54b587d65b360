package stock

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// AlertNotifier delivers low-stock notifications. Implementations can back
// different channels (in-app, email, webhook).
type AlertNotifier interface {
	NotifyOpened(ctx context.Context, event *stock.LowStockOpenedEvent) error
	NotifyResolved(ctx context.Context, event *stock.LowStockResolvedEvent) error
}

// LowStockEventHandler subscribes to alert lifecycle events and forwards
// them to a notifier. It runs after commit, so everything it sees is durable.
type LowStockEventHandler struct {
	logger   *zap.Logger
	notifier AlertNotifier
}

// NewLowStockEventHandler creates a handler; notifier may be nil, in which
// case events are only logged.
func NewLowStockEventHandler(logger *zap.Logger, notifier AlertNotifier) *LowStockEventHandler {
	return &LowStockEventHandler{logger: logger, notifier: notifier}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockEventHandler) EventTypes() []string {
	return []string{stock.EventTypeLowStockOpened, stock.EventTypeLowStockResolved}
}

// Handle processes an alert lifecycle event
func (h *LowStockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *stock.LowStockOpenedEvent:
		h.logger.Warn("low stock alert opened",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("location_id", e.LocationID.String()),
			zap.String("product_id", e.ProductID.String()),
			zap.Int64("reorder_point", e.ReorderPoint),
			zap.Int64("available_quantity", e.AvailableQuantity),
		)
		if h.notifier != nil {
			if err := h.notifier.NotifyOpened(ctx, e); err != nil {
				// notification failure never fails event handling
				h.logger.Error("failed to send low stock notification",
					zap.String("alert_id", e.AlertID.String()),
					zap.Error(err))
			}
		}
		return nil
	case *stock.LowStockResolvedEvent:
		h.logger.Info("low stock alert resolved",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("location_id", e.LocationID.String()),
			zap.String("product_id", e.ProductID.String()),
			zap.Int64("available_quantity", e.AvailableQuantity),
		)
		if h.notifier != nil {
			if err := h.notifier.NotifyResolved(ctx, e); err != nil {
				h.logger.Error("failed to send resolution notification",
					zap.String("alert_id", e.AlertID.String()),
					zap.Error(err))
			}
		}
		return nil
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

var _ shared.EventHandler = (*LowStockEventHandler)(nil)

// LoggingAlertNotifier logs notifications instead of delivering them.
// Useful in development and as the default wiring.
type LoggingAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingAlertNotifier creates a new logging notifier
func NewLoggingAlertNotifier(logger *zap.Logger) *LoggingAlertNotifier {
	return &LoggingAlertNotifier{logger: logger}
}

// NotifyOpened logs an opened alert
func (n *LoggingAlertNotifier) NotifyOpened(_ context.Context, event *stock.LowStockOpenedEvent) error {
	n.logger.Warn("LOW STOCK",
		zap.String("product_id", event.ProductID.String()),
		zap.String("location_id", event.LocationID.String()),
		zap.Int64("available", event.AvailableQuantity),
		zap.Int64("reorder_point", event.ReorderPoint),
	)
	return nil
}

// NotifyResolved logs a resolved alert
func (n *LoggingAlertNotifier) NotifyResolved(_ context.Context, event *stock.LowStockResolvedEvent) error {
	n.logger.Info("LOW STOCK CLEARED",
		zap.String("product_id", event.ProductID.String()),
		zap.String("location_id", event.LocationID.String()),
		zap.Int64("available", event.AvailableQuantity),
	)
	return nil
}

var _ AlertNotifier = (*LoggingAlertNotifier)(nil)
