package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/stock"
)

func monitorFixture(t *testing.T, quantity int64, reorderPoint *int64) (*LowStockMonitor, *memScope, *stock.StockItem) {
	t.Helper()
	store := &memStore{}
	scope := newMemScope(store)
	item, err := stock.NewStockItem(uuid.New(), uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	if quantity > 0 {
		require.NoError(t, item.Receive(quantity))
	}
	require.NoError(t, item.SetReorderPoint(reorderPoint))
	item.ClearDomainEvents()
	return NewLowStockMonitor(zap.NewNop()), scope, item
}

func TestLowStockMonitor_Reevaluate(t *testing.T) {
	ctx := context.Background()
	point := int64(5)

	t.Run("opens an alert when availability falls to the threshold", func(t *testing.T) {
		monitor, scope, item := monitorFixture(t, 5, &point)

		require.NoError(t, monitor.Reevaluate(ctx, scope, item))

		require.Len(t, scope.store.alerts, 1)
		alert := scope.store.alerts[0]
		assert.False(t, alert.Resolved)
		assert.Equal(t, int64(5), alert.ReorderPoint)
		assert.Equal(t, int64(5), alert.AvailableQuantity)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, stock.EventTypeLowStockOpened, events[0].EventType())
	})

	t.Run("does not open a second alert while one is open", func(t *testing.T) {
		monitor, scope, item := monitorFixture(t, 5, &point)

		require.NoError(t, monitor.Reevaluate(ctx, scope, item))
		item.ClearDomainEvents()
		require.NoError(t, monitor.Reevaluate(ctx, scope, item))

		assert.Len(t, scope.store.alerts, 1)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("resolves the open alert once availability recovers", func(t *testing.T) {
		monitor, scope, item := monitorFixture(t, 5, &point)
		require.NoError(t, monitor.Reevaluate(ctx, scope, item))
		item.ClearDomainEvents()

		require.NoError(t, item.Receive(20))
		require.NoError(t, monitor.Reevaluate(ctx, scope, item))

		require.Len(t, scope.store.alerts, 1)
		alert := scope.store.alerts[0]
		assert.True(t, alert.Resolved)
		assert.Equal(t, stock.ResolutionNoteReplenished, alert.ResolutionNote)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, stock.EventTypeLowStockResolved, events[0].EventType())
	})

	t.Run("no threshold means no alerting", func(t *testing.T) {
		monitor, scope, item := monitorFixture(t, 0, nil)

		require.NoError(t, monitor.Reevaluate(ctx, scope, item))
		assert.Empty(t, scope.store.alerts)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("reserved units count against availability", func(t *testing.T) {
		monitor, scope, item := monitorFixture(t, 10, &point)
		require.NoError(t, item.ReserveUnits(6))

		require.NoError(t, monitor.Reevaluate(ctx, scope, item))
		require.Len(t, scope.store.alerts, 1)
		assert.Equal(t, int64(4), scope.store.alerts[0].AvailableQuantity)
	})
}
