package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// recordingHandler collects every event it receives and can be told to
// fail or panic to exercise the bus error paths.
type recordingHandler struct {
	types  []string
	seen   []shared.DomainEvent
	fail   error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.seen = append(h.seen, e)
	return h.fail
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "StockItem", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers only to handlers of the matching type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		received := &recordingHandler{types: []string{"stock.received"}}
		adjusted := &recordingHandler{types: []string{"stock.adjusted"}}
		bus.Subscribe(received)
		bus.Subscribe(adjusted)

		require.NoError(t, bus.Publish(ctx, newTestEvent("stock.received")))

		require.Len(t, received.seen, 1)
		assert.Equal(t, "stock.received", received.seen[0].EventType())
		assert.Empty(t, adjusted.seen)
	})

	t.Run("wildcard handler receives every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		all := &recordingHandler{}
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx,
			newTestEvent("stock.received"),
			newTestEvent("stock.reserved"),
		))

		require.Len(t, all.seen, 2)
		assert.Equal(t, "stock.reserved", all.seen[1].EventType())
	})

	t.Run("failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bad := &recordingHandler{types: []string{"stock.received"}, fail: errors.New("downstream unavailable")}
		good := &recordingHandler{}
		bus.Subscribe(bad)
		bus.Subscribe(good)

		require.NoError(t, bus.Publish(ctx, newTestEvent("stock.received")))

		assert.Len(t, good.seen, 1)
	})

	t.Run("panicking handler is recovered", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{types: []string{"stock.received"}, panics: true})
		after := &recordingHandler{}
		bus.Subscribe(after)

		require.NotPanics(t, func() {
			require.NoError(t, bus.Publish(ctx, newTestEvent("stock.received")))
		})
		assert.Len(t, after.seen, 1)
	})
}

func TestInMemoryEventBus_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"stock.received"}}
		bus.Subscribe(h, "stock.adjusted")

		require.NoError(t, bus.Publish(ctx, newTestEvent("stock.received")))
		assert.Empty(t, h.seen)

		require.NoError(t, bus.Publish(ctx, newTestEvent("stock.adjusted")))
		assert.Len(t, h.seen, 1)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"stock.received"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("stock.received")))
		assert.Empty(t, h.seen)
	})
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("type handlers come before wildcard handlers", func(t *testing.T) {
		reg := NewHandlerRegistry()
		typed := &recordingHandler{}
		wild := &recordingHandler{}
		reg.Register(wild)
		reg.Register(typed, "stock.received")

		handlers := reg.GetHandlers("stock.received")
		require.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0].(*recordingHandler))
		assert.Same(t, wild, handlers[1].(*recordingHandler))
	})

	t.Run("unregister removes from all registrations", func(t *testing.T) {
		reg := NewHandlerRegistry()
		h := &recordingHandler{}
		reg.Register(h, "stock.received", "stock.adjusted")
		reg.Unregister(h)

		assert.Empty(t, reg.GetHandlers("stock.received"))
		assert.Empty(t, reg.GetHandlers("stock.adjusted"))
	})
}
