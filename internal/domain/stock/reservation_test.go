package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Receive(10))

	t.Run("creates reservation from item", func(t *testing.T) {
		cartID := uuid.New()
		res, err := NewReservation(item, cartID, "sess-1", 3, 15*time.Minute)
		require.NoError(t, err)

		assert.Equal(t, item.TenantID, res.TenantID)
		assert.Equal(t, cartID, res.CartID)
		assert.Equal(t, "sess-1", res.SessionID)
		assert.Equal(t, item.ProductID, res.ProductID)
		assert.Equal(t, item.ID, res.StockItemID)
		assert.Equal(t, item.LocationID, res.LocationID)
		assert.Equal(t, int64(3), res.Quantity)
		assert.False(t, res.IsExpired())
		assert.InDelta(t, (15 * time.Minute).Seconds(), res.TimeUntilExpiry().Seconds(), 2)
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		_, err := NewReservation(item, uuid.Nil, "", 3, 15*time.Minute)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewReservation(item, uuid.New(), "", 0, 15*time.Minute)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, err := NewReservation(item, uuid.New(), "", 3, 0)
		assert.Error(t, err)
	})
}

func TestReservationExpiry(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Receive(10))

	res, err := NewReservation(item, uuid.New(), "", 2, time.Minute)
	require.NoError(t, err)

	res.ExpiresAt = time.Now().Add(-time.Second)
	assert.True(t, res.IsExpired())
	assert.Negative(t, res.TimeUntilExpiry())

	res.Extend(10 * time.Minute)
	assert.False(t, res.IsExpired())
	assert.InDelta(t, (10 * time.Minute).Seconds(), res.TimeUntilExpiry().Seconds(), 2)
}

func TestReservationSetQuantity(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Receive(10))

	res, err := NewReservation(item, uuid.New(), "", 2, time.Minute)
	require.NoError(t, err)

	require.NoError(t, res.SetQuantity(5))
	assert.Equal(t, int64(5), res.Quantity)

	assert.Error(t, res.SetQuantity(0))
	assert.Error(t, res.SetQuantity(-1))
	assert.Equal(t, int64(5), res.Quantity)
}
