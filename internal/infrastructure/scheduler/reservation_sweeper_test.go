package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/domain/stock"
	"github.com/storefront/stockcore/internal/infrastructure/persistence"
)

type sweeperFixture struct {
	sweeper *ReservationSweeper
	db      *gorm.DB
	item    *stock.StockItem
	res     *stock.Reservation
}

// newSweeperFixture wires a real reservation service over an in-memory
// database, seeded with one stock item whose reserved units are held by an
// already-expired cart reservation.
func newSweeperFixture(t *testing.T, interval time.Duration) *sweeperFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a pooled second connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&stock.Location{},
		&stock.StockItem{},
		&stock.StockMovement{},
		&stock.Reservation{},
		&stock.LowStockAlert{},
	))

	tenantID := uuid.New()
	location, err := stock.NewLocation(tenantID, "MAIN", "Main Warehouse", 0)
	require.NoError(t, err)
	require.NoError(t, db.Create(location).Error)

	item, err := stock.NewStockItem(tenantID, location.ID, uuid.New(), nil)
	require.NoError(t, err)
	require.NoError(t, item.Receive(10))
	require.NoError(t, item.ReserveUnits(3))
	require.NoError(t, db.Create(item).Error)

	res, err := stock.NewReservation(item, uuid.New(), "sess-1", 3, time.Minute)
	require.NoError(t, err)
	res.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, db.Create(res).Error)

	svc := appstock.NewReservationService(
		persistence.NewGormTransactionScope(db),
		persistence.NewGormStockItemRepository(db),
		persistence.NewGormReservationRepository(db),
		nil,
		zap.NewNop(),
		time.Minute,
	)

	return &sweeperFixture{
		sweeper: NewReservationSweeper(svc, interval, zap.NewNop()),
		db:      db,
		item:    item,
		res:     res,
	}
}

func TestReservationSweeper_FreesExpiredHolds(t *testing.T) {
	fx := newSweeperFixture(t, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, fx.sweeper.Start(ctx))
	defer fx.sweeper.Stop(ctx)

	require.Eventually(t, func() bool {
		var count int64
		fx.db.Model(&stock.Reservation{}).Where("id = ?", fx.res.ID).Count(&count)
		return count == 0
	}, 2*time.Second, 10*time.Millisecond, "expired reservation should be swept")

	var item stock.StockItem
	require.NoError(t, fx.db.First(&item, "id = ?", fx.item.ID).Error)
	assert.EqualValues(t, 10, item.Quantity)
	assert.EqualValues(t, 0, item.ReservedQuantity, "swept units flow back into available capacity")
}

func TestReservationSweeper_StartIsIdempotent(t *testing.T) {
	fx := newSweeperFixture(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, fx.sweeper.Start(ctx))
	require.NoError(t, fx.sweeper.Start(ctx))

	require.NoError(t, fx.sweeper.Stop(ctx))
}

func TestReservationSweeper_StopWithoutStart(t *testing.T) {
	fx := newSweeperFixture(t, time.Hour)

	require.NoError(t, fx.sweeper.Stop(context.Background()))
}

func TestReservationSweeper_StopHonorsContext(t *testing.T) {
	fx := newSweeperFixture(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, fx.sweeper.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, fx.sweeper.Stop(stopCtx))
}
