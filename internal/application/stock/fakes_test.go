package stock

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// memStore backs the in-memory repositories used by the service tests. Slices
// keep insertion order so paging assertions stay deterministic.
type memStore struct {
	items        []stock.StockItem
	movements    []stock.StockMovement
	reservations []stock.Reservation
	alerts       []stock.LowStockAlert
	locations    []stock.Location
}

func (s *memStore) snapshot() memStore {
	return memStore{
		items:        append([]stock.StockItem(nil), s.items...),
		movements:    append([]stock.StockMovement(nil), s.movements...),
		reservations: append([]stock.Reservation(nil), s.reservations...),
		alerts:       append([]stock.LowStockAlert(nil), s.alerts...),
		locations:    append([]stock.Location(nil), s.locations...),
	}
}

func (s *memStore) restore(snap memStore) {
	*s = snap
}

func variantEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// memScope serializes transactions with a mutex, standing in for row locks,
// and restores a snapshot on error, standing in for rollback. Reads outside
// Execute go straight to the store, like the lock-free readers on the real
// repositories.
type memScope struct {
	mu    sync.Mutex
	store *memStore
}

func newMemScope(store *memStore) *memScope {
	return &memScope{store: store}
}

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.store.snapshot()
	if err := fn(s); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

func (s *memScope) Items() stock.StockItemRepository         { return &memItemRepo{store: s.store} }
func (s *memScope) Movements() stock.StockMovementRepository { return &memMovementRepo{store: s.store} }
func (s *memScope) Reservations() stock.ReservationRepository {
	return &memReservationRepo{store: s.store}
}
func (s *memScope) Alerts() stock.LowStockAlertRepository { return &memAlertRepo{store: s.store} }
func (s *memScope) Locations() stock.LocationRepository   { return &memLocationRepo{store: s.store} }

var _ TransactionScope = (*memScope)(nil)
var _ TransactionalRepositories = (*memScope)(nil)

type memItemRepo struct {
	store *memStore
}

var _ stock.StockItemRepository = (*memItemRepo)(nil)

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockItem, error) {
	for i := range r.store.items {
		if r.store.items[i].ID == id {
			cp := r.store.items[i]
			return &cp, nil
		}
	}
	return nil, shared.ErrStockItemNotFound
}

func (r *memItemRepo) FindByKey(_ context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockItem, error) {
	for i := range r.store.items {
		it := &r.store.items[i]
		if it.TenantID == tenantID && it.LocationID == locationID &&
			it.ProductID == productID && variantEqual(it.VariantID, variantID) {
			cp := *it
			return &cp, nil
		}
	}
	return nil, shared.ErrStockItemNotFound
}

func (r *memItemRepo) FindByKeyForUpdate(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockItem, error) {
	return r.FindByKey(ctx, tenantID, locationID, productID, variantID)
}

func (r *memItemRepo) FindByIDForUpdate(_ context.Context, tenantID, id uuid.UUID) (*stock.StockItem, error) {
	for i := range r.store.items {
		if r.store.items[i].ID == id && r.store.items[i].TenantID == tenantID {
			cp := r.store.items[i]
			return &cp, nil
		}
	}
	return nil, shared.ErrStockItemNotFound
}

func (r *memItemRepo) GetOrCreateForUpdate(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockItem, error) {
	item, err := r.FindByKey(ctx, tenantID, locationID, productID, variantID)
	if err == nil {
		return item, nil
	}
	item, err = stock.NewStockItem(tenantID, locationID, productID, variantID)
	if err != nil {
		return nil, err
	}
	r.store.items = append(r.store.items, *item)
	return item, nil
}

func (r *memItemRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) ([]stock.StockItem, error) {
	var out []stock.StockItem
	for i := range r.store.items {
		it := &r.store.items[i]
		if it.TenantID == tenantID && it.ProductID == productID && variantEqual(it.VariantID, variantID) {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockItem, error) {
	var all []stock.StockItem
	for i := range r.store.items {
		if r.store.items[i].TenantID == tenantID {
			all = append(all, r.store.items[i])
		}
	}
	return pageOf(all, filter), nil
}

func (r *memItemRepo) CountForTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	for i := range r.store.items {
		if r.store.items[i].TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *memItemRepo) locationActive(locationID uuid.UUID) bool {
	for i := range r.store.locations {
		if r.store.locations[i].ID == locationID {
			return r.store.locations[i].Active
		}
	}
	return true
}

func (r *memItemRepo) SumQuantityByProduct(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	var sum int64
	for i := range r.store.items {
		it := &r.store.items[i]
		if it.TenantID == tenantID && it.ProductID == productID &&
			variantEqual(it.VariantID, variantID) && r.locationActive(it.LocationID) {
			sum += it.Quantity
		}
	}
	return sum, nil
}

func (r *memItemRepo) SumAvailableByProduct(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	var sum int64
	for i := range r.store.items {
		it := &r.store.items[i]
		if it.TenantID == tenantID && it.ProductID == productID &&
			variantEqual(it.VariantID, variantID) && r.locationActive(it.LocationID) {
			sum += it.AvailableQuantity()
		}
	}
	return sum, nil
}

func (r *memItemRepo) SumValuationByLocation(_ context.Context, tenantID, locationID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i := range r.store.items {
		it := &r.store.items[i]
		if it.TenantID == tenantID && it.LocationID == locationID {
			sum = sum.Add(it.Valuation())
		}
	}
	return sum, nil
}

func (r *memItemRepo) Save(_ context.Context, item *stock.StockItem) error {
	// pending events never persist; a later read must not re-surface them
	stored := *item
	stored.ClearDomainEvents()
	for i := range r.store.items {
		if r.store.items[i].ID == item.ID {
			r.store.items[i] = stored
			return nil
		}
	}
	r.store.items = append(r.store.items, stored)
	return nil
}

type memMovementRepo struct {
	store *memStore
}

var _ stock.StockMovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(_ context.Context, movement *stock.StockMovement) error {
	r.store.movements = append(r.store.movements, *movement)
	return nil
}

func movementMatches(m *stock.StockMovement, filters map[string]interface{}) bool {
	if v, ok := filters["location_id"].(uuid.UUID); ok && m.LocationID != v {
		return false
	}
	if v, ok := filters["product_id"].(uuid.UUID); ok && m.ProductID != v {
		return false
	}
	if v, ok := filters["movement_type"].(string); ok && m.MovementType.String() != v {
		return false
	}
	if v, ok := filters["start_date"].(time.Time); ok && m.OccurredAt.Before(v) {
		return false
	}
	if v, ok := filters["end_date"].(time.Time); ok && m.OccurredAt.After(v) {
		return false
	}
	return true
}

func (r *memMovementRepo) FindForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockMovement, error) {
	var matched []stock.StockMovement
	for i := range r.store.movements {
		m := &r.store.movements[i]
		if m.TenantID == tenantID && movementMatches(m, filter.Filters) {
			matched = append(matched, *m)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	return pageOf(matched, filter), nil
}

func (r *memMovementRepo) FindByStockItem(_ context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]stock.StockMovement, error) {
	var matched []stock.StockMovement
	for i := range r.store.movements {
		if r.store.movements[i].StockItemID == stockItemID {
			matched = append(matched, r.store.movements[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	return pageOf(matched, filter), nil
}

func (r *memMovementRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var n int64
	for i := range r.store.movements {
		m := &r.store.movements[i]
		if m.TenantID == tenantID && movementMatches(m, filter.Filters) {
			n++
		}
	}
	return n, nil
}

type memReservationRepo struct {
	store *memStore
}

var _ stock.ReservationRepository = (*memReservationRepo)(nil)

func (r *memReservationRepo) FindByCartAndProduct(_ context.Context, tenantID, cartID, productID uuid.UUID, variantID *uuid.UUID) (*stock.Reservation, error) {
	for i := range r.store.reservations {
		res := &r.store.reservations[i]
		if res.TenantID == tenantID && res.CartID == cartID &&
			res.ProductID == productID && variantEqual(res.VariantID, variantID) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReservationRepo) FindByCart(_ context.Context, tenantID, cartID uuid.UUID) ([]stock.Reservation, error) {
	var out []stock.Reservation
	for i := range r.store.reservations {
		res := &r.store.reservations[i]
		if res.TenantID == tenantID && res.CartID == cartID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *memReservationRepo) FindExpired(_ context.Context, now time.Time) ([]stock.Reservation, error) {
	var out []stock.Reservation
	for i := range r.store.reservations {
		if r.store.reservations[i].ExpiresAt.Before(now) {
			out = append(out, r.store.reservations[i])
		}
	}
	return out, nil
}

func (r *memReservationRepo) Save(_ context.Context, reservation *stock.Reservation) error {
	for i := range r.store.reservations {
		if r.store.reservations[i].ID == reservation.ID {
			r.store.reservations[i] = *reservation
			return nil
		}
	}
	r.store.reservations = append(r.store.reservations, *reservation)
	return nil
}

func (r *memReservationRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.store.reservations {
		if r.store.reservations[i].ID == id {
			r.store.reservations = append(r.store.reservations[:i], r.store.reservations[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memReservationRepo) CountActive(_ context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	var n int64
	for i := range r.store.reservations {
		res := &r.store.reservations[i]
		if res.TenantID == tenantID && res.ExpiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

func (r *memReservationRepo) SumActiveQuantity(_ context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	var sum int64
	for i := range r.store.reservations {
		res := &r.store.reservations[i]
		if res.TenantID == tenantID && res.ExpiresAt.After(now) {
			sum += res.Quantity
		}
	}
	return sum, nil
}

type memAlertRepo struct {
	store *memStore
}

var _ stock.LowStockAlertRepository = (*memAlertRepo)(nil)

func (r *memAlertRepo) FindUnresolved(_ context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.LowStockAlert, error) {
	for i := range r.store.alerts {
		a := &r.store.alerts[i]
		if a.TenantID == tenantID && a.LocationID == locationID &&
			a.ProductID == productID && variantEqual(a.VariantID, variantID) && !a.Resolved {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAlertRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*stock.LowStockAlert, error) {
	for i := range r.store.alerts {
		if r.store.alerts[i].ID == id && r.store.alerts[i].TenantID == tenantID {
			cp := r.store.alerts[i]
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAlertRepo) FindForTenant(_ context.Context, tenantID uuid.UUID, unresolvedOnly bool, filter shared.Filter) ([]stock.LowStockAlert, error) {
	var out []stock.LowStockAlert
	for i := range r.store.alerts {
		a := &r.store.alerts[i]
		if a.TenantID != tenantID {
			continue
		}
		if unresolvedOnly && a.Resolved {
			continue
		}
		out = append(out, *a)
	}
	return pageOf(out, filter), nil
}

func (r *memAlertRepo) CountUnresolved(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	for i := range r.store.alerts {
		if r.store.alerts[i].TenantID == tenantID && !r.store.alerts[i].Resolved {
			n++
		}
	}
	return n, nil
}

func (r *memAlertRepo) Save(_ context.Context, alert *stock.LowStockAlert) error {
	for i := range r.store.alerts {
		if r.store.alerts[i].ID == alert.ID {
			r.store.alerts[i] = *alert
			return nil
		}
	}
	r.store.alerts = append(r.store.alerts, *alert)
	return nil
}

type memLocationRepo struct {
	store *memStore
}

var _ stock.LocationRepository = (*memLocationRepo)(nil)

func (r *memLocationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*stock.Location, error) {
	for i := range r.store.locations {
		if r.store.locations[i].ID == id && r.store.locations[i].TenantID == tenantID {
			cp := r.store.locations[i]
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLocationRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*stock.Location, error) {
	for i := range r.store.locations {
		if r.store.locations[i].TenantID == tenantID && r.store.locations[i].Code == code {
			cp := r.store.locations[i]
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLocationRepo) FindActiveByPriority(_ context.Context, tenantID uuid.UUID) ([]stock.Location, error) {
	var out []stock.Location
	for i := range r.store.locations {
		loc := &r.store.locations[i]
		if loc.TenantID == tenantID && loc.Active {
			out = append(out, *loc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *memLocationRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Location, error) {
	var out []stock.Location
	for i := range r.store.locations {
		if r.store.locations[i].TenantID == tenantID {
			out = append(out, r.store.locations[i])
		}
	}
	return pageOf(out, filter), nil
}

func (r *memLocationRepo) CountForTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	for i := range r.store.locations {
		if r.store.locations[i].TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *memLocationRepo) Save(_ context.Context, location *stock.Location) error {
	stored := *location
	stored.ClearDomainEvents()
	for i := range r.store.locations {
		if r.store.locations[i].ID == location.ID {
			r.store.locations[i] = stored
			return nil
		}
	}
	r.store.locations = append(r.store.locations, stored)
	return nil
}

func pageOf[T any](all []T, filter shared.Filter) []T {
	offset := filter.Offset()
	if offset >= len(all) {
		return nil
	}
	end := offset + filter.Limit()
	if end > len(all) {
		end = len(all)
	}
	return append([]T(nil), all[offset:end]...)
}

// testEnv wires the services over a shared in-memory store
type testEnv struct {
	store     *memStore
	scope     *memScope
	publisher *capturingPublisher
	cache     *memSummaryCache
	ledger    *LedgerService
	carts     *ReservationService
	alloc     *AllocationService
	tenantID  uuid.UUID
}

func newTestEnv() *testEnv {
	store := &memStore{}
	scope := newMemScope(store)
	publisher := &capturingPublisher{}
	cache := newMemSummaryCache()
	logger := zap.NewNop()
	monitor := NewLowStockMonitor(logger)
	items := &memItemRepo{store: store}
	movements := &memMovementRepo{store: store}
	reservations := &memReservationRepo{store: store}
	alerts := &memAlertRepo{store: store}
	locations := &memLocationRepo{store: store}
	return &testEnv{
		store:     store,
		scope:     scope,
		publisher: publisher,
		cache:     cache,
		ledger:    NewLedgerService(scope, items, movements, alerts, locations, monitor, publisher, cache, logger),
		carts:     NewReservationService(scope, items, reservations, publisher, logger, 0),
		alloc:     NewAllocationService(scope, publisher, logger),
		tenantID:  uuid.New(),
	}
}

func (e *testEnv) addLocation(t *testing.T, code string, priority int) *stock.Location {
	t.Helper()
	loc, err := stock.NewLocation(e.tenantID, code, code+" warehouse", priority)
	require.NoError(t, err)
	require.NoError(t, (&memLocationRepo{store: e.store}).Save(context.Background(), loc))
	return loc
}

func (e *testEnv) addStock(t *testing.T, locationID, productID uuid.UUID, variantID *uuid.UUID, qty int64) *StockItemResponse {
	t.Helper()
	resp, err := e.ledger.AddStock(context.Background(), e.tenantID, AddStockRequest{
		LocationID: locationID,
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   qty,
		Reason:     "initial receipt",
	})
	require.NoError(t, err)
	return resp
}

// capturingPublisher records published events for assertions
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

var _ shared.EventPublisher = (*capturingPublisher)(nil)

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func (p *capturingPublisher) countOf(eventType string) int {
	n := 0
	for _, t := range p.eventTypes() {
		if t == eventType {
			n++
		}
	}
	return n
}

// memSummaryCache is an in-process SummaryCache for ledger tests
type memSummaryCache struct {
	mu            sync.Mutex
	summaries     map[uuid.UUID]*InventorySummary
	invalidations int
}

var _ SummaryCache = (*memSummaryCache)(nil)

func newMemSummaryCache() *memSummaryCache {
	return &memSummaryCache{summaries: make(map[uuid.UUID]*InventorySummary)}
}

func (c *memSummaryCache) GetSummary(_ context.Context, tenantID uuid.UUID) (*InventorySummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaries[tenantID], nil
}

func (c *memSummaryCache) SetSummary(_ context.Context, tenantID uuid.UUID, summary *InventorySummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[tenantID] = summary
	return nil
}

func (c *memSummaryCache) InvalidateSummary(_ context.Context, tenantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaries, tenantID)
	c.invalidations++
	return nil
}
