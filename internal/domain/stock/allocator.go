package stock

import (
	"sort"

	"github.com/google/uuid"

	"github.com/storefront/stockcore/internal/domain/shared"
)

// Allocation is one (location, quantity) slice of a fulfilled multi-location
// request. The caller keeps these to create per-location fulfillment records
// and to hand the holds back on cancellation.
type Allocation struct {
	StockItemID uuid.UUID `json:"stock_item_id"`
	LocationID  uuid.UUID `json:"location_id"`
	Quantity    int64     `json:"quantity"`
}

// AllocationCandidate pairs a lockable ledger row with the allocation
// ordering attributes of its location.
type AllocationCandidate struct {
	Item      *StockItem
	Priority  int  // Location priority, lower allocates first
	Preferred bool // Preferred location is tried before all others
}

// Allocator is a domain service that splits a requested quantity across
// candidate locations. It only plans; acquiring row locks, mutating the
// candidates and controlling the transaction boundary belong to the
// application layer.
type Allocator struct{}

// NewAllocator creates a new Allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Plan orders candidates (preferred location first, then ascending location
// priority) and takes up to each candidate's available quantity until the
// request is met. It returns ErrInsufficientStock without mutating anything
// when the candidates cannot jointly cover the request, so a caller inside a
// transaction can roll back with no partial holds.
func (a *Allocator) Plan(candidates []AllocationCandidate, qty int64) ([]Allocation, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}

	ordered := make([]AllocationCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Preferred != ordered[j].Preferred {
			return ordered[i].Preferred
		}
		return ordered[i].Priority < ordered[j].Priority
	})

	// First pass verifies the request can be met so that no candidate is
	// touched on shortfall.
	var totalAvailable int64
	for _, c := range ordered {
		totalAvailable += c.Item.AvailableQuantity()
	}
	if totalAvailable < qty {
		return nil, shared.ErrInsufficientStock
	}

	allocations := make([]Allocation, 0, len(ordered))
	remaining := qty
	for _, c := range ordered {
		if remaining == 0 {
			break
		}
		take := c.Item.AvailableQuantity()
		if take > remaining {
			take = remaining
		}
		if take == 0 {
			continue
		}
		if err := c.Item.ReserveUnits(take); err != nil {
			return nil, err
		}
		allocations = append(allocations, Allocation{
			StockItemID: c.Item.ID,
			LocationID:  c.Item.LocationID,
			Quantity:    take,
		})
		remaining -= take
	}

	return allocations, nil
}
