package stock

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// CreateLocationRequest carries the inputs for a new location
type CreateLocationRequest struct {
	Code     string
	Name     string
	Priority int
	Address  string
	Notes    string
}

// UpdateLocationRequest carries mutable location fields
type UpdateLocationRequest struct {
	Name     string
	Address  string
	Notes    string
	Priority *int
}

// LocationService manages the tenant's fulfillment locations
type LocationService struct {
	locations stock.LocationRepository
	logger    *zap.Logger
}

// NewLocationService creates a LocationService
func NewLocationService(locations stock.LocationRepository, logger *zap.Logger) *LocationService {
	return &LocationService{locations: locations, logger: logger}
}

// Create registers a new location. Codes are unique per tenant.
func (s *LocationService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	existing, err := s.locations.FindByCode(ctx, tenantID, req.Code)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("LOCATION_CODE_TAKEN", "A location with this code already exists")
	}

	location, err := stock.NewLocation(tenantID, req.Code, req.Name, req.Priority)
	if err != nil {
		return nil, err
	}
	location.Address = req.Address
	location.Notes = req.Notes
	if err := s.locations.Save(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("location created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("location_id", location.ID.String()),
		zap.String("code", location.Code))
	resp := ToLocationResponse(location)
	return &resp, nil
}

// Update changes a location's mutable fields
func (s *LocationService) Update(ctx context.Context, tenantID, locationID uuid.UUID, req UpdateLocationRequest) (*LocationResponse, error) {
	location, err := s.locations.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if err := location.Update(req.Name, req.Address, req.Notes); err != nil {
		return nil, err
	}
	if req.Priority != nil {
		if err := location.SetPriority(*req.Priority); err != nil {
			return nil, err
		}
	}
	if err := s.locations.Save(ctx, location); err != nil {
		return nil, err
	}
	resp := ToLocationResponse(location)
	return &resp, nil
}

// SetActive activates or deactivates a location. Deactivated locations are
// skipped by the allocator but keep their ledger rows.
func (s *LocationService) SetActive(ctx context.Context, tenantID, locationID uuid.UUID, active bool) (*LocationResponse, error) {
	location, err := s.locations.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if active {
		location.Activate()
	} else {
		location.Deactivate()
	}
	if err := s.locations.Save(ctx, location); err != nil {
		return nil, err
	}
	resp := ToLocationResponse(location)
	return &resp, nil
}

// Get returns one location
func (s *LocationService) Get(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationResponse, error) {
	location, err := s.locations.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	resp := ToLocationResponse(location)
	return &resp, nil
}

// List returns a page of the tenant's locations
func (s *LocationService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[LocationResponse], error) {
	locations, err := s.locations.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.locations.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToLocationResponses(locations), total, filter.Page, filter.PageSize)
	return &page, nil
}
