package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by ID within a tenant
func (r *GormLocationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Location, error) {
	var location stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindByCode finds a location by its tenant-unique code
func (r *GormLocationRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*stock.Location, error) {
	var location stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindActiveByPriority finds a tenant's active locations in allocation order.
// The secondary sort on created_at keeps the order stable when priorities tie.
func (r *GormLocationRepository) FindActiveByPriority(ctx context.Context, tenantID uuid.UUID) ([]stock.Location, error) {
	var locations []stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("priority ASC, created_at ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// FindAllForTenant finds all locations for a tenant
func (r *GormLocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Location, error) {
	var locations []stock.Location
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Location{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// CountForTenant counts locations for a tenant
func (r *GormLocationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Location{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, location *stock.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

var _ stock.LocationRepository = (*GormLocationRepository)(nil)
