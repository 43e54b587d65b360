package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// GormLowStockAlertRepository implements LowStockAlertRepository using GORM
type GormLowStockAlertRepository struct {
	db *gorm.DB
}

// NewGormLowStockAlertRepository creates a new GormLowStockAlertRepository
func NewGormLowStockAlertRepository(db *gorm.DB) *GormLowStockAlertRepository {
	return &GormLowStockAlertRepository{db: db}
}

// FindUnresolved finds the open alert for one location+product+variant
func (r *GormLowStockAlertRepository) FindUnresolved(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.LowStockAlert, error) {
	var alert stock.LowStockAlert
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND product_id = ? AND resolved = ?",
			tenantID, locationID, productID, false)
	query = applyVariant(query, variantID)
	if err := query.First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindByID finds an alert by ID within a tenant
func (r *GormLowStockAlertRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.LowStockAlert, error) {
	var alert stock.LowStockAlert
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindForTenant finds a tenant's alerts, optionally only open ones
func (r *GormLowStockAlertRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, unresolvedOnly bool, filter shared.Filter) ([]stock.LowStockAlert, error) {
	var alerts []stock.LowStockAlert
	query := r.db.WithContext(ctx).Model(&stock.LowStockAlert{}).Where("tenant_id = ?", tenantID)
	if unresolvedOnly {
		query = query.Where("resolved = ?", false)
	}
	if err := applyFilter(query, filter).Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// CountUnresolved counts a tenant's open alerts
func (r *GormLowStockAlertRepository) CountUnresolved(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.LowStockAlert{}).
		Where("tenant_id = ? AND resolved = ?", tenantID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an alert
func (r *GormLowStockAlertRepository) Save(ctx context.Context, alert *stock.LowStockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

var _ stock.LowStockAlertRepository = (*GormLowStockAlertRepository)(nil)
