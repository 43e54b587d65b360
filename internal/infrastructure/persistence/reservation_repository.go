package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByCartAndProduct finds a cart's hold on one product
func (r *GormReservationRepository) FindByCartAndProduct(ctx context.Context, tenantID, cartID, productID uuid.UUID, variantID *uuid.UUID) (*stock.Reservation, error) {
	var reservation stock.Reservation
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND cart_id = ? AND product_id = ?", tenantID, cartID, productID)
	query = applyVariant(query, variantID)
	if err := query.First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByCart finds all of a cart's holds
func (r *GormReservationRepository) FindByCart(ctx context.Context, tenantID, cartID uuid.UUID) ([]stock.Reservation, error) {
	var reservations []stock.Reservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND cart_id = ?", tenantID, cartID).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindExpired finds holds past their expiry across all tenants
func (r *GormReservationRepository) FindExpired(ctx context.Context, now time.Time) ([]stock.Reservation, error) {
	var reservations []stock.Reservation
	if err := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Order("expires_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Save creates or updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, reservation *stock.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// Delete removes a reservation. Deleting an already-deleted row is not an
// error, which keeps release idempotent.
func (r *GormReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&stock.Reservation{}, "id = ?", id).Error
}

// CountActive counts live holds for a tenant
func (r *GormReservationRepository) CountActive(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Reservation{}).
		Where("tenant_id = ? AND expires_at > ?", tenantID, now).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumActiveQuantity sums units held by live reservations for a tenant
func (r *GormReservationRepository) SumActiveQuantity(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.Reservation{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND expires_at > ?", tenantID, now).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

var _ stock.ReservationRepository = (*GormReservationRepository)(nil)
