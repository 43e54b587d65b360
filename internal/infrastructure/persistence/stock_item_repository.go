package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/stockcore/internal/domain/shared"
	"github.com/storefront/stockcore/internal/domain/stock"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock item by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrStockItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByKey finds a stock item by its location+product+variant key
func (r *GormStockItemRepository) FindByKey(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND product_id = ?", tenantID, locationID, productID)
	query = applyVariant(query, variantID)
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrStockItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByKeyForUpdate finds a stock item by key holding a row lock until the
// surrounding transaction ends.
func (r *GormStockItemRepository) FindByKeyForUpdate(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	query := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND location_id = ? AND product_id = ?", tenantID, locationID, productID)
	query = applyVariant(query, variantID)
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrStockItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate finds a stock item by ID holding a row lock
func (r *GormStockItemRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrStockItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetOrCreateForUpdate returns the locked stock item for a key, creating the
// row first when it does not exist. ON CONFLICT absorbs the race where two
// transactions create the same key at once; the loser locks the winner's row.
func (r *GormStockItemRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, locationID, productID uuid.UUID, variantID *uuid.UUID) (*stock.StockItem, error) {
	item, err := r.FindByKeyForUpdate(ctx, tenantID, locationID, productID, variantID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrStockItemNotFound) {
		return nil, err
	}

	item, err = stock.NewStockItem(tenantID, locationID, productID, variantID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "location_id"},
				{Name: "product_id"}, {Name: "variant_id"},
			},
			DoNothing: true,
		}).
		Create(item).Error; err != nil {
		return nil, err
	}

	return r.FindByKeyForUpdate(ctx, tenantID, locationID, productID, variantID)
}

// FindByProduct finds a product's stock items across all locations
func (r *GormStockItemRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) ([]stock.StockItem, error) {
	var items []stock.StockItem
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	query = applyVariant(query, variantID)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForTenant finds all stock items for a tenant
func (r *GormStockItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockItem, error) {
	var items []stock.StockItem
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockItem{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForTenant counts stock items for a tenant
func (r *GormStockItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.StockItem{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByProduct sums on-hand quantity for a product across active
// locations.
func (r *GormStockItemRepository) SumQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	return r.sumByProduct(ctx, "COALESCE(SUM(stock_items.quantity), 0) as total", tenantID, productID, variantID)
}

// SumAvailableByProduct sums available quantity for a product across active
// locations.
func (r *GormStockItemRepository) SumAvailableByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	return r.sumByProduct(ctx, "COALESCE(SUM(stock_items.quantity - stock_items.reserved_quantity), 0) as total", tenantID, productID, variantID)
}

func (r *GormStockItemRepository) sumByProduct(ctx context.Context, selectExpr string, tenantID, productID uuid.UUID, variantID *uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	query := r.db.WithContext(ctx).
		Model(&stock.StockItem{}).
		Select(selectExpr).
		Joins("JOIN locations ON locations.id = stock_items.location_id AND locations.active = ?", true).
		Where("stock_items.tenant_id = ? AND stock_items.product_id = ?", tenantID, productID)
	if variantID == nil {
		query = query.Where("stock_items.variant_id IS NULL")
	} else {
		query = query.Where("stock_items.variant_id = ?", *variantID)
	}
	if err := query.Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// SumValuationByLocation sums on-hand value at a location using unit cost
func (r *GormStockItemRepository) SumValuationByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.StockItem{}).
		Select("COALESCE(SUM(quantity * unit_cost), 0) as total").
		Where("tenant_id = ? AND location_id = ? AND unit_cost IS NOT NULL", tenantID, locationID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a stock item
func (r *GormStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// applyVariant narrows a query to one variant; nil matches the variant-less row
func applyVariant(query *gorm.DB, variantID *uuid.UUID) *gorm.DB {
	if variantID == nil {
		return query.Where("variant_id IS NULL")
	}
	return query.Where("variant_id = ?", *variantID)
}

// applyFilter applies pagination and ordering to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}
	return query
}

var _ stock.StockItemRepository = (*GormStockItemRepository)(nil)
