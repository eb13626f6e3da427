package persistence

import (
	"context"
	"errors"

	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/bara/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerID finds all orders attributed to a customer, newest first
func (r *GormOrderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]ordering.Order, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("ordered_at DESC"))
}

// FindByClusterID finds all orders linked to a cluster, newest first
func (r *GormOrderRepository) FindByClusterID(ctx context.Context, clusterID uuid.UUID) ([]ordering.Order, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("cluster_id = ?", clusterID).
		Order("ordered_at DESC"))
}

// FindByContactPhone finds orders whose captured contact phone matches the
// normalized digit string, newest first
func (r *GormOrderRepository) FindByContactPhone(ctx context.Context, normalizedPhone string, limit int) ([]ordering.Order, error) {
	if normalizedPhone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}
	if limit <= 0 {
		limit = 100
	}

	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("contact_digits = ?", normalizedPhone).
		Order("ordered_at DESC").
		Limit(limit))
}

// FindAnonymous finds orders with neither customer nor cluster linkage,
// newest first
func (r *GormOrderRepository) FindAnonymous(ctx context.Context, limit int) ([]ordering.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("customer_id IS NULL AND cluster_id IS NULL").
		Order("ordered_at DESC").
		Limit(limit))
}

// Save creates or updates an order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(model).Error
}

// SaveWithLock saves an order with optimistic locking (version check).
// Items are not touched; only the order row is versioned.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)
	model.Items = nil
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormOrderRepository) findAll(ctx context.Context, query *gorm.DB) ([]ordering.Order, error) {
	var orderModels []models.OrderModel
	if err := query.Preload("Items").Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]ordering.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}
