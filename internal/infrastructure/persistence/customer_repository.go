package persistence

import (
	"context"
	"errors"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/bara/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive finds all active customers
func (r *GormCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]crm.Customer, error) {
	var customerModels []models.CustomerModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.CustomerModel{}).
			Where("status = ?", crm.CustomerStatusActive),
		filter,
	)

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]crm.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// SearchByName finds active customers whose folded full name contains the
// folded search term
func (r *GormCustomerRepository) SearchByName(ctx context.Context, term string, limit int) ([]crm.Customer, error) {
	if term == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Search term cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND search_name LIKE ?", crm.CustomerStatusActive, "%"+term+"%").
		Order("search_name ASC").
		Limit(limit).
		Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]crm.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// FindByPhone finds active customers owning a phone with the given
// normalized number
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, normalizedPhone string) ([]crm.Customer, error) {
	if normalizedPhone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}

	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_phones ON customer_phones.customer_id = customers.id").
		Where("customer_phones.normalized_number = ? AND customers.status = ?", normalizedPhone, crm.CustomerStatusActive).
		Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]crm.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *crm.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a customer with optimistic locking (version check).
// Returns a concurrency conflict if the row changed since it was read.
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *crm.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", customer.ID, customer.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})
	if filter.Search != "" {
		query = query.Where("search_name LIKE ?", "%"+crm.FoldText(filter.Search)+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination and ordering from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy != "" {
		dir := "ASC"
		if filter.OrderDir == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}
