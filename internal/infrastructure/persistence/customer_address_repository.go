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

// GormCustomerAddressRepository implements CustomerAddressRepository using GORM
type GormCustomerAddressRepository struct {
	db *gorm.DB
}

// NewGormCustomerAddressRepository creates a new GormCustomerAddressRepository
func NewGormCustomerAddressRepository(db *gorm.DB) *GormCustomerAddressRepository {
	return &GormCustomerAddressRepository{db: db}
}

// FindByID finds an address by its ID
func (r *GormCustomerAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.CustomerAddress, error) {
	var model models.CustomerAddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerID finds all addresses for a customer, default first
func (r *GormCustomerAddressRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]crm.CustomerAddress, error) {
	var addressModels []models.CustomerAddressModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default DESC, added_at ASC").
		Find(&addressModels).Error; err != nil {
		return nil, err
	}

	addresses := make([]crm.CustomerAddress, len(addressModels))
	for i := range addressModels {
		addresses[i] = *addressModels[i].ToDomain()
	}
	return addresses, nil
}

// FindDefault finds the customer's default address
func (r *GormCustomerAddressRepository) FindDefault(ctx context.Context, customerID uuid.UUID) (*crm.CustomerAddress, error) {
	var model models.CustomerAddressModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNormalizedKey finds addresses sharing a duplicate-detection key
func (r *GormCustomerAddressRepository) FindByNormalizedKey(ctx context.Context, normalizedKey string) ([]crm.CustomerAddress, error) {
	if normalizedKey == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Normalized key cannot be empty")
	}

	var addressModels []models.CustomerAddressModel
	if err := r.db.WithContext(ctx).
		Where("normalized_key = ?", normalizedKey).
		Find(&addressModels).Error; err != nil {
		return nil, err
	}

	addresses := make([]crm.CustomerAddress, len(addressModels))
	for i := range addressModels {
		addresses[i] = *addressModels[i].ToDomain()
	}
	return addresses, nil
}

// FindPendingValidation finds addresses awaiting async validation, oldest
// first so nothing starves
func (r *GormCustomerAddressRepository) FindPendingValidation(ctx context.Context, limit int) ([]crm.CustomerAddress, error) {
	if limit <= 0 {
		limit = 50
	}

	var addressModels []models.CustomerAddressModel
	if err := r.db.WithContext(ctx).
		Where("validation_status = ?", crm.AddressValidationPending).
		Order("added_at ASC").
		Limit(limit).
		Find(&addressModels).Error; err != nil {
		return nil, err
	}

	addresses := make([]crm.CustomerAddress, len(addressModels))
	for i := range addressModels {
		addresses[i] = *addressModels[i].ToDomain()
	}
	return addresses, nil
}

// Save creates or updates an address
func (r *GormCustomerAddressRepository) Save(ctx context.Context, address *crm.CustomerAddress) error {
	model := models.CustomerAddressModelFromDomain(address)
	return r.db.WithContext(ctx).Save(model).Error
}

// SetDefault makes the given address the customer's only default address.
// The unset of the old default and the set of the new one run in one
// transaction so no two rows are ever default together.
func (r *GormCustomerAddressRepository) SetDefault(ctx context.Context, customerID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CustomerAddressModel{}).
			Where("customer_id = ? AND is_default = ?", customerID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}

		result := tx.Model(&models.CustomerAddressModel{}).
			Where("id = ? AND customer_id = ?", addressID, customerID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Delete deletes an address
func (r *GormCustomerAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerAddressModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
