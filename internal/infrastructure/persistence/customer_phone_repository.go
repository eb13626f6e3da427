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

// GormCustomerPhoneRepository implements CustomerPhoneRepository using GORM
type GormCustomerPhoneRepository struct {
	db *gorm.DB
}

// NewGormCustomerPhoneRepository creates a new GormCustomerPhoneRepository
func NewGormCustomerPhoneRepository(db *gorm.DB) *GormCustomerPhoneRepository {
	return &GormCustomerPhoneRepository{db: db}
}

// FindByID finds a phone by its ID
func (r *GormCustomerPhoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.CustomerPhone, error) {
	var model models.CustomerPhoneModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerID finds all phones for a customer, primary first
func (r *GormCustomerPhoneRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]crm.CustomerPhone, error) {
	var phoneModels []models.CustomerPhoneModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_primary DESC, added_at ASC").
		Find(&phoneModels).Error; err != nil {
		return nil, err
	}

	phones := make([]crm.CustomerPhone, len(phoneModels))
	for i := range phoneModels {
		phones[i] = *phoneModels[i].ToDomain()
	}
	return phones, nil
}

// FindPrimary finds the customer's primary phone
func (r *GormCustomerPhoneRepository) FindPrimary(ctx context.Context, customerID uuid.UUID) (*crm.CustomerPhone, error) {
	var model models.CustomerPhoneModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_primary = ?", customerID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNormalizedNumber finds phones matching a normalized digit string
func (r *GormCustomerPhoneRepository) FindByNormalizedNumber(ctx context.Context, normalizedPhone string) ([]crm.CustomerPhone, error) {
	if normalizedPhone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}

	var phoneModels []models.CustomerPhoneModel
	if err := r.db.WithContext(ctx).
		Where("normalized_number = ?", normalizedPhone).
		Find(&phoneModels).Error; err != nil {
		return nil, err
	}

	phones := make([]crm.CustomerPhone, len(phoneModels))
	for i := range phoneModels {
		phones[i] = *phoneModels[i].ToDomain()
	}
	return phones, nil
}

// Save creates or updates a phone
func (r *GormCustomerPhoneRepository) Save(ctx context.Context, phone *crm.CustomerPhone) error {
	model := models.CustomerPhoneModelFromDomain(phone)
	return r.db.WithContext(ctx).Save(model).Error
}

// SetPrimary makes the given phone the customer's only primary phone.
// The unset of the old primary and the set of the new one run in one
// transaction so no two rows are ever primary together.
func (r *GormCustomerPhoneRepository) SetPrimary(ctx context.Context, customerID, phoneID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CustomerPhoneModel{}).
			Where("customer_id = ? AND is_primary = ?", customerID, true).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		result := tx.Model(&models.CustomerPhoneModel{}).
			Where("id = ? AND customer_id = ?", phoneID, customerID).
			Update("is_primary", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Delete deletes a phone
func (r *GormCustomerPhoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerPhoneModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
