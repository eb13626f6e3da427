package crm

import (
	"context"

	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindActive finds all active customers
	FindActive(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// SearchByName finds active customers whose folded full name contains the
	// folded search term
	SearchByName(ctx context.Context, term string, limit int) ([]Customer, error)

	// FindByPhone finds active customers owning a phone whose normalized
	// number matches the given digit string
	FindByPhone(ctx context.Context, normalizedPhone string) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock saves a customer with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CustomerPhoneRepository defines the interface for customer phone persistence
type CustomerPhoneRepository interface {
	// FindByID finds a phone by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerPhone, error)

	// FindByCustomerID finds all phones for a customer, primary first
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]CustomerPhone, error)

	// FindPrimary finds the customer's primary phone
	FindPrimary(ctx context.Context, customerID uuid.UUID) (*CustomerPhone, error)

	// FindByNormalizedNumber finds phones matching a normalized digit string
	FindByNormalizedNumber(ctx context.Context, normalizedPhone string) ([]CustomerPhone, error)

	// Save creates or updates a phone
	Save(ctx context.Context, phone *CustomerPhone) error

	// SetPrimary makes the given phone the customer's only primary phone.
	// The unset of the old primary and the set of the new one happen in one
	// atomic update.
	SetPrimary(ctx context.Context, customerID, phoneID uuid.UUID) error

	// Delete deletes a phone
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerAddressRepository defines the interface for customer address persistence
type CustomerAddressRepository interface {
	// FindByID finds an address by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerAddress, error)

	// FindByCustomerID finds all addresses for a customer, default first
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]CustomerAddress, error)

	// FindDefault finds the customer's default address
	FindDefault(ctx context.Context, customerID uuid.UUID) (*CustomerAddress, error)

	// FindByNormalizedKey finds addresses sharing a duplicate-detection key
	FindByNormalizedKey(ctx context.Context, normalizedKey string) ([]CustomerAddress, error)

	// FindPendingValidation finds addresses awaiting async validation
	FindPendingValidation(ctx context.Context, limit int) ([]CustomerAddress, error)

	// Save creates or updates an address
	Save(ctx context.Context, address *CustomerAddress) error

	// SetDefault makes the given address the customer's only default address.
	// The unset of the old default and the set of the new one happen in one
	// atomic update.
	SetDefault(ctx context.Context, customerID, addressID uuid.UUID) error

	// Delete deletes an address
	Delete(ctx context.Context, id uuid.UUID) error
}
