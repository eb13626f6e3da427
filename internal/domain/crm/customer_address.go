package crm

import (
	"strings"
	"time"

	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AddressValidationStatus represents the async validation state of an address
type AddressValidationStatus string

const (
	AddressValidationPending  AddressValidationStatus = "pending"
	AddressValidationVerified AddressValidationStatus = "verified"
	AddressValidationFailed   AddressValidationStatus = "failed"
)

// CustomerAddress is a delivery address owned by exactly one customer.
// At most one address per customer carries IsDefault=true; the flag is
// flipped through CustomerAddressRepository.SetDefault, which performs the
// unset-then-set as a single atomic update.
//
// NormalizedKey is the deterministic duplicate-detection key; rows sharing a
// key are surfaced to staff, never merged automatically.
type CustomerAddress struct {
	shared.BaseAggregateRoot
	CustomerID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	Street               string                  `gorm:"type:varchar(300);not null"`
	City                 string                  `gorm:"type:varchar(100)"`
	State                string                  `gorm:"type:varchar(100)"`
	PostalCode           string                  `gorm:"type:varchar(20)"`
	Country              string                  `gorm:"type:varchar(100);not null;default:'MX'"`
	DeliveryInstructions string                  `gorm:"type:text"`
	NormalizedKey        string                  `gorm:"type:varchar(700);not null;index"`
	ValidationStatus     AddressValidationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ValidationAttemptAt  *time.Time
	IsDefault            bool      `gorm:"not null;default:false"`
	AddedAt              time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerAddress) TableName() string {
	return "customer_addresses"
}

// NewCustomerAddress creates an address record for a customer
func NewCustomerAddress(customerID uuid.UUID, street, city, state, postalCode, country string) (*CustomerAddress, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(street) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Street cannot be empty")
	}
	if len(street) > 300 {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Street cannot exceed 300 characters")
	}
	if country == "" {
		country = "MX"
	}

	address := &CustomerAddress{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Street:            strings.TrimSpace(street),
		City:              strings.TrimSpace(city),
		State:             strings.TrimSpace(state),
		PostalCode:        strings.TrimSpace(postalCode),
		Country:           country,
		NormalizedKey:     NormalizeAddressKey(street, city, state, postalCode, country),
		ValidationStatus:  AddressValidationPending,
		AddedAt:           time.Now(),
	}

	address.AddDomainEvent(NewCustomerAddressAddedEvent(address))

	return address, nil
}

// SetDeliveryInstructions updates the delivery instructions
func (a *CustomerAddress) SetDeliveryInstructions(instructions string) {
	a.DeliveryInstructions = instructions
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// MarkValidationAttempted records a validation attempt timestamp
func (a *CustomerAddress) MarkValidationAttempted() {
	now := time.Now()
	a.ValidationAttemptAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
}

// CompleteValidation records the outcome of an async validation attempt
func (a *CustomerAddress) CompleteValidation(status AddressValidationStatus) error {
	if status != AddressValidationVerified && status != AddressValidationFailed {
		return shared.NewDomainError("INVALID_STATUS", "Validation outcome must be 'verified' or 'failed'")
	}

	a.ValidationStatus = status
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsPendingValidation returns true if the address has not been validated yet
func (a *CustomerAddress) IsPendingValidation() bool {
	return a.ValidationStatus == AddressValidationPending
}
