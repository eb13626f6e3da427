package crm

import (
	"regexp"
	"time"

	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var validPhonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)

// CustomerPhone is a phone number owned by exactly one customer.
// At most one phone per customer carries IsPrimary=true; the flag is flipped
// through CustomerPhoneRepository.SetPrimary, which performs the
// unset-then-set as a single atomic update.
type CustomerPhone struct {
	shared.BaseAggregateRoot
	CustomerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	PhoneNumber      string    `gorm:"type:varchar(50);not null"`
	NormalizedNumber string    `gorm:"type:varchar(50);not null;index"` // digit string, lookup key
	IsPrimary        bool      `gorm:"not null;default:false"`
	AddedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerPhone) TableName() string {
	return "customer_phones"
}

// NewCustomerPhone creates a phone record for a customer
func NewCustomerPhone(customerID uuid.UUID, phoneNumber string) (*CustomerPhone, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}

	normalized := NormalizePhone(phoneNumber)
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone number must contain at least one digit")
	}

	phone := &CustomerPhone{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		PhoneNumber:       phoneNumber,
		NormalizedNumber:  normalized,
		AddedAt:           time.Now(),
	}

	phone.AddDomainEvent(NewCustomerPhoneAddedEvent(phone))

	return phone, nil
}

// UpdateNumber replaces the phone number and recomputes the normalized form
func (p *CustomerPhone) UpdateNumber(phoneNumber string) error {
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return err
	}

	normalized := NormalizePhone(phoneNumber)
	if normalized == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone number must contain at least one digit")
	}

	p.PhoneNumber = phoneNumber
	p.NormalizedNumber = normalized
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

func validatePhoneNumber(phone string) error {
	if phone == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot be empty")
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	if !validPhonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}
