package crm

import (
	"strings"
	"time"

	"github.com/bara/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer represents an identified customer of the restaurant.
// It is the aggregate root for customer identity; phones and addresses are
// separate aggregates owned by the customer through CustomerID references.
//
// Name parts follow Mexican naming conventions: first name plus paternal and
// maternal last names, any of the last names optional.
type Customer struct {
	shared.BaseAggregateRoot
	FirstName        string         `gorm:"type:varchar(100);not null"`
	PaternalLastName string         `gorm:"type:varchar(100)"`
	MaternalLastName string         `gorm:"type:varchar(100)"`
	Status           CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	RecognitionNotes string         `gorm:"type:text"` // staff hints: "always asks for extra salsa"
	Notes            string         `gorm:"type:text"`
	RegisteredAt     time.Time      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer with the given name parts
func NewCustomer(firstName, paternalLastName, maternalLastName string) (*Customer, error) {
	if err := validateNamePart("first name", firstName, true); err != nil {
		return nil, err
	}
	if err := validateNamePart("paternal last name", paternalLastName, false); err != nil {
		return nil, err
	}
	if err := validateNamePart("maternal last name", maternalLastName, false); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		PaternalLastName:  strings.TrimSpace(paternalLastName),
		MaternalLastName:  strings.TrimSpace(maternalLastName),
		Status:            CustomerStatusActive,
		RegisteredAt:      time.Now(),
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// UpdateName updates the customer's name parts
func (c *Customer) UpdateName(firstName, paternalLastName, maternalLastName string) error {
	if err := validateNamePart("first name", firstName, true); err != nil {
		return err
	}
	if err := validateNamePart("paternal last name", paternalLastName, false); err != nil {
		return err
	}
	if err := validateNamePart("maternal last name", maternalLastName, false); err != nil {
		return err
	}

	c.FirstName = strings.TrimSpace(firstName)
	c.PaternalLastName = strings.TrimSpace(paternalLastName)
	c.MaternalLastName = strings.TrimSpace(maternalLastName)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetRecognitionNotes sets staff-entered recognition hints
func (c *Customer) SetRecognitionNotes(notes string) {
	c.RecognitionNotes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetNotes sets the customer's notes
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate re-activates the customer
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}

	oldStatus := c.Status
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, oldStatus, CustomerStatusActive))

	return nil
}

// Deactivate soft-deletes the customer. Customers are never hard-deleted;
// their order history must stay reachable.
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}

	oldStatus := c.Status
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, oldStatus, CustomerStatusInactive))

	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// FullName returns the display name assembled from the name parts
func (c *Customer) FullName() string {
	parts := []string{c.FirstName}
	if c.PaternalLastName != "" {
		parts = append(parts, c.PaternalLastName)
	}
	if c.MaternalLastName != "" {
		parts = append(parts, c.MaternalLastName)
	}
	return strings.Join(parts, " ")
}

// SearchName returns the accent-folded uppercase full name used for
// case/accent-insensitive lookups.
func (c *Customer) SearchName() string {
	return FoldText(c.FullName())
}

func validateNamePart(label, value string, required bool) error {
	trimmed := strings.TrimSpace(value)
	if required && trimmed == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer "+label+" cannot be empty")
	}
	if len(trimmed) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Customer "+label+" cannot exceed 100 characters")
	}
	return nil
}
