package crm

import (
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCustomer        = "Customer"
	AggregateTypeCustomerPhone   = "CustomerPhone"
	AggregateTypeCustomerAddress = "CustomerAddress"
)

// Event type constants
const (
	EventTypeCustomerCreated       = "CustomerCreated"
	EventTypeCustomerUpdated       = "CustomerUpdated"
	EventTypeCustomerStatusChanged = "CustomerStatusChanged"
	EventTypeCustomerPhoneAdded    = "CustomerPhoneAdded"
	EventTypeCustomerAddressAdded  = "CustomerAddressAdded"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	FullName   string    `json:"full_name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		FullName:        customer.FullName(),
	}
}

// CustomerUpdatedEvent is published when a customer's name is updated
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	FullName   string    `json:"full_name"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(customer *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		FullName:        customer.FullName(),
	}
}

// CustomerStatusChangedEvent is published when a customer's status changes
type CustomerStatusChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID      `json:"customer_id"`
	OldStatus  CustomerStatus `json:"old_status"`
	NewStatus  CustomerStatus `json:"new_status"`
}

// NewCustomerStatusChangedEvent creates a new CustomerStatusChangedEvent
func NewCustomerStatusChangedEvent(customer *Customer, oldStatus, newStatus CustomerStatus) *CustomerStatusChangedEvent {
	return &CustomerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerStatusChanged, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// CustomerPhoneAddedEvent is published when a phone is attached to a customer
type CustomerPhoneAddedEvent struct {
	shared.BaseDomainEvent
	CustomerID       uuid.UUID `json:"customer_id"`
	PhoneID          uuid.UUID `json:"phone_id"`
	NormalizedNumber string    `json:"normalized_number"`
}

// NewCustomerPhoneAddedEvent creates a new CustomerPhoneAddedEvent
func NewCustomerPhoneAddedEvent(phone *CustomerPhone) *CustomerPhoneAddedEvent {
	return &CustomerPhoneAddedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCustomerPhoneAdded, AggregateTypeCustomerPhone, phone.ID),
		CustomerID:       phone.CustomerID,
		PhoneID:          phone.ID,
		NormalizedNumber: phone.NormalizedNumber,
	}
}

// CustomerAddressAddedEvent is published when an address is attached to a customer
type CustomerAddressAddedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID `json:"customer_id"`
	AddressID     uuid.UUID `json:"address_id"`
	NormalizedKey string    `json:"normalized_key"`
}

// NewCustomerAddressAddedEvent creates a new CustomerAddressAddedEvent
func NewCustomerAddressAddedEvent(address *CustomerAddress) *CustomerAddressAddedEvent {
	return &CustomerAddressAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerAddressAdded, AggregateTypeCustomerAddress, address.ID),
		CustomerID:      address.CustomerID,
		AddressID:       address.ID,
		NormalizedKey:   address.NormalizedKey,
	}
}
