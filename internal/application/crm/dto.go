package crm

import (
	"time"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/google/uuid"
)

// CreateCustomerRequest carries the data to register a customer
type CreateCustomerRequest struct {
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name"`
	Phone            string `json:"phone"`
	RecognitionNotes string `json:"recognition_notes"`
	Notes            string `json:"notes"`
}

// UpdateCustomerRequest carries the data to update a customer's name
type UpdateCustomerRequest struct {
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name"`
}

// AddPhoneRequest carries the data to add a phone to a customer
type AddPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
	IsPrimary   bool   `json:"is_primary"`
}

// AddAddressRequest carries the data to add an address to a customer
type AddAddressRequest struct {
	Street               string `json:"street"`
	City                 string `json:"city"`
	State                string `json:"state"`
	PostalCode           string `json:"postal_code"`
	Country              string `json:"country"`
	DeliveryInstructions string `json:"delivery_instructions"`
	IsDefault            bool   `json:"is_default"`
}

// CustomerResponse is the API view of a customer
type CustomerResponse struct {
	ID               uuid.UUID          `json:"id"`
	FirstName        string             `json:"first_name"`
	PaternalLastName string             `json:"paternal_last_name,omitempty"`
	MaternalLastName string             `json:"maternal_last_name,omitempty"`
	FullName         string             `json:"full_name"`
	Status           crm.CustomerStatus `json:"status"`
	RecognitionNotes string             `json:"recognition_notes,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	RegisteredAt     time.Time          `json:"registered_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(customer *crm.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:               customer.ID,
		FirstName:        customer.FirstName,
		PaternalLastName: customer.PaternalLastName,
		MaternalLastName: customer.MaternalLastName,
		FullName:         customer.FullName(),
		Status:           customer.Status,
		RecognitionNotes: customer.RecognitionNotes,
		Notes:            customer.Notes,
		RegisteredAt:     customer.RegisteredAt,
		CreatedAt:        customer.CreatedAt,
		UpdatedAt:        customer.UpdatedAt,
	}
}

// PhoneResponse is the API view of a customer phone.
// DuplicateOwners lists other customers already holding the same normalized
// number; duplicates are allowed (family members share phones) but surfaced.
type PhoneResponse struct {
	ID              uuid.UUID   `json:"id"`
	CustomerID      uuid.UUID   `json:"customer_id"`
	PhoneNumber     string      `json:"phone_number"`
	NormalizedNumber string     `json:"normalized_number"`
	IsPrimary       bool        `json:"is_primary"`
	DuplicateOwners []uuid.UUID `json:"duplicate_owners,omitempty"`
}

// ToPhoneResponse converts a domain phone to a response DTO
func ToPhoneResponse(phone *crm.CustomerPhone, duplicateOwners []uuid.UUID) *PhoneResponse {
	return &PhoneResponse{
		ID:               phone.ID,
		CustomerID:       phone.CustomerID,
		PhoneNumber:      phone.PhoneNumber,
		NormalizedNumber: phone.NormalizedNumber,
		IsPrimary:        phone.IsPrimary,
		DuplicateOwners:  duplicateOwners,
	}
}

// AddressResponse is the API view of a customer address
type AddressResponse struct {
	ID                   uuid.UUID            `json:"id"`
	CustomerID           uuid.UUID            `json:"customer_id"`
	Street               string               `json:"street"`
	City                 string               `json:"city"`
	State                string               `json:"state,omitempty"`
	PostalCode           string               `json:"postal_code,omitempty"`
	Country              string               `json:"country"`
	DeliveryInstructions string               `json:"delivery_instructions,omitempty"`
	ValidationStatus     crm.AddressValidationStatus `json:"validation_status"`
	IsDefault            bool                        `json:"is_default"`
	DuplicateOwners      []uuid.UUID                 `json:"duplicate_owners,omitempty"`
}

// ToAddressResponse converts a domain address to a response DTO
func ToAddressResponse(address *crm.CustomerAddress, duplicateOwners []uuid.UUID) *AddressResponse {
	return &AddressResponse{
		ID:                   address.ID,
		CustomerID:           address.CustomerID,
		Street:               address.Street,
		City:                 address.City,
		State:                address.State,
		PostalCode:           address.PostalCode,
		Country:              address.Country,
		DeliveryInstructions: address.DeliveryInstructions,
		ValidationStatus:     address.ValidationStatus,
		IsDefault:            address.IsDefault,
		DuplicateOwners:      duplicateOwners,
	}
}
