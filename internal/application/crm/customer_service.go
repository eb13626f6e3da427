package crm

import (
	"context"
	"strings"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer identity, phones, and addresses
type CustomerService struct {
	customerRepo crm.CustomerRepository
	phoneRepo    crm.CustomerPhoneRepository
	addressRepo  crm.CustomerAddressRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo crm.CustomerRepository, phoneRepo crm.CustomerPhoneRepository, addressRepo crm.CustomerAddressRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		phoneRepo:    phoneRepo,
		addressRepo:  addressRepo,
	}
}

// Create registers a new customer, optionally with a primary phone
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := crm.NewCustomer(req.FirstName, req.PaternalLastName, req.MaternalLastName)
	if err != nil {
		return nil, err
	}

	if req.RecognitionNotes != "" {
		customer.SetRecognitionNotes(req.RecognitionNotes)
	}
	if req.Notes != "" {
		customer.SetNotes(req.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	if req.Phone != "" {
		if _, err := s.AddPhone(ctx, customer.ID, AddPhoneRequest{PhoneNumber: req.Phone, IsPrimary: true}); err != nil {
			return nil, err
		}
	}

	return ToCustomerResponse(customer), nil
}

// Get returns a customer by ID
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponse(customer), nil
}

// Search finds active customers by folded name match
func (s *CustomerService) Search(ctx context.Context, term string, limit int) ([]CustomerResponse, error) {
	folded := crm.FoldText(term)
	if folded == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Search term cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	customers, err := s.customerRepo.SearchByName(ctx, folded, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = *ToCustomerResponse(&customers[i])
	}
	return responses, nil
}

// FindByPhone finds active customers owning the given phone number
func (s *CustomerService) FindByPhone(ctx context.Context, phone string) ([]CustomerResponse, error) {
	digits := crm.NormalizePhone(phone)
	if digits == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone number must contain at least one digit")
	}

	customers, err := s.customerRepo.FindByPhone(ctx, digits)
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = *ToCustomerResponse(&customers[i])
	}
	return responses, nil
}

// Update updates a customer's name parts
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := customer.UpdateName(req.FirstName, req.PaternalLastName, req.MaternalLastName); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}

	return ToCustomerResponse(customer), nil
}

// SetRecognitionNotes updates the staff recognition hints for a customer
func (s *CustomerService) SetRecognitionNotes(ctx context.Context, id uuid.UUID, notes string) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	customer.SetRecognitionNotes(notes)
	return s.customerRepo.SaveWithLock(ctx, customer)
}

// Deactivate soft-deletes a customer. The customer's orders stay attributed.
func (s *CustomerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := customer.Deactivate(); err != nil {
		return err
	}
	return s.customerRepo.SaveWithLock(ctx, customer)
}

// Activate re-activates a customer
func (s *CustomerService) Activate(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := customer.Activate(); err != nil {
		return err
	}
	return s.customerRepo.SaveWithLock(ctx, customer)
}

// AddPhone adds a phone to a customer. Other customers already holding the
// same number are surfaced in the response, not rejected; family members
// share phones.
func (s *CustomerService) AddPhone(ctx context.Context, customerID uuid.UUID, req AddPhoneRequest) (*PhoneResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	phone, err := crm.NewCustomerPhone(customerID, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	existing, err := s.phoneRepo.FindByNormalizedNumber(ctx, phone.NormalizedNumber)
	if err != nil {
		return nil, err
	}
	var duplicateOwners []uuid.UUID
	for i := range existing {
		if existing[i].CustomerID == customerID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer already has this phone number")
		}
		duplicateOwners = append(duplicateOwners, existing[i].CustomerID)
	}

	if err := s.phoneRepo.Save(ctx, phone); err != nil {
		return nil, err
	}

	if req.IsPrimary {
		if err := s.phoneRepo.SetPrimary(ctx, customerID, phone.ID); err != nil {
			return nil, err
		}
		phone.IsPrimary = true
	}

	return ToPhoneResponse(phone, duplicateOwners), nil
}

// SetPrimaryPhone makes the given phone the customer's primary one
func (s *CustomerService) SetPrimaryPhone(ctx context.Context, customerID, phoneID uuid.UUID) error {
	phone, err := s.phoneRepo.FindByID(ctx, phoneID)
	if err != nil {
		return err
	}
	if phone.CustomerID != customerID {
		return shared.NewDomainError("FORBIDDEN", "Phone does not belong to this customer")
	}

	return s.phoneRepo.SetPrimary(ctx, customerID, phoneID)
}

// RemovePhone deletes a customer's phone
func (s *CustomerService) RemovePhone(ctx context.Context, customerID, phoneID uuid.UUID) error {
	phone, err := s.phoneRepo.FindByID(ctx, phoneID)
	if err != nil {
		return err
	}
	if phone.CustomerID != customerID {
		return shared.NewDomainError("FORBIDDEN", "Phone does not belong to this customer")
	}

	return s.phoneRepo.Delete(ctx, phoneID)
}

// AddAddress adds a delivery address to a customer. Addresses sharing the
// duplicate-detection key with other customers are surfaced, never merged.
func (s *CustomerService) AddAddress(ctx context.Context, customerID uuid.UUID, req AddAddressRequest) (*AddressResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	address, err := crm.NewCustomerAddress(customerID, req.Street, req.City, req.State, req.PostalCode, req.Country)
	if err != nil {
		return nil, err
	}
	if req.DeliveryInstructions != "" {
		address.SetDeliveryInstructions(req.DeliveryInstructions)
	}

	existing, err := s.addressRepo.FindByNormalizedKey(ctx, address.NormalizedKey)
	if err != nil {
		return nil, err
	}
	var duplicateOwners []uuid.UUID
	for i := range existing {
		if existing[i].CustomerID == customerID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer already has this address")
		}
		duplicateOwners = append(duplicateOwners, existing[i].CustomerID)
	}

	if err := s.addressRepo.Save(ctx, address); err != nil {
		return nil, err
	}

	if req.IsDefault {
		if err := s.addressRepo.SetDefault(ctx, customerID, address.ID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	return ToAddressResponse(address, duplicateOwners), nil
}

// SetDefaultAddress makes the given address the customer's default one
func (s *CustomerService) SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return err
	}
	if address.CustomerID != customerID {
		return shared.NewDomainError("FORBIDDEN", "Address does not belong to this customer")
	}

	return s.addressRepo.SetDefault(ctx, customerID, addressID)
}

// RemoveAddress deletes a customer's address
func (s *CustomerService) RemoveAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return err
	}
	if address.CustomerID != customerID {
		return shared.NewDomainError("FORBIDDEN", "Address does not belong to this customer")
	}

	return s.addressRepo.Delete(ctx, addressID)
}

// ValidatePendingAddresses walks addresses awaiting validation and records
// an outcome for each. Validation is structural: a street with a house
// number and a known city verifies, anything else fails and goes back to
// staff.
func (s *CustomerService) ValidatePendingAddresses(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}

	pending, err := s.addressRepo.FindPendingValidation(ctx, limit)
	if err != nil {
		return 0, err
	}

	validated := 0
	for i := range pending {
		address := &pending[i]
		address.MarkValidationAttempted()

		outcome := crm.AddressValidationFailed
		if looksDeliverable(address) {
			outcome = crm.AddressValidationVerified
		}
		if err := address.CompleteValidation(outcome); err != nil {
			return validated, err
		}
		if err := s.addressRepo.Save(ctx, address); err != nil {
			return validated, err
		}
		validated++
	}

	return validated, nil
}

// looksDeliverable checks the structural minimum for a deliverable address
func looksDeliverable(address *crm.CustomerAddress) bool {
	hasNumber := strings.IndexFunc(address.Street, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
	return hasNumber && address.City != ""
}
