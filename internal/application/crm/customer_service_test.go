package crm

import (
	"context"
	"testing"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]crm.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SearchByName(ctx context.Context, term string, limit int) ([]crm.Customer, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPhone(ctx context.Context, normalizedPhone string) ([]crm.Customer, error) {
	args := m.Called(ctx, normalizedPhone)
	return args.Get(0).([]crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *crm.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, customer *crm.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerPhoneRepository is a mock implementation of CustomerPhoneRepository
type MockCustomerPhoneRepository struct {
	mock.Mock
}

func (m *MockCustomerPhoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.CustomerPhone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerPhone), args.Error(1)
}

func (m *MockCustomerPhoneRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]crm.CustomerPhone, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]crm.CustomerPhone), args.Error(1)
}

func (m *MockCustomerPhoneRepository) FindPrimary(ctx context.Context, customerID uuid.UUID) (*crm.CustomerPhone, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerPhone), args.Error(1)
}

func (m *MockCustomerPhoneRepository) FindByNormalizedNumber(ctx context.Context, normalizedPhone string) ([]crm.CustomerPhone, error) {
	args := m.Called(ctx, normalizedPhone)
	return args.Get(0).([]crm.CustomerPhone), args.Error(1)
}

func (m *MockCustomerPhoneRepository) Save(ctx context.Context, phone *crm.CustomerPhone) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

func (m *MockCustomerPhoneRepository) SetPrimary(ctx context.Context, customerID, phoneID uuid.UUID) error {
	args := m.Called(ctx, customerID, phoneID)
	return args.Error(0)
}

func (m *MockCustomerPhoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomerAddressRepository is a mock implementation of CustomerAddressRepository
type MockCustomerAddressRepository struct {
	mock.Mock
}

func (m *MockCustomerAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.CustomerAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerAddress), args.Error(1)
}

func (m *MockCustomerAddressRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]crm.CustomerAddress, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]crm.CustomerAddress), args.Error(1)
}

func (m *MockCustomerAddressRepository) FindDefault(ctx context.Context, customerID uuid.UUID) (*crm.CustomerAddress, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerAddress), args.Error(1)
}

func (m *MockCustomerAddressRepository) FindByNormalizedKey(ctx context.Context, normalizedKey string) ([]crm.CustomerAddress, error) {
	args := m.Called(ctx, normalizedKey)
	return args.Get(0).([]crm.CustomerAddress), args.Error(1)
}

func (m *MockCustomerAddressRepository) FindPendingValidation(ctx context.Context, limit int) ([]crm.CustomerAddress, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]crm.CustomerAddress), args.Error(1)
}

func (m *MockCustomerAddressRepository) Save(ctx context.Context, address *crm.CustomerAddress) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockCustomerAddressRepository) SetDefault(ctx context.Context, customerID, addressID uuid.UUID) error {
	args := m.Called(ctx, customerID, addressID)
	return args.Error(0)
}

func (m *MockCustomerAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newService() (*CustomerService, *MockCustomerRepository, *MockCustomerPhoneRepository, *MockCustomerAddressRepository) {
	customerRepo := new(MockCustomerRepository)
	phoneRepo := new(MockCustomerPhoneRepository)
	addressRepo := new(MockCustomerAddressRepository)
	return NewCustomerService(customerRepo, phoneRepo, addressRepo), customerRepo, phoneRepo, addressRepo
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a customer with a primary phone", func(t *testing.T) {
		service, customerRepo, phoneRepo, _ := newService()

		customerRepo.On("Save", ctx, mock.Anything).Return(nil)
		customerRepo.On("FindByID", ctx, mock.Anything).
			Return(&crm.Customer{}, nil)
		phoneRepo.On("FindByNormalizedNumber", ctx, "5512345678").
			Return([]crm.CustomerPhone{}, nil)
		phoneRepo.On("Save", ctx, mock.Anything).Return(nil)
		phoneRepo.On("SetPrimary", ctx, mock.Anything, mock.Anything).Return(nil)

		resp, err := service.Create(ctx, CreateCustomerRequest{
			FirstName:        "María",
			PaternalLastName: "García",
			Phone:            "55 1234 5678",
		})

		require.NoError(t, err)
		assert.Equal(t, "María García", resp.FullName)
		assert.Equal(t, crm.CustomerStatusActive, resp.Status)
		phoneRepo.AssertCalled(t, "SetPrimary", ctx, mock.Anything, mock.Anything)
	})

	t.Run("rejects a customer without a first name", func(t *testing.T) {
		service, _, _, _ := newService()

		_, err := service.Create(ctx, CreateCustomerRequest{PaternalLastName: "García"})

		assert.Error(t, err)
	})
}

func TestCustomerService_AddPhone(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	customer, _ := crm.NewCustomer("María", "García", "")

	t.Run("surfaces duplicate owners without rejecting", func(t *testing.T) {
		service, customerRepo, phoneRepo, _ := newService()

		otherOwner := uuid.New()
		existing, err := crm.NewCustomerPhone(otherOwner, "5512345678")
		require.NoError(t, err)

		customerRepo.On("FindByID", ctx, customerID).Return(customer, nil)
		phoneRepo.On("FindByNormalizedNumber", ctx, "5512345678").
			Return([]crm.CustomerPhone{*existing}, nil)
		phoneRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := service.AddPhone(ctx, customerID, AddPhoneRequest{PhoneNumber: "55-1234-5678"})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{otherOwner}, resp.DuplicateOwners)
		assert.False(t, resp.IsPrimary)
	})

	t.Run("rejects a number the customer already has", func(t *testing.T) {
		service, customerRepo, phoneRepo, _ := newService()

		existing, err := crm.NewCustomerPhone(customerID, "5512345678")
		require.NoError(t, err)

		customerRepo.On("FindByID", ctx, customerID).Return(customer, nil)
		phoneRepo.On("FindByNormalizedNumber", ctx, "5512345678").
			Return([]crm.CustomerPhone{*existing}, nil)

		_, err = service.AddPhone(ctx, customerID, AddPhoneRequest{PhoneNumber: "(55) 1234 5678"})

		assert.Error(t, err)
		phoneRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_SetPrimaryPhone(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a phone owned by another customer", func(t *testing.T) {
		service, _, phoneRepo, _ := newService()

		phone, err := crm.NewCustomerPhone(uuid.New(), "5512345678")
		require.NoError(t, err)
		phoneRepo.On("FindByID", ctx, phone.ID).Return(phone, nil)

		err = service.SetPrimaryPhone(ctx, uuid.New(), phone.ID)

		assert.Error(t, err)
		phoneRepo.AssertNotCalled(t, "SetPrimary", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delegates the atomic flip to the repository", func(t *testing.T) {
		service, _, phoneRepo, _ := newService()

		customerID := uuid.New()
		phone, err := crm.NewCustomerPhone(customerID, "5512345678")
		require.NoError(t, err)
		phoneRepo.On("FindByID", ctx, phone.ID).Return(phone, nil)
		phoneRepo.On("SetPrimary", ctx, customerID, phone.ID).Return(nil)

		require.NoError(t, service.SetPrimaryPhone(ctx, customerID, phone.ID))
		phoneRepo.AssertCalled(t, "SetPrimary", ctx, customerID, phone.ID)
	})
}

func TestCustomerService_AddAddress(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	customer, _ := crm.NewCustomer("María", "García", "")

	t.Run("surfaces addresses shared with other customers", func(t *testing.T) {
		service, customerRepo, _, addressRepo := newService()

		otherOwner := uuid.New()
		existing, err := crm.NewCustomerAddress(otherOwner, "Av. Insurgentes 123", "CDMX", "", "06700", "MX")
		require.NoError(t, err)

		customerRepo.On("FindByID", ctx, customerID).Return(customer, nil)
		addressRepo.On("FindByNormalizedKey", ctx, existing.NormalizedKey).
			Return([]crm.CustomerAddress{*existing}, nil)
		addressRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := service.AddAddress(ctx, customerID, AddAddressRequest{
			Street:     "Av. Insurgentes 123",
			City:       "CDMX",
			PostalCode: "06700",
		})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{otherOwner}, resp.DuplicateOwners)
		assert.Equal(t, crm.AddressValidationPending, resp.ValidationStatus)
	})
}

func TestCustomerService_ValidatePendingAddresses(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies deliverable addresses and fails the rest", func(t *testing.T) {
		service, _, _, addressRepo := newService()

		good, err := crm.NewCustomerAddress(uuid.New(), "Av. Insurgentes 123", "CDMX", "", "", "MX")
		require.NoError(t, err)
		bad, err := crm.NewCustomerAddress(uuid.New(), "La casa azul", "", "", "", "MX")
		require.NoError(t, err)

		addressRepo.On("FindPendingValidation", ctx, 50).
			Return([]crm.CustomerAddress{*good, *bad}, nil)
		addressRepo.On("Save", ctx, mock.MatchedBy(func(a *crm.CustomerAddress) bool {
			return a.ID == good.ID && a.ValidationStatus == crm.AddressValidationVerified
		})).Return(nil).Once()
		addressRepo.On("Save", ctx, mock.MatchedBy(func(a *crm.CustomerAddress) bool {
			return a.ID == bad.ID && a.ValidationStatus == crm.AddressValidationFailed
		})).Return(nil).Once()

		validated, err := service.ValidatePendingAddresses(ctx, 0)

		require.NoError(t, err)
		assert.Equal(t, 2, validated)
		addressRepo.AssertExpectations(t)
	})
}
