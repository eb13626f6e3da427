package ordering

import (
	"context"
	"testing"
	"time"

	appmatching "github.com/bara/backend/internal/application/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]ordering.Order, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByClusterID(ctx context.Context, clusterID uuid.UUID) ([]ordering.Order, error) {
	args := m.Called(ctx, clusterID)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByContactPhone(ctx context.Context, normalizedPhone string, limit int) ([]ordering.Order, error) {
	args := m.Called(ctx, normalizedPhone, limit)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAnonymous(ctx context.Context, limit int) ([]ordering.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockOrderClusterer is a mock implementation of OrderClusterer
type MockOrderClusterer struct {
	mock.Mock
}

func (m *MockOrderClusterer) AssignOrder(ctx context.Context, order *ordering.Order) (*appmatching.AssignmentResult, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appmatching.AssignmentResult), args.Error(1)
}

func placeRequest(partySize int) PlaceOrderRequest {
	return PlaceOrderRequest{
		Type:      ordering.OrderTypeDineIn,
		PartySize: &partySize,
		Items: []PlaceOrderItemRequest{
			{MenuItemID: uuid.New(), Name: "Tacos al Pastor", Quantity: 2, UnitPrice: decimal.NewFromInt(120)},
			{MenuItemID: uuid.New(), Name: "Agua de Horchata", Quantity: 2, UnitPrice: decimal.NewFromInt(35)},
		},
		Tax: decimal.NewFromInt(49),
	}
}

func TestOrderService_Place(t *testing.T) {
	ctx := context.Background()

	t.Run("places and clusters an anonymous order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		clusterer := new(MockOrderClusterer)
		service := NewOrderService(orderRepo, clusterer, zap.NewNop())

		orderRepo.On("Save", ctx, mock.Anything).Return(nil)
		clusterer.On("AssignOrder", ctx, mock.Anything).
			Return(&appmatching.AssignmentResult{NewCluster: true}, nil)

		resp, err := service.Place(ctx, placeRequest(4))

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(359))) // 240 + 70 + 49
		assert.Equal(t, ordering.OrderStatusPending, resp.Status)
		clusterer.AssertCalled(t, "AssignOrder", ctx, mock.Anything)
	})

	t.Run("a clustering failure does not fail order entry", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		clusterer := new(MockOrderClusterer)
		service := NewOrderService(orderRepo, clusterer, zap.NewNop())

		orderRepo.On("Save", ctx, mock.Anything).Return(nil)
		clusterer.On("AssignOrder", ctx, mock.Anything).
			Return(nil, shared.ErrConcurrencyConflict)

		resp, err := service.Place(ctx, placeRequest(4))

		require.NoError(t, err)
		assert.Nil(t, resp.ClusterID)
	})

	t.Run("orders for a known customer are attributed, not clustered", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		clusterer := new(MockOrderClusterer)
		service := NewOrderService(orderRepo, clusterer, zap.NewNop())

		orderRepo.On("Save", ctx, mock.Anything).Return(nil)

		customerID := uuid.New()
		req := placeRequest(2)
		req.CustomerID = &customerID

		resp, err := service.Place(ctx, req)

		require.NoError(t, err)
		require.NotNil(t, resp.CustomerID)
		assert.Equal(t, customerID, *resp.CustomerID)
		clusterer.AssertNotCalled(t, "AssignOrder", mock.Anything, mock.Anything)
	})

	t.Run("rejects an order with an invalid item", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockOrderClusterer), zap.NewNop())

		req := placeRequest(2)
		req.Items[0].Quantity = 0

		_, err := service.Place(ctx, req)

		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the lifecycle", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockOrderClusterer), zap.NewNop())

		order, err := ordering.NewOrder(ordering.OrderTypePickup, time.Now())
		require.NoError(t, err)
		orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		orderRepo.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := service.UpdateStatus(ctx, order.ID, ordering.OrderStatusPreparing)

		require.NoError(t, err)
		assert.Equal(t, ordering.OrderStatusPreparing, resp.Status)
	})

	t.Run("rejects an illegal transition", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockOrderClusterer), zap.NewNop())

		order, err := ordering.NewOrder(ordering.OrderTypePickup, time.Now())
		require.NoError(t, err)
		orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err = service.UpdateStatus(ctx, order.ID, ordering.OrderStatusDelivered)

		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
