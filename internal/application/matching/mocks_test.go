package matching

import (
	"context"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockClusterRepository is a mock implementation of ClusterRepository
type MockClusterRepository struct {
	mock.Mock
}

func (m *MockClusterRepository) FindByID(ctx context.Context, id uuid.UUID) (*matching.UnidentifiedCluster, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.UnidentifiedCluster), args.Error(1)
}

func (m *MockClusterRepository) FindUnmatched(ctx context.Context, filter shared.Filter) ([]matching.UnidentifiedCluster, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]matching.UnidentifiedCluster), args.Get(1).(int64), args.Error(2)
}

func (m *MockClusterRepository) FindHighConfidence(ctx context.Context, minConfidence float64, limit int) ([]matching.UnidentifiedCluster, error) {
	args := m.Called(ctx, minConfidence, limit)
	return args.Get(0).([]matching.UnidentifiedCluster), args.Error(1)
}

func (m *MockClusterRepository) FindByNamePattern(ctx context.Context, pattern string) ([]matching.UnidentifiedCluster, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).([]matching.UnidentifiedCluster), args.Error(1)
}

func (m *MockClusterRepository) FindByPartySize(ctx context.Context, size int) ([]matching.UnidentifiedCluster, error) {
	args := m.Called(ctx, size)
	return args.Get(0).([]matching.UnidentifiedCluster), args.Error(1)
}

func (m *MockClusterRepository) FindRecentlyActive(ctx context.Context, daysBack int, limit int) ([]matching.UnidentifiedCluster, error) {
	args := m.Called(ctx, daysBack, limit)
	return args.Get(0).([]matching.UnidentifiedCluster), args.Error(1)
}

func (m *MockClusterRepository) Create(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	args := m.Called(ctx, cluster)
	return args.Error(0)
}

func (m *MockClusterRepository) UpdateStatistics(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	args := m.Called(ctx, cluster)
	return args.Error(0)
}

func (m *MockClusterRepository) UpdatePatternConfidence(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	args := m.Called(ctx, cluster)
	return args.Error(0)
}

func (m *MockClusterRepository) UpdateAnnotations(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	args := m.Called(ctx, cluster)
	return args.Error(0)
}

func (m *MockClusterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

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

// MockAssignmentStore is a mock implementation of AssignmentStore
type MockAssignmentStore struct {
	mock.Mock
}

func (m *MockAssignmentStore) Absorb(ctx context.Context, cluster *matching.UnidentifiedCluster, order *ordering.Order) error {
	args := m.Called(ctx, cluster, order)
	return args.Error(0)
}

func (m *MockAssignmentStore) Seed(ctx context.Context, cluster *matching.UnidentifiedCluster, order *ordering.Order) error {
	args := m.Called(ctx, cluster, order)
	return args.Error(0)
}

// MockMergeStore is a mock implementation of MergeStore
type MockMergeStore struct {
	mock.Mock
}

func (m *MockMergeStore) Merge(ctx context.Context, cluster *matching.UnidentifiedCluster) (int64, error) {
	args := m.Called(ctx, cluster)
	return args.Get(0).(int64), args.Error(1)
}
