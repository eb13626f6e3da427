package matching

import (
	"context"
	"testing"
	"time"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRescoringService_RescoreBatch(t *testing.T) {
	ctx := context.Background()
	orderedAt := time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)
	itemID := uuid.New()

	t.Run("skips conflicting clusters and continues", func(t *testing.T) {
		clusterRepo := new(MockClusterRepository)
		service := NewRescoringService(clusterRepo, zap.NewNop())

		first := clusterOfOrders(t, []*ordering.Order{testOrder(t, 4, orderedAt, itemID)})
		second := clusterOfOrders(t, []*ordering.Order{testOrder(t, 2, orderedAt, itemID)})

		clusterRepo.On("FindUnmatched", ctx, shared.Filter{Page: 1, PageSize: 50}).
			Return([]matching.UnidentifiedCluster{*first, *second}, int64(2), nil)
		clusterRepo.On("FindUnmatched", ctx, shared.Filter{Page: 2, PageSize: 50}).
			Return([]matching.UnidentifiedCluster{}, int64(2), nil)
		clusterRepo.On("UpdatePatternConfidence", ctx, mock.Anything).Return(nil).Once()
		clusterRepo.On("UpdatePatternConfidence", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()

		stats, err := service.RescoreBatch(ctx, 50)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.Processed)
		assert.Equal(t, 1, stats.Updated)
		assert.Equal(t, 1, stats.Conflicts)
		assert.Equal(t, 0, stats.Failed)
	})

	t.Run("collects every page before writing any update", func(t *testing.T) {
		clusterRepo := new(MockClusterRepository)
		service := NewRescoringService(clusterRepo, zap.NewNop())

		first := clusterOfOrders(t, []*ordering.Order{testOrder(t, 4, orderedAt, itemID)})
		second := clusterOfOrders(t, []*ordering.Order{testOrder(t, 2, orderedAt, itemID)})

		// An update before collection finishes would reorder the queue and
		// shift rows across page boundaries.
		updates := 0
		clusterRepo.On("FindUnmatched", ctx, shared.Filter{Page: 1, PageSize: 1}).
			Return([]matching.UnidentifiedCluster{*first}, int64(2), nil).
			Run(func(mock.Arguments) { assert.Zero(t, updates) })
		clusterRepo.On("FindUnmatched", ctx, shared.Filter{Page: 2, PageSize: 1}).
			Return([]matching.UnidentifiedCluster{*second}, int64(2), nil).
			Run(func(mock.Arguments) { assert.Zero(t, updates) })
		clusterRepo.On("FindUnmatched", ctx, shared.Filter{Page: 3, PageSize: 1}).
			Return([]matching.UnidentifiedCluster{}, int64(2), nil).
			Run(func(mock.Arguments) { assert.Zero(t, updates) })
		clusterRepo.On("UpdatePatternConfidence", ctx, mock.Anything).
			Return(nil).
			Run(func(mock.Arguments) { updates++ })

		stats, err := service.RescoreBatch(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.Processed)
		assert.Equal(t, 2, stats.Updated)
		assert.Equal(t, 2, updates)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		clusterRepo := new(MockClusterRepository)
		service := NewRescoringService(clusterRepo, zap.NewNop())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := service.RescoreBatch(cancelled, 50)

		assert.ErrorIs(t, err, context.Canceled)
		clusterRepo.AssertNotCalled(t, "FindUnmatched", mock.Anything, mock.Anything)
	})
}
