package matching

import (
	"context"
	"errors"
	"time"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RescoringService recomputes pattern confidence and info quality for
// unmatched clusters in batches. A version conflict on one cluster (a
// terminal absorbed an order mid-batch) skips that cluster; the rest of the
// batch proceeds.
type RescoringService struct {
	clusterRepo matching.ClusterRepository
	logger      *zap.Logger
}

// NewRescoringService creates a new RescoringService
func NewRescoringService(clusterRepo matching.ClusterRepository, logger *zap.Logger) *RescoringService {
	return &RescoringService{
		clusterRepo: clusterRepo,
		logger:      logger,
	}
}

// RescoreBatch rescans every unmatched cluster. The whole set is collected
// before any update: the queue is ordered by info quality, the very column
// each update changes, so updating while paging would shift rows across
// page boundaries and skip them for the rest of the pass.
func (s *RescoringService) RescoreBatch(ctx context.Context, batchSize int) (RescoreStats, error) {
	stats := RescoreStats{}
	now := time.Now()

	var batch []matching.UnidentifiedCluster
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		filter := shared.Filter{Page: page, PageSize: batchSize}
		clusters, _, err := s.clusterRepo.FindUnmatched(ctx, filter)
		if err != nil {
			return stats, err
		}
		if len(clusters) == 0 {
			break
		}
		batch = append(batch, clusters...)
	}

	for i := range batch {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		cluster := &batch[i]
		stats.Processed++

		result := matching.Rescore(cluster, now)
		cluster.ApplyScore(result)

		if err := s.clusterRepo.UpdatePatternConfidence(ctx, cluster); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				stats.Conflicts++
				s.logger.Debug("cluster changed during rescoring, skipping",
					zap.String("cluster_id", cluster.ID.String()))
				continue
			}
			stats.Failed++
			s.logger.Warn("failed to persist rescoring result",
				zap.String("cluster_id", cluster.ID.String()),
				zap.Error(err))
			continue
		}
		stats.Updated++
	}

	return stats, nil
}
