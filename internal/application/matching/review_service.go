package matching

import (
	"context"
	"errors"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Bounds for the staff review surface. Annotation writes race order entry
// and background rescoring, so a conflicting write is retried against a
// fresh read. Prune refuses thresholds above pruneMaxThreshold so a cleanup
// can never sweep clusters that are still worth reviewing.
const (
	annotateRetries   = 3
	pruneDefaultLimit = 50
	pruneMaxThreshold = 0.5
)

// ReviewService is the staff-facing view of unmatched clusters: the review
// queue, annotation of recognized regulars, and administrative cleanup of
// clusters that never accumulated enough signal to match.
type ReviewService struct {
	clusterRepo matching.ClusterRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(clusterRepo matching.ClusterRepository) *ReviewService {
	return &ReviewService{clusterRepo: clusterRepo}
}

// ReviewQueue lists unmatched clusters, best review material first
func (s *ReviewService) ReviewQueue(ctx context.Context, filter shared.Filter) (*ClusterListResponse, error) {
	clusters, total, err := s.clusterRepo.FindUnmatched(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ClusterResponse, len(clusters))
	for i := range clusters {
		responses[i] = *ToClusterResponse(&clusters[i])
	}

	return &ClusterListResponse{
		Clusters: responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// GetCluster returns one cluster for the review detail view
func (s *ReviewService) GetCluster(ctx context.Context, id uuid.UUID) (*ClusterResponse, error) {
	cluster, err := s.clusterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToClusterResponse(cluster), nil
}

// BrowseByPartySize narrows the queue to clusters whose typical party size
// equals the given size
func (s *ReviewService) BrowseByPartySize(ctx context.Context, size int) ([]ClusterResponse, error) {
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party size must be positive")
	}

	clusters, err := s.clusterRepo.FindByPartySize(ctx, size)
	if err != nil {
		return nil, err
	}

	responses := make([]ClusterResponse, len(clusters))
	for i := range clusters {
		responses[i] = *ToClusterResponse(&clusters[i])
	}
	return responses, nil
}

// Annotate applies staff-entered labels to an unmatched cluster. A write
// that loses a race with order entry or rescoring is retried against a
// freshly read cluster, a bounded number of times.
func (s *ReviewService) Annotate(ctx context.Context, req AnnotateClusterRequest) (*ClusterResponse, error) {
	if req.ClusterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cluster ID cannot be empty")
	}

	var lastErr error
	for attempt := 0; attempt < annotateRetries; attempt++ {
		cluster, err := s.clusterRepo.FindByID(ctx, req.ClusterID)
		if err != nil {
			return nil, err
		}
		if cluster.IsMatched() {
			return nil, matching.ErrClusterMatched
		}

		if !cluster.Annotate(req.NamePattern, req.StaffNotes, req.RecognitionHints) {
			return ToClusterResponse(cluster), nil
		}

		if err := s.clusterRepo.UpdateAnnotations(ctx, cluster); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return ToClusterResponse(cluster), nil
	}
	return nil, lastErr
}

// Prune deletes never-matched clusters whose info quality stayed below the
// given threshold. Clusters that got matched mid-pass are skipped; the
// repository refuses to delete matched rows.
func (s *ReviewService) Prune(ctx context.Context, req PruneRequest) (int, error) {
	if req.MaxInfoQuality <= 0 || req.MaxInfoQuality > pruneMaxThreshold {
		return 0, shared.NewDomainError("INVALID_INPUT", "Prune threshold must be in (0, 0.5]")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = pruneDefaultLimit
	}

	clusters, _, err := s.clusterRepo.FindUnmatched(ctx, shared.Filter{})
	if err != nil {
		return 0, err
	}

	// The queue is ordered best first, so candidates sit at the tail.
	deleted := 0
	for i := len(clusters) - 1; i >= 0 && deleted < limit; i-- {
		cluster := &clusters[i]
		if cluster.InfoQualityScore >= req.MaxInfoQuality {
			break
		}
		if req.MaxOrderCount > 0 && cluster.OrderCount > req.MaxOrderCount {
			continue
		}

		if err := s.clusterRepo.Delete(ctx, cluster.ID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
