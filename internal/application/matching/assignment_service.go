package matching

import (
	"context"
	"errors"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Candidate window and retry bounds for order-entry assignment
const (
	candidateDaysBack = 90
	candidateLimit    = 200
	maxAssignRetries  = 3
)

// AssignmentService routes anonymous orders into behavioral clusters at
// order entry. Concurrency conflicts (another terminal racing an absorb, or
// a candidate cluster getting matched mid-flight) are retried against a
// fresh candidate set; after the retry budget the order seeds a fresh
// cluster rather than holding up order entry.
type AssignmentService struct {
	clusterRepo matching.ClusterRepository
	orderRepo   ordering.OrderRepository
	store       matching.AssignmentStore
	assigner    *matching.Assigner
	daysBack    int
	limit       int
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(clusterRepo matching.ClusterRepository, orderRepo ordering.OrderRepository, store matching.AssignmentStore, assigner *matching.Assigner) *AssignmentService {
	return &AssignmentService{
		clusterRepo: clusterRepo,
		orderRepo:   orderRepo,
		store:       store,
		assigner:    assigner,
		daysBack:    candidateDaysBack,
		limit:       candidateLimit,
	}
}

// WithCandidateWindow overrides the default candidate recency window
func (s *AssignmentService) WithCandidateWindow(daysBack, limit int) *AssignmentService {
	if daysBack > 0 {
		s.daysBack = daysBack
	}
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// AssignOrder clusters a just-placed anonymous order. Orders that already
// belong to a customer or a cluster are left alone.
func (s *AssignmentService) AssignOrder(ctx context.Context, order *ordering.Order) (*AssignmentResult, error) {
	if !order.IsAnonymous() {
		return nil, shared.NewDomainError("NOT_ANONYMOUS", "Order already belongs to a customer or cluster")
	}

	fp := matching.ExtractFingerprint(order)

	for attempt := 0; attempt < maxAssignRetries; attempt++ {
		candidates, err := s.clusterRepo.FindRecentlyActive(ctx, s.daysBack, s.limit)
		if err != nil {
			return nil, err
		}

		refs := make([]*matching.UnidentifiedCluster, len(candidates))
		for i := range candidates {
			refs[i] = &candidates[i]
		}

		decision := s.assigner.Assign(fp, refs)
		if decision.NewCluster {
			return s.seedCluster(ctx, order, fp, decision.Score)
		}

		cluster := refs[indexOf(refs, *decision.ClusterID)]
		if err := cluster.Absorb(fp, order.Total, order.OrderedAt); err != nil {
			continue
		}
		// Statistics and linkage commit together; a conflict (another
		// terminal racing an absorb, or the cluster getting matched) rolls
		// both back and the order stays anonymous for the next attempt.
		if err := s.store.Absorb(ctx, cluster, order); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return nil, err
		}
		if err := order.AssignToCluster(cluster.ID); err != nil {
			return nil, err
		}

		return &AssignmentResult{
			OrderID:   order.ID,
			ClusterID: cluster.ID,
			Score:     decision.Score,
		}, nil
	}

	// Retry budget exhausted under contention; a fresh cluster always works.
	return s.seedCluster(ctx, order, fp, 0)
}

// AssignBacklog sweeps anonymous orders that never made it into a cluster,
// typically because clustering failed at order entry, and assigns each one.
// Per-order failures are skipped so one bad order cannot stall the sweep.
func (s *AssignmentService) AssignBacklog(ctx context.Context, limit int) (int, error) {
	orders, err := s.orderRepo.FindAnonymous(ctx, limit)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for i := range orders {
		if ctx.Err() != nil {
			return assigned, ctx.Err()
		}
		if _, err := s.AssignOrder(ctx, &orders[i]); err != nil {
			continue
		}
		assigned++
	}
	return assigned, nil
}

func (s *AssignmentService) seedCluster(ctx context.Context, order *ordering.Order, fp matching.OrderFingerprint, score float64) (*AssignmentResult, error) {
	cluster := matching.NewCluster(fp, order.Total, order.OrderedAt)
	if err := s.store.Seed(ctx, cluster, order); err != nil {
		return nil, err
	}
	if err := order.AssignToCluster(cluster.ID); err != nil {
		return nil, err
	}

	return &AssignmentResult{
		OrderID:    order.ID,
		ClusterID:  cluster.ID,
		NewCluster: true,
		Score:      score,
	}, nil
}

func indexOf(refs []*matching.UnidentifiedCluster, id uuid.UUID) int {
	for i, c := range refs {
		if c.ID == id {
			return i
		}
	}
	return -1
}
