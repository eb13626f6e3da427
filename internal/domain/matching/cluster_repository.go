package matching

import (
	"context"

	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClusterRepository defines the interface for cluster persistence.
// UpdateStatistics, UpdatePatternConfidence, and the terminal link all use
// optimistic locking: the cluster's version must still match the row, and
// the row must still be unmatched, or the update is rejected with a
// concurrency conflict.
type ClusterRepository interface {
	// FindByID finds a cluster by ID
	FindByID(ctx context.Context, id uuid.UUID) (*UnidentifiedCluster, error)

	// FindUnmatched lists unmatched clusters for review, ordered by info
	// quality then order count, both descending
	FindUnmatched(ctx context.Context, filter shared.Filter) ([]UnidentifiedCluster, int64, error)

	// FindHighConfidence lists unmatched clusters at or above the given
	// pattern confidence, strongest first
	FindHighConfidence(ctx context.Context, minConfidence float64, limit int) ([]UnidentifiedCluster, error)

	// FindByNamePattern lists unmatched clusters whose name pattern contains
	// the folded search term
	FindByNamePattern(ctx context.Context, pattern string) ([]UnidentifiedCluster, error)

	// FindByPartySize lists unmatched clusters whose modal party size equals
	// the given size
	FindByPartySize(ctx context.Context, size int) ([]UnidentifiedCluster, error)

	// FindRecentlyActive lists unmatched clusters seen within the last
	// daysBack days, most recent first. These are the candidates evaluated
	// at order entry.
	FindRecentlyActive(ctx context.Context, daysBack int, limit int) ([]UnidentifiedCluster, error)

	// Create inserts a freshly seeded cluster
	Create(ctx context.Context, cluster *UnidentifiedCluster) error

	// UpdateStatistics persists the histogram and counter state after an
	// absorb, version-checked
	UpdateStatistics(ctx context.Context, cluster *UnidentifiedCluster) error

	// UpdatePatternConfidence persists a rescoring result, version-checked
	UpdatePatternConfidence(ctx context.Context, cluster *UnidentifiedCluster) error

	// UpdateAnnotations persists the staff-editable fields (name pattern,
	// staff notes, recognition hints), version-checked
	UpdateAnnotations(ctx context.Context, cluster *UnidentifiedCluster) error

	// Delete removes an unmatched low-quality cluster. Matched clusters are
	// an audit trail and are never deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// MergeStore performs the terminal cluster-to-customer merge as a single
// atomic unit: the version-checked terminal link on the cluster row and the
// bulk reattribution of every linked order to the customer either both
// happen or neither does.
type MergeStore interface {
	// Merge links the cluster to the customer and moves all of the cluster's
	// orders to the customer in one transaction. The cluster must carry the
	// terminal state (already passed through LinkToCustomer); the version
	// check rejects the merge if the row changed since it was read.
	Merge(ctx context.Context, cluster *UnidentifiedCluster) (ordersMoved int64, err error)
}

// AssignmentStore commits an order-entry assignment as a single atomic
// unit: the cluster write and the order's cluster linkage either both
// happen or neither does, so a failed order write never leaves a cluster
// counting an order it did not receive.
type AssignmentStore interface {
	// Absorb persists the cluster's post-absorb statistics and links the
	// order to the cluster in one transaction. Both writes are
	// version-checked; the order must still be anonymous on the row.
	Absorb(ctx context.Context, cluster *UnidentifiedCluster, order *ordering.Order) error

	// Seed inserts a freshly seeded cluster and links the order to it in
	// one transaction.
	Seed(ctx context.Context, cluster *UnidentifiedCluster, order *ordering.Order) error
}
