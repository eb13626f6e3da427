package persistence

import (
	"context"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/bara/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMergeStore implements MergeStore using GORM.
// The terminal link on the cluster row and the bulk reattribution of its
// orders run in one database transaction: a crash or conflict leaves either
// both applied or neither.
type GormMergeStore struct {
	db *gorm.DB
}

// NewGormMergeStore creates a new GormMergeStore
func NewGormMergeStore(db *gorm.DB) *GormMergeStore {
	return &GormMergeStore{db: db}
}

// Merge links the cluster to its matched customer and moves every order in
// the cluster to the customer. The cluster must already carry the terminal
// state; the version check rejects the merge if the row changed since it
// was read, and the unmatched guard rejects a double merge.
func (s *GormMergeStore) Merge(ctx context.Context, cluster *matching.UnidentifiedCluster) (int64, error) {
	if !cluster.IsMatched() {
		return 0, shared.NewDomainError("INVALID_STATE", "Cluster does not carry a terminal match")
	}

	var moved int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link := tx.Model(&models.ClusterModel{}).
			Where("id = ? AND version = ? AND matched_customer_id IS NULL", cluster.ID, cluster.Version-1).
			Updates(map[string]interface{}{
				"matched_customer_id": cluster.MatchedCustomerID,
				"matched_at":          cluster.MatchedAt,
				"matched_by":          cluster.MatchedBy,
				"match_confidence":    cluster.MatchConfidence,
				"updated_at":          cluster.UpdatedAt,
				"version":             cluster.Version,
			})
		if link.Error != nil {
			return link.Error
		}
		if link.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		reattribute := tx.Model(&models.OrderModel{}).
			Where("cluster_id = ?", cluster.ID).
			Updates(map[string]interface{}{
				"customer_id": cluster.MatchedCustomerID,
				"cluster_id":  nil,
				"updated_at":  cluster.UpdatedAt,
			})
		if reattribute.Error != nil {
			return reattribute.Error
		}
		moved = reattribute.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
