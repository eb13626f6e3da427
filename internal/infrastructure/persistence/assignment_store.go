package persistence

import (
	"context"
	"time"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/bara/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssignmentStore implements AssignmentStore using GORM.
// The cluster write and the order's cluster linkage run in one database
// transaction, so a failed order write rolls back the absorbed statistics
// and the order stays anonymous for the next attempt.
type GormAssignmentStore struct {
	db *gorm.DB
}

// NewGormAssignmentStore creates a new GormAssignmentStore
func NewGormAssignmentStore(db *gorm.DB) *GormAssignmentStore {
	return &GormAssignmentStore{db: db}
}

// Absorb persists the cluster's post-absorb statistics and links the order
// to the cluster. The cluster update is version-checked against concurrent
// absorbs and merges; the order update requires the row to still be
// anonymous. Either failure rolls back both writes.
func (s *GormAssignmentStore) Absorb(ctx context.Context, cluster *matching.UnidentifiedCluster, order *ordering.Order) error {
	model, err := models.ClusterModelFromDomain(cluster)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats := tx.Model(&models.ClusterModel{}).
			Where("id = ? AND version = ? AND matched_customer_id IS NULL", cluster.ID, cluster.Version-1).
			Updates(map[string]interface{}{
				"party_size_counts":  model.PartySizeCounts,
				"composition_counts": model.CompositionCounts,
				"day_counts":         model.DayCounts,
				"time_counts":        model.TimeCounts,
				"item_counts":        model.ItemCounts,
				"typical_party_size": model.TypicalPartySize,
				"order_count":        model.OrderCount,
				"total_spent":        model.TotalSpent,
				"avg_ticket_size":    model.AvgTicketSize,
				"first_seen":         model.FirstSeen,
				"last_seen":          model.LastSeen,
				"updated_at":         model.UpdatedAt,
				"version":            model.Version,
			})
		if stats.Error != nil {
			return stats.Error
		}
		if stats.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return linkOrder(tx, cluster, order)
	})
}

// Seed inserts a freshly seeded cluster and links the order to it. A failed
// order write rolls back the insert, so no empty cluster row survives.
func (s *GormAssignmentStore) Seed(ctx context.Context, cluster *matching.UnidentifiedCluster, order *ordering.Order) error {
	model, err := models.ClusterModelFromDomain(cluster)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return linkOrder(tx, cluster, order)
	})
}

// linkOrder writes the order's cluster linkage. The guard keeps an order
// that got attributed or clustered by another writer from being relinked.
func linkOrder(tx *gorm.DB, cluster *matching.UnidentifiedCluster, order *ordering.Order) error {
	link := tx.Model(&models.OrderModel{}).
		Where("id = ? AND version = ? AND customer_id IS NULL AND cluster_id IS NULL", order.ID, order.Version).
		Updates(map[string]interface{}{
			"cluster_id": cluster.ID,
			"updated_at": time.Now(),
			"version":    order.Version + 1,
		})
	if link.Error != nil {
		return link.Error
	}
	if link.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
