package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/bara/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClusterRepository implements ClusterRepository using GORM.
// Every version-checked update also requires the row to still be unmatched,
// so a cluster that went terminal mid-flight rejects the write the same way
// a stale version does.
type GormClusterRepository struct {
	db *gorm.DB
}

// NewGormClusterRepository creates a new GormClusterRepository
func NewGormClusterRepository(db *gorm.DB) *GormClusterRepository {
	return &GormClusterRepository{db: db}
}

// FindByID finds a cluster by ID
func (r *GormClusterRepository) FindByID(ctx context.Context, id uuid.UUID) (*matching.UnidentifiedCluster, error) {
	var model models.ClusterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindUnmatched lists unmatched clusters, best review material first
func (r *GormClusterRepository) FindUnmatched(ctx context.Context, filter shared.Filter) ([]matching.UnidentifiedCluster, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ClusterModel{}).
		Where("matched_customer_id IS NULL").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&models.ClusterModel{}).
		Where("matched_customer_id IS NULL").
		Order("info_quality_score DESC, order_count DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	clusters, err := r.findAll(query)
	return clusters, total, err
}

// FindHighConfidence lists unmatched clusters at or above the given pattern
// confidence, strongest first
func (r *GormClusterRepository) FindHighConfidence(ctx context.Context, minConfidence float64, limit int) ([]matching.UnidentifiedCluster, error) {
	if limit <= 0 {
		limit = 20
	}

	return r.findAll(r.db.WithContext(ctx).
		Where("matched_customer_id IS NULL AND pattern_confidence >= ?", minConfidence).
		Order("pattern_confidence DESC, order_count DESC").
		Limit(limit))
}

// FindByNamePattern lists unmatched clusters whose folded name pattern
// contains the folded search term
func (r *GormClusterRepository) FindByNamePattern(ctx context.Context, pattern string) ([]matching.UnidentifiedCluster, error) {
	if pattern == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Name pattern cannot be empty")
	}

	return r.findAll(r.db.WithContext(ctx).
		Where("matched_customer_id IS NULL AND name_pattern_folded LIKE ?", "%"+pattern+"%").
		Order("order_count DESC"))
}

// FindByPartySize lists unmatched clusters whose modal party size equals
// the given size
func (r *GormClusterRepository) FindByPartySize(ctx context.Context, size int) ([]matching.UnidentifiedCluster, error) {
	return r.findAll(r.db.WithContext(ctx).
		Where("matched_customer_id IS NULL AND typical_party_size = ?", size).
		Order("order_count DESC"))
}

// FindRecentlyActive lists unmatched clusters seen within the last daysBack
// days, most recent first
func (r *GormClusterRepository) FindRecentlyActive(ctx context.Context, daysBack int, limit int) ([]matching.UnidentifiedCluster, error) {
	if daysBack <= 0 {
		daysBack = 90
	}
	if limit <= 0 {
		limit = 200
	}
	cutoff := time.Now().AddDate(0, 0, -daysBack)

	return r.findAll(r.db.WithContext(ctx).
		Where("matched_customer_id IS NULL AND last_seen >= ?", cutoff).
		Order("last_seen DESC").
		Limit(limit))
}

// Create inserts a freshly seeded cluster
func (r *GormClusterRepository) Create(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	model, err := models.ClusterModelFromDomain(cluster)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// UpdateStatistics persists the histogram and counter state after an
// absorb, version-checked against concurrent absorbs and merges
func (r *GormClusterRepository) UpdateStatistics(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	model, err := models.ClusterModelFromDomain(cluster)
	if err != nil {
		return err
	}

	return r.versionedUpdate(ctx, cluster, map[string]interface{}{
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
}

// UpdatePatternConfidence persists a rescoring result, version-checked
func (r *GormClusterRepository) UpdatePatternConfidence(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	return r.versionedUpdate(ctx, cluster, map[string]interface{}{
		"pattern_confidence":   cluster.PatternConfidence,
		"has_party_pattern":    cluster.HasPartyPattern,
		"has_temporal_pattern": cluster.HasTemporalPattern,
		"has_item_preferences": cluster.HasItemPreferences,
		"info_quality_score":   cluster.InfoQualityScore,
		"updated_at":           cluster.UpdatedAt,
		"version":              cluster.Version,
	})
}

// UpdateAnnotations persists the staff-editable fields, version-checked
func (r *GormClusterRepository) UpdateAnnotations(ctx context.Context, cluster *matching.UnidentifiedCluster) error {
	model, err := models.ClusterModelFromDomain(cluster)
	if err != nil {
		return err
	}

	return r.versionedUpdate(ctx, cluster, map[string]interface{}{
		"name_pattern":        model.NamePattern,
		"name_pattern_folded": model.NamePatternFolded,
		"staff_notes":         model.StaffNotes,
		"recognition_hints":   model.RecognitionHints,
		"updated_at":          model.UpdatedAt,
		"version":             model.Version,
	})
}

// Delete removes an unmatched cluster. Matched clusters are an audit trail
// and are never deleted.
func (r *GormClusterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND matched_customer_id IS NULL", id).
		Delete(&models.ClusterModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormClusterRepository) versionedUpdate(ctx context.Context, cluster *matching.UnidentifiedCluster, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.ClusterModel{}).
		Where("id = ? AND version = ? AND matched_customer_id IS NULL", cluster.ID, cluster.Version-1).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormClusterRepository) findAll(query *gorm.DB) ([]matching.UnidentifiedCluster, error) {
	var clusterModels []models.ClusterModel
	if err := query.Find(&clusterModels).Error; err != nil {
		return nil, err
	}

	clusters := make([]matching.UnidentifiedCluster, len(clusterModels))
	for i := range clusterModels {
		cluster, err := clusterModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		clusters[i] = *cluster
	}
	return clusters, nil
}
