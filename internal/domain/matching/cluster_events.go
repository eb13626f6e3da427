package matching

import (
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeCluster = "UnidentifiedCluster"

// Event type constants
const (
	EventTypeClusterCreated = "ClusterCreated"
	EventTypeClusterMatched = "ClusterMatched"
)

// ClusterCreatedEvent is published when a fresh cluster is seeded from an
// anonymous order
type ClusterCreatedEvent struct {
	shared.BaseDomainEvent
	ClusterID uuid.UUID `json:"cluster_id"`
}

// NewClusterCreatedEvent creates a new ClusterCreatedEvent
func NewClusterCreatedEvent(cluster *UnidentifiedCluster) *ClusterCreatedEvent {
	return &ClusterCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClusterCreated, AggregateTypeCluster, cluster.ID),
		ClusterID:       cluster.ID,
	}
}

// ClusterMatchedEvent is published when a cluster is linked to a customer
type ClusterMatchedEvent struct {
	shared.BaseDomainEvent
	ClusterID  uuid.UUID   `json:"cluster_id"`
	CustomerID uuid.UUID   `json:"customer_id"`
	Method     MatchMethod `json:"method"`
	Confidence float64     `json:"confidence"`
}

// NewClusterMatchedEvent creates a new ClusterMatchedEvent
func NewClusterMatchedEvent(cluster *UnidentifiedCluster, customerID uuid.UUID, method MatchMethod, confidence float64) *ClusterMatchedEvent {
	return &ClusterMatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClusterMatched, AggregateTypeCluster, cluster.ID),
		ClusterID:       cluster.ID,
		CustomerID:      customerID,
		Method:          method,
		Confidence:      confidence,
	}
}
