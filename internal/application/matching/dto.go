package matching

import (
	"time"

	"github.com/bara/backend/internal/domain/matching"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssignmentResult reports where an anonymous order ended up
type AssignmentResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	ClusterID  uuid.UUID `json:"cluster_id"`
	NewCluster bool      `json:"new_cluster"`
	Score      float64   `json:"score"`
}

// IdentificationRequest carries the evidence captured when a customer
// identifies themselves. All fields are optional; stronger evidence yields
// stronger candidates.
type IdentificationRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Phone      string    `json:"phone"`
	Name       string    `json:"name"`
	PartySize  *int      `json:"party_size"`
}

// MatchCandidate is one cluster proposed as the customer's anonymous
// order history. Confidence is the match-evidence value shown to staff and
// checked by the auto-merge policy; PatternConfidence is the cluster's
// behavioral pattern strength and drives the ranking within a method.
type MatchCandidate struct {
	ClusterID         uuid.UUID            `json:"cluster_id"`
	Method            matching.MatchMethod `json:"method"`
	Confidence        float64              `json:"confidence"`
	PatternConfidence float64              `json:"pattern_confidence"`
	OrderCount        int                  `json:"order_count"`
	NamePattern       string               `json:"name_pattern,omitempty"`
	TypicalParty      int                  `json:"typical_party,omitempty"`
	TotalSpent        decimal.Decimal      `json:"total_spent"`
	LastSeen          time.Time            `json:"last_seen"`
	AutoMergeEligible bool                 `json:"auto_merge_eligible"`
}

// MergeRequest asks for a cluster to be merged into a customer's history
type MergeRequest struct {
	ClusterID  uuid.UUID            `json:"cluster_id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	Method     matching.MatchMethod `json:"method"`
	Confidence float64              `json:"confidence"`
}

// MergeResult reports a completed merge
type MergeResult struct {
	ClusterID   uuid.UUID `json:"cluster_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	OrdersMoved int64     `json:"orders_moved"`
}

// ClusterResponse is the review-facing view of a cluster
type ClusterResponse struct {
	ID                 uuid.UUID       `json:"id"`
	NamePattern        string          `json:"name_pattern,omitempty"`
	OrderCount         int             `json:"order_count"`
	TypicalParty       int             `json:"typical_party,omitempty"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	AvgTicketSize      decimal.Decimal `json:"avg_ticket_size"`
	FirstSeen          time.Time       `json:"first_seen"`
	LastSeen           time.Time       `json:"last_seen"`
	PatternConfidence  float64         `json:"pattern_confidence"`
	HasPartyPattern    bool            `json:"has_party_pattern"`
	HasTemporalPattern bool            `json:"has_temporal_pattern"`
	HasItemPreferences bool            `json:"has_item_preferences"`
	InfoQualityScore   float64         `json:"info_quality_score"`
	StaffNotes         string          `json:"staff_notes,omitempty"`
	RecognitionHints   string          `json:"recognition_hints,omitempty"`
	Matched            bool            `json:"matched"`
	MatchedCustomerID  *uuid.UUID      `json:"matched_customer_id,omitempty"`
}

// ToClusterResponse converts a domain cluster to a response DTO
func ToClusterResponse(cluster *matching.UnidentifiedCluster) *ClusterResponse {
	typicalParty, _ := cluster.ModalPartySize()
	return &ClusterResponse{
		ID:                 cluster.ID,
		NamePattern:        cluster.NamePattern,
		OrderCount:         cluster.OrderCount,
		TypicalParty:       typicalParty,
		TotalSpent:         cluster.TotalSpent,
		AvgTicketSize:      cluster.AvgTicketSize,
		FirstSeen:          cluster.FirstSeen,
		LastSeen:           cluster.LastSeen,
		PatternConfidence:  cluster.PatternConfidence,
		HasPartyPattern:    cluster.HasPartyPattern,
		HasTemporalPattern: cluster.HasTemporalPattern,
		HasItemPreferences: cluster.HasItemPreferences,
		InfoQualityScore:   cluster.InfoQualityScore,
		StaffNotes:         cluster.StaffNotes,
		RecognitionHints:   cluster.RecognitionHints,
		Matched:            cluster.IsMatched(),
		MatchedCustomerID:  cluster.MatchedCustomerID,
	}
}

// ClusterListResponse is one page of the review queue
type ClusterListResponse struct {
	Clusters []ClusterResponse `json:"clusters"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// AnnotateClusterRequest carries staff edits to a cluster's labels. Nil
// leaves a field untouched; an empty string clears it.
type AnnotateClusterRequest struct {
	ClusterID        uuid.UUID `json:"cluster_id"`
	NamePattern      *string   `json:"name_pattern"`
	StaffNotes       *string   `json:"staff_notes"`
	RecognitionHints *string   `json:"recognition_hints"`
}

// PruneRequest bounds an administrative cleanup of low-quality clusters
type PruneRequest struct {
	MaxInfoQuality float64 `json:"max_info_quality"`
	MaxOrderCount  int     `json:"max_order_count"`
	Limit          int     `json:"limit"`
}

// RescoreStats summarizes one background rescoring pass
type RescoreStats struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}
