package models

import (
	"encoding/json"
	"time"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/bara/backend/internal/domain/matching"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClusterModel is the persistence model for the UnidentifiedCluster domain
// entity. The behavioral histograms are stored as JSON documents; the modal
// party size and folded name pattern are denormalized into indexed columns
// so review queries never parse JSON.
type ClusterModel struct {
	AggregateModel
	NamePattern        string               `gorm:"type:varchar(200)"`
	NamePatternFolded  string               `gorm:"type:varchar(200);index"`
	PartySizeCounts    string               `gorm:"type:jsonb;not null;default:'{}'"`
	CompositionCounts  string               `gorm:"type:jsonb;not null;default:'{}'"`
	DayCounts          string               `gorm:"type:jsonb;not null;default:'{}'"`
	TimeCounts         string               `gorm:"type:jsonb;not null;default:'{}'"`
	ItemCounts         string               `gorm:"type:jsonb;not null;default:'{}'"`
	TypicalPartySize   int                  `gorm:"not null;default:0;index"`
	OrderCount         int                  `gorm:"not null;default:0"`
	TotalSpent         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AvgTicketSize      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	FirstSeen          time.Time            `gorm:"not null"`
	LastSeen           time.Time            `gorm:"not null;index"`
	PatternConfidence  float64              `gorm:"not null;default:0.5"`
	HasPartyPattern    bool                 `gorm:"not null;default:false"`
	HasTemporalPattern bool                 `gorm:"not null;default:false"`
	HasItemPreferences bool                 `gorm:"not null;default:false"`
	InfoQualityScore   float64              `gorm:"not null;default:0;index"`
	StaffNotes         string               `gorm:"type:text"`
	RecognitionHints   string               `gorm:"type:text"`
	MatchedCustomerID  *uuid.UUID           `gorm:"type:uuid;index"`
	MatchedAt          *time.Time
	MatchedBy          matching.MatchMethod `gorm:"type:varchar(20)"`
	MatchConfidence    *float64
}

// TableName returns the table name for GORM
func (ClusterModel) TableName() string {
	return "unidentified_clusters"
}

// ToDomain converts the persistence model to a domain UnidentifiedCluster entity.
func (m *ClusterModel) ToDomain() (*matching.UnidentifiedCluster, error) {
	cluster := &matching.UnidentifiedCluster{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		NamePattern:        m.NamePattern,
		OrderCount:         m.OrderCount,
		TotalSpent:         m.TotalSpent,
		AvgTicketSize:      m.AvgTicketSize,
		FirstSeen:          m.FirstSeen,
		LastSeen:           m.LastSeen,
		PatternConfidence:  m.PatternConfidence,
		HasPartyPattern:    m.HasPartyPattern,
		HasTemporalPattern: m.HasTemporalPattern,
		HasItemPreferences: m.HasItemPreferences,
		InfoQualityScore:   m.InfoQualityScore,
		StaffNotes:         m.StaffNotes,
		RecognitionHints:   m.RecognitionHints,
		MatchedCustomerID:  m.MatchedCustomerID,
		MatchedAt:          m.MatchedAt,
		MatchedBy:          m.MatchedBy,
		MatchConfidence:    m.MatchConfidence,
	}

	if err := unmarshalHistogram(m.PartySizeCounts, &cluster.PartySizeCounts); err != nil {
		return nil, err
	}
	if err := unmarshalHistogram(m.CompositionCounts, &cluster.CompositionCounts); err != nil {
		return nil, err
	}
	if err := unmarshalHistogram(m.DayCounts, &cluster.DayCounts); err != nil {
		return nil, err
	}
	if err := unmarshalHistogram(m.TimeCounts, &cluster.TimeCounts); err != nil {
		return nil, err
	}
	if err := unmarshalHistogram(m.ItemCounts, &cluster.ItemCounts); err != nil {
		return nil, err
	}

	return cluster, nil
}

// FromDomain populates the persistence model from a domain UnidentifiedCluster entity.
func (m *ClusterModel) FromDomain(c *matching.UnidentifiedCluster) error {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.NamePattern = c.NamePattern
	m.NamePatternFolded = crm.FoldText(c.NamePattern)
	m.TypicalPartySize, _ = c.ModalPartySize()
	m.OrderCount = c.OrderCount
	m.TotalSpent = c.TotalSpent
	m.AvgTicketSize = c.AvgTicketSize
	m.FirstSeen = c.FirstSeen
	m.LastSeen = c.LastSeen
	m.PatternConfidence = c.PatternConfidence
	m.HasPartyPattern = c.HasPartyPattern
	m.HasTemporalPattern = c.HasTemporalPattern
	m.HasItemPreferences = c.HasItemPreferences
	m.InfoQualityScore = c.InfoQualityScore
	m.StaffNotes = c.StaffNotes
	m.RecognitionHints = c.RecognitionHints
	m.MatchedCustomerID = c.MatchedCustomerID
	m.MatchedAt = c.MatchedAt
	m.MatchedBy = c.MatchedBy
	m.MatchConfidence = c.MatchConfidence

	var err error
	if m.PartySizeCounts, err = marshalHistogram(c.PartySizeCounts); err != nil {
		return err
	}
	if m.CompositionCounts, err = marshalHistogram(c.CompositionCounts); err != nil {
		return err
	}
	if m.DayCounts, err = marshalHistogram(c.DayCounts); err != nil {
		return err
	}
	if m.TimeCounts, err = marshalHistogram(c.TimeCounts); err != nil {
		return err
	}
	if m.ItemCounts, err = marshalHistogram(c.ItemCounts); err != nil {
		return err
	}

	return nil
}

// ClusterModelFromDomain creates a new persistence model from a domain UnidentifiedCluster entity.
func ClusterModelFromDomain(c *matching.UnidentifiedCluster) (*ClusterModel, error) {
	m := &ClusterModel{}
	if err := m.FromDomain(c); err != nil {
		return nil, err
	}
	return m, nil
}

func marshalHistogram[K comparable](counts map[K]int) (string, error) {
	if counts == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalHistogram[K comparable](raw string, counts *map[K]int) error {
	if raw == "" {
		raw = "{}"
	}
	return json.Unmarshal([]byte(raw), counts)
}
