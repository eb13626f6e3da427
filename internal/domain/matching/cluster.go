package matching

import (
	"time"

	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchMethod records how a cluster was linked to a customer
type MatchMethod string

const (
	MatchMethodPhone       MatchMethod = "phone"
	MatchMethodNamePattern MatchMethod = "name_pattern"
	MatchMethodManual      MatchMethod = "manual"
)

// Share of a cluster's orders an item must appear in to count as frequent.
const frequentItemShare = 0.25

// Errors specific to cluster matching
var (
	ErrClusterMatched = shared.NewDomainError("CLUSTER_MATCHED", "Cluster is already matched to a customer")
)

// UnidentifiedCluster groups anonymous orders believed to originate from one
// recurring, not-yet-identified customer. It accumulates behavioral
// statistics (party sizes, visit timing, item preferences) as orders are
// assigned, and a pattern-confidence score estimating how reliably those
// statistics identify a single real person.
//
// Once MatchedCustomerID is set the cluster is terminal: no further orders
// may be assigned to it, and the row is retained as an audit trail of the
// match. New anonymous orders start fresh clusters even when behaviorally
// similar, because the customer is identified and receives new orders
// directly.
type UnidentifiedCluster struct {
	shared.BaseAggregateRoot
	NamePattern        string                         `gorm:"type:varchar(200)"` // best-effort label, staff-editable
	PartySizeCounts    map[int]int                    `gorm:"-"`
	CompositionCounts  map[string]int                 `gorm:"-"`
	DayCounts          map[time.Weekday]int           `gorm:"-"`
	TimeCounts         map[ordering.TimeBucket]int    `gorm:"-"`
	ItemCounts         map[uuid.UUID]int              `gorm:"-"`
	OrderCount         int                            `gorm:"not null;default:0"`
	TotalSpent         decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	AvgTicketSize      decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	FirstSeen          time.Time                      `gorm:"not null"`
	LastSeen           time.Time                      `gorm:"not null"`
	PatternConfidence  float64                        `gorm:"not null;default:0.5"`
	HasPartyPattern    bool                           `gorm:"not null;default:false"`
	HasTemporalPattern bool                           `gorm:"not null;default:false"`
	HasItemPreferences bool                           `gorm:"not null;default:false"`
	InfoQualityScore   float64                        `gorm:"not null;default:0"`
	StaffNotes         string                         `gorm:"type:text"`
	RecognitionHints   string                         `gorm:"type:text"`
	MatchedCustomerID  *uuid.UUID                     `gorm:"type:uuid;index"`
	MatchedAt          *time.Time
	MatchedBy          MatchMethod `gorm:"type:varchar(20)"`
	MatchConfidence    *float64
}

// TableName returns the table name for GORM
func (UnidentifiedCluster) TableName() string {
	return "unidentified_clusters"
}

// NewCluster seeds a cluster from a single order's fingerprint
func NewCluster(fp OrderFingerprint, orderTotal decimal.Decimal, seenAt time.Time) *UnidentifiedCluster {
	c := &UnidentifiedCluster{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartySizeCounts:   make(map[int]int),
		CompositionCounts: make(map[string]int),
		DayCounts:         make(map[time.Weekday]int),
		TimeCounts:        make(map[ordering.TimeBucket]int),
		ItemCounts:        make(map[uuid.UUID]int),
		TotalSpent:        decimal.Zero,
		AvgTicketSize:     decimal.Zero,
		FirstSeen:         seenAt,
		LastSeen:          seenAt,
		PatternConfidence: 0.5,
	}

	c.absorb(fp, orderTotal, seenAt)
	c.OrderCount = 1
	c.AvgTicketSize = c.TotalSpent

	c.AddDomainEvent(NewClusterCreatedEvent(c))

	return c
}

// Absorb folds one more order into the cluster's running statistics.
// Fails if the cluster is already matched; matched clusters are terminal.
func (c *UnidentifiedCluster) Absorb(fp OrderFingerprint, orderTotal decimal.Decimal, seenAt time.Time) error {
	if c.IsMatched() {
		return ErrClusterMatched
	}

	c.absorb(fp, orderTotal, seenAt)
	c.OrderCount++
	c.AvgTicketSize = c.TotalSpent.Div(decimal.NewFromInt(int64(c.OrderCount))).Round(4)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

func (c *UnidentifiedCluster) absorb(fp OrderFingerprint, orderTotal decimal.Decimal, seenAt time.Time) {
	if fp.PartySize != nil {
		c.PartySizeCounts[*fp.PartySize]++
	}
	if fp.PartyComposition != "" {
		c.CompositionCounts[fp.PartyComposition]++
	}
	c.DayCounts[fp.Weekday]++
	c.TimeCounts[fp.TimeBucket]++
	for itemID := range fp.ItemQuantities {
		c.ItemCounts[itemID]++
	}
	c.TotalSpent = c.TotalSpent.Add(orderTotal)
	// FirstSeen/LastSeen are monotonic even when orders arrive out of order.
	if seenAt.Before(c.FirstSeen) {
		c.FirstSeen = seenAt
	}
	if seenAt.After(c.LastSeen) {
		c.LastSeen = seenAt
	}
}

// ModalPartySize returns the most frequent observed party size and its
// count. Ties resolve to the smaller size for determinism. Returns (0, 0)
// when no party size has been observed.
func (c *UnidentifiedCluster) ModalPartySize() (int, int) {
	modal, count := 0, 0
	for size, n := range c.PartySizeCounts {
		if n > count || (n == count && size < modal) {
			modal, count = size, n
		}
	}
	return modal, count
}

// ModalComposition returns the most frequent party composition label.
// Ties resolve lexicographically for determinism.
func (c *UnidentifiedCluster) ModalComposition() string {
	modal, count := "", 0
	for comp, n := range c.CompositionCounts {
		if n > count || (n == count && comp < modal) {
			modal, count = comp, n
		}
	}
	return modal
}

// topCount returns the highest count in a histogram
func topCount[K comparable](counts map[K]int) int {
	top := 0
	for _, n := range counts {
		if n > top {
			top = n
		}
	}
	return top
}

// FrequentItems returns the ids of items appearing in at least
// frequentItemShare of the cluster's orders.
func (c *UnidentifiedCluster) FrequentItems() map[uuid.UUID]struct{} {
	frequent := make(map[uuid.UUID]struct{})
	if c.OrderCount == 0 {
		return frequent
	}
	for itemID, n := range c.ItemCounts {
		if float64(n)/float64(c.OrderCount) >= frequentItemShare {
			frequent[itemID] = struct{}{}
		}
	}
	return frequent
}

// ApplyScore writes a rescoring result back onto the cluster
func (c *UnidentifiedCluster) ApplyScore(result ScoreResult) {
	c.PatternConfidence = result.PatternConfidence
	c.HasPartyPattern = result.HasPartyPattern
	c.HasTemporalPattern = result.HasTemporalPattern
	c.HasItemPreferences = result.HasItemPreferences
	c.InfoQualityScore = result.InfoQualityScore
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// LinkToCustomer marks the cluster as matched. This is the terminal
// transition; it fails on a cluster that is already matched.
func (c *UnidentifiedCluster) LinkToCustomer(customerID uuid.UUID, method MatchMethod, confidence float64) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if c.IsMatched() {
		return ErrClusterMatched
	}

	now := time.Now()
	c.MatchedCustomerID = &customerID
	c.MatchedAt = &now
	c.MatchedBy = method
	c.MatchConfidence = &confidence
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewClusterMatchedEvent(c, customerID, method, confidence))

	return nil
}

// IsMatched returns true once the cluster has been linked to a customer
func (c *UnidentifiedCluster) IsMatched() bool {
	return c.MatchedCustomerID != nil
}

// Annotate applies the staff-editable fields. Nil means leave the field as
// it is; an empty string clears it. All provided fields are applied as one
// version bump so the write maps to a single version-checked update.
func (c *UnidentifiedCluster) Annotate(namePattern, staffNotes, recognitionHints *string) bool {
	changed := false
	if namePattern != nil && *namePattern != c.NamePattern {
		c.NamePattern = *namePattern
		changed = true
	}
	if staffNotes != nil && *staffNotes != c.StaffNotes {
		c.StaffNotes = *staffNotes
		changed = true
	}
	if recognitionHints != nil && *recognitionHints != c.RecognitionHints {
		c.RecognitionHints = *recognitionHints
		changed = true
	}
	if changed {
		c.UpdatedAt = time.Now()
		c.IncrementVersion()
	}
	return changed
}
