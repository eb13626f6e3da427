package matching

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// AssignConfig holds the similarity weights and decision thresholds for
// assigning anonymous orders to clusters. Weights need not sum to 1; the
// composite score normalizes over the sub-scores that are present.
type AssignConfig struct {
	PartyWeight     float64
	TemporalWeight  float64
	ItemWeight      float64
	AssignThreshold float64
	TieBand         float64
}

// DefaultAssignConfig returns the standard weighting
func DefaultAssignConfig() AssignConfig {
	return AssignConfig{
		PartyWeight:     0.4,
		TemporalWeight:  0.3,
		ItemWeight:      0.3,
		AssignThreshold: 0.6,
		TieBand:         0.01,
	}
}

// ClusterDecision is the outcome of evaluating an order against the
// candidate clusters: either join an existing cluster or start a fresh one.
type ClusterDecision struct {
	ClusterID  *uuid.UUID
	NewCluster bool
	Score      float64
}

// Assigner scores order fingerprints against unmatched clusters and decides
// cluster membership. It is stateless and safe for concurrent use.
type Assigner struct {
	cfg AssignConfig
}

// NewAssigner creates an assigner with the given configuration
func NewAssigner(cfg AssignConfig) *Assigner {
	return &Assigner{cfg: cfg}
}

// Score computes the weighted similarity between a fingerprint and a
// cluster, in [0, 1]. Sub-scores without data on either side (unknown party
// size, cluster with no item history) are excluded and the remaining
// weights renormalized, so a missing feature neither helps nor hurts.
func (a *Assigner) Score(fp OrderFingerprint, cluster *UnidentifiedCluster) float64 {
	score, weight := 0.0, 0.0

	if fp.PartySize != nil && len(cluster.PartySizeCounts) > 0 {
		score += a.cfg.PartyWeight * partySimilarity(*fp.PartySize, cluster)
		weight += a.cfg.PartyWeight
	}
	if cluster.OrderCount > 0 {
		score += a.cfg.TemporalWeight * temporalSimilarity(fp, cluster)
		weight += a.cfg.TemporalWeight
	}
	if len(fp.ItemQuantities) > 0 && len(cluster.ItemCounts) > 0 {
		score += a.cfg.ItemWeight * itemSimilarity(fp, cluster)
		weight += a.cfg.ItemWeight
	}

	if weight == 0 {
		return 0
	}
	return score / weight
}

// Assign evaluates the candidates and decides where the order belongs.
// Matched clusters are never considered. If no unmatched candidate reaches
// the assignment threshold the decision is a fresh cluster. Candidates
// scoring within the tie band of the best are tied; ties resolve to the
// larger cluster (more observed orders), then to the smaller id, so the
// same candidate set always yields the same decision.
func (a *Assigner) Assign(fp OrderFingerprint, candidates []*UnidentifiedCluster) ClusterDecision {
	var best *UnidentifiedCluster
	bestScore := 0.0

	scores := make(map[uuid.UUID]float64, len(candidates))
	for _, c := range candidates {
		if c.IsMatched() {
			continue
		}
		s := a.Score(fp, c)
		scores[c.ID] = s
		if s > bestScore {
			bestScore = s
		}
	}

	if bestScore < a.cfg.AssignThreshold {
		return ClusterDecision{NewCluster: true, Score: bestScore}
	}

	for _, c := range candidates {
		s, ok := scores[c.ID]
		if !ok || s < bestScore-a.cfg.TieBand {
			continue
		}
		if best == nil || betterTied(c, best) {
			best = c
		}
	}

	id := best.ID
	return ClusterDecision{ClusterID: &id, Score: scores[id]}
}

// betterTied reports whether candidate wins a tie against incumbent
func betterTied(candidate, incumbent *UnidentifiedCluster) bool {
	if candidate.OrderCount != incumbent.OrderCount {
		return candidate.OrderCount > incumbent.OrderCount
	}
	return strings.Compare(candidate.ID.String(), incumbent.ID.String()) < 0
}

// partySimilarity decays linearly with distance from the cluster's modal
// party size, reaching zero at a distance of 3 or more.
func partySimilarity(size int, cluster *UnidentifiedCluster) float64 {
	modal, _ := cluster.ModalPartySize()
	distance := math.Abs(float64(size - modal))
	return math.Max(0, 1-distance/3)
}

// temporalSimilarity measures how well the order's weekday and time bucket
// fit the cluster's visit history, each relative to the cluster's
// top-weighted bucket.
func temporalSimilarity(fp OrderFingerprint, cluster *UnidentifiedCluster) float64 {
	dayScore := 0.0
	if top := topCount(cluster.DayCounts); top > 0 {
		dayScore = float64(cluster.DayCounts[fp.Weekday]) / float64(top)
	}
	timeScore := 0.0
	if top := topCount(cluster.TimeCounts); top > 0 {
		timeScore = float64(cluster.TimeCounts[fp.TimeBucket]) / float64(top)
	}
	return (dayScore + timeScore) / 2
}

// itemSimilarity is the Jaccard overlap between the order's item set and
// the cluster's frequent-item set
func itemSimilarity(fp OrderFingerprint, cluster *UnidentifiedCluster) float64 {
	frequent := cluster.FrequentItems()
	if len(frequent) == 0 && len(fp.ItemQuantities) == 0 {
		return 0
	}

	intersection := 0
	for itemID := range fp.ItemQuantities {
		if _, ok := frequent[itemID]; ok {
			intersection++
		}
	}
	union := len(fp.ItemQuantities) + len(frequent) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
