package matching

import (
	"math"
	"time"
)

// Pattern flag thresholds. A flag needs enough orders behind it that the
// concentration is unlikely to be coincidence.
const (
	minOrdersForPattern  = 3
	partyPatternShare    = 0.60
	temporalPatternShare = 0.50
	itemPreferenceShare  = 0.40
	recencyWindow        = 30 * 24 * time.Hour
)

// ScoreResult is the outcome of rescoring a cluster
type ScoreResult struct {
	PatternConfidence  float64
	HasPartyPattern    bool
	HasTemporalPattern bool
	HasItemPreferences bool
	InfoQualityScore   float64
}

// Rescore recomputes a cluster's pattern flags and confidence from its
// current statistics. It is pure with respect to the cluster: running it
// twice on an unchanged cluster yields the same result. The reference time
// only affects the recency component of the info-quality score.
//
// Confidence is 0.3 per established pattern flag plus up to 0.1 for order
// volume, capped at 1.0. A cluster with fewer than two orders has not shown
// any repeat behavior, so its confidence is capped at 0.5 regardless of how
// concentrated its single observation is.
func Rescore(cluster *UnidentifiedCluster, now time.Time) ScoreResult {
	result := ScoreResult{}
	n := cluster.OrderCount

	if n >= minOrdersForPattern {
		if total := histogramTotal(cluster.PartySizeCounts); total >= minOrdersForPattern {
			_, modalCount := cluster.ModalPartySize()
			result.HasPartyPattern = float64(modalCount)/float64(total) >= partyPatternShare
		}

		topDay := float64(topCount(cluster.DayCounts)) / float64(n)
		topTime := float64(topCount(cluster.TimeCounts)) / float64(n)
		result.HasTemporalPattern = topDay >= temporalPatternShare && topTime >= temporalPatternShare
	}

	if n > 0 {
		top := float64(topCount(cluster.ItemCounts)) / float64(n)
		result.HasItemPreferences = top >= itemPreferenceShare
	}

	confidence := 0.0
	for _, flag := range []bool{result.HasPartyPattern, result.HasTemporalPattern, result.HasItemPreferences} {
		if flag {
			confidence += 0.3
		}
	}
	confidence += math.Min(float64(n), 10) / 10 * 0.1
	confidence = math.Min(confidence, 1.0)
	if n < 2 {
		confidence = math.Min(confidence, 0.5)
	}
	result.PatternConfidence = confidence

	result.InfoQualityScore = infoQuality(cluster, result.PatternConfidence, now)

	return result
}

// infoQuality ranks how useful a cluster is to staff doing manual review:
// mostly pattern strength, then volume, then whether the cluster is still
// active.
func infoQuality(cluster *UnidentifiedCluster, confidence float64, now time.Time) float64 {
	quality := confidence * 0.6
	quality += math.Min(float64(cluster.OrderCount), 10) / 10 * 0.3
	if now.Sub(cluster.LastSeen) <= recencyWindow {
		quality += 0.1
	}
	return math.Min(quality, 1.0)
}

func histogramTotal[K comparable](counts map[K]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
