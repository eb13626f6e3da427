package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Candidate generation bounds and confidence parameters.
//
// Phone confidence starts at 0.90 because a phone captured on past orders is
// near-certain identity evidence; the remaining 0.10 scales with how much of
// the cluster's history actually carries that phone. Name plus party size is
// circumstantial, so it starts much lower. Auto-merge happens only for an
// unambiguous phone candidate at or above the auto-merge threshold;
// everything else goes to staff review.
const (
	phoneOrderLimit      = 100
	phoneBaseConfidence  = 0.90
	phoneShareWeight     = 0.10
	nameBaseConfidence   = 0.60
	namePartyBonus       = 0.15
	fallbackMinPattern   = 0.70
	fallbackLimit        = 10
	fallbackScale        = 0.50
	autoMergeThreshold   = 0.95
	autoMergeTieBand     = 0.01
)

// MatcherService finds a newly identified customer's anonymous order
// history. Evidence is ranked phone first, then name with party size, then
// a review-only fallback of high-confidence recently active clusters.
type MatcherService struct {
	clusterRepo matching.ClusterRepository
	orderRepo   ordering.OrderRepository
	mergeStore  matching.MergeStore
}

// NewMatcherService creates a new MatcherService
func NewMatcherService(clusterRepo matching.ClusterRepository, orderRepo ordering.OrderRepository, mergeStore matching.MergeStore) *MatcherService {
	return &MatcherService{
		clusterRepo: clusterRepo,
		orderRepo:   orderRepo,
		mergeStore:  mergeStore,
	}
}

// FindCandidates proposes unmatched clusters that may be the identified
// customer's anonymous history, strongest evidence first
func (s *MatcherService) FindCandidates(ctx context.Context, req IdentificationRequest) ([]MatchCandidate, error) {
	candidates, err := s.phoneCandidates(ctx, req.Phone)
	if err != nil {
		return nil, err
	}

	if nameCandidates, err := s.nameCandidates(ctx, req.Name, req.PartySize); err != nil {
		return nil, err
	} else {
		candidates = mergeCandidates(candidates, nameCandidates)
	}

	if len(candidates) == 0 {
		candidates, err = s.fallbackCandidates(ctx)
		if err != nil {
			return nil, err
		}
	}

	sortCandidates(candidates)
	markAutoMerge(candidates)

	return candidates, nil
}

// Identify runs the retroactive match for a customer who just identified
// themselves. If the evidence produces exactly one unambiguous phone
// candidate at or above the auto-merge threshold, the merge happens
// immediately; otherwise the ranked candidates are returned for staff
// review.
func (s *MatcherService) Identify(ctx context.Context, req IdentificationRequest) ([]MatchCandidate, *MergeResult, error) {
	if req.CustomerID == uuid.Nil {
		return nil, nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	candidates, err := s.FindCandidates(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	if len(candidates) > 0 && candidates[0].AutoMergeEligible {
		result, err := s.Merge(ctx, MergeRequest{
			ClusterID:  candidates[0].ClusterID,
			CustomerID: req.CustomerID,
			Method:     candidates[0].Method,
			Confidence: candidates[0].Confidence,
		})
		if err != nil {
			return candidates, nil, err
		}
		return candidates, result, nil
	}

	return candidates, nil, nil
}

// Merge links a cluster to a customer and reattributes every order in the
// cluster, atomically. The cluster row survives as an audit trail.
func (s *MatcherService) Merge(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	if req.ClusterID == uuid.Nil || req.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cluster ID and customer ID are required")
	}

	cluster, err := s.clusterRepo.FindByID(ctx, req.ClusterID)
	if err != nil {
		return nil, err
	}

	if err := cluster.LinkToCustomer(req.CustomerID, req.Method, req.Confidence); err != nil {
		return nil, err
	}

	moved, err := s.mergeStore.Merge(ctx, cluster)
	if err != nil {
		return nil, err
	}

	return &MergeResult{
		ClusterID:   cluster.ID,
		CustomerID:  req.CustomerID,
		OrdersMoved: moved,
	}, nil
}

// phoneCandidates finds clusters whose orders carry the given phone. The
// confidence scales with the share of the cluster's orders that carry it.
func (s *MatcherService) phoneCandidates(ctx context.Context, phone string) ([]MatchCandidate, error) {
	digits := crm.NormalizePhone(phone)
	if digits == "" {
		return nil, nil
	}

	orders, err := s.orderRepo.FindByContactPhone(ctx, digits, phoneOrderLimit)
	if err != nil {
		return nil, err
	}

	hits := make(map[uuid.UUID]int)
	for i := range orders {
		if orders[i].ClusterID != nil {
			hits[*orders[i].ClusterID]++
		}
	}

	var candidates []MatchCandidate
	for clusterID, count := range hits {
		cluster, err := s.clusterRepo.FindByID(ctx, clusterID)
		if err != nil {
			return nil, err
		}
		if cluster.IsMatched() || cluster.OrderCount == 0 {
			continue
		}

		share := float64(count) / float64(cluster.OrderCount)
		if share > 1 {
			share = 1
		}
		candidates = append(candidates, toCandidate(cluster, matching.MatchMethodPhone, phoneBaseConfidence+phoneShareWeight*share))
	}

	return candidates, nil
}

// nameCandidates finds clusters by folded name-pattern search, boosted when
// the customer's typical party size matches the cluster's modal size
func (s *MatcherService) nameCandidates(ctx context.Context, name string, partySize *int) ([]MatchCandidate, error) {
	folded := crm.FoldText(name)
	if folded == "" {
		return nil, nil
	}

	clusters, err := s.clusterRepo.FindByNamePattern(ctx, folded)
	if err != nil {
		return nil, err
	}

	var candidates []MatchCandidate
	for i := range clusters {
		cluster := &clusters[i]
		if cluster.IsMatched() {
			continue
		}

		confidence := nameBaseConfidence
		if partySize != nil {
			if modal, count := cluster.ModalPartySize(); count > 0 && modal == *partySize {
				confidence += namePartyBonus
			}
		}
		candidates = append(candidates, toCandidate(cluster, matching.MatchMethodNamePattern, confidence))
	}

	return candidates, nil
}

// fallbackCandidates lists high-confidence clusters for manual review when
// no direct evidence matched. Their confidence is scaled down so they can
// never auto-merge.
func (s *MatcherService) fallbackCandidates(ctx context.Context) ([]MatchCandidate, error) {
	clusters, err := s.clusterRepo.FindHighConfidence(ctx, fallbackMinPattern, fallbackLimit)
	if err != nil {
		return nil, err
	}

	var candidates []MatchCandidate
	for i := range clusters {
		cluster := &clusters[i]
		candidates = append(candidates, toCandidate(cluster, matching.MatchMethodManual, cluster.PatternConfidence*fallbackScale))
	}

	return candidates, nil
}

func toCandidate(cluster *matching.UnidentifiedCluster, method matching.MatchMethod, confidence float64) MatchCandidate {
	typicalParty, _ := cluster.ModalPartySize()
	return MatchCandidate{
		ClusterID:         cluster.ID,
		Method:            method,
		Confidence:        confidence,
		PatternConfidence: cluster.PatternConfidence,
		OrderCount:        cluster.OrderCount,
		NamePattern:       cluster.NamePattern,
		TypicalParty:      typicalParty,
		TotalSpent:        cluster.TotalSpent,
		LastSeen:          cluster.LastSeen,
	}
}

// mergeCandidates combines evidence lists, keeping the higher-confidence
// entry when the same cluster shows up under both methods
func mergeCandidates(primary, secondary []MatchCandidate) []MatchCandidate {
	seen := make(map[uuid.UUID]int, len(primary))
	for i, c := range primary {
		seen[c.ClusterID] = i
	}
	for _, c := range secondary {
		if i, ok := seen[c.ClusterID]; ok {
			if c.Confidence > primary[i].Confidence {
				primary[i] = c
			}
			continue
		}
		primary = append(primary, c)
	}
	return primary
}

// sortCandidates ranks by evidence method first, then by behavioral pattern
// strength within a method. Match confidence stays the displayed and
// auto-merge value; it does not drive the ranking, so a one-order cluster
// whose single order happens to carry the phone cannot outrank an
// established regular.
func sortCandidates(candidates []MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if ra, rb := methodRank(a.Method), methodRank(b.Method); ra != rb {
			return ra < rb
		}
		if a.PatternConfidence != b.PatternConfidence {
			return a.PatternConfidence > b.PatternConfidence
		}
		if a.OrderCount != b.OrderCount {
			return a.OrderCount > b.OrderCount
		}
		return strings.Compare(a.ClusterID.String(), b.ClusterID.String()) < 0
	})
}

func methodRank(method matching.MatchMethod) int {
	switch method {
	case matching.MatchMethodPhone:
		return 0
	case matching.MatchMethodNamePattern:
		return 1
	default:
		return 2
	}
}

// markAutoMerge flags the top candidate when it is an unambiguous phone
// match at or above the auto-merge threshold. A second phone candidate above
// the threshold, or one trailing the leader within the tie band, makes the
// evidence ambiguous and nothing auto-merges.
func markAutoMerge(candidates []MatchCandidate) {
	if len(candidates) == 0 {
		return
	}
	top := candidates[0]
	if top.Method != matching.MatchMethodPhone || top.Confidence < autoMergeThreshold {
		return
	}
	for _, c := range candidates[1:] {
		if c.Method != matching.MatchMethodPhone {
			continue
		}
		if c.Confidence >= autoMergeThreshold || top.Confidence-c.Confidence < autoMergeTieBand {
			return
		}
	}
	candidates[0].AutoMergeEligible = true
}
