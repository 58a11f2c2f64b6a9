package swipe

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Tier is a priority bucket for stratified recommendation sampling.
type Tier int

const (
	TierWhoLikedMe Tier = iota
	TierPremium
	TierVerified
	TierRegular
)

// Stage targets and per-tier draw quotas. Stage 1 fills to 15, stage 2 to 35,
// stage 3 tops up to 50 from whatever remains across all tiers.
const (
	stage1Target = 15
	stage2Target = 35
	finalTarget  = 50

	stage1LikedQuota    = 10
	stage1PremiumQuota  = 3
	stage1VerifiedQuota = 2

	stage2LikedQuota    = 8
	stage2PremiumQuota  = 6
	stage2VerifiedQuota = 6
)

// Stratifier assembles a bounded, diversity-balanced recommendation list.
// Uncontrolled ranking would either starve reciprocal opportunities or let
// premium and verified profiles dominate the feed, so the filtered pool is
// bucketed into four priority tiers and drawn from in staged quotas, with a
// shuffle before every prefix draw so insertion order never leaks through.
type Stratifier struct {
	rng *rand.Rand
}

func NewStratifier(rng *rand.Rand) *Stratifier {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Stratifier{rng: rng}
}

// ClassifyTier places a candidate into its highest applicable tier for the
// given actor. Tiers are disjoint: WhoLikedMe beats Premium beats Verified.
func ClassifyTier(actorUserID uuid.UUID, candidate *Profile) Tier {
	switch {
	case candidate.Liked.Contains(actorUserID):
		return TierWhoLikedMe
	case candidate.IsPremium:
		return TierPremium
	case candidate.IsPhotoVerified:
		return TierVerified
	default:
		return TierRegular
	}
}

// Assemble draws up to 50 candidates from the filtered pool. Smaller pools
// are returned in full (after shuffling); an empty pool yields an empty list.
func (s *Stratifier) Assemble(actor *Profile, pool []*Profile) []*Profile {
	var whoLikedMe, premium, verified, regular []*Profile
	for _, candidate := range pool {
		switch ClassifyTier(actor.UserID, candidate) {
		case TierWhoLikedMe:
			whoLikedMe = append(whoLikedMe, candidate)
		case TierPremium:
			premium = append(premium, candidate)
		case TierVerified:
			verified = append(verified, candidate)
		default:
			regular = append(regular, candidate)
		}
	}

	// One unbiased shuffle per tier; staged draws then consume successive
	// prefixes so stage 2 never re-picks stage-1 candidates.
	s.shuffle(whoLikedMe)
	s.shuffle(premium)
	s.shuffle(verified)
	s.shuffle(regular)

	result := make([]*Profile, 0, finalTarget)
	likedIdx, premiumIdx, verifiedIdx, regularIdx := 0, 0, 0, 0

	take := func(tier []*Profile, idx *int, n int) {
		for n > 0 && *idx < len(tier) {
			result = append(result, tier[*idx])
			*idx++
			n--
		}
	}

	// Stage 1: guaranteed representation for every tier, regular backfill.
	take(whoLikedMe, &likedIdx, stage1LikedQuota)
	take(premium, &premiumIdx, stage1PremiumQuota)
	take(verified, &verifiedIdx, stage1VerifiedQuota)
	take(regular, &regularIdx, stage1Target-len(result))

	// Stage 2: fresh quota per tier, excluding stage-1 picks.
	take(whoLikedMe, &likedIdx, stage2LikedQuota)
	take(premium, &premiumIdx, stage2PremiumQuota)
	take(verified, &verifiedIdx, stage2VerifiedQuota)
	take(regular, &regularIdx, stage2Target-len(result))

	// Stage 3: uniform draw from everything not yet picked.
	if need := finalTarget - len(result); need > 0 {
		var remaining []*Profile
		remaining = append(remaining, whoLikedMe[likedIdx:]...)
		remaining = append(remaining, premium[premiumIdx:]...)
		remaining = append(remaining, verified[verifiedIdx:]...)
		remaining = append(remaining, regular[regularIdx:]...)
		s.shuffle(remaining)
		if need > len(remaining) {
			need = len(remaining)
		}
		result = append(result, remaining[:need]...)
	}

	// Final shuffle so tier boundaries are not observable as blocks.
	s.shuffle(result)

	return result
}

// shuffle is an in-place Fisher-Yates shuffle.
func (s *Stratifier) shuffle(profiles []*Profile) {
	s.rng.Shuffle(len(profiles), func(i, j int) {
		profiles[i], profiles[j] = profiles[j], profiles[i]
	})
}
