package swipe

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makePool(actorID uuid.UUID, whoLikedMe, premium, verified, regular int) []*Profile {
	var pool []*Profile
	for i := 0; i < whoLikedMe; i++ {
		p := newTestProfile(GenderFemale, InterestedInMen, 22)
		p.Liked = SnapshotList{{UserID: actorID}}
		pool = append(pool, p)
	}
	for i := 0; i < premium; i++ {
		p := newTestProfile(GenderFemale, InterestedInMen, 22)
		p.IsPremium = true
		pool = append(pool, p)
	}
	for i := 0; i < verified; i++ {
		p := newTestProfile(GenderFemale, InterestedInMen, 22)
		p.IsPhotoVerified = true
		pool = append(pool, p)
	}
	for i := 0; i < regular; i++ {
		pool = append(pool, newTestProfile(GenderFemale, InterestedInMen, 22))
	}
	return pool
}

func countTiers(actorID uuid.UUID, profiles []*Profile) map[Tier]int {
	counts := make(map[Tier]int)
	for _, p := range profiles {
		counts[ClassifyTier(actorID, p)]++
	}
	return counts
}

func TestClassifyTier(t *testing.T) {
	actorID := uuid.New()

	liked := newTestProfile(GenderFemale, InterestedInMen, 22)
	liked.Liked = SnapshotList{{UserID: actorID}}
	liked.IsPremium = true
	assert.Equal(t, TierWhoLikedMe, ClassifyTier(actorID, liked),
		"who-liked-me wins over premium")

	premium := newTestProfile(GenderFemale, InterestedInMen, 22)
	premium.IsPremium = true
	premium.IsPhotoVerified = true
	assert.Equal(t, TierPremium, ClassifyTier(actorID, premium))

	verified := newTestProfile(GenderFemale, InterestedInMen, 22)
	verified.IsPhotoVerified = true
	assert.Equal(t, TierVerified, ClassifyTier(actorID, verified))

	assert.Equal(t, TierRegular, ClassifyTier(actorID, newTestProfile(GenderFemale, InterestedInMen, 22)))
}

func TestStratifierAssemble(t *testing.T) {
	actor := newTestProfile(GenderMale, InterestedInWomen, 24)

	t.Run("abundant pool honors tier quotas", func(t *testing.T) {
		s := NewStratifier(rand.New(rand.NewSource(1)))
		pool := makePool(actor.UserID, 40, 40, 40, 40)

		result := s.Assemble(actor, pool)
		assert.Len(t, result, 50)

		counts := countTiers(actor.UserID, result)
		assert.GreaterOrEqual(t, counts[TierWhoLikedMe], 18, "stage 1+2 guarantee 10+8")
		assert.GreaterOrEqual(t, counts[TierPremium], 9, "stage 1+2 guarantee 3+6")
		assert.GreaterOrEqual(t, counts[TierVerified], 8, "stage 1+2 guarantee 2+6")
	})

	t.Run("no duplicates across stages", func(t *testing.T) {
		s := NewStratifier(rand.New(rand.NewSource(2)))
		pool := makePool(actor.UserID, 20, 20, 20, 20)

		result := s.Assemble(actor, pool)
		seen := make(map[uuid.UUID]bool)
		for _, p := range result {
			assert.False(t, seen[p.UserID], "candidate appeared twice")
			seen[p.UserID] = true
		}
	})

	t.Run("small pool returned in full", func(t *testing.T) {
		s := NewStratifier(rand.New(rand.NewSource(3)))
		pool := makePool(actor.UserID, 1, 2, 1, 3)

		result := s.Assemble(actor, pool)
		assert.Len(t, result, 7)
	})

	t.Run("empty pool yields empty list", func(t *testing.T) {
		s := NewStratifier(rand.New(rand.NewSource(4)))
		assert.Empty(t, s.Assemble(actor, nil))
	})

	t.Run("sparse tiers backfilled from regular", func(t *testing.T) {
		s := NewStratifier(rand.New(rand.NewSource(5)))
		pool := makePool(actor.UserID, 0, 0, 0, 80)

		result := s.Assemble(actor, pool)
		assert.Len(t, result, 50)
		counts := countTiers(actor.UserID, result)
		assert.Equal(t, 50, counts[TierRegular])
	})

	t.Run("result order varies across seeds", func(t *testing.T) {
		pool := makePool(actor.UserID, 10, 10, 10, 10)

		a := NewStratifier(rand.New(rand.NewSource(6))).Assemble(actor, pool)
		b := NewStratifier(rand.New(rand.NewSource(7))).Assemble(actor, pool)

		assert.Len(t, a, 40)
		assert.Len(t, b, 40)

		sameOrder := true
		for i := range a {
			if a[i].UserID != b[i].UserID {
				sameOrder = false
				break
			}
		}
		assert.False(t, sameOrder, "different seeds should shuffle differently")
	})
}
