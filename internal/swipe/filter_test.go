package swipe

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// newTestProfile builds a visible, compatible baseline profile.
func newTestProfile(gender Gender, interestedIn InterestedIn, age int) *Profile {
	return &Profile{
		UserID:        uuid.New(),
		DisplayName:   "Test User",
		Gender:        gender,
		InterestedIn:  interestedIn,
		DateOfBirth:   testNow.AddDate(-age, 0, -30),
		AgeRangeMin:   18,
		AgeRangeMax:   30,
		MaxDistanceKm: 50,
		Latitude:      floatPtr(52.5200),
		Longitude:     floatPtr(13.4050),
		IsActive:      true,
		IsCompleted:   true,
		ShowOnApp:     true,
	}
}

func TestGenderCompatible(t *testing.T) {
	man := newTestProfile(GenderMale, InterestedInWomen, 22)
	woman := newTestProfile(GenderFemale, InterestedInMen, 22)
	manSeekingMen := newTestProfile(GenderMale, InterestedInMen, 22)
	womanSeekingAll := newTestProfile(GenderFemale, InterestedInEveryone, 22)

	assert.True(t, GenderCompatible(man, woman))
	assert.True(t, GenderCompatible(woman, man))
	assert.False(t, GenderCompatible(man, manSeekingMen))
	assert.True(t, GenderCompatible(manSeekingMen, newTestProfile(GenderMale, InterestedInMen, 23)))
	assert.True(t, GenderCompatible(man, womanSeekingAll))

	// Symmetry holds for every pairing.
	profiles := []*Profile{man, woman, manSeekingMen, womanSeekingAll}
	for _, a := range profiles {
		for _, b := range profiles {
			assert.Equal(t, GenderCompatible(a, b), GenderCompatible(b, a))
		}
	}
}

func TestFilterMatches(t *testing.T) {
	filter := NewCompatibilityFilter(fixedClock(testNow))

	t.Run("compatible pair within 10km passes", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		candidate := newTestProfile(GenderFemale, InterestedInMen, 23)
		// ~9 km north of the actor.
		candidate.Latitude = floatPtr(52.6010)
		candidate.Longitude = floatPtr(13.4050)

		assert.True(t, filter.Matches(actor, candidate))
	})

	t.Run("self is excluded", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInEveryone, 24)
		assert.False(t, filter.Matches(actor, actor))
	})

	t.Run("hidden profiles are excluded", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)

		incomplete := newTestProfile(GenderFemale, InterestedInMen, 23)
		incomplete.IsCompleted = false
		assert.False(t, filter.Matches(actor, incomplete))

		paused := newTestProfile(GenderFemale, InterestedInMen, 23)
		paused.ShowOnApp = false
		assert.False(t, filter.Matches(actor, paused))
	})

	t.Run("prior interactions are excluded", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		candidate := newTestProfile(GenderFemale, InterestedInMen, 23)

		actor.Passed = SnapshotList{{UserID: candidate.UserID}}
		assert.False(t, filter.Matches(actor, candidate))

		actor.Passed = nil
		actor.Blocked = SnapshotList{{UserID: candidate.UserID}}
		assert.False(t, filter.Matches(actor, candidate))
	})

	t.Run("free age window is fixed at 18-30", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		actor.AgeRangeMin = 25
		actor.AgeRangeMax = 28

		nineteen := newTestProfile(GenderFemale, InterestedInMen, 19)
		assert.True(t, filter.Matches(actor, nineteen),
			"free actors ignore their stored range")

		thirtyOne := newTestProfile(GenderFemale, InterestedInMen, 31)
		assert.False(t, filter.Matches(actor, thirtyOne))
	})

	t.Run("premium age window uses stored range", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		actor.IsPremium = true
		actor.AgeRangeMin = 25
		actor.AgeRangeMax = 35

		nineteen := newTestProfile(GenderFemale, InterestedInMen, 19)
		assert.False(t, filter.Matches(actor, nineteen))

		thirtyFour := newTestProfile(GenderFemale, InterestedInMen, 34)
		assert.True(t, filter.Matches(actor, thirtyFour))
	})

	t.Run("free distance capped at 50km", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		actor.MaxDistanceKm = 500

		// Berlin -> Leipzig, ~150 km.
		far := newTestProfile(GenderFemale, InterestedInMen, 23)
		far.Latitude = floatPtr(51.3397)
		far.Longitude = floatPtr(12.3731)
		assert.False(t, filter.Matches(actor, far))

		actor.IsPremium = true
		assert.True(t, filter.Matches(actor, far))
	})

	t.Run("unknown location fails distance check", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		candidate := newTestProfile(GenderFemale, InterestedInMen, 23)
		candidate.Latitude = nil
		candidate.Longitude = nil
		assert.False(t, filter.Matches(actor, candidate))
	})

	t.Run("preferred city filter is premium only", func(t *testing.T) {
		actor := newTestProfile(GenderMale, InterestedInWomen, 24)
		actor.PreferredCity = strPtr("Munich")

		berliner := newTestProfile(GenderFemale, InterestedInMen, 23)
		berliner.City = strPtr("Berlin")

		assert.True(t, filter.Matches(actor, berliner),
			"free actors never apply preferred filters")

		actor.IsPremium = true
		assert.False(t, filter.Matches(actor, berliner))

		berliner.City = strPtr("Munich")
		assert.True(t, filter.Matches(actor, berliner))
	})
}

func TestFilterApply(t *testing.T) {
	filter := NewCompatibilityFilter(fixedClock(testNow))
	actor := newTestProfile(GenderMale, InterestedInWomen, 24)

	good := newTestProfile(GenderFemale, InterestedInMen, 23)
	wrongGender := newTestProfile(GenderMale, InterestedInWomen, 23)
	tooOld := newTestProfile(GenderFemale, InterestedInMen, 40)

	result := filter.Apply(actor, []*Profile{good, wrongGender, tooOld})
	assert.Equal(t, []*Profile{good}, result)
}
