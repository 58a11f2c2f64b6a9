package swipe

import "time"

// CompatibilityFilter hard-filters a candidate population down to the
// profiles the actor could actually match with: visible, mutually interested,
// in age range and in distance range. It is the single authority for the
// predicate; the repository may pre-narrow with the same bounds but the
// filter is always re-applied in full.
type CompatibilityFilter struct {
	clock func() time.Time
}

func NewCompatibilityFilter(clock func() time.Time) CompatibilityFilter {
	if clock == nil {
		clock = time.Now
	}
	return CompatibilityFilter{clock: clock}
}

// EffectiveAgeRange returns the age bounds actually enforced for the actor.
// Free users always get the fixed 18-30 window regardless of stored
// preferences; only premium users filter by their own range.
func (f CompatibilityFilter) EffectiveAgeRange(actor *Profile) (int, int) {
	if actor.IsPremium {
		return actor.AgeRangeMin, actor.AgeRangeMax
	}
	return FreeAgeMin, FreeAgeMax
}

// EffectiveMaxDistanceKm returns the distance bound enforced for the actor,
// fixed at 50 km for free users.
func (f CompatibilityFilter) EffectiveMaxDistanceKm(actor *Profile) int {
	if actor.IsPremium {
		return actor.MaxDistanceKm
	}
	return FreeMaxDistanceKm
}

// BirthDateWindow converts the actor's effective age range into a birth-date
// interval (minDOB, maxDOB]. Candidates are age-checked against this window
// rather than recomputing an age per candidate.
func (f CompatibilityFilter) BirthDateWindow(actor *Profile) (time.Time, time.Time) {
	now := f.clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	minAge, maxAge := f.EffectiveAgeRange(actor)
	minDOB := today.AddDate(-(maxAge + 1), 0, 0)
	maxDOB := today.AddDate(-minAge, 0, 0)
	return minDOB, maxDOB
}

// GenderCompatible reports whether a and b satisfy each other's interested-in
// preference. The predicate is symmetric: GenderCompatible(a, b) ==
// GenderCompatible(b, a).
func GenderCompatible(a, b *Profile) bool {
	return interestedIn(a.InterestedIn, b.Gender) && interestedIn(b.InterestedIn, a.Gender)
}

func interestedIn(pref InterestedIn, gender Gender) bool {
	switch pref {
	case InterestedInEveryone:
		return true
	case InterestedInMen:
		return gender == GenderMale
	case InterestedInWomen:
		return gender == GenderFemale
	}
	return false
}

// Matches reports whether candidate passes every hard filter for actor.
func (f CompatibilityFilter) Matches(actor, candidate *Profile) bool {
	if candidate.UserID == actor.UserID {
		return false
	}
	if !candidate.IsCompleted || !candidate.IsActive || !candidate.ShowOnApp {
		return false
	}

	// No prior interaction in either relationship set.
	if actor.Liked.Contains(candidate.UserID) ||
		actor.Passed.Contains(candidate.UserID) ||
		actor.Matched.Contains(candidate.UserID) ||
		actor.Blocked.Contains(candidate.UserID) {
		return false
	}

	if !GenderCompatible(actor, candidate) {
		return false
	}

	minDOB, maxDOB := f.BirthDateWindow(actor)
	dob := candidate.DateOfBirth
	if !dob.After(minDOB) || dob.After(maxDOB) {
		return false
	}

	if actor.DistanceTo(candidate) > float64(f.EffectiveMaxDistanceKm(actor)) {
		return false
	}

	// Premium preferred filters are exact-match when set. Free users never
	// apply these even if the columns hold values.
	if actor.IsPremium {
		if actor.PreferredUniversityDomain != nil && *actor.PreferredUniversityDomain != "" {
			if candidate.UniversityDomain == nil || *candidate.UniversityDomain != *actor.PreferredUniversityDomain {
				return false
			}
		}
		if actor.PreferredCity != nil && *actor.PreferredCity != "" {
			if candidate.City == nil || *candidate.City != *actor.PreferredCity {
				return false
			}
		}
		if actor.PreferredDepartment != nil && *actor.PreferredDepartment != "" {
			if candidate.Department == nil || *candidate.Department != *actor.PreferredDepartment {
				return false
			}
		}
	}

	return true
}

// Apply filters the pool down to the candidates that pass every predicate.
func (f CompatibilityFilter) Apply(actor *Profile, pool []*Profile) []*Profile {
	filtered := make([]*Profile, 0, len(pool))
	for _, candidate := range pool {
		if f.Matches(actor, candidate) {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
