package swipe

import "time"

// Quota limits. Free-tier values match the product defaults and are not
// user-configurable; premium users have no daily swipe cap.
const (
	FreeDailySwipeLimit = 30
	FreeDailySuperLikes = 1

	PremiumDailySuperLikes = 5

	FreeMaxDistanceKm = 50
	FreeAgeMin        = 18
	FreeAgeMax        = 30

	// UnlimitedSwipes is the remaining-swipes sentinel for premium users.
	UnlimitedSwipes = -1
)

// RateLimiter owns the daily swipe quota state on a profile. There is no
// scheduled reset: ResetIfDue runs lazily before every quota check, so a
// profile untouched for a week resets on its next swipe.
type RateLimiter struct {
	clock func() time.Time
}

func NewRateLimiter(clock func() time.Time) RateLimiter {
	if clock == nil {
		clock = time.Now
	}
	return RateLimiter{clock: clock}
}

// Today returns the current UTC date at midnight.
func (r RateLimiter) Today() time.Time {
	now := r.clock().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ResetIfDue zeroes the daily swipe count when the stored reset date is before
// today (UTC). Returns true when state changed and must be persisted.
func (r RateLimiter) ResetIfDue(p *Profile) bool {
	today := r.Today()
	if p.SwipeCountResetAt.UTC().Truncate(24 * time.Hour).Before(today) {
		p.DailySwipeCount = 0
		p.SwipeCountResetAt = today
		return true
	}
	return false
}

// AllowSwipe reports whether the profile may spend one more daily swipe.
// Callers must run ResetIfDue first.
func (r RateLimiter) AllowSwipe(p *Profile) bool {
	if p.IsPremium {
		return true
	}
	return p.DailySwipeCount < FreeDailySwipeLimit
}

// RemainingSwipes returns the swipes left today, or UnlimitedSwipes for
// premium profiles.
func (r RateLimiter) RemainingSwipes(p *Profile) int {
	if p.IsPremium {
		return UnlimitedSwipes
	}
	remaining := FreeDailySwipeLimit - p.DailySwipeCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
