package swipe

// buildStats derives the display-ready usage summary from a profile whose
// daily counters are already reset for today.
//
// The per-type breakdown is an approximation. DailySwipeCount is the only
// per-day counter; the Liked and Passed lists are lifetime accumulations with
// no timestamps. Capping each list size by the daily counter gives figures
// that are exact for a user's first day and a sane upper bound afterwards.
func buildStats(p *Profile, limiter RateLimiter) *SwipeStats {
	likesToday := minInt(p.DailySwipeCount, len(p.Liked))
	passesToday := minInt(p.DailySwipeCount, len(p.Passed))

	return &SwipeStats{
		SwipesToday:         p.DailySwipeCount,
		RemainingSwipes:     limiter.RemainingSwipes(p),
		SuperLikesRemaining: p.SuperLikeCount,
		ResetAt:             limiter.Today().AddDate(0, 0, 1),
		IsPremium:           p.IsPremium,
		LikesToday:          likesToday,
		PassesToday:         passesToday,
		SuperLikesToday:     0,
		MatchesToday:        minInt(p.DailySwipeCount, p.TotalMatchCount),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
