// internal/swipe/service.go
package swipe

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPremiumRequired is returned when a free user calls a premium-only
// operation that has no recoverable paywall response.
var ErrPremiumRequired = errors.New("premium subscription required")

const (
	actionLike      = "like"
	actionPass      = "pass"
	actionSuperLike = "super_like"
	actionUndo      = "undo"

	outcomeOK       = "ok"
	outcomeRejected = "rejected"
)

type Service interface {
	// Recommendations
	GetRecommendations(ctx context.Context, userID uuid.UUID) ([]*ProfileCard, error)

	// Swipe actions
	Like(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error)
	Pass(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error)
	SuperLike(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error)
	UndoLastSwipe(ctx context.Context, userID uuid.UUID) (*SwipeResult, error)

	// Stats & settings
	GetStats(ctx context.Context, userID uuid.UUID) (*SwipeStats, error)
	UpdateFilters(ctx context.Context, userID uuid.UUID, update *FilterUpdate) (*FilterSettings, error)
	CheckSwipeLimit(ctx context.Context, userID uuid.UUID) (*SwipeLimitStatus, error)

	// Scheduled jobs
	ReplenishSuperLikes(ctx context.Context) error
}

type service struct {
	repo       Repository
	limiter    RateLimiter
	filter     CompatibilityFilter
	stratifier *Stratifier
	locks      *profileLocks
	log        logrus.FieldLogger
	clock      func() time.Time
}

func NewService(repo Repository, log logrus.FieldLogger) Service {
	return newService(repo, log, time.Now)
}

func newService(repo Repository, log logrus.FieldLogger, clock func() time.Time) *service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		repo:       repo,
		limiter:    NewRateLimiter(clock),
		filter:     NewCompatibilityFilter(clock),
		stratifier: NewStratifier(nil),
		locks:      newProfileLocks(),
		log:        log,
		clock:      clock,
	}
}

// GetRecommendations assembles the stratified candidate feed for a user.
// The result is a live, unpaginated snapshot: concurrent swipes between two
// calls may yield overlapping feeds, which is acceptable since the list is
// randomized anyway.
func (s *service) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]*ProfileCard, error) {
	started := s.clock()

	actor, err := s.loadWithReset(ctx, userID)
	if err != nil {
		return nil, err
	}

	minDOB, maxDOB := s.filter.BirthDateWindow(actor)
	query := &CandidateQuery{
		ExcludeUserID:  actor.UserID,
		MinDateOfBirth: minDOB,
		MaxDateOfBirth: maxDOB,
	}
	if actor.IsPremium {
		query.UniversityDomain = actor.PreferredUniversityDomain
		query.City = actor.PreferredCity
		query.Department = actor.PreferredDepartment
	}

	pool, err := s.repo.ListCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	filtered := s.filter.Apply(actor, pool)
	selected := s.stratifier.Assemble(actor, filtered)

	cards := make([]*ProfileCard, 0, len(selected))
	for _, candidate := range selected {
		cards = append(cards, s.buildCard(actor, candidate))
	}

	observeRecommendations(len(cards), s.clock().Sub(started))
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"pool":     len(pool),
		"filtered": len(filtered),
		"returned": len(cards),
	}).Info("recommendations assembled")

	return cards, nil
}

func (s *service) Like(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error) {
	unlock := s.locks.LockPair(userID, targetUserID)
	defer unlock()

	actor, target, err := s.loadPair(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}

	if result := s.checkDailyLimit(ctx, actor, actionLike); result != nil {
		return result, nil
	}

	if actor.Liked.Contains(targetUserID) {
		recordSwipe(actionLike, outcomeRejected)
		return s.duplicateResult(actor, "You already liked this user"), nil
	}

	today := s.limiter.Today()
	actor.Liked = append(actor.Liked, SnapshotOf(target, today, false))
	actor.DailySwipeCount++
	target.TotalLikesReceived++

	result, err := s.finishLike(ctx, actor, target, actionLike)
	if err != nil {
		return nil, err
	}
	if result.IsMatch {
		result.Message = "It's a match! You can message each other now."
	} else {
		result.Message = "Like sent"
	}
	return result, nil
}

func (s *service) Pass(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error) {
	unlock := s.locks.LockPair(userID, targetUserID)
	defer unlock()

	actor, target, err := s.loadPair(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}

	if result := s.checkDailyLimit(ctx, actor, actionPass); result != nil {
		return result, nil
	}

	if actor.Passed.Contains(targetUserID) {
		recordSwipe(actionPass, outcomeRejected)
		return s.duplicateResult(actor, "You already passed this user"), nil
	}

	today := s.limiter.Today()
	actor.Passed = append(actor.Passed, SnapshotOf(target, today, false))
	actor.DailySwipeCount++

	if err := s.repo.SaveProfile(ctx, actor); err != nil {
		return nil, err
	}

	recordSwipe(actionPass, outcomeOK)
	return &SwipeResult{
		Success:             true,
		Message:             "Passed",
		RemainingSwipes:     s.limiter.RemainingSwipes(actor),
		RemainingSuperLikes: actor.SuperLikeCount,
	}, nil
}

func (s *service) SuperLike(ctx context.Context, userID, targetUserID uuid.UUID) (*SwipeResult, error) {
	unlock := s.locks.LockPair(userID, targetUserID)
	defer unlock()

	actor, target, err := s.loadPair(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}

	// The super-like budget is its own consumable, checked independently of
	// the daily swipe quota.
	s.resetAndPersistIfDue(ctx, actor)
	if actor.SuperLikeCount <= 0 {
		s.log.WithField("user_id", userID).Info("super like limit reached")
		recordSwipe(actionSuperLike, outcomeRejected)
		recordPaywallHit(PaywallSuperLikeLimit)
		return &SwipeResult{
			Success:             false,
			Message:             "You are out of super likes for today",
			Reason:              ReasonSuperLikeQuotaExceeded,
			ShowPaywall:         true,
			PaywallType:         PaywallSuperLikeLimit,
			PaywallMessage:      "Go premium and get 5 super likes every day!",
			RemainingSwipes:     s.limiter.RemainingSwipes(actor),
			RemainingSuperLikes: 0,
		}, nil
	}

	// Super likes share the Liked set with regular likes, so the duplicate
	// check is the same.
	if actor.Liked.Contains(targetUserID) {
		recordSwipe(actionSuperLike, outcomeRejected)
		return s.duplicateResult(actor, "You already liked this user"), nil
	}

	today := s.limiter.Today()
	actor.Liked = append(actor.Liked, SnapshotOf(target, today, true))
	actor.DailySwipeCount++
	actor.SuperLikeCount--
	if actor.SuperLikeCount < 0 {
		actor.SuperLikeCount = 0
	}
	target.TotalLikesReceived++

	result, err := s.finishLike(ctx, actor, target, actionSuperLike)
	if err != nil {
		return nil, err
	}
	if result.IsMatch {
		result.Message = "Super match!"
	} else {
		result.Message = "Super like sent!"
	}
	return result, nil
}

// UndoLastSwipe reverts the actor's most recent swipe. "Most recent" is the
// last appended entry, Liked taking priority over Passed: snapshots carry no
// timestamp, so append order is the only ordering available. A matched pair
// is never reverted; undoing a like that already matched leaves the Matched
// sets untouched.
func (s *service) UndoLastSwipe(ctx context.Context, userID uuid.UUID) (*SwipeResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	actor, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !actor.IsPremium {
		recordSwipe(actionUndo, outcomeRejected)
		recordPaywallHit(PaywallUndoFeature)
		return &SwipeResult{
			Success:             false,
			Message:             "Undo is a premium feature",
			Reason:              ReasonForbidden,
			ShowPaywall:         true,
			PaywallType:         PaywallUndoFeature,
			PaywallMessage:      "Go premium to take back your last swipe!",
			RemainingSwipes:     s.limiter.RemainingSwipes(actor),
			RemainingSuperLikes: actor.SuperLikeCount,
		}, nil
	}

	var undone Snapshot
	var ok bool
	var message string
	if undone, ok = actor.Liked.RemoveLast(); ok {
		message = "Last like undone"
	} else if undone, ok = actor.Passed.RemoveLast(); ok {
		message = "Last pass undone"
	} else {
		return &SwipeResult{
			Success:             false,
			Message:             "Nothing to undo",
			Reason:              ReasonNothingToUndo,
			RemainingSwipes:     s.limiter.RemainingSwipes(actor),
			RemainingSuperLikes: actor.SuperLikeCount,
		}, nil
	}

	if actor.DailySwipeCount > 0 {
		actor.DailySwipeCount--
	}

	if err := s.repo.SaveProfile(ctx, actor); err != nil {
		return nil, err
	}

	recordSwipe(actionUndo, outcomeOK)
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"target_id": undone.UserID,
	}).Info("swipe undone")

	undoneID := undone.UserID
	return &SwipeResult{
		Success:             true,
		Message:             message,
		RemainingSwipes:     s.limiter.RemainingSwipes(actor),
		RemainingSuperLikes: actor.SuperLikeCount,
		UndoneUserID:        &undoneID,
	}, nil
}

func (s *service) GetStats(ctx context.Context, userID uuid.UUID) (*SwipeStats, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	actor, err := s.loadWithReset(ctx, userID)
	if err != nil {
		return nil, err
	}

	return buildStats(actor, s.limiter), nil
}

func (s *service) UpdateFilters(ctx context.Context, userID uuid.UUID, update *FilterUpdate) (*FilterSettings, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	actor, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !actor.IsPremium {
		return nil, ErrPremiumRequired
	}

	if update.AgeRangeMin != nil {
		actor.AgeRangeMin = *update.AgeRangeMin
	}
	if update.AgeRangeMax != nil {
		actor.AgeRangeMax = *update.AgeRangeMax
	}
	if update.MaxDistanceKm != nil {
		actor.MaxDistanceKm = *update.MaxDistanceKm
	}

	// Nil clears the filter (show everyone again).
	actor.PreferredUniversityDomain = update.UniversityDomain
	actor.PreferredCity = update.City
	actor.PreferredDepartment = update.Department

	if err := s.repo.SaveProfile(ctx, actor); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", userID).Info("premium filters updated")

	return &FilterSettings{
		AgeRangeMin:      actor.AgeRangeMin,
		AgeRangeMax:      actor.AgeRangeMax,
		MaxDistanceKm:    actor.MaxDistanceKm,
		UniversityDomain: actor.PreferredUniversityDomain,
		City:             actor.PreferredCity,
		Department:       actor.PreferredDepartment,
	}, nil
}

func (s *service) CheckSwipeLimit(ctx context.Context, userID uuid.UUID) (*SwipeLimitStatus, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	actor, err := s.loadWithReset(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SwipeLimitStatus{
		CanSwipe:        s.limiter.AllowSwipe(actor),
		RemainingSwipes: s.limiter.RemainingSwipes(actor),
	}, nil
}

// ReplenishSuperLikes tops every active profile's super-like budget back up
// to its daily allowance (1 free, 5 premium).
func (s *service) ReplenishSuperLikes(ctx context.Context) error {
	if err := s.repo.ReplenishSuperLikes(ctx, FreeDailySuperLikes, PremiumDailySuperLikes); err != nil {
		return err
	}
	s.log.Info("super like budgets replenished")
	return nil
}

// ---- internals ----

func (s *service) loadPair(ctx context.Context, userID, targetUserID uuid.UUID) (*Profile, *Profile, error) {
	actor, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.repo.GetProfileByUserID(ctx, targetUserID)
	if err != nil {
		return nil, nil, err
	}
	return actor, target, nil
}

// loadWithReset loads a profile and applies the lazy daily reset, persisting
// immediately when the reset fired.
func (s *service) loadWithReset(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	actor, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.resetAndPersistIfDue(ctx, actor)
	return actor, nil
}

func (s *service) resetAndPersistIfDue(ctx context.Context, p *Profile) {
	if !s.limiter.ResetIfDue(p) {
		return
	}
	s.log.WithField("user_id", p.UserID).Info("daily swipe counter reset")
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		s.log.WithError(err).WithField("user_id", p.UserID).Warn("failed to persist quota reset")
	}
}

// checkDailyLimit applies the lazy reset and returns a quota-exceeded result
// when a free actor is out of daily swipes, nil otherwise.
func (s *service) checkDailyLimit(ctx context.Context, actor *Profile, action string) *SwipeResult {
	s.resetAndPersistIfDue(ctx, actor)

	if s.limiter.AllowSwipe(actor) {
		return nil
	}

	s.log.WithField("user_id", actor.UserID).Info("daily swipe limit reached")
	recordSwipe(action, outcomeRejected)
	recordPaywallHit(PaywallSwipeLimit)

	return &SwipeResult{
		Success:     false,
		Message:     "You reached your daily swipe limit",
		Reason:      ReasonQuotaExceeded,
		ShowPaywall: true,
		PaywallType: PaywallSwipeLimit,
		PaywallMessage: "Go premium for unlimited swipes, profiles from every university, " +
			"and a look at who already liked you!",
		RemainingSwipes:     0,
		RemainingSuperLikes: actor.SuperLikeCount,
	}
}

func (s *service) duplicateResult(actor *Profile, message string) *SwipeResult {
	return &SwipeResult{
		Success:             false,
		Message:             message,
		Reason:              ReasonDuplicateAction,
		RemainingSwipes:     s.limiter.RemainingSwipes(actor),
		RemainingSuperLikes: actor.SuperLikeCount,
	}
}

// finishLike runs reciprocity detection after the actor's Liked set gained
// the target, then persists. A mutual like appends the symmetric snapshot
// pair to both Matched sets exactly once; both aggregates commit in one
// transaction so a half-applied match cannot exist.
func (s *service) finishLike(ctx context.Context, actor, target *Profile, action string) (*SwipeResult, error) {
	today := s.limiter.Today()

	isMatch := target.Liked.Contains(actor.UserID) && !actor.Matched.Contains(target.UserID)

	var matchedUser *Snapshot
	if isMatch {
		targetSnap := SnapshotOf(target, today, false)
		actorSnap := SnapshotOf(actor, today, false)

		actor.Matched = append(actor.Matched, targetSnap)
		target.Matched = append(target.Matched, actorSnap)
		actor.TotalMatchCount++
		target.TotalMatchCount++

		matchedUser = &targetSnap

		if err := s.repo.SaveProfiles(ctx, actor, target); err != nil {
			return nil, err
		}

		recordMatch()
		s.log.WithFields(logrus.Fields{
			"user_id":   actor.UserID,
			"target_id": target.UserID,
		}).Info("mutual match created")
	} else {
		if err := s.repo.SaveProfiles(ctx, actor, target); err != nil {
			return nil, err
		}
	}

	recordSwipe(action, outcomeOK)

	return &SwipeResult{
		Success:             true,
		IsMatch:             isMatch,
		MatchedUser:         matchedUser,
		RemainingSwipes:     s.limiter.RemainingSwipes(actor),
		RemainingSuperLikes: actor.SuperLikeCount,
	}, nil
}

func (s *service) buildCard(actor, candidate *Profile) *ProfileCard {
	now := s.clock().UTC()

	photos := []string(candidate.PhotoURLs)
	if len(photos) == 0 && candidate.ProfileImageURL != nil {
		photos = []string{*candidate.ProfileImageURL}
	}

	card := &ProfileCard{
		UserID:      candidate.UserID,
		DisplayName: candidate.DisplayName,
		Age:         candidate.AgeAt(now),
		Bio:         candidate.Bio,
		Photos:      photos,
		Department:  candidate.Department,
		YearOfStudy: candidate.YearOfStudy,
		IsVerified:  candidate.IsPhotoVerified,
		IsPremium:   candidate.IsPremium,
	}

	if actor.IsPremium || candidate.ShowUniversity {
		card.University = candidate.UniversityName
	}

	if candidate.ShowDistance {
		if d := actor.DistanceTo(candidate); d != DistanceUnknown {
			km := int(math.Round(d))
			card.DistanceKm = &km
		}
	}

	// Only premium viewers learn who already liked them.
	if actor.IsPremium && candidate.Liked.Contains(actor.UserID) {
		card.HasLikedMe = true
		// TODO: store a liked-at timestamp in snapshots so this reports the
		// real like time instead of the card build time.
		card.LikedMeAt = &now
	}

	return card
}
