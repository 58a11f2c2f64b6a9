// internal/swipe/dto.go
package swipe

import (
	"time"

	"github.com/google/uuid"
)

// Recoverable outcome reason codes, returned in SwipeResult.Reason so callers
// can branch on value instead of parsing messages.
const (
	ReasonQuotaExceeded          = "quota_exceeded"
	ReasonSuperLikeQuotaExceeded = "super_like_quota_exceeded"
	ReasonDuplicateAction        = "duplicate_action"
	ReasonForbidden              = "forbidden"
	ReasonNothingToUndo          = "nothing_to_undo"
)

// Paywall hint types emitted alongside limit/feature rejections.
const (
	PaywallSwipeLimit     = "SWIPE_LIMIT"
	PaywallSuperLikeLimit = "SUPER_LIKE_LIMIT"
	PaywallUndoFeature    = "UNDO_FEATURE"
)

type SwipeRequest struct {
	TargetUserID uuid.UUID `json:"target_user_id" validate:"required"`
}

// SwipeResult is the structured outcome of a swipe action. Recoverable
// rejections (quota, duplicate, forbidden) come back with Success=false and a
// Reason code; they are never surfaced as errors.
type SwipeResult struct {
	Success             bool       `json:"success"`
	Message             string     `json:"message"`
	Reason              string     `json:"reason,omitempty"`
	IsMatch             bool       `json:"is_match"`
	MatchedUser         *Snapshot  `json:"matched_user,omitempty"`
	RemainingSwipes     int        `json:"remaining_swipes"`
	RemainingSuperLikes int        `json:"remaining_super_likes"`
	ShowPaywall         bool       `json:"show_paywall,omitempty"`
	PaywallType         string     `json:"paywall_type,omitempty"`
	PaywallMessage      string     `json:"paywall_message,omitempty"`
	UndoneUserID        *uuid.UUID `json:"undone_user_id,omitempty"`
}

// ProfileCard is the presentation-ready candidate view served in the
// recommendation feed.
type ProfileCard struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age"`
	Bio         *string   `json:"bio,omitempty"`
	Photos      []string  `json:"photos"`

	// University is only populated when the candidate opted in or the viewer
	// is premium.
	University  *string `json:"university,omitempty"`
	Department  *string `json:"department,omitempty"`
	YearOfStudy *int    `json:"year_of_study,omitempty"`

	// DistanceKm is hidden when the candidate disabled distance display.
	DistanceKm *int `json:"distance_km,omitempty"`

	IsVerified bool `json:"is_verified"`
	IsPremium  bool `json:"is_premium"`

	// Premium viewers only.
	HasLikedMe bool       `json:"has_liked_me"`
	LikedMeAt  *time.Time `json:"liked_me_at,omitempty"`
}

// SwipeStats is the display-ready usage summary. The per-type today counts
// are approximations (min of the daily counter and the list size): individual
// swipe entries carry no timestamp, so an exact per-day split is impossible.
type SwipeStats struct {
	SwipesToday         int       `json:"swipes_today"`
	RemainingSwipes     int       `json:"remaining_swipes"`
	SuperLikesRemaining int       `json:"super_likes_remaining"`
	ResetAt             time.Time `json:"reset_at"`
	IsPremium           bool      `json:"is_premium"`
	LikesToday          int       `json:"likes_today"`
	PassesToday         int       `json:"passes_today"`
	SuperLikesToday     int       `json:"super_likes_today"`
	MatchesToday        int       `json:"matches_today"`
}

// FilterUpdate carries a premium user's preferred-filter changes. Nil string
// fields clear the corresponding filter.
type FilterUpdate struct {
	AgeRangeMin      *int    `json:"age_range_min,omitempty" validate:"omitempty,gte=18,lte=99"`
	AgeRangeMax      *int    `json:"age_range_max,omitempty" validate:"omitempty,gte=18,lte=99"`
	MaxDistanceKm    *int    `json:"max_distance_km,omitempty" validate:"omitempty,gte=1,lte=500"`
	UniversityDomain *string `json:"university_domain,omitempty" validate:"omitempty,max=100"`
	City             *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Department       *string `json:"department,omitempty" validate:"omitempty,max=100"`
}

// FilterSettings echoes the effective filter state after an update.
type FilterSettings struct {
	AgeRangeMin      int     `json:"age_range_min"`
	AgeRangeMax      int     `json:"age_range_max"`
	MaxDistanceKm    int     `json:"max_distance_km"`
	UniversityDomain *string `json:"university_domain,omitempty"`
	City             *string `json:"city,omitempty"`
	Department       *string `json:"department,omitempty"`
}

type SwipeLimitStatus struct {
	CanSwipe        bool `json:"can_swipe"`
	RemainingSwipes int  `json:"remaining_swipes"`
}
