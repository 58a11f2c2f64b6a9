package swipe

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type InterestedIn string

const (
	InterestedInMen      InterestedIn = "men"
	InterestedInWomen    InterestedIn = "women"
	InterestedInEveryone InterestedIn = "everyone"
)

// Snapshot is a denormalized copy of a counterpart captured at swipe time.
// It is intentionally not a live reference: if the counterpart later edits
// their profile, entries already stored here go stale.
type Snapshot struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Gender      Gender    `json:"gender,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Age         int       `json:"age,omitempty"`
	University  *string   `json:"university,omitempty"`
	IsVerified  bool      `json:"is_verified,omitempty"`
	IsSuperLike bool      `json:"is_super_like,omitempty"`
}

// SnapshotList is an append-ordered relationship set stored as a JSONB column.
type SnapshotList []Snapshot

func (l SnapshotList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *SnapshotList) Scan(src interface{}) error {
	if src == nil {
		*l = SnapshotList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SnapshotList", src)
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether the set holds a snapshot of the given user.
func (l SnapshotList) Contains(userID uuid.UUID) bool {
	for _, s := range l {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// RemoveLast removes the most recently appended snapshot and returns it.
func (l *SnapshotList) RemoveLast() (Snapshot, bool) {
	if len(*l) == 0 {
		return Snapshot{}, false
	}
	last := (*l)[len(*l)-1]
	*l = (*l)[:len(*l)-1]
	return last, true
}

// Profile is the matching-relevant aggregate for one user. Relationship sets
// (Liked/Passed/Matched/Blocked) live on the row as JSONB snapshot lists and
// are mutated only by the swipe service.
type Profile struct {
	ID          int64     `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Bio         *string   `json:"bio,omitempty" db:"bio"`

	Gender      Gender    `json:"gender" db:"gender"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`

	// Dating preferences
	InterestedIn  InterestedIn `json:"interested_in" db:"interested_in"`
	AgeRangeMin   int          `json:"age_range_min" db:"age_range_min"`
	AgeRangeMax   int          `json:"age_range_max" db:"age_range_max"`
	MaxDistanceKm int          `json:"max_distance_km" db:"max_distance_km"`

	// Location
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
	City      *string  `json:"city,omitempty" db:"city"`

	// Education
	UniversityName   *string `json:"university_name,omitempty" db:"university_name"`
	UniversityDomain *string `json:"university_domain,omitempty" db:"university_domain"`
	Department       *string `json:"department,omitempty" db:"department"`
	YearOfStudy      *int    `json:"year_of_study,omitempty" db:"year_of_study"`

	// Photos
	ProfileImageURL *string        `json:"profile_image_url,omitempty" db:"profile_image_url"`
	PhotoURLs       pq.StringArray `json:"photo_urls" db:"photo_urls"`

	// Privacy
	ShowUniversity bool `json:"show_university" db:"show_university"`
	ShowDistance   bool `json:"show_distance" db:"show_distance"`
	ShowOnApp      bool `json:"show_on_app" db:"show_on_app"`

	// Status
	IsActive        bool `json:"is_active" db:"is_active"`
	IsCompleted     bool `json:"is_completed" db:"is_completed"`
	IsPhotoVerified bool `json:"is_photo_verified" db:"is_photo_verified"`
	IsPremium       bool `json:"is_premium" db:"is_premium"`

	// Premium-only preferred filters. Free users may carry stale values here;
	// the compatibility filter never applies them for free users.
	PreferredUniversityDomain *string `json:"preferred_university_domain,omitempty" db:"preferred_university_domain"`
	PreferredCity             *string `json:"preferred_city,omitempty" db:"preferred_city"`
	PreferredDepartment       *string `json:"preferred_department,omitempty" db:"preferred_department"`

	// Quotas & counters
	DailySwipeCount    int       `json:"daily_swipe_count" db:"daily_swipe_count"`
	SwipeCountResetAt  time.Time `json:"swipe_count_reset_at" db:"swipe_count_reset_at"`
	SuperLikeCount     int       `json:"super_like_count" db:"super_like_count"`
	TotalMatchCount    int       `json:"total_match_count" db:"total_match_count"`
	TotalLikesReceived int       `json:"total_likes_received" db:"total_likes_received"`

	// Relationship sets
	Liked   SnapshotList `json:"-" db:"liked_users"`
	Passed  SnapshotList `json:"-" db:"passed_users"`
	Matched SnapshotList `json:"-" db:"matched_users"`
	Blocked SnapshotList `json:"-" db:"blocked_users"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AgeAt computes the profile owner's age on the given day.
func (p *Profile) AgeAt(today time.Time) int {
	age := today.Year() - p.DateOfBirth.Year()
	if p.DateOfBirth.AddDate(age, 0, 0).After(today) {
		age--
	}
	return age
}

// SnapshotOf builds the denormalized snapshot of p for embedding in a
// counterpart's relationship set.
func SnapshotOf(p *Profile, today time.Time, superLike bool) Snapshot {
	return Snapshot{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Gender:      p.Gender,
		ImageURL:    p.ProfileImageURL,
		Age:         p.AgeAt(today),
		University:  p.UniversityName,
		IsVerified:  p.IsPhotoVerified,
		IsSuperLike: superLike,
	}
}
