package swipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrProfileNotFound = errors.New("profile not found")

// CandidateQuery narrows the candidate scan at the SQL level. Visibility
// flags and the birth-date window always apply; the preferred-* fields are
// only set for premium actors. The in-memory CompatibilityFilter re-checks
// the full predicate afterwards, so this is an optimization, not the
// authority.
type CandidateQuery struct {
	ExcludeUserID  uuid.UUID
	MinDateOfBirth time.Time
	MaxDateOfBirth time.Time

	UniversityDomain *string
	City             *string
	Department       *string
}

// Repository is the persistence boundary for profile aggregates. Match
// creation spans two aggregates and must go through SaveProfiles so both
// sides commit in one transaction.
type Repository interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ListCandidates(ctx context.Context, q *CandidateQuery) ([]*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
	SaveProfiles(ctx context.Context, a, b *Profile) error
	ReplenishSuperLikes(ctx context.Context, freeCount, premiumCount int) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
	id, user_id, display_name, bio, gender, date_of_birth,
	interested_in, age_range_min, age_range_max, max_distance_km,
	latitude, longitude, city,
	university_name, university_domain, department, year_of_study,
	profile_image_url, photo_urls,
	show_university, show_distance, show_on_app,
	is_active, is_completed, is_photo_verified, is_premium,
	preferred_university_domain, preferred_city, preferred_department,
	daily_swipe_count, swipe_count_reset_at, super_like_count,
	total_match_count, total_likes_received,
	liked_users, passed_users, matched_users, blocked_users,
	created_at, updated_at
`

func (r *postgresRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	err := r.db.GetContext(ctx, &p, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	return &p, nil
}

func (r *postgresRepository) ListCandidates(ctx context.Context, q *CandidateQuery) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE user_id != $1
		  AND is_completed = TRUE
		  AND is_active = TRUE
		  AND show_on_app = TRUE
		  AND date_of_birth > $2
		  AND date_of_birth <= $3`
	args := []interface{}{q.ExcludeUserID, q.MinDateOfBirth, q.MaxDateOfBirth}

	if q.UniversityDomain != nil && *q.UniversityDomain != "" {
		args = append(args, *q.UniversityDomain)
		query += fmt.Sprintf(" AND university_domain = $%d", len(args))
	}
	if q.City != nil && *q.City != "" {
		args = append(args, *q.City)
		query += fmt.Sprintf(" AND city = $%d", len(args))
	}
	if q.Department != nil && *q.Department != "" {
		args = append(args, *q.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}

	var candidates []*Profile
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return candidates, nil
}

const saveProfileQuery = `
	UPDATE profiles SET
		age_range_min = :age_range_min,
		age_range_max = :age_range_max,
		max_distance_km = :max_distance_km,
		preferred_university_domain = :preferred_university_domain,
		preferred_city = :preferred_city,
		preferred_department = :preferred_department,
		daily_swipe_count = :daily_swipe_count,
		swipe_count_reset_at = :swipe_count_reset_at,
		super_like_count = :super_like_count,
		total_match_count = :total_match_count,
		total_likes_received = :total_likes_received,
		liked_users = :liked_users,
		passed_users = :passed_users,
		matched_users = :matched_users,
		blocked_users = :blocked_users,
		updated_at = NOW()
	WHERE user_id = :user_id
`

func (r *postgresRepository) SaveProfile(ctx context.Context, p *Profile) error {
	res, err := r.db.NamedExecContext(ctx, saveProfileQuery, p)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SaveProfiles persists two mutated aggregates atomically. A half-applied
// match (one Matched list updated, the other not) would be a correctness
// violation, so both updates ride one transaction.
func (r *postgresRepository) SaveProfiles(ctx context.Context, a, b *Profile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range []*Profile{a, b} {
		res, err := tx.NamedExecContext(ctx, saveProfileQuery, p)
		if err != nil {
			return fmt.Errorf("save profile %s: %w", p.UserID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrProfileNotFound
		}
	}

	return tx.Commit()
}

// ReplenishSuperLikes tops every profile's super-like balance back up to its
// tier's daily allowance. Run by the daily scheduler.
func (r *postgresRepository) ReplenishSuperLikes(ctx context.Context, freeCount, premiumCount int) error {
	query := `
		UPDATE profiles SET
			super_like_count = GREATEST(super_like_count, CASE WHEN is_premium THEN $1 ELSE $2 END),
			updated_at = NOW()
		WHERE is_active = TRUE
	`
	if _, err := r.db.ExecContext(ctx, query, premiumCount, freeCount); err != nil {
		return fmt.Errorf("replenish super likes: %w", err)
	}
	return nil
}
