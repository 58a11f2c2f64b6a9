// internal/auth/service.go
// Token validation and revocation. User accounts live in an upstream identity
// service; this package only needs to verify the tokens it issues and track
// which ones were revoked before expiry.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/unimatch/campusmatch-backend/internal/common/utils"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

type Service interface {
	IssueToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	RevokeToken(ctx context.Context, token string) error
}

// Config holds service configuration.
type Config struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
	Issuer            string
}

type service struct {
	redis  *redis.Client
	config *Config
}

// NewService creates the auth service. redis may be nil, in which case
// revocation is unavailable and tokens stay valid until expiry.
func NewService(redisClient *redis.Client, config *Config) Service {
	return &service{redis: redisClient, config: config}
}

func (s *service) IssueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &utils.JWTClaims{
		UserID:    userID,
		Type:      "access",
		ExpiresAt: now.Add(s.config.AccessTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    s.config.Issuer,
		Subject:   userID.String(),
		TokenID:   uuid.NewString(),
	}
	return utils.GenerateJWT(claims, s.config.JWTSecret)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.redis != nil && claims.TokenID != "" {
		revoked, err := s.redis.Exists(ctx, revokedKey(claims.TokenID)).Result()
		if err == nil && revoked > 0 {
			return nil, ErrTokenRevoked
		}
		// A redis error here fails open: an unreachable denylist should not
		// take down every authenticated endpoint.
	}

	return claims, nil
}

// RevokeToken denylists the token's ID until its natural expiry.
func (s *service) RevokeToken(ctx context.Context, token string) error {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return ErrInvalidToken
	}
	if s.redis == nil {
		return errors.New("revocation unavailable: redis not configured")
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revokedKey(claims.TokenID), "1", ttl).Err()
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}
