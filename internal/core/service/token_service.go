package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskbridge/marketplace-api/internal/api/metrics"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 10 * 24 * time.Hour
)

// TokenConfig holds the signing material and lifetimes for both token types.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService signs access/refresh pairs and records the refresh token on
// the account, replacing whatever session was there before.
type TokenService struct {
	accounts ports.AccountRepositories
	cfg      TokenConfig
	now      func() time.Time
}

func NewTokenService(accounts ports.AccountRepositories, cfg TokenConfig) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &TokenService{accounts: accounts, cfg: cfg, now: time.Now}
}

// IssueTokenPair signs a fresh pair for the account and persists the refresh
// token. This is the only write it performs.
func (s *TokenService) IssueTokenPair(ctx context.Context, accountID string, kind domain.AccountKind) (*ports.TokenPair, error) {
	start := time.Now()
	defer func() {
		metrics.TokenIssueDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	repo, err := s.accounts.For(kind)
	if err != nil {
		return nil, err
	}

	now := s.now()
	access, err := s.sign(ports.AccessClaims{
		Kind:             kind,
		RegisteredClaims: s.registered(accountID, now, s.cfg.AccessTTL),
	}, s.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.sign(ports.RefreshClaims{
		RegisteredClaims: s.registered(accountID, now, s.cfg.RefreshTTL),
	}, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if _, err := repo.UpdateRefreshToken(ctx, accountID, refresh); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.Persistence("Something went wrong while generating refresh and access tokens")
		}
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (s *TokenService) ParseAccess(token string) (*ports.AccessClaims, error) {
	claims := &ports.AccessClaims{}
	if err := s.parse(token, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	if claims.Kind == "" {
		return nil, domain.Unauthorized("Invalid access token")
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token and returns its claims.
func (s *TokenService) ParseRefresh(token string) (*ports.RefreshClaims, error) {
	claims := &ports.RefreshClaims{}
	if err := s.parse(token, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims jwt.Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret string) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return domain.Unauthorized("Invalid or expired token")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return domain.Unauthorized("Invalid or expired token")
	}
	return nil
}
