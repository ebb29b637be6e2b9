package ports

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims is the payload of an access token. Subject holds the account id.
type AccessClaims struct {
	Kind domain.AccountKind `json:"kind"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Subject holds the account id.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed tokens.
type TokenService interface {
	IssueTokenPair(ctx context.Context, accountID string, kind domain.AccountKind) (*TokenPair, error)
	ParseAccess(token string) (*AccessClaims, error)
	ParseRefresh(token string) (*RefreshClaims, error)
}

// SessionRevoker blacklists access tokens until their natural expiry.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RegistrationGuard serializes concurrent registrations of the same email.
type RegistrationGuard interface {
	Acquire(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}
