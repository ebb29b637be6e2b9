package ports

import (
	"context"
	"time"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// RegisterInput carries an already validated registration payload.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account *domain.Account
	Tokens  TokenPair
}

// Identity is the caller resolved from an access token.
type Identity struct {
	AccountID string
	Kind      domain.AccountKind
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, id Identity) error
	Refresh(ctx context.Context, kind domain.AccountKind, refreshToken string) (*TokenPair, error)
}
