package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskbridge/marketplace-api/internal/api/metrics"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// AuthService implements registration, login, logout and refresh for one
// account kind. Email uniqueness is checked against every kind in accounts.
type AuthService struct {
	kind     domain.AccountKind
	accounts ports.AccountRepositories
	tokens   ports.TokenService
	guard    ports.RegistrationGuard
	revoker  ports.SessionRevoker
	logger   zerolog.Logger
}

// AuthOption configures optional collaborators of AuthService.
type AuthOption func(*AuthService)

// WithRegistrationGuard serializes registrations of the same email.
func WithRegistrationGuard(g ports.RegistrationGuard) AuthOption {
	return func(s *AuthService) { s.guard = g }
}

// WithSessionRevoker revokes access tokens on logout.
func WithSessionRevoker(r ports.SessionRevoker) AuthOption {
	return func(s *AuthService) { s.revoker = r }
}

func NewAuthService(
	kind domain.AccountKind,
	accounts ports.AccountRepositories,
	tokens ports.TokenService,
	logger zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{kind: kind, accounts: accounts, tokens: tokens, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account unless the email is already used by any kind.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	repo, err := s.accounts.For(s.kind)
	if err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)

	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("registration guard unavailable, relying on unique index")
		} else if !ok {
			metrics.AuthOperationsTotal.WithLabelValues("register", "conflict").Inc()
			return nil, domain.Conflict(domain.ErrEmailTaken.Error())
		} else {
			defer func() {
				if err := s.guard.Release(context.WithoutCancel(ctx), email); err != nil {
					s.logger.Warn().Err(err).Msg("failed to release registration guard")
				}
			}()
		}
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		metrics.AuthOperationsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, domain.Conflict(domain.ErrEmailTaken.Error())
	}

	hash, err := domain.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.AuthOperationsTotal.WithLabelValues("register", "invalid").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := repo.Create(ctx, &domain.Account{
		FullName:  strings.TrimSpace(in.FullName),
		Email:     email,
		Password:  hash,
		Requests:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.AuthOperationsTotal.WithLabelValues("register", "conflict").Inc()
			return nil, domain.Conflict(domain.ErrEmailTaken.Error())
		}
		metrics.AuthOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("create account: %w", err)
	}

	account, err := repo.FindByID(ctx, created.ID, domain.FieldPassword)
	if err != nil || account == nil {
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Error().Err(err).Str("account_id", created.ID).Msg("failed to read back account")
		}
		metrics.AuthOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, domain.Persistence(s.kind.Label() + " registration failed")
	}

	metrics.AuthOperationsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info().Str("account_id", account.ID).Str("kind", string(s.kind)).Msg("account registered")
	return account.Without(domain.FieldPassword), nil
}

// Login verifies credentials and opens a new session, replacing any prior one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.Validation("Email and password are required.")
	}
	repo, err := s.accounts.For(s.kind)
	if err != nil {
		return nil, err
	}

	account, err := repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.AuthOperationsTotal.WithLabelValues("login", "not_found").Inc()
			return nil, domain.NotFound(s.kind.Label() + " does not exist. Please register.")
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !account.VerifyPassword(password) {
		metrics.AuthOperationsTotal.WithLabelValues("login", "bad_credentials").Inc()
		return nil, domain.Authentication("Invalid email or password")
	}

	pair, err := s.tokens.IssueTokenPair(ctx, account.ID, s.kind)
	if err != nil {
		return nil, err
	}

	loggedIn, err := repo.FindByID(ctx, account.ID, domain.FieldPassword, domain.FieldRefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.Persistence("Login failed")
		}
		return nil, fmt.Errorf("reload account: %w", err)
	}

	metrics.AuthOperationsTotal.WithLabelValues("login", "success").Inc()
	s.logger.Info().Str("account_id", account.ID).Str("kind", string(s.kind)).Msg("logged in")
	return &ports.LoginResult{
		Account: loggedIn.Without(domain.FieldPassword, domain.FieldRefreshToken),
		Tokens:  *pair,
	}, nil
}

// Logout clears the stored refresh token and revokes the presented access token.
func (s *AuthService) Logout(ctx context.Context, id ports.Identity) error {
	repo, err := s.accounts.For(id.Kind)
	if err != nil {
		return err
	}

	if _, err := repo.UpdateRefreshToken(ctx, id.AccountID, ""); err != nil {
		// The account vanished; there is no session left to end.
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("clear refresh token: %w", err)
		}
	}

	if s.revoker != nil && id.TokenID != "" {
		if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
			s.logger.Warn().Err(err).Str("account_id", id.AccountID).Msg("failed to revoke access token")
		}
	}

	metrics.AuthOperationsTotal.WithLabelValues("logout", "success").Inc()
	s.logger.Info().Str("account_id", id.AccountID).Msg("logged out")
	return nil
}

// Refresh exchanges the account's current refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, kind domain.AccountKind, refreshToken string) (*ports.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.Unauthorized("Unauthorized request")
	}
	repo, err := s.accounts.For(kind)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		metrics.AuthOperationsTotal.WithLabelValues("refresh", "invalid").Inc()
		return nil, err
	}

	account, err := repo.FindByID(ctx, claims.Subject, domain.FieldPassword)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.Unauthorized("Invalid refresh token")
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account.RefreshToken == "" || account.RefreshToken != refreshToken {
		metrics.AuthOperationsTotal.WithLabelValues("refresh", "stale").Inc()
		return nil, domain.Unauthorized("Refresh token is expired or used")
	}

	pair, err := s.tokens.IssueTokenPair(ctx, account.ID, kind)
	if err != nil {
		return nil, err
	}
	metrics.AuthOperationsTotal.WithLabelValues("refresh", "success").Inc()
	return pair, nil
}

func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	for kind, repo := range s.accounts {
		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return false, fmt.Errorf("lookup %s email: %w", kind, err)
		}
	}
	return false, nil
}
