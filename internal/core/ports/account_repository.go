package ports

import (
	"context"
	"fmt"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// AccountRepository is the credential store for one account kind.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByID loads an account; omit lists fields left out of the projection.
	FindByID(ctx context.Context, id string, omit ...domain.AccountField) (*domain.Account, error)
	// Create persists an account whose Password already holds a hash.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// UpdateRefreshToken stores token on the account; an empty token clears it.
	UpdateRefreshToken(ctx context.Context, id, token string) (*domain.Account, error)
	// AppendRequest adds requestID to the account's requests list. Idempotent.
	AppendRequest(ctx context.Context, accountID, requestID string) error
}

// AccountRepositories resolves the store that holds a given account kind.
type AccountRepositories map[domain.AccountKind]AccountRepository

func (r AccountRepositories) For(kind domain.AccountKind) (AccountRepository, error) {
	repo, ok := r[kind]
	if !ok || repo == nil {
		return nil, fmt.Errorf("no account store for kind %q", kind)
	}
	return repo, nil
}
