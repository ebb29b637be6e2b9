package ports

import (
	"context"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// RequestRepository persists Request entities.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.Request) (*domain.Request, error)
	// Replace overwrites the mutable field group of the request identified by
	// id and owned by clientID, returning the stored result.
	Replace(ctx context.Context, id, clientID string, fields domain.RequestFields) (*domain.Request, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Request, error)
}
