package ports

import (
	"context"
	"time"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// RequestService defines use-case operations for client requests.
type RequestService interface {
	Create(ctx context.Context, clientID string, fields domain.RequestFields) (*domain.Request, error)
	Update(ctx context.Context, clientID, requestID string, fields domain.RequestFields) (*domain.Request, error)
	ListForClient(ctx context.Context, clientID string) ([]*domain.Request, error)
}

// BackrefJob asks for RequestID to be appended to the client's requests list.
type BackrefJob struct {
	ClientID  string
	RequestID string
}

// BackrefQueue accepts back-reference appends that failed inline.
type BackrefQueue interface {
	Enqueue(job BackrefJob) bool
}

// UploadTicket lets a client upload an attachment directly to object storage.
type UploadTicket struct {
	Key       string
	URL       string
	Method    string
	ExpiresAt time.Time
}

// AttachmentStore issues upload tickets for request attachments.
type AttachmentStore interface {
	PresignUpload(ctx context.Context, clientID, filename, contentType string) (*UploadTicket, error)
}
