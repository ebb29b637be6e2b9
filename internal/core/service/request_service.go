package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskbridge/marketplace-api/internal/api/metrics"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

type RequestService struct {
	requests ports.RequestRepository
	clients  ports.AccountRepository
	backrefs ports.BackrefQueue
	logger   zerolog.Logger
}

func NewRequestService(
	requests ports.RequestRepository,
	clients ports.AccountRepository,
	backrefs ports.BackrefQueue,
	logger zerolog.Logger,
) *RequestService {
	return &RequestService{requests: requests, clients: clients, backrefs: backrefs, logger: logger}
}

// Create stores a new unassigned request and indexes it on the owning client.
// The two writes are independent; a failed index append is handed to the
// back-reference queue instead of failing the call.
func (s *RequestService) Create(ctx context.Context, clientID string, fields domain.RequestFields) (*domain.Request, error) {
	now := time.Now().UTC()
	created, err := s.requests.Create(ctx, &domain.Request{
		ClientID:      clientID,
		VendorID:      nil,
		RequestFields: fields,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil || created == nil {
		if err != nil {
			s.logger.Error().Err(err).Str("client_id", clientID).Msg("failed to create request")
		}
		metrics.RequestWritesTotal.WithLabelValues("create", "error").Inc()
		return nil, domain.Persistence("Request creation failed")
	}

	if err := s.clients.AppendRequest(ctx, clientID, created.ID); err != nil {
		s.logger.Warn().Err(err).
			Str("client_id", clientID).
			Str("request_id", created.ID).
			Msg("failed to index request on client, queueing repair")
		if s.backrefs == nil || !s.backrefs.Enqueue(ports.BackrefJob{ClientID: clientID, RequestID: created.ID}) {
			s.logger.Error().
				Str("client_id", clientID).
				Str("request_id", created.ID).
				Msg("request left unindexed on client")
		}
	}

	metrics.RequestWritesTotal.WithLabelValues("create", "success").Inc()
	s.logger.Info().Str("request_id", created.ID).Str("client_id", clientID).Msg("request created")
	return created, nil
}

// Update replaces the mutable fields of one of the client's requests. Fields
// left zero in the input are removed from the stored record.
func (s *RequestService) Update(ctx context.Context, clientID, requestID string, fields domain.RequestFields) (*domain.Request, error) {
	updated, err := s.requests.Replace(ctx, requestID, clientID, fields)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		if !errors.Is(err, domain.ErrRequestNotFound) {
			s.logger.Error().Err(err).Str("request_id", requestID).Msg("failed to update request")
		}
		metrics.RequestWritesTotal.WithLabelValues("update", "error").Inc()
		return nil, domain.Persistence("Request updation failed")
	}

	metrics.RequestWritesTotal.WithLabelValues("update", "success").Inc()
	s.logger.Info().Str("request_id", requestID).Str("client_id", clientID).Msg("request updated")
	return updated, nil
}

// ListForClient returns the client's requests, newest first.
func (s *RequestService) ListForClient(ctx context.Context, clientID string) ([]*domain.Request, error) {
	items, err := s.requests.ListByClient(ctx, clientID)
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", clientID).Msg("failed to list requests")
		return nil, err
	}
	return items, nil
}
