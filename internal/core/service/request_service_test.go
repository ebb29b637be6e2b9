package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

func float(v float64) *float64 { return &v }

func newRequestFixture() (*RequestService, *stubRequestRepo, *stubAccountRepo, *stubQueue) {
	requests := newStubRequestRepo()
	clients := newStubAccountRepo()
	clients.put(&domain.Account{ID: "c1", Email: "c1@example.com"})
	queue := &stubQueue{}
	return NewRequestService(requests, clients, queue, zerolog.Nop()), requests, clients, queue
}

func TestRequestService_Create_IndexesOnClient(t *testing.T) {
	svc, _, clients, queue := newRequestFixture()

	req, err := svc.Create(context.Background(), "c1", domain.RequestFields{Title: "Logo", Category: "design"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.ClientID != "c1" {
		t.Fatalf("expected owner c1, got %q", req.ClientID)
	}
	if req.VendorID != nil {
		t.Fatalf("new requests must be unassigned")
	}

	owner := clients.get("c1")
	if len(owner.Requests) != 1 || owner.Requests[0] != req.ID {
		t.Fatalf("expected request id on client index, got %v", owner.Requests)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("no repair expected on success")
	}
}

func TestRequestService_Create_AppendFailureQueuesRepair(t *testing.T) {
	svc, requests, clients, queue := newRequestFixture()
	clients.appendErr = errStore

	req, err := svc.Create(context.Background(), "c1", domain.RequestFields{Title: "Site"})
	if err != nil {
		t.Fatalf("create must still succeed: %v", err)
	}
	if _, ok := requests.byID[req.ID]; !ok {
		t.Fatalf("request must be persisted")
	}
	if len(queue.jobs) != 1 || queue.jobs[0].RequestID != req.ID || queue.jobs[0].ClientID != "c1" {
		t.Fatalf("expected one repair job, got %+v", queue.jobs)
	}
}

func TestRequestService_Create_QueueFullStillSucceeds(t *testing.T) {
	svc, _, clients, queue := newRequestFixture()
	clients.appendErr = errStore
	queue.reject = true

	if _, err := svc.Create(context.Background(), "c1", domain.RequestFields{}); err != nil {
		t.Fatalf("create must still succeed: %v", err)
	}
}

func TestRequestService_Create_StoreFailure(t *testing.T) {
	svc, requests, _, _ := newRequestFixture()
	requests.createErr = errStore

	_, err := svc.Create(context.Background(), "c1", domain.RequestFields{})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err.Error() != "Request creation failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRequestService_Update_FullReplace(t *testing.T) {
	svc, requests, _, _ := newRequestFixture()
	created, _ := svc.Create(context.Background(), "c1", domain.RequestFields{Budget: float(500), Category: "design"})

	updated, err := svc.Update(context.Background(), "c1", created.ID, domain.RequestFields{Category: "dev"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "dev" {
		t.Fatalf("expected category dev, got %q", updated.Category)
	}
	if updated.Budget != nil {
		t.Fatalf("omitted budget must become absent, got %v", *updated.Budget)
	}
	if requests.byID[created.ID].Budget != nil {
		t.Fatalf("stored budget must be absent")
	}
}

func TestRequestService_Update_NotFound(t *testing.T) {
	svc, _, _, _ := newRequestFixture()

	_, err := svc.Update(context.Background(), "c1", "missing", domain.RequestFields{})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err.Error() != "Request updation failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRequestService_Update_OtherClientsRequest(t *testing.T) {
	svc, _, _, _ := newRequestFixture()
	created, _ := svc.Create(context.Background(), "c1", domain.RequestFields{Title: "Mine"})

	if _, err := svc.Update(context.Background(), "c2", created.ID, domain.RequestFields{}); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error for foreign request, got %v", err)
	}
}

func TestRequestService_Update_InvalidIDPassesThrough(t *testing.T) {
	requests := &invalidIDRepo{stubRequestRepo: newStubRequestRepo()}
	svc := NewRequestService(requests, newStubAccountRepo(), nil, zerolog.Nop())

	if _, err := svc.Update(context.Background(), "c1", "zzz", domain.RequestFields{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestService_ListForClient(t *testing.T) {
	svc, _, _, _ := newRequestFixture()
	_, _ = svc.Create(context.Background(), "c1", domain.RequestFields{Title: "a"})
	_, _ = svc.Create(context.Background(), "c1", domain.RequestFields{Title: "b"})
	_, _ = svc.Create(context.Background(), "c2", domain.RequestFields{Title: "c"})

	items, err := svc.ListForClient(context.Background(), "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(items))
	}
}

type invalidIDRepo struct {
	*stubRequestRepo
}

func (r *invalidIDRepo) Replace(context.Context, string, string, domain.RequestFields) (*domain.Request, error) {
	return nil, domain.Validation("Invalid request id")
}
