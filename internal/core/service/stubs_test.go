package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub account repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Account
	seq       int
	createErr error
	appendErr error
	// dropAfterCreate simulates a store that accepts the insert but cannot
	// read the record back.
	dropAfterCreate bool
	refreshWrites   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	return a.Without()
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string, omit ...domain.AccountField) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a.Without(omit...), nil
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := cloneAccount(a)
	clone.ID = "acc-" + strconv.Itoa(r.seq)
	if !r.dropAfterCreate {
		r.byID[clone.ID] = clone
	}
	return cloneAccount(clone), nil
}

func (r *stubAccountRepo) UpdateRefreshToken(_ context.Context, id, token string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	r.refreshWrites++
	a.RefreshToken = token
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) AppendRequest(_ context.Context, accountID, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	a, ok := r.byID[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	for _, id := range a.Requests {
		if id == requestID {
			return nil
		}
	}
	a.Requests = append(a.Requests, requestID)
	return nil
}

func (r *stubAccountRepo) put(a *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = cloneAccount(a)
}

func (r *stubAccountRepo) get(id string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.byID[id])
}

// ---------------------------------------------------------------------------
// In-memory stub request repository
// ---------------------------------------------------------------------------

type stubRequestRepo struct {
	byID      map[string]*domain.Request
	seq       int
	createErr error
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[string]*domain.Request)}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.Request) (*domain.Request, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *req
	clone.ID = "req-" + strconv.Itoa(r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

// Replace mirrors the full-replace semantics of the real store.
func (r *stubRequestRepo) Replace(_ context.Context, id, clientID string, fields domain.RequestFields) (*domain.Request, error) {
	req, ok := r.byID[id]
	if !ok || req.ClientID != clientID {
		return nil, domain.ErrRequestNotFound
	}
	req.RequestFields = fields
	out := *req
	return &out, nil
}

func (r *stubRequestRepo) ListByClient(_ context.Context, clientID string) ([]*domain.Request, error) {
	var out []*domain.Request
	for _, req := range r.byID {
		if req.ClientID == clientID {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// Misc stubs
// ---------------------------------------------------------------------------

type stubQueue struct {
	jobs   []ports.BackrefJob
	reject bool
}

func (q *stubQueue) Enqueue(job ports.BackrefJob) bool {
	if q.reject {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

type stubGuard struct {
	held       map[string]bool
	acquireErr error
	released   []string
}

func newStubGuard() *stubGuard { return &stubGuard{held: map[string]bool{}} }

func (g *stubGuard) Acquire(_ context.Context, email string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	if g.held[email] {
		return false, nil
	}
	g.held[email] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, email string) error {
	delete(g.held, email)
	g.released = append(g.released, email)
	return nil
}

type stubRevoker struct {
	revoked map[string]time.Time
}

func newStubRevoker() *stubRevoker { return &stubRevoker{revoked: map[string]time.Time{}} }

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.revoked[tokenID] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

var errStore = errors.New("store unavailable")
