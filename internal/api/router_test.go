package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/taskbridge/marketplace-api/internal/api/handler"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
	"github.com/taskbridge/marketplace-api/internal/core/service"
)

type nopAuth struct{}

func (nopAuth) Register(context.Context, ports.RegisterInput) (*domain.Account, error) {
	return &domain.Account{ID: "c1"}, nil
}

func (nopAuth) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return nil, domain.NotFound("Client does not exist. Please register.")
}

func (nopAuth) Logout(context.Context, ports.Identity) error { return nil }

func (nopAuth) Refresh(context.Context, domain.AccountKind, string) (*ports.TokenPair, error) {
	return nil, domain.Unauthorized("Unauthorized request")
}

type nopRequests struct{}

func (nopRequests) Create(_ context.Context, clientID string, f domain.RequestFields) (*domain.Request, error) {
	return &domain.Request{ID: "r1", ClientID: clientID, RequestFields: f}, nil
}

func (nopRequests) Update(context.Context, string, string, domain.RequestFields) (*domain.Request, error) {
	return nil, domain.Validation("Invalid request id")
}

func (nopRequests) ListForClient(context.Context, string) ([]*domain.Request, error) { return nil, nil }

func newTestRouter() (*service.TokenService, http.Handler) {
	tokens := service.NewTokenService(nil, service.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "marketplace-test",
	})
	e := NewRouter(Dependencies{
		Logger:   zerolog.Nop(),
		Auth:     nopAuth{},
		Requests: nopRequests{},
		Tokens:   tokens,
		Cookies:  handler.CookieOptions{HTTPOnly: true, Path: "/"},
		Checks:   map[string]func(context.Context) error{"noop": func(context.Context) error { return nil }},
		Registry: prometheus.NewRegistry(),
	})
	return tokens, e
}

func serve(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestRouter_RegisterValidationRendersEnvelope(t *testing.T) {
	_, h := newTestRouter()

	rec := serve(h, http.MethodPost, "/register", `{"data":{"fullName":"Ada","email":"ada@example.com","password":"password"}}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := envelope(t, rec)
	if body["success"] != false || !strings.HasPrefix(body["message"].(string), "Password must be") {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRouter_LoginUnknownEmailIs404(t *testing.T) {
	_, h := newTestRouter()

	rec := serve(h, http.MethodPost, "/login", `{"data":{"email":"x@example.com","password":"Passw0rd!"}}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	_, h := newTestRouter()

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/logout"},
		{http.MethodPost, "/requests"},
		{http.MethodGet, "/requests"},
		{http.MethodPatch, "/requests/abc"},
		{http.MethodPost, "/requests/attachments"},
	} {
		rec := serve(h, r.method, r.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", r.method, r.path, rec.Code)
		}
	}
}

func TestRouter_VendorTokenForbidden(t *testing.T) {
	tokens, h := newTestRouter()
	access := signTestAccess(t, tokens, domain.KindVendor)

	rec := serve(h, http.MethodGet, "/requests", "", map[string]string{"Authorization": "Bearer " + access})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_CreateRequestWithClientToken(t *testing.T) {
	tokens, h := newTestRouter()
	access := signTestAccess(t, tokens, domain.KindClient)

	rec := serve(h, http.MethodPost, "/requests", `{"requestTitle":"Paint fence"}`, map[string]string{"Authorization": "Bearer " + access})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := envelope(t, rec)["data"].(map[string]any)
	if data["clientId"] != "client-1" {
		t.Fatalf("request not scoped to caller: %+v", data)
	}
}

func TestRouter_AttachmentsDisabled(t *testing.T) {
	tokens, h := newTestRouter()
	access := signTestAccess(t, tokens, domain.KindClient)

	rec := serve(h, http.MethodPost, "/requests/attachments", `{"filename":"a.png","contentType":"image/png"}`,
		map[string]string{"Authorization": "Bearer " + access})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	_, h := newTestRouter()

	rec := serve(h, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || envelope(t, rec)["success"] != false {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	_, h := newTestRouter()

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := serve(h, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

// signTestAccess mints an access token the router's verifier accepts.
func signTestAccess(t *testing.T, tokens *service.TokenService, kind domain.AccountKind) string {
	t.Helper()
	repo := &memAccounts{}
	issuer := service.NewTokenService(ports.AccountRepositories{kind: repo}, service.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		Issuer:        "marketplace-test",
	})
	pair, err := issuer.IssueTokenPair(context.Background(), "client-1", kind)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if _, err := tokens.ParseAccess(pair.AccessToken); err != nil {
		t.Fatalf("router verifier rejects token: %v", err)
	}
	return pair.AccessToken
}

// memAccounts accepts the refresh-token write IssueTokenPair performs.
type memAccounts struct{ ports.AccountRepository }

func (m *memAccounts) UpdateRefreshToken(_ context.Context, id, token string) (*domain.Account, error) {
	return &domain.Account{ID: id, RefreshToken: token}, nil
}
