package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskbridge/marketplace-api/internal/api/metrics"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// Context keys populated by Auth.
const (
	ContextAccountID      = "account_id"
	ContextAccountKind    = "account_kind"
	ContextTokenID        = "token_id"
	ContextTokenExpiresAt = "token_expires_at"
)

// AccessTokenCookie is the cookie the access token is delivered in.
const AccessTokenCookie = "accessToken"

// AccessVerifier parses and validates access tokens.
type AccessVerifier interface {
	ParseAccess(token string) (*ports.AccessClaims, error)
}

// Auth validates the access token taken from the accessToken cookie or the
// Authorization header, rejects revoked tokens and injects the caller
// identity into the context. revoked may be nil.
func Auth(tokens AccessVerifier, revoked ports.SessionRevoker, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				return domain.Unauthorized("Unauthorized request")
			}

			claims, err := tokens.ParseAccess(raw)
			if err != nil {
				return err
			}

			if revoked != nil && claims.ID != "" {
				isRevoked, err := revoked.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					log.Error().Err(err).Str("token_id", claims.ID).Msg("revocation lookup failed")
					return domain.Unavailable("Session store unavailable")
				}
				if isRevoked {
					metrics.RevokedTokenRejectionsTotal.Inc()
					return domain.Unauthorized("Token has been revoked")
				}
			}

			var expiresAt time.Time
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}

			c.Set(ContextAccountID, claims.Subject)
			c.Set(ContextAccountKind, claims.Kind)
			c.Set(ContextTokenID, claims.ID)
			c.Set(ContextTokenExpiresAt, expiresAt)

			return next(c)
		}
	}
}

// IdentityFrom returns the identity injected by Auth.
func IdentityFrom(c echo.Context) (ports.Identity, bool) {
	id, _ := c.Get(ContextAccountID).(string)
	kind, _ := c.Get(ContextAccountKind).(domain.AccountKind)
	if id == "" || kind == "" {
		return ports.Identity{}, false
	}
	tokenID, _ := c.Get(ContextTokenID).(string)
	expiresAt, _ := c.Get(ContextTokenExpiresAt).(time.Time)
	return ports.Identity{AccountID: id, Kind: kind, TokenID: tokenID, ExpiresAt: expiresAt}, true
}

func tokenFrom(r *http.Request) string {
	if ck, err := r.Cookie(AccessTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
