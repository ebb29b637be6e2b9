package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskbridge/marketplace-api/internal/api/middleware"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

const refreshTokenCookie = "refreshToken"

// CookieOptions are the flags applied to both session cookies. The struct is
// passed by value so handlers cannot change it after construction.
type CookieOptions struct {
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string
	Path     string
}

func (o CookieOptions) cookie(name, value string) *http.Cookie {
	path := o.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   o.Domain,
		HttpOnly: o.HTTPOnly,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

func (o CookieOptions) setSession(c echo.Context, pair ports.TokenPair) {
	c.SetCookie(o.cookie(middleware.AccessTokenCookie, pair.AccessToken))
	c.SetCookie(o.cookie(refreshTokenCookie, pair.RefreshToken))
}

func (o CookieOptions) clearSession(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		ck := o.cookie(name, "")
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}
