package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// AuthHandler serves the client session endpoints.
type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieOptions
}

func NewAuthHandler(authService ports.AuthService, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Register creates a new client account.
//
// @Summary      Register a new client
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Client registration details"
// @Success      201   {object}  apiResponse{data=domain.Account}
// @Failure      400   {object}  api.errorResponse
// @Failure      409   {object}  api.errorResponse
// @Failure      500   {object}  api.errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("Invalid request payload")
	}

	data := req.Data
	if data == nil {
		data = &registerData{}
	}
	data.normalize()
	if err := c.Validate(data); err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), data.toInput())
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, account, "Client registered successfully")
}

// Login authenticates a client and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  apiResponse{data=loginResponse}
// @Failure      400   {object}  api.errorResponse
// @Failure      404   {object}  api.errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("Invalid request payload")
	}

	data := req.Data
	if data == nil {
		data = &loginData{}
	}

	result, err := h.authService.Login(c.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, result.Tokens)
	return respond(c, http.StatusOK, loginResponse{
		Client:       result.Account,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "Logged in successfully.")
}

// Logout ends the caller's session and clears both cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  api.errorResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), id); err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, struct{}{}, "Logged out successfully")
}

// Refresh rotates the token pair using the refresh token from the cookie or body.
//
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  apiResponse{data=tokensResponse}
// @Failure      401   {object}  api.errorResponse
// @Router       /refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var token string
	if ck, err := c.Cookie(refreshTokenCookie); err == nil {
		token = ck.Value
	}
	if token == "" {
		var req refreshRequest
		if err := c.Bind(&req); err != nil {
			return domain.Validation("Invalid request payload")
		}
		if req.Data != nil {
			token = req.Data.RefreshToken
		}
	}

	pair, err := h.authService.Refresh(c.Request().Context(), domain.KindClient, token)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, *pair)
	return respond(c, http.StatusOK, tokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}
