package handler

import (
	"strings"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

type registerData struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type registerRequest struct {
	Data *registerData `json:"data"`
}

// normalize trims every field except the password.
func (d *registerData) normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
}

func (d *registerData) toInput() ports.RegisterInput {
	return ports.RegisterInput{FullName: d.FullName, Email: d.Email, Password: d.Password}
}

type loginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Data *loginData `json:"data"`
}

type refreshData struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	Data *refreshData `json:"data"`
}

type loginResponse struct {
	Client       *domain.Account `json:"client"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
