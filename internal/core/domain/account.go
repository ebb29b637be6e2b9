package domain

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AccountKind distinguishes the collections that hold accounts.
type AccountKind string

const (
	KindClient AccountKind = "client"
	KindVendor AccountKind = "vendor"
)

// Label is the human-facing name used in response messages.
func (k AccountKind) Label() string {
	switch k {
	case KindVendor:
		return "Vendor"
	default:
		return "Client"
	}
}

// AccountField names a field that reads may omit from the returned projection.
type AccountField string

const (
	FieldPassword     AccountField = "password"
	FieldRefreshToken AccountField = "refreshToken"
)

// Account is a client or vendor record. Password always holds a bcrypt hash.
type Account struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Password     string    `json:"password,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Requests     []string  `json:"requests"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Without returns a copy of a with the given fields cleared.
func (a *Account) Without(fields ...AccountField) *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.Requests = append([]string(nil), a.Requests...)
	for _, f := range fields {
		switch f {
		case FieldPassword:
			out.Password = ""
		case FieldRefreshToken:
			out.RefreshToken = ""
		}
	}
	return &out
}

// VerifyPassword reports whether plain matches the stored hash.
func (a *Account) VerifyPassword(plain string) bool {
	if a == nil || a.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(plain)) == nil
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of plain. Inputs longer than
// MaxPasswordBytes are a validation error.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", Validation("Password must not exceed 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}

// NormalizeEmail is the canonical form used for lookups and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
