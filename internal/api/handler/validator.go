package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

const minPasswordLength = 8

// fieldMessages holds the user-facing message per "<jsonField>.<tag>".
var fieldMessages = map[string]string{
	"fullName.required":       "Full name is required",
	"email.required":          "Email is required",
	"email.email":             "Invalid email address",
	"password.required":       "Password is required",
	"password.strongpassword": "Password must be at least 8 characters long, contain at least one uppercase letter, one number, and one special character",
	"budget.gte":              "Budget must be a non-negative number",
	"attachments.required":    "Attachments must not contain empty entries",
	"filename.required":       "Filename is required",
	"contentType.required":    "Content type is required",
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Only the first failing
// field is reported, in struct declaration order.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return domain.Validation(fieldError(ve[0]))
	}
	return domain.Validation("Invalid request payload")
}

func fieldError(fe validator.FieldError) string {
	// slice elements are reported as "attachments[1]"
	field, _, _ := strings.Cut(fe.Field(), "[")
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
}

// strongPassword requires a minimum length plus an uppercase letter, a digit
// and a symbol, within the bcrypt input limit. Lowercase letters are not required.
func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	// bcrypt limits by bytes, not runes
	if utf8.RuneCountInString(s) < minPasswordLength || len(s) > domain.MaxPasswordBytes {
		return false
	}

	var upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}
	return upper && digit && symbol
}
