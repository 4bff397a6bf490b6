package auth

import (
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
)

const minPasswordLength = 8

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Currency string `json:"currency,omitempty"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d *RegisterDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Name = strings.TrimSpace(d.Name)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("password", d.Password).Required().Custom(func(value interface{}) *internal.AppError {
		if len(d.Password) < minPasswordLength {
			return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeInvalidPassword)
		}
		return nil
	})
	v.Field("currency", d.Currency).MinLength(3).MaxLength(3)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
