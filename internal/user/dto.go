package user

import (
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
)

// UpdateProfileDTO carries PATCH /users/me. Omitted fields are left unchanged.
type UpdateProfileDTO struct {
	Name     *string `json:"name,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

func (d *UpdateProfileDTO) Normalize() {
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		d.Name = &name
	}
	if d.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*d.Currency))
		d.Currency = &currency
	}
}

func (d UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(100)
	}
	if d.Currency != nil {
		v.Field("currency", d.Currency).Required().MinLength(3).MaxLength(3)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
