package category

import (
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

func (d *CreateCategoryDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Emoji = strings.TrimSpace(d.Emoji)
}

func (d CreateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(50)
	v.Field("emoji", d.Emoji).MaxLength(16)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateCategoryDTO struct {
	Name  *string `json:"name,omitempty"`
	Emoji *string `json:"emoji,omitempty"`
}

func (d *UpdateCategoryDTO) Normalize() {
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		d.Name = &name
	}
	if d.Emoji != nil {
		emoji := strings.TrimSpace(*d.Emoji)
		d.Emoji = &emoji
	}
}

func (d UpdateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(50)
	}
	v.Field("emoji", d.Emoji).MaxLength(16)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type UsageResponse struct {
	CategoryID string `json:"category_id"`
	Usage
	Total int64 `json:"total"`
}
