package dto

import "strings"

type CreateProductDTO struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

func (d *CreateProductDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = trimPtr(d.Description)
	if d.Description != nil && *d.Description == "" {
		d.Description = nil
	}
	return checkStruct(d).OrNil()
}

// UpdateProductDTO carries optional pointer fields. An empty description
// clears it.
type UpdateProductDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (d *UpdateProductDTO) Validate() error {
	if d.Name == nil && d.Description == nil {
		return NewValidationError("payload", "At least one field must be provided for an update")
	}
	d.Name = trimPtr(d.Name)
	d.Description = trimPtr(d.Description)
	if d.Name != nil && *d.Name == "" {
		return NewValidationError("name", "Cannot be empty")
	}
	return nil
}
