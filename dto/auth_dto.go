package dto

import "strings"

// LoginDTO has no password length floor so the minimum-length policy is
// not revealed to callers probing existing accounts.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d *LoginDTO) Validate() error {
	d.Email = strings.TrimSpace(d.Email)
	return checkStruct(d).OrNil()
}

type RegisterUserDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN user admin"`
}

func (d *RegisterUserDTO) Validate() error {
	d.Email = strings.TrimSpace(d.Email)
	d.Role = strings.TrimSpace(d.Role)
	return checkStruct(d).OrNil()
}

type ChangeMyPasswordDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

func (d *ChangeMyPasswordDTO) Validate() error {
	return checkStruct(d).OrNil()
}

type UpdateRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN user admin"`
}

func (d *UpdateRoleDTO) Validate() error {
	d.Role = strings.TrimSpace(d.Role)
	return checkStruct(d).OrNil()
}
