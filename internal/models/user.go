package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is the single role a directory record carries.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleCoachingAdmin Role = "coaching_admin"
	RoleStudent       Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCoachingAdmin, RoleStudent:
		return true
	}
	return false
}

// User is the directory record mapping an identity to its role,
// institute binding and active flag.
type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Role        Role       `json:"role" db:"role"`
	InstituteID *uuid.UUID `json:"institute_id" db:"institute_id"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

var (
	ErrInvalidRole           = errors.New("invalid role")
	ErrSuperAdminHasTenant   = errors.New("super_admin must not be bound to an institute")
	ErrTenantBindingRequired = errors.New("coaching_admin and student must be bound to an institute")
)

// Validate enforces the role/institute binding rule:
// super_admin records carry no institute, everyone else must carry one.
func (u *User) Validate() error {
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if u.Role == RoleSuperAdmin {
		if u.InstituteID != nil {
			return ErrSuperAdminHasTenant
		}
		return nil
	}
	if u.InstituteID == nil || *u.InstituteID == uuid.Nil {
		return ErrTenantBindingRequired
	}
	return nil
}
