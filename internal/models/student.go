package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	InstituteID uuid.UUID  `json:"institute_id" db:"institute_id"`
	StudentCode string     `json:"student_code" db:"student_code"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender      string     `json:"gender" db:"gender"`
	Phone       string     `json:"phone" db:"phone"`
	Email       string     `json:"email" db:"email"`
	Address     string     `json:"address" db:"address"`
	ParentName  string     `json:"parent_name" db:"parent_name"`
	ParentPhone string     `json:"parent_phone" db:"parent_phone"`
	ParentEmail string     `json:"parent_email" db:"parent_email"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
