package models

import (
	"time"

	"github.com/google/uuid"
)

type Batch struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	InstituteID uuid.UUID  `json:"institute_id" db:"institute_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Subjects    []string   `json:"subjects" db:"subjects"`
	MonthlyFee  float64    `json:"monthly_fee" db:"monthly_fee"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date" db:"end_date"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Enrollment links a student to a batch within the same institute.
type Enrollment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StudentID   uuid.UUID `json:"student_id" db:"student_id"`
	BatchID     uuid.UUID `json:"batch_id" db:"batch_id"`
	InstituteID uuid.UUID `json:"institute_id" db:"institute_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
