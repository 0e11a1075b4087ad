package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FeePending = "pending"
	FeePaid    = "paid"
	FeeOverdue = "overdue"
)

type FeePayment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	StudentID     uuid.UUID  `json:"student_id" db:"student_id"`
	BatchID       uuid.UUID  `json:"batch_id" db:"batch_id"`
	InstituteID   uuid.UUID  `json:"institute_id" db:"institute_id"`
	Amount        float64    `json:"amount" db:"amount"`
	Status        string     `json:"status" db:"status"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	PaidAt        *time.Time `json:"paid_at" db:"paid_at"`
	PaymentMethod *string    `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// FeeSummary aggregates a student's fee position.
type FeeSummary struct {
	Total   float64 `json:"total"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
	Overdue float64 `json:"overdue"`
}

func ValidFeeStatus(status string) bool {
	switch status {
	case FeePending, FeePaid, FeeOverdue:
		return true
	}
	return false
}
