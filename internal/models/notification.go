package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	InstituteID *uuid.UUID `json:"institute_id" db:"institute_id"`
	UserID      *uuid.UUID `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Message     string     `json:"message" db:"message"`
	IsSent      bool       `json:"is_sent" db:"is_sent"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
