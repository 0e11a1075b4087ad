package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Attendance is one student's status for one batch on one date.
// Unique per (student_id, batch_id, date).
type Attendance struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StudentID   uuid.UUID `json:"student_id" db:"student_id"`
	BatchID     uuid.UUID `json:"batch_id" db:"batch_id"`
	InstituteID uuid.UUID `json:"institute_id" db:"institute_id"`
	Date        time.Time `json:"date" db:"date"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AttendanceSummary aggregates a student's attendance over a period.
type AttendanceSummary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
}

// Percentage returns the attended share (present + late) in percent.
func (s AttendanceSummary) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present+s.Late) / float64(s.Total) * 100
}

func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}
