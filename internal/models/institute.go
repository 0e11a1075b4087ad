package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses an institute can be in.
const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionExpired   = "expired"
)

// Institute is the tenant boundary. Every student, batch, attendance and
// fee row belongs to exactly one institute.
type Institute struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	Email                 string     `json:"email" db:"email"`
	Phone                 string     `json:"phone" db:"phone"`
	Address               string     `json:"address" db:"address"`
	SubscriptionStatus    string     `json:"subscription_status" db:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at" db:"subscription_expires_at"`
	MaxStudents           int        `json:"max_students" db:"max_students"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// AcceptsWrites reports whether members of the institute may mutate
// tenant-owned data. Suspended and expired institutes are read-only.
func (i *Institute) AcceptsWrites() bool {
	return i.SubscriptionStatus == SubscriptionTrial || i.SubscriptionStatus == SubscriptionActive
}

// SubscriptionLapsed reports whether a trial or active subscription has
// passed its expiry date. Institutes without an expiry never lapse.
func (i *Institute) SubscriptionLapsed(now time.Time) bool {
	if !i.AcceptsWrites() || i.SubscriptionExpiresAt == nil {
		return false
	}
	return i.SubscriptionExpiresAt.Before(now)
}

// ValidSubscriptionStatus reports whether s is a known subscription status.
func ValidSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionTrial, SubscriptionActive, SubscriptionSuspended, SubscriptionExpired:
		return true
	}
	return false
}
