package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrDirectoryLookup means the directory could not be consulted.
	// Resolution fails closed on it; the caller must not guess a role.
	ErrDirectoryLookup = errors.New("directory lookup failed")

	// ErrAccountDisabled means the identity exists but is deactivated.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrTenantMismatch means a resource was addressed across institute
	// boundaries.
	ErrTenantMismatch = errors.New("resource belongs to another institute")

	ErrInstituteNotFound  = errors.New("institute not found")
	ErrAdminNotFound      = errors.New("coaching admin not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrPaymentNotFound    = errors.New("fee payment not found")
	ErrStudentLimit       = errors.New("institute has reached its student limit")
	ErrSubscriptionClosed = errors.New("institute subscription does not permit writes")
)

// PartialProvisioningFailure reports a student account that was created
// but could not be fully enrolled. The caller should surface it as a
// success with a warning, not roll anything back.
type PartialProvisioningFailure struct {
	StudentID uuid.UUID
	UserID    uuid.UUID
	Step      string
	Err       error
}

func (e *PartialProvisioningFailure) Error() string {
	return fmt.Sprintf("student %s provisioned but %s failed: %v", e.StudentID, e.Step, e.Err)
}

func (e *PartialProvisioningFailure) Unwrap() error {
	return e.Err
}
