package leave

import (
	"errors"
	"fmt"
)

// Validation errors. Always rejected before anything is written.
var (
	ErrMissingDate           = errors.New("date is required")
	ErrInvalidRange          = errors.New("start date must not be after end date")
	ErrOutOfYear             = errors.New("tranche dates must fall within the leave record year")
	ErrOverlap               = errors.New("tranche overlaps an existing tranche")
	ErrDecisionDateInFuture  = errors.New("decision date must not be in the future")
	ErrInvalidDecisionNumber = errors.New("decision number must be a positive integer")
	ErrNegativeAllocation    = errors.New("days allocated must not be negative")
)

var (
	ErrTrancheLimitExceeded = errors.New("leave record already holds the maximum number of tranches")
	ErrLeaveRecordNotFound  = errors.New("leave record not found")
	ErrTrancheNotFound      = errors.New("tranche not found")
	ErrLeaveRecordExists    = errors.New("leave record already exists for employee and year")
	ErrStorage              = errors.New("storage failure")
)

// OverlapError names the sibling tranche a candidate range collides with.
type OverlapError struct {
	ConflictingTrancheID int64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s (tranche %d)", ErrOverlap.Error(), e.ConflictingTrancheID)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}

// StorageError wraps a persistence failure. It matches both ErrStorage and
// the underlying driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingDate) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrOutOfYear) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrDecisionDateInFuture) ||
		errors.Is(err, ErrInvalidDecisionNumber) ||
		errors.Is(err, ErrNegativeAllocation)
}

// IsNotFound reports whether err refers to a missing record or tranche.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeaveRecordNotFound) || errors.Is(err, ErrTrancheNotFound)
}
