package leave

import (
	"errors"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

// classify passes domain errors through untouched and wraps anything else
// as a *leave.StorageError tagged with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if leave.IsValidation(err) || leave.IsNotFound(err) ||
		errors.Is(err, leave.ErrTrancheLimitExceeded) ||
		errors.Is(err, leave.ErrLeaveRecordExists) ||
		errors.Is(err, leave.ErrStorage) {
		return err
	}
	return &leave.StorageError{Op: op, Err: err}
}

// outcome names the metrics label of an operation result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "done"
	case leave.IsNotFound(err):
		return "not_found"
	case errors.Is(err, leave.ErrStorage):
		return "error"
	default:
		return "rejected"
	}
}
