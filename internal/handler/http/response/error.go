package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var overlap *leave.OverlapError

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, "Manager or owner access required")
	case errors.Is(err, auth.ErrRateLimited):
		TooManyRequests(w, "Too many requests")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRecordNotFound):
		NotFound(w, "Leave record not found")
	case errors.Is(err, leave.ErrTrancheNotFound):
		NotFound(w, "Tranche not found")
	case errors.As(err, &overlap):
		writeJSON(w, http.StatusConflict, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "TRANCHE_OVERLAP",
				Message: "Tranche overlaps an existing tranche",
				Details: map[string]string{"conflicting_tranche_id": formatID(overlap.ConflictingTrancheID)},
			},
		})
	case errors.Is(err, leave.ErrTrancheLimitExceeded):
		Conflict(w, "Leave record already holds the maximum number of tranches")
	case errors.Is(err, leave.ErrLeaveRecordExists):
		Conflict(w, "Leave record already exists for this employee and year")
	case leave.IsValidation(err):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrStorage):
		slog.Error("Storage failure", "error", err)
		InternalServerError(w, "An unexpected error occurred")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
