package leave

import (
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

// ValidateRange checks a candidate period against the leave record year and
// the ranges of sibling tranches. The range whose ID equals excludeID is
// skipped so that a tranche can be updated in place; pass 0 when creating.
//
// Rules are applied in order and the first failure is returned: both dates
// set, start not after end, both dates inside year, no overlap.
func ValidateRange(candidate leave.DateRange, year int, existing []leave.DateRange, excludeID int64) error {
	if candidate.Start.IsZero() || candidate.End.IsZero() {
		return leave.ErrMissingDate
	}

	start, end := leave.DateOf(candidate.Start), leave.DateOf(candidate.End)
	if start.After(end) {
		return leave.ErrInvalidRange
	}

	if start.Year() != year || end.Year() != year {
		return leave.ErrOutOfYear
	}

	for _, other := range existing {
		if excludeID != 0 && other.ID == excludeID {
			continue
		}
		// Inclusive bounds: sharing a single day is an overlap.
		if !start.After(leave.DateOf(other.End)) && !end.Before(leave.DateOf(other.Start)) {
			return &leave.OverlapError{ConflictingTrancheID: other.ID}
		}
	}

	return nil
}
