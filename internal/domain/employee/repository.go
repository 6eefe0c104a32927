package employee

import "context"

// Directory exposes employee identity to other modules.
type Directory interface {
	// ListActive returns every employee currently employed.
	ListActive(ctx context.Context) ([]EmployeeRef, error)
	// ListDepartedIDs returns the IDs of employees flagged as departed.
	ListDepartedIDs(ctx context.Context) ([]int64, error)
}
