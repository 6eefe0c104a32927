package leave

import (
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

// ComputeBalance derives consumption from the full tranche list. The result
// is never patched incrementally; callers recompute after every mutation.
// A negative DaysRemaining is an overdraft and is returned as is.
func ComputeBalance(record leave.LeaveRecord, tranches []leave.Tranche) leave.Balance {
	consumed := 0
	for _, t := range tranches {
		consumed += t.Days()
	}
	return leave.Balance{
		DaysConsumed:  consumed,
		DaysRemaining: record.DaysAllocated - consumed,
	}
}
