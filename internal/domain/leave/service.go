package leave

import (
	"context"
)

type LeaveService interface {
	// Tranche
	AddTranche(ctx context.Context, leaveRecordID int64, input TrancheInput) (RecordWithBalance, error)
	UpdateTranche(ctx context.Context, trancheID int64, input TrancheInput) (RecordWithBalance, error)
	DeleteTranche(ctx context.Context, trancheID int64) (RecordWithBalance, error)
	// Record
	AdjustAllocation(ctx context.Context, leaveRecordID int64, daysAllocated int) (RecordWithBalance, error)
	GetRecordWithBalance(ctx context.Context, leaveRecordID int64) (RecordWithBalance, error)
	GetRecordByEmployeeAndYear(ctx context.Context, employeeID int64, year int) (RecordWithBalance, error)
	ListRecordsByYear(ctx context.Context, year int) ([]LeaveRecord, error)
	// Provisioning
	ProvisionYear(ctx context.Context, year int) (ProvisionResult, error)
}
