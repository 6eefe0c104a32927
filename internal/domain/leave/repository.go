package leave

import (
	"context"
)

// LeaveRecordRepository - interface for leave_records table
type LeaveRecordRepository interface {
	Create(ctx context.Context, employeeID int64, year int, daysAllocated int) (LeaveRecord, error)
	GetByID(ctx context.Context, id int64) (LeaveRecord, error)
	GetByEmployeeAndYear(ctx context.Context, employeeID int64, year int) (LeaveRecord, error)
	// LockByID loads the record and holds its write lock until the enclosing
	// transaction ends.
	LockByID(ctx context.Context, id int64) (LeaveRecord, error)
	UpdateAllocation(ctx context.Context, id int64, daysAllocated int) (LeaveRecord, error)
	UpdateBalance(ctx context.Context, id int64, balance Balance) error
	ListByYear(ctx context.Context, year int, excludingEmployeeIDs map[int64]struct{}) ([]LeaveRecord, error)
}

// TrancheRepository - interface for tranches table
type TrancheRepository interface {
	Create(ctx context.Context, leaveRecordID int64, input TrancheInput) (Tranche, error)
	GetByID(ctx context.Context, id int64) (Tranche, error)
	ListByLeaveRecord(ctx context.Context, leaveRecordID int64) ([]Tranche, error)
	CountByLeaveRecord(ctx context.Context, leaveRecordID int64) (int, error)
	Update(ctx context.Context, id int64, input TrancheInput) (Tranche, error)
	Delete(ctx context.Context, id int64) error
}

// Transactor runs fn as one unit of work. Repositories called with the ctx
// passed to fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
