package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

type leaveRecordRepository struct {
	s *Store
}

func NewLeaveRecordRepository(s *Store) leave.LeaveRecordRepository {
	return &leaveRecordRepository{s: s}
}

func (r *leaveRecordRepository) Create(ctx context.Context, employeeID int64, year int, daysAllocated int) (leave.LeaveRecord, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure("leave_record.create"); err != nil {
		return leave.LeaveRecord{}, err
	}

	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && rec.Year == year {
			return leave.LeaveRecord{}, leave.ErrLeaveRecordExists
		}
	}

	r.s.nextRecordID++
	now := r.s.now()
	rec := leave.LeaveRecord{
		ID:            r.s.nextRecordID,
		EmployeeID:    employeeID,
		Year:          year,
		DaysAllocated: daysAllocated,
		DaysRemaining: daysAllocated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.records[rec.ID] = rec
	return rec, nil
}

func (r *leaveRecordRepository) GetByID(ctx context.Context, id int64) (leave.LeaveRecord, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure("leave_record.get"); err != nil {
		return leave.LeaveRecord{}, err
	}

	rec, ok := r.s.records[id]
	if !ok {
		return leave.LeaveRecord{}, leave.ErrLeaveRecordNotFound
	}
	return rec, nil
}

func (r *leaveRecordRepository) GetByEmployeeAndYear(ctx context.Context, employeeID int64, year int) (leave.LeaveRecord, error) {
	defer r.s.lock(ctx)()

	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && rec.Year == year {
			return rec, nil
		}
	}
	return leave.LeaveRecord{}, leave.ErrLeaveRecordNotFound
}

// LockByID is GetByID: a transaction already holds the store mutex.
func (r *leaveRecordRepository) LockByID(ctx context.Context, id int64) (leave.LeaveRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRecordRepository) UpdateAllocation(ctx context.Context, id int64, daysAllocated int) (leave.LeaveRecord, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure("leave_record.update_allocation"); err != nil {
		return leave.LeaveRecord{}, err
	}

	rec, ok := r.s.records[id]
	if !ok {
		return leave.LeaveRecord{}, leave.ErrLeaveRecordNotFound
	}
	rec.DaysAllocated = daysAllocated
	rec.UpdatedAt = r.s.now()
	r.s.records[id] = rec
	return rec, nil
}

func (r *leaveRecordRepository) UpdateBalance(ctx context.Context, id int64, balance leave.Balance) error {
	defer r.s.lock(ctx)()
	if err := r.s.failure("leave_record.update_balance"); err != nil {
		return err
	}

	rec, ok := r.s.records[id]
	if !ok {
		return leave.ErrLeaveRecordNotFound
	}
	rec.DaysConsumed = balance.DaysConsumed
	rec.DaysRemaining = balance.DaysRemaining
	rec.UpdatedAt = r.s.now()
	r.s.records[id] = rec
	return nil
}

func (r *leaveRecordRepository) ListByYear(ctx context.Context, year int, excludingEmployeeIDs map[int64]struct{}) ([]leave.LeaveRecord, error) {
	defer r.s.lock(ctx)()

	records := make([]leave.LeaveRecord, 0)
	for _, rec := range r.s.records {
		if rec.Year != year {
			continue
		}
		if _, excluded := excludingEmployeeIDs[rec.EmployeeID]; excluded {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })
	return records, nil
}
