package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/metrics"
)

type LeaveServiceImpl struct {
	tx          leave.Transactor
	records     leave.LeaveRecordRepository
	tranches    *TrancheStore
	directory   employee.Directory
	auditLog    audit.Log
	provisioner *Provisioner
	metrics     *metrics.LeaveMetrics
}

func NewLeaveService(
	tx leave.Transactor,
	recordRepository leave.LeaveRecordRepository,
	trancheRepository leave.TrancheRepository,
	directory employee.Directory,
	auditLog audit.Log,
	provisioner *Provisioner,
	m *metrics.LeaveMetrics,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:          tx,
		records:     recordRepository,
		tranches:    NewTrancheStore(trancheRepository),
		directory:   directory,
		auditLog:    auditLog,
		provisioner: provisioner,
		metrics:     m,
	}
}

// SetClock overrides the clock used to decide whether a decision date lies
// in the future.
func (s *LeaveServiceImpl) SetClock(now func() time.Time) {
	s.tranches.now = now
}

// AddTranche implements leave.LeaveService.
func (s *LeaveServiceImpl) AddTranche(ctx context.Context, leaveRecordID int64, input leave.TrancheInput) (leave.RecordWithBalance, error) {
	started := time.Now()

	var (
		result  leave.RecordWithBalance
		created leave.Tranche
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.records.LockByID(ctx, leaveRecordID)
		if err != nil {
			return classify("lock leave record", err)
		}

		created, err = s.tranches.Create(ctx, record, input)
		if err != nil {
			return err
		}

		result, err = s.recompute(ctx, record)
		return err
	})
	err = classify("add tranche", err)
	s.observe("add_tranche", result, err, started)
	if err != nil {
		slog.Debug("Tranche rejected", "leave_record_id", leaveRecordID, "error", err)
		return leave.RecordWithBalance{}, err
	}

	slog.Info("Tranche added",
		"leave_record_id", leaveRecordID,
		"tranche_id", created.ID,
		"days", created.Days(),
		"days_remaining", result.Balance.DaysRemaining,
	)
	recordAudit(ctx, s.auditLog, audit.EventTrancheCreated,
		fmt.Sprintf("tranche %s to %s (%d days) added under decision %d",
			created.StartDate.Format(time.DateOnly), created.EndDate.Format(time.DateOnly),
			created.Days(), created.DecisionNumber),
		trancheRefs(created),
	)
	return result, nil
}

// UpdateTranche implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateTranche(ctx context.Context, trancheID int64, input leave.TrancheInput) (leave.RecordWithBalance, error) {
	started := time.Now()

	var (
		result            leave.RecordWithBalance
		previous, updated leave.Tranche
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		previous, err = s.tranches.Get(ctx, trancheID)
		if err != nil {
			return err
		}

		record, err := s.records.LockByID(ctx, previous.LeaveRecordID)
		if err != nil {
			return classify("lock leave record", err)
		}

		updated, err = s.tranches.Update(ctx, record, trancheID, input)
		if err != nil {
			return err
		}

		result, err = s.recompute(ctx, record)
		return err
	})
	err = classify("update tranche", err)
	s.observe("update_tranche", result, err, started)
	if err != nil {
		slog.Debug("Tranche update rejected", "tranche_id", trancheID, "error", err)
		return leave.RecordWithBalance{}, err
	}

	slog.Info("Tranche updated",
		"leave_record_id", updated.LeaveRecordID,
		"tranche_id", trancheID,
		"days", updated.Days(),
		"days_remaining", result.Balance.DaysRemaining,
	)
	refs := trancheRefs(updated)
	refs["previous_start_date"] = previous.StartDate.Format(time.DateOnly)
	refs["previous_end_date"] = previous.EndDate.Format(time.DateOnly)
	recordAudit(ctx, s.auditLog, audit.EventTrancheUpdated,
		fmt.Sprintf("tranche %d changed from %s..%s to %s..%s",
			trancheID,
			previous.StartDate.Format(time.DateOnly), previous.EndDate.Format(time.DateOnly),
			updated.StartDate.Format(time.DateOnly), updated.EndDate.Format(time.DateOnly)),
		refs,
	)
	return result, nil
}

// DeleteTranche implements leave.LeaveService.
func (s *LeaveServiceImpl) DeleteTranche(ctx context.Context, trancheID int64) (leave.RecordWithBalance, error) {
	started := time.Now()

	var (
		result  leave.RecordWithBalance
		deleted leave.Tranche
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.tranches.Get(ctx, trancheID)
		if err != nil {
			return err
		}

		record, err := s.records.LockByID(ctx, deleted.LeaveRecordID)
		if err != nil {
			return classify("lock leave record", err)
		}

		if err := s.tranches.Delete(ctx, trancheID); err != nil {
			return err
		}

		result, err = s.recompute(ctx, record)
		return err
	})
	err = classify("delete tranche", err)
	s.observe("delete_tranche", result, err, started)
	if err != nil {
		slog.Debug("Tranche delete rejected", "tranche_id", trancheID, "error", err)
		return leave.RecordWithBalance{}, err
	}

	slog.Info("Tranche deleted",
		"leave_record_id", deleted.LeaveRecordID,
		"tranche_id", trancheID,
		"days_remaining", result.Balance.DaysRemaining,
	)
	recordAudit(ctx, s.auditLog, audit.EventTrancheDeleted,
		fmt.Sprintf("tranche %d (%d days) deleted", trancheID, deleted.Days()),
		trancheRefs(deleted),
	)
	return result, nil
}

// AdjustAllocation implements leave.LeaveService. The new allocation may be
// lower than the days already consumed; the record is then overdrawn.
func (s *LeaveServiceImpl) AdjustAllocation(ctx context.Context, leaveRecordID int64, daysAllocated int) (leave.RecordWithBalance, error) {
	started := time.Now()

	var (
		result        leave.RecordWithBalance
		oldAllocation int
	)
	err := func() error {
		if daysAllocated < 0 {
			return leave.ErrNegativeAllocation
		}
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			record, err := s.records.LockByID(ctx, leaveRecordID)
			if err != nil {
				return classify("lock leave record", err)
			}
			oldAllocation = record.DaysAllocated

			record, err = s.records.UpdateAllocation(ctx, leaveRecordID, daysAllocated)
			if err != nil {
				return classify("update allocation", err)
			}

			result, err = s.recompute(ctx, record)
			return err
		})
	}()
	err = classify("adjust allocation", err)
	s.observe("adjust_allocation", result, err, started)
	if err != nil {
		slog.Debug("Allocation adjustment rejected", "leave_record_id", leaveRecordID, "error", err)
		return leave.RecordWithBalance{}, err
	}

	slog.Info("Allocation adjusted",
		"leave_record_id", leaveRecordID,
		"old_days_allocated", oldAllocation,
		"days_allocated", daysAllocated,
		"days_remaining", result.Balance.DaysRemaining,
	)
	recordAudit(ctx, s.auditLog, audit.EventAllocationAdjusted,
		fmt.Sprintf("allocation changed from %d to %d days", oldAllocation, daysAllocated),
		map[string]any{
			"leave_record_id":    leaveRecordID,
			"employee_id":        result.Record.EmployeeID,
			"year":               result.Record.Year,
			"old_days_allocated": oldAllocation,
			"days_allocated":     daysAllocated,
		},
	)
	return result, nil
}

// GetRecordWithBalance implements leave.LeaveService. The balance is always
// recomputed from the tranches, never read from the cached columns.
func (s *LeaveServiceImpl) GetRecordWithBalance(ctx context.Context, leaveRecordID int64) (leave.RecordWithBalance, error) {
	var result leave.RecordWithBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.records.GetByID(ctx, leaveRecordID)
		if err != nil {
			return classify("get leave record", err)
		}
		result, err = s.load(ctx, record)
		return err
	})
	if err != nil {
		return leave.RecordWithBalance{}, classify("get leave record", err)
	}
	return result, nil
}

// GetRecordByEmployeeAndYear implements leave.LeaveService.
func (s *LeaveServiceImpl) GetRecordByEmployeeAndYear(ctx context.Context, employeeID int64, year int) (leave.RecordWithBalance, error) {
	var result leave.RecordWithBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.records.GetByEmployeeAndYear(ctx, employeeID, year)
		if err != nil {
			return classify("get leave record", err)
		}
		result, err = s.load(ctx, record)
		return err
	})
	if err != nil {
		return leave.RecordWithBalance{}, classify("get leave record", err)
	}
	return result, nil
}

// ListRecordsByYear implements leave.LeaveService. Records of employees who
// left the company are excluded.
func (s *LeaveServiceImpl) ListRecordsByYear(ctx context.Context, year int) ([]leave.LeaveRecord, error) {
	departed, err := s.directory.ListDepartedIDs(ctx)
	if err != nil {
		return nil, &leave.StorageError{Op: "list departed employees", Err: err}
	}

	excluded := make(map[int64]struct{}, len(departed))
	for _, id := range departed {
		excluded[id] = struct{}{}
	}

	records, err := s.records.ListByYear(ctx, year, excluded)
	if err != nil {
		return nil, classify("list leave records", err)
	}
	return records, nil
}

// ProvisionYear implements leave.LeaveService.
func (s *LeaveServiceImpl) ProvisionYear(ctx context.Context, year int) (leave.ProvisionResult, error) {
	started := time.Now()
	result, err := s.provisioner.ProvisionActive(ctx, year)
	s.metrics.ObserveMutation("provision_year", outcome(err), started)
	if err != nil {
		slog.Error("Leave provisioning failed", "year", year, "created", result.Created, "error", err)
		return result, err
	}
	slog.Info("Leave provisioning finished", "year", year, "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

// recompute derives the balance from the current tranches and refreshes the
// cached columns of record. Must run inside the mutation's transaction.
func (s *LeaveServiceImpl) recompute(ctx context.Context, record leave.LeaveRecord) (leave.RecordWithBalance, error) {
	result, err := s.load(ctx, record)
	if err != nil {
		return leave.RecordWithBalance{}, err
	}

	if err := s.records.UpdateBalance(ctx, record.ID, result.Balance); err != nil {
		return leave.RecordWithBalance{}, classify("update balance", err)
	}
	return result, nil
}

func (s *LeaveServiceImpl) load(ctx context.Context, record leave.LeaveRecord) (leave.RecordWithBalance, error) {
	tranches, err := s.tranches.ListByLeaveRecord(ctx, record.ID)
	if err != nil {
		return leave.RecordWithBalance{}, err
	}

	balance := ComputeBalance(record, tranches)
	record.DaysConsumed = balance.DaysConsumed
	record.DaysRemaining = balance.DaysRemaining

	return leave.RecordWithBalance{
		Record:   record,
		Balance:  balance,
		Tranches: tranches,
	}, nil
}

func (s *LeaveServiceImpl) observe(operation string, result leave.RecordWithBalance, err error, started time.Time) {
	s.metrics.ObserveMutation(operation, outcome(err), started)
	if err == nil && result.Balance.Overdrawn() {
		s.metrics.ObserveOverdraft()
	}
}

func trancheRefs(t leave.Tranche) map[string]any {
	return map[string]any{
		"tranche_id":      t.ID,
		"leave_record_id": t.LeaveRecordID,
		"decision_number": t.DecisionNumber,
		"decision_date":   t.DecisionDate.Format(time.DateOnly),
		"start_date":      t.StartDate.Format(time.DateOnly),
		"end_date":        t.EndDate.Format(time.DateOnly),
		"days":            t.Days(),
	}
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)
