package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/metrics"
)

// DefaultAllocation is the number of days a newly provisioned record gets
// when no allocation is configured.
const DefaultAllocation = 30

// Provisioner makes sure every active employee holds a leave record for a
// given year.
type Provisioner struct {
	records           leave.LeaveRecordRepository
	directory         employee.Directory
	auditLog          audit.Log
	metrics           *metrics.LeaveMetrics
	defaultAllocation int
}

func NewProvisioner(records leave.LeaveRecordRepository, directory employee.Directory, auditLog audit.Log, m *metrics.LeaveMetrics, defaultAllocation int) *Provisioner {
	if defaultAllocation < 0 {
		defaultAllocation = DefaultAllocation
	}
	return &Provisioner{
		records:           records,
		directory:         directory,
		auditLog:          auditLog,
		metrics:           m,
		defaultAllocation: defaultAllocation,
	}
}

// EnsureLeaveRecords creates the year's record for every active employee
// that lacks one. Inactive employees are ignored. Running it twice creates
// nothing the second time.
func (p *Provisioner) EnsureLeaveRecords(ctx context.Context, year int, employees []employee.EmployeeRef) (leave.ProvisionResult, error) {
	result := leave.ProvisionResult{Year: year}

	for _, emp := range employees {
		if !emp.IsActive {
			slog.Debug("Skipping inactive employee", "employee_id", emp.ID, "year", year)
			continue
		}

		record, err := p.records.Create(ctx, emp.ID, year, p.defaultAllocation)
		if err != nil {
			if errors.Is(err, leave.ErrLeaveRecordExists) {
				result.Skipped++
				continue
			}
			p.metrics.ObserveProvisioning(result.Created, result.Skipped)
			return result, &leave.StorageError{
				Op:  fmt.Sprintf("create leave record for employee %d", emp.ID),
				Err: err,
			}
		}

		result.Created++
		slog.Info("Provisioned leave record",
			"leave_record_id", record.ID,
			"employee_id", emp.ID,
			"year", year,
			"days_allocated", record.DaysAllocated,
		)
		p.record(ctx, audit.EventLeaveRecordCreated,
			fmt.Sprintf("leave record %d/%d created with %d days", emp.ID, year, record.DaysAllocated),
			map[string]any{"leave_record_id": record.ID, "employee_id": emp.ID, "year": year},
		)
	}

	p.metrics.ObserveProvisioning(result.Created, result.Skipped)
	return result, nil
}

// ProvisionActive runs EnsureLeaveRecords for every active employee in the
// directory.
func (p *Provisioner) ProvisionActive(ctx context.Context, year int) (leave.ProvisionResult, error) {
	employees, err := p.directory.ListActive(ctx)
	if err != nil {
		return leave.ProvisionResult{Year: year}, &leave.StorageError{Op: "list active employees", Err: err}
	}
	return p.EnsureLeaveRecords(ctx, year, employees)
}

func (p *Provisioner) record(ctx context.Context, event, details string, refs map[string]any) {
	recordAudit(ctx, p.auditLog, event, details, refs)
}

// recordAudit writes an entry to the audit log. Failures are logged and
// otherwise ignored: the change they describe is already committed.
func recordAudit(ctx context.Context, log audit.Log, event, details string, refs map[string]any) {
	if log == nil {
		return
	}
	entry := audit.Entry{
		Event:      event,
		Details:    details,
		Refs:       refs,
		ActorID:    audit.ActorFromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}
	if err := log.Record(ctx, entry); err != nil {
		slog.Warn("Failed to record audit entry", "event", event, "error", err)
	}
}
