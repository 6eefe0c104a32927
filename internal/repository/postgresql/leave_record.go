package postgresql

import (
	"context"
	"errors"
	"sort"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

type leaveRecordRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRecordRepository(db *database.DB) leave.LeaveRecordRepository {
	return &leaveRecordRepositoryImpl{db: db}
}

const leaveRecordColumns = `id, employee_id, year, days_allocated, days_consumed, days_remaining, created_at, updated_at`

func scanLeaveRecord(row pgx.Row) (leave.LeaveRecord, error) {
	var record leave.LeaveRecord
	err := row.Scan(
		&record.ID, &record.EmployeeID, &record.Year, &record.DaysAllocated,
		&record.DaysConsumed, &record.DaysRemaining, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRecord{}, leave.ErrLeaveRecordNotFound
		}
		return leave.LeaveRecord{}, err
	}
	return record, nil
}

// Create implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) Create(ctx context.Context, employeeID int64, year int, daysAllocated int) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_records (
			employee_id, year, days_allocated, days_consumed, days_remaining,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, 0, $3,
			NOW(), NOW()
		) RETURNING ` + leaveRecordColumns

	record, err := scanLeaveRecord(q.QueryRow(ctx, query, employeeID, year, daysAllocated))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return leave.LeaveRecord{}, leave.ErrLeaveRecordExists
		}
		return leave.LeaveRecord{}, err
	}
	return record, nil
}

// GetByID implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) GetByID(ctx context.Context, id int64) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveRecordColumns + ` FROM leave_records WHERE id = $1`
	return scanLeaveRecord(q.QueryRow(ctx, query, id))
}

// GetByEmployeeAndYear implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) GetByEmployeeAndYear(ctx context.Context, employeeID int64, year int) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveRecordColumns + ` FROM leave_records WHERE employee_id = $1 AND year = $2`
	return scanLeaveRecord(q.QueryRow(ctx, query, employeeID, year))
}

// LockByID implements leave.LeaveRecordRepository. The row lock is released
// when the surrounding transaction commits or rolls back.
func (r *leaveRecordRepositoryImpl) LockByID(ctx context.Context, id int64) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveRecordColumns + ` FROM leave_records WHERE id = $1 FOR UPDATE`
	return scanLeaveRecord(q.QueryRow(ctx, query, id))
}

// UpdateAllocation implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) UpdateAllocation(ctx context.Context, id int64, daysAllocated int) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE leave_records
		SET days_allocated = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leaveRecordColumns

	return scanLeaveRecord(q.QueryRow(ctx, query, id, daysAllocated))
}

// UpdateBalance implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) UpdateBalance(ctx context.Context, id int64, balance leave.Balance) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE leave_records
		SET days_consumed = $2, days_remaining = $3, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, id, balance.DaysConsumed, balance.DaysRemaining)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRecordNotFound
	}
	return nil
}

// ListByYear implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) ListByYear(ctx context.Context, year int, excludingEmployeeIDs map[int64]struct{}) ([]leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	excluded := make([]int64, 0, len(excludingEmployeeIDs))
	for id := range excludingEmployeeIDs {
		excluded = append(excluded, id)
	}
	sort.Slice(excluded, func(i, j int) bool { return excluded[i] < excluded[j] })

	query := `
		SELECT ` + leaveRecordColumns + `
		FROM leave_records
		WHERE year = $1 AND NOT (employee_id = ANY($2))
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, year, excluded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]leave.LeaveRecord, 0)
	for rows.Next() {
		record, err := scanLeaveRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
