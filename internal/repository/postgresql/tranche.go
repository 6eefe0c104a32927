package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type trancheRepositoryImpl struct {
	db *database.DB
}

func NewTrancheRepository(db *database.DB) leave.TrancheRepository {
	return &trancheRepositoryImpl{db: db}
}

const trancheColumns = `id, leave_record_id, decision_number, decision_date, start_date, end_date, created_at, updated_at`

func scanTranche(row pgx.Row) (leave.Tranche, error) {
	var t leave.Tranche
	err := row.Scan(
		&t.ID, &t.LeaveRecordID, &t.DecisionNumber, &t.DecisionDate,
		&t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Tranche{}, leave.ErrTrancheNotFound
		}
		return leave.Tranche{}, err
	}
	t.DecisionDate = leave.DateOf(t.DecisionDate)
	t.StartDate = leave.DateOf(t.StartDate)
	t.EndDate = leave.DateOf(t.EndDate)
	return t, nil
}

// Create implements leave.TrancheRepository.
func (r *trancheRepositoryImpl) Create(ctx context.Context, leaveRecordID int64, input leave.TrancheInput) (leave.Tranche, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO tranches (
			leave_record_id, decision_number, decision_date, start_date, end_date,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			NOW(), NOW()
		) RETURNING ` + trancheColumns

	return scanTranche(q.QueryRow(ctx, query,
		leaveRecordID, input.DecisionNumber, input.DecisionDate, input.StartDate, input.EndDate,
	))
}

// GetByID implements leave.TrancheRepository.
func (r *trancheRepositoryImpl) GetByID(ctx context.Context, id int64) (leave.Tranche, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + trancheColumns + ` FROM tranches WHERE id = $1`
	return scanTranche(q.QueryRow(ctx, query, id))
}

// ListByLeaveRecord implements leave.TrancheRepository.
func (r *trancheRepositoryImpl) ListByLeaveRecord(ctx context.Context, leaveRecordID int64) ([]leave.Tranche, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + trancheColumns + `
		FROM tranches
		WHERE leave_record_id = $1
		ORDER BY start_date, id
	`

	rows, err := q.Query(ctx, query, leaveRecordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tranches := make([]leave.Tranche, 0, leave.MaxTranchesPerRecord)
	for rows.Next() {
		t, err := scanTranche(rows)
		if err != nil {
			return nil, err
		}
		tranches = append(tranches, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tranches, nil
}

// CountByLeaveRecord implements leave.TrancheRepository.
func (r *trancheRepositoryImpl) CountByLeaveRecord(ctx context.Context, leaveRecordID int64) (int, error) {
	q := GetQuerier(ctx, r.db)
	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM tranches WHERE leave_record_id = $1`, leaveRecordID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update implements leave.TrancheRepository.
func (r *trancheRepositoryImpl) Update(ctx context.Context, id int64, input leave.TrancheInput) (leave.Tranche, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE tranches
		SET decision_number = $2, decision_date = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + trancheColumns

	return scanTranche(q.QueryRow(ctx, query,
		id, input.DecisionNumber, input.DecisionDate, input.StartDate, input.EndDate,
	))
}

// Delete implements leave.TrancheRepository.
func (r *trancheRepositoryImpl) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)
	commandTag, err := q.Exec(ctx, `DELETE FROM tranches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrTrancheNotFound
	}
	return nil
}
