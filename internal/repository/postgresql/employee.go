package postgresql

import (
	"context"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
)

type employeeDirectoryImpl struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectoryImpl{db: db}
}

// ListActive implements employee.Directory.
func (e *employeeDirectoryImpl) ListActive(ctx context.Context) ([]employee.EmployeeRef, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id
		FROM employees
		WHERE employment_status = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []employee.EmployeeRef
	for rows.Next() {
		ref := employee.EmployeeRef{IsActive: true}
		if err := rows.Scan(&ref.ID); err != nil {
			return nil, err
		}
		employees = append(employees, ref)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// ListDepartedIDs implements employee.Directory.
func (e *employeeDirectoryImpl) ListDepartedIDs(ctx context.Context) ([]int64, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id
		FROM employees
		WHERE employment_status <> $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
