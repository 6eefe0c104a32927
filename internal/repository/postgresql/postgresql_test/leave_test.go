package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/postgresql"
	leaveService "github.com/cmlabs-hris/leave-backend-go/internal/service/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func createEmployee(t *testing.T, setup *TestDatabaseSetup, status employee.EmploymentStatus) int64 {
	t.Helper()
	id, err := setup.CreateEmployee(context.Background(), "Test Employee", string(status))
	require.NoError(t, err)
	return id
}

// ===== LEAVE RECORD REPOSITORY TESTS =====

func TestLeaveRecordRepository_CreateAndGet(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRecordRepository(setup.DB)
	employeeID := createEmployee(t, setup, employee.EmploymentStatusActive)

	// Act
	created, err := repo.Create(ctx, employeeID, 2024, 30)

	// Assert
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 30, created.DaysAllocated)
	assert.Equal(t, 0, created.DaysConsumed)
	assert.Equal(t, 30, created.DaysRemaining)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byYear, err := repo.GetByEmployeeAndYear(ctx, employeeID, 2024)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byYear.ID)

	_, err = repo.GetByID(ctx, created.ID+1000)
	assert.ErrorIs(t, err, leave.ErrLeaveRecordNotFound)
}

func TestLeaveRecordRepository_Create_Duplicate(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRecordRepository(setup.DB)
	employeeID := createEmployee(t, setup, employee.EmploymentStatusActive)

	_, err := repo.Create(ctx, employeeID, 2024, 30)
	require.NoError(t, err)

	_, err = repo.Create(ctx, employeeID, 2024, 10)
	assert.ErrorIs(t, err, leave.ErrLeaveRecordExists)
}

func TestLeaveRecordRepository_ListByYear_Excludes(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRecordRepository(setup.DB)
	first := createEmployee(t, setup, employee.EmploymentStatusActive)
	second := createEmployee(t, setup, employee.EmploymentStatusResigned)

	_, err := repo.Create(ctx, first, 2023, 30)
	require.NoError(t, err)
	_, err = repo.Create(ctx, second, 2023, 30)
	require.NoError(t, err)

	all, err := repo.ListByYear(ctx, 2023, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListByYear(ctx, 2023, map[int64]struct{}{second: {}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first, filtered[0].EmployeeID)
}

// ===== TRANCHE REPOSITORY TESTS =====

func TestTrancheRepository_CRUD(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	records := postgresql.NewLeaveRecordRepository(setup.DB)
	tranches := postgresql.NewTrancheRepository(setup.DB)
	employeeID := createEmployee(t, setup, employee.EmploymentStatusActive)
	record, err := records.Create(ctx, employeeID, 2024, 30)
	require.NoError(t, err)

	later, err := tranches.Create(ctx, record.ID, leave.TrancheInput{
		DecisionNumber: 3, DecisionDate: date("2024-01-02"),
		StartDate: date("2024-05-01"), EndDate: date("2024-05-05"),
	})
	require.NoError(t, err)
	earlier, err := tranches.Create(ctx, record.ID, leave.TrancheInput{
		DecisionNumber: 4, DecisionDate: date("2024-01-02"),
		StartDate: date("2024-02-01"), EndDate: date("2024-02-03"),
	})
	require.NoError(t, err)

	list, err := tranches.ListByLeaveRecord(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, 3, list[0].Days())
	assert.True(t, list[0].StartDate.Equal(date("2024-02-01")))

	count, err := tranches.CountByLeaveRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	updated, err := tranches.Update(ctx, later.ID, leave.TrancheInput{
		DecisionNumber: 5, DecisionDate: date("2024-01-03"),
		StartDate: date("2024-06-01"), EndDate: date("2024-06-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.DecisionNumber)
	assert.Equal(t, 2, updated.Days())

	require.NoError(t, tranches.Delete(ctx, later.ID))
	assert.ErrorIs(t, tranches.Delete(ctx, later.ID), leave.ErrTrancheNotFound)
	_, err = tranches.GetByID(ctx, later.ID)
	assert.ErrorIs(t, err, leave.ErrTrancheNotFound)
}

// ===== TRANSACTION TESTS =====

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(setup.DB)
	records := postgresql.NewLeaveRecordRepository(setup.DB)
	employeeID := createEmployee(t, setup, employee.EmploymentStatusActive)
	failure := errors.New("abort")

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := records.Create(ctx, employeeID, 2024, 30); err != nil {
			return err
		}
		return failure
	})

	assert.ErrorIs(t, err, failure)
	_, err = records.GetByEmployeeAndYear(ctx, employeeID, 2024)
	assert.ErrorIs(t, err, leave.ErrLeaveRecordNotFound)
}

// ===== SERVICE INTEGRATION TESTS =====

func newPostgresService(setup *TestDatabaseSetup) (*leaveService.LeaveServiceImpl, leave.LeaveRecordRepository) {
	records := postgresql.NewLeaveRecordRepository(setup.DB)
	tranches := postgresql.NewTrancheRepository(setup.DB)
	directory := postgresql.NewEmployeeDirectory(setup.DB)
	auditLog := postgresql.NewAuditTrailRepository(setup.DB)
	provisioner := leaveService.NewProvisioner(records, directory, auditLog, nil, leaveService.DefaultAllocation)
	svc := leaveService.NewLeaveService(postgresql.NewTransactor(setup.DB), records, tranches, directory, auditLog, provisioner, nil)
	return svc, records
}

func TestLeaveService_Postgres_ProvisionAndConsume(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := audit.WithActor(context.Background(), "hr-admin")
	svc, records := newPostgresService(setup)
	active := createEmployee(t, setup, employee.EmploymentStatusActive)
	createEmployee(t, setup, employee.EmploymentStatusTerminated)

	result, err := svc.ProvisionYear(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	record, err := records.GetByEmployeeAndYear(ctx, active, 2024)
	require.NoError(t, err)

	balance, err := svc.AddTranche(ctx, record.ID, leave.TrancheInput{
		DecisionNumber: 1, DecisionDate: date("2024-01-05"),
		StartDate: date("2024-01-10"), EndDate: date("2024-01-24"),
	})
	require.NoError(t, err)
	assert.Equal(t, 15, balance.Balance.DaysRemaining)

	stored, err := records.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.DaysConsumed)
	assert.Equal(t, 15, stored.DaysRemaining)

	var auditCount int
	require.NoError(t, setup.DB.QueryRow(ctx, `SELECT COUNT(*) FROM audit_trails WHERE actor_id = 'hr-admin'`).Scan(&auditCount))
	assert.Equal(t, 2, auditCount)
}

func TestLeaveService_Postgres_ConcurrentAddsRespectCap(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	svc, records := newPostgresService(setup)
	employeeID := createEmployee(t, setup, employee.EmploymentStatusActive)
	record, err := records.Create(ctx, employeeID, 2024, 30)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			day := date("2024-03-01").AddDate(0, 0, i*3)
			_, err := svc.AddTranche(ctx, record.ID, leave.TrancheInput{
				DecisionNumber: i + 1, DecisionDate: date("2024-01-05"),
				StartDate: day, EndDate: day,
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			} else if !errors.Is(err, leave.ErrTrancheLimitExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, leave.MaxTranchesPerRecord, success)
	stored, err := records.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.MaxTranchesPerRecord, stored.DaysConsumed)
}
