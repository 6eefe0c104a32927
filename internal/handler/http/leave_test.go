package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/memory"
	leaveService "github.com/cmlabs-hris/leave-backend-go/internal/service/leave"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type handlerEnv struct {
	router    *chi.Mux
	jwt       jwt.Service
	records   leave.LeaveRecordRepository
	directory *memory.Directory
	auditLog  *memory.AuditLog
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newHandlerEnv(t *testing.T, limiter *middleware.RateLimiter) *handlerEnv {
	t.Helper()

	store := memory.NewStore()
	records := memory.NewLeaveRecordRepository(store)
	tranches := memory.NewTrancheRepository(store)
	directory := memory.NewDirectory()
	auditLog := memory.NewAuditLog()
	provisioner := leaveService.NewProvisioner(records, directory, auditLog, nil, leaveService.DefaultAllocation)
	svc := leaveService.NewLeaveService(store, records, tranches, directory, auditLog, provisioner, nil)

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(jwtService, NewLeaveHandler(svc), RouterOptions{
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimiter:    limiter,
	})

	return &handlerEnv{
		router:    router,
		jwt:       jwtService,
		records:   records,
		directory: directory,
		auditLog:  auditLog,
	}
}

func (e *handlerEnv) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken("user-"+string(role), role)
	require.NoError(t, err)
	return token
}

func (e *handlerEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (e *handlerEnv) createRecord(t *testing.T, employeeID int64, year, days int) leave.LeaveRecord {
	t.Helper()
	record, err := e.records.Create(context.Background(), employeeID, year, days)
	require.NoError(t, err)
	return record
}

func trancheBody(start, end string) map[string]any {
	return map[string]any{
		"decision_number": 7,
		"decision_date":   "2024-01-02",
		"start_date":      start,
		"end_date":        end,
	}
}

// ===== AUTH TESTS =====

func TestLeaveHandler_RequiresToken(t *testing.T) {
	env := newHandlerEnv(t, nil)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/leave-records?year=2024", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeaveHandler_EmployeeCannotMutate(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)

	rec, body := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID),
		env.token(t, auth.RoleEmployee), trancheBody("2024-03-01", "2024-03-05"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestLeaveHandler_Health(t *testing.T) {
	env := newHandlerEnv(t, nil)

	rec, _ := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ===== TRANCHE TESTS =====

func TestLeaveHandler_AddTranche_Success(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)

	// Act
	rec, body := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID),
		env.token(t, auth.RoleManager), trancheBody("2024-01-10", "2024-01-24"))

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, body.Success)

	var data leave.RecordWithBalanceResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, 15, data.DaysConsumed)
	assert.Equal(t, 15, data.DaysRemaining)
	require.Len(t, data.Tranches, 1)
	assert.Equal(t, 1, data.Tranches[0].Number)
	assert.Equal(t, 15, data.Tranches[0].Days)
	assert.Equal(t, "2024-01-10", data.Tranches[0].StartDate)

	entries := env.auditLog.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, "user-manager", *entries[0].ActorID)
}

func TestLeaveHandler_AddTranche_InvalidBody(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)

	rec, body := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID),
		env.token(t, auth.RoleManager), map[string]any{
			"decision_number": 0,
			"decision_date":   "2024-01-02",
			"start_date":      "03/01/2024",
		})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "decision_number")
	assert.Contains(t, body.Error.Details, "start_date")
	assert.Contains(t, body.Error.Details, "end_date")
}

func TestLeaveHandler_AddTranche_Overlap(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)
	token := env.token(t, auth.RoleOwner)
	path := fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID)

	rec, _ := env.do(t, http.MethodPost, path, token, trancheBody("2024-02-01", "2024-02-10"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := env.do(t, http.MethodPost, path, token, trancheBody("2024-02-05", "2024-02-07"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "TRANCHE_OVERLAP", body.Error.Code)
	assert.Equal(t, "1", body.Error.Details["conflicting_tranche_id"])
}

func TestLeaveHandler_AddTranche_OutOfYear(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)

	rec, body := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID),
		env.token(t, auth.RoleManager), trancheBody("2023-12-30", "2024-01-02"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, leave.ErrOutOfYear.Error(), body.Error.Message)
}

func TestLeaveHandler_AddTranche_RecordNotFound(t *testing.T) {
	env := newHandlerEnv(t, nil)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/leave-records/77/tranches",
		env.token(t, auth.RoleManager), trancheBody("2024-03-01", "2024-03-05"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveHandler_UpdateAndDeleteTranche(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)
	token := env.token(t, auth.RoleManager)

	rec, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID),
		token, trancheBody("2024-03-01", "2024-03-10"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Update
	rec, body := env.do(t, http.MethodPut, "/api/v1/tranches/1", token, trancheBody("2024-03-01", "2024-03-03"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data leave.RecordWithBalanceResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, 27, data.DaysRemaining)

	// Delete
	rec, body = env.do(t, http.MethodDelete, "/api/v1/tranches/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, 30, data.DaysRemaining)
	assert.Empty(t, data.Tranches)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/tranches/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ===== RECORD TESTS =====

func TestLeaveHandler_AdjustAllocation_Overdraft(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)
	token := env.token(t, auth.RoleManager)

	rec, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/leave-records/%d/tranches", record.ID),
		token, trancheBody("2024-01-01", "2024-01-20"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/leave-records/%d/allocation", record.ID),
		token, map[string]any{"days_allocated": 10})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data leave.RecordWithBalanceResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, 10, data.DaysAllocated)
	assert.Equal(t, -10, data.DaysRemaining)
	assert.True(t, data.Overdrawn)
}

func TestLeaveHandler_AdjustAllocation_MissingValue(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)

	rec, body := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/leave-records/%d/allocation", record.ID),
		env.token(t, auth.RoleManager), map[string]any{})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "days_allocated")
}

func TestLeaveHandler_GetRecord(t *testing.T) {
	env := newHandlerEnv(t, nil)
	record := env.createRecord(t, 101, 2024, 30)

	rec, body := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/leave-records/%d", record.ID),
		env.token(t, auth.RoleEmployee), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data leave.RecordWithBalanceResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, record.ID, data.ID)
	assert.Equal(t, int64(101), data.EmployeeID)
	assert.NotNil(t, data.Tranches)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/leave-records/abc", env.token(t, auth.RoleEmployee), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandler_ListRecords(t *testing.T) {
	env := newHandlerEnv(t, nil)
	env.directory.Put(101, employee.EmploymentStatusActive)
	env.directory.Put(102, employee.EmploymentStatusResigned)
	env.createRecord(t, 101, 2023, 30)
	env.createRecord(t, 102, 2023, 30)
	token := env.token(t, auth.RoleEmployee)

	rec, body := env.do(t, http.MethodGet, "/api/v1/leave-records?year=2023", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []leave.LeaveRecordResponse
	require.NoError(t, json.Unmarshal(body.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(101), list[0].EmployeeID)

	rec, body = env.do(t, http.MethodGet, "/api/v1/leave-records?year=2023&employee_id=102", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one leave.RecordWithBalanceResponse
	require.NoError(t, json.Unmarshal(body.Data, &one))
	assert.Equal(t, int64(102), one.EmployeeID)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/leave-records?year=23", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandler_Provision(t *testing.T) {
	env := newHandlerEnv(t, nil)
	env.directory.Put(101, employee.EmploymentStatusActive)
	env.directory.Put(102, employee.EmploymentStatusActive)
	token := env.token(t, auth.RoleOwner)

	rec, body := env.do(t, http.MethodPost, "/api/v1/leave-records/provision", token, map[string]any{"year": 2025})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result leave.ProvisionResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, leave.ProvisionResponse{Year: 2025, Created: 2, Skipped: 0}, result)

	rec, body = env.do(t, http.MethodPost, "/api/v1/leave-records/provision", token, map[string]any{"year": 2025})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, leave.ProvisionResponse{Year: 2025, Created: 0, Skipped: 2}, result)
}

func TestLeaveHandler_RateLimited(t *testing.T) {
	env := newHandlerEnv(t, middleware.NewRateLimiter(0.001, 1))
	env.directory.Put(101, employee.EmploymentStatusActive)
	token := env.token(t, auth.RoleOwner)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/leave-records/provision", token, map[string]any{"year": 2025})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/v1/leave-records/provision", token, map[string]any{"year": 2025})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Error.Code)
}
