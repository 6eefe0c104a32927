package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	ListRecords(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	AdjustAllocation(w http.ResponseWriter, r *http.Request)
	Provision(w http.ResponseWriter, r *http.Request)

	AddTranche(w http.ResponseWriter, r *http.Request)
	UpdateTranche(w http.ResponseWriter, r *http.Request)
	DeleteTranche(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// ListRecords implements LeaveHandler. With employee_id it returns that
// employee's record for the year, otherwise the year report.
func (h *LeaveHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	year, ok := validator.ParseYear(query.Get("year"))
	if !ok {
		response.BadRequest(w, "year must be a four digit calendar year", map[string]string{"year": "invalid"})
		return
	}

	if raw := query.Get("employee_id"); raw != "" {
		employeeID, ok := validator.ParseID(raw)
		if !ok {
			response.BadRequest(w, "employee_id must be a positive integer", map[string]string{"employee_id": "invalid"})
			return
		}

		record, err := h.leaveService.GetRecordByEmployeeAndYear(ctx, employeeID, year)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, leave.NewRecordWithBalanceResponse(record))
		return
	}

	records, err := h.leaveService.ListRecordsByYear(ctx, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]leave.LeaveRecordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, leave.NewLeaveRecordResponse(record))
	}
	response.Success(w, resp)
}

// GetRecord implements LeaveHandler.
func (h *LeaveHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Leave record ID must be a positive integer", nil)
		return
	}

	record, err := h.leaveService.GetRecordWithBalance(r.Context(), recordID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewRecordWithBalanceResponse(record))
}

// AdjustAllocation implements LeaveHandler.
func (h *LeaveHandlerImpl) AdjustAllocation(w http.ResponseWriter, r *http.Request) {
	recordID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Leave record ID must be a positive integer", nil)
		return
	}

	var req leave.AdjustAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AdjustAllocation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.leaveService.AdjustAllocation(r.Context(), recordID, *req.DaysAllocated)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave allocation adjusted successfully", leave.NewRecordWithBalanceResponse(record))
}

// Provision implements LeaveHandler.
func (h *LeaveHandlerImpl) Provision(w http.ResponseWriter, r *http.Request) {
	var req leave.ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Provision decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.ProvisionYear(r.Context(), req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave records provisioned successfully", leave.ProvisionResponse{
		Year:    result.Year,
		Created: result.Created,
		Skipped: result.Skipped,
	})
}

// AddTranche implements LeaveHandler.
func (h *LeaveHandlerImpl) AddTranche(w http.ResponseWriter, r *http.Request) {
	recordID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Leave record ID must be a positive integer", nil)
		return
	}

	var req leave.TrancheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddTranche decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.leaveService.AddTranche(r.Context(), recordID, req.ToInput())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Tranche added successfully", leave.NewRecordWithBalanceResponse(record))
}

// UpdateTranche implements LeaveHandler.
func (h *LeaveHandlerImpl) UpdateTranche(w http.ResponseWriter, r *http.Request) {
	trancheID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Tranche ID must be a positive integer", nil)
		return
	}

	var req leave.TrancheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateTranche decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.leaveService.UpdateTranche(r.Context(), trancheID, req.ToInput())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Tranche updated successfully", leave.NewRecordWithBalanceResponse(record))
}

// DeleteTranche implements LeaveHandler.
func (h *LeaveHandlerImpl) DeleteTranche(w http.ResponseWriter, r *http.Request) {
	trancheID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Tranche ID must be a positive integer", nil)
		return
	}

	record, err := h.leaveService.DeleteTranche(r.Context(), trancheID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Tranche deleted successfully", leave.NewRecordWithBalanceResponse(record))
}
