package leave

import (
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

type TrancheRequest struct {
	DecisionNumber int    `json:"decision_number"`
	DecisionDate   string `json:"decision_date"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

// Validate checks the request shape. Domain rules (year, overlap, cap) are
// enforced by the service.
func (r *TrancheRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DecisionNumber <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "decision_number",
			Message: "decision_number must be a positive integer",
		})
	}

	for _, f := range []struct {
		field string
		value string
	}{
		{"decision_date", r.DecisionDate},
		{"start_date", r.StartDate},
		{"end_date", r.EndDate},
	} {
		if validator.IsEmpty(f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " is required",
			})
			continue
		}
		if _, ok := validator.IsValidDate(f.value); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToInput converts a validated request into a TrancheInput.
func (r *TrancheRequest) ToInput() TrancheInput {
	decisionDate, _ := validator.IsValidDate(r.DecisionDate)
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return TrancheInput{
		DecisionNumber: r.DecisionNumber,
		DecisionDate:   decisionDate,
		StartDate:      start,
		EndDate:        end,
	}
}

type AdjustAllocationRequest struct {
	DaysAllocated *int `json:"days_allocated"`
}

func (r *AdjustAllocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DaysAllocated == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "days_allocated",
			Message: "days_allocated is required",
		})
	} else if *r.DaysAllocated < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "days_allocated",
			Message: "days_allocated must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ProvisionRequest struct {
	Year int `json:"year"`
}

func (r *ProvisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 1900 || r.Year > 9999 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a four digit calendar year",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRecordResponse struct {
	ID            int64     `json:"id"`
	EmployeeID    int64     `json:"employee_id"`
	Year          int       `json:"year"`
	DaysAllocated int       `json:"days_allocated"`
	DaysConsumed  int       `json:"days_consumed"`
	DaysRemaining int       `json:"days_remaining"`
	Overdrawn     bool      `json:"overdrawn"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TrancheResponse struct {
	ID             int64  `json:"id"`
	Number         int    `json:"number"`
	DecisionNumber int    `json:"decision_number"`
	DecisionDate   string `json:"decision_date"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Days           int    `json:"days"`
}

type RecordWithBalanceResponse struct {
	LeaveRecordResponse
	Tranches []TrancheResponse `json:"tranches"`
}

type ProvisionResponse struct {
	Year    int `json:"year"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

const dateLayout = "2006-01-02"

func NewLeaveRecordResponse(r LeaveRecord) LeaveRecordResponse {
	return LeaveRecordResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Year:          r.Year,
		DaysAllocated: r.DaysAllocated,
		DaysConsumed:  r.DaysConsumed,
		DaysRemaining: r.DaysRemaining,
		Overdrawn:     r.DaysRemaining < 0,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// NewRecordWithBalanceResponse maps a record and its tranches to the API shape.
// Tranches are numbered 1..n in start date order.
func NewRecordWithBalanceResponse(rb RecordWithBalance) RecordWithBalanceResponse {
	record := rb.Record
	record.DaysConsumed = rb.Balance.DaysConsumed
	record.DaysRemaining = rb.Balance.DaysRemaining

	tranches := make([]TrancheResponse, 0, len(rb.Tranches))
	for i, t := range rb.Tranches {
		tranches = append(tranches, TrancheResponse{
			ID:             t.ID,
			Number:         i + 1,
			DecisionNumber: t.DecisionNumber,
			DecisionDate:   t.DecisionDate.Format(dateLayout),
			StartDate:      t.StartDate.Format(dateLayout),
			EndDate:        t.EndDate.Format(dateLayout),
			Days:           t.Days(),
		})
	}

	return RecordWithBalanceResponse{
		LeaveRecordResponse: NewLeaveRecordResponse(record),
		Tranches:            tranches,
	}
}
