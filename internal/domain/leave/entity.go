package leave

import (
	"time"
)

// MaxTranchesPerRecord is the number of tranches a single leave record may hold.
const MaxTranchesPerRecord = 5

// LeaveRecord entity. One per employee and calendar year.
type LeaveRecord struct {
	ID            int64
	EmployeeID    int64
	Year          int
	DaysAllocated int

	// Cached balance, refreshed in the same transaction as every tranche
	// or allocation change. Read paths recompute from tranches.
	DaysConsumed  int
	DaysRemaining int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tranche entity: one contiguous leave period taken against a LeaveRecord,
// authorized by an administrative decision.
type Tranche struct {
	ID             int64
	LeaveRecordID  int64
	DecisionNumber int
	DecisionDate   time.Time
	StartDate      time.Time
	EndDate        time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Days returns the inclusive number of calendar days covered by the tranche.
func (t Tranche) Days() int {
	return DaysBetween(t.StartDate, t.EndDate)
}

// Range returns the tranche period as a DateRange keyed by the tranche ID.
func (t Tranche) Range() DateRange {
	return DateRange{ID: t.ID, Start: t.StartDate, End: t.EndDate}
}

// DateRange is an inclusive [Start, End] period. ID identifies the tranche
// the range belongs to, zero for a candidate that is not persisted yet.
type DateRange struct {
	ID    int64
	Start time.Time
	End   time.Time
}

// Balance is the derived consumption of a leave record.
type Balance struct {
	DaysConsumed  int
	DaysRemaining int
}

// Overdrawn reports whether more days were consumed than allocated.
func (b Balance) Overdrawn() bool {
	return b.DaysRemaining < 0
}

// RecordWithBalance is a leave record together with its tranches (ordered by
// start date) and the balance recomputed from them.
type RecordWithBalance struct {
	Record   LeaveRecord
	Balance  Balance
	Tranches []Tranche
}

// TrancheInput carries the mutable fields of a tranche. Dates are truncated
// to the calendar day before validation.
type TrancheInput struct {
	DecisionNumber int
	DecisionDate   time.Time
	StartDate      time.Time
	EndDate        time.Time
}

// Normalize returns a copy with every date truncated to midnight UTC.
func (in TrancheInput) Normalize() TrancheInput {
	return TrancheInput{
		DecisionNumber: in.DecisionNumber,
		DecisionDate:   DateOf(in.DecisionDate),
		StartDate:      DateOf(in.StartDate),
		EndDate:        DateOf(in.EndDate),
	}
}

// Range returns the candidate period of the input.
func (in TrancheInput) Range() DateRange {
	return DateRange{Start: in.StartDate, End: in.EndDate}
}

// ProvisionResult summarizes a provisioning run.
type ProvisionResult struct {
	Year    int
	Created int
	Skipped int
}

// DateOf truncates t to its calendar day in UTC. The zero time stays zero.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the inclusive day count between two dates.
func DaysBetween(start, end time.Time) int {
	s, e := DateOf(start), DateOf(end)
	return int(e.Sub(s).Hours()/24) + 1
}
