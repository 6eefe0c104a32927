package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

// TrancheStore enforces the per-record tranche rules on top of a
// leave.TrancheRepository: the tranche cap, the decision fields and the
// date range checks. Nothing is written when a rule fails.
type TrancheStore struct {
	repo leave.TrancheRepository
	now  func() time.Time
}

func NewTrancheStore(repo leave.TrancheRepository) *TrancheStore {
	return &TrancheStore{repo: repo, now: time.Now}
}

// Get returns a single tranche or leave.ErrTrancheNotFound.
func (s *TrancheStore) Get(ctx context.Context, trancheID int64) (leave.Tranche, error) {
	t, err := s.repo.GetByID(ctx, trancheID)
	if err != nil {
		return leave.Tranche{}, classify("get tranche", err)
	}
	return t, nil
}

// ListByLeaveRecord returns the tranches of a record ordered by start date.
func (s *TrancheStore) ListByLeaveRecord(ctx context.Context, leaveRecordID int64) ([]leave.Tranche, error) {
	tranches, err := s.repo.ListByLeaveRecord(ctx, leaveRecordID)
	if err != nil {
		return nil, classify("list tranches", err)
	}
	return tranches, nil
}

// Create validates input against the record and its current tranches and
// persists it.
func (s *TrancheStore) Create(ctx context.Context, record leave.LeaveRecord, input leave.TrancheInput) (leave.Tranche, error) {
	input = input.Normalize()
	if err := s.checkDecision(input); err != nil {
		return leave.Tranche{}, err
	}

	siblings, err := s.ListByLeaveRecord(ctx, record.ID)
	if err != nil {
		return leave.Tranche{}, err
	}
	if len(siblings) >= leave.MaxTranchesPerRecord {
		return leave.Tranche{}, leave.ErrTrancheLimitExceeded
	}

	if err := ValidateRange(input.Range(), record.Year, ranges(siblings), 0); err != nil {
		return leave.Tranche{}, err
	}

	created, err := s.repo.Create(ctx, record.ID, input)
	if err != nil {
		return leave.Tranche{}, classify("create tranche", err)
	}
	return created, nil
}

// Update replaces the fields of a tranche of record. The tranche is
// validated against its siblings, excluding itself.
func (s *TrancheStore) Update(ctx context.Context, record leave.LeaveRecord, trancheID int64, input leave.TrancheInput) (leave.Tranche, error) {
	input = input.Normalize()

	siblings, err := s.ListByLeaveRecord(ctx, record.ID)
	if err != nil {
		return leave.Tranche{}, err
	}
	if !contains(siblings, trancheID) {
		return leave.Tranche{}, leave.ErrTrancheNotFound
	}

	if err := s.checkDecision(input); err != nil {
		return leave.Tranche{}, err
	}
	if err := ValidateRange(input.Range(), record.Year, ranges(siblings), trancheID); err != nil {
		return leave.Tranche{}, err
	}

	updated, err := s.repo.Update(ctx, trancheID, input)
	if err != nil {
		return leave.Tranche{}, classify("update tranche", err)
	}
	return updated, nil
}

// Delete removes a tranche. Deleting can never break a record invariant.
func (s *TrancheStore) Delete(ctx context.Context, trancheID int64) error {
	if err := s.repo.Delete(ctx, trancheID); err != nil {
		return classify("delete tranche", err)
	}
	return nil
}

func (s *TrancheStore) checkDecision(input leave.TrancheInput) error {
	if input.DecisionNumber <= 0 {
		return leave.ErrInvalidDecisionNumber
	}
	if input.DecisionDate.IsZero() {
		return leave.ErrMissingDate
	}
	if input.DecisionDate.After(leave.DateOf(s.now())) {
		return leave.ErrDecisionDateInFuture
	}
	return nil
}

func ranges(tranches []leave.Tranche) []leave.DateRange {
	out := make([]leave.DateRange, 0, len(tranches))
	for _, t := range tranches {
		out = append(out, t.Range())
	}
	return out
}

func contains(tranches []leave.Tranche, id int64) bool {
	for _, t := range tranches {
		if t.ID == id {
			return true
		}
	}
	return false
}
