package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

type trancheRepository struct {
	s *Store
}

func NewTrancheRepository(s *Store) leave.TrancheRepository {
	return &trancheRepository{s: s}
}

func (r *trancheRepository) Create(ctx context.Context, leaveRecordID int64, input leave.TrancheInput) (leave.Tranche, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure("tranche.create"); err != nil {
		return leave.Tranche{}, err
	}

	if _, ok := r.s.records[leaveRecordID]; !ok {
		return leave.Tranche{}, leave.ErrLeaveRecordNotFound
	}

	r.s.nextTrancheID++
	now := r.s.now()
	t := leave.Tranche{
		ID:             r.s.nextTrancheID,
		LeaveRecordID:  leaveRecordID,
		DecisionNumber: input.DecisionNumber,
		DecisionDate:   input.DecisionDate,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.s.tranches[t.ID] = t
	return t, nil
}

func (r *trancheRepository) GetByID(ctx context.Context, id int64) (leave.Tranche, error) {
	defer r.s.lock(ctx)()

	t, ok := r.s.tranches[id]
	if !ok {
		return leave.Tranche{}, leave.ErrTrancheNotFound
	}
	return t, nil
}

func (r *trancheRepository) ListByLeaveRecord(ctx context.Context, leaveRecordID int64) ([]leave.Tranche, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure("tranche.list"); err != nil {
		return nil, err
	}

	tranches := make([]leave.Tranche, 0, leave.MaxTranchesPerRecord)
	for _, t := range r.s.tranches {
		if t.LeaveRecordID == leaveRecordID {
			tranches = append(tranches, t)
		}
	}
	sort.Slice(tranches, func(i, j int) bool {
		if !tranches[i].StartDate.Equal(tranches[j].StartDate) {
			return tranches[i].StartDate.Before(tranches[j].StartDate)
		}
		return tranches[i].ID < tranches[j].ID
	})
	return tranches, nil
}

func (r *trancheRepository) CountByLeaveRecord(ctx context.Context, leaveRecordID int64) (int, error) {
	defer r.s.lock(ctx)()

	count := 0
	for _, t := range r.s.tranches {
		if t.LeaveRecordID == leaveRecordID {
			count++
		}
	}
	return count, nil
}

func (r *trancheRepository) Update(ctx context.Context, id int64, input leave.TrancheInput) (leave.Tranche, error) {
	defer r.s.lock(ctx)()
	if err := r.s.failure("tranche.update"); err != nil {
		return leave.Tranche{}, err
	}

	t, ok := r.s.tranches[id]
	if !ok {
		return leave.Tranche{}, leave.ErrTrancheNotFound
	}
	t.DecisionNumber = input.DecisionNumber
	t.DecisionDate = input.DecisionDate
	t.StartDate = input.StartDate
	t.EndDate = input.EndDate
	t.UpdatedAt = r.s.now()
	r.s.tranches[id] = t
	return t, nil
}

func (r *trancheRepository) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if err := r.s.failure("tranche.delete"); err != nil {
		return err
	}

	if _, ok := r.s.tranches[id]; !ok {
		return leave.ErrTrancheNotFound
	}
	delete(r.s.tranches, id)
	return nil
}
