// Package memory provides in-memory implementations of the leave
// repositories, for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

// Store holds leave records and tranches behind a single mutex. A
// transaction holds the mutex for its whole duration and is rolled back from
// a snapshot when fn fails.
type Store struct {
	mu            sync.Mutex
	nextRecordID  int64
	nextTrancheID int64
	records       map[int64]leave.LeaveRecord
	tranches      map[int64]leave.Tranche
	failures      map[string]error
	now           func() time.Time
}

type txKey struct{}

func NewStore() *Store {
	return &Store{
		records:  make(map[int64]leave.LeaveRecord),
		tranches: make(map[int64]leave.Tranche),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// FailNext makes the next call of op return err. Ops are named
// "<repository>.<method>", e.g. "tranche.create".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// WithinTransaction implements leave.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock takes the store mutex unless ctx already runs inside one of its
// transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// failure pops the injected error for op. Caller holds the lock.
func (s *Store) failure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

type snapshot struct {
	nextRecordID  int64
	nextTrancheID int64
	records       map[int64]leave.LeaveRecord
	tranches      map[int64]leave.Tranche
}

func (s *Store) snapshot() snapshot {
	records := make(map[int64]leave.LeaveRecord, len(s.records))
	for k, v := range s.records {
		records[k] = v
	}
	tranches := make(map[int64]leave.Tranche, len(s.tranches))
	for k, v := range s.tranches {
		tranches[k] = v
	}
	return snapshot{
		nextRecordID:  s.nextRecordID,
		nextTrancheID: s.nextTrancheID,
		records:       records,
		tranches:      tranches,
	}
}

func (s *Store) restore(snap snapshot) {
	s.nextRecordID = snap.nextRecordID
	s.nextTrancheID = snap.nextTrancheID
	s.records = snap.records
	s.tranches = snap.tranches
}
