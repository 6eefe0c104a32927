package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLog keeps audit entries in memory. Err, when set, is returned by
// every Record call.
type AuditLog struct {
	mu      sync.Mutex
	entries []audit.Entry
	Err     error
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Record(_ context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	a.entries = append(a.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries.
func (a *AuditLog) Entries() []audit.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Events returns the event names in recording order.
func (a *AuditLog) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	events := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		events = append(events, e.Event)
	}
	return events
}
