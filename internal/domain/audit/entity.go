package audit

import (
	"context"
	"time"
)

// Entry is one line of the history trail. Keep it transport-agnostic so
// stores and sinks can fan out.
type Entry struct {
	ID         string
	Event      string
	Details    string
	Refs       map[string]any
	ActorID    *string
	OccurredAt time.Time
}

const (
	EventLeaveRecordCreated = "leave_record.created"
	EventAllocationAdjusted = "leave_record.allocation_adjusted"
	EventTrancheCreated     = "tranche.created"
	EventTrancheUpdated     = "tranche.updated"
	EventTrancheDeleted     = "tranche.deleted"
)

type actorKey struct{}

// WithActor returns a context carrying the ID of the user performing the
// change.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor set by WithActor, or nil.
func ActorFromContext(ctx context.Context) *string {
	actorID, ok := ctx.Value(actorKey{}).(string)
	if !ok || actorID == "" {
		return nil
	}
	return &actorID
}
