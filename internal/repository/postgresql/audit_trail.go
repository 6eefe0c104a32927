package postgresql

import (
	"context"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type auditTrailRepositoryImpl struct {
	db *database.DB
}

func NewAuditTrailRepository(db *database.DB) audit.Log {
	return &auditTrailRepositoryImpl{db: db}
}

// Record implements audit.Log. It always writes through the pool so that an
// entry never depends on a caller's transaction.
func (r *auditTrailRepositoryImpl) Record(ctx context.Context, entry audit.Entry) error {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		entry.ID = id.String()
	}
	refs := entry.Refs
	if refs == nil {
		refs = map[string]any{}
	}

	query := `
		INSERT INTO audit_trails (id, event, details, refs, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	`

	var occurredAt any
	if !entry.OccurredAt.IsZero() {
		occurredAt = entry.OccurredAt
	}

	_, err := r.db.Exec(ctx, query, entry.ID, entry.Event, entry.Details, refs, entry.ActorID, occurredAt)
	return err
}
