package audit

import "context"

// Log records history entries. Callers treat it as fire-and-forget: a
// failure is reported but never undoes the change being logged.
type Log interface {
	Record(ctx context.Context, entry Entry) error
}
