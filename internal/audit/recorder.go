// Package audit appends immutable audit entries. Recording is strictly
// best-effort: a sink failure is logged and swallowed so it can never
// fail the operation that triggered it.
package audit

import (
	"context"
	"log"
	"time"

	"cairn/api/internal/store"
)

// Sink is the append-only surface the recorder writes to.
type Sink interface {
	InsertAuditEntry(ctx context.Context, entry store.AuditEntry) error
}

type Recorder struct {
	sink Sink
}

func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Record appends one audit entry for a state-changing operation.
// PerformedAt is stamped here if the caller left it zero.
func (r *Recorder) Record(ctx context.Context, entry store.AuditEntry) {
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now()
	}
	if err := r.sink.InsertAuditEntry(ctx, entry); err != nil {
		log.Printf("audit: record %s %s/%s: %v", entry.Action, entry.EntityType, entry.EntityID, err)
	}
}
