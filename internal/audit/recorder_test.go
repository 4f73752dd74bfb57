package audit

import (
	"context"
	"errors"
	"testing"

	"cairn/api/internal/store"
)

type fakeSink struct {
	entries []store.AuditEntry
	err     error
}

func (f *fakeSink) InsertAuditEntry(_ context.Context, entry store.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func TestRecordStampsPerformedAt(t *testing.T) {
	sink := &fakeSink{}
	rec := NewRecorder(sink)

	rec.Record(context.Background(), store.AuditEntry{
		ProjectID:   "p1",
		EntityType:  "decision_record",
		EntityID:    "r1",
		Action:      "created",
		PerformedBy: "Avery",
	})

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	if sink.entries[0].PerformedAt.IsZero() {
		t.Fatal("expected PerformedAt to be stamped")
	}
}

func TestRecordSwallowsSinkFailure(t *testing.T) {
	rec := NewRecorder(&fakeSink{err: errors.New("sink down")})

	// Must not panic or propagate; the primary operation's outcome is
	// independent of the audit sink.
	rec.Record(context.Background(), store.AuditEntry{Action: "updated"})
}
