package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gagebu/internal/session"
)

func newTestArchiver(t *testing.T) *Archiver {
	t.Helper()
	a, err := NewArchiver(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestHandleSaveEvent(t *testing.T) {
	a := newTestArchiver(t)

	ev := session.SaveEvent{
		SessionID: "s-1",
		Store:     "sqlite",
		Deleted:   1,
		Updated:   2,
		Inserted:  3,
		Rows:      10,
		SavedAt:   time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	if err := a.HandleSaveEvent(ev); err != nil {
		t.Fatal(err)
	}

	events, err := a.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("archived %d events", len(events))
	}
	got := events[0]
	if got.SessionID != "s-1" || got.Deleted != 1 || got.Updated != 2 || got.Inserted != 3 || got.Rows != 10 {
		t.Errorf("event = %+v", got)
	}
	if !got.SavedAt.Equal(ev.SavedAt) {
		t.Errorf("saved_at = %v, want %v", got.SavedAt, ev.SavedAt)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	a := newTestArchiver(t)

	for i := 0; i < 5; i++ {
		ev := session.SaveEvent{
			SessionID: "s-1",
			Store:     "memory",
			Rows:      i,
			SavedAt:   time.Now().UTC(),
		}
		if err := a.HandleSaveEvent(ev); err != nil {
			t.Fatal(err)
		}
	}

	events, err := a.Recent(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	for i, ev := range events {
		if ev.Rows != 4-i {
			t.Errorf("event %d rows = %d, want newest first", i, ev.Rows)
		}
	}
}

func TestRecentEmpty(t *testing.T) {
	a := newTestArchiver(t)
	events, err := a.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events from empty archive", len(events))
	}
}
