package audit

import (
	"context"
	"testing"
	"time"

	"edge-authorizer/pkg/logger"
)

func TestSweeper_SweepOnceRemovesExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := NewMemoryStore()
	store.SetClock(func() time.Time { return now })

	old := NewRecord("old", now.Add(-RecordTTL), EventTypeInvoke, testInvocation(), nil)
	fresh := NewRecord("fresh", now, EventTypeInvoke, testInvocation(), nil)
	_ = store.Put(context.Background(), old, old.ExpiresAt)
	_ = store.Put(context.Background(), fresh, fresh.ExpiresAt)

	s := &Sweeper{Purger: store, Log: logger.Discard(), Now: func() time.Time { return now }}
	s.SweepOnce(context.Background())

	if store.Len() != 1 {
		t.Fatalf("expected 1 record left, got %d", store.Len())
	}
	if recs := store.Records(); len(recs) != 1 || recs[0].ID != "fresh" {
		t.Fatalf("expected fresh record kept, got %+v", recs)
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{Purger: NewMemoryStore(), Interval: time.Millisecond, Log: logger.Discard()}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop")
	}
}

func TestSweeper_RequiresPurger(t *testing.T) {
	s := &Sweeper{}
	if err := s.Run(context.Background()); err != ErrNilStore {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}
}

func TestSweeper_RunLeavesFieldsUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{Purger: NewMemoryStore()}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	for range 10 {
		s.SweepOnce(ctx)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	if s.Interval != 0 || s.Log != nil || s.Now != nil {
		t.Fatalf("expected defaults to stay local, got %+v", s)
	}
}
