package audit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutIsIdempotentPerID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	first := NewRecord("same", now, EventTypeInvoke, testInvocation(), map[string]string{"v": "1"})
	second := NewRecord("same", now, EventTypeInvoke, testInvocation(), map[string]string{"v": "2"})

	if err := s.Put(ctx, first, first.ExpiresAt); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, second, second.ExpiresAt); err != nil {
		t.Fatalf("second put: %v", err)
	}

	recs := s.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Extra["v"] != "1" {
		t.Fatalf("expected first write kept")
	}
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(context.Background(), Record{}, 1); err != ErrInvalidRecord {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestMemoryStore_ExpiryHidesAndPurgeRemoves(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewMemoryStore()
	s.SetClock(func() time.Time { return now })

	r := NewRecord("r1", now, EventTypeInvoke, testInvocation(), nil)
	if err := s.Put(context.Background(), r, r.ExpiresAt); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(RecordTTL - time.Second)
	if len(s.Records()) != 1 {
		t.Fatalf("expected live record before expiry")
	}

	now = now.Add(time.Second)
	if len(s.Records()) != 0 {
		t.Fatalf("expected record hidden at expiry")
	}
	if s.Len() != 1 {
		t.Fatalf("expected record still physically present before purge")
	}

	n, err := s.Purge(context.Background(), now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 || s.Len() != 0 {
		t.Fatalf("expected 1 purged and empty store, got n=%d len=%d", n, s.Len())
	}
}

func TestMemoryStore_HonorsCanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Put(ctx, Record{ID: "x"}, 1); err == nil {
		t.Fatalf("expected context error")
	}
}
