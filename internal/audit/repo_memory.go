package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with clock-driven expiry.
// It backs the local environment and tests.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	order []string
	now   func() time.Time
}

type memoryItem struct {
	record    Record
	expiresAt int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

// SetClock replaces the expiry clock.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Put(ctx context.Context, r Record, ttlEpochSeconds int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; ok {
		return nil
	}
	s.items[r.ID] = memoryItem{record: r, expiresAt: ttlEpochSeconds}
	s.order = append(s.order, r.ID)
	return nil
}

// Records returns live records in write order.
func (s *MemoryStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		it, ok := s.items[id]
		if !ok || it.expiresAt <= now {
			continue
		}
		out = append(out, it.record)
	}
	return out
}

// Purge physically removes records whose expiry is at or before now.
func (s *MemoryStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Unix()
	var removed int64
	kept := s.order[:0]
	for _, id := range s.order {
		if s.items[id].expiresAt <= cutoff {
			delete(s.items, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}

// Len counts stored records, expired ones included until purged.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
