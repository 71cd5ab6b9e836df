package audit

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
)

// Store is the persistence contract for audit records.
//
// Implementations must:
// - treat Record.ID as the primary key; writing the same id twice is a no-op
// - physically remove the record at or after ttlEpochSeconds
// - return once ctx is done; the Recorder's write timeout is only a bound
//   for stores that honour ctx
//
// There is no read, update or delete in the contract.
type Store interface {
	Put(ctx context.Context, r Record, ttlEpochSeconds int64) error
}

var (
	ErrNilStore      = errors.New("audit: store not configured")
	ErrInvalidRecord = errors.New("audit: record id required")
)

// WriteError describes one failed write. It only ever reaches logs.
type WriteError struct {
	RecordID  string
	EventType EventType
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("audit: write %s (%s): %v", e.RecordID, e.EventType, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
