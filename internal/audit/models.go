package audit

import (
	"sort"
	"strconv"
	"time"

	"edge-authorizer/internal/invocation"
)

// Record is one lifecycle occurrence written to the audit store.
//
// Invariants:
// - ID is generated at write time and is the store's primary key.
// - ExpiresAt is exactly RecordTTL after CreatedAt, in epoch seconds.
// - Records are never updated once written.
// - A missing record is never an error signal; the trail is diagnostic only.
type Record struct {
	ID        string
	CreatedAt time.Time
	EventType EventType

	// Copied verbatim from the invocation context.
	FunctionName    string
	FunctionVersion string
	RequestID       string
	MemoryLimitMB   int

	ExpiresAt int64

	// Extra holds stage-specific attributes. Its keys win over the fixed
	// attributes in Item(); ID and ExpiresAt stay authoritative for the store.
	Extra map[string]string
}

type EventType string

const (
	EventTypeAuthorizerInvoke EventType = "AUTHORIZER_INVOKE"
	EventTypeInvoke           EventType = "INVOKE"
)

const (
	// RecordTTL is the absolute lifetime of every record.
	RecordTTL = 20 * time.Minute

	// TimestampLayout is ISO-8601 with microseconds, always rendered in UTC.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

	MaxExtraKeys     = 32
	MaxExtraValueLen = 1024
)

// Attribute names of the flattened item.
const (
	AttrEventID         = "eventId"
	AttrTimestamp       = "timestamp"
	AttrEventType       = "eventType"
	AttrFunctionName    = "functionName"
	AttrFunctionVersion = "functionVersion"
	AttrRequestID       = "requestId"
	AttrMemoryLimit     = "memoryLimit"
	AttrTTL             = "ttl"
)

// NewRecord captures an invocation at instant now.
func NewRecord(id string, now time.Time, eventType EventType, inv invocation.Context, extra map[string]string) Record {
	now = now.UTC()
	return Record{
		ID:              id,
		CreatedAt:       now,
		EventType:       eventType,
		FunctionName:    inv.FunctionName,
		FunctionVersion: inv.FunctionVersion,
		RequestID:       inv.RequestID,
		MemoryLimitMB:   inv.MemoryLimitMB,
		ExpiresAt:       now.Unix() + int64(RecordTTL/time.Second),
		Extra:           boundExtra(extra),
	}
}

func (r Record) Timestamp() string {
	return r.CreatedAt.UTC().Format(TimestampLayout)
}

// Item flattens the record into store attributes. Extra is merged last.
func (r Record) Item() map[string]any {
	item := map[string]any{
		AttrEventID:         r.ID,
		AttrTimestamp:       r.Timestamp(),
		AttrEventType:       string(r.EventType),
		AttrFunctionName:    r.FunctionName,
		AttrFunctionVersion: r.FunctionVersion,
		AttrRequestID:       r.RequestID,
		AttrMemoryLimit:     r.MemoryLimitMB,
		AttrTTL:             r.ExpiresAt,
	}
	for k, v := range r.Extra {
		item[k] = v
	}
	return item
}

// LogAttrs keeps log lines short: identity and expiry only.
func (r Record) LogAttrs() []any {
	return []any{
		"event_id", r.ID,
		"event_type", string(r.EventType),
		"request_id", r.RequestID,
		"ttl", strconv.FormatInt(r.ExpiresAt, 10),
	}
}

// boundExtra copies extra, keeping at most MaxExtraKeys keys (lexical order)
// and truncating values to MaxExtraValueLen bytes.
func boundExtra(extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MaxExtraKeys {
		keys = keys[:MaxExtraKeys]
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v := extra[k]
		if len(v) > MaxExtraValueLen {
			v = v[:MaxExtraValueLen]
		}
		out[k] = v
	}
	return out
}
