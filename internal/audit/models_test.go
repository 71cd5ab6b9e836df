package audit

import (
	"strings"
	"testing"
	"time"

	"edge-authorizer/internal/invocation"
)

func testInvocation() invocation.Context {
	return invocation.Context{FunctionName: "authorizer-function", FunctionVersion: "$LATEST", RequestID: "req-1", MemoryLimitMB: 128}
}

func TestNewRecord_ExpiryIsExactlyTwentyMinutes(t *testing.T) {
	for _, now := range []time.Time{
		time.Unix(1700000000, 0),
		time.Unix(1700000000, 999_999_999),
		time.Date(2026, 10, 19, 23, 59, 59, 500, time.FixedZone("x", 3600)),
	} {
		r := NewRecord("id", now, EventTypeInvoke, testInvocation(), nil)
		if r.ExpiresAt-r.CreatedAt.Unix() != 1200 {
			t.Fatalf("expected 1200s lifetime, got %d", r.ExpiresAt-r.CreatedAt.Unix())
		}
	}
}

func TestNewRecord_CopiesInvocationAndFormatsUTC(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.FixedZone("plus2", 2*3600))
	r := NewRecord("id-1", now, EventTypeAuthorizerInvoke, testInvocation(), nil)

	if r.FunctionName != "authorizer-function" || r.FunctionVersion != "$LATEST" || r.RequestID != "req-1" || r.MemoryLimitMB != 128 {
		t.Fatalf("invocation not copied: %+v", r)
	}
	if got := r.Timestamp(); got != "2026-01-02T01:04:05.000006Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}

func TestItem_ExtraOverridesFixedAttributes(t *testing.T) {
	r := NewRecord("id-1", time.Unix(1700000000, 0), EventTypeInvoke, testInvocation(), map[string]string{
		"path":         "/x",
		"functionName": "overridden",
	})
	item := r.Item()

	if item["path"] != "/x" {
		t.Fatalf("expected extra merged, got %v", item["path"])
	}
	if item[AttrFunctionName] != "overridden" {
		t.Fatalf("expected extra to win on collision, got %v", item[AttrFunctionName])
	}
	if item[AttrEventID] != "id-1" || item[AttrTTL] != int64(1700001200) || item[AttrEventType] != "INVOKE" {
		t.Fatalf("unexpected fixed attributes: %v", item)
	}
	// The struct fields stay authoritative.
	if r.FunctionName != "authorizer-function" {
		t.Fatalf("record mutated by extra")
	}
}

func TestNewRecord_BoundsExtra(t *testing.T) {
	extra := map[string]string{"": "dropped", "big": strings.Repeat("a", MaxExtraValueLen+10)}
	for i := 0; i < MaxExtraKeys+5; i++ {
		extra["k"+strings.Repeat("x", i)] = "v"
	}
	r := NewRecord("id", time.Now(), EventTypeInvoke, testInvocation(), extra)

	if len(r.Extra) != MaxExtraKeys {
		t.Fatalf("expected %d keys, got %d", MaxExtraKeys, len(r.Extra))
	}
	if _, ok := r.Extra[""]; ok {
		t.Fatalf("empty key should be dropped")
	}
	if len(r.Extra["big"]) != MaxExtraValueLen {
		t.Fatalf("expected value truncated to %d, got %d", MaxExtraValueLen, len(r.Extra["big"]))
	}
}

func TestNewRecord_CopiesExtra(t *testing.T) {
	extra := map[string]string{"a": "1"}
	r := NewRecord("id", time.Now(), EventTypeInvoke, testInvocation(), extra)
	extra["a"] = "2"
	if r.Extra["a"] != "1" {
		t.Fatalf("record must not alias caller map")
	}
}
