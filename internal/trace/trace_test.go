package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeRun, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeUnit, false},
		{LevelDetail, ScopeUnit, true},
		{LevelDetail, ScopeElement, false},
		{LevelDebug, ScopeElement, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("unknown level must fail")
	}
}

func TestRingKeepsLatestEvents(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"load", "export", "emit"} {
		Begin(r, ScopePhase, name, 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "export" || snap[1].Name != "emit" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}
}

func TestChromeStreamIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	ctx := WithTracer(context.Background(), st)
	ctx, run := Start(ctx, ScopeRun, "generate")
	_, unit := Start(ctx, ScopeUnit, "unit:demo")
	unit.WithExtra("elements", "3").End("")
	run.End("ok")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 4 {
		t.Fatalf("expected 4 events, got %d", len(doc.TraceEvents))
	}
}

func TestStartNestsSpans(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	ctx, outer := Start(ctx, ScopePhase, "emit")
	_, inner := Start(ctx, ScopeElement, "element:add")
	inner.End("")
	outer.End("")
	snap := r.Snapshot()
	if snap[1].ParentID != outer.ID() {
		t.Fatalf("inner span must point at outer, got parent %d", snap[1].ParentID)
	}
}

func TestDisabledTracerIsInert(t *testing.T) {
	s := Begin(Nop, ScopeRun, "x", 0)
	if s.ID() != 0 || s.End("") != 0 {
		t.Fatalf("nop spans must be inert")
	}
	if StartHeartbeat(Nop, 1) != nil {
		t.Fatalf("heartbeat must not start without tracing")
	}
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level must yield a disabled tracer")
	}
}
