package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "2 units")
	err := tm.Track("demo", "emit", func() error { return errors.New("boom") })
	if err == nil {
		t.Fatalf("Track must return fn's error")
	}
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected two phases, got %d", len(r.Phases))
	}
	if r.Phases[0].Note != "2 units" || r.Phases[1].Unit != "demo" || r.Phases[1].Note != "failed" {
		t.Fatalf("unexpected phases %+v", r.Phases)
	}
	s := tm.Summary()
	if !strings.Contains(s, "demo/emit") || !strings.Contains(s, "total") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestTimerIsSafeForParallelUnits(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.BeginUnit("u", "plan"), "")
		}()
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 8 {
		t.Fatalf("expected 8 phases, got %d", n)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
}
