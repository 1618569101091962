// Package observ measures generation phases for --timings output.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one measured step of a run.
type Phase struct {
	Name  string
	Unit  string // empty for run-wide phases
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases. Units generated in parallel share one Timer.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	start  time.Time
}

// NewTimer returns an empty timer anchored at now.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), start: time.Now()}
}

// Begin opens a run-wide phase and returns its index.
func (t *Timer) Begin(name string) int { return t.BeginUnit("", name) }

// BeginUnit opens a phase of one unit and returns its index.
func (t *Timer) BeginUnit(unit, name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Unit: unit, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase at idx. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Track runs fn as a phase.
func (t *Timer) Track(unit, name string, fn func() error) error {
	idx := t.BeginUnit(unit, name)
	err := fn()
	note := ""
	if err != nil {
		note = "failed"
	}
	t.End(idx, note)
	return err
}

// PhaseReport is the serialized form of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	Unit       string  `json:"unit,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates a timer. TotalMS is wall time since NewTimer, so
// overlapping unit phases are not double counted.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the timer.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	end := t.start
	for i, p := range t.phases {
		report.Phases[i] = PhaseReport{Name: p.Name, Unit: p.Unit, DurationMS: millis(p.Dur), Note: p.Note}
		if stop := p.Start.Add(p.Dur); stop.After(end) {
			end = stop
		}
	}
	report.TotalMS = millis(end.Sub(t.start))
	return report
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		name := p.Name
		if p.Unit != "" {
			name = p.Unit + "/" + p.Name
		}
		fmt.Fprintf(&b, "  %-28s %8.2f ms", name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-28s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
