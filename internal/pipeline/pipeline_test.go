package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bridgegen/internal/decl"
	"bridgegen/internal/observ"
	"bridgegen/internal/target"
	"bridgegen/internal/trace"
)

const unitGraph = `
module = "demo"

[[package]]
name = ""

  [[package.decl]]
  kind = "fun"
  name = "add"
  params = ["a: Int", "b: Int"]
  returns = "Int"

  [[package.decl]]
  kind = "object"
  name = "Counter"

    [[package.decl.member]]
    kind = "fun"
    name = "next"
    returns = "Int"
`

const brokenGraph = `
module = "broken"

[[package]]
name = ""

  [[package.decl]]
  kind = "bogus"
  name = "x"
`

type recordingSink struct {
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) { s.events = append(s.events, ev) }

func writeGraph(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write graph: %v", err)
	}
	return p
}

func TestGenerateProducesArtifacts(t *testing.T) {
	res, err := Generate(context.Background(), "demo", []byte(unitGraph), decl.FormatTOML,
		Config{Platform: target.Windows, EmitBridges: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Prefix != "demo" {
		t.Fatalf("prefix = %q, want demo", res.Prefix)
	}
	want := []string{"demo.def", "demo_api.cpp", "demo_api.h", "demo_bridges.ll"}
	got := res.FileNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("files = %v, want %v", got, want)
	}
	if !strings.Contains(res.Files["demo_bridges.ll"], "x86_64-pc-windows-gnu") {
		t.Fatalf("bridge IR does not name the target triple")
	}
	for _, stage := range []Stage{StageLoad, StageScope, StageSignatures, StageEmit} {
		if !res.Timings.Has(stage) {
			t.Fatalf("missing timing for %s", stage)
		}
	}
	if res.Timings.Has(StageWrite) {
		t.Fatalf("Generate must not write")
	}
}

func TestGenerateRejectsBrokenGraph(t *testing.T) {
	res, err := Generate(context.Background(), "broken", []byte(brokenGraph), decl.FormatTOML, Config{})
	if !errors.Is(err, ErrGraphErrors) {
		t.Fatalf("err = %v, want ErrGraphErrors", err)
	}
	if res == nil || !res.Bag.HasErrors() {
		t.Fatalf("expected error diagnostics in the result")
	}
}

func TestPrefixFor(t *testing.T) {
	tests := []struct {
		cfg    Config
		module string
		want   string
	}{
		{Config{Prefix: "my-lib"}, "demo", "my_lib"},
		{Config{Name: "libfoo"}, "demo", "libfoo"},
		{Config{}, "demo", "demo"},
		{Config{}, "", "module"},
	}
	for _, tt := range tests {
		if got := PrefixFor(tt.cfg, tt.module); got != tt.want {
			t.Errorf("PrefixFor(%+v, %q) = %q, want %q", tt.cfg, tt.module, got, tt.want)
		}
	}
}

func TestUnitName(t *testing.T) {
	for path, want := range map[string]string{
		"graphs/demo.toml":    "demo",
		"demo.graph.msgpack":  "demo",
		"/abs/path/libfoo.mp": "libfoo",
	} {
		if got := UnitName(path); got != want {
			t.Errorf("UnitName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestUnitDigestTracksConfig(t *testing.T) {
	base := UnitDigest([]byte(unitGraph), Config{Name: "demo"})
	if base != UnitDigest([]byte(unitGraph), Config{Name: "demo"}) {
		t.Fatalf("digest is not deterministic")
	}
	for _, cfg := range []Config{
		{Name: "other"},
		{Name: "demo", Platform: target.MacOS},
		{Name: "demo", EmitBridges: true},
	} {
		if UnitDigest([]byte(unitGraph), cfg) == base {
			t.Errorf("config %+v does not change the digest", cfg)
		}
	}
	if UnitDigest([]byte(unitGraph+"\n"), Config{Name: "demo"}) == base {
		t.Errorf("graph bytes do not change the digest")
	}
}

func TestRunWritesAndCaches(t *testing.T) {
	dir := t.TempDir()
	graph := writeGraph(t, dir, "demo.toml", unitGraph)
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	units := []Unit{{Name: "demo", GraphPath: graph, OutDir: filepath.Join(dir, "out")}}

	sink := &recordingSink{}
	results, err := Run(context.Background(), units, Options{Jobs: 1, Cache: cache, Sink: sink, Timer: observ.NewTimer()})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if results[0].Cached {
		t.Fatalf("first run must not hit the cache")
	}
	header := filepath.Join(dir, "out", "demo_api.h")
	if _, err := os.Stat(header); err != nil {
		t.Fatalf("header not written: %v", err)
	}
	last := sink.events[len(sink.events)-1]
	if last.Status != StatusDone || last.Unit != "demo" {
		t.Fatalf("last event = %+v, want done for demo", last)
	}

	if err := os.Remove(header); err != nil {
		t.Fatal(err)
	}
	results, err = Run(context.Background(), units, Options{Jobs: 1, Cache: cache})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !results[0].Cached {
		t.Fatalf("second run should be served from the cache")
	}
	if _, err := os.Stat(header); err != nil {
		t.Fatalf("cached header not rewritten: %v", err)
	}
}

func TestRunKeepsGoingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	units := []Unit{
		{Name: "broken", GraphPath: writeGraph(t, dir, "broken.toml", brokenGraph), OutDir: dir},
		{Name: "demo", GraphPath: writeGraph(t, dir, "demo.toml", unitGraph), OutDir: dir},
		{Name: "missing", GraphPath: filepath.Join(dir, "missing.toml"), OutDir: dir},
	}
	results, err := Run(context.Background(), units, Options{Jobs: 2, DryRun: true})
	if err == nil {
		t.Fatalf("expected joined unit errors")
	}
	if results[0].Err == nil || results[2].Err == nil {
		t.Fatalf("broken and missing units must fail")
	}
	if results[1].Err != nil {
		t.Fatalf("demo unit failed: %v", results[1].Err)
	}
	if len(results[1].Written) != 0 {
		t.Fatalf("dry run wrote %v", results[1].Written)
	}
	if TotalBytes(results) == 0 {
		t.Fatalf("expected generated bytes")
	}
}

func TestCacheIgnoresOtherSchema(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := UnitDigest([]byte("x"), Config{})
	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := cache.Put(key, &CacheEntry{Unit: "x", Files: map[string]string{"a.h": "a"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	entry, ok, err := cache.Get(key)
	if err != nil || !ok || entry.Files["a.h"] != "a" {
		t.Fatalf("get: entry=%+v ok=%v err=%v", entry, ok, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatalf("entry survived DropAll")
	}
}

func TestGenerateTracesPhasesAndElements(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Generate(ctx, "demo", []byte(unitGraph), decl.FormatTOML, Config{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	phases := make(map[string]bool)
	points := 0
	for _, ev := range ring.Snapshot() {
		switch ev.Scope {
		case trace.ScopePhase:
			phases[ev.Name] = true
		case trace.ScopeElement:
			points++
			if ev.ParentID == 0 {
				t.Fatalf("element event %q has no parent span", ev.Name)
			}
		}
	}
	for _, stage := range []Stage{StageLoad, StageScope, StageSignatures, StageEmit} {
		if !phases[string(stage)] {
			t.Errorf("missing phase span %s", stage)
		}
	}
	if points == 0 {
		t.Errorf("expected per-element trace points")
	}
}
