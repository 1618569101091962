// Package pipeline drives generation of export bridges for one or more
// units: load the declaration graph, build the export tree, plan adapters,
// render the artifacts and write them out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"bridgegen/internal/adapter"
	"bridgegen/internal/backend/llvm"
	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
	"bridgegen/internal/diag"
	"bridgegen/internal/emit"
	"bridgegen/internal/export"
	"bridgegen/internal/observ"
	"bridgegen/internal/target"
	"bridgegen/internal/trace"
)

// ErrGraphErrors is returned when the declaration graph has error diagnostics.
var ErrGraphErrors = errors.New("declaration graph has errors")

const defaultMaxDiagnostics = 100

// Config is the effective configuration of one unit.
type Config struct {
	// Name is the library name; the export prefix is derived from it.
	Name string
	// Prefix overrides the derived export prefix.
	Prefix      string
	Platform    target.Platform
	EmitBridges bool
	// MaxDiagnostics caps the diagnostics kept per unit.
	MaxDiagnostics int
}

// PrefixFor returns the export prefix used for cfg. The module name of the
// graph is the fallback when the configuration names nothing.
func PrefixFor(cfg Config, moduleName string) string {
	switch {
	case cfg.Prefix != "":
		return cabi.Identifier(cfg.Prefix)
	case cfg.Name != "":
		return cabi.Identifier(cfg.Name)
	case moduleName != "":
		return cabi.Identifier(moduleName)
	default:
		return "module"
	}
}

// Result is the outcome of one unit.
type Result struct {
	Unit   string
	Prefix string
	// Files maps artifact file names to their contents.
	Files    map[string]string
	Symbols  []string
	Elements int
	Bag      *diag.Bag
	Cached   bool
	Written  []string
	Timings  Timings
	Err      error
}

// FileNames returns the artifact names in sorted order.
func (r *Result) FileNames() []string {
	names := make([]string, 0, len(r.Files))
	for name := range r.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stageRunner reports stage boundaries to the sink, the tracer and the timer.
type stageRunner struct {
	ctx     context.Context
	unit    string
	sink    ProgressSink
	timer   *observ.Timer
	timings *Timings
}

func (s *stageRunner) run(stage Stage, fn func(ctx context.Context) error) error {
	s.emit(Event{Unit: s.unit, Stage: stage, Status: StatusWorking})
	ctx, span := trace.Start(s.ctx, trace.ScopePhase, string(stage))
	start := time.Now()
	err := s.timer.Track(s.unit, string(stage), func() error { return fn(ctx) })
	elapsed := time.Since(start)
	s.timings.Set(stage, elapsed)
	if err != nil {
		span.WithExtra("error", err.Error())
	}
	span.End(s.unit)
	return err
}

func (s *stageRunner) emit(ev Event) {
	if s.sink != nil {
		s.sink.OnEvent(ev)
	}
}

// Generate runs load, scope, signatures and emit on graph bytes. Nothing is
// written to disk.
func Generate(ctx context.Context, unit string, graph []byte, format decl.Format, cfg Config) (*Result, error) {
	return generate(&stageRunner{ctx: ctx, unit: unit}, graph, format, cfg)
}

func generate(sr *stageRunner, graph []byte, format decl.Format, cfg Config) (*Result, error) {
	log := Logger().With(zap.String("unit", sr.unit))
	limit := cfg.MaxDiagnostics
	if limit <= 0 {
		limit = defaultMaxDiagnostics
	}
	res := &Result{Unit: sr.unit, Bag: diag.NewBag(limit)}
	if sr.timings == nil {
		sr.timings = &res.Timings
	}
	rep := diag.BagReporter{Bag: res.Bag}

	var mod *decl.Module
	err := sr.run(StageLoad, func(context.Context) error {
		var err error
		mod, err = decl.Parse(graph, format, rep)
		if err != nil {
			return err
		}
		if res.Bag.HasErrors() {
			return ErrGraphErrors
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("%s: %w", sr.unit, err)
	}

	res.Prefix = PrefixFor(cfg, mod.Name)
	var root *export.Scope
	_ = sr.run(StageScope, func(context.Context) error {
		root = export.Build(mod, cabi.NewTranslator(mod.Types, res.Prefix), rep)
		return nil
	})

	tgt := target.For(cfg.Platform)
	be := llvm.New(tgt.Triple)
	var plans *adapter.Set
	if err := sr.run(StageSignatures, func(ctx context.Context) error {
		var err error
		plans, err = adapter.Build(root, be)
		if err != nil {
			return err
		}
		tr := trace.FromContext(ctx)
		for _, p := range plans.Plans {
			trace.Point(tr, trace.ScopeElement, p.Adapter, p.Element.QualifiedName(), trace.ParentID(ctx))
		}
		return nil
	}); err != nil {
		return res, fmt.Errorf("%s: %w", sr.unit, err)
	}

	if err := sr.run(StageEmit, func(context.Context) error {
		out, err := emit.Generate(root, plans, tgt)
		if err != nil {
			return err
		}
		res.Files = out.Files()
		res.Symbols = out.Symbols
		if cfg.EmitBridges {
			ir, err := be.Finish()
			if err != nil {
				return fmt.Errorf("failed to render bridges: %w", err)
			}
			res.Files[res.Prefix+"_bridges.ll"] = ir
		}
		return nil
	}); err != nil {
		return res, fmt.Errorf("%s: %w", sr.unit, err)
	}

	res.Elements = len(plans.Plans)
	log.Debug("unit generated",
		zap.String("prefix", res.Prefix),
		zap.Int("elements", res.Elements),
		zap.Int("bridges", be.Len()),
		zap.Int("diagnostics", res.Bag.Len()))
	return res, nil
}

// UnitName derives a unit name from a graph path: the base name without
// extension.
func UnitName(path string) string {
	base := filepath.Base(path)
	if idx := strings.IndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}
