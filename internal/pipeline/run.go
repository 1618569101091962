package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bridgegen/internal/decl"
	"bridgegen/internal/observ"
	"bridgegen/internal/trace"
	"bridgegen/internal/version"
)

// Unit is one graph file and the configuration it is generated with.
type Unit struct {
	Name      string
	GraphPath string
	OutDir    string
	Config    Config
}

// Options control a run.
type Options struct {
	// Jobs bounds the number of units generated at once; <= 0 means GOMAXPROCS.
	Jobs  int
	Cache *DiskCache
	Sink  ProgressSink
	Timer *observ.Timer
	// DryRun skips writing artifacts.
	DryRun bool
}

// Run generates every unit. Units share nothing, so a failing unit does not
// stop the others; the returned error joins every unit failure. Results are
// returned in input order.
func Run(ctx context.Context, units []Unit, opts Options) ([]*Result, error) {
	results := make([]*Result, len(units))
	if len(units) == 0 {
		return results, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeRun, "generate")
	defer span.End("")

	for _, u := range units {
		notify(opts.Sink, Event{Unit: u.Name, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i := range units {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{Unit: units[i].Name, Err: err}
				return err
			}
			results[i] = runUnit(gctx, units[i], opts)
			return nil
		})
	}
	waitErr := g.Wait()

	var errs []error
	for _, res := range results {
		if res != nil && res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if waitErr != nil && len(errs) == 0 {
		errs = append(errs, waitErr)
	}
	span.WithExtra("units", fmt.Sprint(len(units)))
	return results, errors.Join(errs...)
}

func runUnit(ctx context.Context, u Unit, opts Options) (res *Result) {
	ctx, span := trace.Start(ctx, trace.ScopeUnit, u.Name)
	start := time.Now()
	log := Logger().With(zap.String("unit", u.Name))
	defer func() {
		if r := recover(); r != nil {
			res = &Result{Unit: u.Name, Err: fmt.Errorf("%s: internal error: %v", u.Name, r)}
		}
		status := StatusDone
		switch {
		case res.Err != nil:
			status = StatusError
			log.Warn("unit failed", zap.Error(res.Err))
		case res.Cached:
			status = StatusCached
		}
		notify(opts.Sink, Event{Unit: u.Name, Status: status, Err: res.Err, Elapsed: time.Since(start)})
		span.End(string(status))
	}()

	sr := &stageRunner{ctx: ctx, unit: u.Name, sink: opts.Sink, timer: opts.Timer}
	graph, err := os.ReadFile(u.GraphPath)
	if err != nil {
		return &Result{Unit: u.Name, Err: fmt.Errorf("failed to read graph %q: %w", u.GraphPath, err)}
	}

	key := UnitDigest(graph, u.Config)
	if entry, ok, err := opts.Cache.Get(key); err != nil {
		log.Warn("cache read failed", zap.Error(err))
	} else if ok {
		log.Debug("cache hit", zap.Stringer("key", key))
		res = &Result{
			Unit:     u.Name,
			Files:    entry.Files,
			Symbols:  entry.Symbols,
			Elements: entry.Elements,
			Cached:   true,
		}
		res.Err = writeStage(sr, u, res, opts.DryRun)
		return res
	}

	res, err = generate(sr, graph, decl.FormatForPath(u.GraphPath), u.Config)
	if err != nil {
		res.Err = err
		return res
	}
	if err := opts.Cache.Put(key, &CacheEntry{
		Generator: version.Version,
		Unit:      u.Name,
		Files:     res.Files,
		Symbols:   res.Symbols,
		Elements:  res.Elements,
	}); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
	res.Err = writeStage(sr, u, res, opts.DryRun)
	return res
}

func writeStage(sr *stageRunner, u Unit, res *Result, dryRun bool) error {
	if sr.timings == nil {
		sr.timings = &res.Timings
	}
	if dryRun {
		return nil
	}
	return sr.run(StageWrite, func(context.Context) error {
		written, err := WriteFiles(u.OutDir, res.Files)
		res.Written = written
		if err != nil {
			return fmt.Errorf("%s: %w", u.Name, err)
		}
		return nil
	})
}

// WriteFiles writes files into dir, creating it if needed, and returns the
// written paths in name order.
func WriteFiles(dir string, files map[string]string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	r := &Result{Files: files}
	written := make([]string, 0, len(files))
	for _, name := range r.FileNames() {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(files[name]), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// TotalBytes sums the sizes of the artifacts of results.
func TotalBytes(results []*Result) uint64 {
	var total uint64
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, body := range res.Files {
			n, err := safecast.Conv[uint64](len(body))
			if err != nil {
				continue
			}
			total += n
		}
	}
	return total
}

func notify(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
