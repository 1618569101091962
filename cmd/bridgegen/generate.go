package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bridgegen/internal/diagfmt"
	"bridgegen/internal/observ"
	"bridgegen/internal/pipeline"
	"bridgegen/internal/target"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] [graph...]",
	Short: "Generate export bridges from declaration graphs",
	Long: `Generate the C header, C++ source and export list for each graph file.
Without arguments the graphs listed in bridgegen.toml are used.`,
	RunE: generateExecution,
}

func init() {
	generateCmd.Flags().StringP("out", "o", "", "output directory (default: [output].dir or the current directory)")
	generateCmd.Flags().String("name", "", "library name the export prefix is derived from")
	generateCmd.Flags().String("prefix", "", "override the export-name prefix")
	generateCmd.Flags().String("platform", "", "target platform (linux|macos|windows)")
	generateCmd.Flags().Bool("emit-bridges", false, "also write the bridge LLVM IR")
	generateCmd.Flags().IntP("jobs", "j", 0, "units generated in parallel (0 = GOMAXPROCS)")
	generateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	generateCmd.Flags().Bool("no-cache", false, "disable the generation cache")
	generateCmd.Flags().Bool("clear-cache", false, "drop every cached unit before generating")
	generateCmd.Flags().Bool("dry-run", false, "generate without writing files")
}

type generateFlags struct {
	out         string
	name        string
	prefix      string
	platform    string
	emitBridges bool
	jobs        int
	ui          string
	noCache     bool
	clearCache  bool
	dryRun      bool
}

func readGenerateFlags(cmd *cobra.Command) (generateFlags, error) {
	var (
		f   generateFlags
		err error
	)
	flags := cmd.Flags()
	if f.out, err = flags.GetString("out"); err != nil {
		return f, err
	}
	if f.name, err = flags.GetString("name"); err != nil {
		return f, err
	}
	if f.prefix, err = flags.GetString("prefix"); err != nil {
		return f, err
	}
	if f.platform, err = flags.GetString("platform"); err != nil {
		return f, err
	}
	if f.emitBridges, err = flags.GetBool("emit-bridges"); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, err
	}
	if f.ui, err = flags.GetString("ui"); err != nil {
		return f, err
	}
	if f.noCache, err = flags.GetBool("no-cache"); err != nil {
		return f, err
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return f, err
	}
	if f.dryRun, err = flags.GetBool("dry-run"); err != nil {
		return f, err
	}
	return f, nil
}

func generateExecution(cmd *cobra.Command, args []string) error {
	flags, err := readGenerateFlags(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	mode, err := readUIMode(flags.ui)
	if err != nil {
		return err
	}

	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	units, err := planUnits(manifest, flags, args, maxDiagnostics)
	if err != nil {
		return err
	}

	opts := pipeline.Options{Jobs: flags.jobs, DryRun: flags.dryRun}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}
	if !flags.noCache {
		cache, err := pipeline.OpenDiskCache("bridgegen")
		if err != nil {
			cliLogger.Warn("generation cache unavailable", zap.Error(err))
		} else {
			if flags.clearCache {
				if err := cache.DropAll(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
			}
			opts.Cache = cache
		}
	}

	var results []*pipeline.Result
	var runErr error
	if shouldUseTUI(mode, quiet || machineOutput(cmd)) {
		results, runErr = runWithUI(cmd.Context(), "generate", units, opts)
	} else {
		results, runErr = pipeline.Run(cmd.Context(), units, opts)
	}

	bags := make([]diagfmt.UnitBag, 0, len(results))
	for _, res := range results {
		if res != nil {
			bags = append(bags, diagfmt.UnitBag{Unit: res.Unit, Bag: res.Bag})
		}
	}
	if err := reportDiagnostics(cmd, bags); err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, quiet || machineOutput(cmd))
	if showTimings {
		format, err := cmd.Root().PersistentFlags().GetString("timings-format")
		if err != nil {
			return fmt.Errorf("failed to get timings-format flag: %w", err)
		}
		if err := printTimings(cmd.ErrOrStderr(), opts.Timer, results, format); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("generation failed for %d of %d units", failedCount(results), len(units))
	}
	return nil
}

// planUnits turns graph paths and configuration into pipeline units. Flags
// override the manifest. With several graphs each unit is named after its
// graph file so prefixes stay distinct.
func planUnits(manifest *projectManifest, flags generateFlags, args []string, maxDiagnostics int) ([]pipeline.Unit, error) {
	var base pipeline.Config
	graphs := args
	outDir := "."
	platform := flags.platform
	if manifest != nil {
		base.Name = manifest.Config.Module.Name
		base.Prefix = manifest.Config.Module.Prefix
		base.EmitBridges = manifest.Config.Output.EmitBridges
		outDir = manifest.outputDir()
		if platform == "" {
			platform = manifest.Config.Target.Platform
		}
		if len(graphs) == 0 {
			graphs = manifest.graphPaths()
		}
	}
	if len(graphs) == 0 {
		return nil, errors.New("no graph files given and no [module].graphs in " + manifestFileName)
	}
	if flags.out != "" {
		outDir = flags.out
	}
	if flags.name != "" {
		base.Name = flags.name
	}
	if flags.prefix != "" {
		base.Prefix = flags.prefix
	}
	if flags.emitBridges {
		base.EmitBridges = true
	}
	p, err := target.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}
	base.Platform = p
	base.MaxDiagnostics = maxDiagnostics

	units := make([]pipeline.Unit, 0, len(graphs))
	seen := make(map[string]string, len(graphs))
	for _, g := range graphs {
		name := pipeline.UnitName(g)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("graphs %q and %q map to the same unit %q", prev, g, name)
		}
		seen[name] = g
		cfg := base
		if len(graphs) > 1 {
			cfg.Name = name
			cfg.Prefix = ""
		}
		units = append(units, pipeline.Unit{Name: name, GraphPath: g, OutDir: outDir, Config: cfg})
	}
	return units, nil
}

func printResults(out, errOut io.Writer, results []*pipeline.Result, quiet bool) {
	okLabel := color.New(color.FgGreen, color.Bold)
	cachedLabel := color.New(color.FgCyan, color.Bold)
	failLabel := color.New(color.FgRed, color.Bold)
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Err != nil {
			fmt.Fprintf(errOut, "%s %v\n", failLabel.Sprint("failed"), res.Err)
			continue
		}
		if quiet {
			continue
		}
		label := okLabel.Sprint("generated")
		if res.Cached {
			label = cachedLabel.Sprint("cached")
		}
		fmt.Fprintf(out, "%s %s: %d elements, %s\n", label, res.Unit, res.Elements, strings.Join(res.FileNames(), " "))
	}
}

func failedCount(results []*pipeline.Result) int {
	n := 0
	for _, res := range results {
		if res != nil && res.Err != nil {
			n++
		}
	}
	return n
}
