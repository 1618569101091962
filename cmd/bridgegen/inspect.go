package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bridgegen/internal/adapter"
	"bridgegen/internal/backend"
	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
	"bridgegen/internal/diag"
	"bridgegen/internal/export"
	"bridgegen/internal/pipeline"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <graph>",
	Short: "Print the export scope tree of a declaration graph",
	Args:  cobra.ExactArgs(1),
	RunE:  inspectExecution,
}

func init() {
	inspectCmd.Flags().String("prefix", "", "export-name prefix (default: derived from the module name)")
	inspectCmd.Flags().Bool("signatures", false, "show the C signature of every element")
	inspectCmd.Flags().Bool("bridges", false, "show bridge and adapter names")
}

func inspectExecution(cmd *cobra.Command, args []string) error {
	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}
	showSignatures, err := cmd.Flags().GetBool("signatures")
	if err != nil {
		return err
	}
	showBridges, err := cmd.Flags().GetBool("bridges")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read graph %q: %w", path, err)
	}
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	mod, err := decl.Parse(data, decl.FormatForPath(path), rep)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if bag.HasErrors() {
		if err := reportDiagnostics(cmd, singleBag(mod.Name, bag)); err != nil {
			return err
		}
		return fmt.Errorf("%s: %w", path, pipeline.ErrGraphErrors)
	}

	cfg := pipeline.Config{Prefix: prefix}
	root := export.Build(mod, cabi.NewTranslator(mod.Types, pipeline.PrefixFor(cfg, mod.Name)), rep)
	plans, err := adapter.Build(root, &backend.Recorder{})
	if err != nil {
		return err
	}

	p := treePrinter{
		out:        cmd.OutOrStdout(),
		plans:      plans,
		signatures: showSignatures,
		bridges:    showBridges,
	}
	p.scope(root, 0)
	return reportDiagnostics(cmd, singleBag(mod.Name, bag))
}

type treePrinter struct {
	out        io.Writer
	plans      *adapter.Set
	signatures bool
	bridges    bool
}

var (
	scopeStyle = color.New(color.FgBlue, color.Bold)
	kindStyle  = color.New(color.FgYellow)
	shortStyle = color.New(color.FgGreen)
	dimStyle   = color.New(color.Faint)
)

func (p treePrinter) scope(s *export.Scope, depth int) {
	indent := strings.Repeat("  ", depth)
	label := s.Kind.String()
	if s.FQName != "" {
		label += " " + s.FQName
	}
	fmt.Fprintf(p.out, "%s%s %s\n", indent, scopeStyle.Sprint(s.Name), dimStyle.Sprintf("(%s)", label))
	for _, e := range s.Elements {
		p.element(e, depth+1)
	}
	for _, c := range s.Children {
		p.scope(c, depth+1)
	}
}

func (p treePrinter) element(e *export.Element, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(e.Name)
	b.WriteString(" ")
	b.WriteString(kindStyle.Sprint(e.Kind.String()))
	plan := p.plans.For(e)
	if p.signatures {
		fmt.Fprintf(&b, " %s(%s)", plan.PublicReturn(), plan.PublicParams())
	}
	if e.ShortName != "" {
		b.WriteString(" ")
		b.WriteString(shortStyle.Sprint("extern " + e.ShortName))
	}
	if p.bridges {
		b.WriteString(" ")
		if plan.Kind == adapter.PlanCall {
			b.WriteString(dimStyle.Sprintf("[%s -> %s]", plan.Adapter, e.BridgeName()))
		} else {
			b.WriteString(dimStyle.Sprintf("[%s]", plan.Adapter))
		}
	}
	fmt.Fprintln(p.out, b.String())
}
