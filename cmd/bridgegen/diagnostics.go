package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bridgegen/internal/diag"
	"bridgegen/internal/diagfmt"
	"bridgegen/internal/version"
)

// reportDiagnostics renders the bags in the --diag-format format. Machine
// formats go to stdout and are printed even when empty; text formats go to
// stderr and respect --quiet except for errors.
func reportDiagnostics(cmd *cobra.Command, bags []diagfmt.UnitBag) error {
	flags := cmd.Root().PersistentFlags()
	format, err := diagFormat(cmd)
	if err != nil {
		return err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	switch format {
	case diagfmt.FormatJSON:
		return diagfmt.JSON(cmd.OutOrStdout(), bags, diagfmt.JSONOpts{Max: maxDiagnostics, IncludeNotes: true})
	case diagfmt.FormatSarif:
		return diagfmt.Sarif(cmd.OutOrStdout(), bags, diagfmt.SarifRunMeta{
			ToolName:       "bridgegen",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}

	for _, ub := range bags {
		if ub.Bag == nil || ub.Bag.Len() == 0 || (quiet && !ub.Bag.HasErrors()) {
			continue
		}
		ub.Bag.Sort()
		ub.Bag.Dedup()
		if format == diagfmt.FormatPretty {
			opts := diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true}
			if len(bags) > 1 {
				opts.Unit = ub.Unit
			}
			if err := diagfmt.Pretty(cmd.ErrOrStderr(), ub.Bag, opts); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(cmd.ErrOrStderr(), ub.Bag.FormatShort(true))
	}
	return nil
}

func diagFormat(cmd *cobra.Command) (diagfmt.Format, error) {
	value, err := cmd.Root().PersistentFlags().GetString("diag-format")
	if err != nil {
		return diagfmt.FormatShort, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	return diagfmt.ParseFormat(value)
}

// machineOutput reports whether stdout carries a JSON diagnostics document.
func machineOutput(cmd *cobra.Command) bool {
	format, err := diagFormat(cmd)
	return err == nil && (format == diagfmt.FormatJSON || format == diagfmt.FormatSarif)
}

func singleBag(unit string, bag *diag.Bag) []diagfmt.UnitBag {
	return []diagfmt.UnitBag{{Unit: unit, Bag: bag}}
}
