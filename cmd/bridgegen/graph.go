package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bridgegen/internal/decl"
	"bridgegen/internal/diag"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Work with declaration graph files",
}

var graphConvertCmd = &cobra.Command{
	Use:   "convert [flags] <in> <out>",
	Short: "Convert a graph between TOML and msgpack",
	Long:  "Convert a graph file. The encoding of each side follows its extension: .toml is TOML, anything else msgpack.",
	Args:  cobra.ExactArgs(2),
	RunE:  graphConvertExecution,
}

var graphCheckCmd = &cobra.Command{
	Use:   "check <graph>",
	Short: "Load a graph and report its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  graphCheckExecution,
}

func init() {
	graphConvertCmd.Flags().Bool("no-check", false, "skip loading the graph before writing it")
	graphCmd.AddCommand(graphConvertCmd)
	graphCmd.AddCommand(graphCheckCmd)
}

func graphConvertExecution(cmd *cobra.Command, args []string) (err error) {
	noCheck, err := cmd.Flags().GetBool("no-check")
	if err != nil {
		return err
	}
	in, out := args[0], args[1]
	f, err := decl.ReadFile(in)
	if err != nil {
		return err
	}
	if !noCheck {
		if err := checkGraph(cmd, in, f); err != nil {
			return err
		}
	}

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", out, err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	w := bufio.NewWriter(dst)
	if err := decl.Encode(w, f, decl.FormatForPath(out)); err != nil {
		return fmt.Errorf("failed to encode %q: %w", out, err)
	}
	return w.Flush()
}

func graphCheckExecution(cmd *cobra.Command, args []string) error {
	f, err := decl.ReadFile(args[0])
	if err != nil {
		return err
	}
	return checkGraph(cmd, args[0], f)
}

// checkGraph loads f and prints its diagnostics. Error diagnostics fail the
// command.
func checkGraph(cmd *cobra.Command, path string, f *decl.File) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	bag := diag.NewBag(maxDiagnostics)
	if _, err := decl.Load(f, diag.BagReporter{Bag: bag}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := reportDiagnostics(cmd, singleBag(f.Module, bag)); err != nil {
		return err
	}
	if bag.HasErrors() {
		return fmt.Errorf("%s: graph has errors", path)
	}
	return nil
}
