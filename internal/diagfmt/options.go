// Package diagfmt renders diagnostic bags for humans and tools.
package diagfmt

import (
	"fmt"
	"strings"
)

// Format selects a renderer.
type Format uint8

const (
	FormatShort Format = iota
	FormatPretty
	FormatJSON
	FormatSarif
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "short":
		return FormatShort, nil
	case "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSarif, nil
	default:
		return FormatShort, fmt.Errorf("invalid diagnostics format %q (expected short|pretty|json|sarif)", s)
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Unit prefixes every diagnostic when set.
	Unit string
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // output cap; the bag is not truncated
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
