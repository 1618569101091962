package diagfmt

import (
	"encoding/json"
	"io"

	"bridgegen/internal/diag"
)

// NoteJSON is one note in JSON output.
type NoteJSON struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Unit     string     `json:"unit,omitempty"`
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Subject  string     `json:"subject,omitempty"`
	Message  string     `json:"message"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// UnitBag pairs a bag with the unit it belongs to.
type UnitBag struct {
	Unit string
	Bag  *diag.Bag
}

// BuildDiagnosticsOutput collects the diagnostics of every bag without
// serializing them.
func BuildDiagnosticsOutput(bags []UnitBag, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0)}
	for _, ub := range bags {
		if ub.Bag == nil {
			continue
		}
		for _, d := range ub.Bag.Items() {
			out.Count++
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				continue
			}
			dj := DiagnosticJSON{
				Unit:     ub.Unit,
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Subject:  d.Subject,
				Message:  d.Message,
			}
			if opts.IncludeNotes {
				for _, n := range d.Notes {
					dj.Notes = append(dj.Notes, NoteJSON{Subject: n.Subject, Message: n.Msg})
				}
			}
			out.Diagnostics = append(out.Diagnostics, dj)
		}
	}
	return out
}

// JSON writes the diagnostics of bags as one indented document.
func JSON(w io.Writer, bags []UnitBag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bags, opts))
}
