package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"bridgegen/internal/diag"
)

// Pretty writes bag as
//
//	<unit>: <SEV> <CODE> <subject>: <message>
//	    = note: <subject>: <message>
//
// followed by a count summary. Items are printed in bag order; callers sort
// beforehand when they need stable output.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}
	bold := color.New(color.Bold)
	noteColor := color.New(color.FgCyan)

	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
		if opts.Unit != "" {
			if _, err := fmt.Fprintf(w, "%s: ", opts.Unit); err != nil {
				return err
			}
		}
		head := paint(severityColor(d.Severity), d.Severity.String()) + " " + paint(bold, d.Code.ID())
		subject := ""
		if d.Subject != "" {
			subject = paint(bold, d.Subject) + ": "
		}
		if _, err := fmt.Fprintf(w, "%s %s%s\n", head, subject, d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			line := n.Msg
			if n.Subject != "" {
				line = n.Subject + ": " + line
			}
			if _, err := fmt.Fprintf(w, "    = %s %s\n", paint(noteColor, "note:"), line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
	return err
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgBlue)
	}
}
