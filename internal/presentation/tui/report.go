package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/knots/internal/validator"
	"github.com/muesli/termenv"
)

// PrintReport writes a validation report with errors in red and warnings in
// yellow. Colors are dropped when w is not a terminal.
func PrintReport(w io.Writer, name string, report validator.Report) {
	out := termenv.NewOutput(w)
	red := out.Color("#f87171")
	yellow := out.Color("#facc15")
	green := out.Color("#4ade80")

	for _, msg := range report.Errors {
		fmt.Fprintf(w, "%s %s\n", out.String("✗").Foreground(red).Bold(), msg)
	}
	for _, msg := range report.Warnings {
		fmt.Fprintf(w, "%s %s\n", out.String("!").Foreground(yellow).Bold(), msg)
	}

	switch {
	case len(report.Errors) > 0:
		fmt.Fprintln(w, out.String(fmt.Sprintf("%s: %d errors, %d warnings", name, len(report.Errors), len(report.Warnings))).Foreground(red))
	case len(report.Warnings) > 0:
		fmt.Fprintln(w, out.String(fmt.Sprintf("%s: valid with %d warnings", name, len(report.Warnings))).Foreground(yellow))
	default:
		fmt.Fprintln(w, out.String(fmt.Sprintf("%s: valid", name)).Foreground(green))
	}
}
