package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the knots ASCII banner to w, colored when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _               _       ", "#818cf8"},
		{"| | ___ __   ___ | |_ ___ ", "#a78bfa"},
		{"| |/ / '_ \\ / _ \\| __/ __|", "#c084fc"},
		{"|   <| | | | (_) | |_\\__ \\", "#e879f9"},
		{"|_|\\_\\_| |_|\\___/ \\__|___/", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
