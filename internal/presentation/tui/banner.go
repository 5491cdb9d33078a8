package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the flowedit banner and version to w.
// Colours degrade to plain text when w is not a colour terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"   __ _                       _ _ _   ", "#34d399"},
		{"  / _| | _____      _____  __| (_) |_ ", "#2dd4bf"},
		{" | |_| |/ _ \\ \\ /\\ / / _ \\/ _` | | __|", "#22d3ee"},
		{" |  _| | (_) \\ V  V /  __/ (_| | | |_ ", "#38bdf8"},
		{" |_| |_|\\___/ \\_/\\_/ \\___|\\__,_|_|\\__|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
