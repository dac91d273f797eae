package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the logicflow banner, used by interactive commands.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to indigo gradient
	lines := []struct {
		text  string
		color string
	}{
		{" _             _       __ _", "#2dd4bf"},
		{"| | ___   __ _(_) ___ / _| | _____      __", "#22d3ee"},
		{"| |/ _ \\ / _` | |/ __| |_| |/ _ \\ \\ /\\ / /", "#38bdf8"},
		{"| | (_) | (_| | | (__|  _| | (_) \\ V  V /", "#60a5fa"},
		{"|_|\\___/ \\__, |_|\\___|_| |_|\\___/ \\_/\\_/", "#818cf8"},
		{"         |___/", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
