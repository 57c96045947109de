package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the rulesmith banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"             _                      _ _   _     ", "#818cf8"},
		{"  _ __ _   _| | ___  ___ _ __ ___  (_) |_| |__  ", "#a78bfa"},
		{" | '__| | | | |/ _ \\/ __| '_ ` _ \\ | | __| '_ \\ ", "#c084fc"},
		{" | |  | |_| | |  __/\\__ \\ | | | | || | |_| | | |", "#e879f9"},
		{" |_|   \\__,_|_|\\___||___/_| |_| |_||_|\\__|_| |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
