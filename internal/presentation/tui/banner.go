package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` _ __ ___   __ _  ___ _ __ ___   __ _ _ __ __ _ _ __ | |__`, "#818cf8"},
	{`| '_ ' _ \ / _' |/ __| '__/ _ \ / _' | '__/ _' | '_ \| '_ \`, "#a78bfa"},
	{`| | | | | | (_| | (__| | | (_) | (_| | | | (_| | |_) | | | |`, "#c084fc"},
	{`|_| |_| |_|\__,_|\___|_|  \___/ \__, |_|  \__,_| .__/|_| |_|`, "#e879f9"},
	{`                                |___/          |_|`, "#f472b6"},
}

// PrintBanner writes the macrograph ASCII art banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
