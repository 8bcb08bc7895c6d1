package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/muesli/termenv"
)

// WriteTrace prints scene calls one per line, colored by operation:
// writes in yellow, reads in cyan and creations in green.
func WriteTrace(w io.Writer, calls []memory.Call) {
	out := termenv.NewOutput(w)
	for i, c := range calls {
		color := "#22d3ee"
		switch {
		case strings.HasPrefix(c.Method, "Set"):
			color = "#facc15"
		case strings.HasPrefix(c.Method, "Add"):
			color = "#4ade80"
		}
		fmt.Fprintf(w, "%3d %s\n", i+1, out.String(c.String()).Foreground(out.Color(color)))
	}
}
