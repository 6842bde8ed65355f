package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// BarRenderer draws a single overwritten status line with a bar on a TTY,
// or prints timestamped lines on a non-TTY.
type BarRenderer struct {
	out       io.Writer
	start     time.Time
	isTTY     bool
	width     int
	lastEvent Event
	drawn     bool
}

// NewBarRenderer creates a renderer that writes to out. It auto-detects
// TTY mode and terminal width.
func NewBarRenderer(out *os.File) *BarRenderer {
	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())

	width := 80
	if tty {
		if w, _, err := term.GetSize(out.Fd()); err == nil && w > 0 {
			width = w
		}
	}

	return &BarRenderer{out: out, start: time.Now(), isTTY: tty, width: width}
}

// Handle processes a progress event. It satisfies the Callback type.
func (r *BarRenderer) Handle(e Event) {
	e.Elapsed = time.Since(r.start)
	if e.Stage == StageComplete {
		e.Percent = 1.0
	}
	r.lastEvent = e

	if !r.isTTY {
		fmt.Fprintf(r.out, "[%s] %s\n", formatElapsed(e.Elapsed), e.Message)
		return
	}

	line := fmt.Sprintf("  %s %3d%%  %s  %s",
		renderBar(e.Percent, r.barWidth()),
		int(e.Percent*100),
		formatElapsed(e.Elapsed),
		e.Message)
	if len(line) > r.width {
		line = line[:r.width]
	}
	fmt.Fprintf(r.out, "\r\033[2K%s", line)
	r.drawn = true
}

// Finish clears the progress line and prints a final summary.
func (r *BarRenderer) Finish() {
	if r.isTTY && r.drawn {
		fmt.Fprint(r.out, "\r\033[2K")
		r.drawn = false
	}

	e := r.lastEvent
	switch {
	case e.Error != nil:
		fmt.Fprintf(r.out, "\n  Error: %v\n", e.Error)
	case e.Stage != StageComplete:
		// Interrupted before completion; nothing to summarize.
	case e.OutputFile != "":
		fmt.Fprintf(r.out, "\n  Script saved to %s (%d turns, %s)\n", e.OutputFile, e.TurnCount, formatElapsed(e.Elapsed))
	default:
		fmt.Fprintf(r.out, "\n  %s (%s)\n", e.Message, formatElapsed(e.Elapsed))
	}
}

// barWidth leaves room for the percent, elapsed, and a short message.
func (r *BarRenderer) barWidth() int {
	w := r.width / 3
	if w < 10 {
		w = 10
	}
	if w > 40 {
		w = 40
	}
	return w
}

// renderBar draws a [####....] style bar of the given width.
func renderBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// formatElapsed formats a duration as M:SS.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
