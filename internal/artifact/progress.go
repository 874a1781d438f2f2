package artifact

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// progressWriter renders a download progress bar as bytes flow through it.
// It is driven directly by Write calls, no interactive program is involved.
type progressWriter struct {
	out      io.Writer
	label    string
	total    int64
	written  int64
	bar      progress.Model
	lastDraw time.Time
}

func newProgressWriter(out io.Writer, label string, total int64) *progressWriter {
	bar := progress.New(progress.WithDefaultGradient())
	bar.ShowPercentage = true
	return &progressWriter{
		out:   out,
		label: label,
		total: total,
		bar:   bar,
	}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))

	done := w.written >= w.total
	// Redrawing on every chunk floods the terminal; 10 frames a second is
	// plenty for a download bar.
	if done || time.Since(w.lastDraw) >= 100*time.Millisecond {
		w.lastDraw = time.Now()
		frac := float64(w.written) / float64(w.total)
		if frac > 1 {
			frac = 1
		}
		fmt.Fprintf(w.out, "\r%s %s", w.label, w.bar.ViewAs(frac))
		if done {
			fmt.Fprintln(w.out)
		}
	}

	return len(p), nil
}
