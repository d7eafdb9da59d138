package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Bar renders a fixed-width progress bar for long re-pricing runs. Output
// goes to w; a nil writer disables rendering entirely, so callers can pass
// a Bar around unconditionally.
type Bar struct {
	w          io.Writer
	message    string
	total      int
	current    int
	start      time.Time
	lastRedraw time.Time
}

// NewBar creates a bar for an operation of total steps.
func NewBar(w io.Writer, message string, total int) *Bar {
	return &Bar{
		w:       w,
		message: message,
		total:   total,
		start:   time.Now(),
	}
}

// Start prints the opening line.
func (b *Bar) Start() {
	if b.w == nil {
		return
	}
	b.start = time.Now()
	b.lastRedraw = b.start
	fmt.Fprintf(b.w, "%s...\n", b.message)
}

// Update advances the bar. Redraws are throttled to avoid flooding the
// terminal; the final step always draws.
func (b *Bar) Update(current int) {
	if b.w == nil {
		return
	}

	b.current = current
	now := time.Now()
	if now.Sub(b.lastRedraw) < 100*time.Millisecond && current < b.total {
		return
	}
	b.lastRedraw = now

	percentage := 100.0
	if b.total > 0 {
		percentage = float64(current) / float64(b.total) * 100
	}

	var eta string
	if current > 0 && current < b.total {
		elapsed := now.Sub(b.start)
		rate := float64(current) / elapsed.Seconds()
		remaining := float64(b.total-current) / rate
		eta = fmt.Sprintf(" ETA: %s", formatDuration(time.Duration(remaining)*time.Second))
	}

	fmt.Fprintf(b.w, "\r%s [%s] %d/%d (%.1f%%)%s",
		b.message, renderBar(percentage), current, b.total, percentage, eta)
}

// Finish prints the closing line.
func (b *Bar) Finish() {
	if b.w == nil {
		return
	}
	fmt.Fprintf(b.w, "\r%s ✓ completed %d items in %s\n",
		b.message, b.total, formatDuration(time.Since(b.start)))
}

// Fail prints the closing line for an aborted run.
func (b *Bar) Fail(err error) {
	if b.w == nil {
		return
	}
	fmt.Fprintf(b.w, "\r%s ✗ failed after %s: %v\n",
		b.message, formatDuration(time.Since(b.start)), err)
}

func renderBar(percentage float64) string {
	const width = 30
	filled := int(percentage / 100.0 * width)

	var bar strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && percentage < 100:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return bar.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
