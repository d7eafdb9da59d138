package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   string
	}{
		{0.0, "▓░░░░░░░░░░░░░░░░░░░░░░░░░░░░░"},
		{50.0, "███████████████▓░░░░░░░░░░░░░░"},
		{100.0, "██████████████████████████████"},
	}

	for _, tt := range tests {
		result := renderBar(tt.percentage)
		if result != tt.expected {
			t.Errorf("renderBar(%.1f) = %q, want %q", tt.percentage, result, tt.expected)
		}
	}
}

func TestRenderBarWidth(t *testing.T) {
	for _, percentage := range []float64{0, 0.1, 33.33, 66.67, 99.9, 100} {
		bar := renderBar(percentage)
		if got := len([]rune(bar)); got != 30 {
			t.Errorf("renderBar(%.1f) width = %d runes, want 30", percentage, got)
		}
		for _, r := range bar {
			if r != '█' && r != '▓' && r != '░' {
				t.Errorf("renderBar(%.1f) contains %q", percentage, r)
			}
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{50 * time.Millisecond, "50ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
		{3600 * time.Second, "1.0h"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.expected)
		}
	}
}

func TestBarOutput(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "Re-pricing binder", 10)

	bar.Start()
	bar.Update(10)
	bar.Finish()

	out := buf.String()
	if !strings.Contains(out, "Re-pricing binder...") {
		t.Errorf("missing opening line in %q", out)
	}
	if !strings.Contains(out, "10/10") {
		t.Errorf("missing final count in %q", out)
	}
	if !strings.Contains(out, "✓ completed 10 items") {
		t.Errorf("missing completion line in %q", out)
	}
}

func TestBarThrottlesRedraws(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "Re-pricing", 100)
	bar.Start()

	// Updates inside the redraw window are suppressed.
	bar.Update(1)
	middle := buf.Len()
	bar.Update(2)
	bar.Update(3)
	if buf.Len() != middle {
		t.Error("redraws not throttled")
	}

	// The final step always draws.
	bar.Update(100)
	if !strings.Contains(buf.String(), "100/100") {
		t.Error("final update suppressed")
	}
}

func TestBarFail(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "Re-pricing", 5)
	bar.Start()
	bar.Fail(errors.New("store closed"))

	if !strings.Contains(buf.String(), "✗ failed after") {
		t.Errorf("missing failure line in %q", buf.String())
	}
	if !strings.Contains(buf.String(), "store closed") {
		t.Errorf("missing cause in %q", buf.String())
	}
}

func TestNilWriterIsSilent(t *testing.T) {
	bar := NewBar(nil, "quiet", 3)
	bar.Start()
	bar.Update(1)
	bar.Finish()
	bar.Fail(errors.New("x"))
}
