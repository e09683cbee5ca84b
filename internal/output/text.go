package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter prints a human-readable summary, normally to stderr so it
// never mixes with ffuf's own stdout.
type TextWriter struct {
	w io.Writer
}

// NewTextWriter creates a text summary writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

func (t *TextWriter) WriteSummary(s *Summary) error {
	rule := mutedStyle.Sprint("  ──────────────────────────────────────")

	headerInfo := fmt.Sprintf("%d received", s.Headers.Len())
	if s.Headers.IsSentinel() {
		headerInfo = warnStyle.Sprint("unavailable (probe failed)")
	}

	lines := []string{
		rule,
		t.row("Target:", valueStyle.Sprint(s.Target)),
		t.row("Probed:", valueStyle.Sprint(s.ProbeURL)),
		t.row("Headers:", headerInfo),
	}
	if s.Model != "" {
		lines = append(lines, t.row("Model:", valueStyle.Sprint(s.Model)))
	}
	lines = append(lines,
		t.row("Extensions:", extStyle.Sprint(strings.Join(s.Extensions, ", "))),
		rule,
	)

	verb := "Running:"
	if s.DryRun {
		verb = "Would run:"
	}
	lines = append(lines, fmt.Sprintf("%s %s", infoStyle.Sprint("[*] "+verb), commandStyle.Sprint(strings.Join(s.Command, " "))))

	_, err := fmt.Fprintln(t.w, strings.Join(lines, "\n"))
	return err
}

func (t *TextWriter) row(label, value string) string {
	return fmt.Sprintf("  %s %s", mutedStyle.Sprintf("%-12s", label), value)
}
