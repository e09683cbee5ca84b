package output

import (
	"encoding/json"
	"io"

	"github.com/maxvaer/extfuzz/internal/probe"
)

type jsonSummary struct {
	Target      string          `json:"target"`
	ProbeURL    string          `json:"probe_url"`
	Headers     probe.HeaderSet `json:"headers"`
	ProbeFailed bool            `json:"probe_failed"`
	Model       string          `json:"model,omitempty"`
	Extensions  []string        `json:"extensions"`
	Command     []string        `json:"command"`
	DryRun      bool            `json:"dry_run"`
}

// JSONWriter writes the summary as a single JSON object.
type JSONWriter struct {
	w io.Writer
}

// NewJSONWriter creates a JSON summary writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

func (j *JSONWriter) WriteSummary(s *Summary) error {
	exts := s.Extensions
	if exts == nil {
		exts = []string{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonSummary{
		Target:      s.Target,
		ProbeURL:    s.ProbeURL,
		Headers:     s.Headers,
		ProbeFailed: s.Headers.IsSentinel(),
		Model:       s.Model,
		Extensions:  exts,
		Command:     s.Command,
		DryRun:      s.DryRun,
	})
}
