package output

import (
	"github.com/maxvaer/extfuzz/internal/probe"
)

// Summary describes what a run decided before ffuf is started.
type Summary struct {
	Target     string
	ProbeURL   string
	Headers    probe.HeaderSet
	Model      string
	Extensions []string
	Command    []string
	DryRun     bool
}

// Writer is implemented by each output format.
type Writer interface {
	WriteSummary(s *Summary) error
}
