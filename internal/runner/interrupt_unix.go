//go:build !windows

package runner

import "os"

// interruptProcess asks the fuzzer to stop the way a terminal Ctrl+C would,
// giving it the chance to flush its output.
func interruptProcess(p *os.Process) error {
	return p.Signal(os.Interrupt)
}
