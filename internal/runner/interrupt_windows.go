//go:build windows

package runner

import "os"

// interruptProcess kills the fuzzer. Windows has no per-process SIGINT; a
// console Ctrl+C already reaches ffuf directly.
func interruptProcess(p *os.Process) error {
	return p.Kill()
}
