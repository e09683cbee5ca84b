package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/extfuzz/internal/compose"
	"github.com/maxvaer/extfuzz/internal/config"
	"github.com/maxvaer/extfuzz/internal/llm"
	"github.com/maxvaer/extfuzz/internal/output"
	"github.com/maxvaer/extfuzz/internal/passthrough"
	"github.com/maxvaer/extfuzz/internal/probe"
	"github.com/maxvaer/extfuzz/internal/suggest"
	"github.com/maxvaer/extfuzz/internal/target"
)

// Exit codes for runs that stop before ffuf is started. Any other non-zero
// code is ffuf's own.
const (
	ExitMissingArgument = 2
	ExitNoExtensions    = 3
)

// ExitError carries the status the process should exit with.
type ExitError struct {
	Code int
	Err  error
	// Silent is set when the fuzzer already reported the failure itself.
	Silent bool
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// Summary writers; swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the pipeline for one ffuf invocation: locate the target URL
// in args, probe it, ask completer for extensions and run ffuf with args
// plus the suggested -e list. args are passed to ffuf unchanged.
func Run(ctx context.Context, opts *config.Options, completer llm.Completer, args []string) error {
	// 1. Locate the target. Nothing touches the network before this succeeds.
	rawURL, err := passthrough.TargetURL(args, passthrough.URLFlag)
	if err != nil {
		return &ExitError{Code: ExitMissingArgument, Err: err}
	}

	tgt := target.New(rawURL, opts.Placeholder)
	if !tgt.PlaceholderAtEnd() {
		log.WithFields(log.Fields{"url": rawURL}).Warnf(
			"%s keyword is not at the end of the URL path. Extension fuzzing may not work as expected.", opts.Placeholder)
	}

	// 2. Probe.
	prober, err := probe.NewProber(opts)
	if err != nil {
		return fmt.Errorf("creating prober: %w", err)
	}
	probeURL := tgt.ProbeURL()
	output.Info("Fetching headers from %s", probeURL)
	headers := prober.FetchHeaders(ctx, probeURL)
	if headers.IsSentinel() {
		output.Warn("Could not fetch headers, suggesting from the URL alone")
	}

	// 3. Suggest.
	output.Info("Asking %s for up to %d extensions", opts.Model, opts.MaxExtensions)
	extensions := suggest.New(completer).Suggest(ctx, tgt.Raw, headers, opts.MaxExtensions)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// 4. Compose.
	inv, err := compose.BuildInvocation(opts.FfufPath, args, extensions)
	if err != nil {
		return &ExitError{Code: ExitNoExtensions, Err: fmt.Errorf("%w, please try again", err)}
	}
	output.Success("Suggested extensions: %v", extensions)

	summary := &output.Summary{
		Target:     tgt.Raw,
		ProbeURL:   probeURL,
		Headers:    headers,
		Model:      opts.Model,
		Extensions: extensions,
		Command:    inv.Tokens(),
		DryRun:     opts.DryRun,
	}
	if err := createWriter(opts).WriteSummary(summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if opts.DryRun {
		return nil
	}

	// 5. Hand over to ffuf.
	return execute(ctx, inv)
}

func createWriter(opts *config.Options) output.Writer {
	switch opts.OutputFormat {
	case "json":
		return output.NewJSONWriter(stdout)
	default:
		return output.NewTextWriter(stderr)
	}
}

// execute runs the fuzzer with inherited stdio and waits for it. A non-zero
// exit is reported as an ExitError with ffuf's status.
func execute(ctx context.Context, inv compose.Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Path(), inv.Args()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error { return interruptProcess(cmd.Process) }
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal.
			code = 130
		}
		return &ExitError{Code: code, Err: fmt.Errorf("%s exited with status %d", inv.Path(), code), Silent: true}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("running %s: %w", inv.Path(), err)
}
