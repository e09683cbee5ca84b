package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/extfuzz/internal/config"
	"github.com/maxvaer/extfuzz/internal/passthrough"
)

const (
	helperEnv     = "EXTFUZZ_HELPER_PROCESS"
	helperOutEnv  = "EXTFUZZ_HELPER_OUT"
	helperExitEnv = "EXTFUZZ_HELPER_EXIT"
)

// TestHelperProcess stands in for ffuf. It records its arguments and exits
// with the requested status.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if out := os.Getenv(helperOutEnv); out != "" {
		_ = os.WriteFile(out, []byte(strings.Join(args, "\n")), 0644)
	}
	code, _ := strconv.Atoi(os.Getenv(helperExitEnv))
	os.Exit(code)
}

type fakeCompleter struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompt = prompt
	return f.reply, f.err
}

// fakeFfuf configures the helper process and returns the file it writes its
// arguments to.
func fakeFfuf(t *testing.T, exitCode int) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "ffuf-args.txt")
	t.Setenv(helperEnv, "1")
	t.Setenv(helperOutEnv, out)
	t.Setenv(helperExitEnv, strconv.Itoa(exitCode))
	return out
}

func testOpts() *config.Options {
	opts := config.Default()
	opts.APIKey = "test"
	opts.FfufPath = os.Args[0]
	opts.MaxExtensions = 3
	return &opts
}

// helperArgs prefixes ffuf-style args with what the test binary needs to
// behave as the helper process.
func helperArgs(args ...string) []string {
	return append([]string{"-test.run=TestHelperProcess", "--"}, args...)
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("fuzzer was not run: %v", err)
	}
	return strings.Split(string(data), "\n")
}

func captureSummary(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &buf, &buf
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return &buf
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func pdfServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(200)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestRun_EndToEnd(t *testing.T) {
	srv, requests := pdfServer(t)
	argsFile := fakeFfuf(t, 0)
	captureSummary(t)

	fc := &fakeCompleter{reply: `{"extensions": [".pdf", ".ppt", ".pptx"]}`}
	target := srv.URL + "/presentations/FUZZ"
	args := helperArgs("-u", target, "-w", "words.txt")

	if err := Run(context.Background(), testOpts(), fc, args); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(*requests) != 1 || (*requests)[0] != "HEAD /presentations/" {
		t.Errorf("probe requests = %q, want a single HEAD /presentations/", *requests)
	}
	if !strings.Contains(fc.prompt, `"Content-Type": "application/pdf"`) {
		t.Error("prompt should include the probed Content-Type")
	}
	if !strings.Contains(fc.prompt, target) {
		t.Error("prompt should include the URL with its placeholder")
	}

	got := readArgs(t, argsFile)
	want := []string{"-u", target, "-w", "words.txt", "-e", ".pdf,.ppt,.pptx"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("ffuf args = %q, want %q", got, want)
	}
}

func TestRun_MissingURL(t *testing.T) {
	_, requests := pdfServer(t)
	fc := &fakeCompleter{reply: `{"extensions": [".php"]}`}

	err := Run(context.Background(), testOpts(), fc, []string{"-w", "words.txt"})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitMissingArgument {
		t.Fatalf("err = %v, want ExitError with code %d", err, ExitMissingArgument)
	}
	if !errors.Is(err, passthrough.ErrMissingArgument) {
		t.Error("expected ErrMissingArgument in chain")
	}
	if fc.calls != 0 || len(*requests) != 0 {
		t.Error("no network activity expected before the URL is known")
	}
}

func TestRun_NoExtensionsSkipsFuzzer(t *testing.T) {
	srv, _ := pdfServer(t)
	argsFile := fakeFfuf(t, 0)
	captureSummary(t)

	fc := &fakeCompleter{reply: "I think .php would be good"}
	err := Run(context.Background(), testOpts(), fc, helperArgs("-u", srv.URL+"/FUZZ"))

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitNoExtensions {
		t.Fatalf("err = %v, want ExitError with code %d", err, ExitNoExtensions)
	}
	if _, statErr := os.Stat(argsFile); !os.IsNotExist(statErr) {
		t.Error("fuzzer must not be started without extensions")
	}
}

func TestRun_CompleterErrorSkipsFuzzer(t *testing.T) {
	srv, _ := pdfServer(t)
	argsFile := fakeFfuf(t, 0)

	fc := &fakeCompleter{err: errors.New("401 Invalid API Key")}
	err := Run(context.Background(), testOpts(), fc, helperArgs("-u", srv.URL+"/FUZZ"))

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitNoExtensions {
		t.Fatalf("err = %v, want ExitError with code %d", err, ExitNoExtensions)
	}
	if _, statErr := os.Stat(argsFile); !os.IsNotExist(statErr) {
		t.Error("fuzzer must not be started without extensions")
	}
}

func TestRun_PassesThroughExitCode(t *testing.T) {
	srv, _ := pdfServer(t)
	fakeFfuf(t, 7)
	captureSummary(t)

	fc := &fakeCompleter{reply: `{"extensions": [".php"]}`}
	err := Run(context.Background(), testOpts(), fc, helperArgs("-u", srv.URL+"/FUZZ"))

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exitErr.Code != 7 || !exitErr.Silent {
		t.Errorf("exit = %d (silent %v), want 7 (silent)", exitErr.Code, exitErr.Silent)
	}
}

func TestRun_FuzzerNotFound(t *testing.T) {
	srv, _ := pdfServer(t)
	captureSummary(t)

	opts := testOpts()
	opts.FfufPath = filepath.Join(t.TempDir(), "no-such-ffuf")
	fc := &fakeCompleter{reply: `{"extensions": [".php"]}`}

	err := Run(context.Background(), opts, fc, []string{"-u", srv.URL + "/FUZZ"})
	if err == nil {
		t.Fatal("expected error for missing fuzzer binary")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("start failure should not look like a fuzzer exit status: %v", err)
	}
}

func TestRun_DryRunJSON(t *testing.T) {
	srv, _ := pdfServer(t)
	argsFile := fakeFfuf(t, 0)
	summary := captureSummary(t)

	opts := testOpts()
	opts.DryRun = true
	opts.OutputFormat = "json"
	fc := &fakeCompleter{reply: `{"extensions": [".pdf", ".ppt", ".pptx", ".key"]}`}

	if err := Run(context.Background(), opts, fc, []string{"-u", srv.URL + "/presentations/FUZZ"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(argsFile); !os.IsNotExist(err) {
		t.Error("dry run must not start the fuzzer")
	}

	var got struct {
		Extensions []string `json:"extensions"`
		Command    []string `json:"command"`
		DryRun     bool     `json:"dry_run"`
	}
	if err := json.Unmarshal(summary.Bytes(), &got); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, summary.String())
	}
	if strings.Join(got.Extensions, ",") != ".pdf,.ppt,.pptx" {
		t.Errorf("extensions = %q, want first three", got.Extensions)
	}
	n := len(got.Command)
	if n < 2 || got.Command[n-2] != "-e" || got.Command[n-1] != ".pdf,.ppt,.pptx" {
		t.Errorf("command = %q", got.Command)
	}
	if !got.DryRun {
		t.Error("dry_run should be true")
	}
}

func TestRun_WarnsWhenPlaceholderNotLast(t *testing.T) {
	srv, requests := pdfServer(t)
	logs := captureLog(t)
	captureSummary(t)

	opts := testOpts()
	opts.DryRun = true
	fc := &fakeCompleter{reply: `{"extensions": [".php"]}`}

	if err := Run(context.Background(), opts, fc, []string{"-u", srv.URL + "/FUZZ/admin"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(logs.String(), "FUZZ keyword is not at the end of the URL path") {
		t.Errorf("expected placeholder warning, got logs:\n%s", logs.String())
	}
	if len(*requests) != 1 || fc.calls != 1 {
		t.Error("run should still probe and suggest after the warning")
	}
}

func TestRun_UnreachableTargetStillSuggests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL
	srv.Close()
	captureLog(t)
	summary := captureSummary(t)

	opts := testOpts()
	opts.DryRun = true
	fc := &fakeCompleter{reply: `{"extensions": [".php"]}`}

	if err := Run(context.Background(), opts, fc, []string{"-u", dead + "/FUZZ"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(fc.prompt, `{"Header": "Error fetching headers."}`) {
		t.Error("prompt should carry the sentinel headers")
	}
	if !strings.Contains(summary.String(), "probe failed") {
		t.Errorf("summary should mention the failed probe:\n%s", summary.String())
	}
}

func TestRun_CanceledContext(t *testing.T) {
	srv, _ := pdfServer(t)
	argsFile := fakeFfuf(t, 0)
	captureLog(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeCompleter{reply: `{"extensions": [".php"]}`}
	err := Run(ctx, testOpts(), fc, helperArgs("-u", srv.URL+"/FUZZ"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(argsFile); !os.IsNotExist(statErr) {
		t.Error("fuzzer must not be started after cancellation")
	}
}

func TestExitError(t *testing.T) {
	inner := fmt.Errorf("wrapped: %w", passthrough.ErrMissingArgument)
	err := error(&ExitError{Code: 2, Err: inner})
	if err.Error() != inner.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, passthrough.ErrMissingArgument) {
		t.Error("ExitError should unwrap to its cause")
	}
}
