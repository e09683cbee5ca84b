package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/maxvaer/extfuzz/internal/config"
	"github.com/maxvaer/extfuzz/internal/llm"
	"github.com/maxvaer/extfuzz/internal/output"
	"github.com/maxvaer/extfuzz/internal/passthrough"
	"github.com/maxvaer/extfuzz/internal/runner"
	"github.com/maxvaer/extfuzz/internal/updater"
	"github.com/maxvaer/extfuzz/pkg/version"
)

var (
	opts       = config.Default()
	updateFlag bool
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"FUZZER", []string{"ffuf-path", "max-extensions", "placeholder", "dry-run"}},
	{"LLM", []string{"model", "api-base"}},
	{"PROBE", []string{"probe-timeout", "proxy", "user-agent"}},
	{"OUTPUT", []string{"format", "no-color", "debug"}},
	{"CONFIGURATION", []string{"config"}},
	{"UPDATE", []string{"update", "version", "help"}},
}

var rootCmd = &cobra.Command{
	Use:     "extfuzz [flags] -u <url-with-FUZZ> [ffuf flags]",
	Short:   "Run ffuf with file extensions suggested by an LLM",
	Version: version.Version,
	Long: `extfuzz probes the target, asks an LLM which file extensions are worth
trying for the URL and its response headers, and runs ffuf with those
extensions appended as -e. Every argument extfuzz does not recognise is
passed to ffuf unchanged.`,
	Example: `  extfuzz -u https://example.com/FUZZ -w wordlist.txt
  extfuzz --max-extensions 6 -u https://example.com/admin/FUZZ -w wordlist.txt -fc 404
  extfuzz --ffuf-path /opt/ffuf/ffuf -u https://example.com/js/FUZZ -w js.txt
  extfuzz --dry-run --format json -u https://example.com/docs/FUZZ -w wordlist.txt`,
	// ffuf's flags are unknown to us and must reach it verbatim, so parsing
	// is done by hand in RunE.
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		own, rest := passthrough.Split(f, args)
		if err := f.Parse(own); err != nil {
			return err
		}

		if help, _ := f.GetBool("help"); help {
			return cmd.Help()
		}
		if showVersion, _ := f.GetBool("version"); showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "extfuzz version %s\n", cmd.Version)
			return nil
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if updateFlag {
			return updater.New().Update(ctx)
		}

		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			return err
		}
		mergeUnset(f, loaded)
		if err := opts.Validate(); err != nil {
			return err
		}

		setupOutput(&opts)
		if opts.OutputFormat == "text" {
			output.PrintBanner(os.Stderr)
		}

		client, err := llm.NewChatClient(&opts)
		if err != nil {
			return err
		}
		return runner.Run(ctx, &opts, client, rest)
	},
}

func init() {
	f := rootCmd.Flags()

	// Fuzzer
	f.StringVar(&opts.FfufPath, "ffuf-path", opts.FfufPath, "Path to the ffuf executable")
	f.IntVar(&opts.MaxExtensions, "max-extensions", opts.MaxExtensions, "Maximum number of extensions to suggest")
	f.StringVar(&opts.Placeholder, "placeholder", opts.Placeholder, "Fuzz keyword used in the target URL")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Print the ffuf command instead of running it")

	// LLM
	f.StringVar(&opts.Model, "model", opts.Model, "Model used for suggestions")
	f.StringVar(&opts.APIBase, "api-base", opts.APIBase, "OpenAI-compatible API base URL")

	// Probe
	f.DurationVar(&opts.ProbeTimeout, "probe-timeout", 0, "Timeout for the header probe (0 = transport default)")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS proxy URL for the header probe")
	f.StringVar(&opts.UserAgent, "user-agent", "", "User-Agent for the header probe (default extfuzz/<version>)")

	// Output
	f.StringVar(&opts.OutputFormat, "format", opts.OutputFormat, "Summary format: text, json")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.Debug, "debug", false, "Log the prompt, the raw reply and dropped extensions")

	// Configuration
	f.StringVar(&opts.ConfigFile, "config", "", "YAML config file (default: <user config dir>/extfuzz/config.yaml)")

	// Update
	f.BoolVar(&updateFlag, "update", false, "Update extfuzz to the latest version")

	// Registered here instead of by cobra so Split can see them.
	f.Bool("help", false, "Show this help")
	f.Bool("version", false, "Show version")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, output.Banner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.Use)
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintf(w, "\nEnvironment:\n   %-36s%s\n\n", config.EnvAPIKey, "API key for the LLM provider (also read from .env)")
	})
}

// Execute runs the root command and exits with the run's status.
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

func execute(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	return exitCode(rootCmd.Execute(), stderr)
}

// exitCode reports err on w and maps it to the process exit status.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Silent {
			fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Interrupted")
		return 130
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

// mergeUnset fills every option the user did not pass on the command line
// from the config file and environment.
func mergeUnset(fs *pflag.FlagSet, loaded config.Options) {
	fields := map[string]func(){
		"ffuf-path":      func() { opts.FfufPath = loaded.FfufPath },
		"max-extensions": func() { opts.MaxExtensions = loaded.MaxExtensions },
		"placeholder":    func() { opts.Placeholder = loaded.Placeholder },
		"model":          func() { opts.Model = loaded.Model },
		"api-base":       func() { opts.APIBase = loaded.APIBase },
		"probe-timeout":  func() { opts.ProbeTimeout = loaded.ProbeTimeout },
		"proxy":          func() { opts.Proxy = loaded.Proxy },
		"user-agent":     func() { opts.UserAgent = loaded.UserAgent },
		"format":         func() { opts.OutputFormat = loaded.OutputFormat },
		"no-color":       func() { opts.NoColor = loaded.NoColor },
		"debug":          func() { opts.Debug = loaded.Debug },
	}
	for name, apply := range fields {
		if !fs.Changed(name) {
			apply()
		}
	}
	opts.APIKey = loaded.APIKey
	opts.ConfigFile = loaded.ConfigFile
}

// setupOutput configures colors and the logger. Colors are off when asked
// for or when stderr is not a terminal.
func setupOutput(o *config.Options) {
	color.NoColor = o.NoColor || !term.IsTerminal(int(os.Stderr.Fd()))

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    color.NoColor,
		ForceColors:      !color.NoColor,
	})
	log.SetLevel(log.InfoLevel)
	if o.Debug {
		log.SetLevel(log.DebugLevel)
	}
}

func formatFlag(f *pflag.Flag) string {
	left := fmt.Sprintf("    --%s", f.Name)

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	if len(left) < col {
		left += strings.Repeat(" ", col-len(left))
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}
