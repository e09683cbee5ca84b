package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFfufPath      = "ffuf"
	DefaultMaxExtensions = 4
	DefaultPlaceholder   = "FUZZ"
	DefaultAPIBase       = "https://api.groq.com/openai/v1"
	DefaultModel         = "llama-3.1-8b-instant"
)

// Environment variables read at startup. Values from a .env file in the
// working directory are loaded first but never override the real environment.
const (
	EnvAPIKey  = "GROQ_API_KEY"
	EnvAPIBase = "EXTFUZZ_API_BASE"
	EnvModel   = "EXTFUZZ_MODEL"
)

// Options holds all configuration for an extfuzz run.
type Options struct {
	// Fuzzer
	FfufPath      string `yaml:"ffuf_path"`
	MaxExtensions int    `yaml:"max_extensions"`
	Placeholder   string `yaml:"placeholder"`
	DryRun        bool   `yaml:"-"`

	// LLM
	APIKey  string `yaml:"api_key"`
	APIBase string `yaml:"api_base"`
	Model   string `yaml:"model"`

	// Probe
	ProbeTimeout time.Duration `yaml:"probe_timeout"` // 0 = transport default
	Proxy        string        `yaml:"proxy"`
	UserAgent    string        `yaml:"user_agent"`

	// Output
	OutputFormat string `yaml:"format"` // "text", "json"
	NoColor      bool   `yaml:"no_color"`
	Debug        bool   `yaml:"debug"`

	ConfigFile string `yaml:"-"`
}

// Default returns the built-in defaults.
func Default() Options {
	return Options{
		FfufPath:      DefaultFfufPath,
		MaxExtensions: DefaultMaxExtensions,
		Placeholder:   DefaultPlaceholder,
		APIBase:       DefaultAPIBase,
		Model:         DefaultModel,
		OutputFormat:  "text",
	}
}

// Load builds Options from the defaults, the YAML config file and the
// environment, in that order of precedence. An empty path means the default
// location, which is allowed to be missing; an explicit path is not.
func Load(path string) (Options, error) {
	opts := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &opts); err != nil {
				return Default(), fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Default(), fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	opts.ConfigFile = path

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return opts, fmt.Errorf("loading .env: %w", err)
	}
	applyEnv(&opts)

	return opts, nil
}

func applyEnv(opts *Options) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		opts.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		opts.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		opts.Model = v
	}
}

// Validate checks the options needed for a suggestion run.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.FfufPath) == "" {
		return fmt.Errorf("--ffuf-path must not be empty")
	}
	if o.MaxExtensions < 1 {
		return fmt.Errorf("--max-extensions must be at least 1, got %d", o.MaxExtensions)
	}
	if o.Placeholder == "" {
		return fmt.Errorf("--placeholder must not be empty")
	}
	if o.OutputFormat != "text" && o.OutputFormat != "json" {
		return fmt.Errorf("--format must be one of: text, json")
	}
	if o.ProbeTimeout < 0 {
		return fmt.Errorf("--probe-timeout must not be negative")
	}
	if strings.TrimSpace(o.APIKey) == "" {
		return fmt.Errorf("missing API key: set %s (environment or .env) or api_key in %s", EnvAPIKey, o.configHint())
	}
	return nil
}

func (o *Options) configHint() string {
	if o.ConfigFile != "" {
		return o.ConfigFile
	}
	return "the config file"
}

// DefaultPath returns the location of the per-user config file.
func DefaultPath() (string, error) {
	baseDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, "extfuzz", "config.yaml"), nil
}
