// Package models defines data structures for configuration, search
// candidates, and scrape outcomes.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can carry readable
// values like "30s" or "2m" instead of nanosecond integers.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// BrowserConfig controls the Chrome session driving the register site.
type BrowserConfig struct {
	BaseURL           string   `yaml:"base_url"`
	Headless          bool     `yaml:"headless"`
	UserAgent         string   `yaml:"user_agent"`
	WindowWidth       int      `yaml:"window_width"`
	WindowHeight      int      `yaml:"window_height"`
	StepTimeout       Duration `yaml:"step_timeout"`       // outer bound on one orchestration step (search, one document)
	NavigationTimeout Duration `yaml:"navigation_timeout"` // page loads and element waits
	ResultsTimeout    Duration `yaml:"results_timeout"`    // search submit until the results form renders
	DownloadTimeout   Duration `yaml:"download_timeout"`   // document click until download completes
	SettleDelay       Duration `yaml:"settle_delay"`       // grace period for the result table to finish rendering
	DownloadDir       string   `yaml:"download_dir"`       // scratch space for downloads; empty = os temp
	DiagnosticsDir    string   `yaml:"diagnostics_dir"`    // screenshots and page dumps on failure
}

// MatchConfig holds the candidate-selection tuning knobs. These are
// calibration points against live site samples, not fixed constants.
type MatchConfig struct {
	NameWeight          float64 `yaml:"name_weight"`
	RegistrationWeight  float64 `yaml:"registration_weight"`
	AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
	AmbiguityMargin     float64 `yaml:"ambiguity_margin"`
	SuffixPenalty       float64 `yaml:"suffix_penalty"`
}

// RetryConfig drives the caller-side rerun of retryable outcomes.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
	Multiplier   float64  `yaml:"multiplier"`
}

// Config is the complete runtime configuration: defaults, then the
// optional YAML file, then flag overrides at the CLI edge. It is passed
// by value into constructors; nothing reads configuration from global
// state, so runs are reproducible.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Match   MatchConfig   `yaml:"match"`
	Retry   RetryConfig   `yaml:"retry"`
	DBPath  string        `yaml:"db_path"` // empty = next to the executable
}

// DefaultConfig returns the defaults tuned against handelsregister.de.
func DefaultConfig() Config {
	return Config{
		Browser: BrowserConfig{
			BaseURL:           "https://www.handelsregister.de",
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:       1920,
			WindowHeight:      1080,
			StepTimeout:       Duration(60 * time.Second),
			NavigationTimeout: Duration(10 * time.Second),
			ResultsTimeout:    Duration(30 * time.Second),
			DownloadTimeout:   Duration(45 * time.Second),
			SettleDelay:       Duration(2 * time.Second),
			DiagnosticsDir:    "diagnostics",
		},
		Match: MatchConfig{
			NameWeight:          0.4,
			RegistrationWeight:  0.6,
			AcceptanceThreshold: 0.5,
			AmbiguityMargin:     0.05,
			SuffixPenalty:       0.1,
		},
		Retry: RetryConfig{
			MaxAttempts:  1,
			InitialDelay: Duration(2 * time.Second),
			MaxDelay:     Duration(30 * time.Second),
			Multiplier:   2.0,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the scraper cannot run with.
func (c Config) Validate() error {
	if c.Browser.BaseURL == "" {
		return fmt.Errorf("browser.base_url must not be empty")
	}
	if c.Match.AcceptanceThreshold < 0 || c.Match.AcceptanceThreshold > 1 {
		return fmt.Errorf("match.acceptance_threshold must be in [0,1], got %v", c.Match.AcceptanceThreshold)
	}
	if c.Match.AmbiguityMargin < 0 || c.Match.AmbiguityMargin > 1 {
		return fmt.Errorf("match.ambiguity_margin must be in [0,1], got %v", c.Match.AmbiguityMargin)
	}
	if c.Match.NameWeight < 0 || c.Match.RegistrationWeight < 0 {
		return fmt.Errorf("match weights must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
