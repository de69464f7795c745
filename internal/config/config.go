// Package config loads and validates run configuration for pagerank.
// Values come from .pagerank.yaml, PAGERANK_* environment variables, and
// CLI flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Termination mode names accepted in configuration.
const (
	ModeThreshold = "threshold"
	ModeExactly   = "exactly"
)

// Config holds all runtime configuration for a ranking run.
type Config struct {
	Input         string  `mapstructure:"input"`
	Damping       float64 `mapstructure:"damping"`
	Mode          string  `mapstructure:"mode"`
	Threshold     float64 `mapstructure:"threshold"`
	Iterations    int     `mapstructure:"iterations"`
	MaxIterations int     `mapstructure:"max_iterations"`
	InlinksFile   string  `mapstructure:"inlinks_file"`
	PageRankFile  string  `mapstructure:"pagerank_file"`
	K             int     `mapstructure:"k"`
	SummaryFile   string  `mapstructure:"summary_file"`
	TelemetryFile string  `mapstructure:"telemetry_file"`
	Verbose       bool    `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("input", "links.srt.gz")
	viper.SetDefault("damping", 0.2)
	viper.SetDefault("mode", ModeThreshold)
	viper.SetDefault("threshold", 0.005)
	viper.SetDefault("iterations", 0)
	viper.SetDefault("max_iterations", 0)
	viper.SetDefault("inlinks_file", "inlinks.txt")
	viper.SetDefault("pagerank_file", "pagerank.txt")
	viper.SetDefault("k", 100)
	viper.SetDefault("summary_file", "")
	viper.SetDefault("telemetry_file", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the ranking core cannot run. Nothing is
// clamped: an out-of-range value is always an error.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if strings.TrimSpace(c.Input) == "" {
		add("input path is empty")
	}
	if math.IsNaN(c.Damping) || c.Damping < 0 || c.Damping > 1 {
		add("damping %v outside [0, 1]", c.Damping)
	}
	switch c.Mode {
	case ModeThreshold:
		if math.IsNaN(c.Threshold) || c.Threshold < 0 {
			add("threshold %v is negative", c.Threshold)
		}
	case ModeExactly:
		if c.Iterations < 0 {
			add("iteration count %d is negative", c.Iterations)
		}
	default:
		add("unknown mode %q (want %q or %q)", c.Mode, ModeThreshold, ModeExactly)
	}
	if c.MaxIterations < 0 {
		add("max_iterations %d is negative", c.MaxIterations)
	}
	if c.K < 0 {
		add("k %d is negative", c.K)
	}
	if strings.TrimSpace(c.InlinksFile) == "" {
		add("inlinks output path is empty")
	}
	if strings.TrimSpace(c.PageRankFile) == "" {
		add("pagerank output path is empty")
	}
	return errors.Join(errs...)
}

// ApplyModeArg interprets a termination argument the way the positional
// command line does: "exactly N" selects a fixed count of N steps, and
// anything else is parsed as a convergence threshold.
func (c *Config) ApplyModeArg(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) > 0 && strings.HasPrefix(strings.ToLower(fields[0]), ModeExactly) {
		if len(fields) != 2 {
			return fmt.Errorf("%w: %q: want \"exactly N\"", ErrInvalid, arg)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("%w: iteration count %q: %v", ErrInvalid, fields[1], err)
		}
		c.Mode = ModeExactly
		c.Iterations = n
		return nil
	}

	tau, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return fmt.Errorf("%w: threshold %q: %v", ErrInvalid, arg, err)
	}
	c.Mode = ModeThreshold
	c.Threshold = tau
	return nil
}

// ApplyPositional overrides fields from the positional argument list
// input, damping, mode, inlinks file, pagerank file, k. Missing trailing
// arguments leave the corresponding fields unchanged.
func (c *Config) ApplyPositional(args []string) error {
	if len(args) > 6 {
		return fmt.Errorf("%w: expected at most 6 arguments, got %d", ErrInvalid, len(args))
	}
	if len(args) > 0 {
		c.Input = args[0]
	}
	if len(args) > 1 {
		d, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("%w: damping %q: %v", ErrInvalid, args[1], err)
		}
		c.Damping = d
	}
	if len(args) > 2 {
		if err := c.ApplyModeArg(args[2]); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		c.InlinksFile = args[3]
	}
	if len(args) > 4 {
		c.PageRankFile = args[4]
	}
	if len(args) > 5 {
		k, err := strconv.Atoi(args[5])
		if err != nil {
			return fmt.Errorf("%w: k %q: %v", ErrInvalid, args[5], err)
		}
		c.K = k
	}
	return nil
}
