package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/pagerank/internal/config"
	"github.com/papapumpkin/pagerank/internal/ui"
)

func TestSubcommands_Registered(t *testing.T) {
	t.Parallel()

	want := []string{"run", "validate", "telemetry"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q subcommand to be registered on rootCmd", name)
		}
	}
}

func TestRunCmd_Flags(t *testing.T) {
	t.Parallel()

	flags := []string{
		"input", "damping", "threshold", "exactly", "max-iterations",
		"inlinks", "pagerank", "k", "summary", "telemetry", "watch",
	}
	for _, flag := range flags {
		flag := flag
		t.Run(flag, func(t *testing.T) {
			t.Parallel()
			if runCmd.Flags().Lookup(flag) == nil {
				t.Errorf("expected flag %q to be registered on run command", flag)
			}
			if rootCmd.LocalFlags().Lookup(flag) == nil {
				t.Errorf("expected flag %q to be registered on root command", flag)
			}
		})
	}
}

// newRunFlags returns a fresh command carrying the run flags, so tests do
// not share parsed flag state through runCmd.
func newRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	addRunFlags(c)
	c.Flags().BoolP("verbose", "v", false, "")
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%q): %v", args, err)
	}
	return c
}

func TestApplyFlagOverrides(t *testing.T) {
	viper.Reset()
	base, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		check func(config.Config) bool
	}{
		{"none", nil, func(c config.Config) bool { return c == base }},
		{"exactly", []string{"--exactly", "7"}, func(c config.Config) bool {
			return c.Mode == config.ModeExactly && c.Iterations == 7
		}},
		{"threshold", []string{"--threshold", "0.01"}, func(c config.Config) bool {
			return c.Mode == config.ModeThreshold && c.Threshold == 0.01
		}},
		{"explicit zero k", []string{"--k", "0"}, func(c config.Config) bool { return c.K == 0 }},
		{"paths", []string{"--input", "web.gz", "--pagerank", "pr.txt", "--inlinks", "in.txt"}, func(c config.Config) bool {
			return c.Input == "web.gz" && c.PageRankFile == "pr.txt" && c.InlinksFile == "in.txt"
		}},
		{"verbose", []string{"-v"}, func(c config.Config) bool { return c.Verbose }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			applyFlagOverrides(newRunFlags(t, tt.args...), &cfg)
			if !tt.check(cfg) {
				t.Errorf("unexpected config after %q: %+v", tt.args, cfg)
			}
		})
	}
}

func TestValidate_Checks(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.tsv")
	if err := os.WriteFile(input, []byte("A\tB\nB\tC\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Input = input
	cfg.PageRankFile = filepath.Join(dir, "pagerank.txt")
	cfg.InlinksFile = filepath.Join(dir, "inlinks.txt")

	var out bytes.Buffer
	if !validate(ui.NewWriter(&out), cfg) {
		t.Fatalf("validate failed:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "3 pages, 2 edges, 1 sinks") {
		t.Errorf("missing graph line:\n%s", out.String())
	}

	out.Reset()
	cfg.PageRankFile = filepath.Join(dir, "missing", "pagerank.txt")
	if validate(ui.NewWriter(&out), cfg) {
		t.Errorf("expected failure for missing output directory:\n%s", out.String())
	}

	out.Reset()
	cfg.Damping = 3
	if validate(ui.NewWriter(&out), cfg) {
		t.Error("expected failure for invalid damping")
	}
}

func TestPrintLines(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"ts":"2026-10-18T08:00:00Z","kind":"run_start","run":"a","data":{"damping":0.2,"mode":"threshold"}}`,
		`{"ts":"2026-10-18T08:00:01Z","kind":"iteration","run":"b","data":{"n":1}}`,
		`not json`,
		``,
	}, "\n")

	tests := []struct {
		name  string
		runID string
		want  []string
	}{
		{"all", "", []string{
			"[08:00:00] run_start run=a damping=0.2 mode=threshold",
			"[08:00:01] iteration run=b n=1",
			"??? not json",
		}},
		{"filtered", "b", []string{
			"[08:00:01] iteration run=b n=1",
			"??? not json",
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := printLines(&out, bufio.NewReader(strings.NewReader(input)), tt.runID); err != nil {
				t.Fatal(err)
			}
			got := strings.Split(strings.TrimSpace(out.String()), "\n")
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("printLines:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}
