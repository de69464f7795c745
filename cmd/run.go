package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/pagerank/internal/config"
	"github.com/papapumpkin/pagerank/internal/pipeline"
	"github.com/papapumpkin/pagerank/internal/telemetry"
	"github.com/papapumpkin/pagerank/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [input [damping [\"exactly N\"|threshold [inlinks_file [pagerank_file [k]]]]]]",
	Short: "Rank an edge file and write the top-K reports",
	Long: `Rank an edge file and write the top-K reports.

Positional arguments override the configuration in order; flags override
both. The third argument is either a convergence threshold such as 0.005
or "exactly N" to run N iterations regardless of convergence.`,
	Args: cobra.MaximumNArgs(6),
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	addRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the run flags on c.
func addRunFlags(c *cobra.Command) {
	c.Flags().String("input", "", "edge file to rank (plain or gzip)")
	c.Flags().Float64("damping", 0, "probability of a random jump per step")
	c.Flags().Float64("threshold", 0, "stop once the L2 distance between iterations falls below this")
	c.Flags().Int("exactly", 0, "run exactly this many iterations")
	c.Flags().Int("max-iterations", 0, "fail a threshold run after this many iterations (0 = unlimited)")
	c.Flags().String("inlinks", "", "output file for the inlink-count report")
	c.Flags().String("pagerank", "", "output file for the rank report")
	c.Flags().Int("k", 0, "number of report entries (at most 100)")
	c.Flags().String("summary", "", "write a TOML run summary to this file")
	c.Flags().String("telemetry", "", "append JSONL run events to this file")
	c.Flags().Bool("watch", false, "re-rank whenever the input file changes")
	c.MarkFlagsMutuallyExclusive("threshold", "exactly")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyPositional(args); err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	printer := ui.New()
	printer.Banner()

	emitter, err := openTelemetry(cfg.TelemetryFile)
	if err != nil {
		return err
	}
	defer emitter.Close()

	runner := &pipeline.Runner{
		Printer:   printer,
		Telemetry: emitter,
		Verbose:   cfg.Verbose,
	}

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return runner.Watch(ctx, cfg)
	}
	_, err = runner.Execute(ctx, cfg)
	return err
}

// applyFlagOverrides applies CLI flag values that were explicitly set.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input, _ = flags.GetString("input")
	}
	if flags.Changed("damping") {
		cfg.Damping, _ = flags.GetFloat64("damping")
	}
	if flags.Changed("threshold") {
		cfg.Mode = config.ModeThreshold
		cfg.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("exactly") {
		cfg.Mode = config.ModeExactly
		cfg.Iterations, _ = flags.GetInt("exactly")
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("inlinks") {
		cfg.InlinksFile, _ = flags.GetString("inlinks")
	}
	if flags.Changed("pagerank") {
		cfg.PageRankFile, _ = flags.GetString("pagerank")
	}
	if flags.Changed("k") {
		cfg.K, _ = flags.GetInt("k")
	}
	if flags.Changed("summary") {
		cfg.SummaryFile, _ = flags.GetString("summary")
	}
	if flags.Changed("telemetry") {
		cfg.TelemetryFile, _ = flags.GetString("telemetry")
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.Verbose = true
	}
}

// openTelemetry returns an emitter for path, or nil when path is empty.
// Each process gets its own run ID so appended runs can be told apart.
func openTelemetry(path string) (*telemetry.Emitter, error) {
	if path == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(path, uuid.New().String())
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
