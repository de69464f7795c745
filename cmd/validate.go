package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/pagerank/internal/config"
	"github.com/papapumpkin/pagerank/internal/pipeline"
	"github.com/papapumpkin/pagerank/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [input [damping [\"exactly N\"|threshold [inlinks_file [pagerank_file [k]]]]]]",
	Short: "Check the configuration and decode the input without ranking",
	Args:  cobra.MaximumNArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyPositional(args); err != nil {
			return err
		}
		if !validate(ui.New(), cfg) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validate prints one check line per concern and reports whether all
// passed. The input is decoded in full, so malformed lines surface here.
func validate(p *ui.Printer, cfg config.Config) bool {
	ok := true

	if err := cfg.Validate(); err != nil {
		p.Check(false, err.Error())
		return false
	}
	p.Check(true, fmt.Sprintf("configuration valid (damping %g, %s)", cfg.Damping, cfg.Mode))

	g, err := pipeline.LoadGraph(cfg.Input)
	if err != nil {
		p.Check(false, err.Error())
		ok = false
	} else {
		p.Check(true, fmt.Sprintf("%s: %d pages, %d edges, %d sinks", cfg.Input, g.Len(), g.EdgeCount(), len(g.Sinks())))
	}

	for _, out := range []string{cfg.PageRankFile, cfg.InlinksFile} {
		dir := filepath.Dir(out)
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			p.Check(false, fmt.Sprintf("output directory %s: %v", dir, err))
			ok = false
		case !info.IsDir():
			p.Check(false, fmt.Sprintf("output directory %s is not a directory", dir))
			ok = false
		default:
			p.Check(true, fmt.Sprintf("output %s", out))
		}
	}
	return ok
}
