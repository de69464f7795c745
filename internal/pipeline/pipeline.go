// Package pipeline wires a validated configuration through the ranking
// core: decode the edge file, build the graph, iterate to the configured
// termination, and write the rank and inlink reports. Outputs are written
// only after every earlier stage has succeeded.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/papapumpkin/pagerank/internal/config"
	"github.com/papapumpkin/pagerank/internal/edgefile"
	"github.com/papapumpkin/pagerank/internal/linkgraph"
	"github.com/papapumpkin/pagerank/internal/rank"
	"github.com/papapumpkin/pagerank/internal/report"
	"github.com/papapumpkin/pagerank/internal/telemetry"
	"github.com/papapumpkin/pagerank/internal/ui"
)

// Outcome is everything a successful run produced.
type Outcome struct {
	Graph   *linkgraph.Graph
	Result  rank.Result
	Ranks   []report.Entry[float64]
	Inlinks []report.Entry[int]
	Summary report.Summary
}

// Runner executes ranking runs. The zero value is usable and prints
// nothing.
type Runner struct {
	Printer   *ui.Printer
	Telemetry *telemetry.Emitter // nil disables telemetry
	Verbose   bool               // print every iteration

	now func() time.Time
}

// RankOptions translates cfg into options for rank.Run.
func RankOptions(cfg config.Config) rank.Options {
	opts := rank.Options{
		Damping:       cfg.Damping,
		Threshold:     cfg.Threshold,
		Iterations:    cfg.Iterations,
		MaxIterations: cfg.MaxIterations,
	}
	if cfg.Mode == config.ModeExactly {
		opts.Mode = rank.ModeExactly
	}
	return opts
}

// LoadGraph decodes the edge file at path and builds its graph.
func LoadGraph(path string) (*linkgraph.Graph, error) {
	f, err := edgefile.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := linkgraph.Build(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func (r *Runner) printer() *ui.Printer {
	if r.Printer == nil {
		r.Printer = ui.NewWriter(io.Discard)
	}
	return r.Printer
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

// Execute performs one complete run for cfg.
func (r *Runner) Execute(ctx context.Context, cfg config.Config) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := r.printer()
	started := r.clock()

	opts := RankOptions(cfg)
	limit := fmt.Sprint(cfg.Threshold)
	if opts.Mode == rank.ModeExactly {
		limit = fmt.Sprint(cfg.Iterations)
	}
	p.RunStart(cfg.Input, cfg.Damping, opts.Mode.String(), limit)
	_ = r.Telemetry.Record(telemetry.KindRunStart, telemetry.RunStart{
		Input:         cfg.Input,
		Damping:       cfg.Damping,
		Mode:          opts.Mode.String(),
		Threshold:     cfg.Threshold,
		Iterations:    cfg.Iterations,
		MaxIterations: cfg.MaxIterations,
	})

	g, err := LoadGraph(cfg.Input)
	if err != nil {
		return nil, r.fail(err)
	}
	p.GraphBuilt(g.Len(), g.EdgeCount(), len(g.Sinks()), r.clock().Sub(started))
	_ = r.Telemetry.Record(telemetry.KindGraphBuilt, telemetry.GraphBuilt{
		Pages: g.Len(),
		Edges: g.EdgeCount(),
		Sinks: len(g.Sinks()),
	})

	opts.Observer = func(it rank.Iteration) {
		if r.Verbose {
			p.Iteration(it.Number, it.Distance, it.Mass)
		}
		_ = r.Telemetry.Record(telemetry.KindIteration, telemetry.Iteration{
			Number:   it.Number,
			Distance: it.Distance,
			Mass:     it.Mass,
		})
	}

	res, err := rank.Run(ctx, g, opts)
	if err != nil {
		if errors.Is(err, rank.ErrNotConverged) {
			p.NotConverged(res.Iterations, res.Distance, cfg.Threshold)
		}
		return nil, r.fail(err)
	}
	if res.Converged {
		p.Converged(res.Iterations, res.Distance)
	} else {
		p.Completed(res.Iterations, res.Distance)
	}
	_ = r.Telemetry.Record(telemetry.KindRunDone, telemetry.RunDone{
		Iterations: res.Iterations,
		Distance:   res.Distance,
		Converged:  res.Converged,
		ElapsedMs:  r.clock().Sub(started).Milliseconds(),
	})

	out := &Outcome{
		Graph:   g,
		Result:  res,
		Ranks:   report.TopRanks(res.Vector.Map(g), cfg.K),
		Inlinks: report.TopInlinks(linkgraph.Inlinks(g), cfg.K),
	}

	if err := r.writeReports(cfg, out); err != nil {
		return nil, r.fail(err)
	}

	out.Summary = report.Summary{
		Input:         cfg.Input,
		StartedAt:     started,
		CompletedAt:   r.clock(),
		Damping:       cfg.Damping,
		Mode:          opts.Mode.String(),
		Threshold:     cfg.Threshold,
		MaxIterations: cfg.MaxIterations,
		K:             cfg.K,
		Pages:         g.Len(),
		Edges:         g.EdgeCount(),
		Sinks:         len(g.Sinks()),
		Iterations:    res.Iterations,
		FinalDistance: res.Distance,
		Converged:     res.Converged,
		Mass:          res.Vector.Sum(),
		RankFile:      cfg.PageRankFile,
		InlinkFile:    cfg.InlinksFile,
	}
	if len(out.Ranks) > 0 {
		out.Summary.TopPage = out.Ranks[0].ID
		out.Summary.TopScore = out.Ranks[0].Value
		p.TopPage(out.Ranks[0].ID, report.FormatScore(out.Ranks[0].Value))
	}
	if cfg.SummaryFile != "" {
		if err := report.WriteSummary(cfg.SummaryFile, &out.Summary); err != nil {
			return nil, r.fail(err)
		}
		p.ReportWritten("summary", cfg.SummaryFile, 1)
	}
	return out, nil
}

func (r *Runner) writeReports(cfg config.Config, out *Outcome) error {
	err := report.WriteFile(cfg.PageRankFile, func(w io.Writer) error {
		return report.WriteRanks(w, out.Ranks)
	})
	if err != nil {
		return err
	}
	r.reportWritten("pagerank", cfg.PageRankFile, len(out.Ranks))

	err = report.WriteFile(cfg.InlinksFile, func(w io.Writer) error {
		return report.WriteInlinks(w, out.Inlinks)
	})
	if err != nil {
		return err
	}
	r.reportWritten("inlinks", cfg.InlinksFile, len(out.Inlinks))
	return nil
}

func (r *Runner) reportWritten(kind, path string, entries int) {
	r.printer().ReportWritten(kind, path, entries)
	_ = r.Telemetry.Record(telemetry.KindReportWritten, telemetry.ReportWritten{
		Path:    path,
		Report:  kind,
		Entries: entries,
	})
}

func (r *Runner) fail(err error) error {
	_ = r.Telemetry.Record(telemetry.KindRunFailed, map[string]string{"error": err.Error()})
	return err
}
