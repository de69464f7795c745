// Package ui prints human-facing progress lines for ranking runs. All
// output goes to stderr so that stdout stays free for piping.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/papapumpkin/pagerank/internal/ansi"
)

// Printer writes colored status lines.
type Printer struct {
	w     io.Writer
	plain bool
}

// New returns a Printer writing to os.Stderr. Color is disabled when the
// NO_COLOR environment variable is set.
func New() *Printer {
	return &Printer{w: os.Stderr, plain: os.Getenv("NO_COLOR") != ""}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Plain returns a copy of p that writes without escape codes.
func (p *Printer) Plain() *Printer {
	return &Printer{w: p.w, plain: true}
}

func (p *Printer) printf(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	if p.plain {
		s = ansi.Strip(s)
	}
	fmt.Fprint(p.w, s)
}

// Banner prints the run header.
func (p *Printer) Banner() {
	p.printf(ansi.Bold + ansi.Cyan + "pagerank" + ansi.Reset + ansi.Dim + " damped random-walk ranking" + ansi.Reset + "\n")
}

// RunStart describes the run about to begin. mode is the termination
// policy name and limit its threshold or step count.
func (p *Printer) RunStart(input string, damping float64, mode string, limit string) {
	p.printf(ansi.Cyan+"◆ input"+ansi.Reset+" %s "+ansi.Dim+"(damping %g, %s %s)"+ansi.Reset+"\n", input, damping, mode, limit)
}

// GraphBuilt reports the loaded graph's shape.
func (p *Printer) GraphBuilt(pages, edges, sinks int, elapsed time.Duration) {
	p.printf(ansi.Cyan+"◆ graph"+ansi.Reset+" %d pages, %d edges, %d sinks "+ansi.Dim+"(%s)"+ansi.Reset+"\n",
		pages, edges, sinks, elapsed.Round(time.Millisecond))
}

// Iteration prints one step's convergence distance.
func (p *Printer) Iteration(n int, distance, mass float64) {
	p.printf(ansi.Dim+"  iteration %4d  distance %.6e  mass %.12f"+ansi.Reset+"\n", n, distance, mass)
}

// Converged reports a threshold run that met its threshold.
func (p *Printer) Converged(iterations int, distance float64) {
	p.printf(ansi.Green+ansi.Bold+"✓ converged"+ansi.Reset+" after %d iteration(s) "+ansi.Dim+"(distance %.3e)"+ansi.Reset+"\n", iterations, distance)
}

// Completed reports a fixed-count run.
func (p *Printer) Completed(iterations int, distance float64) {
	p.printf(ansi.Green+ansi.Bold+"✓ completed"+ansi.Reset+" %d iteration(s) "+ansi.Dim+"(last distance %.3e)"+ansi.Reset+"\n", iterations, distance)
}

// NotConverged reports a threshold run stopped by its iteration cap.
func (p *Printer) NotConverged(iterations int, distance, threshold float64) {
	p.printf(ansi.Red+ansi.Bold+"✗ not converged"+ansi.Reset+" after %d iteration(s): distance %.3e, threshold %g\n",
		iterations, distance, threshold)
}

// ReportWritten reports an output file.
func (p *Printer) ReportWritten(kind, path string, entries int) {
	p.printf(ansi.Green+"✓ %s"+ansi.Reset+" %s "+ansi.Dim+"(%d entries)"+ansi.Reset+"\n", kind, path, entries)
}

// TopPage highlights the highest-ranked page.
func (p *Printer) TopPage(id string, score string) {
	p.printf(ansi.Magenta+"★ top"+ansi.Reset+" %s "+ansi.Dim+"%s"+ansi.Reset+"\n", id, score)
}

// Watching announces watch mode.
func (p *Printer) Watching(path string) {
	p.printf(ansi.Yellow+"⟳ watching"+ansi.Reset+" %s "+ansi.Dim+"(ctrl-c to stop)"+ansi.Reset+"\n", path)
}

// InputChanged announces a re-run triggered by a change to path.
func (p *Printer) InputChanged(path string) {
	p.printf("\n"+ansi.Yellow+ansi.Bold+"⟳ changed"+ansi.Reset+" %s, re-ranking\n", path)
}

// Check prints a validation result line.
func (p *Printer) Check(ok bool, msg string) {
	if ok {
		p.printf(ansi.Green+"✓"+ansi.Reset+" %s\n", msg)
		return
	}
	p.printf(ansi.Red+"✗"+ansi.Reset+" %s\n", msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.printf(ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	p.printf(ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}
