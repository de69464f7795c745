package rank

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/papapumpkin/pagerank/internal/linkgraph"
)

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid rank options")

// ErrNotConverged is returned in threshold mode when MaxIterations steps
// have run without the distance dropping below the threshold.
var ErrNotConverged = errors.New("rank did not converge")

// Mode selects the termination policy of Run.
type Mode int

const (
	ModeThreshold Mode = iota // iterate until the L2 distance drops below Threshold
	ModeExactly               // iterate exactly Iterations times
)

// String returns the mode's configuration name.
func (m Mode) String() string {
	switch m {
	case ModeThreshold:
		return "threshold"
	case ModeExactly:
		return "exactly"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Iteration describes a completed step; it is passed to Options.Observer.
type Iteration struct {
	Number   int     // 1-based step count
	Distance float64 // L2 distance from the previous vector
	Mass     float64 // total mass of the new vector
}

// Options configures Run.
type Options struct {
	Damping    float64 // teleport probability in [0, 1]
	Mode       Mode
	Threshold  float64 // convergence threshold for ModeThreshold
	Iterations int     // step count for ModeExactly

	// MaxIterations caps ModeThreshold. Zero means no cap: a run whose
	// distance never drops below Threshold does not terminate unless ctx
	// is cancelled.
	MaxIterations int

	// Observer, if set, is called after every step.
	Observer func(Iteration)
}

// DefaultOptions returns damping 0.2 and threshold mode at 0.005, uncapped.
func DefaultOptions() Options {
	return Options{
		Damping:   0.2,
		Mode:      ModeThreshold,
		Threshold: 0.005,
	}
}

// Validate rejects out-of-range options. Values are never clamped.
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Damping) || o.Damping < 0 || o.Damping > 1:
		return fmt.Errorf("%w: damping %v outside [0, 1]", ErrInvalidOptions, o.Damping)
	case o.Mode != ModeThreshold && o.Mode != ModeExactly:
		return fmt.Errorf("%w: unknown mode %v", ErrInvalidOptions, o.Mode)
	case o.Mode == ModeThreshold && (math.IsNaN(o.Threshold) || o.Threshold < 0):
		return fmt.Errorf("%w: threshold %v is negative", ErrInvalidOptions, o.Threshold)
	case o.Mode == ModeExactly && o.Iterations < 0:
		return fmt.Errorf("%w: iteration count %d is negative", ErrInvalidOptions, o.Iterations)
	case o.MaxIterations < 0:
		return fmt.Errorf("%w: max iterations %d is negative", ErrInvalidOptions, o.MaxIterations)
	}
	return nil
}

// Result is the outcome of Run.
type Result struct {
	Vector     Vector
	Iterations int     // steps applied
	Distance   float64 // L2 distance of the last step; 0 if no step ran
	Converged  bool    // true when ModeThreshold stopped below Threshold
}

// Run iterates Step from the uniform vector under the termination policy
// in opts and returns the final vector. ctx is checked between steps; on
// cancellation or ErrNotConverged the returned Result still holds the last
// computed vector.
func Run(ctx context.Context, g *linkgraph.Graph, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Vector: Initialize(g)}
	for {
		if opts.Mode == ModeExactly && res.Iterations >= opts.Iterations {
			return res, nil
		}
		if opts.Mode == ModeThreshold && opts.MaxIterations > 0 && res.Iterations >= opts.MaxIterations {
			return res, fmt.Errorf("%w after %d iterations (distance %g, threshold %g)",
				ErrNotConverged, res.Iterations, res.Distance, opts.Threshold)
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		next := Step(g, res.Vector, opts.Damping)
		res.Distance = Distance(res.Vector, next)
		res.Vector = next
		res.Iterations++

		if opts.Observer != nil {
			opts.Observer(Iteration{
				Number:   res.Iterations,
				Distance: res.Distance,
				Mass:     next.Sum(),
			})
		}

		if opts.Mode == ModeThreshold && res.Distance < opts.Threshold {
			res.Converged = true
			return res, nil
		}
	}
}
