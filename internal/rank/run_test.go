package rank

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestRun_ThresholdTriangleOrdering(t *testing.T) {
	t.Parallel()

	g := buildTriangle(t)
	res, err := Run(context.Background(), g, DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Converged {
		t.Error("expected Converged")
	}
	if res.Distance >= 0.005 {
		t.Errorf("final distance %v not below threshold", res.Distance)
	}
	if res.Iterations != 8 {
		t.Errorf("Iterations = %d, want 8", res.Iterations)
	}

	a, b, c := score(t, g, res.Vector, "A"), score(t, g, res.Vector, "B"), score(t, g, res.Vector, "C")
	if !(a > b && b > c) {
		t.Errorf("want rank(A) > rank(B) > rank(C), got %v, %v, %v", a, b, c)
	}

	want := map[string]float64{"A": 0.3955669333333335, "B": 0.3831202133333334, "C": 0.2213128533333334}
	for id, w := range want {
		if got := score(t, g, res.Vector, id); math.Abs(got-w) > 1e-12 {
			t.Errorf("score(%s) = %v, want %v", id, got, w)
		}
	}
}

func TestRun_ExactlyZeroReturnsUniform(t *testing.T) {
	t.Parallel()

	g := buildSinky(t)
	res, err := Run(context.Background(), g, Options{Damping: 0.2, Mode: ModeExactly, Iterations: 0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != 0 || res.Distance != 0 {
		t.Errorf("Iterations=%d Distance=%v, want 0, 0", res.Iterations, res.Distance)
	}
	for i, s := range res.Vector {
		if s != 0.25 {
			t.Errorf("v[%d] = %v, want 0.25", i, s)
		}
	}
}

func TestRun_ExactlyIsDeterministicAndResumable(t *testing.T) {
	t.Parallel()

	g := buildChain(t, 30)
	ctx := context.Background()

	full, err := Run(ctx, g, Options{Damping: 0.2, Mode: ModeExactly, Iterations: 12})
	if err != nil {
		t.Fatal(err)
	}
	part, err := Run(ctx, g, Options{Damping: 0.2, Mode: ModeExactly, Iterations: 7})
	if err != nil {
		t.Fatal(err)
	}

	v := part.Vector
	for i := 0; i < 5; i++ {
		v = Step(g, v, 0.2)
	}
	for i := range v {
		if v[i] != full.Vector[i] {
			t.Fatalf("page %q: resumed %v != single run %v", g.Page(i), v[i], full.Vector[i])
		}
	}
	if full.Iterations != 12 {
		t.Errorf("Iterations = %d, want 12", full.Iterations)
	}
	if full.Converged {
		t.Error("exactly mode never reports Converged")
	}
}

func TestRun_DistanceTrendsToZero(t *testing.T) {
	t.Parallel()

	g := buildTriangle(t)
	var distances []float64
	opts := Options{
		Damping:    0.2,
		Mode:       ModeExactly,
		Iterations: 40,
		Observer: func(it Iteration) {
			distances = append(distances, it.Distance)
			if math.Abs(it.Mass-1) > massTolerance {
				t.Errorf("iteration %d: mass %v", it.Number, it.Mass)
			}
		},
	}
	if _, err := Run(context.Background(), g, opts); err != nil {
		t.Fatal(err)
	}
	if len(distances) != 40 {
		t.Fatalf("observer called %d times, want 40", len(distances))
	}
	if distances[39] >= distances[0] {
		t.Errorf("distance did not shrink: first %v, last %v", distances[0], distances[39])
	}
	if distances[39] > 1e-6 {
		t.Errorf("distance after 40 steps = %v, want near 0", distances[39])
	}
}

func TestRun_MaxIterationsCap(t *testing.T) {
	t.Parallel()

	g := buildTriangle(t)

	// Threshold 0 can never be met; the cap stops the run.
	res, err := Run(context.Background(), g, Options{Damping: 0.2, Threshold: 0, MaxIterations: 5})
	if !errors.Is(err, ErrNotConverged) {
		t.Fatalf("error = %v, want ErrNotConverged", err)
	}
	if res.Iterations != 5 || res.Converged {
		t.Errorf("Iterations=%d Converged=%v, want 5, false", res.Iterations, res.Converged)
	}
	if len(res.Vector) != g.Len() {
		t.Error("capped run should still return the last vector")
	}
}

func TestRun_CapAboveConvergenceIsInvisible(t *testing.T) {
	t.Parallel()

	g := buildTriangle(t)
	ctx := context.Background()

	uncapped, err := Run(ctx, g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.MaxIterations = 1000
	capped, err := Run(ctx, g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if capped.Iterations != uncapped.Iterations {
		t.Errorf("capped iterations %d != uncapped %d", capped.Iterations, uncapped.Iterations)
	}
	for i := range capped.Vector {
		if capped.Vector[i] != uncapped.Vector[i] {
			t.Fatalf("page %q differs: %v vs %v", g.Page(i), capped.Vector[i], uncapped.Vector[i])
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	g := buildTriangle(t)
	ctx, cancel := context.WithCancel(context.Background())

	// Threshold 0 never converges; cancel from the observer.
	opts := Options{
		Damping:   0.2,
		Threshold: 0,
		Observer: func(it Iteration) {
			if it.Number == 3 {
				cancel()
			}
		},
	}
	res, err := Run(ctx, g, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res.Iterations != 3 {
		t.Errorf("Iterations = %d, want 3", res.Iterations)
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"damping zero", Options{Damping: 0}, false},
		{"damping one", Options{Damping: 1}, false},
		{"negative damping", Options{Damping: -0.1}, true},
		{"damping above one", Options{Damping: 1.5}, true},
		{"nan damping", Options{Damping: math.NaN()}, true},
		{"negative threshold", Options{Damping: 0.2, Threshold: -1}, true},
		{"negative iterations", Options{Damping: 0.2, Mode: ModeExactly, Iterations: -1}, true},
		{"exactly ignores threshold", Options{Damping: 0.2, Mode: ModeExactly, Threshold: -1}, false},
		{"negative cap", Options{Damping: 0.2, MaxIterations: -1}, true},
		{"unknown mode", Options{Damping: 0.2, Mode: Mode(7)}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Validate() = %v, want ErrInvalidOptions", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestRun_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	called := false
	_, err := Run(context.Background(), buildTriangle(t), Options{Damping: 2, Observer: func(Iteration) { called = true }})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("error = %v, want ErrInvalidOptions", err)
	}
	if called {
		t.Error("no iteration should run with invalid options")
	}
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	if ModeThreshold.String() != "threshold" || ModeExactly.String() != "exactly" {
		t.Errorf("unexpected mode names %q, %q", ModeThreshold, ModeExactly)
	}
	if Mode(9).String() != "Mode(9)" {
		t.Errorf("Mode(9).String() = %q", Mode(9).String())
	}
}
