package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
)

func harmonicOscillator(_ float64, x dynamo.State) (dynamo.State, error) {
	return dynamo.State{x[1], -x[0]}, nil
}

func decay(rate float64) dynamo.RHSFunc {
	return func(_ float64, x dynamo.State) (dynamo.State, error) {
		return dynamo.State{-rate * x[0]}, nil
	}
}

func tight() Options {
	opts := DefaultOptions()
	opts.Rtol, opts.Atol = 1e-10, 1e-12
	return opts
}

func TestRK45_ExponentialDecay(t *testing.T) {
	integ := NewRK45(tight())

	y, stats, err := integ.Integrate(decay(1), dynamo.State{1}, 0, 1)
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}

	if got, want := y[0], math.Exp(-1); math.Abs(got-want) > 1e-8 {
		t.Errorf("y(1) = %.12f, want %.12f", got, want)
	}
	if stats.Accepted == 0 {
		t.Error("no steps accepted")
	}
	if stats.Evaluations != 6*(stats.Accepted+stats.Rejected)+2 {
		t.Errorf("unexpected evaluation count %d for %+v", stats.Evaluations, stats)
	}
}

func TestRK45_HarmonicOscillatorPeriod(t *testing.T) {
	integ := NewRK45(tight())
	x0 := dynamo.State{1.0, 0.0}

	x, _, err := integ.Integrate(harmonicOscillator, x0, 0, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}

	if d := x.MaxAbsDiff(x0); d > 1e-7 {
		t.Errorf("after one period state is %v, off by %e", x, d)
	}

	energy := 0.5 * (x[0]*x[0] + x[1]*x[1])
	if drift := math.Abs(energy - 0.5); drift > 1e-8 {
		t.Errorf("energy drift too high: %e", drift)
	}
}

func TestRK45_TimeDependentRHS(t *testing.T) {
	integ := NewRK45(tight())
	rhs := func(t float64, _ dynamo.State) (dynamo.State, error) {
		return dynamo.State{t * t}, nil
	}

	y, _, err := integ.Integrate(rhs, dynamo.State{0}, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := 7.0 / 3.0; math.Abs(y[0]-want) > 1e-10 {
		t.Errorf("∫₁² t² dt = %v, want %v", y[0], want)
	}
}

func TestRK45_LandsExactlyOnEnd(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	t0, t1 := 0.3, 1.7

	latest := math.Inf(-1)
	rhs := func(t float64, x dynamo.State) (dynamo.State, error) {
		latest = math.Max(latest, t)
		return dynamo.State{x[1], -x[0]}, nil
	}

	if _, _, err := integ.Integrate(rhs, dynamo.State{1, 0}, t0, t1); err != nil {
		t.Fatal(err)
	}
	if latest != t1 {
		t.Errorf("last evaluation at t=%v, want exactly %v", latest, t1)
	}
}

func TestRK45_ZeroRateIsFixedPoint(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	zero := func(_ float64, x dynamo.State) (dynamo.State, error) {
		return make(dynamo.State, len(x)), nil
	}
	x0 := dynamo.State{3, -1.5, 1e9, 0}

	for _, dt := range []float64{1e-3, 1, 86400} {
		x, _, err := integ.Integrate(zero, x0, 0, dt)
		if err != nil {
			t.Fatalf("dt=%v: %v", dt, err)
		}
		if d := x.MaxAbsDiff(x0); d != 0 {
			t.Errorf("dt=%v: state moved by %v", dt, d)
		}
	}
}

func TestRK45_ZeroRateLongIntervalGrowsStep(t *testing.T) {
	opts := DefaultOptions()
	opts.InitialStep = 0.25
	integ := NewRK45(opts)
	zero := func(_ float64, x dynamo.State) (dynamo.State, error) {
		return make(dynamo.State, len(x)), nil
	}
	x0 := dynamo.State{42.5, 42.5}

	x, stats, err := integ.Integrate(zero, x0, 0, 1e9)
	if err != nil {
		t.Fatal(err)
	}
	if d := x.MaxAbsDiff(x0); d != 0 {
		t.Errorf("state moved by %v", d)
	}
	if stats.Accepted > 20 || stats.Rejected != 0 {
		t.Errorf("expected a few growing steps, got %+v", stats)
	}
}

func TestRK45_RejectsOversizedSteps(t *testing.T) {
	opts := DefaultOptions()
	opts.InitialStep = 1.0
	integ := NewRK45(opts)

	y, stats, err := integ.Integrate(decay(50), dynamo.State{1}, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rejected == 0 {
		t.Error("expected the oversized first step to be rejected")
	}
	if math.Abs(y[0]) > 1e-5 {
		t.Errorf("y(1) = %v, want ≈ 0", y[0])
	}
}

func TestRK45_MaxStep(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxStep = 0.01
	integ := NewRK45(opts)

	_, stats, err := integ.Integrate(harmonicOscillator, dynamo.State{1, 0}, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Accepted < 100 {
		t.Errorf("accepted %d steps, MaxStep requires at least 100", stats.Accepted)
	}
	if stats.LastStep > 0.01 {
		t.Errorf("last step %v exceeds MaxStep", stats.LastStep)
	}
}

func TestRK45_MaxStepsExceeded(t *testing.T) {
	opts := tight()
	opts.MaxSteps = 3
	integ := NewRK45(opts)

	_, _, err := integ.Integrate(harmonicOscillator, dynamo.State{1, 0}, 0, 100)
	if !errors.Is(err, dynamo.ErrNonConvergence) {
		t.Fatalf("expected ErrNonConvergence, got %v", err)
	}
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 3 {
		t.Errorf("expected StepError at step 3, got %#v", err)
	}
}

func TestRK45_StepUnderflow(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	blowup := func(t float64, x dynamo.State) (dynamo.State, error) {
		if t > 0.5 {
			return dynamo.State{math.NaN()}, nil
		}
		return dynamo.State{1}, nil
	}

	_, _, err := integ.Integrate(blowup, dynamo.State{0}, 0, 1)
	if !errors.Is(err, dynamo.ErrNonConvergence) {
		t.Errorf("expected ErrNonConvergence, got %v", err)
	}
}

func TestRK45_PropagatesRHSError(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	boom := errors.New("boom")
	calls := 0
	rhs := func(_ float64, x dynamo.State) (dynamo.State, error) {
		calls++
		if calls > 10 {
			return nil, boom
		}
		return dynamo.State{x[1], -x[0]}, nil
	}

	y, _, err := integ.Integrate(rhs, dynamo.State{1, 0}, 0, 10)
	if !errors.Is(err, boom) {
		t.Fatalf("expected RHS error, got %v", err)
	}
	if y != nil {
		t.Errorf("partial state returned on failure: %v", y)
	}
}

func TestRK45_DerivativeShapeMismatch(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	rhs := func(_ float64, _ dynamo.State) (dynamo.State, error) {
		return dynamo.State{1}, nil
	}
	_, _, err := integ.Integrate(rhs, dynamo.State{1, 2}, 0, 1)
	if !errors.Is(err, dynamo.ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestRK45_InvalidInterval(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	tests := []struct {
		name   string
		t0, t1 float64
	}{
		{"empty", 1, 1},
		{"reversed", 1, 0},
		{"nan", 0, math.NaN()},
		{"inf", 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := integ.Integrate(harmonicOscillator, dynamo.State{1, 0}, tt.t0, tt.t1)
			if !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestRK45_EmptyState(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	y, stats, err := integ.Integrate(harmonicOscillator, dynamo.State{}, 0, 1)
	if err != nil || len(y) != 0 || stats.Evaluations != 0 {
		t.Errorf("empty state: y=%v stats=%+v err=%v", y, stats, err)
	}
}

func TestRK45_DoesNotMutateInput(t *testing.T) {
	integ := NewRK45(DefaultOptions())
	x0 := dynamo.State{1, 0}
	if _, _, err := integ.Integrate(harmonicOscillator, x0, 0, 1); err != nil {
		t.Fatal(err)
	}
	if x0[0] != 1 || x0[1] != 0 {
		t.Errorf("input state modified: %v", x0)
	}
}

func TestNewRK45_Defaults(t *testing.T) {
	opts := NewRK45(Options{Rtol: 1e-9}).Options()
	def := DefaultOptions()

	if opts.Rtol != 1e-9 {
		t.Errorf("Rtol overridden: %v", opts.Rtol)
	}
	if opts.MaxSteps != 0 {
		t.Errorf("step budget should be unbounded by default, got %d", opts.MaxSteps)
	}
	if opts.Atol != def.Atol || opts.Safety != def.Safety || opts.MaxScale != def.MaxScale || opts.MinScale != def.MinScale {
		t.Errorf("zero fields not defaulted: %+v", opts)
	}
}
