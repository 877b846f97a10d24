package stepper

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"github.com/sarelg/Computational-Physics/internal/integrators"
)

// Stats counts the integrator work of one call.
type Stats = integrators.Stats

// Driver advances states for any registered model with per-model
// tolerances. It is safe for concurrent use.
type Driver struct {
	logger     log.Logger
	tolerances map[string]Tolerance

	mu   sync.Mutex
	last Stats
}

type Option func(*Driver)

func WithLogger(l log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithTolerance overrides the error target for model. Non-positive fields
// keep the model default.
func WithTolerance(model string, tol Tolerance) Option {
	return func(d *Driver) { d.tolerances[model] = tol }
}

func New(opts ...Option) *Driver {
	d := &Driver{
		logger:     log.NewNopLogger(),
		tolerances: make(map[string]Tolerance),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NextDiffusion advances a row-major grid by dt with params (a, dx, dy, sizex, sizey).
func NextDiffusion(state []float64, dt float64, params []float64) ([]float64, error) {
	return New().Next(Diffusion, state, dt, params)
}

// NextGravity advances a three-body state (r1 r2 r3 v1 v2 v3) by dt with
// params (G, m1, m2, m3).
func NextGravity(state []float64, dt float64, params []float64) ([]float64, error) {
	return New().Next(Gravity, state, dt, params)
}

// Next is next_state for the named model. The input is never modified and
// the output has the same length.
func (d *Driver) Next(model string, state []float64, dt float64, params []float64) ([]float64, error) {
	m, err := Lookup(model)
	if err != nil {
		return nil, err
	}
	return d.step(m, state, dt, params)
}

// LastStats returns the integrator counters of the most recent successful call.
func (d *Driver) LastStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *Driver) step(m Model, state []float64, dt float64, params []float64) ([]float64, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil, fmt.Errorf("%s: %w: dt must be positive and finite, got %v", m.Name(), ErrInvalidArgument, dt)
	}
	x := dynamo.State(state)
	if !x.IsValid() {
		return nil, fmt.Errorf("%s: %w: state contains NaN or Inf", m.Name(), ErrInvalidArgument)
	}

	rhs, h0, err := m.Bind(x, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name(), err)
	}

	tol := d.tolerance(m)
	opts := integrators.DefaultOptions()
	opts.Rtol, opts.Atol, opts.InitialStep = tol.Rtol, tol.Atol, h0

	next, stats, err := integrators.NewRK45(opts).Integrate(rhs, x, 0, dt)
	if err != nil {
		level.Warn(d.logger).Log("msg", "step failed", "model", m.Name(), "dt", dt, "err", err)
		return nil, fmt.Errorf("%s: %w", m.Name(), err)
	}

	level.Debug(d.logger).Log(
		"msg", "advanced state",
		"model", m.Name(),
		"dt", dt,
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"evaluations", stats.Evaluations,
		"last_step", stats.LastStep,
	)

	d.mu.Lock()
	d.last = stats
	d.mu.Unlock()

	return next, nil
}

func (d *Driver) tolerance(m Model) Tolerance {
	tol := m.DefaultTolerance()
	if o, ok := d.tolerances[m.Name()]; ok {
		if o.Rtol > 0 {
			tol.Rtol = o.Rtol
		}
		if o.Atol > 0 {
			tol.Atol = o.Atol
		}
	}
	return tol
}
