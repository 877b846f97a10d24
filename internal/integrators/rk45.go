package integrators

import (
	"fmt"
	"math"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Stage abscissae and weights in tableau order; the final stage is the
// fifth-order solution, evaluated again as the next step's first stage.
var (
	stages = []struct {
		at     float64
		coeffs []float64
	}{
		{a2, []float64{b21}},
		{a3, []float64{b31, b32}},
		{a4, []float64{b41, b42, b43}},
		{a5, []float64{b51, b52, b53, b54}},
		{1, []float64{b61, b62, b63, b64, b65}},
	}
	solution     = []float64{c1, 0, c3, c4, c5, c6}
	errorWeights = []float64{dc1, 0, dc3, dc4, dc5, dc6, dc7}
)

// errExponent is -1/(q+1) for the order-4 embedded estimate.
const errExponent = -1.0 / 5.0

// Options tunes error control. Zero fields take DefaultOptions values,
// except InitialStep, MinStep, MaxStep and MaxSteps where zero means
// "choose" or "unbounded".
type Options struct {
	Rtol, Atol  float64
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	MaxSteps    int

	Safety   float64
	MinScale float64
	MaxScale float64
}

func DefaultOptions() Options {
	return Options{
		Rtol:     1e-6,
		Atol:     1e-6,
		Safety:   0.9,
		MinScale: 0.2,
		MaxScale: 10.0,
	}
}

// Stats counts the work done by one Integrate call.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	LastStep    float64
}

// RK45 integrates dy/dt = f(t, y) with the Dormand-Prince 5(4) embedded pair,
// advancing with the fifth-order solution. It holds only configuration, so a
// single value may serve concurrent Integrate calls.
type RK45 struct {
	opts Options
}

func NewRK45(opts Options) *RK45 {
	def := DefaultOptions()
	if opts.Rtol <= 0 {
		opts.Rtol = def.Rtol
	}
	if opts.Atol <= 0 {
		opts.Atol = def.Atol
	}
	if opts.MaxSteps < 0 {
		opts.MaxSteps = 0
	}
	if opts.Safety <= 0 || opts.Safety >= 1 {
		opts.Safety = def.Safety
	}
	if opts.MinScale <= 0 || opts.MinScale >= 1 {
		opts.MinScale = def.MinScale
	}
	if opts.MaxScale <= 1 {
		opts.MaxScale = def.MaxScale
	}
	return &RK45{opts: opts}
}

func (r *RK45) Options() Options { return r.opts }

// scratch holds the buffers of one Integrate call.
type scratch struct {
	k     [7]dynamo.State
	stage dynamo.State
	ynew  dynamo.State
	errv  dynamo.State
}

// Integrate advances y0 from t0 to t1 and returns y(t1). Sub-steps never
// overshoot: the last accepted step is clamped to end exactly at t1.
// Failures are *dynamo.StepError values wrapping the cause, and no partial
// state is returned.
func (r *RK45) Integrate(f dynamo.RHSFunc, y0 dynamo.State, t0, t1 float64) (dynamo.State, Stats, error) {
	var st Stats
	if math.IsInf(t0, 0) || math.IsInf(t1, 0) || !(t1 > t0) {
		return nil, st, fmt.Errorf("%w: interval [%v, %v] is empty or unbounded", dynamo.ErrInvalidArgument, t0, t1)
	}

	n := len(y0)
	y := y0.Clone()
	if n == 0 {
		return y, st, nil
	}

	eval := func(t float64, x dynamo.State) (dynamo.State, error) {
		st.Evaluations++
		dx, err := f(t, x)
		if err != nil {
			return nil, err
		}
		if len(dx) != n {
			return nil, fmt.Errorf("%w: derivative has %d components, state has %d", dynamo.ErrInvalidShape, len(dx), n)
		}
		return dx, nil
	}

	k1, err := eval(t0, y)
	if err != nil {
		return nil, st, &dynamo.StepError{Time: t0, Wrapped: err}
	}

	h := r.opts.InitialStep
	if h <= 0 {
		if h, err = r.initialStep(eval, t0, y, k1, t1-t0); err != nil {
			return nil, st, &dynamo.StepError{Time: t0, Wrapped: err}
		}
	}
	h = r.clampMax(h)

	s := &scratch{
		stage: make(dynamo.State, n),
		ynew:  make(dynamo.State, n),
		errv:  make(dynamo.State, n),
	}

	t := t0
	rejected := false
	for t < t1 {
		step := st.Accepted + st.Rejected
		if r.opts.MaxSteps > 0 && step >= r.opts.MaxSteps {
			return nil, st, &dynamo.StepError{Step: step, Time: t, H: h,
				Wrapped: fmt.Errorf("%w: %d steps did not reach t=%v", dynamo.ErrNonConvergence, step, t1)}
		}
		if minStep := r.minStep(t, t1); !(h >= minStep) {
			return nil, st, &dynamo.StepError{Step: step, Time: t, H: h,
				Wrapped: fmt.Errorf("%w: step %g below %g", dynamo.ErrNonConvergence, h, minStep)}
		}

		tNext := t + h
		if tNext >= t1 {
			h, tNext = t1-t, t1
		}

		k7, errNorm, err := r.attempt(eval, s, t, tNext, y, k1, h)
		if err != nil {
			return nil, st, &dynamo.StepError{Step: step, Time: t, H: h, Wrapped: err}
		}

		// NaN norms fail this comparison and are treated as rejections.
		if errNorm <= 1 {
			st.Accepted++
			st.LastStep = h
			t = tNext
			y, s.ynew = s.ynew, y
			k1 = k7

			scale := r.opts.MaxScale
			if errNorm > 0 {
				scale = math.Min(r.opts.MaxScale, r.opts.Safety*math.Pow(errNorm, errExponent))
			}
			if rejected {
				scale = math.Min(1, scale)
			}
			h *= scale
			rejected = false
		} else {
			st.Rejected++
			scale := r.opts.MinScale
			if !math.IsNaN(errNorm) && !math.IsInf(errNorm, 0) {
				scale = math.Max(r.opts.MinScale, r.opts.Safety*math.Pow(errNorm, errExponent))
			}
			h *= scale
			rejected = true
		}
		h = r.clampMax(h)
	}

	return y, st, nil
}

// attempt takes one trial step of size h from (t, y) to tNext, leaving the
// candidate in s.ynew. Stages at the end of the step are evaluated at tNext
// itself so the final step samples the interval end exactly. It returns the
// FSAL derivative at the candidate and the scaled RMS error estimate.
func (r *RK45) attempt(eval dynamo.RHSFunc, s *scratch, t, tNext float64, y, k1 dynamo.State, h float64) (dynamo.State, float64, error) {
	k := &s.k
	k[0] = k1

	var err error
	for i, sg := range stages {
		at := t + sg.at*h
		if sg.at == 1 {
			at = tNext
		}
		combine(s.stage, y, h, k[:i+1], sg.coeffs)
		if k[i+1], err = eval(at, s.stage); err != nil {
			return nil, 0, err
		}
	}

	combine(s.ynew, y, h, k[:6], solution)
	if k[6], err = eval(tNext, s.ynew); err != nil {
		return nil, 0, err
	}

	for i := range s.errv {
		s.errv[i] = 0
	}
	combine(s.errv, s.errv, h, k[:], errorWeights)
	for i := range s.errv {
		s.errv[i] /= r.opts.Atol + r.opts.Rtol*math.Max(math.Abs(y[i]), math.Abs(s.ynew[i]))
	}

	return k[6], rmsNorm(s.errv), nil
}

// initialStep follows the Hairer-Wanner starting step heuristic: compare the
// state and derivative magnitudes, probe with one Euler step, and size h so
// the leading error term is about 1% of tolerance.
func (r *RK45) initialStep(eval dynamo.RHSFunc, t0 float64, y0, f0 dynamo.State, span float64) (float64, error) {
	n := len(y0)
	scale := make(dynamo.State, n)
	for i := range y0 {
		scale[i] = r.opts.Atol + r.opts.Rtol*math.Abs(y0[i])
	}
	buf := make(dynamo.State, n)

	floats.DivTo(buf, y0, scale)
	d0 := rmsNorm(buf)
	floats.DivTo(buf, f0, scale)
	d1 := rmsNorm(buf)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	y1 := floats.AddScaledTo(make(dynamo.State, n), y0, h0, f0)
	f1, err := eval(t0+h0, y1)
	if err != nil {
		return 0, err
	}

	floats.SubTo(buf, f1, f0)
	floats.Div(buf, scale)
	d2 := rmsNorm(buf) / h0

	var h1 float64
	if math.Max(d1, d2) <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), -errExponent)
	}

	return math.Min(math.Min(100*h0, h1), span), nil
}

func (r *RK45) clampMax(h float64) float64 {
	if r.opts.MaxStep > 0 {
		return math.Min(h, r.opts.MaxStep)
	}
	return h
}

// minStep is the smallest step that still advances t by a representable
// amount.
func (r *RK45) minStep(t, t1 float64) float64 {
	ref := math.Max(math.Abs(t), math.Abs(t1))
	ulp := math.Nextafter(ref, math.Inf(1)) - ref
	return math.Max(r.opts.MinStep, 10*ulp)
}

// combine sets dst = y + h*Σ coeffs[j]*ks[j]. dst may alias y.
func combine(dst, y dynamo.State, h float64, ks []dynamo.State, coeffs []float64) {
	copy(dst, y)
	for j, c := range coeffs {
		if c != 0 {
			floats.AddScaled(dst, h*c, ks[j])
		}
	}
}

func rmsNorm(v dynamo.State) float64 {
	return floats.Norm(v, 2) / math.Sqrt(float64(len(v)))
}
