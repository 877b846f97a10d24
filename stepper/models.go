package stepper

import (
	"fmt"
	"math"
	"sort"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"github.com/sarelg/Computational-Physics/internal/physics"
)

const (
	Diffusion = "diffusion"
	Gravity   = "gravity"
)

// Tolerance is the relative/absolute error target for one model.
type Tolerance struct {
	Rtol float64
	Atol float64
}

// Model binds a physical law to the flat boundary contract.
type Model interface {
	Name() string
	// Bind validates state and params and returns the RHS to integrate plus
	// a starting sub-step size (0 lets the integrator choose).
	Bind(state dynamo.State, params []float64) (dynamo.RHSFunc, float64, error)
	DefaultTolerance() Tolerance
}

type diffusionModel struct{}

func (diffusionModel) Name() string { return Diffusion }

func (diffusionModel) DefaultTolerance() Tolerance { return Tolerance{Rtol: 1e-6, Atol: 1e-6} }

func (diffusionModel) Bind(state dynamo.State, params []float64) (dynamo.RHSFunc, float64, error) {
	d, err := physics.NewDiffusion(params)
	if err != nil {
		return nil, 0, err
	}
	if err := checkLen(state, d.StateDim()); err != nil {
		return nil, 0, err
	}
	h0 := d.StabilityLimit()
	if math.IsInf(h0, 1) {
		h0 = 0
	}
	return d.RHS(), h0, nil
}

type gravityModel struct{}

func (gravityModel) Name() string { return Gravity }

func (gravityModel) DefaultTolerance() Tolerance { return Tolerance{Rtol: 1e-9, Atol: 1e-12} }

func (gravityModel) Bind(state dynamo.State, params []float64) (dynamo.RHSFunc, float64, error) {
	tb, err := physics.NewThreeBody(params)
	if err != nil {
		return nil, 0, err
	}
	if err := checkLen(state, tb.StateDim()); err != nil {
		return nil, 0, err
	}
	return tb.RHS(), 0, nil
}

func checkLen(state dynamo.State, want int) error {
	if len(state) != want {
		return fmt.Errorf("%w: got %d values, want %d", ErrInvalidShape, len(state), want)
	}
	return nil
}

var models = map[string]Model{
	Diffusion: diffusionModel{},
	Gravity:   gravityModel{},
}

// Lookup returns the model registered under name.
func Lookup(name string) (Model, error) {
	m, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q (available: %v)", ErrInvalidArgument, name, Models())
	}
	return m, nil
}

// Models lists the registered model names in sorted order.
func Models() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
