package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
)

// Drift tracks the largest deviation of a scalar invariant from its first
// observed value, relative to that value when it is non-zero.
type Drift struct {
	name     string
	quantity func(dynamo.State) float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(name string, quantity func(dynamo.State) float64) *Drift {
	return &Drift{
		name:     name,
		quantity: quantity,
	}
}

func NewEnergyDrift(h dynamo.Hamiltonian) *Drift {
	return NewDrift("energy_drift", h.Energy)
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(x dynamo.State, t float64) {
	q := d.quantity(x)

	if d.samples == 0 {
		d.initial = q
	}
	d.samples++

	drift := math.Abs(q - d.initial)
	if d.initial != 0 {
		drift /= math.Abs(d.initial)
	}
	if math.IsNaN(drift) {
		d.maxDrift = math.Inf(1)
		return
	}
	d.maxDrift = math.Max(d.maxDrift, drift)
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// VectorDrift is the absolute counterpart of Drift for vector invariants
// such as momentum, which are often zero.
type VectorDrift struct {
	name     string
	quantity func(dynamo.State) r3.Vec
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewVectorDrift(name string, quantity func(dynamo.State) r3.Vec) *VectorDrift {
	return &VectorDrift{
		name:     name,
		quantity: quantity,
	}
}

func (v *VectorDrift) Name() string { return v.name }

func (v *VectorDrift) Observe(x dynamo.State, t float64) {
	q := v.quantity(x)
	if v.samples == 0 {
		v.initial = q
	}
	v.samples++

	drift := r3.Norm(r3.Sub(q, v.initial))
	if math.IsNaN(drift) {
		v.maxDrift = math.Inf(1)
		return
	}
	v.maxDrift = math.Max(v.maxDrift, drift)
}

func (v *VectorDrift) Value() float64 { return v.maxDrift }

func (v *VectorDrift) Reset() {
	v.initial = r3.Vec{}
	v.maxDrift = 0
	v.samples = 0
}
