package metrics

import (
	"math"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
)

// Extremum records the largest value a scalar reaches.
type Extremum struct {
	name     string
	quantity func(dynamo.State) float64
	max      float64
	samples  int
}

func NewExtremum(name string, quantity func(dynamo.State) float64) *Extremum {
	return &Extremum{
		name:     name,
		quantity: quantity,
	}
}

func (e *Extremum) Name() string { return e.name }

func (e *Extremum) Observe(x dynamo.State, t float64) {
	q := e.quantity(x)
	if e.samples == 0 || q > e.max {
		e.max = q
	}
	e.samples++
}

func (e *Extremum) Value() float64 {
	if e.samples == 0 {
		return math.NaN()
	}
	return e.max
}

func (e *Extremum) Reset() {
	e.max = 0
	e.samples = 0
}

// BoundaryDrift reports the largest absolute change of any fixed cell since
// the first frame. It should stay exactly zero for a frozen boundary.
type BoundaryDrift struct {
	boundary func(dynamo.State) []float64
	initial  []float64
	maxDrift float64
}

func NewBoundaryDrift(boundary func(dynamo.State) []float64) *BoundaryDrift {
	return &BoundaryDrift{boundary: boundary}
}

func (b *BoundaryDrift) Name() string { return "boundary_drift" }

func (b *BoundaryDrift) Observe(x dynamo.State, t float64) {
	cells := b.boundary(x)
	if b.initial == nil {
		b.initial = append([]float64{}, cells...)
		return
	}
	b.maxDrift = math.Max(b.maxDrift, dynamo.State(cells).MaxAbsDiff(b.initial))
}

func (b *BoundaryDrift) Value() float64 { return b.maxDrift }

func (b *BoundaryDrift) Reset() {
	b.initial = nil
	b.maxDrift = 0
}
