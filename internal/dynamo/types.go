package dynamo

import "math"

// State is the flat, ordered vector exchanged at the system boundary.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest componentwise distance between s and other.
// Vectors of different length are infinitely far apart.
func (s State) MaxAbsDiff(other State) float64 {
	if len(s) != len(other) {
		return math.Inf(1)
	}
	d := 0.0
	for i := range s {
		d = math.Max(d, math.Abs(s[i]-other[i]))
	}
	return d
}

// RHSFunc evaluates the time derivative of y at time t. Implementations must
// not retain y and must return a fresh slice of the same length.
type RHSFunc func(t float64, y State) (State, error)

// Hamiltonian is implemented by models with a conserved scalar energy.
type Hamiltonian interface {
	Energy(x State) float64
}
