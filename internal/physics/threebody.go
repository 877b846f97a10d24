package physics

import (
	"fmt"
	"math"

	"github.com/sarelg/Computational-Physics/internal/codec"
	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// GravityParams is the parameter count: (G, m1, m2, m3).
const GravityParams = 4

// ThreeBody implements Newtonian gravity between three point masses.
// State: [r1, r2, r3, v1, v2, v3], each a 3-vector.
type ThreeBody struct {
	G      float64                  // Gravitational constant
	Masses [codec.NumBodies]float64 // Body order is fixed
}

func NewThreeBody(params []float64) (*ThreeBody, error) {
	if len(params) != GravityParams {
		return nil, fmt.Errorf("%w: gravity expects %d parameters (G, m1, m2, m3), got %d",
			dynamo.ErrInvalidArgument, GravityParams, len(params))
	}
	for i, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: gravity parameter %d (%v) must be finite and non-negative",
				dynamo.ErrInvalidArgument, i, v)
		}
	}
	return &ThreeBody{
		G:      params[0],
		Masses: [codec.NumBodies]float64{params[1], params[2], params[3]},
	}, nil
}

func (tb *ThreeBody) StateDim() int { return codec.BodyStateLen }

// Accelerations sums the inverse-square pull of the other two bodies on each
// body. Coincident bodies yield ErrSingularity.
func (tb *ThreeBody) Accelerations(bodies [codec.NumBodies]codec.Body) ([codec.NumBodies]r3.Vec, error) {
	var acc [codec.NumBodies]r3.Vec
	for i := 0; i < codec.NumBodies; i++ {
		for j := i + 1; j < codec.NumBodies; j++ {
			d := r3.Sub(bodies[j].Pos, bodies[i].Pos)
			r := r3.Norm(d)
			if r == 0 {
				return acc, fmt.Errorf("%w: bodies %d and %d both at %v", dynamo.ErrSingularity, i+1, j+1, bodies[i].Pos)
			}
			s := tb.G / (r * r * r)
			acc[i] = r3.Add(acc[i], r3.Scale(s*tb.Masses[j], d))
			acc[j] = r3.Sub(acc[j], r3.Scale(s*tb.Masses[i], d))
		}
	}
	return acc, nil
}

// RHS returns velocities as the positions' derivative and accelerations as
// the velocities' derivative, in the state layout.
func (tb *ThreeBody) RHS() dynamo.RHSFunc {
	return func(_ float64, y dynamo.State) (dynamo.State, error) {
		bodies, err := codec.DecodeBodies(y)
		if err != nil {
			return nil, err
		}
		acc, err := tb.Accelerations(bodies)
		if err != nil {
			return nil, err
		}
		var rate [codec.NumBodies]codec.Body
		for i, b := range bodies {
			rate[i] = codec.Body{Pos: b.Vel, Vel: acc[i]}
		}
		return codec.EncodeBodies(rate), nil
	}
}

// Energy implements dynamo.Hamiltonian. Malformed or singular states give NaN.
func (tb *ThreeBody) Energy(x dynamo.State) float64 {
	bodies, err := codec.DecodeBodies(x)
	if err != nil {
		return math.NaN()
	}
	ke, pe := 0.0, 0.0
	for i := 0; i < codec.NumBodies; i++ {
		ke += 0.5 * tb.Masses[i] * r3.Norm2(bodies[i].Vel)
		for j := i + 1; j < codec.NumBodies; j++ {
			r := r3.Norm(r3.Sub(bodies[j].Pos, bodies[i].Pos))
			if r == 0 {
				return math.NaN()
			}
			pe -= tb.G * tb.Masses[i] * tb.Masses[j] / r
		}
	}
	return ke + pe
}

func (tb *ThreeBody) Momentum(x dynamo.State) r3.Vec {
	bodies, err := codec.DecodeBodies(x)
	if err != nil {
		return r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	var p r3.Vec
	for i, b := range bodies {
		p = r3.Add(p, r3.Scale(tb.Masses[i], b.Vel))
	}
	return p
}

func (tb *ThreeBody) AngularMomentum(x dynamo.State) r3.Vec {
	bodies, err := codec.DecodeBodies(x)
	if err != nil {
		return r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	var l r3.Vec
	for i, b := range bodies {
		l = r3.Add(l, r3.Scale(tb.Masses[i], r3.Cross(b.Pos, b.Vel)))
	}
	return l
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// when every mass is zero.
func (tb *ThreeBody) CenterOfMass(x dynamo.State) r3.Vec {
	bodies, err := codec.DecodeBodies(x)
	if err != nil {
		return r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	var c r3.Vec
	total := 0.0
	for i, b := range bodies {
		c = r3.Add(c, r3.Scale(tb.Masses[i], b.Pos))
		total += tb.Masses[i]
	}
	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, c)
}
