package codec

import (
	"fmt"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// NumBodies is fixed: indices 0, 1, 2 are bodies "1", "2", "3".
	NumBodies = 3

	// BodyStateLen is the gravity state length: all positions, then all velocities.
	BodyStateLen = NumBodies * 6

	velOffset = NumBodies * 3
)

// Body is the kinematic state of one point mass.
type Body struct {
	Pos r3.Vec
	Vel r3.Vec
}

// DecodeBodies reads the 18-element layout r1 r2 r3 v1 v2 v3.
func DecodeBodies(flat []float64) ([NumBodies]Body, error) {
	var bodies [NumBodies]Body
	if len(flat) != BodyStateLen {
		return bodies, fmt.Errorf("%w: got %d values, three-body state has %d", dynamo.ErrInvalidShape, len(flat), BodyStateLen)
	}
	for i := range bodies {
		p := flat[3*i : 3*i+3]
		v := flat[velOffset+3*i : velOffset+3*i+3]
		bodies[i] = Body{
			Pos: r3.Vec{X: p[0], Y: p[1], Z: p[2]},
			Vel: r3.Vec{X: v[0], Y: v[1], Z: v[2]},
		}
	}
	return bodies, nil
}

// EncodeBodies writes bodies back into the flat layout DecodeBodies reads.
func EncodeBodies(bodies [NumBodies]Body) dynamo.State {
	out := make(dynamo.State, BodyStateLen)
	for i, b := range bodies {
		out[3*i], out[3*i+1], out[3*i+2] = b.Pos.X, b.Pos.Y, b.Pos.Z
		j := velOffset + 3*i
		out[j], out[j+1], out[j+2] = b.Vel.X, b.Vel.Y, b.Vel.Z
	}
	return out
}
