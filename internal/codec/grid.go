// Package codec converts between the flat state vectors exchanged at the
// boundary and the structured layouts the RHS evaluators work on.
//
// All functions are pure: decoding copies its input and encoding returns a
// fresh vector, so EncodeGrid(DecodeGrid(x)) and EncodeBodies(DecodeBodies(x))
// reproduce x exactly.
package codec

import (
	"fmt"
	"math"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// maxGridDim bounds each grid axis so rows*cols cannot overflow.
const maxGridDim = 1 << 20

// GridDims interprets the real-valued sizex and sizey parameters as grid
// dimensions. Both must be positive integers.
func GridDims(sizex, sizey float64) (rows, cols int, err error) {
	if rows, err = gridDim("sizex", sizex); err != nil {
		return 0, 0, err
	}
	if cols, err = gridDim("sizey", sizey); err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}

func gridDim(name string, v float64) (int, error) {
	if math.IsNaN(v) || v < 1 || v > maxGridDim || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s=%v is not a positive integer", dynamo.ErrInvalidArgument, name, v)
	}
	return int(v), nil
}

// DecodeGrid reshapes a row-major vector of length rows*cols into a grid.
func DecodeGrid(flat []float64, rows, cols int) (*mat.Dense, error) {
	if rows < 1 || cols < 1 || len(flat) != rows*cols {
		return nil, fmt.Errorf("%w: got %d values for a %dx%d grid", dynamo.ErrInvalidShape, len(flat), rows, cols)
	}
	data := make([]float64, len(flat))
	copy(data, flat)
	return mat.NewDense(rows, cols, data), nil
}

// EncodeGrid flattens g in row-major order.
func EncodeGrid(g *mat.Dense) dynamo.State {
	rows, cols := g.Dims()
	raw := g.RawMatrix()
	out := make(dynamo.State, rows*cols)
	for i := 0; i < rows; i++ {
		copy(out[i*cols:(i+1)*cols], raw.Data[i*raw.Stride:i*raw.Stride+cols])
	}
	return out
}
