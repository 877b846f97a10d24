package physics

import (
	"fmt"
	"math"

	"github.com/sarelg/Computational-Physics/internal/codec"
	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// DiffusionParams is the parameter count: (a, dx, dy, sizex, sizey).
const DiffusionParams = 5

// Diffusion implements the 2-D heat equation du/dt = a∇²u by the method of
// lines. Boundary rows and columns are frozen.
type Diffusion struct {
	A, Dx, Dy  float64
	Rows, Cols int
}

func NewDiffusion(params []float64) (*Diffusion, error) {
	if len(params) != DiffusionParams {
		return nil, fmt.Errorf("%w: diffusion expects %d parameters (a, dx, dy, sizex, sizey), got %d",
			dynamo.ErrInvalidArgument, DiffusionParams, len(params))
	}
	a, dx, dy := params[0], params[1], params[2]
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		return nil, fmt.Errorf("%w: diffusivity a=%v must be finite and non-negative", dynamo.ErrInvalidArgument, a)
	}
	for _, h := range []float64{dx, dy} {
		if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
			return nil, fmt.Errorf("%w: grid spacing %v must be finite and positive", dynamo.ErrInvalidArgument, h)
		}
	}
	rows, cols, err := codec.GridDims(params[3], params[4])
	if err != nil {
		return nil, err
	}
	return &Diffusion{A: a, Dx: dx, Dy: dy, Rows: rows, Cols: cols}, nil
}

func (d *Diffusion) StateDim() int { return d.Rows * d.Cols }

// Laplacian writes the rate of change of u into du: the scaled 5-point
// stencil on interior cells and zero on the boundary. du must match u's shape.
func (d *Diffusion) Laplacian(u, du *mat.Dense) {
	rows, cols := u.Dims()
	cx, cy := d.A/(d.Dx*d.Dx), d.A/(d.Dy*d.Dy)
	du.Zero()
	for i := 1; i < rows-1; i++ {
		for j := 1; j < cols-1; j++ {
			c := u.At(i, j)
			v := (u.At(i+1, j)-2*c+u.At(i-1, j))*cx +
				(u.At(i, j+1)-2*c+u.At(i, j-1))*cy
			du.Set(i, j, v)
		}
	}
}

// RHS reshapes the flat working vector into a grid on every evaluation.
// The returned function reuses a scratch grid and is not safe for
// concurrent use.
func (d *Diffusion) RHS() dynamo.RHSFunc {
	du := mat.NewDense(d.Rows, d.Cols, nil)
	return func(_ float64, y dynamo.State) (dynamo.State, error) {
		u, err := codec.DecodeGrid(y, d.Rows, d.Cols)
		if err != nil {
			return nil, err
		}
		d.Laplacian(u, du)
		return codec.EncodeGrid(du), nil
	}
}

// StabilityLimit is the explicit parabolic step bound dx²dy²/(2a(dx²+dy²)).
// It is +Inf when a is zero.
func (d *Diffusion) StabilityLimit() float64 {
	if d.A == 0 {
		return math.Inf(1)
	}
	dx2, dy2 := d.Dx*d.Dx, d.Dy*d.Dy
	return dx2 * dy2 / (2 * d.A * (dx2 + dy2))
}

// HeatContent integrates u over the interior cells.
func (d *Diffusion) HeatContent(x dynamo.State) float64 {
	u, err := codec.DecodeGrid(x, d.Rows, d.Cols)
	if err != nil {
		return math.NaN()
	}
	sum := 0.0
	for i := 1; i < d.Rows-1; i++ {
		for j := 1; j < d.Cols-1; j++ {
			sum += u.At(i, j)
		}
	}
	return sum * d.Dx * d.Dy
}

// InteriorMax returns the largest interior value, or -Inf for grids without
// an interior.
func (d *Diffusion) InteriorMax(x dynamo.State) float64 {
	u, err := codec.DecodeGrid(x, d.Rows, d.Cols)
	if err != nil {
		return math.NaN()
	}
	m := math.Inf(-1)
	for i := 1; i < d.Rows-1; i++ {
		for j := 1; j < d.Cols-1; j++ {
			m = math.Max(m, u.At(i, j))
		}
	}
	return m
}

// Boundary returns the frozen cells of x in row-major order.
func (d *Diffusion) Boundary(x dynamo.State) []float64 {
	if len(x) != d.Rows*d.Cols {
		return nil
	}
	out := make([]float64, 0, 2*(d.Rows+d.Cols))
	for i := 0; i < d.Rows; i++ {
		for j := 0; j < d.Cols; j++ {
			if i == 0 || j == 0 || i == d.Rows-1 || j == d.Cols-1 {
				out = append(out, x[i*d.Cols+j])
			}
		}
	}
	return out
}
