// Package physics provides the right-hand-side laws the integrator advances.
//
//   - [Diffusion]: 2-D heat equation, 5-point Laplacian on interior cells
//   - [ThreeBody]: Newtonian gravity between three point masses
//
// Each model validates its positional parameter vector on construction and
// exposes RHS, a [dynamo.RHSFunc] over the flat state layout. Structured
// evaluators (Laplacian, Accelerations) work on the decoded layout and are
// independent of the vector encoding.
//
// # Conservation
//
// ThreeBody implements [dynamo.Hamiltonian] so drift can be monitored:
//
//	tb, _ := physics.NewThreeBody(params)
//	e0 := tb.Energy(state)
package physics
