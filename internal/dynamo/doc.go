// Package dynamo provides the primitives shared by the integration core.
//
// The package defines the vocabulary every other package speaks:
//
//   - [State]: flat vector exchanged at the boundary and inside the integrator
//   - [RHSFunc]: right-hand side of dy/dt = f(t, y)
//   - sentinel errors for shape, argument, singularity and convergence failures
//
// # Example
//
//	tb, err := physics.NewThreeBody(params)
//	rhs := tb.RHS()
//	integ := integrators.NewRK45(integrators.DefaultOptions())
//	y, stats, err := integ.Integrate(rhs, y0, 0, dt)
//
// # Thread Safety
//
// Nothing in this package holds mutable state. RHS closures built by the
// physics package may reuse scratch buffers and must not be shared across
// goroutines.
package dynamo
