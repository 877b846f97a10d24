// Package stepper is the public entry point: one call advances a model's
// flat state vector by a real-time increment dt.
//
//	next, err := stepper.NextDiffusion(grid, 0.1, []float64{2, 1, 1, 20, 20})
//	next, err := stepper.NextGravity(bodies, 86400, []float64{G, m1, m2, m3})
//
// Parameter order is the wire contract shared with existing callers:
// diffusion takes (a, dx, dy, sizex, sizey), gravity takes (G, m1, m2, m3).
// Every call decodes the state, integrates over [0, dt] with an adaptive
// Dormand-Prince stepper and re-encodes the result. Calls share no mutable
// state and either return a fully integrated vector or an error matching one
// of the Err* sentinels below.
package stepper
