package main

import (
	"fmt"
	"math"

	"github.com/sarelg/Computational-Physics/internal/dynamo"
	"github.com/sarelg/Computational-Physics/internal/metrics"
	"github.com/sarelg/Computational-Physics/internal/physics"
	"github.com/sarelg/Computational-Physics/stepper"
)

// diagnostics collects per-frame metrics and the scalar series charted for a
// model.
type diagnostics struct {
	metrics []metrics.Metric
	label   string
	series  func(dynamo.State) float64
	values  []float64
	extra   [][2]string
}

func newDiagnostics(model string, params []float64) (*diagnostics, error) {
	switch model {
	case stepper.Gravity:
		tb, err := physics.NewThreeBody(params)
		if err != nil {
			return nil, err
		}
		return &diagnostics{
			metrics: []metrics.Metric{
				metrics.NewEnergyDrift(tb),
				metrics.NewVectorDrift("momentum_drift", tb.Momentum),
				metrics.NewVectorDrift("angular_momentum_drift", tb.AngularMomentum),
			},
			label:  "total energy",
			series: tb.Energy,
		}, nil
	case stepper.Diffusion:
		d, err := physics.NewDiffusion(params)
		if err != nil {
			return nil, err
		}
		diag := &diagnostics{
			metrics: []metrics.Metric{
				metrics.NewBoundaryDrift(d.Boundary),
				metrics.NewExtremum("interior_max", d.InteriorMax),
			},
			label:  "interior heat content",
			series: d.HeatContent,
		}
		if lim := d.StabilityLimit(); !math.IsInf(lim, 1) {
			diag.extra = append(diag.extra, [2]string{"stability limit", fmt.Sprintf("%g", lim)})
		}
		return diag, nil
	}
	return nil, fmt.Errorf("%w: no diagnostics for model %q", stepper.ErrInvalidArgument, model)
}

func (d *diagnostics) observe(x []float64, t float64) {
	for _, m := range d.metrics {
		m.Observe(x, t)
	}
	d.values = append(d.values, d.series(x))
}
