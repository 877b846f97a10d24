package metrics

import "github.com/sarelg/Computational-Physics/internal/dynamo"

// Metric accumulates a scalar diagnostic over a sequence of frames.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}
