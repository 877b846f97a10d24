package main

import (
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/sarelg/Computational-Physics/internal/codec"
	"github.com/sarelg/Computational-Physics/internal/export"
	"github.com/sarelg/Computational-Physics/stepper"
)

func plotFrames(cmd *cobra.Command, args []string) error {
	cfg, logger, driver, err := setup(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSession(cmd, args, cfg)
	if err != nil {
		return err
	}
	diag, err := newDiagnostics(s.model, s.p.Params)
	if err != nil {
		return err
	}

	tr, err := simulate(driver, s, diag)
	if err != nil {
		return err
	}

	if s.model == stepper.Gravity {
		err = export.SavePNG(outPath, s.preset+" orbits", "x", "y", orbits(tr)...)
	} else {
		err = export.SavePNG(outPath, s.preset, "t", diag.label, export.Series{
			Name: diag.label,
			X:    tr.Times,
			Y:    diag.values,
		})
	}
	if err != nil {
		return err
	}

	level.Info(logger).Log("msg", "wrote plot", "path", outPath, "frames", tr.Len())
	return nil
}

// orbits projects each body's path onto the x-y plane.
func orbits(tr *export.Trajectory) []export.Series {
	names := [codec.NumBodies]string{"body 1", "body 2", "body 3"}
	out := make([]export.Series, codec.NumBodies)
	for b := range out {
		out[b] = export.Series{
			Name: names[b],
			X:    tr.Column(3 * b),
			Y:    tr.Column(3*b + 1),
		}
	}
	return out
}
