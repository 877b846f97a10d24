package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/sarelg/Computational-Physics/internal/config"
	"github.com/sarelg/Computational-Physics/internal/export"
	"github.com/sarelg/Computational-Physics/internal/metrics"
	"github.com/sarelg/Computational-Physics/stepper"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(26)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

// session is one resolved preset run.
type session struct {
	model  string
	preset string
	dt     float64
	frames int
	p      *config.Preset
}

func resolveSession(cmd *cobra.Command, args []string, cfg *config.Config) (*session, error) {
	s := &session{model: cfg.Model, preset: cfg.Preset, frames: cfg.Frames, dt: cfg.Dt}
	if len(args) == 1 {
		s.model = args[0]
		if args[0] != cfg.Model {
			s.preset = ""
		}
	}
	if _, err := stepper.Lookup(s.model); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("preset") {
		s.preset = preset
	}
	if s.preset == "" {
		names := config.ListPresets(s.model)
		if len(names) == 0 {
			return nil, fmt.Errorf("no presets for model %s", s.model)
		}
		s.preset = names[0]
	}
	s.p = config.GetPreset(s.model, s.preset)
	if s.p == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", s.preset, config.ListPresets(s.model))
	}

	if cmd.Flags().Changed("frames") {
		s.frames = frames
	}
	if cmd.Flags().Changed("dt") {
		s.dt = dt
	}
	if s.dt <= 0 {
		s.dt = s.p.Dt
	}
	if s.frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", s.frames)
	}
	return s, nil
}

// simulate steps the preset frame by frame, feeding every frame to the
// diagnostics.
func simulate(driver *stepper.Driver, s *session, diag *diagnostics) (*export.Trajectory, error) {
	tr := export.NewTrajectory(s.model, s.dt, s.p.Params)
	tr.Preset = s.preset

	state := s.p.State
	t := 0.0
	tr.Append(t, state)
	diag.observe(state, t)

	for i := 0; i < s.frames; i++ {
		next, err := driver.Next(s.model, state, s.dt, s.p.Params)
		if err != nil {
			return tr, fmt.Errorf("frame %d: %w", i+1, err)
		}
		state = next
		t += s.dt
		tr.Append(t, state)
		diag.observe(state, t)
	}

	for _, m := range diag.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}
	return tr, nil
}

func runFrames(cmd *cobra.Command, args []string) error {
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

	level.Info(logger).Log("msg", "running", "model", s.model, "preset", s.preset, "dt", s.dt, "frames", s.frames)

	tr, err := simulate(driver, s, diag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, asciigraph.Plot(diag.values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(diag.label),
	))
	fmt.Fprintln(out)
	renderSummary(out, s, diag)

	if csvPath != "" {
		if err := writeFile(csvPath, tr.WriteCSV); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "wrote trajectory", "path", csvPath, "frames", tr.Len())
	}
	if jsonPath != "" {
		if err := writeFile(jsonPath, tr.WriteJSON); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "wrote trajectory", "path", jsonPath, "frames", tr.Len())
	}
	return nil
}

func renderSummary(w io.Writer, s *session, diag *diagnostics) {
	rows := [][2]string{
		{"model", s.model},
		{"preset", s.preset},
		{"dt", fmt.Sprintf("%g", s.dt)},
		{"frames", fmt.Sprintf("%d", s.frames)},
	}
	rows = append(rows, diag.extra...)

	names := make([]string, 0, len(diag.metrics))
	byName := make(map[string]metrics.Metric, len(diag.metrics))
	for _, m := range diag.metrics {
		names = append(names, m.Name())
		byName[m.Name()] = m
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.3e", byName[name].Value())})
	}

	lines := []string{titleStyle.Render("rtsim summary")}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r[0]), valueStyle.Render(r[1])))
	}
	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
