package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/sarelg/Computational-Physics/internal/config"
	"github.com/sarelg/Computational-Physics/stepper"
)

var (
	configFile string
	logLevel   string
	dt         float64
	frames     int
	preset     string
	stateArg   string
	paramsArg  string
	csvPath    string
	jsonPath   string
	outPath    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rtsim",
		Short:         "real-time state stepping for diffusion and three-body models",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	stepCmd := &cobra.Command{
		Use:   "step [model]",
		Short: "advance one state by dt",
		Args:  cobra.ExactArgs(1),
		RunE:  runStep,
	}
	stepCmd.Flags().Float64Var(&dt, "dt", 0, "real-time increment")
	stepCmd.Flags().StringVar(&stateArg, "state", "-", "state as a JSON array, - for stdin")
	stepCmd.Flags().StringVar(&paramsArg, "params", "", "parameters as a JSON array")
	_ = stepCmd.MarkFlagRequired("dt")
	_ = stepCmd.MarkFlagRequired("params")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "step a preset repeatedly and report conservation diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFrames,
	}
	addFrameFlags(runCmd)
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write the trajectory as csv")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the trajectory and metrics as json")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [model]",
		Short: "render diagnostics of a preset run to an image",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotFrames,
	}
	addFrameFlags(plotCmd)
	plotCmd.Flags().StringVar(&outPath, "out", "rtsim.png", "output image path")

	rootCmd.AddCommand(stepCmd, runCmd, presetsCmd, plotCmd)
	return rootCmd
}

func addFrameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "preset name")
	cmd.Flags().IntVar(&frames, "frames", 0, "number of frames")
	cmd.Flags().Float64Var(&dt, "dt", 0, "real-time increment per frame (default: preset)")
}

// loadConfig reads the config file and environment, letting explicit root
// flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var allow level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		allow = level.AllowDebug()
	case "", "info":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}

func newDriver(cfg *config.Config, logger log.Logger) *stepper.Driver {
	return stepper.New(
		stepper.WithLogger(logger),
		stepper.WithTolerance(stepper.Diffusion, stepper.Tolerance{Rtol: cfg.Diffusion.Rtol, Atol: cfg.Diffusion.Atol}),
		stepper.WithTolerance(stepper.Gravity, stepper.Tolerance{Rtol: cfg.Gravity.Rtol, Atol: cfg.Gravity.Atol}),
	)
}

// setup is shared by every command that steps a model.
func setup(cmd *cobra.Command) (*config.Config, log.Logger, *stepper.Driver, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, newDriver(cfg, logger), nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := stepper.Models()
	if len(args) == 1 {
		if _, err := stepper.Lookup(args[0]); err != nil {
			return err
		}
		models = args[:1]
	}

	out := cmd.OutOrStdout()
	for _, model := range models {
		for _, name := range config.ListPresets(model) {
			p := config.GetPreset(model, name)
			fmt.Fprintf(out, "%-10s %-16s dt=%-8g %s\n", model, name, p.Dt, p.Description)
		}
	}
	return nil
}
