package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel    = "diffusion"
	DefaultPreset   = "heat_bath"
	DefaultFrames   = 100
	DefaultLogLevel = "info"
)

// Config drives the rtsim reference driver. Zero tolerances fall back to the
// model defaults.
type Config struct {
	Model     string          `yaml:"model" env:"MODEL"`
	Preset    string          `yaml:"preset" env:"PRESET"`
	Dt        float64         `yaml:"dt" env:"DT"`
	Frames    int             `yaml:"frames" env:"FRAMES"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	Diffusion ToleranceConfig `yaml:"diffusion" envPrefix:"DIFFUSION_"`
	Gravity   ToleranceConfig `yaml:"gravity" envPrefix:"GRAVITY_"`
}

type ToleranceConfig struct {
	Rtol float64 `yaml:"rtol" env:"RTOL"`
	Atol float64 `yaml:"atol" env:"ATOL"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    DefaultModel,
		Preset:   DefaultPreset,
		Frames:   DefaultFrames,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads path (if not empty) over the defaults, then applies RTSIM_*
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "RTSIM_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
