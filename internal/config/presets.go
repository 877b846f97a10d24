package config

import (
	"sort"
)

// Preset is a ready-to-step initial condition with its parameters and a
// suggested frame increment.
type Preset struct {
	Model       string
	Description string
	Dt          float64
	State       []float64
	Params      []float64
}

// Physical constants in SI units.
const (
	GravitationalConstant = 6.67430e-11

	SunMass   = 1.9884e30
	EarthMass = 5.9723e24
	MoonMass  = 7.349e22

	SunEarthDistance  = 1.4960e11
	EarthMoonDistance = 3.850e8
	EarthSpeed        = 29780.0
	MoonSpeed         = 1022.0
)

var presets = map[string]map[string]func() *Preset{
	"diffusion": {
		"heat_bath": func() *Preset {
			n := 20
			return &Preset{
				Model:       "diffusion",
				Description: "20x20 plate between four heat baths",
				Dt:          0.1,
				State:       HeatBath(n, 100, -100, -200, 200),
				Params:      []float64{2.0, 1.0, 1.0, float64(n), float64(n)},
			}
		},
		"hotspot": func() *Preset {
			return &Preset{
				Model:       "diffusion",
				Description: "5x5 cold plate with a hot centre",
				Dt:          0.01,
				State:       Hotspot(5, 100),
				Params:      []float64{1.0, 1.0, 1.0, 5, 5},
			}
		},
	},
	"gravity": {
		"sun_earth_moon": func() *Preset {
			return &Preset{
				Model:       "gravity",
				Description: "sun, earth and moon in SI units, one day per frame",
				Dt:          86400,
				State:       SunEarthMoon(),
				Params:      []float64{GravitationalConstant, SunMass, EarthMass, MoonMass},
			}
		},
		"figure8": func() *Preset {
			return &Preset{
				Model:       "gravity",
				Description: "figure-eight choreography, G = m = 1",
				Dt:          0.01,
				State:       FigureEight(),
				Params:      []float64{1, 1, 1, 1},
			}
		},
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(model, name string) *Preset {
	byName, ok := presets[model]
	if !ok {
		return nil
	}
	build, ok := byName[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names for model in sorted order, or nil.
func ListPresets(model string) []string {
	byName, ok := presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HeatBath builds an n x n row-major grid with fixed edge temperatures and a
// zero interior. Column 0 is left, column n-1 right, row 0 bottom and row
// n-1 top. Edges are written row by row in a single sweep, so the bottom row
// owns both bottom corners, the top row owns the top-right corner and the
// left column owns the top-left corner.
func HeatBath(n int, left, right, top, bottom float64) []float64 {
	s := make([]float64, n*n)
	for i := 0; i < n; i++ {
		s[i*n] = left
		s[i*n+n-1] = right
		s[i] = bottom
		s[(n-1)*n+i] = top
	}
	return s
}

// Hotspot builds an n x n zero grid with value v in the centre cell.
func Hotspot(n int, v float64) []float64 {
	s := make([]float64, n*n)
	s[(n/2)*n+n/2] = v
	return s
}

// SunEarthMoon places the sun at the origin, the earth on +x and the moon
// above the earth, with circular-orbit speeds.
func SunEarthMoon() []float64 {
	return []float64{
		// positions: sun, earth, moon
		0, 0, 0,
		SunEarthDistance, 0, 0,
		SunEarthDistance, EarthMoonDistance, 0,
		// velocities: sun, earth, moon
		0, 0, 0,
		0, EarthSpeed, 0,
		-MoonSpeed, EarthSpeed, 0,
	}
}

// FigureEight is the Chenciner-Montgomery periodic orbit for G = m = 1.
func FigureEight() []float64 {
	return []float64{
		0.97000436, -0.24308753, 0,
		-0.97000436, 0.24308753, 0,
		0, 0, 0,
		0.466203685, 0.43236573, 0,
		0.466203685, 0.43236573, 0,
		-0.93240737, -0.86473146, 0,
	}
}
