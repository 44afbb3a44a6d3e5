// Package config handles support-generation configuration loading.
package config

import (
	"math"
	"time"

	"github.com/nyxforge/supportgen/pkg/support"
)

// Config holds every setting the generate command exposes, on top of the
// bare Parameters the core pipeline consumes.
type Config struct {
	Support SupportConfig `yaml:"support"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
}

// SupportConfig mirrors support.Parameters but keeps the angle in degrees,
// the unit a user actually types.
type SupportConfig struct {
	AngleLimitDegrees   float64 `yaml:"angle_limit_degrees"`
	GridDensity         int     `yaml:"grid_density"`
	DiameterCoefficient float64 `yaml:"diameter_coefficient"`
	// CutoffRatio clips the curvature colour map in a visualisation layer
	// this CLI does not implement; kept so a config file written for the
	// original viewer still round-trips instead of failing to parse.
	CutoffRatio float64 `yaml:"cutoff_ratio"`
}

// OutputConfig controls how the combined mesh is written.
type OutputConfig struct {
	Binary bool `yaml:"binary"`
}

// WatchConfig controls the generate command's --watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the recognised default configuration.
func Default() *Config {
	return &Config{
		Support: SupportConfig{
			AngleLimitDegrees:   support.DefaultAngleLimitDegrees,
			GridDensity:         4,
			DiameterCoefficient: 0.07,
			CutoffRatio:         0.2,
		},
		Output: OutputConfig{
			Binary: true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Parameters converts the configured support settings into the core
// pipeline's Parameters, degrees to radians.
func (c *Config) Parameters() support.Parameters {
	return support.Parameters{
		AngleLimit:          c.Support.AngleLimitDegrees * math.Pi / 180.0,
		GridDensity:         c.Support.GridDensity,
		DiameterCoefficient: c.Support.DiameterCoefficient,
	}
}
