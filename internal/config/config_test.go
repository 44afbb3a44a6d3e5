package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nyxforge/supportgen/pkg/support"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Support.AngleLimitDegrees != support.DefaultAngleLimitDegrees {
		t.Errorf("expected default angle limit %v degrees, got %v", support.DefaultAngleLimitDegrees, cfg.Support.AngleLimitDegrees)
	}
	if cfg.Support.GridDensity != 4 {
		t.Errorf("expected default grid density 4, got %d", cfg.Support.GridDensity)
	}
	if !cfg.Output.Binary {
		t.Error("expected binary output to default to true")
	}
}

func TestParametersConvertsDegreesToRadians(t *testing.T) {
	cfg := Default()
	params := cfg.Parameters()

	want := support.DefaultAngleLimitDegrees * math.Pi / 180.0
	if math.Abs(params.AngleLimit-want) > 1e-9 {
		t.Errorf("Parameters().AngleLimit = %v, want %v", params.AngleLimit, want)
	}
	if err := params.Validate(); err != nil {
		t.Errorf("expected default parameters to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
support:
  angle_limit_degrees: 45
  grid_density: 6
  diameter_coefficient: 0.1
output:
  binary: false
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Support.AngleLimitDegrees != 45 {
		t.Errorf("expected angle limit 45, got %v", cfg.Support.AngleLimitDegrees)
	}
	if cfg.Support.GridDensity != 6 {
		t.Errorf("expected grid density 6, got %d", cfg.Support.GridDensity)
	}
	if cfg.Output.Binary {
		t.Error("expected binary output to be false")
	}
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Support.GridDensity != Default().Support.GridDensity {
		t.Errorf("expected defaults when no path is given")
	}
}

func TestLoadInvalidPathErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected an error loading a missing config file")
	}
}
