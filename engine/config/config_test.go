package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volren.toml")
	body := `
sample_count = 2
volume_path = "foo.dat"

[window]
width = 640
height = 480

[shading]
step_size = 0.005
opacity_threshold = 0.9
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Fatalf("window override not applied: %+v", cfg.Window)
	}
	if cfg.SampleCount != 2 {
		t.Fatalf("sample count override not applied: %d", cfg.SampleCount)
	}
	if cfg.Shading.StepSize != 0.005 {
		t.Fatalf("shading override not applied: %+v", cfg.Shading)
	}
	// untouched fields keep their defaults
	if cfg.Shading.Shininess != 32.0 {
		t.Fatalf("default shininess lost: %f", cfg.Shading.Shininess)
	}
	if len(cfg.TransferFunction) == 0 {
		t.Fatal("default transfer function lost")
	}
}

func TestValidateRejectsBadSampleCount(t *testing.T) {
	cfg := Default()
	cfg.SampleCount = 3
	if err := cfg.Validate(); err == nil {
		t.Fatal("non-power-of-two sample count should be rejected")
	}
	cfg.SampleCount = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero sample count should be rejected")
	}
}

func TestValidateRejectsEmptyTransferFunction(t *testing.T) {
	cfg := Default()
	cfg.TransferFunction = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty transfer function should be rejected")
	}
}

func TestControlPointsConversion(t *testing.T) {
	cfg := Default()
	points := cfg.ControlPoints()
	if len(points) != len(cfg.TransferFunction) {
		t.Fatalf("wrong point count: %d", len(points))
	}
	if points[0].Color.W != cfg.TransferFunction[0].Color[3] {
		t.Fatal("alpha channel mismatch in conversion")
	}
}
