package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Rig.SegmentHeight != 8 || cfg.Rig.SegmentCount != 4 {
		t.Errorf("rig = %+v", cfg.Rig)
	}
	if !cfg.IK.AutoUpdate || cfg.Camera.Position != [3]float32{1, 1, 2} {
		t.Error("defaults differ from the reference scene")
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	data := []byte("rig:\n  segment_count: 6\npanel:\n  addr: \":9000\"\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rig.SegmentCount != 6 || cfg.Panel.Addr != ":9000" {
		t.Errorf("overlay not applied: %+v %+v", cfg.Rig, cfg.Panel)
	}
	if cfg.Rig.SegmentHeight != 8 || cfg.Camera.FovDegrees != 75 {
		t.Error("fields missing from the file lost their defaults")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero segment height", "rig:\n  segment_height: 0\n"},
		{"negative segment count", "rig:\n  segment_count: -1\n"},
		{"msaa", "render:\n  msaa: 2\n"},
		{"skinning", "render:\n  skinning: compute\n"},
		{"damping", "camera:\n  damping: 1.5\n"},
		{"clip planes", "camera:\n  near: 10\n  far: 1\n"},
		{"iterations", "ik:\n  iterations: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := Parse([]byte(tt.yaml), &cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Parse = %v, want ErrInvalidConfig", err)
			}
		})
	}

	cfg := Default()
	if err := Parse([]byte("rig:\n  segments: 3\n"), &cfg); err == nil || errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown key: Parse = %v, want a decode error", err)
	}
	if err := Parse(nil, &cfg); err != nil {
		t.Errorf("empty document: %v", err)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte("rig:\n  segment_count: 6\n  segment_height: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", path, "-segment-count", "3", "-no-panel", "-profile"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rig.SegmentCount != 3 {
		t.Errorf("segment count = %d, want the flag value 3", cfg.Rig.SegmentCount)
	}
	if cfg.Rig.SegmentHeight != 2 {
		t.Errorf("segment height = %v, want the file value 2", cfg.Rig.SegmentHeight)
	}
	if cfg.Panel.Enabled || !cfg.Debug.Profile {
		t.Errorf("panel = %v, profile = %v", cfg.Panel.Enabled, cfg.Debug.Profile)
	}
	if f.ExportOnly() != "" {
		t.Error("export requested without -export")
	}
}
