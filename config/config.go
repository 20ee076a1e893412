// Package config loads the demo settings from YAML and command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every setting of the demo. Zero values in a loaded file keep the defaults.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Rig     RigConfig     `yaml:"rig"`
	Camera  CameraConfig  `yaml:"camera"`
	IK      IKConfig      `yaml:"ik"`
	Panel   PanelConfig   `yaml:"panel"`
	Debug   DebugConfig   `yaml:"debug"`
	Workers WorkersConfig `yaml:"workers"`
}

type WindowConfig struct {
	Title         string  `yaml:"title"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
}

type RenderConfig struct {
	VSync      bool    `yaml:"vsync"`
	MSAA       int     `yaml:"msaa"`
	FrameLimit float64 `yaml:"frame_limit"`
	ClearColor uint32  `yaml:"clear_color"`
	Software   bool    `yaml:"software"`

	// Skinning selects where the cylinder is skinned: "gpu" in the vertex shader or "cpu" with the worker pool.
	Skinning string `yaml:"skinning"`
}

// RigConfig sizes the bone chain and the cylinder skinned to it.
type RigConfig struct {
	SegmentHeight  float32 `yaml:"segment_height"`
	SegmentCount   int     `yaml:"segment_count"`
	Radius         float32 `yaml:"radius"`
	RadialSegments int     `yaml:"radial_segments"`
}

type CameraConfig struct {
	FovDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Position   [3]float32 `yaml:"position"`
	Damping    float32    `yaml:"damping"`
}

type IKConfig struct {
	Iterations int  `yaml:"iterations"`
	AutoUpdate bool `yaml:"auto_update"`
}

type PanelConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type DebugConfig struct {
	DumpBones  bool   `yaml:"dump_bones"`
	Profile    bool   `yaml:"profile"`
	ExportPath string `yaml:"export_path"`
}

type WorkersConfig struct {
	// Count is the number of skinning workers, 0 for GOMAXPROCS.
	Count     int `yaml:"count"`
	ChunkSize int `yaml:"chunk_size"`
}

// Default returns the settings of the reference scene: four 8-unit segments on a radius 5 cylinder, a 75 degree
// camera at (1, 1, 2) with damping, and the solver updating every frame.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:         "Three IK",
			Width:         1280,
			Height:        720,
			MaxPixelRatio: 2,
		},
		Render: RenderConfig{
			VSync:    true,
			MSAA:     4,
			Skinning: "gpu",
		},
		Rig: RigConfig{
			SegmentHeight:  8,
			SegmentCount:   4,
			Radius:         5,
			RadialSegments: 8,
		},
		Camera: CameraConfig{
			FovDegrees: 75,
			Near:       0.1,
			Far:        100,
			Position:   [3]float32{1, 1, 2},
			Damping:    0.05,
		},
		IK: IKConfig{
			Iterations: 1,
			AutoUpdate: true,
		},
		Panel: PanelConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8089",
		},
		Debug: DebugConfig{
			ExportPath: "three-ik.glb",
		},
		Workers: WorkersConfig{
			ChunkSize: 256,
		},
	}
}

// Load overlays the YAML file at path on Default and validates the result.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the merged settings
//   - error: a read, parse or ErrInvalidConfig error
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving fields absent from data untouched, then validates it.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return cfg.Validate()
}

// Validate checks that every setting is in range.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the first offending field
func (c *Config) Validate() error {
	switch {
	case !(c.Rig.SegmentHeight > 0) || math.IsInf(float64(c.Rig.SegmentHeight), 0):
		return fmt.Errorf("%w: rig.segment_height must be > 0, got %v", ErrInvalidConfig, c.Rig.SegmentHeight)
	case c.Rig.SegmentCount < 0:
		return fmt.Errorf("%w: rig.segment_count must be >= 0, got %d", ErrInvalidConfig, c.Rig.SegmentCount)
	case !(c.Rig.Radius > 0):
		return fmt.Errorf("%w: rig.radius must be > 0, got %v", ErrInvalidConfig, c.Rig.Radius)
	case c.Rig.RadialSegments < 3:
		return fmt.Errorf("%w: rig.radial_segments must be >= 3, got %d", ErrInvalidConfig, c.Rig.RadialSegments)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case !(c.Window.MaxPixelRatio > 0):
		return fmt.Errorf("%w: window.max_pixel_ratio must be > 0", ErrInvalidConfig)
	case c.Render.MSAA != 1 && c.Render.MSAA != 4:
		return fmt.Errorf("%w: render.msaa must be 1 or 4, got %d", ErrInvalidConfig, c.Render.MSAA)
	case c.Render.FrameLimit < 0:
		return fmt.Errorf("%w: render.frame_limit must be >= 0", ErrInvalidConfig)
	case c.Render.ClearColor > 0xffffff:
		return fmt.Errorf("%w: render.clear_color must be 0xRRGGBB", ErrInvalidConfig)
	case c.Render.Skinning != "gpu" && c.Render.Skinning != "cpu":
		return fmt.Errorf("%w: render.skinning must be gpu or cpu, got %q", ErrInvalidConfig, c.Render.Skinning)
	case !(c.Camera.FovDegrees > 0 && c.Camera.FovDegrees < 180):
		return fmt.Errorf("%w: camera.fov_degrees must be in (0, 180)", ErrInvalidConfig)
	case !(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near):
		return fmt.Errorf("%w: camera clip planes %v..%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case !(c.Camera.Damping > 0 && c.Camera.Damping <= 1):
		return fmt.Errorf("%w: camera.damping must be in (0, 1]", ErrInvalidConfig)
	case c.IK.Iterations < 1:
		return fmt.Errorf("%w: ik.iterations must be >= 1", ErrInvalidConfig)
	case c.Panel.Enabled && c.Panel.Addr == "":
		return fmt.Errorf("%w: panel.addr is empty", ErrInvalidConfig)
	case c.Workers.Count < 0 || c.Workers.ChunkSize < 0:
		return fmt.Errorf("%w: worker settings must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Flags holds the command-line values bound by RegisterFlags. Apply copies the ones that were set onto a Config.
type Flags struct {
	ConfigPath string

	fs *flag.FlagSet

	segmentHeight float64
	segmentCount  int
	panelAddr     string
	noPanel       bool
	export        string
	profile       bool
	vsync         bool
	skinning      string
}

// RegisterFlags binds the demo flags on fs. Flag defaults come from Default so -help shows them.
//
// Parameters:
//   - fs: the flag set, normally flag.CommandLine
//
// Returns:
//   - *Flags: the bound values, read after fs.Parse
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "YAML config file")
	fs.Float64Var(&f.segmentHeight, "segment-height", float64(d.Rig.SegmentHeight), "height of one bone segment")
	fs.IntVar(&f.segmentCount, "segment-count", d.Rig.SegmentCount, "number of bone segments")
	fs.StringVar(&f.panelAddr, "panel-addr", d.Panel.Addr, "debug panel listen address")
	fs.BoolVar(&f.noPanel, "no-panel", false, "disable the debug panel")
	fs.StringVar(&f.export, "export", "", "write the rig as binary glTF to this path and exit")
	fs.BoolVar(&f.profile, "profile", false, "log frame and IK timings every second")
	fs.BoolVar(&f.vsync, "vsync", d.Render.VSync, "synchronize presentation with the display")
	fs.StringVar(&f.skinning, "skinning", d.Render.Skinning, "skin the cylinder on the gpu or the cpu")
	return f
}

// ExportOnly returns the -export path, empty when the window should open.
func (f *Flags) ExportOnly() string {
	return f.export
}

// Load builds the final config: defaults, then the -config file when given, then every flag set explicitly on
// the command line.
//
// Returns:
//   - Config: the merged settings
//   - error: a load or ErrInvalidConfig error
func (f *Flags) Load() (Config, error) {
	cfg := Default()
	if f.ConfigPath != "" {
		var err error
		if cfg, err = Load(f.ConfigPath); err != nil {
			return cfg, err
		}
	}
	f.Apply(&cfg)
	return cfg, cfg.Validate()
}

// Apply copies explicitly set flags onto cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "segment-height":
			cfg.Rig.SegmentHeight = float32(f.segmentHeight)
		case "segment-count":
			cfg.Rig.SegmentCount = f.segmentCount
		case "panel-addr":
			cfg.Panel.Addr = f.panelAddr
		case "no-panel":
			cfg.Panel.Enabled = !f.noPanel
		case "export":
			cfg.Debug.ExportPath = f.export
		case "profile":
			cfg.Debug.Profile = f.profile
		case "vsync":
			cfg.Render.VSync = f.vsync
		case "skinning":
			cfg.Render.Skinning = f.skinning
		}
	})
}
