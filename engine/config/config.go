// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Resource backend names accepted in ResourceConfig.Backend.
const (
	ResourceBackendFile = "file"
	ResourceBackendHTTP = "http"
)

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig   `yaml:"window"`
	Resources ResourceConfig `yaml:"resources"`
	Camera    CameraConfig   `yaml:"camera"`
	Loader    LoaderConfig   `yaml:"loader"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ResourceConfig selects and configures the resource fetch backend.
type ResourceConfig struct {
	// Backend is either "file" or "http".
	Backend string `yaml:"backend"`
	// Root is the local resource directory used by the file backend.
	Root string `yaml:"root"`
	// Origin is the scheme://host[:port] used by the http backend. Empty means
	// "the page origin" in a browser build.
	Origin string `yaml:"origin"`
	// Namespace is the path segment appended to the origin (default "res").
	Namespace string        `yaml:"namespace"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CameraConfig holds the free-look camera and controller settings.
// Angles are in degrees here; the camera works in radians.
type CameraConfig struct {
	Position  [3]float32 `yaml:"position"`
	YawDeg    float32    `yaml:"yaw_deg"`
	PitchDeg  float32    `yaml:"pitch_deg"`
	FovYDeg   float32    `yaml:"fov_y_deg"`
	ZNear     float32    `yaml:"z_near"`
	ZFar      float32    `yaml:"z_far"`
	MoveSpeed float32    `yaml:"move_speed"`
	LookSpeed float32    `yaml:"look_speed"`
}

// LoaderConfig holds model loading settings.
type LoaderConfig struct {
	Workers int `yaml:"workers"`
	// LegacyBitangent selects the legacy bitangent formula for bit-exact output with older renders.
	LegacyBitangent bool `yaml:"legacy_bitangent"`
	// DegenerateCheck rejects meshes whose UV mapping has a zero determinant.
	DegenerateCheck bool `yaml:"degenerate_check"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "oxy-scene",
			Width:  1280,
			Height: 720,
		},
		Resources: ResourceConfig{
			Backend:   ResourceBackendFile,
			Root:      "res",
			Namespace: "res",
			Timeout:   30 * time.Second,
		},
		Camera: CameraConfig{
			Position:  [3]float32{0, 5, 10},
			YawDeg:    -45,
			PitchDeg:  0,
			FovYDeg:   45,
			ZNear:     0.001,
			ZFar:      10000,
			MoveSpeed: 0.2,
			LookSpeed: 0.2,
		},
		Loader: LoaderConfig{
			Workers: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first inconsistent setting.
//
// Returns:
//   - error: nil if the configuration is usable
func (c *Config) Validate() error {
	switch c.Resources.Backend {
	case ResourceBackendFile:
		if c.Resources.Root == "" {
			return fmt.Errorf("config: resources.root is required for the %q backend", ResourceBackendFile)
		}
	case ResourceBackendHTTP:
	default:
		return fmt.Errorf("config: unknown resources.backend %q", c.Resources.Backend)
	}
	if c.Resources.Timeout < 0 {
		return fmt.Errorf("config: resources.timeout must not be negative")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.ZNear <= 0 || c.Camera.ZFar <= c.Camera.ZNear {
		return fmt.Errorf("config: camera clip planes must satisfy 0 < z_near < z_far")
	}
	if c.Loader.Workers < 1 {
		return fmt.Errorf("config: loader.workers must be at least 1")
	}
	return nil
}

// AspectRatio returns the window width divided by its height.
func (c *Config) AspectRatio() float32 {
	if c.Window.Height == 0 {
		return 1
	}
	return float32(c.Window.Width) / float32(c.Window.Height)
}
