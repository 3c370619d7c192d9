// Package config reads the showroom YAML configuration and turns it into the
// typed settings of the core packages.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/showroom/internal/core/observability/log"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        log.Config       `yaml:"log"`
	Navigation NavigationConfig `yaml:"navigation"`
	Boundary   BoundaryConfig   `yaml:"boundary"`
	Camera     CameraConfig     `yaml:"camera"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Assets     AssetsConfig     `yaml:"assets"`
}

type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	TickRate        int           `yaml:"tick_rate"` // Hz
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	MaxMessageSize  int64         `yaml:"max_message_size"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	MaxSessions     int           `yaml:"max_sessions"`
	// AllowedOrigins empty means same-origin only; "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type NavigationConfig struct {
	DesktopMode       string      `yaml:"desktop_mode"`
	MoveSpeed         float64     `yaml:"move_speed"`
	RotateStepDeg     float64     `yaml:"rotate_step_deg"`
	NormalizeDiagonal bool        `yaml:"normalize_diagonal"`
	DeadZone          float64     `yaml:"dead_zone"`
	Orbit             OrbitConfig `yaml:"orbit"`
}

type OrbitConfig struct {
	Target          [3]float64 `yaml:"target"`
	Radius          float64    `yaml:"radius"`
	MinRadius       float64    `yaml:"min_radius"`
	MaxRadius       float64    `yaml:"max_radius"`
	ElevationDeg    float64    `yaml:"elevation_deg"`
	MinElevationDeg float64    `yaml:"min_elevation_deg"`
	MaxElevationDeg float64    `yaml:"max_elevation_deg"`
}

const (
	ShapeCorridor = "corridor"
	ShapeRing     = "ring"
)

type BoundaryConfig struct {
	Shape string `yaml:"shape"`
	// corridor
	Width  float64 `yaml:"width"`
	Length float64 `yaml:"length"`
	// ring
	Center [2]float64 `yaml:"center"`
	Outer  [2]float64 `yaml:"outer"`
	Inner  [2]float64 `yaml:"inner"`

	Margin float64 `yaml:"margin"`
}

type CameraConfig struct {
	FovY      float64    `yaml:"fov_y"`
	Aspect    float64    `yaml:"aspect"`
	Near      float64    `yaml:"near"`
	Far       float64    `yaml:"far"`
	EyeHeight float64    `yaml:"eye_height"`
	Start     [2]float64 `yaml:"start"` // x, z
	FloorY    float64    `yaml:"floor_y"`
}

type CatalogConfig struct {
	// Path to a YAML product list; empty uses the built-in one.
	Path string `yaml:"path"`
}

type AssetsConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	// Latency simulates fetch time in the proxy loader.
	Latency time.Duration `yaml:"latency"`
}

// Default returns the corridor showroom served on localhost.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8080",
			TickRate:        60,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  64 * 1024,
			WriteTimeout:    10 * time.Second,
			MaxSessions:     1000,
		},
		Log: log.Config{Level: "info", Encoding: "json"},
		Navigation: NavigationConfig{
			DesktopMode:   "locked",
			MoveSpeed:     6,
			RotateStepDeg: 2,
			DeadZone:      0.15,
			Orbit: OrbitConfig{
				Target:          [3]float64{0, 1, 0},
				Radius:          3,
				MinRadius:       1,
				MaxRadius:       10,
				ElevationDeg:    15,
				MinElevationDeg: -10,
				MaxElevationDeg: 80,
			},
		},
		Boundary: BoundaryConfig{
			Shape:  ShapeCorridor,
			Width:  4,
			Length: 20,
			Margin: 0.2,
		},
		Camera: CameraConfig{
			FovY:      75,
			Aspect:    16.0 / 9.0,
			Near:      0.1,
			Far:       100,
			EyeHeight: 1.5,
		},
		Assets: AssetsConfig{
			Concurrency: 4,
			Timeout:     30 * time.Second,
		},
	}
}

// Load reads path over the defaults. Unknown keys are rejected. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}
