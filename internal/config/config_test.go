package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/showroom/internal/core/navigation"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "showroom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	sr, err := cfg.BuildShowroom()
	require.NoError(t, err)
	assert.Equal(t, navigation.ModeLocked, sr.Navigation.DesktopMode)
	assert.InDelta(t, 1.5, sr.Navigation.Start.Position.Y(), 1e-12)
	assert.InDelta(t, 1.8, sr.Boundary.Outer().X, 1e-12)
	assert.InDelta(t, mgl64.DegToRad(2), sr.Navigation.RotateStep, 1e-12)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  listen_addr: ":9000"
  tick_rate: 30
  allowed_origins: ["https://shop.example"]
log:
  level: debug
navigation:
  desktop_mode: orbit
  normalize_diagonal: true
boundary:
  shape: ring
  center: [1, 2]
  outer: [10, 10]
  inner: [6, 6]
  margin: 0.2
assets:
  timeout: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 30, cfg.Server.TickRate)
	assert.Equal(t, []string{"https://shop.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Assets.Timeout)
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize, "untouched keys keep defaults")

	sr, err := cfg.BuildShowroom()
	require.NoError(t, err)
	assert.Equal(t, navigation.ModeFreeOrbit, sr.Navigation.DesktopMode)
	assert.True(t, sr.NormalizeDiagonal)
	inner, ok := sr.Boundary.Inner()
	require.True(t, ok)
	assert.InDelta(t, 6.2, inner.X, 1e-12)
	assert.Equal(t, mgl64.Vec2{1, 2}, sr.Boundary.Center())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "server:\n  listen: \":1\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tick rate", func(c *Config) { c.Server.TickRate = 0 }},
		{"desktop mode", func(c *Config) { c.Navigation.DesktopMode = "fly" }},
		{"move speed", func(c *Config) { c.Navigation.MoveSpeed = 0 }},
		{"dead zone", func(c *Config) { c.Navigation.DeadZone = 1 }},
		{"orbit radius", func(c *Config) { c.Navigation.Orbit.MinRadius = 20 }},
		{"near far", func(c *Config) { c.Camera.Near = 200 }},
		{"shape", func(c *Config) { c.Boundary.Shape = "hexagon" }},
		{"ring inner too big", func(c *Config) {
			c.Boundary = BoundaryConfig{Shape: ShapeRing, Outer: [2]float64{5, 5}, Inner: [2]float64{5, 5}, Margin: 0.2}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
