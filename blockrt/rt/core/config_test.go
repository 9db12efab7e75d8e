package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 75, cfg.World.Size)
	assert.Equal(t, 32, cfg.World.BuildSize)
	assert.Len(t, cfg.Textures.Layers, 7)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  size: 40\n  build_size: 10\ndebug: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.World.Size)
	assert.Equal(t, 10, cfg.World.BuildSize)
	assert.True(t, cfg.Debug)
	assert.Equal(t, float32(0.5), cfg.World.CubeSize)
	assert.Equal(t, float32(85), cfg.Camera.MaxPitch)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.World.Size = 0 }},
		{"build larger than world", func(c *Config) { c.World.BuildSize = c.World.Size + 1 }},
		{"cube size", func(c *Config) { c.World.CubeSize = 0 }},
		{"noise", func(c *Config) { c.World.Noise = "perlin" }},
		{"place air", func(c *Config) { c.World.PlaceBlock = 0 }},
		{"pitch", func(c *Config) { c.Camera.MaxPitch = 90 }},
		{"light width", func(c *Config) { c.Light.Width = -1 }},
		{"texture size", func(c *Config) { c.Textures.Size = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world: [1, 2\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLightDirection(t *testing.T) {
	l := Light{Eye: [3]float32{0, 10, 0}}
	assert.InDelta(t, 1.0, l.Direction()[1], 1e-6)

	same := Light{}
	assert.Equal(t, float32(1), same.Direction()[1])
}
