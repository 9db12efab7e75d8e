package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Window   WindowConfig  `yaml:"window"`
	World    WorldConfig   `yaml:"world"`
	Camera   CameraConfig  `yaml:"camera"`
	Light    LightConfig   `yaml:"light"`
	Shadow   ShadowConfig  `yaml:"shadow"`
	Textures TextureConfig `yaml:"textures"`
	Debug    bool          `yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type WorldConfig struct {
	// Size is the side of the square height map, in blocks.
	Size int `yaml:"size"`
	// BuildSize is the side of the walled buildable plaza centered in the map.
	BuildSize  int     `yaml:"build_size"`
	WallHeight int     `yaml:"wall_height"`
	CubeSize   float32 `yaml:"cube_size"`
	// Noise selects the border terrain generator: "sine" or "simplex".
	Noise string `yaml:"noise"`
	Seed  int64  `yaml:"seed"`
	// Plaza is the plaza height layout: "stock" for the built-in layout,
	// "walls" for a flat walled square, or the path of a CSV height file.
	Plaza      string `yaml:"plaza"`
	PlaceBlock int    `yaml:"place_block"`
}

type CameraConfig struct {
	Start            [3]float32 `yaml:"start"`
	FOV              float32    `yaml:"fov"`
	MoveSpeed        float32    `yaml:"move_speed"`
	PanSpeed         float32    `yaml:"pan_speed"`
	MouseSensitivity float32    `yaml:"mouse_sensitivity"`
	MaxPitch         float32    `yaml:"max_pitch"`
}

type LightConfig struct {
	Illumination [4]float32 `yaml:"illumination"`
	// Width is the initial orthographic half-width, before the world fit.
	Width    float32    `yaml:"width"`
	Position [3]float32 `yaml:"position"`
	PanDown  float32    `yaml:"pan_down"`
	PanRight float32    `yaml:"pan_right"`
	Marker   bool       `yaml:"marker"`
}

type ShadowConfig struct {
	// MaxSize caps the depth target side. Zero uses the device maximum.
	MaxSize uint32 `yaml:"max_size"`
	// ShadingLevel: 0 unlit, 1 diffuse, 2 diffuse with shadows.
	ShadingLevel int `yaml:"shading_level"`
}

type TextureConfig struct {
	Size   int      `yaml:"size"`
	Layers []string `yaml:"layers"`
}

// DefaultConfig mirrors the stock demo world: a 75 block map with a 32 block plaza.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "blockworld"},
		World: WorldConfig{
			Size:       75,
			BuildSize:  32,
			WallHeight: 17,
			CubeSize:   0.5,
			Noise:      "sine",
			Seed:       1,
			Plaza:      "stock",
			PlaceBlock: 6,
		},
		Camera: CameraConfig{
			Start:            [3]float32{0, 20, 0},
			FOV:              60,
			MoveSpeed:        0.5,
			PanSpeed:         5,
			MouseSensitivity: 0.5,
			MaxPitch:         85,
		},
		Light: LightConfig{
			Illumination: [4]float32{0.6, 0.6, 0.6, 1},
			Width:        200,
			Position:     [3]float32{37.5, 18.75, 37.5},
			PanDown:      45,
			PanRight:     45,
			Marker:       true,
		},
		Shadow: ShadowConfig{MaxSize: 4096, ShadingLevel: 2},
		Textures: TextureConfig{
			Size: 16,
			Layers: []string{
				"tex/stone_bricks.png",
				"tex/grass.png",
				"tex/dirt.png",
				"tex/stone_bricks2.png",
				"tex/clay.png",
				"tex/stone.png",
				"tex/oak_planks.png",
			},
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Fields missing from the
// file keep their defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.World.Size <= 0:
		return fmt.Errorf("%w: world.size must be positive, got %d", ErrConfiguration, c.World.Size)
	case c.World.BuildSize < 0 || c.World.BuildSize > c.World.Size:
		return fmt.Errorf("%w: world.build_size %d outside [0, %d]", ErrConfiguration, c.World.BuildSize, c.World.Size)
	case c.World.CubeSize <= 0:
		return fmt.Errorf("%w: world.cube_size must be positive", ErrConfiguration)
	case c.World.Noise != "sine" && c.World.Noise != "simplex":
		return fmt.Errorf("%w: world.noise %q is not sine or simplex", ErrConfiguration, c.World.Noise)
	case c.World.PlaceBlock <= 0 || c.World.PlaceBlock > 255:
		return fmt.Errorf("%w: world.place_block %d is not a block type", ErrConfiguration, c.World.PlaceBlock)
	case c.Camera.MaxPitch <= 0 || c.Camera.MaxPitch >= 90:
		return fmt.Errorf("%w: camera.max_pitch must be in (0, 90)", ErrConfiguration)
	case c.Light.Width <= 0:
		return fmt.Errorf("%w: light.width must be positive", ErrConfiguration)
	case c.Textures.Size <= 0:
		return fmt.Errorf("%w: textures.size must be positive", ErrConfiguration)
	}
	return nil
}
