// Package texture loads the block texture layers.
package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	xdraw "golang.org/x/image/draw"
)

// Set is one RGBA8 image per block material, all Size x Size.
type Set struct {
	Size   int
	Layers [][]byte
}

// placeholderColors stand in for missing files, by layer index.
var placeholderColors = []color.RGBA{
	{128, 128, 128, 255},
	{86, 140, 60, 255},
	{122, 86, 56, 255},
	{104, 120, 96, 255},
	{160, 100, 80, 255},
	{112, 112, 112, 255},
	{168, 136, 84, 255},
}

// Decode reads an image and resamples it to size x size RGBA8 texels.
func Decode(r io.Reader, size int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst.Pix, nil
}

func shade(v uint8) uint8 { return uint8(int(v) * 3 / 4) }

// Placeholder is a two-tone checker in the layer's stand-in color.
func Placeholder(layer, size int) []byte {
	c := placeholderColors[layer%len(placeholderColors)]
	dark := color.RGBA{shade(c.R), shade(c.G), shade(c.B), 255}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(1, size/4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, c)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img.Pix
}

func loadFile(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, size)
}

// Load reads every configured layer relative to baseDir. A layer that cannot
// be read is replaced by its placeholder and logged.
func Load(cfg core.TextureConfig, baseDir string, log core.Logger) (*Set, error) {
	log = core.OrNop(log)
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: texture size %d", core.ErrConfiguration, cfg.Size)
	}
	set := &Set{Size: cfg.Size, Layers: make([][]byte, 0, len(cfg.Layers))}
	for i, name := range cfg.Layers {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		pix, err := loadFile(path, cfg.Size)
		if err != nil {
			log.Warnf("texture layer %d: %v, using placeholder", i, err)
			pix = Placeholder(i, cfg.Size)
		}
		set.Layers = append(set.Layers, pix)
	}
	if len(set.Layers) == 0 {
		set.Layers = append(set.Layers, Placeholder(0, cfg.Size))
	}
	log.Debugf("loaded %d texture layers at %dpx", len(set.Layers), cfg.Size)
	return set, nil
}
