// Package terrain produces the height map the world is built from: noise
// terrain around a square plaza.
package terrain

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/ojrac/opensimplex-go"
)

//go:embed stock_plaza.csv
var stockPlaza []byte

const (
	NoiseSine    = "sine"
	NoiseSimplex = "simplex"

	PlazaStock = "stock"
	PlazaWalls = "walls"
)

// Terrain heights sit on a base of 10 blocks.
const baseHeight = 10

type Options struct {
	Size       int
	BuildSize  int
	WallHeight int
	Noise      string
	Seed       int64
	// Plaza holds BuildSize rows of BuildSize heights. Nil gives a flat floor.
	Plaza [][]int
}

// OptionsFromConfig resolves the plaza layout named by cfg.Plaza.
func OptionsFromConfig(cfg core.WorldConfig) (Options, error) {
	opts := Options{
		Size:       cfg.Size,
		BuildSize:  cfg.BuildSize,
		WallHeight: cfg.WallHeight,
		Noise:      cfg.Noise,
		Seed:       cfg.Seed,
	}
	var err error
	switch cfg.Plaza {
	case "", PlazaWalls:
	case PlazaStock:
		opts.Plaza, err = StockPlaza()
	default:
		var f *os.File
		if f, err = os.Open(cfg.Plaza); err == nil {
			defer f.Close()
			opts.Plaza, err = ParsePlaza(f)
		}
	}
	if err != nil {
		return opts, fmt.Errorf("plaza %q: %w", cfg.Plaza, err)
	}
	return opts, nil
}

// Padding is the border width between the map edge and the plaza.
func (o Options) Padding() int { return (o.Size - o.BuildSize) / 2 }

// StockPlaza returns the built-in 32x32 plaza layout.
func StockPlaza() ([][]int, error) { return ParsePlaza(bytes.NewReader(stockPlaza)) }

// ParsePlaza reads a layout of comma separated heights, one row per line.
func ParsePlaza(r io.Reader) ([][]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([][]int, 0, len(records))
	for i, rec := range records {
		row := make([]int, len(rec))
		for j, field := range rec {
			h, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil || h < 0 {
				return nil, fmt.Errorf("%w: line %d column %d: bad height %q", core.ErrConfiguration, i+1, j+1, field)
			}
			row[j] = h
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type heightFunc func(x, z int) int

// sineHeight is two rounded sine ridges, one along each axis.
func sineHeight(x, z int) int {
	const amp = 2.5
	n := round(math.Sin(float64(z)*0.1+2.6)*amp+amp) + round(math.Sin(float64(x)*0.2+2.3)*amp+amp)
	return max(0, n+baseHeight)
}

func simplexHeight(seed int64) heightFunc {
	noise := opensimplex.New(seed)
	return func(x, z int) int {
		fx, fz := float64(x), float64(z)
		v := noise.Eval2(fx/24, fz/24)*6 + noise.Eval2(fx/8, fz/8)*2
		return max(0, round(v)+baseHeight)
	}
}

// round matches rounding half up.
func round(v float64) int { return int(math.Floor(v + 0.5)) }

// Generate returns a Size x Size height map indexed [z][x]. The centered
// plaza takes its heights from opts.Plaza and is ringed by a wall of
// WallHeight; everything else comes from the noise generator.
func Generate(opts Options) ([][]int, error) {
	if opts.Size <= 0 || opts.BuildSize < 0 || opts.BuildSize > opts.Size {
		return nil, fmt.Errorf("%w: terrain size %d with plaza %d", core.ErrConfiguration, opts.Size, opts.BuildSize)
	}
	var height heightFunc
	switch opts.Noise {
	case NoiseSine, "":
		height = sineHeight
	case NoiseSimplex:
		height = simplexHeight(opts.Seed)
	default:
		return nil, fmt.Errorf("%w: unknown noise %q", core.ErrConfiguration, opts.Noise)
	}
	if opts.Plaza != nil {
		if len(opts.Plaza) != opts.BuildSize {
			return nil, fmt.Errorf("%w: plaza has %d rows, want %d", core.ErrConfiguration, len(opts.Plaza), opts.BuildSize)
		}
		for i, row := range opts.Plaza {
			if len(row) != opts.BuildSize {
				return nil, fmt.Errorf("%w: plaza row %d has %d heights, want %d", core.ErrConfiguration, i, len(row), opts.BuildSize)
			}
		}
	}

	pad := opts.Padding()
	last := opts.BuildSize - 1
	heights := make([][]int, opts.Size)
	for z := range heights {
		heights[z] = make([]int, opts.Size)
		for x := range heights[z] {
			px, pz := x-pad, z-pad
			switch {
			case px < 0 || pz < 0 || px > last || pz > last:
				heights[z][x] = height(x, z)
			case px == 0 || pz == 0 || px == last || pz == last:
				heights[z][x] = opts.WallHeight
			case opts.Plaza != nil:
				heights[z][x] = opts.Plaza[pz][px]
			}
		}
	}
	return heights, nil
}
