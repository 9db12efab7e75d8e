package world

import (
	"fmt"
	"math"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/geometry"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ErrOutOfBounds is returned for edits outside the grid.
var ErrOutOfBounds = fmt.Errorf("%w: cell outside the grid", core.ErrConfiguration)

// Instance records are uploaded as Sint16x4, so grid coordinates must fit.
const maxCoord = math.MaxInt16

type Options struct {
	// CubeSize is the half extent of one block in world units.
	CubeSize float32
	// Padding and BuildSize place the plaza square used by MakeColumn.
	Padding   int
	BuildSize int
	Strata    Strata
	Logger    core.Logger
}

// Instance is one visible block: grid coordinates and texture layer.
type Instance struct {
	X, Y, Z  int16
	Material int16
}

type cellKey struct {
	x, y, z int16
}

func (i Instance) key() cellKey { return cellKey{i.X, i.Y, i.Z} }

// World is a [z][x][y] block grid plus the cache of blocks that have at
// least one face next to air. Cells outside x/z or above a column top are
// air; cells below y = 0 are solid.
type World struct {
	ID uuid.UUID

	cubes    [][][]Block
	cubeSize float32
	log      core.Logger

	cache   []Instance
	members map[cellKey]struct{}
	dropped bool
	stale   bool
	total   int

	pipeline *gpu.InstancedPipeline
}

// New builds a world from a height map indexed [z][x]. Every column gets a
// floor block at y = 0 and h blocks above it.
func New(heights [][]int, opts Options) (*World, error) {
	if len(heights) == 0 || len(heights[0]) == 0 {
		return nil, fmt.Errorf("%w: empty height map", core.ErrConfiguration)
	}
	grid := make([][][]Block, len(heights))
	for z, row := range heights {
		if len(row) != len(heights[0]) {
			return nil, fmt.Errorf("%w: height map row %d has %d cells, want %d", core.ErrConfiguration, z, len(row), len(heights[0]))
		}
		grid[z] = make([][]Block, len(row))
		for x, h := range row {
			grid[z][x] = MakeColumn(x, z, h, opts.Padding, opts.BuildSize, opts.Strata)
		}
	}
	return build(grid, opts)
}

// NewFromGrid builds a world from an explicit grid indexed [z][x][y]. The
// columns are copied.
func NewFromGrid(grid [][][]Block, opts Options) (*World, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", core.ErrConfiguration)
	}
	cubes := make([][][]Block, len(grid))
	for z, row := range grid {
		if len(row) != len(grid[0]) {
			return nil, fmt.Errorf("%w: grid row %d has %d columns, want %d", core.ErrConfiguration, z, len(row), len(grid[0]))
		}
		cubes[z] = make([][]Block, len(row))
		for x, col := range row {
			cubes[z][x] = append([]Block(nil), col...)
		}
	}
	return build(cubes, opts)
}

func build(cubes [][][]Block, opts Options) (*World, error) {
	if opts.CubeSize <= 0 {
		return nil, fmt.Errorf("%w: cube size %v", core.ErrConfiguration, opts.CubeSize)
	}
	if len(cubes) > maxCoord || len(cubes[0]) > maxCoord {
		return nil, fmt.Errorf("%w: grid %dx%d is too large", core.ErrConfiguration, len(cubes[0]), len(cubes))
	}
	for z := range cubes {
		for x := range cubes[z] {
			if len(cubes[z][x]) > maxCoord+1 {
				return nil, fmt.Errorf("%w: column (%d, %d) is %d tall", core.ErrConfiguration, x, z, len(cubes[z][x]))
			}
		}
	}
	w := &World{
		ID:       uuid.New(),
		cubes:    cubes,
		cubeSize: opts.CubeSize,
		log:      core.OrNop(opts.Logger),
	}
	w.scan()
	w.pipeline = gpu.NewInstancedPipeline("world "+w.ID.String()[:8], geometry.Cube(opts.CubeSize, true), w.log)
	w.log.Infof("world %s: %dx%d, %d blocks, %d visible", w.ID, w.Width(), w.Depth(), w.total, len(w.cache))
	return w, nil
}

// scan rebuilds the cache from the grid in z, x, y order.
func (w *World) scan() {
	w.cache = w.cache[:0]
	w.members = make(map[cellKey]struct{})
	w.total = 0
	for z := range w.cubes {
		for x := range w.cubes[z] {
			for y, b := range w.cubes[z][x] {
				if !b.Solid() {
					continue
				}
				w.total++
				if w.exposed(x, y, z) {
					inst := w.instance(x, y, z)
					w.cache = append(w.cache, inst)
					w.members[inst.key()] = struct{}{}
				}
			}
		}
	}
	w.dropped = false
	w.stale = true
}

func (w *World) Width() int        { return len(w.cubes[0]) }
func (w *World) Depth() int        { return len(w.cubes) }
func (w *World) CubeSize() float32 { return w.cubeSize }

// Height is the length of column (x, z), including air left by removals.
func (w *World) Height(x, z int) int {
	if !w.inGrid(x, z) {
		return 0
	}
	return len(w.cubes[z][x])
}

func (w *World) inGrid(x, z int) bool {
	return x >= 0 && z >= 0 && z < len(w.cubes) && x < len(w.cubes[z])
}

// Get returns the block at a cell, applying the out-of-range rules.
func (w *World) Get(x, y, z int) Block {
	if !w.inGrid(x, z) {
		return Air
	}
	if y < 0 {
		return Stone
	}
	col := w.cubes[z][x]
	if y >= len(col) {
		return Air
	}
	return col[y]
}

var faceNeighbors = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// exposed reports whether any face of (x, y, z) touches air.
func (w *World) exposed(x, y, z int) bool {
	for _, d := range faceNeighbors {
		if !w.Get(x+d[0], y+d[1], z+d[2]).Solid() {
			return true
		}
	}
	return false
}

func (w *World) instance(x, y, z int) Instance {
	return Instance{X: int16(x), Y: int16(y), Z: int16(z), Material: w.cubes[z][x][y].Material()}
}

// Counts returns the number of solid blocks and the number cached as visible.
func (w *World) Counts() (total, visible int) { return w.total, len(w.cache) }

// Visible returns a copy of the cache in draw order.
func (w *World) Visible() []Instance { return append([]Instance(nil), w.cache...) }

// Cached reports whether the block at a cell is in the visible cache.
func (w *World) Cached(x, y, z int) bool {
	if w.members == nil || x > maxCoord || y > maxCoord || z > maxCoord {
		return false
	}
	_, ok := w.members[cellKey{int16(x), int16(y), int16(z)}]
	return ok
}

// GridToPoint returns the world-space center of a cell.
func (w *World) GridToPoint(x, y, z int) mgl32.Vec3 {
	step := 2 * w.cubeSize
	return mgl32.Vec3{
		(float32(x) - float32(w.Width())/2) * step,
		float32(y) * step,
		(float32(z) - float32(w.Depth())/2) * step,
	}
}

func snapAxis(v, step, offset float32) int {
	g := int(math.Floor(float64(v/step+offset) + 0.5))
	return max(g, 0)
}

// PointToGrid snaps a world-space point to the nearest cell, clamped at zero.
func (w *World) PointToGrid(p mgl32.Vec3) (x, y, z int) {
	step := 2 * w.cubeSize
	return snapAxis(p[0], step, float32(w.Width())/2),
		snapAxis(p[1], step, 0),
		snapAxis(p[2], step, float32(w.Depth())/2)
}

func (w *World) checkCell(x, y, z int) error {
	if !w.inGrid(x, z) || y < 0 || y > maxCoord {
		return fmt.Errorf("(%d, %d, %d): %w", x, y, z, ErrOutOfBounds)
	}
	return nil
}

// AABBPoints returns the 8 world-space corners of the box around every
// column, using the same corner numbering as the camera frustum.
func (w *World) AABBPoints() [8]mgl32.Vec3 {
	maxY := 0
	for z := range w.cubes {
		for x := range w.cubes[z] {
			maxY = max(maxY, len(w.cubes[z][x]))
		}
	}
	maxX, maxZ := w.Width(), w.Depth()
	var out [8]mgl32.Vec3
	for i := range out {
		gx, gy, gz := maxX-1, maxY-1, maxZ-1
		ex, ey, ez := w.cubeSize, w.cubeSize, w.cubeSize
		if i&1 != 0 {
			gx, ex = 0, -w.cubeSize
		}
		if i&2 != 0 {
			gy, ey = 0, -w.cubeSize
		}
		if i&4 != 0 {
			gz, ez = 0, -w.cubeSize
		}
		out[i] = w.GridToPoint(gx, gy, gz).Add(mgl32.Vec3{ex, ey, ez})
	}
	return out
}
