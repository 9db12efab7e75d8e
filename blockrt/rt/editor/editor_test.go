package editor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newControls(t *testing.T) *Controls {
	t.Helper()
	cam, err := camera.New()
	require.NoError(t, err)
	return NewControls(cam, core.DefaultConfig().Camera)
}

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v, got %v", want, got)
}

func TestHeldMovement(t *testing.T) {
	c := newControls(t)
	c.Press(MoveForward)
	moved, turned := c.Update()
	assert.True(t, moved)
	assert.False(t, turned)
	vecNear(t, mgl32.Vec3{0, 0, -0.5}, c.Camera().Eye())

	c.Press(MoveBack)
	moved, _ = c.Update()
	assert.False(t, moved, "opposite keys cancel")

	c.Release(MoveForward)
	c.Release(MoveBack)
	c.Press(MoveUp)
	c.Update()
	vecNear(t, mgl32.Vec3{0, 0.5, -0.5}, c.Camera().Eye())
	assert.True(t, c.Held(MoveUp))
	assert.False(t, c.Held(Action(-1)))
}

func TestTurn(t *testing.T) {
	c := newControls(t)
	c.Press(TurnLeft)
	_, turned := c.Update()
	assert.True(t, turned)
	f := c.Camera().Forward()
	assert.Less(t, f[0], float32(0), "turning left from -Z heads toward -X")
	assert.InDelta(t, 0, c.Pitch(), 1e-4)
}

func TestLookClampsPitch(t *testing.T) {
	c := newControls(t)
	assert.False(t, c.Look(0, 0))

	require.True(t, c.Look(0, -20))
	assert.InDelta(t, 10, c.Pitch(), 1e-3)

	c.Look(0, -1000)
	assert.InDelta(t, 85, c.Pitch(), 1e-2)
	assert.False(t, c.Look(0, -10), "already at the limit")

	c.Look(0, 1000)
	assert.InDelta(t, -85, c.Pitch(), 1e-2)

	c.Look(40, 0)
	assert.InDelta(t, -85, c.Pitch(), 1e-2, "yaw keeps the elevation")
}

func TestTarget(t *testing.T) {
	cam, err := camera.New(camera.WithEye(mgl32.Vec3{0, 2, 0}), camera.WithAt(mgl32.Vec3{1, 2, 0}))
	require.NoError(t, err)
	vecNear(t, mgl32.Vec3{1.5, 2, 0}, Target(cam, 0.5))
}

func TestClick(t *testing.T) {
	grid := make([][][]world.Block, 4)
	for z := range grid {
		grid[z] = make([][]world.Block, 4)
		for x := range grid[z] {
			grid[z][x] = []world.Block{world.Stone, world.Stone}
		}
	}
	w, err := world.NewFromGrid(grid, world.Options{CubeSize: 0.5})
	require.NoError(t, err)

	// Eye above (2, 1, 2) looking straight down lands on (2, 1, 2).
	cam, err := camera.New(camera.WithEye(mgl32.Vec3{0, 2.5, 0}), camera.WithAt(mgl32.Vec3{0, 0, 0}),
		camera.WithUp(mgl32.Vec3{0, 0, -1}))
	require.NoError(t, err)

	e := NewEditor(world.Planks)
	changed, err := e.Click(w, cam, ButtonLeft)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, world.Air, w.Get(2, 1, 2))

	changed, err = e.Click(w, cam, ButtonLeft)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = e.Click(w, cam, ButtonRight)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, world.Planks, w.Get(2, 1, 2))

	changed, err = e.Click(w, cam, Button(7))
	require.NoError(t, err)
	assert.False(t, changed)
}

// failingGrid applies every edit and then reports a dropped cache.
type failingGrid struct {
	total int
	err   error
}

func (g *failingGrid) CubeSize() float32            { return 0.5 }
func (g *failingGrid) Counts() (total, visible int) { return g.total, 0 }

func (g *failingGrid) ChangePoint(wx, wy, wz float32, t world.Block) error {
	if t == world.Air {
		g.total--
	} else {
		g.total++
	}
	return g.err
}

func TestClickReportsChangeWithError(t *testing.T) {
	cam, err := camera.New()
	require.NoError(t, err)
	g := &failingGrid{total: 10, err: fmt.Errorf("remove: %w", core.ErrCacheCorrupt)}

	changed, err := NewEditor(world.Planks).Click(g, cam, ButtonLeft)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCacheCorrupt))
	assert.True(t, changed)
	assert.Equal(t, 9, g.total)
}
