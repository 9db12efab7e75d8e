package camera

import (
	"errors"
	"testing"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func newTestCamera(t *testing.T, opts ...Option) *Camera {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestNewDefaults(t *testing.T) {
	c := newTestCamera(t)
	assert.Equal(t, mgl32.Vec3{}, c.Eye())
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, c.At())
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward(), 1e-6)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, c.Left(), 1e-6)
	assert.Equal(t, Perspective, c.Projection())
}

func TestOrthographicNeedsWidth(t *testing.T) {
	_, err := New(WithProjection(Orthographic))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	c, err := New(WithProjection(Orthographic), WithOrthoWidth(10), WithAspect(2))
	require.NoError(t, err)
	box := c.AABB()
	assertVec(t, mgl32.Vec3{-10, -5, -1000}, box[0], 1e-2)
	assertVec(t, mgl32.Vec3{10, 5, -0.1}, box[1], 1e-2)
}

func TestMove(t *testing.T) {
	c := newTestCamera(t)
	c.Move(2, 0, 0)
	assertVec(t, mgl32.Vec3{0, 0, -2}, c.Eye(), 1e-6)
	assertVec(t, mgl32.Vec3{0, 0, -3}, c.At(), 1e-6)

	c.Move(0, 1, 0)
	assertVec(t, mgl32.Vec3{-1, 0, -2}, c.Eye(), 1e-6)

	c.Move(0, 0, 3)
	assertVec(t, mgl32.Vec3{-1, 3, -2}, c.Eye(), 1e-6)
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward(), 1e-6)
}

func TestGoToKeepsDirection(t *testing.T) {
	c := newTestCamera(t)
	c.PanRight(30)
	before := c.Forward()
	c.GoTo(5, 6, 7)
	assert.Equal(t, mgl32.Vec3{5, 6, 7}, c.Eye())
	assertVec(t, before, c.Forward(), 1e-6)
}

func TestPanDirections(t *testing.T) {
	c := newTestCamera(t)
	c.PanLeft(90)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, c.Forward(), 1e-5)
	c.PanRight(90)
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward(), 1e-5)

	c.PanUp(45)
	f := c.Forward()
	assert.InDelta(t, 0.7071, f[1], 1e-4)
	assert.InDelta(t, -0.7071, f[2], 1e-4)
	c.PanDown(45)
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward(), 1e-5)
}

func TestFrustumInvalidatedOnChange(t *testing.T) {
	c := newTestCamera(t)
	first := c.FrustumPoints()
	assert.Same(t, c.Frustum(), c.Frustum())

	c.Move(1, 0, 0)
	assert.NotEqual(t, first, c.FrustumPoints())

	f := c.Frustum()
	c.PanLeft(10)
	assert.NotSame(t, f, c.Frustum())

	f = c.Frustum()
	c.SetAspect(2)
	assert.NotSame(t, f, c.Frustum())
}

func TestFrustumPlaneSigns(t *testing.T) {
	c := newTestCamera(t, WithFOV(90), WithClip(1, 100))
	planes := c.FrustumPlanes()
	points := c.FrustumPoints()

	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / 8)
	for i, pl := range planes {
		assert.Less(t, distance(pl, center), float32(0), "plane %d", i)
		for _, idx := range planeCorners[i] {
			assert.InDelta(t, 0, distance(pl, points[idx]), 1e-2, "plane %d corner %d", i, idx)
		}
	}

	// Near corners are the ones with bit 2 set.
	assert.InDelta(t, -1, points[4][2], 1e-3)
	assert.InDelta(t, -100, points[0][2], 1e-2)

	assert.True(t, c.PointInFrustum(mgl32.Vec3{0, 0, -10}))
	assert.False(t, c.PointInFrustum(mgl32.Vec3{0, 0, 10}))
	assert.False(t, c.PointInFrustum(mgl32.Vec3{0, 0, -0.5}))
	assert.False(t, c.PointInFrustum(mgl32.Vec3{0, 0, -150}))
	assert.False(t, c.PointInFrustum(mgl32.Vec3{20, 0, -10}))

	assert.True(t, c.SphereInFrustum(mgl32.Vec3{0, 0, 0}, 2))
	assert.False(t, c.SphereInFrustum(mgl32.Vec3{0, 0, 5}, 2))
}

func TestCameraAABB(t *testing.T) {
	c := newTestCamera(t, WithFOV(90), WithClip(1, 100))
	box := c.AABB()
	assertVec(t, mgl32.Vec3{-100, -100, -100}, box[0], 1e-1)
	assertVec(t, mgl32.Vec3{100, 100, -1}, box[1], 1e-1)
}

func TestOrthoFrustumAABB(t *testing.T) {
	c := newTestCamera(t)
	c.SetOrtho(-4, 4, -2, 2, 1, 10)
	box := c.Frustum().AABB()
	assertVec(t, mgl32.Vec3{-4, -2, -10}, box[0], 1e-4)
	assertVec(t, mgl32.Vec3{4, 2, -1}, box[1], 1e-4)
}

func TestSetOrtho(t *testing.T) {
	c := newTestCamera(t, WithEye(mgl32.Vec3{0, 10, 0}), WithAt(mgl32.Vec3{0, 0, 0}), WithUp(mgl32.Vec3{0, 0, -1}))
	c.SetOrtho(-4, 4, -2, 2, -5, 5)
	assert.Equal(t, Orthographic, c.Projection())
	assert.True(t, c.PointInFrustum(mgl32.Vec3{3, 12, 1}))
	assert.False(t, c.PointInFrustum(mgl32.Vec3{0, 16, 0}))
	assert.False(t, c.PointInFrustum(mgl32.Vec3{5, 10, 0}))

	// Aspect changes keep explicit bounds.
	c.SetAspect(3)
	assert.True(t, c.PointInFrustum(mgl32.Vec3{3, 12, 1}))
}

func TestIntersectsAABB(t *testing.T) {
	c := newTestCamera(t, WithFOV(90), WithClip(1, 100))
	f := c.Frustum()

	tests := []struct {
		name     string
		min, max mgl32.Vec3
		expected bool
	}{
		{"inside", mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}, true},
		{"left", mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}, false},
		{"right", mgl32.Vec3{15, -1, -10}, mgl32.Vec3{20, 1, -5}, false},
		{"behind", mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 5}, false},
		{"beyond far", mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}, false},
		{"straddles left plane", mgl32.Vec3{-15, -1, -10}, mgl32.Vec3{-5, 1, -5}, true},
		{"encloses frustum", mgl32.Vec3{-1000, -1000, -1000}, mgl32.Vec3{1000, 1000, 1000}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.IntersectsAABB(tc.min, tc.max))
		})
	}
}
