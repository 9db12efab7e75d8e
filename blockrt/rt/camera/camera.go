// Package camera holds the look-at camera shared by the player view and the
// shadow light, plus its lazily derived frustum.
package camera

import (
	"fmt"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// depthRange maps GL clip depth [-w, w] onto the [0, w] range WebGPU expects.
var depthRange = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type Camera struct {
	eye, at, up mgl32.Vec3

	projection Projection
	fov        float32
	aspect     float32
	near, far  float32
	orthoWidth float32
	// Explicit ortho bounds set by SetOrtho; they survive SetAspect.
	orthoBox *[6]float32

	view mgl32.Mat4
	proj mgl32.Mat4

	frustum *Frustum
}

type Option func(*Camera)

func WithEye(eye mgl32.Vec3) Option { return func(c *Camera) { c.eye = eye } }
func WithAt(at mgl32.Vec3) Option   { return func(c *Camera) { c.at = at } }
func WithUp(up mgl32.Vec3) Option   { return func(c *Camera) { c.up = up } }

// WithFOV sets the vertical field of view in degrees.
func WithFOV(deg float32) Option { return func(c *Camera) { c.fov = deg } }

func WithAspect(aspect float32) Option { return func(c *Camera) { c.aspect = aspect } }

func WithClip(near, far float32) Option {
	return func(c *Camera) {
		c.near = near
		c.far = far
	}
}

func WithProjection(p Projection) Option { return func(c *Camera) { c.projection = p } }

// WithOrthoWidth sets the horizontal half-width of an orthographic view.
// The half-height follows as width / aspect.
func WithOrthoWidth(w float32) Option { return func(c *Camera) { c.orthoWidth = w } }

// New builds a camera at the origin looking down -Z. An orthographic camera
// must be given a width.
func New(opts ...Option) (*Camera, error) {
	c := &Camera{
		at:     mgl32.Vec3{0, 0, -1},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    60,
		aspect: 1,
		near:   0.1,
		far:    1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.projection == Orthographic && c.orthoWidth <= 0 {
		return nil, fmt.Errorf("%w: orthographic camera needs a width", core.ErrConfiguration)
	}
	if c.aspect <= 0 {
		return nil, fmt.Errorf("%w: aspect must be positive, got %v", core.ErrConfiguration, c.aspect)
	}
	if c.near == c.far {
		return nil, fmt.Errorf("%w: near and far planes coincide", core.ErrConfiguration)
	}
	c.updateProjection()
	c.postMove()
	return c, nil
}

func (c *Camera) Eye() mgl32.Vec3        { return c.eye }
func (c *Camera) At() mgl32.Vec3         { return c.at }
func (c *Camera) Up() mgl32.Vec3         { return c.up }
func (c *Camera) Projection() Projection { return c.projection }
func (c *Camera) View() mgl32.Mat4       { return c.view }
func (c *Camera) Proj() mgl32.Mat4       { return c.proj }

func (c *Camera) ViewProjection() mgl32.Mat4 { return c.proj.Mul4(c.view) }

// Forward is the normalized view direction.
func (c *Camera) Forward() mgl32.Vec3 { return c.at.Sub(c.eye).Normalize() }

// Left is perpendicular to the view direction and the up vector.
func (c *Camera) Left() mgl32.Vec3 {
	l := c.up.Cross(c.at.Sub(c.eye))
	if l.Len() == 0 {
		return mgl32.Vec3{}
	}
	return l.Normalize()
}

func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	if c.orthoBox == nil {
		c.updateProjection()
	}
	c.frustum = nil
}

// SetOrtho switches to an orthographic projection with explicit view-space
// bounds. near and far are distances along the view direction and may be negative.
func (c *Camera) SetOrtho(left, right, bottom, top, near, far float32) {
	c.projection = Orthographic
	c.orthoBox = &[6]float32{left, right, bottom, top, near, far}
	c.updateProjection()
	c.frustum = nil
}

func (c *Camera) updateProjection() {
	var gl mgl32.Mat4
	switch {
	case c.orthoBox != nil:
		b := c.orthoBox
		gl = mgl32.Ortho(b[0], b[1], b[2], b[3], b[4], b[5])
	case c.projection == Orthographic:
		h := c.orthoWidth / c.aspect
		gl = mgl32.Ortho(-c.orthoWidth, c.orthoWidth, -h, h, c.near, c.far)
	default:
		gl = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
	}
	c.proj = depthRange.Mul4(gl)
}

// Move translates eye and at together along the view direction, the left
// vector and the up vector.
func (c *Camera) Move(forward, left, up float32) {
	look := c.at.Sub(c.eye)
	if look.Len() > 0 {
		look = look.Normalize()
	}
	upDir := c.up
	if upDir.Len() > 0 {
		upDir = upDir.Normalize()
	}
	delta := look.Mul(forward).Add(c.Left().Mul(left)).Add(upDir.Mul(up))
	c.eye = c.eye.Add(delta)
	c.at = c.at.Add(delta)
	c.postMove()
}

// GoTo moves the eye to (x, y, z) keeping the view direction.
func (c *Camera) GoTo(x, y, z float32) {
	delta := mgl32.Vec3{x, y, z}.Sub(c.eye)
	c.eye = c.eye.Add(delta)
	c.at = c.at.Add(delta)
	c.postMove()
}

func (c *Camera) PanLeft(deg float32)  { c.pan(deg, 0) }
func (c *Camera) PanRight(deg float32) { c.pan(-deg, 0) }
func (c *Camera) PanUp(deg float32)    { c.pan(0, deg) }
func (c *Camera) PanDown(deg float32)  { c.pan(0, -deg) }

// pan rotates the view direction by yaw degrees about up, then by pitch
// degrees about the right vector.
func (c *Camera) pan(yaw, pitch float32) {
	look := c.at.Sub(c.eye)
	if yaw != 0 && c.up.Len() > 0 {
		look = mgl32.QuatRotate(mgl32.DegToRad(yaw), c.up.Normalize()).Rotate(look)
	}
	if pitch != 0 {
		right := look.Cross(c.up)
		if right.Len() > 0 {
			look = mgl32.QuatRotate(mgl32.DegToRad(pitch), right.Normalize()).Rotate(look)
		}
	}
	c.at = c.eye.Add(look)
	c.postMove()
}

func (c *Camera) postMove() {
	c.view = mgl32.LookAtV(c.eye, c.at, c.up)
	c.frustum = nil
}

// Frustum returns the cached frustum, rebuilding it after any camera change.
func (c *Camera) Frustum() *Frustum {
	if c.frustum == nil {
		c.frustum = NewFrustum(c.ViewProjection())
	}
	return c.frustum
}

func (c *Camera) FrustumPoints() [8]mgl32.Vec3 { return c.Frustum().Points }
func (c *Camera) FrustumPlanes() [6]mgl32.Vec4 { return c.Frustum().Planes }

func (c *Camera) PointInFrustum(p mgl32.Vec3) bool { return c.Frustum().ContainsPoint(p) }

func (c *Camera) SphereInFrustum(center mgl32.Vec3, radius float32) bool {
	return c.Frustum().ContainsSphere(center, radius)
}

// AABB returns the world-space min and max of the frustum corners.
func (c *Camera) AABB() [2]mgl32.Vec3 { return c.Frustum().AABB() }
