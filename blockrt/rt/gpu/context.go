package gpu

import (
	"errors"
	"fmt"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNoPass   = errors.New("no pass open")
	ErrPassOpen = errors.New("pass already open")
)

// RenderContext is the explicit render state handed to every draw: the
// current program, cull face, target and the uniforms of the next pass.
// A pass always begins with the program set by the last UseProgram.
type RenderContext struct {
	backend Backend
	log     core.Logger

	program   Program
	cull      CullFace
	target    DepthTarget
	shadowMap DepthTarget

	cam           *camera.Camera
	lightViewProj mgl32.Mat4
	lightDir      mgl32.Vec3
	illumination  mgl32.Vec4
	boundsMin     mgl32.Vec3
	boundsMax     mgl32.Vec3
	useBounds     bool
	shading       int

	pass Pass
}

func NewRenderContext(backend Backend, log core.Logger) *RenderContext {
	return &RenderContext{
		backend:       backend,
		log:           core.OrNop(log),
		lightViewProj: mgl32.Ident4(),
		lightDir:      mgl32.Vec3{0, 1, 0},
		illumination:  mgl32.Vec4{1, 1, 1, 1},
	}
}

func (c *RenderContext) Backend() Backend       { return c.backend }
func (c *RenderContext) Program() Program       { return c.program }
func (c *RenderContext) CullFace() CullFace     { return c.cull }
func (c *RenderContext) Target() DepthTarget    { return c.target }
func (c *RenderContext) Camera() *camera.Camera { return c.cam }

func (c *RenderContext) UseProgram(p Program) {
	if c.program != p {
		c.log.Debugf("program %s -> %s", c.program, p)
	}
	c.program = p
}

func (c *RenderContext) SetCullFace(f CullFace) { c.cull = f }

// BindTarget selects the depth attachment of later passes. nil is the screen.
func (c *RenderContext) BindTarget(t DepthTarget) { c.target = t }

func (c *RenderContext) SetShadowMap(t DepthTarget) { c.shadowMap = t }

func (c *RenderContext) SetCamera(cam *camera.Camera) { c.cam = cam }

// SetLight sets the light uniforms. dir points toward the light.
func (c *RenderContext) SetLight(viewProj mgl32.Mat4, dir mgl32.Vec3, illumination mgl32.Vec4) {
	c.lightViewProj = viewProj
	c.lightDir = dir
	c.illumination = illumination
}

// SetBounds clips instances whose origin lies outside [min, max] in the
// vertex stage while enabled.
func (c *RenderContext) SetBounds(min, max mgl32.Vec3, enabled bool) {
	c.boundsMin = min
	c.boundsMax = max
	c.useBounds = enabled
}

func (c *RenderContext) BoundsEnabled() bool { return c.useBounds }

func (c *RenderContext) Bounds() (min, max mgl32.Vec3, enabled bool) {
	return c.boundsMin, c.boundsMax, c.useBounds
}

func (c *RenderContext) SetShading(level int) { c.shading = level }

func (c *RenderContext) Uniforms() FrameUniforms {
	u := FrameUniforms{
		LightViewProj: c.lightViewProj,
		BoundsMin:     c.boundsMin,
		BoundsMax:     c.boundsMax,
		UseBounds:     c.useBounds,
		LightDir:      c.lightDir,
		Illumination:  c.illumination,
		Shading:       c.shading,
	}
	if c.cam != nil {
		u.View = c.cam.View()
		u.Proj = c.cam.Proj()
		u.CameraPos = c.cam.Eye()
	}
	return u
}

// Begin opens a pass with the current state.
func (c *RenderContext) Begin(label string) error {
	if c.pass != nil {
		return fmt.Errorf("begin %q: %w", label, ErrPassOpen)
	}
	if c.cam == nil {
		return fmt.Errorf("begin %q: %w: no camera set", label, core.ErrConfiguration)
	}
	if c.program == ProgramDepth && c.target == nil {
		return fmt.Errorf("begin %q: %w: depth program needs a target", label, core.ErrConfiguration)
	}
	var shadow DepthTarget
	if c.program == ProgramMain {
		shadow = c.shadowMap
	}
	pass, err := c.backend.BeginPass(PassDescriptor{
		Label:     label,
		Program:   c.program,
		Cull:      c.cull,
		Target:    c.target,
		ShadowMap: shadow,
		Uniforms:  c.Uniforms().Encode(),
	})
	if err != nil {
		return fmt.Errorf("begin %q: %w", label, err)
	}
	c.pass = pass
	return nil
}

// Pass returns the open pass.
func (c *RenderContext) Pass() (Pass, error) {
	if c.pass == nil {
		return nil, ErrNoPass
	}
	return c.pass, nil
}

func (c *RenderContext) End() error {
	if c.pass == nil {
		return ErrNoPass
	}
	p := c.pass
	c.pass = nil
	return p.End()
}
