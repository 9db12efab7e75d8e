// Package shadow renders the depth map of the directional light.
package shadow

import (
	"fmt"
	"math"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// fitMargin pads the fitted depth range so corners on the box are not clipped.
const fitMargin = 1

type Renderable interface {
	Render(ctx *gpu.RenderContext, depthOnly bool) error
}

// Scene renders its members in order.
type Scene []Renderable

func (s Scene) Render(ctx *gpu.RenderContext, depthOnly bool) error {
	for _, r := range s {
		if err := r.Render(ctx, depthOnly); err != nil {
			return err
		}
	}
	return nil
}

type Options struct {
	// MaxSize caps the depth target side. Zero uses the device limit.
	MaxSize      uint32
	Illumination mgl32.Vec4
	Logger       core.Logger
}

// Pass owns the shadow depth target and regenerates it when dirty.
type Pass struct {
	ctx          *gpu.RenderContext
	light        *camera.Camera
	target       gpu.DepthTarget
	illumination mgl32.Vec4
	log          core.Logger
	dirty        bool
	refreshes    int
}

// NewLightCamera places an orthographic light camera at position, tilted
// down and turned right by the given angles.
func NewLightCamera(cfg core.LightConfig) (*camera.Camera, error) {
	light, err := camera.New(
		camera.WithProjection(camera.Orthographic),
		camera.WithOrthoWidth(cfg.Width),
		camera.WithAspect(1),
	)
	if err != nil {
		return nil, fmt.Errorf("light camera: %w", err)
	}
	light.GoTo(cfg.Position[0], cfg.Position[1], cfg.Position[2])
	light.PanDown(cfg.PanDown)
	light.PanRight(cfg.PanRight)
	return light, nil
}

func NewPass(ctx *gpu.RenderContext, light *camera.Camera, opts Options) (*Pass, error) {
	if light == nil {
		return nil, fmt.Errorf("shadow pass: %w: no light camera", core.ErrConfiguration)
	}
	side := ctx.Backend().MaxTextureDimension()
	if opts.MaxSize > 0 && opts.MaxSize < side {
		side = opts.MaxSize
	}
	if side == 0 {
		return nil, fmt.Errorf("shadow pass: %w: device reports no texture size", core.ErrResource)
	}
	target, err := ctx.Backend().CreateDepthTarget("shadow map", side)
	if err != nil {
		return nil, fmt.Errorf("shadow pass: %w: %w", core.ErrResource, err)
	}
	illum := opts.Illumination
	if illum == (mgl32.Vec4{}) {
		illum = mgl32.Vec4{1, 1, 1, 1}
	}
	log := core.OrNop(opts.Logger)
	log.Infof("shadow map %dx%d", side, side)
	return &Pass{
		ctx:          ctx,
		light:        light,
		target:       target,
		illumination: illum,
		log:          log,
		dirty:        true,
	}, nil
}

func (p *Pass) Light() *camera.Camera   { return p.light }
func (p *Pass) Target() gpu.DepthTarget { return p.target }
func (p *Pass) Dirty() bool             { return p.dirty }
func (p *Pass) Refreshes() int          { return p.refreshes }

// Invalidate schedules a refresh on the next frame.
func (p *Pass) Invalidate() { p.dirty = true }

func (p *Pass) lightDirection() mgl32.Vec3 {
	return core.Light{Eye: p.light.Eye(), At: p.light.At()}.Direction()
}

// Refresh renders scene depth-only from the light when the pass is dirty and
// reports whether it did. The context is returned to the main program,
// back-face culling, the screen target and the main camera either way.
func (p *Pass) Refresh(scene Renderable, main *camera.Camera) (bool, error) {
	if !p.dirty {
		return false, nil
	}
	if main == nil {
		return false, fmt.Errorf("shadow refresh: %w: no main camera", core.ErrConfiguration)
	}
	ctx := p.ctx
	bmin, bmax, useBounds := ctx.Bounds()
	defer func() {
		ctx.BindTarget(nil)
		ctx.SetCullFace(gpu.CullBack)
		ctx.UseProgram(gpu.ProgramMain)
		ctx.SetShadowMap(p.target)
		ctx.SetCamera(main)
		ctx.SetBounds(bmin, bmax, useBounds)
		ctx.SetLight(p.light.ViewProjection(), p.lightDirection(), p.illumination)
	}()

	ctx.BindTarget(p.target)
	ctx.UseProgram(gpu.ProgramDepth)
	ctx.SetCullFace(gpu.CullFront)
	ctx.SetCamera(p.light)
	ctx.SetBounds(bmin, bmax, false)
	if err := ctx.Begin("shadow"); err != nil {
		return false, fmt.Errorf("shadow refresh: %w", err)
	}
	if err := scene.Render(ctx, true); err != nil {
		// The pass is still open; close it before restoring state.
		if endErr := ctx.End(); endErr != nil {
			p.log.Warnf("shadow pass end after render error: %v", endErr)
		}
		return false, fmt.Errorf("shadow refresh: %w", err)
	}
	if err := ctx.End(); err != nil {
		return false, fmt.Errorf("shadow refresh: %w", err)
	}
	p.dirty = false
	p.refreshes++
	p.log.Debugf("shadow map refreshed (%d)", p.refreshes)
	return true, nil
}

// FitLight sets the light's orthographic bounds to the light-space box
// around corners.
func FitLight(light *camera.Camera, corners [8]mgl32.Vec3) {
	view := light.View()
	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, c := range corners {
		v := view.Mul4x1(c.Vec4(1)).Vec3()
		for i := range 3 {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	// The view looks down -Z, so depth is the negated z.
	light.SetOrtho(lo[0], hi[0], lo[1], hi[1], -hi[2]-fitMargin, -lo[2]+fitMargin)
}

func (p *Pass) Release() {
	if p.target != nil {
		p.target.Release()
		p.target = nil
	}
}
