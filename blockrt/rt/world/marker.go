package world

import (
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/geometry"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// markerRecord is a single instance at the origin with a negative material,
// which the shader draws with the tint color instead of a texture.
var markerRecord = []byte{0, 0, 0, 0, 0, 0, 0xff, 0xff}

// Marker is a flat colored sphere drawn through the instanced pipeline with
// one record.
type Marker struct {
	position mgl32.Vec3
	color    mgl32.Vec4
	stale    bool
	pipeline *gpu.InstancedPipeline
}

func NewMarker(position mgl32.Vec3, radius float32, color mgl32.Vec3, log core.Logger) *Marker {
	return &Marker{
		position: position,
		color:    color.Vec4(1),
		stale:    true,
		pipeline: gpu.NewInstancedPipeline("light marker", geometry.UVSphere(radius, 16, 16), log),
	}
}

func (m *Marker) Position() mgl32.Vec3 { return m.position }

func (m *Marker) SetPosition(p mgl32.Vec3) { m.position = p }

func (m *Marker) InstanceBytes() []byte { return markerRecord }
func (m *Marker) InstanceCount() int    { return 1 }
func (m *Marker) Stale() bool           { return m.stale }
func (m *Marker) MarkUploaded()         { m.stale = false }

func (m *Marker) Placement() gpu.DrawUniforms {
	return gpu.DrawUniforms{Origin: m.position.Mul(-1), Step: 1, Tint: m.color}
}

func (m *Marker) Render(ctx *gpu.RenderContext, depthOnly bool) error {
	return m.pipeline.Draw(ctx, m, depthOnly)
}

func (m *Marker) Release() { m.pipeline.Release() }
