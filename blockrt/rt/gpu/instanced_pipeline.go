package gpu

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/geometry"
)

// InstanceStride is the size of one per-instance record: four int16 values
// (x, y, z, material) read by the shader as Sint16x4.
const InstanceStride = 8

// Vertex buffer slots. The depth program binds positions and instances only.
const (
	SlotPosition      = 0
	SlotNormal        = 1
	SlotUV            = 2
	SlotInstance      = 3
	SlotDepthInstance = 1
)

// InstanceSource supplies the records drawn by an InstancedPipeline.
type InstanceSource interface {
	InstanceBytes() []byte
	InstanceCount() int
	// Stale reports whether the records changed since MarkUploaded.
	Stale() bool
	MarkUploaded()
	Placement() DrawUniforms
}

// Rebuilder is implemented by sources whose records can be dropped and
// rebuilt. The pipeline rebuilds them before drawing.
type Rebuilder interface {
	NeedsRebuild() bool
	Rebuild() error
}

// InstancedPipeline draws one mesh template once per instance record in a
// single call. Buffers are created on the first draw; the instance buffer
// is only rewritten when its source is stale and grows to fit.
type InstancedPipeline struct {
	label string
	mesh  *geometry.Mesh
	log   core.Logger

	backend     Backend
	positions   Buffer
	normals     Buffer
	uvs         Buffer
	instances   Buffer
	drawUniform Buffer
	lastDraw    []byte

	uploads       int
	uploadedBytes uint64
}

func NewInstancedPipeline(label string, mesh *geometry.Mesh, log core.Logger) *InstancedPipeline {
	if mesh.Indices != nil {
		mesh = mesh.Unindexed()
	}
	return &InstancedPipeline{label: label, mesh: mesh, log: core.OrNop(log)}
}

func (p *InstancedPipeline) VertexCount() int { return p.mesh.VertexCount() }

// InstanceCapacity is the current instance buffer size in records.
func (p *InstancedPipeline) InstanceCapacity() int {
	if p.instances == nil {
		return 0
	}
	return int(p.instances.Size() / InstanceStride)
}

// Uploaded reports how many instance uploads the pipeline made and how many
// bytes they carried.
func (p *InstancedPipeline) Uploaded() (count int, bytes uint64) { return p.uploads, p.uploadedBytes }

func floatBytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func (p *InstancedPipeline) createStatic(b Backend, name string, data []byte) (Buffer, error) {
	buf, err := b.CreateBuffer(p.label+" "+name, UsageVertex, uint64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s %s buffer: %w: %w", p.label, name, core.ErrResource, err)
	}
	if err := b.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("%s %s upload: %w", p.label, name, err)
	}
	return buf, nil
}

func (p *InstancedPipeline) ensureTemplate(b Backend) error {
	if p.backend != nil && p.backend != b {
		return fmt.Errorf("%s: %w: pipeline used with a second backend", p.label, core.ErrConfiguration)
	}
	p.backend = b
	var err error
	if p.positions == nil {
		if p.positions, err = p.createStatic(b, "positions", floatBytes(p.mesh.Positions)); err != nil {
			return err
		}
	}
	if p.normals == nil {
		if p.normals, err = p.createStatic(b, "normals", floatBytes(p.mesh.Normals)); err != nil {
			return err
		}
	}
	if p.uvs == nil {
		uvs := p.mesh.UVs
		if len(uvs) == 0 {
			uvs = make([]float32, p.mesh.VertexCount()*2)
		}
		if p.uvs, err = p.createStatic(b, "uvs", floatBytes(uvs)); err != nil {
			return err
		}
	}
	if p.drawUniform == nil {
		p.drawUniform, err = b.CreateBuffer(p.label+" draw uniforms", UsageUniform, DrawUniformsSize)
		if err != nil {
			return fmt.Errorf("%s draw uniforms: %w: %w", p.label, core.ErrResource, err)
		}
	}
	return nil
}

func (p *InstancedPipeline) uploadInstances(b Backend, src InstanceSource) error {
	if p.instances != nil && !src.Stale() {
		return nil
	}
	data := src.InstanceBytes()
	need := uint64(len(data))
	if need < InstanceStride {
		need = InstanceStride
	}
	if p.instances == nil || p.instances.Size() < need {
		if p.instances != nil {
			p.instances.Release()
			p.instances = nil
		}
		buf, err := b.CreateBuffer(p.label+" instances", UsageVertex, need)
		if err != nil {
			return fmt.Errorf("%s instances: %w: %w", p.label, core.ErrResource, err)
		}
		p.instances = buf
		p.log.Debugf("%s: instance buffer resized to %d records", p.label, need/InstanceStride)
	}
	if len(data) > 0 {
		if err := b.WriteBuffer(p.instances, 0, data); err != nil {
			return fmt.Errorf("%s instance upload: %w", p.label, err)
		}
		p.uploads++
		p.uploadedBytes += uint64(len(data))
	}
	src.MarkUploaded()
	return nil
}

// Draw issues one instanced draw of the template into the open pass.
// depthOnly must match the program the context is using.
func (p *InstancedPipeline) Draw(ctx *RenderContext, src InstanceSource, depthOnly bool) error {
	if depthOnly != (ctx.Program() == ProgramDepth) {
		return fmt.Errorf("%s: %w: depthOnly=%v with %s program", p.label, core.ErrConfiguration, depthOnly, ctx.Program())
	}
	pass, err := ctx.Pass()
	if err != nil {
		return fmt.Errorf("%s: %w", p.label, err)
	}
	if r, ok := src.(Rebuilder); ok && r.NeedsRebuild() {
		if err := r.Rebuild(); err != nil {
			return fmt.Errorf("%s rebuild: %w", p.label, err)
		}
	}
	b := ctx.Backend()
	if err := p.ensureTemplate(b); err != nil {
		return err
	}
	if err := p.uploadInstances(b, src); err != nil {
		return err
	}
	count := src.InstanceCount()
	if count == 0 {
		return nil
	}
	if draw := src.Placement().Encode(); !bytes.Equal(draw, p.lastDraw) {
		if err := b.WriteBuffer(p.drawUniform, 0, draw); err != nil {
			return fmt.Errorf("%s draw uniforms: %w", p.label, err)
		}
		p.lastDraw = draw
	}

	pass.SetDrawUniforms(p.drawUniform)
	pass.SetVertexBuffer(SlotPosition, p.positions)
	if depthOnly {
		pass.SetVertexBuffer(SlotDepthInstance, p.instances)
	} else {
		pass.SetVertexBuffer(SlotNormal, p.normals)
		pass.SetVertexBuffer(SlotUV, p.uvs)
		pass.SetVertexBuffer(SlotInstance, p.instances)
	}
	pass.Draw(uint32(p.mesh.VertexCount()), uint32(count))
	return nil
}

// Release frees every buffer. The pipeline recreates them on the next draw.
func (p *InstancedPipeline) Release() {
	for _, buf := range []*Buffer{&p.positions, &p.normals, &p.uvs, &p.instances, &p.drawUniform} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	p.lastDraw = nil
	p.backend = nil
}
