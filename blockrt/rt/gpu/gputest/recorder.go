// Package gputest provides a gpu.Backend that records calls instead of
// touching a device.
package gputest

import (
	"fmt"

	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
)

type Buffer struct {
	label    string
	Usage    gpu.BufferUsage
	Data     []byte
	Writes   int
	Released bool
}

func (b *Buffer) Label() string { return b.label }
func (b *Buffer) Size() uint64  { return uint64(len(b.Data)) }
func (b *Buffer) Release()      { b.Released = true }

type DepthTarget struct {
	label    string
	side     uint32
	Released bool
}

func (t *DepthTarget) Label() string { return t.label }
func (t *DepthTarget) Size() uint32  { return t.side }
func (t *DepthTarget) Release()      { t.Released = true }

type Draw struct {
	VertexCount   uint32
	InstanceCount uint32
	Slots         map[uint32]gpu.Buffer
	DrawUniforms  gpu.Buffer
}

type Pass struct {
	Desc  gpu.PassDescriptor
	Draws []Draw
	Ended bool

	slots        map[uint32]gpu.Buffer
	drawUniforms gpu.Buffer
}

func (p *Pass) SetVertexBuffer(slot uint32, buf gpu.Buffer) { p.slots[slot] = buf }

func (p *Pass) SetDrawUniforms(buf gpu.Buffer) { p.drawUniforms = buf }

func (p *Pass) Draw(vertexCount, instanceCount uint32) {
	slots := make(map[uint32]gpu.Buffer, len(p.slots))
	for k, v := range p.slots {
		slots[k] = v
	}
	p.Draws = append(p.Draws, Draw{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		Slots:         slots,
		DrawUniforms:  p.drawUniforms,
	})
}

func (p *Pass) End() error {
	if p.Ended {
		return fmt.Errorf("pass %q ended twice", p.Desc.Label)
	}
	p.Ended = true
	return nil
}

// Recorder is a gpu.Backend for tests. FailCreate, when set, is returned by
// every resource creation call.
type Recorder struct {
	MaxDimension uint32
	FailCreate   error

	Buffers []*Buffer
	Targets []*DepthTarget
	Passes  []*Pass
	// Log is a flat list of the calls made, in order.
	Log []string
}

func NewRecorder() *Recorder {
	return &Recorder{MaxDimension: 8192}
}

func (r *Recorder) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

func (r *Recorder) CreateBuffer(label string, usage gpu.BufferUsage, size uint64) (gpu.Buffer, error) {
	if r.FailCreate != nil {
		return nil, r.FailCreate
	}
	b := &Buffer{label: label, Usage: usage, Data: make([]byte, size)}
	r.Buffers = append(r.Buffers, b)
	r.logf("create buffer %s %d", label, size)
	return b, nil
}

func (r *Recorder) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("foreign buffer %T", buf)
	}
	if b.Released {
		return fmt.Errorf("write to released buffer %s", b.label)
	}
	if offset+uint64(len(data)) > uint64(len(b.Data)) {
		return fmt.Errorf("write of %d bytes at %d overflows %s (%d bytes)", len(data), offset, b.label, len(b.Data))
	}
	copy(b.Data[offset:], data)
	b.Writes++
	r.logf("write buffer %s %d", b.label, len(data))
	return nil
}

func (r *Recorder) CreateDepthTarget(label string, size uint32) (gpu.DepthTarget, error) {
	if r.FailCreate != nil {
		return nil, r.FailCreate
	}
	t := &DepthTarget{label: label, side: size}
	r.Targets = append(r.Targets, t)
	r.logf("create target %s %d", label, size)
	return t, nil
}

func (r *Recorder) MaxTextureDimension() uint32 { return r.MaxDimension }

func (r *Recorder) BeginPass(desc gpu.PassDescriptor) (gpu.Pass, error) {
	for _, p := range r.Passes {
		if !p.Ended {
			return nil, fmt.Errorf("pass %q begun while %q is open", desc.Label, p.Desc.Label)
		}
	}
	p := &Pass{Desc: desc, slots: make(map[uint32]gpu.Buffer)}
	r.Passes = append(r.Passes, p)
	target := "screen"
	if desc.Target != nil {
		target = desc.Target.Label()
	}
	r.logf("begin %s program=%s cull=%s target=%s", desc.Label, desc.Program, desc.Cull, target)
	return p, nil
}

// LastPass returns the most recent pass, or nil.
func (r *Recorder) LastPass() *Pass {
	if len(r.Passes) == 0 {
		return nil
	}
	return r.Passes[len(r.Passes)-1]
}

// Find returns the newest buffer with the given label.
func (r *Recorder) Find(label string) *Buffer {
	for i := len(r.Buffers) - 1; i >= 0; i-- {
		if r.Buffers[i].label == label {
			return r.Buffers[i]
		}
	}
	return nil
}
