// Package gpu draws instanced block geometry through a small device boundary.
// WGPUBackend talks to WebGPU; gputest.Recorder stands in for it in tests.
package gpu

// Program selects the shader pair a pass runs.
type Program int

const (
	// ProgramMain shades lit, textured, shadowed blocks into the screen.
	ProgramMain Program = iota
	// ProgramDepth writes light-space depth only; it has no fragment stage.
	ProgramDepth
)

func (p Program) String() string {
	switch p {
	case ProgramMain:
		return "main"
	case ProgramDepth:
		return "depth"
	}
	return "unknown"
}

type CullFace int

const (
	CullBack CullFace = iota
	CullFront
	CullNone
)

func (c CullFace) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	case CullNone:
		return "none"
	}
	return "unknown"
}

type BufferUsage int

const (
	UsageVertex BufferUsage = iota
	UsageUniform
)

type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// DepthTarget is a square depth texture that can be rendered into and
// later sampled with a comparison sampler.
type DepthTarget interface {
	Label() string
	Size() uint32
	Release()
}

type PassDescriptor struct {
	Label   string
	Program Program
	Cull    CullFace
	// Target is the depth attachment; nil renders to the screen.
	Target DepthTarget
	// ShadowMap is sampled by the main program. May be nil.
	ShadowMap DepthTarget
	// Uniforms is the encoded FrameUniforms block for this pass.
	Uniforms []byte
}

// Pass records draws until End submits them.
type Pass interface {
	SetVertexBuffer(slot uint32, buf Buffer)
	SetDrawUniforms(buf Buffer)
	Draw(vertexCount, instanceCount uint32)
	End() error
}

type Backend interface {
	CreateBuffer(label string, usage BufferUsage, size uint64) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	CreateDepthTarget(label string, size uint32) (DepthTarget, error)
	// MaxTextureDimension is the largest 2D texture side the device accepts.
	MaxTextureDimension() uint32
	BeginPass(desc PassDescriptor) (Pass, error)
}
