package gpu

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type foreignBuffer struct{}

func (foreignBuffer) Label() string { return "foreign" }
func (foreignBuffer) Size() uint64  { return 16 }
func (foreignBuffer) Release()      {}

func TestWGPUCull(t *testing.T) {
	tests := []struct {
		cull     CullFace
		expected wgpu.CullMode
	}{
		{CullBack, wgpu.CullModeBack},
		{CullFront, wgpu.CullModeFront},
		{CullNone, wgpu.CullModeNone},
		{CullFace(9), wgpu.CullModeBack},
	}
	for _, tc := range tests {
		t.Run(tc.cull.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, wgpuCull(tc.cull))
		})
	}
}

func TestAlignBufferSize(t *testing.T) {
	tests := []struct {
		size, expected uint64
	}{
		{0, 0},
		{1, 4},
		{3, 4},
		{4, 4},
		{5, 8},
		{InstanceStride, InstanceStride},
		{FrameUniformsSize, FrameUniformsSize},
		{DrawUniformsSize + 1, DrawUniformsSize + 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, alignBufferSize(tc.size), "size %d", tc.size)
	}
}

func TestVertexLayouts(t *testing.T) {
	assert.Equal(t, uint64(InstanceStride), instanceLayout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, instanceLayout.StepMode)
	require.Len(t, instanceLayout.Attributes, 1)
	assert.Equal(t, wgpu.VertexFormatSint16x4, instanceLayout.Attributes[0].Format)

	uv := floatLayout(wgpu.VertexFormatFloat32x2, 8, SlotUV)
	assert.Equal(t, wgpu.VertexStepModeVertex, uv.StepMode)
	assert.Equal(t, uint64(8), uv.ArrayStride)
	assert.Equal(t, uint32(SlotUV), uv.Attributes[0].ShaderLocation)
}

func TestWGPURejectsForeignBuffers(t *testing.T) {
	b := &WGPUBackend{}
	err := b.WriteBuffer(foreignBuffer{}, 0, []byte{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	p := &wgpuPass{backend: b, label: "main"}
	p.SetVertexBuffer(SlotPosition, foreignBuffer{})
	require.Error(t, p.err)
	assert.True(t, errors.Is(p.err, core.ErrConfiguration))
	// Draws after a recorded error are skipped.
	p.Draw(36, 1)
}
