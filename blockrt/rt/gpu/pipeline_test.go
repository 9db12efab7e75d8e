package gpu_test

import (
	"errors"
	"testing"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/geometry"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	data      []byte
	stale     bool
	uploads   int
	dropped   bool
	rebuilds  int
	placement gpu.DrawUniforms
}

func newFakeSource(records int) *fakeSource {
	return &fakeSource{data: make([]byte, records*gpu.InstanceStride), stale: true}
}

func (s *fakeSource) InstanceBytes() []byte       { return s.data }
func (s *fakeSource) InstanceCount() int          { return len(s.data) / gpu.InstanceStride }
func (s *fakeSource) Stale() bool                 { return s.stale }
func (s *fakeSource) Placement() gpu.DrawUniforms { return s.placement }
func (s *fakeSource) NeedsRebuild() bool          { return s.dropped }

func (s *fakeSource) MarkUploaded() {
	s.stale = false
	s.uploads++
}

func (s *fakeSource) grow(records int) {
	s.data = append(s.data, make([]byte, records*gpu.InstanceStride)...)
	s.stale = true
}

func (s *fakeSource) Rebuild() error {
	s.dropped = false
	s.rebuilds++
	s.grow(1)
	return nil
}

func newContext(t *testing.T) (*gputest.Recorder, *gpu.RenderContext) {
	t.Helper()
	rec := gputest.NewRecorder()
	ctx := gpu.NewRenderContext(rec, nil)
	cam, err := camera.New()
	require.NoError(t, err)
	ctx.SetCamera(cam)
	return rec, ctx
}

func TestPipelineAllocatesLazily(t *testing.T) {
	rec, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	assert.Empty(t, rec.Buffers)
	assert.Equal(t, 0, p.InstanceCapacity())

	src := newFakeSource(3)
	require.NoError(t, ctx.Begin("main"))
	require.NoError(t, p.Draw(ctx, src, false))
	require.NoError(t, ctx.End())

	pass := rec.LastPass()
	require.Len(t, pass.Draws, 1)
	d := pass.Draws[0]
	assert.Equal(t, uint32(36), d.VertexCount)
	assert.Equal(t, uint32(3), d.InstanceCount)
	assert.Len(t, d.Slots, 4)
	assert.Equal(t, "blocks instances", d.Slots[gpu.SlotInstance].Label())
	assert.Equal(t, "blocks positions", d.Slots[gpu.SlotPosition].Label())
	assert.NotNil(t, d.DrawUniforms)
	assert.Equal(t, 1, src.uploads)
	assert.Equal(t, 3, p.InstanceCapacity())
}

func TestPipelineUploadsOnlyWhenStale(t *testing.T) {
	rec, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	src := newFakeSource(2)

	for i := 0; i < 3; i++ {
		require.NoError(t, ctx.Begin("main"))
		require.NoError(t, p.Draw(ctx, src, false))
		require.NoError(t, ctx.End())
	}
	assert.Equal(t, 1, src.uploads)
	assert.Equal(t, 1, rec.Find("blocks instances").Writes)
	// Placement is unchanged, so the draw block is written once.
	assert.Equal(t, 1, rec.Find("blocks draw uniforms").Writes)

	src.grow(5)
	require.NoError(t, ctx.Begin("main"))
	require.NoError(t, p.Draw(ctx, src, false))
	require.NoError(t, ctx.End())
	assert.Equal(t, 2, src.uploads)
	assert.Equal(t, 7, p.InstanceCapacity())
	count, bytes := p.Uploaded()
	assert.Equal(t, 2, count)
	assert.Equal(t, uint64(9*gpu.InstanceStride), bytes)

	var released int
	for _, b := range rec.Buffers {
		if b.Label() == "blocks instances" && b.Released {
			released++
		}
	}
	assert.Equal(t, 1, released)
}

func TestPipelineDepthOnlyBindsPositionsAndInstances(t *testing.T) {
	rec, ctx := newContext(t)
	target, err := rec.CreateDepthTarget("shadow", 1024)
	require.NoError(t, err)
	ctx.UseProgram(gpu.ProgramDepth)
	ctx.BindTarget(target)

	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, false), nil)
	require.NoError(t, ctx.Begin("depth"))
	require.NoError(t, p.Draw(ctx, newFakeSource(4), true))
	require.NoError(t, ctx.End())

	d := rec.LastPass().Draws[0]
	assert.Len(t, d.Slots, 2)
	assert.Equal(t, "blocks positions", d.Slots[gpu.SlotPosition].Label())
	assert.Equal(t, "blocks instances", d.Slots[gpu.SlotDepthInstance].Label())
	// Meshes without UVs still get a zero UV buffer for the main program.
	assert.NotNil(t, rec.Find("blocks uvs"))
}

func TestPipelineRejectsProgramMismatch(t *testing.T) {
	_, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	require.NoError(t, ctx.Begin("main"))
	err := p.Draw(ctx, newFakeSource(1), true)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
	require.NoError(t, ctx.End())
}

func TestPipelineNeedsOpenPass(t *testing.T) {
	_, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	err := p.Draw(ctx, newFakeSource(1), false)
	assert.True(t, errors.Is(err, gpu.ErrNoPass))
}

func TestPipelineSkipsEmptySources(t *testing.T) {
	rec, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	require.NoError(t, ctx.Begin("main"))
	require.NoError(t, p.Draw(ctx, newFakeSource(0), false))
	require.NoError(t, ctx.End())
	assert.Empty(t, rec.LastPass().Draws)
}

func TestPipelineRebuildsDroppedSource(t *testing.T) {
	rec, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	src := newFakeSource(0)
	src.dropped = true

	require.NoError(t, ctx.Begin("main"))
	require.NoError(t, p.Draw(ctx, src, false))
	require.NoError(t, ctx.End())
	assert.Equal(t, 1, src.rebuilds)
	assert.Equal(t, uint32(1), rec.LastPass().Draws[0].InstanceCount)
}

func TestPipelineResourceFailure(t *testing.T) {
	rec, ctx := newContext(t)
	rec.FailCreate = errors.New("out of memory")
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	require.NoError(t, ctx.Begin("main"))
	err := p.Draw(ctx, newFakeSource(1), false)
	assert.True(t, errors.Is(err, core.ErrResource))
	require.NoError(t, ctx.End())
}

func TestPipelineRelease(t *testing.T) {
	rec, ctx := newContext(t)
	p := gpu.NewInstancedPipeline("blocks", geometry.Cube(0.5, true), nil)
	require.NoError(t, ctx.Begin("main"))
	require.NoError(t, p.Draw(ctx, newFakeSource(1), false))
	require.NoError(t, ctx.End())

	p.Release()
	for _, b := range rec.Buffers {
		assert.True(t, b.Released, b.Label())
	}
	assert.Equal(t, 0, p.InstanceCapacity())
}

func TestRenderContextState(t *testing.T) {
	rec := gputest.NewRecorder()
	ctx := gpu.NewRenderContext(rec, nil)

	err := ctx.Begin("main")
	assert.True(t, errors.Is(err, core.ErrConfiguration), "no camera")

	cam, err := camera.New()
	require.NoError(t, err)
	ctx.SetCamera(cam)

	ctx.UseProgram(gpu.ProgramDepth)
	assert.True(t, errors.Is(ctx.Begin("depth"), core.ErrConfiguration), "no target")

	shadow, err := rec.CreateDepthTarget("shadow", 2048)
	require.NoError(t, err)
	ctx.BindTarget(shadow)
	ctx.SetShadowMap(shadow)
	ctx.SetCullFace(gpu.CullFront)
	require.NoError(t, ctx.Begin("depth"))
	assert.True(t, errors.Is(ctx.Begin("again"), gpu.ErrPassOpen))
	require.NoError(t, ctx.End())
	assert.True(t, errors.Is(ctx.End(), gpu.ErrNoPass))

	desc := rec.LastPass().Desc
	assert.Equal(t, gpu.ProgramDepth, desc.Program)
	assert.Equal(t, gpu.CullFront, desc.Cull)
	assert.Equal(t, shadow, desc.Target)
	assert.Nil(t, desc.ShadowMap, "depth passes never sample the shadow map")

	ctx.BindTarget(nil)
	ctx.UseProgram(gpu.ProgramMain)
	ctx.SetCullFace(gpu.CullBack)
	ctx.SetBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, true)
	require.NoError(t, ctx.Begin("main"))
	require.NoError(t, ctx.End())
	desc = rec.LastPass().Desc
	assert.Nil(t, desc.Target)
	assert.Equal(t, shadow, desc.ShadowMap)
	assert.Len(t, desc.Uniforms, gpu.FrameUniformsSize)
	assert.True(t, ctx.Uniforms().UseBounds)
}
