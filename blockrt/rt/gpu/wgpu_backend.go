package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/shaders"
)

const depthFormat = wgpu.TextureFormatDepth32Float

type WGPUOptions struct {
	Width, Height int
	// MaxShadowSize caps MaxTextureDimension. Zero keeps the device limit.
	MaxShadowSize uint32
	ClearColor    wgpu.Color
	Logger        core.Logger
}

type wgpuBuffer struct {
	label   string
	raw     *wgpu.Buffer
	backend *WGPUBackend
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.raw.GetSize() }

func (b *wgpuBuffer) Release() {
	if bg, ok := b.backend.drawGroups[b]; ok {
		bg.Release()
		delete(b.backend.drawGroups, b)
	}
	b.raw.Release()
}

type wgpuDepthTarget struct {
	label   string
	side    uint32
	tex     *wgpu.Texture
	view    *wgpu.TextureView
	backend *WGPUBackend
}

func (t *wgpuDepthTarget) Label() string { return t.label }
func (t *wgpuDepthTarget) Size() uint32  { return t.side }

func (t *wgpuDepthTarget) Release() {
	if bg, ok := t.backend.mainGroups[t]; ok {
		bg.Release()
		delete(t.backend.mainGroups, t)
	}
	t.view.Release()
	t.tex.Release()
}

type pipelineKey struct {
	program Program
	cull    CullFace
}

// WGPUBackend implements Backend on a WebGPU device. Every pass gets its
// own command encoder and is submitted when it ends.
type WGPUBackend struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	format wgpu.TextureFormat
	opts   WGPUOptions
	log    core.Logger
	maxDim uint32

	mainModule  *wgpu.ShaderModule
	depthModule *wgpu.ShaderModule
	mainBGL     *wgpu.BindGroupLayout
	depthBGL    *wgpu.BindGroupLayout
	drawBGL     *wgpu.BindGroupLayout
	mainLayout  *wgpu.PipelineLayout
	depthLayout *wgpu.PipelineLayout
	pipelines   map[pipelineKey]*wgpu.RenderPipeline

	frameUniforms map[Program]*wgpu.Buffer
	depthGroup    *wgpu.BindGroup
	mainGroups    map[*wgpuDepthTarget]*wgpu.BindGroup
	drawGroups    map[*wgpuBuffer]*wgpu.BindGroup

	blockTex      *wgpu.Texture
	blockView     *wgpu.TextureView
	blockSampler  *wgpu.Sampler
	shadowSampler *wgpu.Sampler
	emptyShadow   *wgpuDepthTarget

	screenDepth *wgpu.Texture
	screenView  *wgpu.TextureView
	frameView   *wgpu.TextureView
}

func NewWGPUBackend(device *wgpu.Device, format wgpu.TextureFormat, opts WGPUOptions) (*WGPUBackend, error) {
	b := &WGPUBackend{
		device:        device,
		queue:         device.GetQueue(),
		format:        format,
		opts:          opts,
		log:           core.OrNop(opts.Logger),
		pipelines:     make(map[pipelineKey]*wgpu.RenderPipeline),
		frameUniforms: make(map[Program]*wgpu.Buffer),
		mainGroups:    make(map[*wgpuDepthTarget]*wgpu.BindGroup),
		drawGroups:    make(map[*wgpuBuffer]*wgpu.BindGroup),
	}
	limits := device.GetLimits()
	b.maxDim = limits.Limits.MaxTextureDimension2D
	if opts.MaxShadowSize > 0 && opts.MaxShadowSize < b.maxDim {
		b.maxDim = opts.MaxShadowSize
	}

	if err := b.createLayouts(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrResource, err)
	}
	if err := b.createSamplers(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrResource, err)
	}
	for _, p := range []Program{ProgramMain, ProgramDepth} {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Frame Uniforms " + p.String(),
			Size:  FrameUniformsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: frame uniforms: %w", core.ErrResource, err)
		}
		b.frameUniforms[p] = buf
	}
	empty, err := b.CreateDepthTarget("Empty Shadow Map", 1)
	if err != nil {
		return nil, err
	}
	b.emptyShadow = empty.(*wgpuDepthTarget)
	white := []byte{255, 255, 255, 255}
	if err := b.SetTextureLayers(1, [][]byte{white}); err != nil {
		return nil, err
	}
	if err := b.Resize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	b.log.Infof("wgpu backend ready: max texture %d, surface %v", b.maxDim, format)
	return b, nil
}

func (b *WGPUBackend) createLayouts() error {
	var err error
	b.mainModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Block Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlockWGSL},
	})
	if err != nil {
		return err
	}
	b.depthModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Block Depth Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlockDepthWGSL},
	})
	if err != nil {
		return err
	}

	frameEntry := wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: FrameUniformsSize,
		},
	}
	b.mainBGL, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Block Frame BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			frameEntry,
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    4,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
			},
		},
	})
	if err != nil {
		return err
	}
	b.depthBGL, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Block Depth BGL",
		Entries: []wgpu.BindGroupLayoutEntry{frameEntry},
	})
	if err != nil {
		return err
	}
	b.drawBGL, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Block Draw BGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: DrawUniformsSize,
			},
		}},
	})
	if err != nil {
		return err
	}
	b.mainLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Block Main Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.mainBGL, b.drawBGL},
	})
	if err != nil {
		return err
	}
	b.depthLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Block Depth Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.depthBGL, b.drawBGL},
	})
	return err
}

func (b *WGPUBackend) createSamplers() error {
	var err error
	b.blockSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Block Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	b.shadowSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	return err
}

func wgpuCull(c CullFace) wgpu.CullMode {
	switch c {
	case CullFront:
		return wgpu.CullModeFront
	case CullNone:
		return wgpu.CullModeNone
	}
	return wgpu.CullModeBack
}

var instanceLayout = wgpu.VertexBufferLayout{
	ArrayStride: InstanceStride,
	StepMode:    wgpu.VertexStepModeInstance,
	Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatSint16x4, Offset: 0}},
}

func floatLayout(format wgpu.VertexFormat, stride uint64, location uint32) wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  []wgpu.VertexAttribute{{Format: format, Offset: 0, ShaderLocation: location}},
	}
}

// pipeline returns the render pipeline for a program and cull face,
// creating it on first use. Cull mode is fixed per pipeline in WebGPU.
func (b *WGPUBackend) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}
	label := fmt.Sprintf("Block %s Pipeline (cull %s)", key.program, key.cull)
	desc := &wgpu.RenderPipelineDescriptor{
		Label: label,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpuCull(key.cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	}
	if key.program == ProgramDepth {
		inst := instanceLayout
		inst.Attributes = []wgpu.VertexAttribute{{Format: wgpu.VertexFormatSint16x4, Offset: 0, ShaderLocation: 1}}
		desc.Layout = b.depthLayout
		desc.Vertex = wgpu.VertexState{
			Module:     b.depthModule,
			EntryPoint: "vs_depth",
			Buffers: []wgpu.VertexBufferLayout{
				floatLayout(wgpu.VertexFormatFloat32x3, 12, 0),
				inst,
			},
		}
		// No fragment stage, depth only.
		desc.Fragment = nil
		desc.DepthStencil.DepthBias = 2
		desc.DepthStencil.DepthBiasSlopeScale = 1.5
	} else {
		inst := instanceLayout
		inst.Attributes = []wgpu.VertexAttribute{{Format: wgpu.VertexFormatSint16x4, Offset: 0, ShaderLocation: 3}}
		desc.Layout = b.mainLayout
		desc.Vertex = wgpu.VertexState{
			Module:     b.mainModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				floatLayout(wgpu.VertexFormatFloat32x3, 12, 0),
				floatLayout(wgpu.VertexFormatFloat32x3, 12, 1),
				floatLayout(wgpu.VertexFormatFloat32x2, 8, 2),
				inst,
			},
		}
		desc.Fragment = &wgpu.FragmentState{
			Module:     b.mainModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    b.format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		}
	}
	p, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", label, core.ErrResource, err)
	}
	b.pipelines[key] = p
	b.log.Debugf("created %s", label)
	return p, nil
}

func (b *WGPUBackend) MaxTextureDimension() uint32 { return b.maxDim }

// alignBufferSize rounds size up to the 4-byte multiple WebGPU requires.
func alignBufferSize(size uint64) uint64 { return (size + 3) &^ 3 }

func (b *WGPUBackend) CreateBuffer(label string, usage BufferUsage, size uint64) (Buffer, error) {
	u := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if usage == UsageUniform {
		u = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}
	raw, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: alignBufferSize(size), Usage: u})
	if err != nil {
		return nil, err
	}
	return &wgpuBuffer{label: label, raw: raw, backend: b}, nil
}

func (b *WGPUBackend) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	wb, ok := buf.(*wgpuBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer %T not created by this backend", core.ErrConfiguration, buf)
	}
	return b.queue.WriteBuffer(wb.raw, offset, data)
}

func (b *WGPUBackend) CreateDepthTarget(label string, size uint32) (DepthTarget, error) {
	tex, view, err := b.createDepthTexture(label, size, size, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return nil, err
	}
	return &wgpuDepthTarget{label: label, side: size, tex: tex, view: view, backend: b}, nil
}

func (b *WGPUBackend) createDepthTexture(label string, w, h uint32, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %w", label, core.ErrResource, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("%s view: %w: %w", label, core.ErrResource, err)
	}
	return tex, view, nil
}

// SetTextureLayers uploads square RGBA8 layers of the given side into the
// block texture array. Layer i is sampled for material i.
func (b *WGPUBackend) SetTextureLayers(side uint32, layers [][]byte) error {
	if len(layers) == 0 {
		return fmt.Errorf("%w: no texture layers", core.ErrConfiguration)
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Block Textures",
		Size:          wgpu.Extent3D{Width: side, Height: side, DepthOrArrayLayers: uint32(len(layers))},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("block textures: %w: %w", core.ErrResource, err)
	}
	for i, layer := range layers {
		if len(layer) != int(side*side*4) {
			tex.Release()
			return fmt.Errorf("%w: texture layer %d has %d bytes, want %d", core.ErrConfiguration, i, len(layer), side*side*4)
		}
		err := b.queue.WriteTexture(&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: uint32(i)},
			Aspect:   wgpu.TextureAspectAll,
		}, layer, &wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  side * 4,
			RowsPerImage: side,
		}, &wgpu.Extent3D{Width: side, Height: side, DepthOrArrayLayers: 1})
		if err != nil {
			tex.Release()
			return fmt.Errorf("texture layer %d: %w", i, err)
		}
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Block Textures View",
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(len(layers)),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return fmt.Errorf("block texture view: %w: %w", core.ErrResource, err)
	}
	if b.blockTex != nil {
		b.blockView.Release()
		b.blockTex.Release()
	}
	b.blockTex, b.blockView = tex, view
	// Main bind groups reference the old view.
	for t, bg := range b.mainGroups {
		bg.Release()
		delete(b.mainGroups, t)
	}
	return nil
}

// Resize recreates the screen depth buffer.
func (b *WGPUBackend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	tex, view, err := b.createDepthTexture("Screen Depth", uint32(width), uint32(height), wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	if b.screenDepth != nil {
		b.screenView.Release()
		b.screenDepth.Release()
	}
	b.screenDepth, b.screenView = tex, view
	return nil
}

// SetFrameView sets the surface view main passes draw into this frame.
func (b *WGPUBackend) SetFrameView(view *wgpu.TextureView) { b.frameView = view }

func (b *WGPUBackend) mainGroup(shadow *wgpuDepthTarget) (*wgpu.BindGroup, error) {
	if bg, ok := b.mainGroups[shadow]; ok {
		return bg, nil
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Block Frame BG " + shadow.label,
		Layout: b.mainBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.frameUniforms[ProgramMain], Size: FrameUniformsSize},
			{Binding: 1, TextureView: b.blockView},
			{Binding: 2, Sampler: b.blockSampler},
			{Binding: 3, TextureView: shadow.view},
			{Binding: 4, Sampler: b.shadowSampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("main bind group: %w: %w", core.ErrResource, err)
	}
	b.mainGroups[shadow] = bg
	return bg, nil
}

func (b *WGPUBackend) depthFrameGroup() (*wgpu.BindGroup, error) {
	if b.depthGroup != nil {
		return b.depthGroup, nil
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Block Depth BG",
		Layout:  b.depthBGL,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: b.frameUniforms[ProgramDepth], Size: FrameUniformsSize}},
	})
	if err != nil {
		return nil, fmt.Errorf("depth bind group: %w: %w", core.ErrResource, err)
	}
	b.depthGroup = bg
	return bg, nil
}

func (b *WGPUBackend) drawGroup(buf *wgpuBuffer) (*wgpu.BindGroup, error) {
	if bg, ok := b.drawGroups[buf]; ok {
		return bg, nil
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   buf.label + " BG",
		Layout:  b.drawBGL,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf.raw, Size: DrawUniformsSize}},
	})
	if err != nil {
		return nil, fmt.Errorf("draw bind group: %w: %w", core.ErrResource, err)
	}
	b.drawGroups[buf] = bg
	return bg, nil
}

func (b *WGPUBackend) BeginPass(desc PassDescriptor) (Pass, error) {
	pipeline, err := b.pipeline(pipelineKey{program: desc.Program, cull: desc.Cull})
	if err != nil {
		return nil, err
	}
	if err := b.queue.WriteBuffer(b.frameUniforms[desc.Program], 0, desc.Uniforms); err != nil {
		return nil, fmt.Errorf("frame uniforms: %w", err)
	}

	var rp wgpu.RenderPassDescriptor
	var group *wgpu.BindGroup
	switch desc.Program {
	case ProgramDepth:
		target, ok := desc.Target.(*wgpuDepthTarget)
		if !ok {
			return nil, fmt.Errorf("%w: depth pass %q needs a backend depth target", core.ErrConfiguration, desc.Label)
		}
		rp = wgpu.RenderPassDescriptor{
			Label: desc.Label,
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            target.view,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		}
		if group, err = b.depthFrameGroup(); err != nil {
			return nil, err
		}
	default:
		if desc.Target != nil {
			return nil, fmt.Errorf("%w: main pass %q renders to the screen only", core.ErrConfiguration, desc.Label)
		}
		if b.frameView == nil || b.screenView == nil {
			return nil, fmt.Errorf("%w: main pass %q has no frame to draw into", core.ErrResource, desc.Label)
		}
		rp = wgpu.RenderPassDescriptor{
			Label: desc.Label,
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       b.frameView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.opts.ClearColor,
			}},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            b.screenView,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpDiscard,
				DepthClearValue: 1.0,
			},
		}
		shadow := b.emptyShadow
		if t, ok := desc.ShadowMap.(*wgpuDepthTarget); ok {
			shadow = t
		}
		if group, err = b.mainGroup(shadow); err != nil {
			return nil, err
		}
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: command encoder: %w", core.ErrResource, err)
	}
	pass := encoder.BeginRenderPass(&rp)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, group, nil)
	return &wgpuPass{backend: b, label: desc.Label, encoder: encoder, pass: pass}, nil
}

type wgpuPass struct {
	backend *WGPUBackend
	label   string
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	err     error
}

func (p *wgpuPass) SetVertexBuffer(slot uint32, buf Buffer) {
	wb, ok := buf.(*wgpuBuffer)
	if !ok {
		p.err = fmt.Errorf("%w: vertex buffer %T not created by this backend", core.ErrConfiguration, buf)
		return
	}
	p.pass.SetVertexBuffer(slot, wb.raw, 0, wgpu.WholeSize)
}

func (p *wgpuPass) SetDrawUniforms(buf Buffer) {
	wb, ok := buf.(*wgpuBuffer)
	if !ok {
		p.err = fmt.Errorf("%w: draw uniforms %T not created by this backend", core.ErrConfiguration, buf)
		return
	}
	bg, err := p.backend.drawGroup(wb)
	if err != nil {
		p.err = err
		return
	}
	p.pass.SetBindGroup(1, bg, nil)
}

func (p *wgpuPass) Draw(vertexCount, instanceCount uint32) {
	if p.err != nil {
		return
	}
	p.pass.Draw(vertexCount, instanceCount, 0, 0)
}

func (p *wgpuPass) End() error {
	defer p.encoder.Release()
	defer p.pass.Release()
	if err := p.pass.End(); err != nil {
		return fmt.Errorf("%s end: %w", p.label, err)
	}
	cmd, err := p.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("%s finish: %w", p.label, err)
	}
	defer cmd.Release()
	p.backend.queue.Submit(cmd)
	return p.err
}

// Release frees every device object the backend owns. Buffers and targets
// handed out by CreateBuffer and CreateDepthTarget are released by their owners.
func (b *WGPUBackend) Release() {
	for k, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, k)
	}
	for t, bg := range b.mainGroups {
		bg.Release()
		delete(b.mainGroups, t)
	}
	for buf, bg := range b.drawGroups {
		bg.Release()
		delete(b.drawGroups, buf)
	}
	if b.depthGroup != nil {
		b.depthGroup.Release()
		b.depthGroup = nil
	}
	if b.emptyShadow != nil {
		b.emptyShadow.Release()
		b.emptyShadow = nil
	}
	for p, buf := range b.frameUniforms {
		buf.Release()
		delete(b.frameUniforms, p)
	}
	if b.blockTex != nil {
		b.blockView.Release()
		b.blockTex.Release()
		b.blockTex, b.blockView = nil, nil
	}
	if b.screenDepth != nil {
		b.screenView.Release()
		b.screenDepth.Release()
		b.screenDepth, b.screenView = nil, nil
	}
	for _, s := range []*wgpu.Sampler{b.blockSampler, b.shadowSampler} {
		if s != nil {
			s.Release()
		}
	}
	for _, l := range []*wgpu.PipelineLayout{b.mainLayout, b.depthLayout} {
		if l != nil {
			l.Release()
		}
	}
	for _, l := range []*wgpu.BindGroupLayout{b.mainBGL, b.depthBGL, b.drawBGL} {
		if l != nil {
			l.Release()
		}
	}
	for _, m := range []*wgpu.ShaderModule{b.mainModule, b.depthModule} {
		if m != nil {
			m.Release()
		}
	}
}
