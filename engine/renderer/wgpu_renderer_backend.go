package renderer

import (
	_ "embed"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

//go:embed assets/viewer.wgsl
var viewerShaderSource string

const (
	frameGroup  = 0
	objectGroup = 1

	uniformBinding = 0
	textureBinding = 1
	samplerBinding = 2
)

// meshResources are the GPU objects uploaded for one mesh node.
type meshResources struct {
	mesh     *scene.Mesh
	provider bind_group_provider.BindGroupProvider

	// material tracks the material version last uploaded; colour edits bump it.
	material materialState
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Pipeline objects, built on the first ConfigureSurface once the surface format is known.
	shaderModule      *wgpu.ShaderModule
	frameLayout       *wgpu.BindGroupLayout
	objectLayout      *wgpu.BindGroupLayout
	pipelineLayout    *wgpu.PipelineLayout
	pipeline          *wgpu.RenderPipeline
	frameProvider     bind_group_provider.BindGroupProvider
	meshes            map[uint64]*meshResources
	textures          *textureCache
	configured        bool
	configuredFormat  wgpu.TextureFormat

	// Frame state for the render pass in flight
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, logger *zap.Logger) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		meshes:      make(map[uint64]*meshResources),
		textures:    newTextureCache(logger),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			b.logger.Error("create msaa texture", zap.Error(err))
			return
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			b.logger.Error("create msaa view", zap.Error(err))
			return
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		b.logger.Error("create depth texture", zap.Error(err))
		return
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		b.logger.Error("create depth view", zap.Error(err))
		return
	}

	// With MSAA, View is the MSAA texture and ResolveTarget is the swapchain view set per frame.
	// Without it, View is the swapchain view set per frame.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView,
				ResolveTarget: nil,
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if b.pipeline == nil || b.configuredFormat != *b.surfaceFormat {
		if err := b.buildPipeline(); err != nil {
			b.logger.Error("build pipeline", zap.Error(err))
			return
		}
	}
	b.configured = true
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

// buildPipeline creates the shader module, both bind group layouts, the render pipeline,
// and the per-frame uniform provider. Caller holds mu.
func (b *wgpuRendererBackendImpl) buildPipeline() error {
	b.releasePipeline()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "viewer.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: viewerShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("shader module: %w", err)
	}
	b.shaderModule = module

	b.frameLayout, err = b.device.CreateBindGroupLayout(uniformLayoutDescriptor("Frame", frameUniformSize))
	if err != nil {
		return fmt.Errorf("failed to create bind group layout for group %d: %w", frameGroup, err)
	}
	b.objectLayout, err = b.device.CreateBindGroupLayout(objectLayoutDescriptor())
	if err != nil {
		return fmt.Errorf("failed to create bind group layout for group %d: %w", objectGroup, err)
	}

	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Viewer",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.objectLayout},
	})
	if err != nil {
		return err
	}

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Viewer Render Pipeline",
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	b.frameProvider = bind_group_provider.NewBindGroupProvider("Frame")
	if err := b.initUniformBindGroup(b.frameProvider, b.frameLayout, frameUniformSize); err != nil {
		return err
	}

	b.configuredFormat = *b.surfaceFormat
	b.logger.Debug("pipeline built", zap.Uint32("samples", uint32(b.sampleCount)))
	return nil
}

func uniformLayoutDescriptor(label string, size uint64) *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    uniformBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

// objectLayoutDescriptor is group 1: the object uniform, the base colour texture and its sampler.
func objectLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	desc := uniformLayoutDescriptor("Object", objectUniformSize)
	desc.Entries = append(desc.Entries,
		wgpu.BindGroupLayoutEntry{
			Binding:    textureBinding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		wgpu.BindGroupLayoutEntry{
			Binding:    samplerBinding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		},
	)
	return desc
}

// vertexLayout matches common.Vertex: position, normal, uv.
func vertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: common.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// initUniformBindGroup creates a single uniform buffer and its bind group on provider. Caller holds mu.
func (b *wgpuRendererBackendImpl) initUniformBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, size uint64) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	provider.SetBuffer(uniformBinding, buf)

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: uniformBinding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// initObjectBindGroup creates the object uniform buffer, uploads the base colour texture
// (white when the material has none), creates its sampler and binds all three. Caller holds mu.
func (b *wgpuRendererBackendImpl) initObjectBindGroup(provider bind_group_provider.BindGroupProvider, mesh *scene.Mesh) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Buffer",
		Size:  objectUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	provider.SetBuffer(uniformBinding, buf)

	if err := b.initTexture(provider, textureBinding, b.textures.baseColor(mesh.Material)); err != nil {
		return fmt.Errorf("base colour texture: %w", err)
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	provider.SetSampler(samplerBinding, samp)

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: b.objectLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: uniformBinding, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
			{Binding: textureBinding, TextureView: provider.TextureView(textureBinding)},
			{Binding: samplerBinding, Sampler: samp},
		},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// initTexture uploads RGBA pixels into a new sRGB texture on provider. Caller holds mu.
func (b *wgpuRendererBackendImpl) initTexture(provider bind_group_provider.BindGroupProvider, binding int, staged common.TextureStagingData) error {
	size := wgpu.Extent3D{
		Width:              staged.Width,
		Height:             staged.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staged.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staged.Width * 4,
			RowsPerImage: staged.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetTexture(binding, tex, view)
	return nil
}

// initMeshBuffers uploads vertex and index data for a mesh. Caller holds mu.
func (b *wgpuRendererBackendImpl) initMeshBuffers(provider bind_group_provider.BindGroupProvider, mesh *scene.Mesh) error {
	vertexData := common.SliceToBytes(mesh.Vertices)
	indexData := common.SliceToBytes(mesh.Indices)

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(len(mesh.Indices))
	return nil
}

// syncMeshes uploads new meshes, drops meshes that left the frame, and returns the
// buffer writes for this frame's object uniforms. Caller holds mu.
func (b *wgpuRendererBackendImpl) syncMeshes(drawables []scene.Drawable) ([]*meshResources, []bind_group_provider.BufferWrite, error) {
	seen := make(map[uint64]struct{}, len(drawables))
	live := make(map[*common.ImportedTexture]struct{})
	draws := make([]*meshResources, 0, len(drawables))
	writes := make([]bind_group_provider.BufferWrite, 0, len(drawables)*2)

	for _, d := range drawables {
		if d.Mesh == nil || len(d.Mesh.Indices) == 0 || len(d.Mesh.Vertices) == 0 {
			continue
		}
		seen[d.NodeID] = struct{}{}

		res, ok := b.meshes[d.NodeID]
		if ok && res.mesh != d.Mesh {
			res.provider.Release()
			delete(b.meshes, d.NodeID)
			ok = false
		}
		if !ok {
			provider := bind_group_provider.NewBindGroupProvider("Mesh " + strconv.FormatUint(d.NodeID, 10))
			if err := b.initMeshBuffers(provider, d.Mesh); err != nil {
				provider.Release()
				return nil, nil, fmt.Errorf("upload mesh %q: %w", d.Mesh.Name, err)
			}
			if err := b.initObjectBindGroup(provider, d.Mesh); err != nil {
				provider.Release()
				return nil, nil, fmt.Errorf("bind mesh %q: %w", d.Mesh.Name, err)
			}
			res = &meshResources{mesh: d.Mesh, provider: provider}
			b.meshes[d.NodeID] = res
		}

		if m := d.Mesh.Material; m != nil && m.DiffuseTexture() != nil {
			live[m.DiffuseTexture()] = struct{}{}
		}

		u, version := objectUniform(d)
		data := u.Marshal()
		// Transforms change every frame; the material only when its version moves.
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: res.provider,
			Binding:  uniformBinding,
			Offset:   0,
			Data:     data[:objectMaterialOffset],
		})
		if d.Mesh.Material != nil && res.material.stale(version) {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: res.provider,
				Binding:  uniformBinding,
				Offset:   objectMaterialOffset,
				Data:     data[objectMaterialOffset:],
			})
		}
		draws = append(draws, res)
	}

	for id, res := range b.meshes {
		if _, ok := seen[id]; !ok {
			res.provider.Release()
			delete(b.meshes, id)
		}
	}
	b.textures.prune(live)
	return draws, writes, nil
}

func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) DrawFrame(frame Frame) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return 0, ErrNoSurface
	}

	draws, writes, err := b.syncMeshes(frame.Drawables)
	if err != nil {
		return 0, err
	}

	fu := frameUniform(frame)
	writes = append(writes, bind_group_provider.BufferWrite{
		Provider: b.frameProvider,
		Binding:  uniformBinding,
		Data:     fu.Marshal(),
	})
	b.writeBuffers(writes)

	if err := b.beginFrame(); err != nil {
		return 0, err
	}

	b.framePass.SetPipeline(b.pipeline)
	b.framePass.SetBindGroup(frameGroup, b.frameProvider.BindGroup(), nil)
	for _, res := range draws {
		b.framePass.SetBindGroup(objectGroup, res.provider.BindGroup(), nil)
		b.framePass.SetVertexBuffer(0, res.provider.VertexBuffer(), 0, wgpu.WholeSize)
		b.framePass.SetIndexBuffer(res.provider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(res.provider.IndexCount()), 1, 0, 0, 0)
	}

	if err := b.endFrame(); err != nil {
		return 0, err
	}
	b.present()
	return len(draws), nil
}

// beginFrame acquires the next swapchain texture and begins the main render pass. Caller holds mu.
func (b *wgpuRendererBackendImpl) beginFrame() error {
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

// endFrame ends the render pass and submits it. Caller holds mu.
func (b *wgpuRendererBackendImpl) endFrame() error {
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

// present shows the acquired surface image. Caller holds mu.
func (b *wgpuRendererBackendImpl) present() {
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) releasePipeline() {
	for id, res := range b.meshes {
		res.provider.Release()
		delete(b.meshes, id)
	}
	if b.frameProvider != nil {
		b.frameProvider.Release()
		b.frameProvider = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.objectLayout != nil {
		b.objectLayout.Release()
		b.objectLayout = nil
	}
	if b.frameLayout != nil {
		b.frameLayout.Release()
		b.frameLayout = nil
	}
	if b.shaderModule != nil {
		b.shaderModule.Release()
		b.shaderModule = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.configured = false
	b.releasePipeline()
	b.textures.clear()
	b.releaseTargets()
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
