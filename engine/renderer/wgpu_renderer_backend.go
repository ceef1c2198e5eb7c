package renderer

import (
	"context"
	_ "embed"
	"encoding/binary"
	"fmt"
	"image"
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/light"
)

//go:embed assets/paint.wgsl
var paintShaderSource string

const (
	// vertexStride is position, normal, color and params, each a vec3<f32>.
	vertexStride = 48

	// frameUniformSize is view_proj (mat4) plus eye (vec4).
	frameUniformSize = 80

	// copyRowAlignment is the WebGPU alignment for BytesPerRow in texture-to-buffer copies.
	copyRowAlignment = 256
)

type readbackState int

const (
	readbackIdle readbackState = iota
	readbackPending
	readbackMapped
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// targetFormat is the surface format when a window is attached, RGBA8Unorm otherwise.
	targetFormat wgpu.TextureFormat
	width        int
	height       int

	colorTexture *wgpu.Texture
	colorView    *wgpu.TextureView
	msaaTexture  *wgpu.Texture
	msaaView     *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	pipeline       *wgpu.RenderPipeline
	bindGroup      *wgpu.BindGroup
	frameUniform   *wgpu.Buffer
	lightUniform   *wgpu.Buffer
	vertexBuffer   *wgpu.Buffer
	vertexCapacity uint64
	vertexCount    uint32

	// readback holds the last frame copied out of colorTexture.
	readback      *wgpu.Buffer
	paddedRowSize uint32
	state         readbackState
	mapStatus     wgpu.BufferMapAsyncStatus
	lastImage     *image.RGBA
	ready         chan struct{}
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the WebGPU backend. Frames are drawn into an offscreen
// color texture and copied into a mappable buffer for readback. When a surface
// descriptor is given the color texture is also copied to the window on Present.
// GPU setup failures panic.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, presentMode PresentMode, width, height int) RendererBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		ready:       make(chan struct{}, 1),
	}
	if presentMode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}
	if surfaceDescriptor != nil {
		b.surface = b.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Paint Device",
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.targetFormat = wgpu.TextureFormatRGBA8Unorm
	if b.surface != nil {
		capabilities := b.surface.GetCapabilities(b.adapter)
		b.targetFormat = capabilities.Formats[0]
	}

	if err := b.createPipeline(); err != nil {
		panic(err)
	}
	b.configure(width, height)
	return b
}

// --- setup ---

func (b *wgpuRendererBackendImpl) createPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "paint.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: paintShaderSource,
		},
	})
	if err != nil {
		return err
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Paint Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: frameUniformSize},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: uint64(lightUniformSize())},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}

	b.frameUniform, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform",
		Size:  frameUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.lightUniform, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Light Uniform",
		Size:  uint64(lightUniformSize()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	b.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Paint Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.frameUniform, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.lightUniform, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Paint",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}

	attrs := make([]wgpu.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         uint64(i * 12),
			ShaderLocation: uint32(i),
		}
	}

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Paint Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: vertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    b.targetFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
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
	return err
}

// configure (re)creates every size-dependent resource. Caller must hold the mutex
// or own b exclusively.
func (b *wgpuRendererBackendImpl) configure(width, height int) {
	width, height = max(width, 1), max(height, 1)
	b.settle()
	b.releaseTargets()
	b.width, b.height = width, height

	if b.surface != nil {
		capabilities := b.surface.GetCapabilities(b.adapter)
		b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
			Format:      b.targetFormat,
			Width:       uint32(width),
			Height:      uint32(height),
			PresentMode: b.presentMode,
			AlphaMode:   capabilities.AlphaModes[0],
		})
	}

	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	var err error

	b.colorTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Color Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        b.targetFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		panic(err)
	}
	if b.colorView, err = b.colorTexture.CreateView(nil); err != nil {
		panic(err)
	}

	if b.sampleCount > 1 {
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   uint32(b.sampleCount),
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.targetFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		if b.msaaView, err = b.msaaTexture.CreateView(nil); err != nil {
			panic(err)
		}
	}

	// depth sample count must match the color attachment
	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	if b.depthView, err = b.depthTexture.CreateView(nil); err != nil {
		panic(err)
	}

	b.paddedRowSize = paddedRowSize(width)
	b.readback, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Buffer",
		Size:  uint64(b.paddedRowSize) * uint64(height),
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	b.lastImage = nil
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	for _, v := range []*wgpu.TextureView{b.colorView, b.msaaView, b.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.colorTexture, b.msaaTexture, b.depthTexture} {
		if t != nil {
			t.Release()
		}
	}
	if b.readback != nil {
		b.readback.Release()
	}
	b.colorView, b.msaaView, b.depthView = nil, nil, nil
	b.colorTexture, b.msaaTexture, b.depthTexture = nil, nil, nil
	b.readback = nil
}

// settle waits out a pending map and unmaps the readback buffer so it can be
// written again. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) settle() {
	if b.state == readbackPending {
		b.device.Poll(true, nil)
	}
	if b.state == readbackMapped {
		b.readback.Unmap()
	}
	b.state = readbackIdle
	select {
	case <-b.ready:
	default:
	}
}

// --- RendererBackend ---

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configure(width, height)
}

func (b *wgpuRendererBackendImpl) Draw(f *frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.settle()

	vertices := packVertices(f)
	if err := b.ensureVertexCapacity(uint64(len(vertices))); err != nil {
		return err
	}
	if len(vertices) > 0 {
		b.queue.WriteBuffer(b.vertexBuffer, 0, vertices)
	}
	b.vertexCount = uint32(len(vertices) / vertexStride)
	b.queue.WriteBuffer(b.frameUniform, 0, packFrameUniform(f))
	b.queue.WriteBuffer(b.lightUniform, 0, packLightUniform(f.rig))

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	// with MSAA the pass draws into the multisampled texture and resolves into colorView
	attachment := wgpu.RenderPassColorAttachment{
		View:    b.colorView,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(f.clear[0]), G: float64(f.clear[1]), B: float64(f.clear[2]), A: 1.0,
		},
	}
	if b.sampleCount > 1 {
		attachment.View = b.msaaView
		attachment.ResolveTarget = b.colorView
		attachment.StoreOp = wgpu.StoreOpDiscard
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	if b.vertexCount > 0 {
		pass.SetPipeline(b.pipeline)
		pass.SetBindGroup(0, b.bindGroup, nil)
		pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
		pass.Draw(b.vertexCount, 1, 0, 0)
	}
	pass.End()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  b.colorTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: b.readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  b.paddedRowSize,
				RowsPerImage: uint32(b.height),
			},
		},
		&wgpu.Extent3D{Width: uint32(b.width), Height: uint32(b.height), DepthOrArrayLayers: 1},
	)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	// the callback runs inside a later device poll; AwaitFrame drives the poll
	b.state = readbackPending
	err = b.readback.MapAsync(wgpu.MapModeRead, 0, uint64(b.paddedRowSize)*uint64(b.height), func(status wgpu.BufferMapAsyncStatus) {
		b.mapStatus = status
		b.state = readbackMapped
		select {
		case b.ready <- struct{}{}:
		default:
		}
	})
	if err != nil {
		b.state = readbackIdle
		return fmt.Errorf("readback map failed: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) ensureVertexCapacity(size uint64) error {
	if size <= b.vertexCapacity && b.vertexBuffer != nil {
		return nil
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
	}
	capacity := max(size, vertexStride*3*1024)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Paint Vertex Buffer",
		Size:  capacity,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.vertexBuffer = buf
	b.vertexCapacity = capacity
	return nil
}

func (b *wgpuRendererBackendImpl) AwaitFrame(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		select {
		case <-b.ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if b.state != readbackPending {
			// nothing in flight; a signal for an already mapped frame was consumed
			return nil
		}
		b.device.Poll(true, nil)
	}
}

func (b *wgpuRendererBackendImpl) ReadImage() (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == readbackPending {
		b.device.Poll(true, nil)
	}
	switch b.state {
	case readbackMapped:
		b.state = readbackIdle
		if b.mapStatus != wgpu.BufferMapAsyncStatusSuccess {
			b.readback.Unmap()
			return nil, fmt.Errorf("readback map status %s", b.mapStatus.String())
		}
		size := uint(b.paddedRowSize) * uint(b.height)
		data := b.readback.GetMappedRange(0, size)
		b.lastImage = unpackRows(data, b.width, b.height, int(b.paddedRowSize), isBGRA(b.targetFormat))
		b.readback.Unmap()
	case readbackPending:
		return nil, fmt.Errorf("%w: map still pending", ErrNoFrame)
	}

	if b.lastImage == nil {
		return nil, ErrNoFrame
	}
	out := image.NewRGBA(b.lastImage.Rect)
	copy(out.Pix, b.lastImage.Pix)
	return out, nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return
	}
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		log.Printf("[Renderer] failed to acquire surface texture: %v", err)
		return
	}
	defer surfaceTexture.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	defer encoder.Release()

	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: b.colorTexture, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyTexture{Texture: surfaceTexture, Aspect: wgpu.TextureAspectAll},
		&wgpu.Extent3D{Width: uint32(b.width), Height: uint32(b.height), DepthOrArrayLayers: 1},
	)
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.surface.Present()
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.settle()
	b.releaseTargets()
	for _, buf := range []*wgpu.Buffer{b.vertexBuffer, b.frameUniform, b.lightUniform} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.pipeline != nil {
		b.pipeline.Release()
	}
	if b.bindGroup != nil {
		b.bindGroup.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	if b.surface != nil {
		b.surface.Release()
	}
	b.instance.Release()
}

// --- packing helpers ---

func paddedRowSize(width int) uint32 {
	row := uint32(width * 4)
	return (row + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}

func isBGRA(format wgpu.TextureFormat) bool {
	return format == wgpu.TextureFormatBGRA8Unorm || format == wgpu.TextureFormatBGRA8UnormSrgb
}

// unpackRows strips row padding from a mapped readback buffer and swaps the
// channel order of BGRA targets.
func unpackRows(data []byte, width, height, stride int, bgra bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := data[y*stride : y*stride+width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+width*4]
		copy(dst, src)
		if bgra {
			for x := 0; x < width*4; x += 4 {
				dst[x], dst[x+2] = dst[x+2], dst[x]
			}
		}
		for x := 3; x < width*4; x += 4 {
			dst[x] = 255
		}
	}
	return img
}

func putFloats(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(v))
	}
}

// packVertices flattens every visible triangle into world space, one vertex per
// corner. Colors and shading parameters travel with the vertices so one draw call
// covers the whole frame.
func packVertices(f *frame) []byte {
	count := 0
	for i := range f.items {
		count += f.items[i].geometry.TriangleCount() * 3
	}
	buf := make([]byte, 0, count*vertexStride)
	vertex := make([]byte, vertexStride)

	for i := range f.items {
		item := &f.items[i]
		geo := item.geometry
		for t := 0; t < geo.TriangleCount(); t++ {
			shade, ok := item.shadeFor(t)
			if !ok {
				continue
			}
			unlit := float32(0)
			if shade.Unlit {
				unlit = 1
			}
			for k := 0; k < 3; k++ {
				idx := geo.Indices[t*3+k]
				p := common.TransformPoint(item.world[:], geo.Positions[idx])
				n := common.TransformDirection(item.world[:], geo.Normals[idx])
				putFloats(vertex,
					p[0], p[1], p[2],
					n[0], n[1], n[2],
					shade.Color[0], shade.Color[1], shade.Color[2],
					shade.Roughness, shade.Metalness, unlit,
				)
				buf = append(buf, vertex...)
			}
		}
	}
	return buf
}

func packFrameUniform(f *frame) []byte {
	buf := make([]byte, frameUniformSize)
	putFloats(buf[:64], f.viewProj[:]...)
	putFloats(buf[64:], f.eye[0], f.eye[1], f.eye[2], 1)
	return buf
}

func lightUniformSize() int {
	return (&light.GPULightHeader{}).Size() + light.MaxGPULights*(&light.GPULight{}).Size()
}

// packLightUniform marshals the rig, substituting full white ambient for a nil rig
// so an unlit scene still shows its colors.
func packLightUniform(rig light.Rig) []byte {
	if rig != nil {
		return light.MarshalRig(rig)
	}
	buf := make([]byte, lightUniformSize())
	header := light.GPULightHeader{AmbientColor: [3]float32{1, 1, 1}}
	copy(buf, header.Marshal())
	return buf
}
