package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUBackend is the Backend for a real device, backed by wgpu-native.
type WGPUBackend struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	current *surfaceFrame
	log     Logger
}

var _ Backend = (*WGPUBackend)(nil)

// surfaceFrame is the acquired swapchain texture and the view rendered into.
type surfaceFrame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (f *surfaceFrame) Release() {
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
}

// NewWGPUBackend creates a surface on target and acquires an adapter that
// can present to it, then a device and queue from that adapter.
func NewWGPUBackend(target SurfaceTarget, log Logger) (*WGPUBackend, error) {
	b := &WGPUBackend{log: OrNop(log)}

	b.instance = wgpu.CreateInstance(nil)
	// wraps the window into a wgpu surface
	b.surface = b.instance.CreateSurface(target.SurfaceDescriptor())

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		b.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoAdapterFound, err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil || device == nil {
		b.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceRequestFailed, err)
	}
	b.device = device
	b.queue = device.GetQueue()
	if b.queue == nil {
		b.Release()
		return nil, fmt.Errorf("%w: device has no queue", ErrDeviceRequestFailed)
	}

	b.log.Infof("GPU device acquired")
	return b, nil
}

func (b *WGPUBackend) SurfaceFormats() []wgpu.TextureFormat {
	caps := b.surface.GetCapabilities(b.adapter)
	return caps.Formats
}

func (b *WGPUBackend) ConfigureSurface(cfg SurfaceConfig) {
	caps := b.surface.GetCapabilities(b.adapter)
	// defines how the swapchain behaves (size, format, vsync)
	config := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      cfg.Format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: cfg.PresentMode,
	}
	if len(caps.AlphaModes) > 0 {
		config.AlphaMode = caps.AlphaModes[0]
	}
	b.surface.Configure(b.adapter, b.device, &config)
}

// AcquireSurfaceTexture fails with "surface status <status>" when the
// driver reports anything but success, which classifySurfaceError maps.
func (b *WGPUBackend) AcquireSurfaceTexture() (Handle, error) {
	texture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	if texture == nil {
		return nil, errors.New("surface returned no texture")
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, err
	}
	b.current = &surfaceFrame{texture: texture, view: view}
	return b.current, nil
}

func (b *WGPUBackend) Present() {
	b.surface.Present()
	b.current = nil
}

func (b *WGPUBackend) CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (Handle, error) {
	buf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    usage,
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *WGPUBackend) CreateTexture(desc *wgpu.TextureDescriptor) (Handle, error) {
	tex, err := b.device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (b *WGPUBackend) WriteTexture(texture Handle, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	tex, err := handleAs[*wgpu.Texture](texture, "texture")
	if err != nil {
		return err
	}
	return b.queue.WriteTexture(tex.AsImageCopy(), data, layout, size)
}

func (b *WGPUBackend) CreateTextureView(texture Handle) (Handle, error) {
	tex, err := handleAs[*wgpu.Texture](texture, "texture")
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (b *WGPUBackend) CreateSampler(desc *wgpu.SamplerDescriptor) (Handle, error) {
	sampler, err := b.device.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	return sampler, nil
}

func (b *WGPUBackend) CreateShaderModule(label string, wgsl string) (Handle, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (b *WGPUBackend) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (Handle, error) {
	bgl, err := b.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, err
	}
	return bgl, nil
}

func (b *WGPUBackend) CreatePipelineLayout(label string, layouts ...Handle) (Handle, error) {
	bgls := make([]*wgpu.BindGroupLayout, 0, len(layouts))
	for _, l := range layouts {
		bgl, err := handleAs[*wgpu.BindGroupLayout](l, "bind group layout")
		if err != nil {
			return nil, err
		}
		bgls = append(bgls, bgl)
	}
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: bgls,
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (b *WGPUBackend) CreateRenderPipeline(desc *RenderPipelineDesc) (Handle, error) {
	layout, err := handleAs[*wgpu.PipelineLayout](desc.Layout, "pipeline layout")
	if err != nil {
		return nil, err
	}
	shader, err := handleAs[*wgpu.ShaderModule](desc.Shader, "shader module")
	if err != nil {
		return nil, err
	}
	pipeline, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: desc.VertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{desc.VertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: desc.FragmentEntry,
			Targets:    []wgpu.ColorTargetState{desc.Target},
		},
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
	})
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (b *WGPUBackend) CreateBindGroup(desc *BindGroupDesc) (Handle, error) {
	layout, err := handleAs[*wgpu.BindGroupLayout](desc.Layout, "bind group layout")
	if err != nil {
		return nil, err
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		if e.TextureView != nil {
			if entry.TextureView, err = handleAs[*wgpu.TextureView](e.TextureView, "texture view"); err != nil {
				return nil, err
			}
		}
		if e.Sampler != nil {
			if entry.Sampler, err = handleAs[*wgpu.Sampler](e.Sampler, "sampler"); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return bg, nil
}

func (b *WGPUBackend) SubmitPass(p *PassDesc) error {
	frame, err := handleAs[*surfaceFrame](p.Target, "surface frame")
	if err != nil {
		return err
	}
	pipeline, err := handleAs[*wgpu.RenderPipeline](p.Pipeline, "render pipeline")
	if err != nil {
		return err
	}
	bindGroup, err := handleAs[*wgpu.BindGroup](p.BindGroup, "bind group")
	if err != nil {
		return err
	}
	vertexBuf, err := handleAs[*wgpu.Buffer](p.VertexBuffer, "vertex buffer")
	if err != nil {
		return err
	}
	indexBuf, err := handleAs[*wgpu.Buffer](p.IndexBuffer, "index buffer")
	if err != nil {
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       frame.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.Clear,
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.SetVertexBuffer(0, vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(indexBuf, p.IndexFormat, 0, wgpu.WholeSize)
	pass.DrawIndexed(p.IndexCount, p.InstanceCount, 0, 0, 0)
	err = pass.End()
	pass.Release() // must happen before Finish
	if err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	b.queue.Submit(cmd)
	return nil
}

func (b *WGPUBackend) Release() {
	if b.current != nil {
		b.current.Release()
		b.current = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func handleAs[T Handle](h Handle, what string) (T, error) {
	v, ok := h.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("expected %s handle, got %T", what, h)
	}
	return v, nil
}
