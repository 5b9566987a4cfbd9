package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is an opaque device object owned by whoever created it.
type Handle interface {
	Release()
}

// SurfaceTarget is a live window a surface can be created on. The window
// must outlive every SurfaceContext built from it.
type SurfaceTarget interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// Logger is the logging surface the renderer packages write to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// OrNop returns l, or a logger that discards everything if l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}

// Backend is the device, queue and surface the renderer drives.
//
// Resources come back as Handles and are released by the caller. A Backend
// is used from a single goroutine.
type Backend interface {
	// SurfaceFormats lists the formats the surface can be configured with,
	// in the adapter's order of preference.
	SurfaceFormats() []wgpu.TextureFormat
	ConfigureSurface(cfg SurfaceConfig)
	// AcquireSurfaceTexture returns a view onto the next swapchain image.
	AcquireSurfaceTexture() (Handle, error)
	Present()

	CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (Handle, error)
	CreateTexture(desc *wgpu.TextureDescriptor) (Handle, error)
	WriteTexture(texture Handle, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error
	CreateTextureView(texture Handle) (Handle, error)
	CreateSampler(desc *wgpu.SamplerDescriptor) (Handle, error)
	CreateShaderModule(label string, wgsl string) (Handle, error)
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (Handle, error)
	CreatePipelineLayout(label string, layouts ...Handle) (Handle, error)
	CreateRenderPipeline(desc *RenderPipelineDesc) (Handle, error)
	CreateBindGroup(desc *BindGroupDesc) (Handle, error)

	// SubmitPass encodes a single render pass and submits it to the queue.
	// It returns once the commands are enqueued.
	SubmitPass(pass *PassDesc) error

	Release()
}

// RenderPipelineDesc is a render pipeline over one shader module with a
// single vertex buffer and a single color target.
type RenderPipelineDesc struct {
	Label         string
	Layout        Handle
	Shader        Handle
	VertexEntry   string
	FragmentEntry string
	VertexLayout  wgpu.VertexBufferLayout
	Primitive     wgpu.PrimitiveState
	Multisample   wgpu.MultisampleState
	Target        wgpu.ColorTargetState
}

type BindGroupEntry struct {
	Binding     uint32
	TextureView Handle
	Sampler     Handle
}

type BindGroupDesc struct {
	Label   string
	Layout  Handle
	Entries []BindGroupEntry
}

// PassDesc is one clear-and-draw-indexed pass into Target.
type PassDesc struct {
	Label         string
	Target        Handle
	Clear         wgpu.Color
	Pipeline      Handle
	BindGroup     Handle
	VertexBuffer  Handle
	IndexBuffer   Handle
	IndexFormat   wgpu.IndexFormat
	IndexCount    uint32
	InstanceCount uint32
}
