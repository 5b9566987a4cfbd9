// Package gputest provides a recording gpu.Backend for tests that cannot
// open a real device.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/pentagon/meshrt/rt/gpu"
)

// Handle kinds, as reported by Object.Kind and Backend.ReleaseLog.
const (
	KindBuffer          = "buffer"
	KindTexture         = "texture"
	KindTextureView     = "view"
	KindSampler         = "sampler"
	KindShader          = "shader"
	KindBindGroupLayout = "bind-group-layout"
	KindPipelineLayout  = "pipeline-layout"
	KindPipeline        = "pipeline"
	KindBindGroup       = "bind-group"
	KindFrame           = "frame"
	KindDevice          = "device"
)

// ErrUseAfterRelease is returned when a released handle is passed back in.
var ErrUseAfterRelease = errors.New("handle used after release")

// Object is a handle created by Backend.
type Object struct {
	ID       int
	Kind     string
	Label    string
	backend  *Backend
	released bool
}

func (o *Object) Release() {
	o.backend.release(o)
}

func (o *Object) Released() bool {
	o.backend.mu.Lock()
	defer o.backend.mu.Unlock()
	return o.released
}

func (o *Object) String() string {
	return fmt.Sprintf("%s#%d(%s)", o.Kind, o.ID, o.Label)
}

type Buffer struct {
	Label    string
	Contents []byte
	Usage    wgpu.BufferUsage
}

type TextureWrite struct {
	Data   []byte
	Layout wgpu.TextureDataLayout
	Size   wgpu.Extent3D
}

// Backend records every call made to it. The zero value is not usable; use
// New.
type Backend struct {
	mu sync.Mutex

	Formats []wgpu.TextureFormat

	Configs       []gpu.SurfaceConfig
	Buffers       []Buffer
	Textures      []wgpu.TextureDescriptor
	Writes        []TextureWrite
	Samplers      []wgpu.SamplerDescriptor
	Shaders       []string
	BindLayouts   []wgpu.BindGroupLayoutDescriptor
	Pipelines     []gpu.RenderPipelineDesc
	BindGroups    []gpu.BindGroupDesc
	Passes        []gpu.PassDesc
	Presents      int
	Acquires      int
	ReleaseLog    []string
	DoubleRelease int
	Released      bool

	acquireErrs []error
	createErrs  map[string]error
	nextID      int
	live        map[*Object]struct{}
}

var _ gpu.Backend = (*Backend)(nil)

// New returns a Backend whose surface offers BGRA8UnormSrgb only.
func New() *Backend {
	return &Backend{
		Formats:    []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb},
		createErrs: map[string]error{},
		live:       map[*Object]struct{}{},
	}
}

// FailAcquire queues errors returned by the next AcquireSurfaceTexture
// calls, one per call. A nil entry lets that call succeed.
func (b *Backend) FailAcquire(errs ...error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acquireErrs = append(b.acquireErrs, errs...)
}

// FailCreate makes every creation of kind fail with err until cleared with
// a nil err.
func (b *Backend) FailCreate(kind string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.createErrs, kind)
		return
	}
	b.createErrs[kind] = err
}

// Live returns the handles not yet released.
func (b *Backend) Live() []*Object {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Object, 0, len(b.live))
	for o := range b.live {
		out = append(out, o)
	}
	return out
}

func (b *Backend) LiveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// LiveOf counts unreleased handles of kind.
func (b *Backend) LiveOf(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for o := range b.live {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// ReleaseIndex is the position of the first release of kind in ReleaseLog,
// or -1.
func (b *Backend) ReleaseIndex(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, k := range b.ReleaseLog {
		if k == kind {
			return i
		}
	}
	return -1
}

func (b *Backend) LastConfig() gpu.SurfaceConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Configs) == 0 {
		return gpu.SurfaceConfig{}
	}
	return b.Configs[len(b.Configs)-1]
}

func (b *Backend) LastPass() gpu.PassDesc {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Passes) == 0 {
		return gpu.PassDesc{}
	}
	return b.Passes[len(b.Passes)-1]
}

func (b *Backend) create(kind, label string) (*Object, error) {
	if err := b.createErrs[kind]; err != nil {
		return nil, err
	}
	b.nextID++
	o := &Object{ID: b.nextID, Kind: kind, Label: label, backend: b}
	b.live[o] = struct{}{}
	return o, nil
}

func (b *Backend) release(o *Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o.released {
		b.DoubleRelease++
		return
	}
	o.released = true
	delete(b.live, o)
	b.ReleaseLog = append(b.ReleaseLog, o.Kind)
}

func (b *Backend) check(h gpu.Handle, kind string) error {
	o, ok := h.(*Object)
	if !ok || o == nil {
		return fmt.Errorf("expected %s handle, got %T", kind, h)
	}
	if o.Kind != kind {
		return fmt.Errorf("expected %s handle, got %s", kind, o.Kind)
	}
	if o.released {
		return fmt.Errorf("%w: %s", ErrUseAfterRelease, o)
	}
	return nil
}

func (b *Backend) SurfaceFormats() []wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]wgpu.TextureFormat(nil), b.Formats...)
}

func (b *Backend) ConfigureSurface(cfg gpu.SurfaceConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Configs = append(b.Configs, cfg)
}

func (b *Backend) AcquireSurfaceTexture() (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Acquires++
	if len(b.acquireErrs) > 0 {
		err := b.acquireErrs[0]
		b.acquireErrs = b.acquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	o, err := b.create(KindFrame, "surface")
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Presents++
}

func (b *Backend) CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, err := b.create(KindBuffer, label)
	if err != nil {
		return nil, err
	}
	b.Buffers = append(b.Buffers, Buffer{Label: label, Contents: append([]byte(nil), contents...), Usage: usage})
	return o, nil
}

func (b *Backend) CreateTexture(desc *wgpu.TextureDescriptor) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, err := b.create(KindTexture, desc.Label)
	if err != nil {
		return nil, err
	}
	b.Textures = append(b.Textures, *desc)
	return o, nil
}

func (b *Backend) WriteTexture(texture gpu.Handle, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(texture, KindTexture); err != nil {
		return err
	}
	if err := b.createErrs["write"]; err != nil {
		return err
	}
	b.Writes = append(b.Writes, TextureWrite{Data: append([]byte(nil), data...), Layout: *layout, Size: *size})
	return nil
}

func (b *Backend) CreateTextureView(texture gpu.Handle) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(texture, KindTexture); err != nil {
		return nil, err
	}
	o, err := b.create(KindTextureView, texture.(*Object).Label)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (b *Backend) CreateSampler(desc *wgpu.SamplerDescriptor) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, err := b.create(KindSampler, desc.Label)
	if err != nil {
		return nil, err
	}
	b.Samplers = append(b.Samplers, *desc)
	return o, nil
}

func (b *Backend) CreateShaderModule(label string, wgsl string) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, err := b.create(KindShader, label)
	if err != nil {
		return nil, err
	}
	b.Shaders = append(b.Shaders, wgsl)
	return o, nil
}

func (b *Backend) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, err := b.create(KindBindGroupLayout, desc.Label)
	if err != nil {
		return nil, err
	}
	b.BindLayouts = append(b.BindLayouts, *desc)
	return o, nil
}

func (b *Backend) CreatePipelineLayout(label string, layouts ...gpu.Handle) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range layouts {
		if err := b.check(l, KindBindGroupLayout); err != nil {
			return nil, err
		}
	}
	o, err := b.create(KindPipelineLayout, label)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (b *Backend) CreateRenderPipeline(desc *gpu.RenderPipelineDesc) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(desc.Layout, KindPipelineLayout); err != nil {
		return nil, err
	}
	if err := b.check(desc.Shader, KindShader); err != nil {
		return nil, err
	}
	o, err := b.create(KindPipeline, desc.Label)
	if err != nil {
		return nil, err
	}
	b.Pipelines = append(b.Pipelines, *desc)
	return o, nil
}

func (b *Backend) CreateBindGroup(desc *gpu.BindGroupDesc) (gpu.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(desc.Layout, KindBindGroupLayout); err != nil {
		return nil, err
	}
	for _, e := range desc.Entries {
		if e.TextureView != nil {
			if err := b.check(e.TextureView, KindTextureView); err != nil {
				return nil, err
			}
		}
		if e.Sampler != nil {
			if err := b.check(e.Sampler, KindSampler); err != nil {
				return nil, err
			}
		}
	}
	o, err := b.create(KindBindGroup, desc.Label)
	if err != nil {
		return nil, err
	}
	b.BindGroups = append(b.BindGroups, *desc)
	return o, nil
}

func (b *Backend) SubmitPass(p *gpu.PassDesc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	checks := []struct {
		h    gpu.Handle
		kind string
	}{
		{p.Target, KindFrame},
		{p.Pipeline, KindPipeline},
		{p.BindGroup, KindBindGroup},
		{p.VertexBuffer, KindBuffer},
		{p.IndexBuffer, KindBuffer},
	}
	for _, c := range checks {
		if err := b.check(c.h, c.kind); err != nil {
			return err
		}
	}
	if err := b.createErrs["submit"]; err != nil {
		return err
	}
	b.Passes = append(b.Passes, *p)
	return nil
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Released {
		b.DoubleRelease++
		return
	}
	b.Released = true
	b.ReleaseLog = append(b.ReleaseLog, KindDevice)
}
