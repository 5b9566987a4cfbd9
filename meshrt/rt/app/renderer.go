package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/pentagon/meshrt/rt/assets"
	"github.com/gekko3d/pentagon/meshrt/rt/core"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu"
	"github.com/gekko3d/pentagon/meshrt/rt/shaders"
)

type State int

const (
	StateUninitialized State = iota
	StateReady
	StateResizing
	StateRendering
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateResizing:
		return "resizing"
	case StateRendering:
		return "rendering"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNotReady is returned by Render outside of StateReady.
var ErrNotReady = errors.New("renderer not ready")

// Profiler scope and counter names.
const (
	ScopeAcquire  = "acquire"
	ScopeSubmit   = "submit"
	ScopePresent  = "present"
	CountFrames   = "frames"
	CountLost     = "lost"
	CountSkipped  = "skipped"
	fpsWindowSize = time.Second
)

// Options selects what the renderer draws. Zero fields take the built-in
// pentagon, the embedded tree texture and the embedded shader.
type Options struct {
	Mesh       *core.Mesh
	Image      []byte
	ImageLabel string
	Shader     string
	Sampler    *gpu.SamplerConfig
	Log        gpu.Logger
}

func (o Options) withDefaults() Options {
	if o.Mesh == nil {
		m := core.PentagonMesh()
		o.Mesh = &m
	}
	if o.Image == nil {
		o.Image = assets.HappyTreePNG
		if o.ImageLabel == "" {
			o.ImageLabel = "happy_tree.png"
		}
	}
	if o.ImageLabel == "" {
		o.ImageLabel = "Diffuse Texture"
	}
	if o.Shader == "" {
		o.Shader = shaders.MeshWGSL
	}
	if o.Sampler == nil {
		s := gpu.DefaultSamplerConfig()
		o.Sampler = &s
	}
	o.Log = gpu.OrNop(o.Log)
	return o
}

// Renderer draws one textured indexed mesh over a clear color that follows
// the cursor. It owns every GPU resource it draws with, including the
// surface context it was created on.
type Renderer struct {
	ClearColor core.ClearColor
	Profiler   *Profiler

	surface *gpu.SurfaceContext
	dev     gpu.Backend
	log     gpu.Logger
	state   State

	width, height int

	mesh         core.Mesh
	texture      *gpu.Texture
	pipeline     *gpu.Pipeline
	vertexBuffer gpu.Handle
	indexBuffer  gpu.Handle
	bindGroup    gpu.Handle

	fps        float64
	fpsFrames  int
	fpsElapsed time.Duration
	lastFrame  time.Time
	now        func() time.Time
}

// New builds the texture, pipeline, buffers and bind group on surface.
// On failure everything created so far is released and the surface stays
// with the caller; on success the renderer owns it.
func New(surface *gpu.SurfaceContext, opts Options) (*Renderer, error) {
	if surface == nil || surface.Device() == nil {
		return nil, errors.New("renderer needs an open surface context")
	}
	opts = opts.withDefaults()

	cfg := surface.Config()
	r := &Renderer{
		ClearColor: core.Black,
		Profiler:   NewProfiler(),
		surface:    surface,
		dev:        surface.Device(),
		log:        opts.Log,
		state:      StateUninitialized,
		width:      int(cfg.Width),
		height:     int(cfg.Height),
		mesh:       *opts.Mesh,
		now:        time.Now,
	}

	if err := r.init(opts, cfg.Format); err != nil {
		r.releaseResources()
		return nil, err
	}

	r.state = StateReady
	r.log.Infof("Renderer ready: %d vertices, %d indices, texture %dx%d",
		r.mesh.VertexCount(), r.mesh.IndexCount(), r.texture.Width, r.texture.Height)
	return r, nil
}

func (r *Renderer) init(opts Options, format wgpu.TextureFormat) error {
	if err := r.mesh.Validate(); err != nil {
		return err
	}

	rgba, err := gpu.DecodeImage(opts.Image)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.ImageLabel, err)
	}
	r.texture, err = gpu.NewTextureFromRGBA(r.dev, rgba, opts.ImageLabel, *opts.Sampler)
	if err != nil {
		return err
	}

	r.pipeline, err = gpu.PipelineBuilder{
		Label:         "Render Pipeline",
		Source:        opts.Shader,
		VertexEntry:   shaders.MeshVertexEntry,
		FragmentEntry: shaders.MeshFragmentEntry,
		Log:           r.log,
	}.Build(r.dev, format, core.VertexLayout())
	if err != nil {
		return err
	}

	r.vertexBuffer, err = r.dev.CreateBuffer("Vertex Buffer", r.mesh.VertexBytes(), wgpu.BufferUsageVertex)
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	r.indexBuffer, err = r.dev.CreateBuffer("Index Buffer", r.mesh.IndexBytes(), wgpu.BufferUsageIndex)
	if err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}

	r.bindGroup, err = r.pipeline.NewTextureBindGroup(r.dev, r.texture)
	return err
}

func (r *Renderer) State() State {
	return r.state
}

// Size is the surface size last applied.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *Renderer) Mesh() core.Mesh {
	return r.mesh
}

// FPS is the frame rate over the last full second of presented frames.
func (r *Renderer) FPS() float64 {
	return r.fps
}

// Resize reconfigures the surface. Zero-sized requests, as sent while the
// window is minimized, leave the previous size in place.
func (r *Renderer) Resize(width, height int) {
	if r.state != StateReady {
		r.log.Debugf("Resize to %dx%d ignored in state %v", width, height, r.state)
		return
	}
	r.state = StateResizing
	if r.surface.Reconfigure(width, height) {
		r.width, r.height = width, height
	}
	r.state = StateReady
}

// HandleInput consumes the events the renderer reacts to and reports
// whether it did. Unconsumed events get the caller's default handling.
func (r *Renderer) HandleInput(ev Event) bool {
	switch ev := ev.(type) {
	case CursorMoved:
		r.ClearColor = core.ClearColorFromCursor(ev.X, ev.Y, uint32(max(r.width, 0)), uint32(max(r.height, 0)))
		return true
	default:
		return false
	}
}

// Update is called once per frame before Render. The scene is static.
func (r *Renderer) Update() {}

// Render draws and presents one frame. Nothing is presented when acquiring
// or submitting fails; acquire failures are *gpu.SurfaceError.
func (r *Renderer) Render() error {
	if r.state != StateReady {
		return fmt.Errorf("%w: %v", ErrNotReady, r.state)
	}
	r.state = StateRendering
	defer func() {
		if r.state == StateRendering {
			r.state = StateReady
		}
	}()

	r.Profiler.BeginScope(ScopeAcquire)
	frame, err := r.surface.AcquireFrame()
	r.Profiler.EndScope(ScopeAcquire)
	if err != nil {
		return err
	}
	defer frame.Release()

	r.Profiler.BeginScope(ScopeSubmit)
	err = r.dev.SubmitPass(&gpu.PassDesc{
		Label:         "Render Pass",
		Target:        frame,
		Clear:         r.ClearColor.WGPU(),
		Pipeline:      r.pipeline.Handle(),
		BindGroup:     r.bindGroup,
		VertexBuffer:  r.vertexBuffer,
		IndexBuffer:   r.indexBuffer,
		IndexFormat:   wgpu.IndexFormatUint16,
		IndexCount:    r.mesh.IndexCount(),
		InstanceCount: 1,
	})
	r.Profiler.EndScope(ScopeSubmit)
	if err != nil {
		return fmt.Errorf("submit frame: %w", err)
	}

	r.Profiler.BeginScope(ScopePresent)
	r.surface.Present()
	r.Profiler.EndScope(ScopePresent)

	r.Profiler.Inc(CountFrames)
	r.tickFPS()
	return nil
}

func (r *Renderer) tickFPS() {
	now := r.now()
	if !r.lastFrame.IsZero() {
		r.fpsFrames++
		r.fpsElapsed += now.Sub(r.lastFrame)
		if r.fpsElapsed >= fpsWindowSize {
			r.fps = float64(r.fpsFrames) / r.fpsElapsed.Seconds()
			r.fpsFrames = 0
			r.fpsElapsed = 0
		}
	}
	r.lastFrame = now
}

// Frame runs Update and Render and applies the surface error policy. A
// lost surface is reconfigured at the current size and retried next
// frame, unless it has no size yet, in which case the next resize
// configures it; outdated, timed out and other failed frames are skipped. The only
// error returned is out-of-memory, after which the renderer must not be
// driven any further.
func (r *Renderer) Frame() error {
	r.Update()
	err := r.Render()
	if err == nil {
		return nil
	}

	kind, ok := gpu.SurfaceErrorKindOf(err)
	if !ok {
		r.Profiler.Inc(CountSkipped)
		r.log.Warnf("Frame skipped: %v", err)
		return nil
	}
	switch kind {
	case gpu.SurfaceLost:
		r.Profiler.Inc(CountLost)
		if r.width <= 0 || r.height <= 0 {
			r.log.Debugf("Surface lost while zero-sized, waiting for a resize")
			return nil
		}
		r.log.Warnf("Surface lost, reconfiguring at %dx%d", r.width, r.height)
		r.Resize(r.width, r.height)
		return nil
	case gpu.SurfaceOutOfMemory:
		r.log.Errorf("Surface out of memory: %v", err)
		return err
	case gpu.SurfaceOutdated, gpu.SurfaceTimeout:
		r.Profiler.Inc(CountSkipped)
		r.log.Debugf("Frame skipped: %v", err)
		return nil
	default:
		r.Profiler.Inc(CountSkipped)
		r.log.Warnf("Frame skipped: %v", err)
		return nil
	}
}

// Release frees every GPU resource, the surface context last. The bind
// group goes first so it never outlives the texture view it references.
func (r *Renderer) Release() {
	if r.state == StateDisposed {
		return
	}
	r.releaseResources()
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	r.state = StateDisposed
	r.log.Infof("Renderer released")
}

func (r *Renderer) releaseResources() {
	if r.bindGroup != nil {
		r.bindGroup.Release()
		r.bindGroup = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
		r.vertexBuffer = nil
	}
	if r.indexBuffer != nil {
		r.indexBuffer.Release()
		r.indexBuffer = nil
	}
	if r.texture != nil {
		r.texture.Release()
		r.texture = nil
	}
}
