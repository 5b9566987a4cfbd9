package app_test

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/pentagon/meshrt/rt/app"
	"github.com/gekko3d/pentagon/meshrt/rt/core"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu/gputest"
)

func newRenderer(t *testing.T, w, h int) (*app.Renderer, *gputest.Backend) {
	t.Helper()
	dev := gputest.New()
	sc, err := gpu.NewSurfaceContext(dev, w, h, nil)
	require.NoError(t, err)
	r, err := app.New(sc, app.Options{})
	require.NoError(t, err)
	return r, dev
}

func TestNew_defaults(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)

	assert.Equal(t, app.StateReady, r.State())
	assert.Equal(t, core.Black, r.ClearColor)
	assert.Equal(t, 5, r.Mesh().VertexCount())
	assert.Equal(t, uint32(9), r.Mesh().IndexCount())

	require.Len(t, dev.Buffers, 2)
	assert.Equal(t, wgpu.BufferUsageVertex, dev.Buffers[0].Usage)
	assert.Equal(t, r.Mesh().VertexBytes(), dev.Buffers[0].Contents)
	assert.Equal(t, wgpu.BufferUsageIndex, dev.Buffers[1].Usage)
	assert.Equal(t, r.Mesh().IndexBytes(), dev.Buffers[1].Contents)
	assert.Len(t, dev.BindGroups, 1)
	assert.Len(t, dev.Pipelines, 1)
}

func TestRenderer_firstFrame(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)

	require.NoError(t, r.Render())

	assert.Equal(t, 1, dev.Presents)
	require.Len(t, dev.Passes, 1)
	pass := dev.Passes[0]
	assert.Equal(t, uint32(9), pass.IndexCount)
	assert.Equal(t, uint32(1), pass.InstanceCount)
	assert.Equal(t, wgpu.IndexFormatUint16, pass.IndexFormat)
	assert.Equal(t, wgpu.Color{R: 0, G: 0, B: 0, A: 1}, pass.Clear)
	assert.Zero(t, dev.LiveOf(gputest.KindFrame), "frame must be released after present")
	assert.Equal(t, app.StateReady, r.State())
	assert.Equal(t, 1, r.Profiler.Count(app.CountFrames))
}

func TestRenderer_HandleInput(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)

	assert.True(t, r.HandleInput(app.CursorMoved{X: 400, Y: 150}))
	assert.Equal(t, core.ClearColor{R: 0.5, G: 0.25, B: 1, A: 1}, r.ClearColor)

	require.NoError(t, r.Render())
	assert.Equal(t, wgpu.Color{R: 0.5, G: 0.25, B: 1, A: 1}, dev.LastPass().Clear)

	for _, ev := range []app.Event{
		app.Resized{Width: 10, Height: 10},
		app.ScaleFactorChanged{ScaleX: 2, ScaleY: 2, Width: 1600, Height: 1200},
		app.CloseRequested{},
		app.KeyPressed{Key: 256},
	} {
		assert.False(t, r.HandleInput(ev), "%T should not be consumed", ev)
	}
	assert.Equal(t, core.ClearColor{R: 0.5, G: 0.25, B: 1, A: 1}, r.ClearColor)

	// dragging past the window edges
	assert.True(t, r.HandleInput(app.CursorMoved{X: -30, Y: 900}))
	assert.Equal(t, core.ClearColor{R: 0, G: 1, B: 1, A: 1}, r.ClearColor)
}

func TestRenderer_ResizeThenRender(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)

	sizes := [][2]int{{1, 1}, {640, 480}, {1920, 1080}, {333, 777}}
	for _, s := range sizes {
		r.Resize(s[0], s[1])
		require.NoError(t, r.Render())
		cfg := dev.LastConfig()
		assert.Equal(t, uint32(s[0]), cfg.Width)
		assert.Equal(t, uint32(s[1]), cfg.Height)
		w, h := r.Size()
		assert.Equal(t, s, [2]int{w, h})
	}
}

func TestRenderer_ResizeZeroKeepsConfig(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)
	configs := len(dev.Configs)

	r.Resize(0, 600)
	r.Resize(800, 0)
	r.Resize(0, 0)

	assert.Len(t, dev.Configs, configs)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, app.StateReady, r.State())
	require.NoError(t, r.Render())
}

func TestRenderer_FrameSurfaceLostReconfigures(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)
	dev.FailAcquire(errors.New("wgpu.(*Surface).GetCurrentTexture(): surface status lost"))
	configs := len(dev.Configs)

	require.NoError(t, r.Frame())
	assert.Zero(t, dev.Presents)
	assert.Len(t, dev.Configs, configs+1)
	assert.Equal(t, uint32(800), dev.LastConfig().Width)
	assert.Equal(t, uint32(600), dev.LastConfig().Height)
	assert.Equal(t, 1, r.Profiler.Count(app.CountLost))

	require.NoError(t, r.Frame())
	assert.Equal(t, 1, dev.Presents)
}

func TestRenderer_FrameSurfaceLostWhileZeroSized(t *testing.T) {
	r, dev := newRenderer(t, 0, 0)
	dev.FailAcquire(
		errors.New("wgpu.(*Surface).GetCurrentTexture(): surface status lost"),
		errors.New("wgpu.(*Surface).GetCurrentTexture(): surface status lost"),
	)

	require.NoError(t, r.Frame())
	require.NoError(t, r.Frame())
	assert.Empty(t, dev.Configs, "nothing to reconfigure at zero size")
	assert.Equal(t, 2, r.Profiler.Count(app.CountLost))
	assert.Equal(t, app.StateReady, r.State())

	r.Resize(640, 480)
	require.Len(t, dev.Configs, 1)
	require.NoError(t, r.Frame())
	assert.Equal(t, 1, dev.Presents)
}

func TestRenderer_FrameOutOfMemoryIsFatal(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)
	dev.FailAcquire(errors.New("wgpu.(*Surface).GetCurrentTexture(): surface status out-of-memory"))

	err := r.Frame()
	require.Error(t, err)
	kind, ok := gpu.SurfaceErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, gpu.SurfaceOutOfMemory, kind)
	assert.Zero(t, dev.Presents)
}

func TestRenderer_FrameSkipsTransientErrors(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)
	dev.FailAcquire(errors.New("wgpu.(*Surface).GetCurrentTexture(): surface status timeout"), errors.New("wgpu.(*Surface).GetCurrentTexture(): surface status outdated"))

	require.NoError(t, r.Frame())
	require.NoError(t, r.Frame())
	assert.Zero(t, dev.Presents)
	assert.Equal(t, 2, r.Profiler.Count(app.CountSkipped))

	require.NoError(t, r.Frame())
	assert.Equal(t, 1, dev.Presents)
}

func TestRenderer_SubmitFailureDoesNotPresent(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)
	dev.FailCreate("submit", errors.New("validation error"))

	err := r.Render()
	require.Error(t, err)
	assert.Zero(t, dev.Presents)
	assert.Zero(t, dev.LiveOf(gputest.KindFrame))

	require.NoError(t, r.Frame(), "non-surface errors skip the frame")
	assert.Equal(t, app.StateReady, r.State())
}

func TestRenderer_Release(t *testing.T) {
	r, dev := newRenderer(t, 800, 600)
	require.NoError(t, r.Render())

	r.Release()
	r.Release()

	assert.Equal(t, app.StateDisposed, r.State())
	assert.Zero(t, dev.LiveCount(), "leaked: %v", dev.Live())
	assert.Zero(t, dev.DoubleRelease)
	assert.True(t, dev.Released)

	bg := dev.ReleaseIndex(gputest.KindBindGroup)
	view := dev.ReleaseIndex(gputest.KindTextureView)
	device := dev.ReleaseIndex(gputest.KindDevice)
	require.NotEqual(t, -1, bg)
	assert.Less(t, bg, view)
	assert.Less(t, dev.ReleaseIndex(gputest.KindPipeline), dev.ReleaseIndex(gputest.KindBuffer))
	assert.Less(t, dev.ReleaseIndex(gputest.KindBuffer), dev.ReleaseIndex(gputest.KindTexture))
	assert.Equal(t, len(dev.ReleaseLog)-1, device)

	assert.ErrorIs(t, r.Render(), app.ErrNotReady)
}

func TestNew_failureReleasesEverything(t *testing.T) {
	tests := []struct {
		name string
		fail string
	}{
		{"texture", gputest.KindTexture},
		{"shader", gputest.KindShader},
		{"pipeline", gputest.KindPipeline},
		{"buffer", gputest.KindBuffer},
		{"bind group", gputest.KindBindGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			sc, err := gpu.NewSurfaceContext(dev, 800, 600, nil)
			require.NoError(t, err)
			dev.FailCreate(tt.fail, errors.New("injected"))

			r, err := app.New(sc, app.Options{})
			assert.Nil(t, r)
			assert.Error(t, err)
			assert.Zero(t, dev.LiveCount(), "leaked: %v", dev.Live())
		})
	}
}

func TestNew_invalidInputs(t *testing.T) {
	dev := gputest.New()
	sc, err := gpu.NewSurfaceContext(dev, 800, 600, nil)
	require.NoError(t, err)

	bad := core.Mesh{
		Vertices: []core.Vertex{{Position: mgl32.Vec3{0, 0, 0}}},
		Indices:  []uint16{0, 1, 2},
	}
	_, err = app.New(sc, app.Options{Mesh: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidMesh)

	_, err = app.New(sc, app.Options{Image: []byte("nope")})
	assert.ErrorIs(t, err, gpu.ErrImageDecode)

	_, err = app.New(sc, app.Options{Shader: "@fragment fn fs_main() {}"})
	assert.ErrorIs(t, err, gpu.ErrShaderCompile)

	assert.Zero(t, dev.LiveCount())
}
