package pentagon

import (
	"time"

	rtapp "github.com/gekko3d/pentagon/meshrt/rt/app"
	"github.com/gekko3d/pentagon/meshrt/rt/assets"
	"github.com/gekko3d/pentagon/meshrt/rt/core"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu"
	"github.com/gekko3d/pentagon/meshrt/rt/shaders"
)

// RendererModule draws the textured mesh into the shared window. The app
// must use the states StateRunning through StateExiting.
type RendererModule struct {
	// ImagePath and ShaderPath replace the embedded texture and shader.
	ImagePath  string
	ShaderPath string
	// Debug logs frame statistics once per second.
	Debug bool
	// Width and Height size the surface when there is no window.
	Width  int
	Height int
	// Backend replaces the wgpu device opened on the window.
	Backend gpu.Backend
}

// MeshRenderer is the resource the renderer systems run on.
type MeshRenderer struct {
	Renderer *rtapp.Renderer

	ImageId  AssetId
	ShaderId AssetId
	MeshId   AssetId

	// Fatal is the error that stopped rendering, if any.
	Fatal error

	debug        bool
	log          Logger
	statsElapsed time.Duration
}

func (mod RendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, string(RendererMesh))
	log := app.Logger()
	if _, ok := Resource[MeshRenderer](app); ok {
		log.Errorf("Renderer module installed twice")
		panic("renderer module installed twice")
	}

	if _, ok := Resource[Time](app); !ok {
		TimeModule{}.Install(app, cmd)
	}
	ensureInput(app)
	server := ensureAssetServer(app)

	mr := &MeshRenderer{
		debug: mod.Debug || log.DebugEnabled(),
		log:   log,
	}
	opts, err := mod.loadAssets(server, mr)
	if err != nil {
		log.Errorf("Renderer assets: %v", err)
		panic(err)
	}
	opts.Log = log

	surface, err := mod.openSurface(app, log)
	if err != nil {
		log.Errorf("Surface init failed: %v", err)
		panic(err)
	}

	mr.Renderer, err = rtapp.New(surface, opts)
	if err != nil {
		surface.Release()
		log.Errorf("Renderer init failed: %v", err)
		panic(err)
	}

	cmd.AddResources(mr)

	app.UseSystem(
		System(rendererInputSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(rendererFrameSystem).
			InStage(Render).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(rendererTeardownSystem).
			InStage(Render).
			InState(OnEnter(StateExiting)),
	)
}

func (mod RendererModule) loadAssets(server *AssetServer, mr *MeshRenderer) (rtapp.Options, error) {
	var err error
	if mod.ImagePath != "" {
		if mr.ImageId, err = server.LoadImage(mod.ImagePath); err != nil {
			return rtapp.Options{}, err
		}
	} else {
		mr.ImageId = server.AddImage("happy_tree.png", assets.HappyTreePNG)
	}

	if mod.ShaderPath != "" {
		if mr.ShaderId, err = server.LoadShader(mod.ShaderPath); err != nil {
			return rtapp.Options{}, err
		}
	} else {
		mr.ShaderId = server.AddShader("shader.wgsl", shaders.MeshWGSL)
	}

	if mr.MeshId, err = server.AddMesh("pentagon", core.PentagonMesh()); err != nil {
		return rtapp.Options{}, err
	}

	img, _ := server.Image(mr.ImageId)
	shader, _ := server.Shader(mr.ShaderId)
	mesh, _ := server.Mesh(mr.MeshId)
	return rtapp.Options{
		Mesh:       &mesh.Mesh,
		Image:      img.Data,
		ImageLabel: img.Name,
		Shader:     shader.Source,
	}, nil
}

func (mod RendererModule) openSurface(app *App, log Logger) (*gpu.SurfaceContext, error) {
	if mod.Backend != nil {
		width, height := mod.Width, mod.Height
		if ws, ok := Resource[WindowState](app); ok {
			width, height = ws.FramebufferSize()
		}
		if width <= 0 || height <= 0 {
			width, height = defaultWindowWidth, defaultWindowHeight
		}
		return gpu.NewSurfaceContext(mod.Backend, width, height, log)
	}

	ws := ensureWindowResource(app, mod.Width, mod.Height, "")
	width, height := ws.FramebufferSize()
	return gpu.OpenSurfaceContext(ws, width, height, log)
}

// rendererInputSystem offers each queued event to the renderer first.
// Unconsumed close and Escape end the app; resizes reconfigure the surface.
func rendererInputSystem(mr *MeshRenderer, input *Input, cmd *Commands) {
	for _, ev := range input.Drain() {
		if mr.Renderer.HandleInput(ev) {
			continue
		}
		switch ev := ev.(type) {
		case rtapp.CloseRequested:
			mr.log.Infof("Close requested")
			cmd.ChangeState(StateExiting)
		case rtapp.KeyPressed:
			if ev.Key == KeyEscape {
				mr.log.Infof("Escape pressed")
				cmd.ChangeState(StateExiting)
			}
		case rtapp.Resized:
			mr.Renderer.Resize(ev.Width, ev.Height)
		case rtapp.ScaleFactorChanged:
			mr.Renderer.Resize(ev.Width, ev.Height)
		}
	}
}

func rendererFrameSystem(mr *MeshRenderer, t *Time, cmd *Commands) {
	if err := mr.Renderer.Frame(); err != nil {
		mr.Fatal = err
		mr.log.Errorf("Rendering stopped: %v", err)
		cmd.ChangeState(StateExiting)
		return
	}

	if !mr.debug {
		return
	}
	mr.statsElapsed += t.Dt
	if mr.statsElapsed >= time.Second {
		mr.statsElapsed = 0
		mr.log.Infof("FPS %.1f %s", mr.Renderer.FPS(), mr.Renderer.Profiler)
		mr.Renderer.Profiler.Reset()
	}
}

func rendererTeardownSystem(mr *MeshRenderer) {
	mr.Renderer.Release()
}
