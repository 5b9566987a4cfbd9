package pentagon

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is
// created and made available as a resource for the renderer and input.
// Install is idempotent: if a WindowState resource already exists, it is
// reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

const (
	defaultWindowWidth  = 1280
	defaultWindowHeight = 720
	defaultWindowTitle  = "Pentagon"
)

// NewPlatformWindow creates a module that provides a shared WindowState
// resource. Zero sizes and an empty title take the defaults.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = defaultWindowWidth
	}
	if height <= 0 {
		height = defaultWindowHeight
	}
	if title == "" {
		title = defaultWindowTitle
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	if m.Width <= 0 || m.Height <= 0 || m.Title == "" {
		m = *NewPlatformWindow(m.Width, m.Height, m.Title)
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	ws.bindInput(ensureInput(app))
	app.addResources(ws)
	app.Logger().Infof("Created window (%dx%d) '%s'", m.Width, m.Height, m.Title)

	app.UseSystem(
		System(windowEventsSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	if app.stateful {
		// Finale runs after Render, so the renderer lets go of the surface
		// before the window disappears.
		app.UseSystem(
			System(windowTeardownSystem).
				InStage(Finale).
				InState(OnEnter(app.finalState)),
		)
	}
}

func windowEventsSystem(ws *WindowState) {
	glfw.PollEvents()
}

func windowTeardownSystem(ws *WindowState) {
	ws.Destroy()
}
