package pentagon

// RendererName identifies a concrete renderer module.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererMesh RendererName = "meshrt"
)

// ensureWindowResource guarantees a single shared WindowState resource exists.
// If missing, it creates one with provided overrides or the defaults.
func ensureWindowResource(app *App, width, height int, title string) *WindowState {
	if ws, ok := Resource[WindowState](app); ok {
		return ws
	}
	NewPlatformWindow(width, height, title).Install(app, app.Commands())
	ws, _ := Resource[WindowState](app)
	return ws
}

// UseRenderer installs exactly one renderer module, enforcing exclusivity
// via ensureSingleRenderer.
// Usage:
//
//	app.UseRenderer(RendererMesh, RendererModule{})
func (app *App) UseRenderer(name RendererName, mod Module) *App {
	ensureSingleRenderer(app, string(name))
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// UseRendererWithWindow installs the renderer on a shared window with
// explicit size and title.
func (app *App) UseRendererWithWindow(name RendererName, mod Module, width, height int, title string) *App {
	ensureWindowResource(app, width, height, title)
	return app.UseRenderer(name, mod)
}
