package main

import (
	"errors"
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/pentagon"
)

func init() {
	// glfw and the surface must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	cfg, err := pentagon.ParseFlags("meshrt", args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		pentagon.NewDefaultLogger("meshrt", false).Errorf("%v", err)
		return 2
	}

	logger := pentagon.NewDefaultLogger(cfg.LogPrefix, cfg.Debug)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Fatal: %v", r)
			code = 1
		}
	}()

	app := pentagon.NewAppBuilder().
		UseStates(pentagon.StateRunning, pentagon.StateExiting).
		UseModule(
			pentagon.LoggingModule{Logger: logger},
			pentagon.TimeModule{},
			pentagon.InputModule{},
			pentagon.AssetServerModule{},
			pentagon.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			pentagon.RendererModule{
				ImagePath:  cfg.ImagePath,
				ShaderPath: cfg.ShaderPath,
				Debug:      cfg.Debug,
			},
		).
		Build()

	app.Run()

	if mr, ok := pentagon.Resource[pentagon.MeshRenderer](app); ok && mr.Fatal != nil {
		return 1
	}
	return 0
}
