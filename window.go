package pentagon

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	rtapp "github.com/gekko3d/pentagon/meshrt/rt/app"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu"
)

type WindowState struct {
	// glfw
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	destroyed    bool
}

var _ gpu.SurfaceTarget = (*WindowState)(nil)

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

func (s *WindowState) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(s.windowGlfw)
}

// FramebufferSize is the drawable size in physical pixels, which differs
// from the window size on scaled displays.
func (s *WindowState) FramebufferSize() (int, int) {
	return s.windowGlfw.GetFramebufferSize()
}

func (s *WindowState) Title() string {
	return s.windowTitle
}

// bindInput routes the window callbacks into input.
func (s *WindowState) bindInput(input *Input) {
	s.windowGlfw.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		input.Push(rtapp.CursorMoved{X: xpos, Y: ypos})
	})
	s.windowGlfw.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.WindowWidth, s.WindowHeight = width, height
		input.Push(rtapp.Resized{Width: width, Height: height})
	})
	s.windowGlfw.SetContentScaleCallback(func(w *glfw.Window, x, y float32) {
		width, height := w.GetFramebufferSize()
		input.Push(rtapp.ScaleFactorChanged{ScaleX: x, ScaleY: y, Width: width, Height: height})
	})
	s.windowGlfw.SetCloseCallback(func(w *glfw.Window) {
		input.Push(rtapp.CloseRequested{})
	})
	s.windowGlfw.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press {
			input.Push(rtapp.KeyPressed{Key: int(key)})
		}
	})
}

// Destroy closes the window and shuts glfw down. The surface built on the
// window must be released first.
func (s *WindowState) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.windowGlfw.Destroy()
	glfw.Terminate()
}
