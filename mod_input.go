package pentagon

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	rtapp "github.com/gekko3d/pentagon/meshrt/rt/app"
)

const KeyEscape = int(glfw.KeyEscape)

type InputModule struct{}

// Input queues window events in arrival order until the renderer drains
// them, and tracks the latest pointer position and framebuffer size.
type Input struct {
	events []rtapp.Event

	MouseX, MouseY            float64
	WindowWidth, WindowHeight int
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	ensureInput(app)
}

func ensureInput(app *App) *Input {
	if input, ok := Resource[Input](app); ok {
		return input
	}
	input := &Input{}
	app.addResources(input)
	return input
}

func (in *Input) Push(ev rtapp.Event) {
	switch ev := ev.(type) {
	case rtapp.CursorMoved:
		in.MouseX, in.MouseY = ev.X, ev.Y
	case rtapp.Resized:
		in.WindowWidth, in.WindowHeight = ev.Width, ev.Height
	case rtapp.ScaleFactorChanged:
		in.WindowWidth, in.WindowHeight = ev.Width, ev.Height
	}
	in.events = append(in.events, ev)
}

// Drain returns the queued events and empties the queue.
func (in *Input) Drain() []rtapp.Event {
	events := in.events
	in.events = nil
	return events
}

func (in *Input) Pending() int {
	return len(in.events)
}
