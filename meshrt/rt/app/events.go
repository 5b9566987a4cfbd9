package app

// Event is a window event offered to the renderer before default handling.
type Event interface {
	isEvent()
}

// CursorMoved is the pointer position in physical pixels.
type CursorMoved struct {
	X, Y float64
}

type Resized struct {
	Width, Height int
}

// ScaleFactorChanged carries the framebuffer size after the content scale
// changed.
type ScaleFactorChanged struct {
	ScaleX, ScaleY float32
	Width, Height  int
}

type CloseRequested struct{}

// KeyPressed is a key press; Key is the glfw key code.
type KeyPressed struct {
	Key int
}

func (CursorMoved) isEvent()        {}
func (Resized) isEvent()            {}
func (ScaleFactorChanged) isEvent() {}
func (CloseRequested) isEvent()     {}
func (KeyPressed) isEvent()         {}
