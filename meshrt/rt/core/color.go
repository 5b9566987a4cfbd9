package core

import "github.com/cogentcore/webgpu/wgpu"

// ClearColor is the background the render pass clears to. Channels are in [0, 1].
type ClearColor struct {
	R, G, B, A float64
}

var Black = ClearColor{R: 0, G: 0, B: 0, A: 1}

// ClearColorFromCursor maps a cursor position inside a width x height
// surface to a tint: x drives red, y drives green, blue and alpha stay at 1.
// Positions outside the surface, reported while dragging, are clamped.
func ClearColorFromCursor(x, y float64, width, height uint32) ClearColor {
	c := ClearColor{B: 1, A: 1}
	if width > 0 {
		c.R = clamp01(x / float64(width))
	}
	if height > 0 {
		c.G = clamp01(y / float64(height))
	}
	return c
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

func (c ClearColor) WGPU() wgpu.Color {
	return wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
