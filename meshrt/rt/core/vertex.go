package core

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the packed per-vertex record shared by the vertex buffer and
// the vertex shader input (location 0 = position, location 1 = tex_coords).
type Vertex struct {
	Position  mgl32.Vec3
	TexCoords mgl32.Vec2
}

const (
	PositionLocation  uint32 = 0
	TexCoordsLocation uint32 = 1
)

// VertexLayout describes how a Vertex is laid out in a vertex buffer.
func VertexLayout() wgpu.VertexBufferLayout {
	var v Vertex
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(v)),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         uint64(unsafe.Offsetof(v.Position)),
				ShaderLocation: PositionLocation,
			},
			{
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         uint64(unsafe.Offsetof(v.TexCoords)),
				ShaderLocation: TexCoordsLocation,
			},
		},
	}
}
