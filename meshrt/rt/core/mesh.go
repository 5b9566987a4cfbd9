package core

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an indexed triangle list. Indices reference Vertices.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// Validate checks that the mesh describes whole triangles and that every
// index points at an existing vertex.
func (m Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: no vertices", ErrInvalidMesh)
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a positive multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at position %d out of range (vertex count %d)", ErrInvalidMesh, idx, i, len(m.Vertices))
		}
	}
	return nil
}

func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

func (m Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexBytes returns the vertices as raw bytes for upload.
func (m Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	size := len(m.Vertices) * int(unsafe.Sizeof(Vertex{}))
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), size)
}

// IndexBytes returns the indices as raw bytes, padded to a 4 byte boundary.
// Buffers must be a multiple of 4 bytes; the padding is never drawn since
// IndexCount stays the logical count.
func (m Mesh) IndexBytes() []byte {
	indices := m.Indices
	if len(indices)%2 != 0 {
		indices = append(append([]uint16(nil), indices...), 0)
	}
	return wgpu.ToBytes(indices)
}

// PentagonMesh returns the textured pentagon: five vertices fanned into
// three triangles around vertex 4.
func PentagonMesh() Mesh {
	return Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-0.0868241, 0.49240386, 0.0}, TexCoords: mgl32.Vec2{0.4131759, 0.99240386}},
			{Position: mgl32.Vec3{-0.49513406, 0.06958647, 0.0}, TexCoords: mgl32.Vec2{0.0048659444, 0.56958647}},
			{Position: mgl32.Vec3{-0.21918549, -0.44939706, 0.0}, TexCoords: mgl32.Vec2{0.28081453, 0.05060294}},
			{Position: mgl32.Vec3{0.35966998, -0.3473291, 0.0}, TexCoords: mgl32.Vec2{0.85967, 0.1526709}},
			{Position: mgl32.Vec3{0.44147372, 0.2347359, 0.0}, TexCoords: mgl32.Vec2{0.9414737, 0.7347359}},
		},
		Indices: []uint16{
			0, 1, 4,
			1, 2, 4,
			2, 3, 4,
		},
	}
}
