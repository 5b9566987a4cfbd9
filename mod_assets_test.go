package pentagon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/pentagon/meshrt/rt/core"
)

func TestAssetServer_images(t *testing.T) {
	server := NewAssetServer()

	id := server.AddImage("tree.png", []byte{1, 2, 3})
	_, err := uuid.Parse(string(id))
	assert.NoError(t, err, "asset ids are uuids")

	img, ok := server.Image(id)
	require.True(t, ok)
	assert.Equal(t, "tree.png", img.Name)
	assert.Equal(t, []byte{1, 2, 3}, img.Data)

	other := server.AddImage("tree.png", []byte{4})
	assert.NotEqual(t, id, other)

	_, ok = server.Image("missing")
	assert.False(t, ok)
}

func TestAssetServer_loadFromDisk(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "bark.png")
	shaderPath := filepath.Join(dir, "custom.wgsl")
	require.NoError(t, os.WriteFile(imgPath, []byte("png bytes"), 0o644))
	require.NoError(t, os.WriteFile(shaderPath, []byte("fn vs_main() {}"), 0o644))

	server := NewAssetServer()
	imgId, err := server.LoadImage(imgPath)
	require.NoError(t, err)
	img, _ := server.Image(imgId)
	assert.Equal(t, "bark.png", img.Name)
	assert.Equal(t, []byte("png bytes"), img.Data)

	shaderId, err := server.LoadShader(shaderPath)
	require.NoError(t, err)
	shader, _ := server.Shader(shaderId)
	assert.Equal(t, "custom.wgsl", shader.Name)
	assert.Equal(t, "fn vs_main() {}", shader.Source)

	_, err = server.LoadImage(filepath.Join(dir, "nope.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = server.LoadShader(filepath.Join(dir, "nope.wgsl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAssetServer_meshes(t *testing.T) {
	server := NewAssetServer()

	pentagon := core.PentagonMesh()
	id, err := server.AddMesh("pentagon", pentagon)
	require.NoError(t, err)

	pentagon.Indices[0] = 4
	stored, ok := server.Mesh(id)
	require.True(t, ok)
	assert.Equal(t, uint16(0), stored.Mesh.Indices[0], "stored mesh is a copy")
	assert.Equal(t, 3, stored.Mesh.TriangleCount())

	_, err = server.AddMesh("broken", core.Mesh{Vertices: pentagon.Vertices, Indices: []uint16{0, 1, 9}})
	assert.ErrorIs(t, err, core.ErrInvalidMesh)
}

func TestAssetServerModule_installsOnce(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}, AssetServerModule{}).Build()
	server, ok := Resource[AssetServer](app)
	require.True(t, ok)
	assert.Same(t, server, ensureAssetServer(app))
}
