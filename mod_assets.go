package pentagon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/gekko3d/pentagon/meshrt/rt/core"
)

type AssetId string

type ImageAsset struct {
	Name string
	Data []byte
}

type ShaderAsset struct {
	Name   string
	Source string
}

type MeshAsset struct {
	Name string
	Mesh core.Mesh
}

// AssetServer holds the encoded images, shader sources and meshes the
// renderer is built from.
type AssetServer struct {
	images  map[AssetId]ImageAsset
	shaders map[AssetId]ShaderAsset
	meshes  map[AssetId]MeshAsset
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		images:  make(map[AssetId]ImageAsset),
		shaders: make(map[AssetId]ShaderAsset),
		meshes:  make(map[AssetId]MeshAsset),
	}
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	ensureAssetServer(app)
}

func ensureAssetServer(app *App) *AssetServer {
	if server, ok := Resource[AssetServer](app); ok {
		return server
	}
	server := NewAssetServer()
	app.addResources(server)
	return server
}

// AddImage stores encoded image bytes. Decoding happens when the texture
// is built.
func (server *AssetServer) AddImage(name string, data []byte) AssetId {
	id := makeAssetId()
	server.images[id] = ImageAsset{Name: name, Data: data}
	return id
}

func (server *AssetServer) LoadImage(filename string) (AssetId, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	return server.AddImage(filepath.Base(filename), data), nil
}

func (server *AssetServer) AddShader(name string, source string) AssetId {
	id := makeAssetId()
	server.shaders[id] = ShaderAsset{Name: name, Source: source}
	return id
}

func (server *AssetServer) LoadShader(filename string) (AssetId, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("load shader: %w", err)
	}
	return server.AddShader(filepath.Base(filename), string(data)), nil
}

// AddMesh stores a copy of mesh after validating it.
func (server *AssetServer) AddMesh(name string, mesh core.Mesh) (AssetId, error) {
	if err := mesh.Validate(); err != nil {
		return "", fmt.Errorf("mesh %q: %w", name, err)
	}
	stored := core.Mesh{
		Vertices: append([]core.Vertex(nil), mesh.Vertices...),
		Indices:  append([]uint16(nil), mesh.Indices...),
	}
	id := makeAssetId()
	server.meshes[id] = MeshAsset{Name: name, Mesh: stored}
	return id, nil
}

func (server *AssetServer) Image(id AssetId) (ImageAsset, bool) {
	a, ok := server.images[id]
	return a, ok
}

func (server *AssetServer) Shader(id AssetId) (ShaderAsset, bool) {
	a, ok := server.shaders[id]
	return a, ok
}

func (server *AssetServer) Mesh(id AssetId) (MeshAsset, bool) {
	a, ok := server.meshes[id]
	return a, ok
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
