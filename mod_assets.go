package lumen

import (
	"errors"
	"fmt"

	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type AssetId string

var ErrUnknownMesh = errors.New("unknown mesh asset")

// MeshShape names how a mesh asset was produced.
type MeshShape string

const (
	MeshShapeQuad   MeshShape = "quad"
	MeshShapeCube   MeshShape = "cube"
	MeshShapeSphere MeshShape = "sphere"
	MeshShapeCustom MeshShape = "custom"
)

// MeshSource is enough to rebuild a procedural mesh.
type MeshSource struct {
	Shape    MeshShape
	Size     mgl32.Vec3
	Segments int
}

type MeshAsset struct {
	version uint
	Source  MeshSource
	Mesh    *core.Mesh
}

type AssetServer struct {
	meshes map[AssetId]MeshAsset
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes: make(map[AssetId]MeshAsset),
	}
}

// CreateMesh registers caller-built geometry. The mesh is shared by every
// instance that references the returned id and must not be mutated after.
func (server *AssetServer) CreateMesh(mesh *core.Mesh) AssetId {
	return server.storeMesh(MeshSource{Shape: MeshShapeCustom}, mesh)
}

func (server *AssetServer) storeMesh(source MeshSource, mesh *core.Mesh) AssetId {
	id := makeAssetId()
	server.meshes[id] = MeshAsset{
		version: 0,
		Source:  source,
		Mesh:    mesh,
	}
	return id
}

// Mesh returns the geometry for id, or ErrUnknownMesh.
func (server *AssetServer) Mesh(id AssetId) (*core.Mesh, error) {
	asset, ok := server.meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, id)
	}
	return asset.Mesh, nil
}

func (server *AssetServer) MeshAsset(id AssetId) (MeshAsset, bool) {
	asset, ok := server.meshes[id]
	return asset, ok
}

// ReplaceMesh swaps the geometry behind an existing id.
func (server *AssetServer) ReplaceMesh(id AssetId, mesh *core.Mesh) error {
	asset, ok := server.meshes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMesh, id)
	}
	asset.version++
	asset.Mesh = mesh
	asset.Source = MeshSource{Shape: MeshShapeCustom}
	server.meshes[id] = asset
	return nil
}

func (server *AssetServer) MeshCount() int { return len(server.meshes) }

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
