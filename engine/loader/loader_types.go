package loader

import "github.com/Carmen-Shannon/oxy-scene/engine/model"

// ParsedAsset is the CPU-side result of parsing a model file, before any GPU upload.
type ParsedAsset struct {
	Meshes    []*ParsedMesh
	Materials []*ParsedMaterial
}

// ParsedMesh is one triangulated, single-indexed mesh group.
// Tangent and Bitangent of every vertex are zero until BuildTangents runs.
type ParsedMesh struct {
	Name          string
	Vertices      []model.GPUVertex
	Indices       []uint32
	MaterialIndex int
}

// ParsedMaterial holds one MTL material. Texture paths are relative to the MTL file.
type ParsedMaterial struct {
	Name           string
	Ambient        [3]float32
	Diffuse        [3]float32
	Specular       [3]float32
	Shininess      float32
	Dissolve       float32
	DiffuseTexture string
	NormalTexture  string
}

// MaterialResolver fetches and parses the material library named by an mtllib statement.
type MaterialResolver func(name string) ([]*ParsedMaterial, error)

// vertexKey identifies one welded vertex by its zero-based position, texcoord and
// normal indices. Absent texcoord or normal is -1.
type vertexKey struct {
	v, vt, vn int
}
