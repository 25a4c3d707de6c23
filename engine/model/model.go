package model

import (
	"sync"
)

// model is the implementation of the Model interface.
type model struct {
	mu sync.RWMutex

	name      string
	meshes    []*Mesh
	materials []*Material
	released  bool
}

// Model defines the interface for a loaded 3D model.
// A Model owns its meshes and materials together with every GPU handle they reference.
// It is produced by the Loader after importing and processing a model file.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the meshes in source order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// Materials retrieves the materials in source order.
	//
	// Returns:
	//   - []*Material: the materials
	Materials() []*Material

	// MaterialFor returns the material a mesh is drawn with, or nil if the model has no materials.
	//
	// Parameters:
	//   - mesh: a mesh owned by this model
	//
	// Returns:
	//   - *Material: the mesh material or nil
	MaterialFor(mesh *Mesh) *Material

	// VertexCount returns the total vertex count across all meshes.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// ForEachDrawable calls fn for every mesh with its material (nil if the model has none)
	// while holding the model's read lock, so the handles fn reads cannot be released
	// underneath it. A released model yields nothing.
	//
	// Parameters:
	//   - fn: receives each mesh and its material; it must not call back into the model
	ForEachDrawable(fn func(mesh *Mesh, mat *Material))

	// Release frees every GPU buffer and texture owned by the model.
	// Remove the model from the engine first; a released model is skipped when drawing.
	// Safe to call more than once.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// Mesh material indices outside the material list are reset to 0.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	for _, mesh := range m.meshes {
		if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(m.materials) {
			mesh.MaterialIndex = 0
		}
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meshes
}

func (m *model) Materials() []*Material {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.materials
}

func (m *model) MaterialFor(mesh *Mesh) *Material {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mesh == nil || len(m.materials) == 0 {
		return nil
	}
	return m.materials[mesh.MaterialIndex]
}

func (m *model) VertexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, mesh := range m.meshes {
		total += int(mesh.VertexCount)
	}
	return total
}

func (m *model) ForEachDrawable(fn func(mesh *Mesh, mat *Material)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.released {
		return
	}
	for _, mesh := range m.meshes {
		var mat *Material
		if len(m.materials) > 0 {
			mat = m.materials[mesh.MaterialIndex]
		}
		fn(mesh, mat)
	}
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	for _, mesh := range m.meshes {
		mesh.Release()
	}
	for _, mat := range m.materials {
		mat.Release()
	}
	m.released = true
}
