package model

import "github.com/Carmen-Shannon/oxy-scene/engine/renderer"

// Mesh is one drawable group of a Model: an immutable vertex buffer and index buffer
// owned by the GPU boundary, plus the material it is drawn with.
type Mesh struct {
	// Name identifies the mesh, usually the OBJ group name or the asset file name.
	Name string

	// VertexBuffer holds the packed GPUVertex data.
	VertexBuffer renderer.Buffer

	// IndexBuffer holds the uint32 triangle indices.
	IndexBuffer renderer.Buffer

	// ElementCount is the number of indices to draw.
	ElementCount uint32

	// VertexCount is the number of vertices in VertexBuffer.
	VertexCount uint32

	// MaterialIndex indexes the owning Model's materials. Always valid or 0.
	MaterialIndex int

	// BoundingMin and BoundingMax are the axis-aligned bounds of the vertex positions.
	BoundingMin, BoundingMax [3]float32
}

// Release frees the mesh's GPU buffers. Safe to call more than once.
func (m *Mesh) Release() {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Release()
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Release()
		m.IndexBuffer = nil
	}
}
