package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-scene/common"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertexSize is the packed size of GPUVertex in bytes.
const GPUVertexSize = 56

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the vertex buffer layout returned by GPUVertexLayout exactly.
// Size: 56 bytes (tightly packed float32 fields, no padding).
type GPUVertex struct {
	Position  [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord  [2]float32 // offset 12: UV texture coordinate (8 bytes)
	Normal    [3]float32 // offset 20: vertex normal (12 bytes)
	Tangent   [3]float32 // offset 32: averaged tangent for normal mapping (12 bytes)
	Bitangent [3]float32 // offset 44: averaged bitangent for normal mapping (12 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	fields := [...]float32{
		g.Position[0], g.Position[1], g.Position[2],
		g.TexCoord[0], g.TexCoord[1],
		g.Normal[0], g.Normal[1], g.Normal[2],
		g.Tangent[0], g.Tangent[1], g.Tangent[2],
		g.Bitangent[0], g.Bitangent[1], g.Bitangent[2],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(f))
	}
	return buf
}

// MarshalVertices returns a byte view of a vertex slice for buffer creation.
// GPUVertex has no padding, so the view matches Marshal applied to every vertex.
// The view shares memory with vertices and is only valid until they change.
//
// Parameters:
//   - vertices: the vertices to upload
//
// Returns:
//   - []byte: len(vertices)*56 bytes, or nil for an empty slice
func MarshalVertices(vertices []GPUVertex) []byte {
	return common.SliceToBytes(vertices)
}

// MarshalIndices returns a byte view of a uint32 index slice for buffer creation.
// The view shares memory with indices.
//
// Parameters:
//   - indices: the triangle indices
//
// Returns:
//   - []byte: len(indices)*4 bytes, or nil for an empty slice
func MarshalIndices(indices []uint32) []byte {
	return common.SliceToBytes(indices)
}

// GPUVertexLayout returns the vertex buffer layout describing GPUVertex.
// Shader locations: 0 position, 1 tex coord, 2 normal, 3 tangent, 4 bitangent.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for a per-vertex buffer of GPUVertex
func GPUVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: GPUVertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 44, ShaderLocation: 4},
		},
	}
}
