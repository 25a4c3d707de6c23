package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// TangentOption configures BuildTangents.
type TangentOption func(*tangentSettings)

type tangentSettings struct {
	legacyBitangent bool
	degenerateCheck bool
}

// WithLegacyBitangent computes the bitangent as (e2*d2.u - e1*d2.u) * -r, which matches
// meshes baked by earlier versions of the viewer bit for bit.
//
// Returns:
//   - TangentOption: the option
func WithLegacyBitangent() TangentOption {
	return func(s *tangentSettings) {
		s.legacyBitangent = true
	}
}

// WithDegenerateCheck makes BuildTangents fail with a *DegenerateGeometryError on the
// first triangle whose UV determinant is zero or produces a non-finite basis.
//
// Returns:
//   - TangentOption: the option
func WithDegenerateCheck() TangentOption {
	return func(s *tangentSettings) {
		s.degenerateCheck = true
	}
}

// BuildTangents fills in the per-vertex tangent and bitangent used for normal mapping.
//
// For every triangle with edges e1 = p1-p0, e2 = p2-p0 and UV deltas d1 = uv1-uv0,
// d2 = uv2-uv0, with r = 1 / (d1.u*d2.v - d1.v*d2.u):
//
//	tangent   = (e1*d2.v - e2*d1.v) * r
//	bitangent = (e2*d1.u - e1*d2.u) * r
//
// The bitangent formula is a deliberate correction: WithLegacyBitangent restores the
// (e2*d2.u - e1*d2.u) * -r form, and only the legacy form matches earlier renders.
//
// Each triangle's vectors are added to its three vertices and every vertex is then
// divided by the number of triangles that touched it. Vertices referenced by no
// triangle keep a zero basis. Without WithDegenerateCheck a zero determinant yields
// non-finite values in the affected vertices.
//
// Parameters:
//   - vertices: the mesh vertices, modified in place
//   - indices: triangle list indices into vertices
//   - options: TangentOption values
//
// Returns:
//   - error: error if indices is not a triangle list over vertices, or a
//     *DegenerateGeometryError when the degenerate check is enabled
func BuildTangents(vertices []model.GPUVertex, indices []uint32, options ...TangentOption) error {
	var settings tangentSettings
	for _, option := range options {
		option(&settings)
	}

	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("index %d at position %d out of range (have %d vertices)", idx, i, len(vertices))
		}
	}

	tangents := make([]mgl32.Vec3, len(vertices))
	bitangents := make([]mgl32.Vec3, len(vertices))
	counts := make([]int, len(vertices))

	for t := 0; t < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		v0, v1, v2 := &vertices[i0], &vertices[i1], &vertices[i2]

		e1 := mgl32.Vec3(v1.Position).Sub(mgl32.Vec3(v0.Position))
		e2 := mgl32.Vec3(v2.Position).Sub(mgl32.Vec3(v0.Position))
		d1 := mgl32.Vec2(v1.TexCoord).Sub(mgl32.Vec2(v0.TexCoord))
		d2 := mgl32.Vec2(v2.TexCoord).Sub(mgl32.Vec2(v0.TexCoord))

		r := 1 / (d1.X()*d2.Y() - d1.Y()*d2.X())
		tangent := e1.Mul(d2.Y()).Sub(e2.Mul(d1.Y())).Mul(r)

		var bitangent mgl32.Vec3
		if settings.legacyBitangent {
			bitangent = e2.Mul(d2.X()).Sub(e1.Mul(d2.X())).Mul(-r)
		} else {
			bitangent = e2.Mul(d1.X()).Sub(e1.Mul(d2.X())).Mul(r)
		}

		if settings.degenerateCheck && !(common.IsFinite3(tangent) && common.IsFinite3(bitangent)) {
			return &DegenerateGeometryError{Triangle: t / 3, Indices: [3]uint32{i0, i1, i2}}
		}

		for _, i := range [3]uint32{i0, i1, i2} {
			tangents[i] = tangents[i].Add(tangent)
			bitangents[i] = bitangents[i].Add(bitangent)
			counts[i]++
		}
	}

	for i := range vertices {
		if counts[i] == 0 {
			continue
		}
		inv := 1 / float32(counts[i])
		vertices[i].Tangent = tangents[i].Mul(inv)
		vertices[i].Bitangent = bitangents[i].Mul(inv)
	}
	return nil
}
