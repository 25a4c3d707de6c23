package model

import (
	"encoding/binary"
	"math"
	"testing"
)

type fakeHandle struct {
	label    string
	released int
}

func (f *fakeHandle) Label() string     { return f.label }
func (f *fakeHandle) Size() uint64      { return 0 }
func (f *fakeHandle) Width() uint32     { return 1 }
func (f *fakeHandle) Height() uint32    { return 1 }
func (f *fakeHandle) IsNormalMap() bool { return false }
func (f *fakeHandle) Release()          { f.released++ }

func TestGPUVertexSize(t *testing.T) {
	var v GPUVertex
	if v.Size() != GPUVertexSize {
		t.Fatalf("expected %d bytes, got %d", GPUVertexSize, v.Size())
	}
	if len(v.Marshal()) != GPUVertexSize {
		t.Fatalf("expected marshal length %d, got %d", GPUVertexSize, len(v.Marshal()))
	}
}

func TestGPUVertexMarshalOrder(t *testing.T) {
	v := GPUVertex{
		Position:  [3]float32{1, 2, 3},
		TexCoord:  [2]float32{4, 5},
		Normal:    [3]float32{6, 7, 8},
		Tangent:   [3]float32{9, 10, 11},
		Bitangent: [3]float32{12, 13, 14},
	}
	buf := v.Marshal()
	for i := 0; i < 14; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != float32(i+1) {
			t.Errorf("field %d: expected %v, got %v", i, float32(i+1), got)
		}
	}

	all := MarshalVertices([]GPUVertex{v, v})
	if len(all) != 2*GPUVertexSize {
		t.Fatalf("expected %d bytes, got %d", 2*GPUVertexSize, len(all))
	}
	if string(all[GPUVertexSize:]) != string(buf) {
		t.Error("second vertex does not match single marshal")
	}
}

func TestGPUVertexLayoutMatchesStruct(t *testing.T) {
	layout := GPUVertexLayout()
	if layout.ArrayStride != GPUVertexSize {
		t.Errorf("expected stride %d, got %d", GPUVertexSize, layout.ArrayStride)
	}
	offsets := []uint64{0, 12, 20, 32, 44}
	if len(layout.Attributes) != len(offsets) {
		t.Fatalf("expected %d attributes, got %d", len(offsets), len(layout.Attributes))
	}
	for i, attr := range layout.Attributes {
		if attr.Offset != offsets[i] {
			t.Errorf("attribute %d: expected offset %d, got %d", i, offsets[i], attr.Offset)
		}
		if attr.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d: expected location %d, got %d", i, i, attr.ShaderLocation)
		}
	}
}

func TestMarshalIndices(t *testing.T) {
	buf := MarshalIndices([]uint32{0, 1, 70000})
	if len(buf) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(buf))
	}
	if binary.LittleEndian.Uint32(buf[8:]) != 70000 {
		t.Errorf("unexpected third index")
	}
	if MarshalIndices(nil) != nil || MarshalVertices(nil) != nil {
		t.Error("expected nil views for empty slices")
	}
}

func TestMarshalVerticesMatchesPerVertexMarshal(t *testing.T) {
	vertices := make([]GPUVertex, 3)
	for i := range vertices {
		f := float32(i * 100)
		vertices[i] = GPUVertex{
			Position:  [3]float32{f + 1, f + 2, f + 3},
			TexCoord:  [2]float32{f + 4, f + 5},
			Normal:    [3]float32{f + 6, f + 7, f + 8},
			Tangent:   [3]float32{f + 9, f + 10, f + 11},
			Bitangent: [3]float32{f + 12, f + 13, f + 14},
		}
	}

	view := MarshalVertices(vertices)
	if len(view) != len(vertices)*GPUVertexSize {
		t.Fatalf("expected %d bytes, got %d", len(vertices)*GPUVertexSize, len(view))
	}
	for i := range vertices {
		got := view[i*GPUVertexSize : (i+1)*GPUVertexSize]
		if string(got) != string(vertices[i].Marshal()) {
			t.Errorf("vertex %d: view does not match Marshal", i)
		}
	}
}

func TestNewModelClampsMaterialIndex(t *testing.T) {
	meshes := []*Mesh{
		{Name: "a", MaterialIndex: 1},
		{Name: "b", MaterialIndex: 5},
		{Name: "c", MaterialIndex: -1},
	}
	materials := []*Material{{Name: "m0"}, {Name: "m1"}}

	m := NewModel(WithName("cube"), WithMeshes(meshes), WithMaterials(materials))

	if m.Name() != "cube" {
		t.Errorf("expected name cube, got %s", m.Name())
	}
	want := []int{1, 0, 0}
	for i, mesh := range m.Meshes() {
		if mesh.MaterialIndex != want[i] {
			t.Errorf("mesh %s: expected material %d, got %d", mesh.Name, want[i], mesh.MaterialIndex)
		}
	}
	if got := m.MaterialFor(m.Meshes()[0]); got.Name != "m1" {
		t.Errorf("expected m1, got %s", got.Name)
	}
}

func TestMaterialForWithoutMaterials(t *testing.T) {
	m := NewModel(WithMeshes([]*Mesh{{Name: "a", MaterialIndex: 3}}))
	if m.Meshes()[0].MaterialIndex != 0 {
		t.Errorf("expected material index 0")
	}
	if m.MaterialFor(m.Meshes()[0]) != nil {
		t.Error("expected nil material")
	}
}

func TestModelReleaseFreesEveryHandle(t *testing.T) {
	vb, ib := &fakeHandle{label: "vb"}, &fakeHandle{label: "ib"}
	diffuse, normal := &fakeHandle{label: "d"}, &fakeHandle{label: "n"}

	m := NewModel(
		WithMeshes([]*Mesh{{Name: "a", VertexBuffer: vb, IndexBuffer: ib, VertexCount: 4}}),
		WithMaterials([]*Material{{Name: "m", DiffuseTexture: diffuse, NormalTexture: normal}}),
	)
	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.VertexCount())
	}

	m.Release()
	m.Release()

	for _, h := range []*fakeHandle{vb, ib, diffuse, normal} {
		if h.released != 1 {
			t.Errorf("%s: expected 1 release, got %d", h.label, h.released)
		}
	}
}

func TestForEachDrawable(t *testing.T) {
	vb, ib := &fakeHandle{label: "vb"}, &fakeHandle{label: "ib"}
	diffuse := &fakeHandle{label: "d"}
	m := NewModel(
		WithMeshes([]*Mesh{
			{Name: "a", VertexBuffer: vb, IndexBuffer: ib, MaterialIndex: 1},
			{Name: "b", VertexBuffer: vb, IndexBuffer: ib},
		}),
		WithMaterials([]*Material{{Name: "m0"}, {Name: "m1", DiffuseTexture: diffuse}}),
	)

	var got []string
	m.ForEachDrawable(func(mesh *Mesh, mat *Material) {
		got = append(got, mesh.Name+":"+mat.Name)
	})
	if len(got) != 2 || got[0] != "a:m1" || got[1] != "b:m0" {
		t.Errorf("unexpected drawables %v", got)
	}

	m.Release()
	m.ForEachDrawable(func(mesh *Mesh, _ *Material) {
		t.Errorf("released model yielded mesh %q", mesh.Name)
	})
}

func TestForEachDrawableWithoutMaterials(t *testing.T) {
	m := NewModel(WithMeshes([]*Mesh{{Name: "a"}}))
	calls := 0
	m.ForEachDrawable(func(_ *Mesh, mat *Material) {
		calls++
		if mat != nil {
			t.Errorf("expected a nil material, got %+v", mat)
		}
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
