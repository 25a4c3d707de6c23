package loader

import (
	"errors"
	"testing"
)

const quadOBJ = `# unit quad
mtllib quad.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl brick
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const quadMTL = `newmtl brick
Ka 0.1 0.1 0.1
Kd 0.8 0.7 0.6
Ks 0.5
Ns 32
d 0.75
map_Kd textures/brick.png
map_Bump -bm 1.0 textures\brick_n.png
`

func TestParseOBJQuad(t *testing.T) {
	var requested []string
	resolve := func(name string) ([]*ParsedMaterial, error) {
		requested = append(requested, name)
		return ParseMTL(name, []byte(quadMTL))
	}

	asset, err := ParseOBJ("models/quad.obj", []byte(quadOBJ), resolve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requested) != 1 || requested[0] != "quad.mtl" {
		t.Errorf("expected quad.mtl to be resolved, got %v", requested)
	}
	if len(asset.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(asset.Meshes))
	}

	mesh := asset.Meshes[0]
	if mesh.Name != "Quad" {
		t.Errorf("expected mesh name Quad, got %s", mesh.Name)
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("expected 4 welded vertices, got %d", len(mesh.Vertices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(mesh.Indices) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(mesh.Indices))
	}
	for i := range want {
		if mesh.Indices[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], mesh.Indices[i])
		}
	}
	if mesh.Vertices[2].TexCoord != [2]float32{1, 1} {
		t.Errorf("unexpected texcoord %v", mesh.Vertices[2].TexCoord)
	}
	if mesh.Vertices[3].Normal != [3]float32{0, 0, 1} {
		t.Errorf("unexpected normal %v", mesh.Vertices[3].Normal)
	}
	if mesh.Vertices[1].Tangent != [3]float32{} {
		t.Errorf("expected zero tangent before BuildTangents")
	}
}

func TestParseMTL(t *testing.T) {
	mats, err := ParseMTL("quad.mtl", []byte(quadMTL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mats) != 1 {
		t.Fatalf("expected 1 material, got %d", len(mats))
	}
	m := mats[0]
	if m.Name != "brick" {
		t.Errorf("expected brick, got %s", m.Name)
	}
	if m.Diffuse != [3]float32{0.8, 0.7, 0.6} {
		t.Errorf("unexpected Kd %v", m.Diffuse)
	}
	if m.Specular != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("expected single Ks value to fill all channels, got %v", m.Specular)
	}
	if m.Shininess != 32 || m.Dissolve != 0.75 {
		t.Errorf("unexpected Ns/d %v/%v", m.Shininess, m.Dissolve)
	}
	if m.DiffuseTexture != "textures/brick.png" {
		t.Errorf("unexpected diffuse texture %s", m.DiffuseTexture)
	}
	if m.NormalTexture != "textures/brick_n.png" {
		t.Errorf("unexpected normal texture %s", m.NormalTexture)
	}
}

func TestParseMTLTransparencyAndDefaults(t *testing.T) {
	mats, err := ParseMTL("a.mtl", []byte("newmtl a\nillum 2\nnewmtl b\nTr 0.25\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mats[0].Dissolve != 1 {
		t.Errorf("expected default dissolve 1, got %v", mats[0].Dissolve)
	}
	if mats[1].Dissolve != 0.75 {
		t.Errorf("expected Tr 0.25 to give dissolve 0.75, got %v", mats[1].Dissolve)
	}
}

func TestParseOBJGroupsAndMaterials(t *testing.T) {
	src := `mtllib m.mtl
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
g first
usemtl red
f 1 2 3
usemtl blue
f 2 4 3
g empty
g last
usemtl missing
f -4 -3 -2
`
	resolve := func(name string) ([]*ParsedMaterial, error) {
		return []*ParsedMaterial{{Name: "red"}, {Name: "blue"}}, nil
	}

	asset, err := ParseOBJ("scene.obj", []byte(src), resolve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(asset.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(asset.Materials))
	}

	tests := []struct {
		name     string
		material int
	}{
		{"first", 0},
		{"first", 1},
		{"last", 0},
	}
	if len(asset.Meshes) != len(tests) {
		t.Fatalf("expected %d meshes, got %d", len(tests), len(asset.Meshes))
	}
	for i, tt := range tests {
		m := asset.Meshes[i]
		if m.Name != tt.name || m.MaterialIndex != tt.material {
			t.Errorf("mesh %d: expected %s/%d, got %s/%d", i, tt.name, tt.material, m.Name, m.MaterialIndex)
		}
		if len(m.Indices) != 3 || len(m.Vertices) != 3 {
			t.Errorf("mesh %d: expected one triangle, got %d indices and %d vertices", i, len(m.Indices), len(m.Vertices))
		}
	}
	if got := asset.Meshes[2].Vertices[0].Position; got != [3]float32{0, 0, 0} {
		t.Errorf("expected relative index -4 to resolve to the first vertex, got %v", got)
	}
}

func TestParseOBJFallbackName(t *testing.T) {
	asset, err := ParseOBJ("models/tri.obj", []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Meshes[0].Name != "tri.obj" {
		t.Errorf("expected file name as mesh name, got %s", asset.Meshes[0].Name)
	}
}

func TestParseOBJPentagonFan(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 2 1 0\nv 1 2 0\nv 0 1 0\nf 1 2 3 4 5\n"
	asset, err := ParseOBJ("p.obj", []byte(src), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}
	got := asset.Meshes[0].Indices
	if len(got) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"bad number", "v 0 x 0\n", 1},
		{"short vertex", "v 0 0\n", 1},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", 4},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"two vertex face", "v 0 0 0\nv 1 0 0\n\nf 1 2\n", 4},
		{"texcoord out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ("bad.obj", []byte(tt.src), nil)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Line != tt.line || perr.File != "bad.obj" {
				t.Errorf("expected bad.obj:%d, got %s:%d", tt.line, perr.File, perr.Line)
			}
			if !errors.Is(err, ErrParse) {
				t.Error("expected errors.Is(err, ErrParse)")
			}
		})
	}

	if _, err := ParseMTL("bad.mtl", []byte("Kd 1 1 1\n")); !errors.Is(err, ErrParse) {
		t.Errorf("expected ParseError for statement before newmtl, got %v", err)
	}
	if _, err := ParseMTL("bad.mtl", []byte("newmtl a\nNs high\n")); !errors.Is(err, ErrParse) {
		t.Errorf("expected ParseError for bad number, got %v", err)
	}
}

func TestParseOBJResolverError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParseOBJ("a.obj", []byte("mtllib a.mtl\n"), func(string) ([]*ParsedMaterial, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected resolver error to propagate, got %v", err)
	}
}
