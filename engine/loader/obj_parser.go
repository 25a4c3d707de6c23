package loader

import (
	"bytes"
	"fmt"
	"path"

	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/tdewolff/parse/v2/strconv"
	"go.uber.org/zap"
)

// objParser accumulates the global attribute pools of an OBJ file and the mesh groups
// built from its faces.
type objParser struct {
	file    string
	resolve MaterialResolver

	positions [][3]float32
	texCoords [][2]float32
	normals   [][3]float32

	materials     []*ParsedMaterial
	materialIndex map[string]int

	meshes  []*ParsedMesh
	current *meshGroup
}

// meshGroup is the mesh currently receiving faces.
type meshGroup struct {
	name          string
	materialIndex int
	vertices      []model.GPUVertex
	indices       []uint32
	weld          map[vertexKey]uint32
}

// ParseOBJ parses Wavefront OBJ text into triangulated, single-indexed mesh groups.
// Polygons are fan-triangulated and every distinct (v, vt, vn) triple in a group becomes
// one vertex. A new group starts at each o or g statement and whenever usemtl switches
// material. Groups without faces are dropped.
//
// Parameters:
//   - file: the asset path, used for error messages and as the fallback group name
//   - data: the OBJ text
//   - resolve: called once per mtllib name, may be nil to ignore material libraries
//
// Returns:
//   - *ParsedAsset: the parsed meshes and materials
//   - error: a *ParseError for malformed input, or the resolver's error
func ParseOBJ(file string, data []byte, resolve MaterialResolver) (*ParsedAsset, error) {
	p := &objParser{
		file:          file,
		resolve:       resolve,
		materialIndex: make(map[string]int),
	}
	p.current = p.newGroup(path.Base(file), 0)

	err := eachStatement(data, func(line int, fields [][]byte) error {
		return p.statement(line, fields)
	})
	if err != nil {
		return nil, err
	}
	p.flush()

	return &ParsedAsset{Meshes: p.meshes, Materials: p.materials}, nil
}

func (p *objParser) statement(line int, fields [][]byte) error {
	args := fields[1:]
	switch string(fields[0]) {
	case "v":
		if len(args) < 3 {
			return p.errorf(line, "vertex needs 3 components, got %d", len(args))
		}
		var pos [3]float32
		for i := range pos {
			f, err := p.float(line, args[i])
			if err != nil {
				return err
			}
			pos[i] = f
		}
		p.positions = append(p.positions, pos)
	case "vt":
		if len(args) < 1 {
			return p.errorf(line, "texture coordinate needs at least 1 component")
		}
		var uv [2]float32
		for i := 0; i < len(uv) && i < len(args); i++ {
			f, err := p.float(line, args[i])
			if err != nil {
				return err
			}
			uv[i] = f
		}
		p.texCoords = append(p.texCoords, uv)
	case "vn":
		if len(args) < 3 {
			return p.errorf(line, "normal needs 3 components, got %d", len(args))
		}
		var n [3]float32
		for i := range n {
			f, err := p.float(line, args[i])
			if err != nil {
				return err
			}
			n[i] = f
		}
		p.normals = append(p.normals, n)
	case "f":
		return p.face(line, args)
	case "o", "g":
		p.flush()
		name := path.Base(p.file)
		if len(args) > 0 {
			name = string(bytes.Join(args, []byte(" ")))
		}
		p.current = p.newGroup(name, p.current.materialIndex)
	case "usemtl":
		if len(args) == 0 {
			return p.errorf(line, "usemtl without a material name")
		}
		name := string(args[0])
		idx, ok := p.materialIndex[name]
		if !ok {
			logger.Named("loader").Warn("unknown material, using index 0",
				zap.String("file", p.file),
				zap.Int("line", line),
				zap.String("material", name),
			)
		}
		if idx != p.current.materialIndex && len(p.current.indices) > 0 {
			groupName := p.current.name
			p.flush()
			p.current = p.newGroup(groupName, idx)
		}
		p.current.materialIndex = idx
	case "mtllib":
		if p.resolve == nil {
			return nil
		}
		for _, lib := range args {
			mats, err := p.resolve(string(lib))
			if err != nil {
				return fmt.Errorf("resolving material library %s: %w", lib, err)
			}
			for _, m := range mats {
				if _, dup := p.materialIndex[m.Name]; !dup {
					p.materialIndex[m.Name] = len(p.materials)
				}
				p.materials = append(p.materials, m)
			}
		}
	case "s", "l", "p", "vp", "cstype", "deg", "curv", "surf", "mg":
		// Smoothing groups and free-form geometry carry nothing a triangle mesh uses.
	default:
		logger.Named("loader").Debug("skipping unsupported obj statement",
			zap.String("file", p.file),
			zap.Int("line", line),
			zap.ByteString("statement", fields[0]),
		)
	}
	return nil
}

// face welds the referenced vertices into the current group and fan-triangulates them.
func (p *objParser) face(line int, args [][]byte) error {
	if len(args) < 3 {
		return p.errorf(line, "face needs at least 3 vertices, got %d", len(args))
	}

	corners := make([]uint32, len(args))
	for i, ref := range args {
		key, err := p.vertexRef(line, ref)
		if err != nil {
			return err
		}
		corners[i] = p.current.vertex(key, p)
	}

	for i := 1; i+1 < len(corners); i++ {
		p.current.indices = append(p.current.indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// vertexRef decodes one face corner in any of the forms v, v/vt, v//vn or v/vt/vn.
func (p *objParser) vertexRef(line int, ref []byte) (vertexKey, error) {
	key := vertexKey{v: -1, vt: -1, vn: -1}
	parts := bytes.Split(ref, []byte("/"))
	if len(parts) > 3 {
		return key, p.errorf(line, "malformed face vertex %q", ref)
	}

	var err error
	if key.v, err = p.index(line, parts[0], len(p.positions), "vertex"); err != nil {
		return key, err
	}
	if len(parts) > 1 && len(parts[1]) > 0 {
		if key.vt, err = p.index(line, parts[1], len(p.texCoords), "texture coordinate"); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && len(parts[2]) > 0 {
		if key.vn, err = p.index(line, parts[2], len(p.normals), "normal"); err != nil {
			return key, err
		}
	}
	return key, nil
}

// index converts a one-based (or negative, relative) OBJ index into a zero-based one.
func (p *objParser) index(line int, b []byte, count int, kind string) (int, error) {
	if len(b) == 0 {
		return 0, p.errorf(line, "missing %s index", kind)
	}
	i, n := strconv.ParseInt(b)
	if n != len(b) {
		return 0, p.errorf(line, "invalid %s index %q", kind, b)
	}
	idx := int(i)
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += count
	default:
		return 0, p.errorf(line, "%s index 0 is not valid", kind)
	}
	if idx < 0 || idx >= count {
		return 0, p.errorf(line, "%s index %d out of range (have %d)", kind, i, count)
	}
	return idx, nil
}

func (p *objParser) float(line int, b []byte) (float32, error) {
	f, ok := parseFloat32(b)
	if !ok {
		return 0, p.errorf(line, "invalid number %q", b)
	}
	return f, nil
}

func (p *objParser) errorf(line int, format string, args ...any) error {
	return &ParseError{File: p.file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *objParser) newGroup(name string, materialIndex int) *meshGroup {
	return &meshGroup{
		name:          name,
		materialIndex: materialIndex,
		weld:          make(map[vertexKey]uint32),
	}
}

// flush moves the current group into the mesh list if it received any faces.
func (p *objParser) flush() {
	g := p.current
	if g == nil || len(g.indices) == 0 {
		return
	}
	p.meshes = append(p.meshes, &ParsedMesh{
		Name:          g.name,
		Vertices:      g.vertices,
		Indices:       g.indices,
		MaterialIndex: g.materialIndex,
	})
	p.current = p.newGroup(g.name, g.materialIndex)
}

// vertex returns the group-local index for key, appending a new vertex on first use.
func (g *meshGroup) vertex(key vertexKey, p *objParser) uint32 {
	if idx, ok := g.weld[key]; ok {
		return idx
	}
	v := model.GPUVertex{Position: p.positions[key.v]}
	if key.vt >= 0 {
		v.TexCoord = p.texCoords[key.vt]
	}
	if key.vn >= 0 {
		v.Normal = p.normals[key.vn]
	}
	idx := uint32(len(g.vertices))
	g.vertices = append(g.vertices, v)
	g.weld[key] = idx
	return idx
}

// eachStatement splits text into lines, strips comments and calls fn with the
// whitespace-separated fields of every non-empty line. Line numbers start at 1.
func eachStatement(data []byte, fn func(line int, fields [][]byte) error) error {
	line := 0
	for len(data) > 0 {
		line++
		var text []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			text, data = data[:i], data[i+1:]
		} else {
			text, data = data, nil
		}
		if i := bytes.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := bytes.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return nil
}

func parseFloat32(b []byte) (float32, bool) {
	f, n := strconv.ParseFloat(b)
	if n == 0 || n != len(b) {
		return 0, false
	}
	return float32(f), true
}
