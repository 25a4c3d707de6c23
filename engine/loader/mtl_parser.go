package loader

import (
	"fmt"
	"strings"
)

// ParseMTL parses a Wavefront material library.
//
// Recognized statements are newmtl, Ka, Kd, Ks, Ns, d, Tr, map_Kd and the normal map
// spellings map_Bump, map_bump, bump and norm. Texture statements take their last field
// as the path so options such as -bm 1.0 are skipped. Other statements are ignored.
//
// Parameters:
//   - file: the library path, used for error messages
//   - data: the MTL text
//
// Returns:
//   - []*ParsedMaterial: the materials in source order
//   - error: a *ParseError for malformed input
func ParseMTL(file string, data []byte) ([]*ParsedMaterial, error) {
	var (
		materials []*ParsedMaterial
		current   *ParsedMaterial
	)

	errorf := func(line int, format string, args ...any) error {
		return &ParseError{File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
	}

	color := func(line int, args [][]byte) ([3]float32, error) {
		var c [3]float32
		if len(args) == 0 {
			return c, errorf(line, "color needs at least 1 component")
		}
		if string(args[0]) == "spectral" || string(args[0]) == "xyz" {
			return c, errorf(line, "unsupported color form %q", args[0])
		}
		for i := range c {
			src := args[0]
			if i < len(args) {
				src = args[i]
			}
			f, ok := parseFloat32(src)
			if !ok {
				return c, errorf(line, "invalid number %q", src)
			}
			c[i] = f
		}
		return c, nil
	}

	scalar := func(line int, args [][]byte) (float32, error) {
		if len(args) == 0 {
			return 0, errorf(line, "missing value")
		}
		f, ok := parseFloat32(args[0])
		if !ok {
			return 0, errorf(line, "invalid number %q", args[0])
		}
		return f, nil
	}

	texture := func(line int, args [][]byte) (string, error) {
		if len(args) == 0 {
			return "", errorf(line, "texture statement without a path")
		}
		return strings.ReplaceAll(string(args[len(args)-1]), "\\", "/"), nil
	}

	err := eachStatement(data, func(line int, fields [][]byte) error {
		keyword, args := string(fields[0]), fields[1:]
		if keyword == "newmtl" {
			if len(args) == 0 {
				return errorf(line, "newmtl without a name")
			}
			current = &ParsedMaterial{Name: string(args[0]), Dissolve: 1}
			materials = append(materials, current)
			return nil
		}

		if current == nil {
			return errorf(line, "%q before newmtl", keyword)
		}

		var err error
		switch keyword {
		case "Ka":
			current.Ambient, err = color(line, args)
		case "Kd":
			current.Diffuse, err = color(line, args)
		case "Ks":
			current.Specular, err = color(line, args)
		case "Ns":
			current.Shininess, err = scalar(line, args)
		case "d":
			current.Dissolve, err = scalar(line, args)
		case "Tr":
			var tr float32
			tr, err = scalar(line, args)
			current.Dissolve = 1 - tr
		case "map_Kd":
			current.DiffuseTexture, err = texture(line, args)
		case "map_Bump", "map_bump", "bump", "norm":
			current.NormalTexture, err = texture(line, args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return materials, nil
}
