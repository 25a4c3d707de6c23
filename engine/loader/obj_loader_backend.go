package loader

import (
	"context"
	"path"
)

// objLoaderBackendImpl is the implementation of objLoaderBackend.
type objLoaderBackendImpl struct{}

// objLoaderBackend is a loaderBackend implementation for Wavefront OBJ files with MTL
// material libraries.
type objLoaderBackend interface {
	loaderBackend
}

var _ objLoaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Returns:
//   - objLoaderBackend: the loader backend for OBJ files
func newOBJLoaderBackend() objLoaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Parse(ctx context.Context, assetPath string, data []byte, fetch fetchFunc) (*ParsedAsset, error) {
	dir := path.Dir(assetPath)
	resolve := func(name string) ([]*ParsedMaterial, error) {
		mtlPath := path.Join(dir, name)
		mtl, err := fetch(ctx, mtlPath)
		if err != nil {
			return nil, err
		}
		return ParseMTL(mtlPath, mtl)
	}
	return ParseOBJ(assetPath, data, resolve)
}

func (b *objLoaderBackendImpl) Extensions() []string {
	return []string{".obj"}
}
