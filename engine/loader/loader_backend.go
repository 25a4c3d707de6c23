package loader

import (
	"context"
)

// loaderBackend defines the format-specific half of the Loader: it turns the bytes of a
// model file into a ParsedAsset. Concrete implementations (e.g., objLoaderBackend)
// fetch any companion files they need through the provided fetch function.
type loaderBackend interface {
	// Parse decodes a model file.
	//
	// Parameters:
	//   - ctx: cancels companion fetches
	//   - assetPath: the resource path of the model file
	//   - data: the raw model file
	//   - fetch: loads a companion file by resource path
	//
	// Returns:
	//   - *ParsedAsset: the parsed meshes and materials
	//   - error: error if the file or one of its companions is malformed or unavailable
	Parse(ctx context.Context, assetPath string, data []byte, fetch fetchFunc) (*ParsedAsset, error)

	// Extensions returns the lower-case file extensions, with leading dot, this backend handles.
	Extensions() []string
}

// fetchFunc loads a resource by path.
type fetchFunc func(ctx context.Context, path string) ([]byte, error)
