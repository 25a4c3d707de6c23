package loader

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFetcher is an option builder that sets the Fetcher used for model files,
// material libraries and textures.
//
// Parameters:
//   - f: the resource fetcher
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f resource.Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		l.fetcher = f
	}
}

// WithRenderer is an option builder that sets the GPU allocator used by the Loader.
// Any renderer.Renderer satisfies it.
//
// Parameters:
//   - r: the allocator
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Allocator) LoaderBuilderOption {
	return func(l *loader) {
		l.allocator = r
	}
}

// WithTangentOptions is an option builder that sets the options passed to BuildTangents
// for every mesh.
//
// Parameters:
//   - options: the tangent options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the tangent options to a loader
func WithTangentOptions(options ...TangentOption) LoaderBuilderOption {
	return func(l *loader) {
		l.tangentOptions = options
	}
}

// WithWorkers is an option builder that sets how many LoadAsync calls may run at once.
//
// Parameters:
//   - n: the worker count, values below 1 mean 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}
