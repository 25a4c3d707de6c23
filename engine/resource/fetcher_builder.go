package resource

import (
	"time"

	"github.com/hack-pad/hackpadfs"
)

// FetcherBuilderOption is a functional option for configuring a Fetcher via NewFetcher.
type FetcherBuilderOption func(*fetcher)

// WithRoot is an option builder that sets the local resource directory used by the file backend.
//
// Parameters:
//   - root: an OS path, absolute or relative to the working directory
//
// Returns:
//   - FetcherBuilderOption: a function that applies the root option to a fetcher
func WithRoot(root string) FetcherBuilderOption {
	return func(f *fetcher) {
		f.root = root
	}
}

// WithFS is an option builder that replaces the file backend's filesystem.
// The filesystem is treated as already rooted at the resource directory, so WithRoot is ignored.
//
// Parameters:
//   - fsys: any hackpadfs filesystem (e.g. mem.FS in tests)
//
// Returns:
//   - FetcherBuilderOption: a function that applies the filesystem option to a fetcher
func WithFS(fsys hackpadfs.FS) FetcherBuilderOption {
	return func(f *fetcher) {
		f.fsys = fsys
	}
}

// WithOrigin is an option builder that sets the scheme://host[:port] used by the HTTP backend.
// In a browser build an empty origin falls back to the page origin.
//
// Parameters:
//   - origin: the HTTP origin
//
// Returns:
//   - FetcherBuilderOption: a function that applies the origin option to a fetcher
func WithOrigin(origin string) FetcherBuilderOption {
	return func(f *fetcher) {
		f.origin = origin
	}
}

// WithNamespace is an option builder that sets the path segment appended to the origin.
//
// Parameters:
//   - namespace: the segment, "res" by default
//
// Returns:
//   - FetcherBuilderOption: a function that applies the namespace option to a fetcher
func WithNamespace(namespace string) FetcherBuilderOption {
	return func(f *fetcher) {
		f.namespace = namespace
	}
}

// WithHTTPClient is an option builder that sets the client used by the HTTP backend.
//
// Parameters:
//   - client: anything with a Do method, usually *http.Client
//
// Returns:
//   - FetcherBuilderOption: a function that applies the client option to a fetcher
func WithHTTPClient(client httpDoer) FetcherBuilderOption {
	return func(f *fetcher) {
		f.client = client
	}
}

// WithTimeout is an option builder that sets the per-request timeout of the default HTTP client.
// Zero disables the timeout. Ignored when WithHTTPClient is used.
//
// Parameters:
//   - timeout: the request timeout
//
// Returns:
//   - FetcherBuilderOption: a function that applies the timeout option to a fetcher
func WithTimeout(timeout time.Duration) FetcherBuilderOption {
	return func(f *fetcher) {
		f.timeout = timeout
	}
}
