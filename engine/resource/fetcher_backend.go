package resource

import "context"

// fetcherBackend defines the transport-specific half of a Fetcher.
// Implementations receive paths that are already cleaned and confined to the resource root.
type fetcherBackend interface {
	// load returns the raw bytes stored at the cleaned resource path.
	//
	// Parameters:
	//   - ctx: cancels the fetch when done
	//   - cleanPath: a slash-separated path relative to the resource root
	//
	// Returns:
	//   - []byte: the resource contents
	//   - error: a *FetchError if the resource cannot be read
	load(ctx context.Context, cleanPath string) ([]byte, error)

	// describe returns a short human-readable description of where resources come from.
	describe() string
}
