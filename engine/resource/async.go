package resource

import "context"

// BinaryResult is the outcome of an asynchronous fetch.
type BinaryResult struct {
	Path string
	Data []byte
	Err  error
}

// Go fetches a resource on its own goroutine and delivers exactly one result on the returned channel.
//
// Parameters:
//   - ctx: cancels the fetch when done
//   - f: the fetcher to use
//   - path: the resource path
//
// Returns:
//   - <-chan BinaryResult: a buffered channel receiving the single result
func Go(ctx context.Context, f Fetcher, path string) <-chan BinaryResult {
	out := make(chan BinaryResult, 1)
	go func() {
		defer close(out)
		data, err := f.LoadBinary(ctx, path)
		out <- BinaryResult{Path: path, Data: data, Err: err}
	}()
	return out
}
