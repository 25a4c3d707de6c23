package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrFetch is the sentinel matched by every FetchError via errors.Is.
var ErrFetch = errors.New("resource fetch failed")

// FetchError describes a failed resource fetch.
type FetchError struct {
	// Backend is the backend that attempted the fetch.
	Backend FetcherBackendType
	// Path is the resource path as requested by the caller.
	Path string
	// StatusCode is the HTTP status of a non-2xx response, or 0 when no response was received.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s (%s): HTTP %d: %v", e.Path, e.Backend, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s (%s): HTTP %d", e.Path, e.Backend, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s (%s): %v", e.Path, e.Backend, e.Err)
	default:
		return fmt.Sprintf("fetch %s (%s) failed", e.Path, e.Backend)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// NotFound reports whether the resource does not exist on the backend.
func (e *FetchError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || errors.Is(e.Err, fs.ErrNotExist)
}
