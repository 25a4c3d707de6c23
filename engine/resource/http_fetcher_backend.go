package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpDoer is the subset of *http.Client used by the HTTP backend.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpFetcherBackend reads resources with GET requests below origin/namespace/.
type httpFetcherBackend struct {
	base   *url.URL
	client httpDoer
}

var _ fetcherBackend = &httpFetcherBackend{}

// newHTTPFetcherBackend builds the base URL origin + "/" + namespace + "/".
// An empty origin is resolved from the browser page under js/wasm and is an error elsewhere.
//
// Parameters:
//   - origin: scheme://host[:port], or empty
//   - namespace: path segment below the origin
//   - client: the HTTP client, or nil for a default client with the given timeout
//   - timeout: request timeout for the default client
//
// Returns:
//   - *httpFetcherBackend: the backend
//   - error: error if no origin is available or it does not parse
func newHTTPFetcherBackend(origin, namespace string, client httpDoer, timeout time.Duration) (*httpFetcherBackend, error) {
	if origin == "" {
		o, err := pageOrigin()
		if err != nil {
			return nil, fmt.Errorf("resource: http backend requires an origin: %w", err)
		}
		origin = o
	}

	raw := strings.TrimRight(origin, "/") + "/"
	if ns := strings.Trim(namespace, "/"); ns != "" {
		raw += ns + "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("resource: invalid origin %q: %w", origin, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("resource: origin %q must include scheme and host", origin)
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &httpFetcherBackend{base: base, client: client}, nil
}

// resolve joins the cleaned path onto the base URL.
func (b *httpFetcherBackend) resolve(cleanPath string) *url.URL {
	return b.base.ResolveReference(&url.URL{Path: cleanPath})
}

func (b *httpFetcherBackend) load(ctx context.Context, cleanPath string) ([]byte, error) {
	target := b.resolve(cleanPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{Backend: BackendTypeHTTP, Path: cleanPath, Err: err}
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &FetchError{Backend: BackendTypeHTTP, Path: cleanPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Backend: BackendTypeHTTP, Path: cleanPath, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Backend: BackendTypeHTTP, Path: cleanPath, StatusCode: resp.StatusCode, Err: err}
	}
	return data, nil
}

func (b *httpFetcherBackend) describe() string {
	return b.base.String()
}
