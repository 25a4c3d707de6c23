// Package resource fetches asset bytes by relative path from either a local
// directory or an HTTP origin, behind one blocking, context-aware interface.
package resource

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"

	"github.com/hack-pad/hackpadfs"
	"go.uber.org/zap"
)

// FetcherBackendType identifies where a Fetcher reads resources from.
type FetcherBackendType int

const (
	// BackendTypeFile reads resources from a local directory.
	BackendTypeFile FetcherBackendType = iota
	// BackendTypeHTTP reads resources from an HTTP origin.
	BackendTypeHTTP
)

func (b FetcherBackendType) String() string {
	switch b {
	case BackendTypeFile:
		return "file"
	case BackendTypeHTTP:
		return "http"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// DefaultNamespace is the path segment appended to an HTTP origin.
const DefaultNamespace = "res"

// fetcher is the implementation of the Fetcher interface.
// Fields are immutable after NewFetcher.
type fetcher struct {
	backendType FetcherBackendType
	backend     fetcherBackend

	// file backend settings
	root string
	fsys hackpadfs.FS

	// http backend settings
	origin    string
	namespace string
	client    httpDoer
	timeout   time.Duration
}

// Fetcher defines the public-facing interface for loading resource bytes by relative path.
// Every call goes to the backend; nothing is cached.
type Fetcher interface {
	// LoadString fetches a resource and returns it as text.
	//
	// Parameters:
	//   - ctx: cancels the fetch when done
	//   - path: a slash-separated path relative to the resource root
	//
	// Returns:
	//   - string: the resource contents
	//   - error: a *FetchError if the resource cannot be fetched
	LoadString(ctx context.Context, path string) (string, error)

	// LoadBinary fetches a resource and returns its raw bytes.
	//
	// Parameters:
	//   - ctx: cancels the fetch when done
	//   - path: a slash-separated path relative to the resource root
	//
	// Returns:
	//   - []byte: the resource contents
	//   - error: a *FetchError if the resource cannot be fetched
	LoadBinary(ctx context.Context, path string) ([]byte, error)

	// BackendType returns the backend this Fetcher was created with.
	//
	// Returns:
	//   - FetcherBackendType: the backend type
	BackendType() FetcherBackendType
}

var _ Fetcher = &fetcher{}

// NewFetcher creates a new Fetcher for the given backend with the options applied.
//
// Parameters:
//   - backendType: the backend to read resources from
//   - options: a variadic list of FetcherBuilderOption functions to configure the Fetcher
//
// Returns:
//   - Fetcher: the configured Fetcher
//   - error: error if the backend cannot be set up (missing root or origin, unknown backend)
func NewFetcher(backendType FetcherBackendType, options ...FetcherBuilderOption) (Fetcher, error) {
	f := &fetcher{
		backendType: backendType,
		namespace:   DefaultNamespace,
	}

	for _, option := range options {
		option(f)
	}

	switch backendType {
	case BackendTypeFile:
		b, err := newFileFetcherBackend(f.root, f.fsys)
		if err != nil {
			return nil, err
		}
		f.backend = b
	case BackendTypeHTTP:
		b, err := newHTTPFetcherBackend(f.origin, f.namespace, f.client, f.timeout)
		if err != nil {
			return nil, err
		}
		f.backend = b
	default:
		return nil, fmt.Errorf("resource: unknown fetcher backend %s", backendType)
	}

	logger.Named("resource").Debug("fetcher ready",
		zap.Stringer("backend", backendType),
		zap.String("source", f.backend.describe()),
	)
	return f, nil
}

// NewFetcherFromConfig creates a Fetcher from the resources section of the viewer config.
//
// Parameters:
//   - cfg: the resource configuration
//   - options: extra options applied after the config-derived ones
//
// Returns:
//   - Fetcher: the configured Fetcher
//   - error: error if the config names an unknown backend or the backend cannot be set up
func NewFetcherFromConfig(cfg config.ResourceConfig, options ...FetcherBuilderOption) (Fetcher, error) {
	switch cfg.Backend {
	case config.ResourceBackendFile:
		opts := append([]FetcherBuilderOption{WithRoot(cfg.Root)}, options...)
		return NewFetcher(BackendTypeFile, opts...)
	case config.ResourceBackendHTTP:
		opts := []FetcherBuilderOption{WithOrigin(cfg.Origin), WithTimeout(cfg.Timeout)}
		if cfg.Namespace != "" {
			opts = append(opts, WithNamespace(cfg.Namespace))
		}
		return NewFetcher(BackendTypeHTTP, append(opts, options...)...)
	default:
		return nil, fmt.Errorf("resource: unknown backend %q", cfg.Backend)
	}
}

func (f *fetcher) LoadString(ctx context.Context, p string) (string, error) {
	data, err := f.LoadBinary(ctx, p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *fetcher) LoadBinary(ctx context.Context, p string) ([]byte, error) {
	cleaned, err := f.cleanPath(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Backend: f.backendType, Path: p, Err: err}
	}

	start := time.Now()
	data, err := f.backend.load(ctx, cleaned)
	if err != nil {
		logger.Named("resource").Debug("fetch failed",
			zap.Stringer("backend", f.backendType),
			zap.String("path", cleaned),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Named("resource").Debug("fetched",
		zap.Stringer("backend", f.backendType),
		zap.String("path", cleaned),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

func (f *fetcher) BackendType() FetcherBackendType {
	return f.backendType
}

// cleanPath normalises a caller path to a root-relative slash path and rejects
// anything that would escape the resource root.
func (f *fetcher) cleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", &FetchError{Backend: f.backendType, Path: p, Err: fmt.Errorf("empty resource path")}
	}
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &FetchError{Backend: f.backendType, Path: p, Err: fmt.Errorf("path escapes the resource root")}
	}
	if cleaned == "." || cleaned == "" {
		return "", &FetchError{Backend: f.backendType, Path: p, Err: fmt.Errorf("path names the resource root")}
	}
	return cleaned, nil
}
