package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
)

func newMemFS(t *testing.T, files map[string]string) hackpadfs.FS {
	t.Helper()
	fsys, err := mem.NewFS()
	if err != nil {
		t.Fatalf("failed to create mem fs: %v", err)
	}
	for name, content := range files {
		if dir := filepath.ToSlash(filepath.Dir(name)); dir != "." {
			if err := hackpadfs.MkdirAll(fsys, dir, 0o755); err != nil {
				t.Fatalf("failed to create %s: %v", dir, err)
			}
		}
		if err := hackpadfs.WriteFullFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return fsys
}

func TestFileFetcherLoadsFromFS(t *testing.T) {
	fsys := newMemFS(t, map[string]string{
		"cube.obj":             "v 0 0 0\n",
		"textures/diffuse.png": "\x89PNG",
	})
	f, err := NewFetcher(BackendTypeFile, WithFS(fsys))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.BackendType() != BackendTypeFile {
		t.Errorf("expected file backend, got %s", f.BackendType())
	}

	text, err := f.LoadString(context.Background(), "cube.obj")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if text != "v 0 0 0\n" {
		t.Errorf("unexpected content %q", text)
	}

	data, err := f.LoadBinary(context.Background(), "./textures/../textures/diffuse.png")
	if err != nil {
		t.Fatalf("LoadBinary failed: %v", err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFetcherConcurrentLoads(t *testing.T) {
	f, err := NewFetcher(BackendTypeFile, WithFS(newMemFS(t, map[string]string{"cube.obj": "v 0 0 0\n"})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var (
		wg       sync.WaitGroup
		failures atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := f.LoadString(context.Background(), "cube.obj")
			if err != nil || text != "v 0 0 0\n" {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := failures.Load(); n != 0 {
		t.Errorf("expected every concurrent load to succeed, got %d failures", n)
	}
}

func TestFileFetcherMissingFile(t *testing.T) {
	f, err := NewFetcher(BackendTypeFile, WithFS(newMemFS(t, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.LoadBinary(context.Background(), "missing.png")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if !fetchErr.NotFound() {
		t.Errorf("expected NotFound, got %v", fetchErr)
	}
	if fetchErr.Path != "missing.png" {
		t.Errorf("expected path missing.png, got %s", fetchErr.Path)
	}
}

func TestFileFetcherOSRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "models"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "models", "quad.obj"), []byte("o quad\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFetcherFromConfig(config.ResourceConfig{Backend: config.ResourceBackendFile, Root: root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := f.LoadString(context.Background(), "models/quad.obj")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if text != "o quad\n" {
		t.Errorf("unexpected content %q", text)
	}
}

func TestFetcherRejectsBadPaths(t *testing.T) {
	f, err := NewFetcher(BackendTypeFile, WithFS(newMemFS(t, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []string{"", "  ", "..", "../secret.txt", "a/../../b", "."} {
		t.Run(p, func(t *testing.T) {
			if _, err := f.LoadBinary(context.Background(), p); !errors.Is(err, ErrFetch) {
				t.Errorf("expected ErrFetch for %q, got %v", p, err)
			}
		})
	}
}

func TestFileFetcherRequiresRoot(t *testing.T) {
	if _, err := NewFetcher(BackendTypeFile); err == nil {
		t.Error("expected error without root or fs")
	}
}

func TestHTTPFetcherResolvesNamespace(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		if r.URL.Path == "/res/models/cube.obj" {
			_, _ = w.Write([]byte("o cube\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, err := NewFetcher(BackendTypeHTTP, WithOrigin(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := f.LoadString(context.Background(), "models/cube.obj")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if text != "o cube\n" {
		t.Errorf("unexpected content %q", text)
	}
	if p := gotPath.Load().(string); p != "/res/models/cube.obj" {
		t.Errorf("expected request path /res/models/cube.obj, got %s", p)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "broken.png") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, err := NewFetcherFromConfig(config.ResourceConfig{
		Backend:   config.ResourceBackendHTTP,
		Origin:    srv.URL + "/",
		Namespace: "assets",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		path     string
		status   int
		notFound bool
	}{
		{"missing.png", http.StatusNotFound, true},
		{"broken.png", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := f.LoadBinary(context.Background(), tt.path)
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if fetchErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, fetchErr.StatusCode)
			}
			if fetchErr.NotFound() != tt.notFound {
				t.Errorf("expected NotFound=%v", tt.notFound)
			}
			if fetchErr.Backend != BackendTypeHTTP {
				t.Errorf("expected http backend, got %s", fetchErr.Backend)
			}
		})
	}
}

func TestHTTPFetcherDoesNotCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	f, err := NewFetcher(BackendTypeHTTP, WithOrigin(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.LoadBinary(context.Background(), "a.txt"); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", hits.Load())
	}
}

func TestHTTPFetcherCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	f, err := NewFetcher(BackendTypeHTTP, WithOrigin(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.LoadBinary(ctx, "a.txt")
	if !errors.Is(err, ErrFetch) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled fetch error, got %v", err)
	}
}

func TestHTTPFetcherRequiresOrigin(t *testing.T) {
	if _, err := NewFetcher(BackendTypeHTTP); err == nil {
		t.Error("expected error without origin outside a browser")
	}
	if _, err := NewFetcher(BackendTypeHTTP, WithOrigin("not a url")); err == nil {
		t.Error("expected error for origin without scheme")
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := NewFetcher(FetcherBackendType(42)); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := NewFetcherFromConfig(config.ResourceConfig{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown config backend")
	}
}

func TestGoDeliversOneResult(t *testing.T) {
	f, err := NewFetcher(BackendTypeFile, WithFS(newMemFS(t, map[string]string{"a.txt": "hello"})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := <-Go(context.Background(), f, "a.txt")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if string(res.Data) != "hello" || res.Path != "a.txt" {
		t.Errorf("unexpected result %+v", res)
	}

	missing := Go(context.Background(), f, "b.txt")
	if res := <-missing; !errors.Is(res.Err, ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", res.Err)
	}
	if _, ok := <-missing; ok {
		t.Error("expected channel to be closed after the result")
	}
}
