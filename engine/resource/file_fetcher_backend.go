package resource

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// fileFetcherBackend reads resources from a hackpadfs filesystem rooted at the resource directory.
type fileFetcherBackend struct {
	root string
	fsys hackpadfs.FS
}

var _ fetcherBackend = &fileFetcherBackend{}

// newFileFetcherBackend roots the backend either at the supplied filesystem or at an OS directory.
//
// Parameters:
//   - root: the OS resource directory, used only when fsys is nil
//   - fsys: a pre-rooted filesystem, or nil
//
// Returns:
//   - *fileFetcherBackend: the backend
//   - error: error if neither root nor fsys is usable
func newFileFetcherBackend(root string, fsys hackpadfs.FS) (*fileFetcherBackend, error) {
	if fsys != nil {
		return &fileFetcherBackend{root: "<fs>", fsys: fsys}, nil
	}
	if root == "" {
		return nil, fmt.Errorf("resource: file backend requires a root directory")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resource: resolving root %s: %w", root, err)
	}
	host := osfs.NewFS()
	rel, err := host.FromOSPath(abs)
	if err != nil {
		return nil, fmt.Errorf("resource: resolving root %s: %w", root, err)
	}
	sub, err := hackpadfs.Sub(host, rel)
	if err != nil {
		return nil, fmt.Errorf("resource: rooting filesystem at %s: %w", abs, err)
	}
	return &fileFetcherBackend{root: abs, fsys: sub}, nil
}

func (b *fileFetcherBackend) load(ctx context.Context, cleanPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Backend: BackendTypeFile, Path: cleanPath, Err: err}
	}

	data, err := hackpadfs.ReadFile(b.fsys, cleanPath)
	if err != nil {
		return nil, &FetchError{Backend: BackendTypeFile, Path: cleanPath, Err: err}
	}
	return data, nil
}

func (b *fileFetcherBackend) describe() string {
	return b.root
}
