package loader

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"path"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
)

type fakeHandle struct {
	alloc    *fakeAllocator
	label    string
	size     uint64
	normal   bool
	data     []byte
	released bool
}

func (h *fakeHandle) Label() string     { return h.label }
func (h *fakeHandle) Size() uint64      { return h.size }
func (h *fakeHandle) Width() uint32     { return 1 }
func (h *fakeHandle) Height() uint32    { return 1 }
func (h *fakeHandle) IsNormalMap() bool { return h.normal }
func (h *fakeHandle) Release() {
	h.alloc.mu.Lock()
	defer h.alloc.mu.Unlock()
	if !h.released {
		h.released = true
		h.alloc.live--
	}
}

// fakeAllocator records every allocation and can fail the n-th one.
type fakeAllocator struct {
	mu       sync.Mutex
	handles  []*fakeHandle
	live     int
	failAt   int
	attempts int
}

func (a *fakeAllocator) alloc(label string, data []byte, normal bool) (*fakeHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts++
	if a.failAt > 0 && a.attempts == a.failAt {
		return nil, &renderer.AllocationError{Kind: renderer.AllocationKindVertexBuffer, Label: label, Err: errors.New("out of memory")}
	}
	h := &fakeHandle{alloc: a, label: label, size: uint64(len(data)), normal: normal, data: data}
	a.handles = append(a.handles, h)
	a.live++
	return h, nil
}

func (a *fakeAllocator) CreateVertexBuffer(label string, data []byte) (renderer.Buffer, error) {
	h, err := a.alloc(label, data, false)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (a *fakeAllocator) CreateIndexBuffer(label string, data []byte) (renderer.Buffer, error) {
	h, err := a.alloc(label, data, false)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (a *fakeAllocator) CreateUniformBuffer(label string, data []byte) (renderer.Buffer, error) {
	h, err := a.alloc(label, data, false)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (a *fakeAllocator) WriteBuffer(buf renderer.Buffer, data []byte) error {
	return nil
}

func (a *fakeAllocator) CreateTexture(data []byte, label string, isNormalMap bool) (renderer.Texture, error) {
	h, err := a.alloc(label, data, isNormalMap)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (a *fakeAllocator) liveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (a *fakeAllocator) labels() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.handles))
	for i, h := range a.handles {
		out[i] = h.label
	}
	return out
}

func newTestFetcher(t *testing.T, files map[string]string) resource.Fetcher {
	t.Helper()
	fsys, err := mem.NewFS()
	if err != nil {
		t.Fatalf("failed to create mem fs: %v", err)
	}
	for name, content := range files {
		if dir := path.Dir(name); dir != "." {
			if err := hackpadfs.MkdirAll(fsys, dir, 0o755); err != nil {
				t.Fatalf("failed to create %s: %v", dir, err)
			}
		}
		if err := hackpadfs.WriteFullFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	f, err := resource.NewFetcher(resource.BackendTypeFile, resource.WithFS(fsys))
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	return f
}

func quadFiles() map[string]string {
	return map[string]string{
		"models/quad.obj":             quadOBJ,
		"models/quad.mtl":             quadMTL,
		"models/textures/brick.png":   "diffuse-bytes",
		"models/textures/brick_n.png": "normal-bytes",
	}
}

func newTestLoader(t *testing.T, files map[string]string, alloc *fakeAllocator, options ...LoaderBuilderOption) Loader {
	t.Helper()
	opts := append([]LoaderBuilderOption{WithFetcher(newTestFetcher(t, files)), WithRenderer(alloc)}, options...)
	l, err := NewLoader(opts...)
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	return l
}

func TestLoadQuadModel(t *testing.T) {
	alloc := &fakeAllocator{}
	l := newTestLoader(t, quadFiles(), alloc)

	m, err := l.Load(context.Background(), "models/quad.obj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLabels := []string{
		"models/textures/brick.png",
		"models/textures/brick_n.png",
		"models/quad.obj Quad vertex buffer",
		"models/quad.obj Quad index buffer",
	}
	labels := alloc.labels()
	if len(labels) != len(wantLabels) {
		t.Fatalf("expected %d allocations, got %v", len(wantLabels), labels)
	}
	for i := range wantLabels {
		if labels[i] != wantLabels[i] {
			t.Errorf("allocation %d: expected %q, got %q", i, wantLabels[i], labels[i])
		}
	}
	if !alloc.handles[1].normal || alloc.handles[0].normal {
		t.Errorf("expected only the bump map to be a normal map")
	}

	if len(m.Meshes()) != 1 || len(m.Materials()) != 1 {
		t.Fatalf("expected 1 mesh and 1 material, got %d/%d", len(m.Meshes()), len(m.Materials()))
	}
	mesh := m.Meshes()[0]
	if mesh.ElementCount != 6 || mesh.VertexCount != 4 {
		t.Errorf("expected 6 indices over 4 vertices, got %d/%d", mesh.ElementCount, mesh.VertexCount)
	}
	if mesh.BoundingMin != [3]float32{0, 0, 0} || mesh.BoundingMax != [3]float32{1, 1, 0} {
		t.Errorf("unexpected bounds %v %v", mesh.BoundingMin, mesh.BoundingMax)
	}
	if m.MaterialFor(mesh).Name != "brick" {
		t.Errorf("expected brick material")
	}
	if m.Materials()[0].Shininess != 32 {
		t.Errorf("expected MTL properties to be carried")
	}

	// The uploaded vertex buffer carries the computed tangent of vertex 0.
	vb := alloc.handles[2].data
	if len(vb) != 4*model.GPUVertexSize {
		t.Fatalf("expected %d vertex bytes, got %d", 4*model.GPUVertexSize, len(vb))
	}
	tangentX := math.Float32frombits(binary.LittleEndian.Uint32(vb[32:]))
	if math.Abs(float64(tangentX)-1) > 1e-5 {
		t.Errorf("expected uploaded tangent.x = 1, got %v", tangentX)
	}

	m.Release()
	if alloc.liveCount() != 0 {
		t.Errorf("expected every handle released, %d live", alloc.liveCount())
	}
}

func TestLoadMissingDiffuseTextureReleasesEverything(t *testing.T) {
	files := quadFiles()
	delete(files, "models/textures/brick.png")

	alloc := &fakeAllocator{}
	l := newTestLoader(t, files, alloc)

	m, err := l.Load(context.Background(), "models/quad.obj")
	if m != nil {
		t.Fatal("expected no model")
	}
	var ferr *resource.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if ferr.Path != "models/textures/brick.png" || !ferr.NotFound() {
		t.Errorf("unexpected fetch error %+v", ferr)
	}
	if alloc.liveCount() != 0 {
		t.Errorf("expected no live handles, got %d", alloc.liveCount())
	}
}

func TestLoadAllocationFailureReleasesEverything(t *testing.T) {
	// Fail the index buffer: both textures and the vertex buffer already exist.
	alloc := &fakeAllocator{failAt: 4}
	l := newTestLoader(t, quadFiles(), alloc)

	_, err := l.Load(context.Background(), "models/quad.obj")
	if !errors.Is(err, renderer.ErrGPUAllocation) {
		t.Fatalf("expected ErrGPUAllocation, got %v", err)
	}
	if len(alloc.handles) != 3 {
		t.Errorf("expected 3 successful allocations, got %d", len(alloc.handles))
	}
	if alloc.liveCount() != 0 {
		t.Errorf("expected no live handles, got %d", alloc.liveCount())
	}
}

func TestLoadMaterialWithoutTexture(t *testing.T) {
	files := quadFiles()
	files["models/quad.mtl"] = "newmtl brick\nmap_Kd textures/brick.png\n"

	alloc := &fakeAllocator{}
	l := newTestLoader(t, files, alloc)

	_, err := l.Load(context.Background(), "models/quad.obj")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for missing normal map, got %v", err)
	}
	if alloc.liveCount() != 0 {
		t.Errorf("expected no live handles, got %d", alloc.liveCount())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		files map[string]string
		is    error
	}{
		{"missing model", "models/none.obj", map[string]string{}, resource.ErrFetch},
		{"malformed model", "bad.obj", map[string]string{"bad.obj": "f 1 2 3\n"}, ErrParse},
		{"missing mtl", "a.obj", map[string]string{"a.obj": "mtllib a.mtl\n"}, resource.ErrFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(t, tt.files, &fakeAllocator{})
			if _, err := l.Load(context.Background(), tt.path); !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}

	l := newTestLoader(t, nil, &fakeAllocator{})
	if _, err := l.Load(context.Background(), "scene.fbx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadDegenerateCheckFromConfig(t *testing.T) {
	files := map[string]string{
		"flat.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2/1 3/1\n",
	}
	alloc := &fakeAllocator{}
	l, err := NewLoaderFromConfig(config.LoaderConfig{Workers: 1, DegenerateCheck: true},
		WithFetcher(newTestFetcher(t, files)),
		WithRenderer(alloc),
	)
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}

	if _, err := l.Load(context.Background(), "flat.obj"); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestNewLoaderRequiresDependencies(t *testing.T) {
	if _, err := NewLoader(WithRenderer(&fakeAllocator{})); err == nil {
		t.Error("expected error without fetcher")
	}
	if _, err := NewLoader(WithFetcher(newTestFetcher(t, nil))); err == nil {
		t.Error("expected error without renderer")
	}
}

func TestLoadAsync(t *testing.T) {
	alloc := &fakeAllocator{}
	l := newTestLoader(t, quadFiles(), alloc, WithWorkers(2))

	var (
		mu     sync.Mutex
		models []model.Model
		errs   []error
	)
	for _, p := range []string{"models/quad.obj", "models/quad.obj", "models/missing.obj"} {
		l.LoadAsync(context.Background(), p, func(m model.Model, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			models = append(models, m)
		})
	}
	l.Wait()

	if len(models) != 2 || len(errs) != 1 {
		t.Fatalf("expected 2 models and 1 error, got %d/%d", len(models), len(errs))
	}
	for _, m := range models {
		m.Release()
	}
	if alloc.liveCount() != 0 {
		t.Errorf("expected no live handles, got %d", alloc.liveCount())
	}
}

func TestCloseDrainsQueueAndRejectsNewLoads(t *testing.T) {
	alloc := &fakeAllocator{}
	l := newTestLoader(t, quadFiles(), alloc, WithWorkers(1))

	var (
		mu        sync.Mutex
		delivered int
	)
	for range 3 {
		l.LoadAsync(context.Background(), "models/quad.obj", func(m model.Model, err error) {
			mu.Lock()
			defer mu.Unlock()
			delivered++
			if m != nil {
				m.Release()
			}
		})
	}
	l.Close()

	mu.Lock()
	if delivered != 3 {
		t.Errorf("expected Close to wait for 3 callbacks, got %d", delivered)
	}
	mu.Unlock()

	var lateErr error
	l.LoadAsync(context.Background(), "models/quad.obj", func(_ model.Model, err error) { lateErr = err })
	if !errors.Is(lateErr, ErrLoaderClosed) {
		t.Errorf("expected ErrLoaderClosed after Close, got %v", lateErr)
	}
	l.Close()
	l.Wait()

	if alloc.liveCount() != 0 {
		t.Errorf("expected no live handles, got %d", alloc.liveCount())
	}
}

func TestCloseWithoutAsyncLoads(t *testing.T) {
	l := newTestLoader(t, quadFiles(), &fakeAllocator{})
	l.Close()
	if l.(*loader).pool != nil {
		t.Error("expected no worker pool to be created")
	}
}
