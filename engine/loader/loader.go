package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// loader is the implementation of the Loader interface.
type loader struct {
	fetcher   resource.Fetcher
	allocator renderer.Allocator

	// backends maps a lower-case file extension to the backend that parses it.
	backends map[string]loaderBackend

	tangentOptions []TangentOption

	workers int

	// poolMu guards pool and closed; pending is incremented under it.
	poolMu  sync.Mutex
	pool    worker.DynamicWorkerPool
	closed  bool
	pending sync.WaitGroup
	taskID  atomic.Int64
}

// Loader turns a model file on the resource root into a GPU-resident model.Model.
//
// A load fetches the model file, parses it with the backend matching its extension,
// uploads every material texture, builds the tangent basis of every mesh and uploads
// its vertex and index buffers. A load either returns a complete Model or releases every
// GPU handle it created and returns an error. Nothing is cached: loading the same path
// twice fetches and uploads it twice.
type Loader interface {
	// Load imports a model file synchronously.
	//
	// Parameters:
	//   - ctx: cancels pending fetches
	//   - path: the resource path of the model file, e.g. "models/cube.obj"
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: a wrapped *resource.FetchError, *ParseError, *renderer.AllocationError or
	//     *DegenerateGeometryError
	Load(ctx context.Context, path string) (model.Model, error)

	// LoadAsync queues a load on the loader's worker pool and reports the outcome to callback
	// from a worker goroutine.
	//
	// Parameters:
	//   - ctx: cancels pending fetches
	//   - path: the resource path of the model file
	//   - callback: receives the model or the error, never both
	LoadAsync(ctx context.Context, path string, callback func(model.Model, error))

	// Wait blocks until every load queued with LoadAsync has delivered its callback.
	Wait()

	// Close waits for queued loads and stops the worker pool. LoadAsync calls made after
	// Close report ErrLoaderClosed to their callback. Close is safe to call more than once.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the options applied. WithFetcher and WithRenderer
// are required.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured Loader
//   - error: error if a required dependency is missing
func NewLoader(options ...LoaderBuilderOption) (Loader, error) {
	l := &loader{
		backends: make(map[string]loaderBackend),
		workers:  1,
	}
	l.registerBackend(newOBJLoaderBackend())

	for _, option := range options {
		option(l)
	}

	if l.fetcher == nil {
		return nil, errors.New("loader: a resource fetcher is required")
	}
	if l.allocator == nil {
		return nil, errors.New("loader: a renderer is required")
	}
	if l.workers < 1 {
		l.workers = 1
	}
	return l, nil
}

// NewLoaderFromConfig creates a Loader whose worker count and tangent options come from cfg.
//
// Parameters:
//   - cfg: the loader section of the viewer configuration
//   - options: additional options, applied after the configured ones
//
// Returns:
//   - Loader: the configured Loader
//   - error: error if a required dependency is missing
func NewLoaderFromConfig(cfg config.LoaderConfig, options ...LoaderBuilderOption) (Loader, error) {
	var tangentOptions []TangentOption
	if cfg.LegacyBitangent {
		tangentOptions = append(tangentOptions, WithLegacyBitangent())
	}
	if cfg.DegenerateCheck {
		tangentOptions = append(tangentOptions, WithDegenerateCheck())
	}

	configured := []LoaderBuilderOption{
		WithWorkers(cfg.Workers),
		WithTangentOptions(tangentOptions...),
	}
	return NewLoader(append(configured, options...)...)
}

func (l *loader) registerBackend(b loaderBackend) {
	for _, ext := range b.Extensions() {
		l.backends[ext] = b
	}
}

func (l *loader) resolveBackend(assetPath string) (loaderBackend, error) {
	ext := strings.ToLower(path.Ext(assetPath))
	b, ok := l.backends[ext]
	if !ok {
		return nil, fmt.Errorf("no loader backend for %q files", ext)
	}
	return b, nil
}

func (l *loader) Load(ctx context.Context, assetPath string) (model.Model, error) {
	log := logger.Named("loader")
	start := time.Now()
	log.Info("loading model", zap.String("path", assetPath))

	backend, err := l.resolveBackend(assetPath)
	if err != nil {
		return nil, err
	}

	data, err := l.fetcher.LoadBinary(ctx, assetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", assetPath, err)
	}

	parsed, err := backend.Parse(ctx, assetPath, data, l.fetcher.LoadBinary)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", assetPath, err)
	}

	a := &assembly{}
	if err := l.assemble(ctx, assetPath, parsed, a); err != nil {
		a.release()
		log.Warn("model load failed",
			zap.String("path", assetPath),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to load %s: %w", assetPath, err)
	}

	m := model.NewModel(
		model.WithName(assetPath),
		model.WithMeshes(a.meshes),
		model.WithMaterials(a.materials),
	)
	log.Info("model loaded",
		zap.String("path", assetPath),
		zap.Int("meshes", len(a.meshes)),
		zap.Int("materials", len(a.materials)),
		zap.Int("vertices", m.VertexCount()),
		zap.Duration("duration", time.Since(start)),
	)
	return m, nil
}

func (l *loader) LoadAsync(ctx context.Context, assetPath string, callback func(model.Model, error)) {
	l.poolMu.Lock()
	if l.closed {
		l.poolMu.Unlock()
		if callback != nil {
			callback(nil, fmt.Errorf("loading %s: %w", assetPath, ErrLoaderClosed))
		}
		return
	}
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	}
	pool := l.pool
	l.pending.Add(1)
	l.poolMu.Unlock()

	id := int(l.taskID.Add(1))
	pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer l.pending.Done()
			m, err := l.Load(ctx, assetPath)
			if callback != nil {
				callback(m, err)
			} else if m != nil {
				m.Release()
			}
			return nil, nil
		},
	})
}

func (l *loader) Wait() {
	l.pending.Wait()
}

func (l *loader) Close() {
	l.poolMu.Lock()
	if l.closed {
		l.poolMu.Unlock()
		return
	}
	l.closed = true
	l.poolMu.Unlock()

	l.pending.Wait()
	if l.pool != nil {
		l.pool.Stop()
	}
}

// assembly collects the GPU-backed parts of a model while it is being built so a
// failed load can release them.
type assembly struct {
	materials []*model.Material
	meshes    []*model.Mesh
}

func (a *assembly) release() {
	for _, m := range a.meshes {
		m.Release()
	}
	for _, m := range a.materials {
		m.Release()
	}
	a.meshes, a.materials = nil, nil
}

// assemble uploads materials then meshes, both in source order.
func (l *loader) assemble(ctx context.Context, assetPath string, parsed *ParsedAsset, a *assembly) error {
	for _, pm := range parsed.Materials {
		mat := &model.Material{
			Name:      pm.Name,
			Ambient:   pm.Ambient,
			Diffuse:   pm.Diffuse,
			Specular:  pm.Specular,
			Shininess: pm.Shininess,
			Dissolve:  pm.Dissolve,
		}
		a.materials = append(a.materials, mat)

		var err error
		if mat.DiffuseTexture, err = l.loadTexture(ctx, assetPath, pm.Name, pm.DiffuseTexture, false); err != nil {
			return err
		}
		if mat.NormalTexture, err = l.loadTexture(ctx, assetPath, pm.Name, pm.NormalTexture, true); err != nil {
			return err
		}
	}

	for _, pm := range parsed.Meshes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := BuildTangents(pm.Vertices, pm.Indices, l.tangentOptions...); err != nil {
			return fmt.Errorf("mesh %q: %w", pm.Name, err)
		}

		mesh := &model.Mesh{
			Name:          pm.Name,
			ElementCount:  uint32(len(pm.Indices)),
			VertexCount:   uint32(len(pm.Vertices)),
			MaterialIndex: pm.MaterialIndex,
		}
		a.meshes = append(a.meshes, mesh)

		positions := make([][3]float32, len(pm.Vertices))
		for i := range pm.Vertices {
			positions[i] = pm.Vertices[i].Position
		}
		mesh.BoundingMin, mesh.BoundingMax = common.Bounds3(positions)

		var err error
		label := fmt.Sprintf("%s %s", assetPath, pm.Name)
		if mesh.VertexBuffer, err = l.allocator.CreateVertexBuffer(label+" vertex buffer", model.MarshalVertices(pm.Vertices)); err != nil {
			return fmt.Errorf("mesh %q: %w", pm.Name, err)
		}
		if mesh.IndexBuffer, err = l.allocator.CreateIndexBuffer(label+" index buffer", model.MarshalIndices(pm.Indices)); err != nil {
			return fmt.Errorf("mesh %q: %w", pm.Name, err)
		}
	}
	return nil
}

// loadTexture fetches a material texture relative to the model file and uploads it.
// The texture's label is its resource path.
func (l *loader) loadTexture(ctx context.Context, assetPath, material, ref string, isNormalMap bool) (renderer.Texture, error) {
	kind := "diffuse"
	if isNormalMap {
		kind = "normal"
	}
	if ref == "" {
		return nil, &ParseError{File: assetPath, Msg: fmt.Sprintf("material %q has no %s texture", material, kind)}
	}

	texPath := path.Join(path.Dir(assetPath), ref)
	data, err := l.fetcher.LoadBinary(ctx, texPath)
	if err != nil {
		return nil, fmt.Errorf("material %q %s texture: %w", material, kind, err)
	}
	tex, err := l.allocator.CreateTexture(data, texPath, isNormalMap)
	if err != nil {
		return nil, fmt.Errorf("material %q %s texture: %w", material, kind, err)
	}
	return tex, nil
}
