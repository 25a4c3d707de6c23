// Command viewer loads OBJ models through the configured resource backend and shows them
// with a free-look camera. WASD or the arrow keys move, Space and Left Shift rise and sink,
// the mouse looks around and Escape quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"

	"go.uber.org/zap"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("config: %+v", cfg)

	if err := run(cfg, opts); err != nil {
		logger.Log.Error("viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Log.Info("viewer closed normally")
}

// run opens the window, starts loading every model and blocks in the frame loop.
func run(cfg *config.Config, opts *options) error {
	fetcher, err := resource.NewFetcherFromConfig(cfg.Resources)
	if err != nil {
		return fmt.Errorf("creating fetcher: %w", err)
	}

	win, err := window.NewWindow(window.WithConfig(cfg.Window))
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU,
		renderer.WithSurfaceDescriptor(win.SurfaceDescriptor()),
		renderer.WithVertexLayout(model.GPUVertexLayout()),
	)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer r.Release()

	ld, err := loader.NewLoaderFromConfig(cfg.Loader,
		loader.WithFetcher(fetcher),
		loader.WithRenderer(r),
	)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("creating loader: %w", err)
	}

	e, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(camera.NewCameraFromConfig(cfg.Camera, float32(win.Width())/float32(max(win.Height(), 1)))),
		engine.WithCameraController(camera.NewCameraControllerFromConfig(cfg.Camera)),
		engine.WithProfiling(opts.profile),
		engine.WithRenderFrameLimit(opts.fpsLimit),
	)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("creating engine: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		loaded []model.Model
	)
	for _, p := range opts.models {
		ld.LoadAsync(ctx, p, func(m model.Model, err error) {
			if err != nil {
				logger.Log.Error("model failed to load", zap.String("path", p), zap.Error(err))
				return
			}
			mu.Lock()
			loaded = append(loaded, m)
			mu.Unlock()
			e.AddModel(m)
		})
	}

	e.Run()

	// Stop in-flight loads before releasing what they produced.
	cancel()
	ld.Wait()
	ld.Close()
	mu.Lock()
	for _, m := range loaded {
		m.Release()
	}
	mu.Unlock()
	return nil
}
