package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
)

// options holds the command line. Zero values leave the configuration untouched.
type options struct {
	configPath string
	models     []string

	backend   string
	root      string
	origin    string
	namespace string
	timeout   time.Duration

	width  int
	height int

	moveSpeed float64
	lookSpeed float64
	fovDeg    float64

	workers         int
	legacyBitangent bool
	degenerateCheck bool

	logLevel string
	logFile  string
	profile  bool
	fpsLimit float64
}

// parseFlags parses args (without the program name) into options.
//
// Parameters:
//   - args: the command line arguments
//   - output: where usage and parse errors are written
//
// Returns:
//   - *options: the parsed options
//   - error: error if the arguments are invalid or no model was given
func parseFlags(args []string, output io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("viewer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: viewer [flags] model.obj [model.obj ...]")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.backend, "backend", "", "resource backend: file or http")
	fs.StringVar(&o.root, "root", "", "resource root directory for the file backend")
	fs.StringVar(&o.origin, "origin", "", "scheme://host[:port] for the http backend")
	fs.StringVar(&o.namespace, "namespace", "", "path segment after the http origin")
	fs.DurationVar(&o.timeout, "timeout", 0, "http request timeout")
	fs.IntVar(&o.width, "width", 0, "window width in pixels")
	fs.IntVar(&o.height, "height", 0, "window height in pixels")
	fs.Float64Var(&o.moveSpeed, "move-speed", 0, "camera move speed in units per tick")
	fs.Float64Var(&o.lookSpeed, "look-speed", 0, "camera look speed multiplier")
	fs.Float64Var(&o.fovDeg, "fov", 0, "vertical field of view in degrees")
	fs.IntVar(&o.workers, "workers", 0, "model loading workers")
	fs.BoolVar(&o.legacyBitangent, "legacy-bitangent", false, "use the legacy bitangent formula")
	fs.BoolVar(&o.degenerateCheck, "degenerate-check", false, "reject meshes with degenerate UV mappings")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&o.logFile, "log-file", "", "rotating log file path")
	fs.BoolVar(&o.profile, "profile", false, "log frame statistics every second")
	fs.Float64Var(&o.fpsLimit, "fps", 0, "frame rate cap (0 = uncapped)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.models = fs.Args()
	if len(o.models) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no model given")
	}
	return o, nil
}

// apply overrides cfg with every flag that was set.
//
// Parameters:
//   - cfg: the configuration loaded from defaults and file
func (o *options) apply(cfg *config.Config) {
	if o.backend != "" {
		cfg.Resources.Backend = o.backend
	}
	if o.root != "" {
		cfg.Resources.Root = o.root
	}
	if o.origin != "" {
		cfg.Resources.Origin = o.origin
	}
	if o.namespace != "" {
		cfg.Resources.Namespace = o.namespace
	}
	if o.timeout > 0 {
		cfg.Resources.Timeout = o.timeout
	}
	if o.width > 0 {
		cfg.Window.Width = o.width
	}
	if o.height > 0 {
		cfg.Window.Height = o.height
	}
	if o.moveSpeed > 0 {
		cfg.Camera.MoveSpeed = float32(o.moveSpeed)
	}
	if o.lookSpeed > 0 {
		cfg.Camera.LookSpeed = float32(o.lookSpeed)
	}
	if o.fovDeg > 0 {
		cfg.Camera.FovYDeg = float32(o.fovDeg)
	}
	if o.workers > 0 {
		cfg.Loader.Workers = o.workers
	}
	if o.legacyBitangent {
		cfg.Loader.LegacyBitangent = true
	}
	if o.degenerateCheck {
		cfg.Loader.DegenerateCheck = true
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFile != "" {
		cfg.Logging.LogFile = o.logFile
	}
}
