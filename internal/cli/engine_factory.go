package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/macrograph"
	"github.com/aretw0/macrograph/internal/adapters/file"
	"github.com/aretw0/macrograph/internal/config"
	"github.com/aretw0/macrograph/internal/logging"
	"github.com/aretw0/macrograph/internal/tracing"
	"github.com/aretw0/macrograph/pkg/adapters/loam"
	"github.com/aretw0/macrograph/pkg/adapters/memory"
	"github.com/aretw0/macrograph/pkg/adapters/redis"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/aretw0/macrograph/pkg/observability"
	"github.com/aretw0/macrograph/pkg/persistence/middleware"
	"github.com/aretw0/macrograph/pkg/ports"
	"github.com/aretw0/macrograph/pkg/session"
)

// DefaultObjects is the number of boxes in the scene of a CLI session.
const DefaultObjects = 3

// Options carries the global flags of the CLI.
type Options struct {
	ConfigPath string
	Debug      bool
	// Backend and StorePath override the configured catalog when set.
	Backend   string
	StorePath string
	Objects   int
	// Hooks, when set, builds extra hooks from the App logger. They are merged
	// with the hooks the App installs itself.
	Hooks func(logger *slog.Logger) domain.LifecycleHooks
}

// App is a fully wired engine together with the resources it owns.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Engine  *macrograph.Engine
	Scene   *memory.Scene
	Metrics *observability.Metrics

	closers []func(context.Context) error
}

// NewApp loads the configuration and builds an engine over an in-memory scene.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Store.Backend = opts.Backend
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg, opts.Debug)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	shutdown, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: macrograph.Version,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing tracing: %w", err)
	}
	app.closers = append(app.closers, shutdown)

	base, locker, err := app.openStore(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	mws := []middleware.Middleware{middleware.NewValidationMiddleware(cfg.Store.Strict, logger)}
	key, _ := cfg.Store.Key() // checked by Validate
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	store := middleware.Wrap(base, mws...)

	objects := opts.Objects
	if objects <= 0 {
		objects = DefaultObjects
	}
	boxes := make([]memory.Object, objects)
	for i := range boxes {
		boxes[i] = memory.NewObject(memory.ShapeBox)
	}
	scene := memory.NewScene(boxes...)
	app.Scene = scene

	var hooks domain.LifecycleHooks
	if opts.Hooks != nil {
		hooks = opts.Hooks(logger)
	}
	var host ports.Host = scene
	if cfg.Metrics.Enabled {
		app.Metrics = observability.NewMetrics()
		hooks = hooks.Merge(app.Metrics.Hooks())
		host = app.Metrics.InstrumentHost(scene)
	}
	if opts.Debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}

	sessionOpts := []session.Option{session.WithLogger(logger), session.WithLockTTL(cfg.Lock.TTL)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}

	app.Engine, err = macrograph.New(host,
		macrograph.WithStore(store),
		macrograph.WithLogger(logger),
		macrograph.WithLifecycleHooks(hooks),
		macrograph.WithSessionManager(session.NewManager(sessionOpts...)),
		macrograph.WithPacing(cfg.Dispatch.Pacing),
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return app, nil
}

// openStore builds the configured catalog. Only the redis backend yields a distributed locker.
func (a *App) openStore(cfg config.Config) (ports.MacroStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile:
		return file.New(cfg.Store.Path), nil, nil
	case config.BackendLoam:
		store, err := loam.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.BackendRedis:
		r := cfg.Store.Redis
		store := redis.New(r.Addr, r.Password, r.DB, redis.WithPrefix(r.Prefix), redis.WithTTL(r.TTL))
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		return store, redis.NewLocker(store.Client(), r.Prefix+"lock:"), nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Close releases the resources of the App in reverse order of acquisition.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// createLogger configures the application logger.
// Debug forces the debug level regardless of the configuration.
func createLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	format := logging.Format(cfg.Log.Format)
	if debug {
		return logging.New(os.Stderr, slog.LevelDebug, format), nil
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, level, format), nil
}
