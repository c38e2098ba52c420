package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"reel/internal/config"
	"reel/internal/events"
	"reel/internal/lifecycle"
	"reel/internal/logging"
	"reel/internal/providers"
	"reel/internal/providers/mux"
	"reel/internal/providers/s3"
	"reel/internal/store"
	syncdriver "reel/internal/sync"
	"reel/internal/throttle"
	"reel/internal/transform"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runtime bundles the wired subsystems a command needs to process assets.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	bus      *events.Bus
	registry *providers.Registry
	engine   *lifecycle.Engine
	driver   *syncdriver.Driver
}

// buildRuntime wires the store, providers, throttle queues, lifecycle
// engine, and discovery driver from the loaded configuration.
func (c *commandContext) buildRuntime() (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	throttles := throttle.NewRegistry(time.Duration(cfg.Throttle.MinIntervalMS) * time.Millisecond)
	registry := providers.NewRegistry()
	registry.Register(
		mux.New(cfg, st, throttles.For(mux.ProviderName), logger),
		transform.Mux,
	)
	registry.Register(
		s3.New(cfg, st, logger),
		transform.S3(cfg.S3.PublicBaseURL),
	)

	bus := events.NewBus()
	engine := lifecycle.New(st, registry, bus, cfg.Provider.Default, logger)
	engine.RegisterHandlers()

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		bus:      bus,
		registry: registry,
		engine:   engine,
		driver:   syncdriver.New(cfg, st, bus, logger),
	}, nil
}

// bucketEnsurer is implemented by providers that can provision their backing
// storage before a run.
type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// prepareProvider gives the default provider a chance to provision storage.
func (r *runtime) prepareProvider(ctx context.Context) error {
	provider, err := r.registry.Provider(r.cfg.Provider.Default)
	if err != nil {
		return err
	}
	if ensurer, ok := provider.(bucketEnsurer); ok {
		return ensurer.EnsureBucket(ctx)
	}
	return nil
}
