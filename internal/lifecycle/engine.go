package lifecycle

import (
	"context"
	"log/slog"

	"reel/internal/asset"
	"reel/internal/events"
	"reel/internal/logging"
	"reel/internal/providers"
	"reel/internal/services"
	"reel/internal/store"
)

// Engine routes asset events to the right provider operation and classifies
// the outcome. It owns no goroutines; callers drive it through the event bus
// or by calling Process directly.
type Engine struct {
	store           *store.Store
	registry        *providers.Registry
	bus             *events.Bus
	defaultProvider string
	logger          *slog.Logger
}

// New builds an engine over the given store, provider registry, and bus.
func New(st *store.Store, registry *providers.Registry, bus *events.Bus, defaultProvider string, logger *slog.Logger) *Engine {
	return &Engine{
		store:           st,
		registry:        registry,
		bus:             bus,
		defaultProvider: defaultProvider,
		logger:          logging.NewComponentLogger(logger, "lifecycle"),
	}
}

// RegisterHandlers subscribes the engine to the asset events it reacts to.
// Call once during startup, before any publish.
func (e *Engine) RegisterHandlers() {
	e.bus.Subscribe(events.LocalVideoAdded, e.handleAdded)
	e.bus.Subscribe(events.RequestVideoAdded, e.handleAdded)
}

func (e *Engine) handleAdded(ctx context.Context, a *asset.Asset) error {
	return e.Process(ctx, a)
}

// Process drives a single asset to a terminal state via its provider. A
// terminal asset is a no-op. Errors are classified: provider-reported
// failures have already been persisted as status error by the provider, while
// everything else leaves the record untouched for the next sync pass.
func (e *Engine) Process(ctx context.Context, a *asset.Asset) error {
	if a == nil {
		return nil
	}
	if a.IsTerminal() {
		return nil
	}

	name := a.Provider
	if name == "" {
		name = e.defaultProvider
	}
	provider, err := e.registry.Provider(name)
	if err != nil {
		return err
	}

	ctx = services.WithAssetKey(ctx, a.OriginalFilePath)
	ctx = services.WithProvider(ctx, name)
	log := e.logger.With(
		logging.String(logging.FieldSource, a.OriginalFilePath),
		logging.String(logging.FieldProvider, name))
	log.Info("processing asset", logging.String(logging.FieldStatus, string(a.Status)))

	var updated *asset.Asset
	if a.IsRemote() {
		updated, err = provider.UploadRemoteFile(ctx, a)
	} else {
		updated, err = provider.UploadLocalFile(ctx, a)
	}
	if err != nil {
		if services.FailureStatus(err) == asset.StatusError {
			log.Error("asset failed", logging.Error(err))
		} else {
			log.Warn("asset attempt failed, will retry on next pass", logging.Error(err))
		}
		return err
	}

	log.Info("asset processed", logging.String(logging.FieldStatus, string(updated.Status)))
	return nil
}
