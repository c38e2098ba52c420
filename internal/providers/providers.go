package providers

import (
	"context"
	"sort"
	"sync"

	"reel/internal/asset"
	"reel/internal/services"
)

// Provider is the uniform capability surface every delivery backend
// implements. Both operations are idempotent on terminal assets and resume
// in-flight work where the backend supports it: direct-upload backends
// re-enter their status poll loop using persisted job ids, object-store
// backends restart the put (object keys are deterministic, so the overwrite
// is safe).
type Provider interface {
	Name() string
	// UploadLocalFile pushes a local video file to the backend and drives
	// the asset until a terminal provider state is observed.
	UploadLocalFile(ctx context.Context, a *asset.Asset) (*asset.Asset, error)
	// UploadRemoteFile ingests a remote-URL source, either via the
	// backend's ingest-by-URL API or by fetching and re-streaming.
	UploadRemoteFile(ctx context.Context, a *asset.Asset) (*asset.Asset, error)
}

// Transformer derives playback sources and presentation metadata from the
// provider metadata recorded on an asset. Implementations must be pure: an
// asset without the needed identifiers is returned unchanged, and repeated
// application yields the same result.
type Transformer func(a asset.Asset) asset.Asset

// Registry maps provider names to their implementations and transformers.
// It is constructed once at process start and injected; there are no
// module-level provider singletons.
type Registry struct {
	mu           sync.RWMutex
	providers    map[string]Provider
	transformers map[string]Transformer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers:    make(map[string]Provider),
		transformers: make(map[string]Transformer),
	}
}

// Register adds a provider and its transformer under the provider's name.
func (r *Registry) Register(p Provider, t Transformer) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	if t != nil {
		r.transformers[p.Name()] = t
	}
}

// Provider resolves a backend by name.
func (r *Registry) Provider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "providers", "lookup", "no provider registered as "+name, nil)
	}
	return p, nil
}

// Transformer resolves a backend's transformer by name.
func (r *Registry) Transformer(name string) (Transformer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transformers[name]
	return t, ok
}

// Names lists the registered provider names in stable order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
