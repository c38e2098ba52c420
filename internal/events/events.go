package events

import (
	"context"
	"fmt"
	"sync"

	"reel/internal/asset"
)

// Kind identifies a published event. The set is closed so subscribers can be
// checked exhaustively at compile time.
type Kind int

const (
	// LocalVideoAdded fires when the discovery driver finds a local file
	// (new or resumable).
	LocalVideoAdded Kind = iota + 1
	// RequestVideoAdded fires when an inbound request registers a
	// remote-URL source.
	RequestVideoAdded
)

func (k Kind) String() string {
	switch k {
	case LocalVideoAdded:
		return "local_video_added"
	case RequestVideoAdded:
		return "request_video_added"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Handler reacts to one published asset event.
type Handler func(ctx context.Context, a *asset.Asset) error

// Bus is an in-process publish/subscribe registry. It is an explicit value
// constructed at process start and injected where needed; there is no
// module-level registry.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers a handler for an event kind. Handlers run in
// registration order on every publish.
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Publish invokes every handler registered for the kind and collects their
// errors. A failing handler never prevents the remaining handlers from
// running.
func (b *Bus) Publish(ctx context.Context, kind Kind, a *asset.Asset) []error {
	b.mu.RLock()
	handlers := append([]Handler{}, b.handlers[kind]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return errs
		}
		if err := handler(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
