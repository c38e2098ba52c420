package testsupport

import (
	"context"
	"testing"

	"reel/internal/asset"
	"reel/internal/config"
	"reel/internal/store"
)

// MustOpenStore opens a sidecar store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return st
}

// NewPendingAsset creates a pending asset record for tests.
func NewPendingAsset(t testing.TB, st *store.Store, source string, size int64) *asset.Asset {
	t.Helper()

	a, created, err := st.Create(context.Background(), asset.New(asset.StatusPending, source, "mux", size))
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	if !created {
		t.Fatalf("expected fresh asset for %s", source)
	}
	return a
}
