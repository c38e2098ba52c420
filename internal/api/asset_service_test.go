package api_test

import (
	"context"
	"errors"
	"testing"

	"reel/internal/api"
	"reel/internal/asset"
	"reel/internal/services"
	"reel/internal/testsupport"
)

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewAssetService(st)
	ctx := context.Background()

	for _, seed := range []struct {
		source string
		status asset.Status
	}{
		{"a.mp4", asset.StatusPending},
		{"b.mp4", asset.StatusReady},
		{"c.mp4", asset.StatusPending},
	} {
		if _, _, err := st.Create(ctx, asset.New(seed.status, seed.source, "mux", 1)); err != nil {
			t.Fatalf("seed %s: %v", seed.source, err)
		}
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d assets, want 3", len(all))
	}

	pending, err := svc.List(ctx, asset.StatusPending)
	if err != nil {
		t.Fatalf("filtered List failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending assets, want 2", len(pending))
	}
}

func TestDescribeMissingAssetReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := api.NewAssetService(testsupport.MustOpenStore(t, cfg))

	record, err := svc.Describe(context.Background(), "missing.mp4")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestLookupOrCreateIsIdempotentPerURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := api.NewAssetService(testsupport.MustOpenStore(t, cfg))
	ctx := context.Background()
	url := "https://example.com/videos/clip.mp4"

	first, created, err := svc.LookupOrCreate(ctx, url, "mux")
	if err != nil {
		t.Fatalf("first LookupOrCreate failed: %v", err)
	}
	if !created {
		t.Fatal("first call should create the record")
	}
	if first.Status != asset.StatusSourced {
		t.Fatalf("status = %s, want sourced", first.Status)
	}

	second, created, err := svc.LookupOrCreate(ctx, url, "mux")
	if err != nil {
		t.Fatalf("second LookupOrCreate failed: %v", err)
	}
	if created {
		t.Fatal("second call must reuse the existing record")
	}
	if second.OriginalFilePath != first.OriginalFilePath {
		t.Fatalf("sources differ: %q vs %q", second.OriginalFilePath, first.OriginalFilePath)
	}
}

func TestLookupOrCreateRejectsLocalPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := api.NewAssetService(testsupport.MustOpenStore(t, cfg))

	if _, _, err := svc.LookupOrCreate(context.Background(), "clip.mp4", "mux"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCountsGroupsByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewAssetService(st)
	ctx := context.Background()

	if _, _, err := st.Create(ctx, asset.New(asset.StatusPending, "a.mp4", "mux", 1)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := st.Create(ctx, asset.New(asset.StatusReady, "b.mp4", "mux", 1)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts["pending"] != 1 || counts["ready"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}
