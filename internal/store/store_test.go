package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reel/internal/asset"
	"reel/internal/services"
	"reel/internal/store"
	"reel/internal/testsupport"
)

func TestCreateIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, created, err := st.Create(ctx, asset.New(asset.StatusPending, "clip.mp4", "mux", 100))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Fatal("expected first create to report created=true")
	}

	second, created, err := st.Create(ctx, asset.New(asset.StatusPending, "clip.mp4", "mux", 999))
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if created {
		t.Fatal("expected second create to be a no-op")
	}
	if second.Size != first.Size || second.CreatedAt != first.CreatedAt {
		t.Fatalf("second create must return the first record unchanged: %#v vs %#v", second, first)
	}
}

func TestCreateConcurrentRace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	results := make([]bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, created, err := st.Create(ctx, asset.New(asset.StatusPending, "race.mp4", "mux", 1))
			if err != nil {
				t.Errorf("racer %d: %v", idx, err)
				return
			}
			results[idx] = created
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, created := range results {
		if created {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning create, got %d", winners)
	}
}

func TestUpdateMergesProviderMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewPendingAsset(t, st, "clip.mp4", 10)

	if _, err := st.Update(ctx, "clip.mp4", store.MetadataPatch("mux", map[string]any{"uploadId": "u-1"})); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	updated, err := st.Update(ctx, "clip.mp4", store.MetadataPatch("mux", map[string]any{"assetId": "a-1"}))
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}

	want := map[string]any{"uploadId": "u-1", "assetId": "a-1"}
	if diff := cmp.Diff(want, updated.Metadata("mux")); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if updated.UpdatedAt < updated.CreatedAt {
		t.Fatal("updatedAt must be stamped on every write")
	}
}

func TestUpdateConcatenatesArrays(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewPendingAsset(t, st, "clip.mp4", 10)

	if _, err := st.Update(ctx, "clip.mp4", store.MetadataPatch("mux", map[string]any{"renditions": []string{"720p"}})); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	updated, err := st.Update(ctx, "clip.mp4", store.MetadataPatch("mux", map[string]any{"renditions": []string{"1080p"}}))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	want := []any{"720p", "1080p"}
	if diff := cmp.Diff(want, updated.Metadata("mux")["renditions"]); diff != "" {
		t.Fatalf("array concat mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateRejectsBackwardStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewPendingAsset(t, st, "clip.mp4", 10)

	steps := []asset.Status{asset.StatusUploading, asset.StatusProcessing, asset.StatusReady}
	for _, next := range steps {
		if _, err := st.Update(ctx, "clip.mp4", map[string]any{"status": next}); err != nil {
			t.Fatalf("forward transition to %s failed: %v", next, err)
		}
	}

	if _, err := st.Update(ctx, "clip.mp4", map[string]any{"status": asset.StatusPending}); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := st.Update(ctx, "clip.mp4", map[string]any{"status": asset.StatusError}); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("ready is terminal; expected ErrInvalidTransition, got %v", err)
	}

	// Non-status fields still merge on a terminal asset.
	if _, err := st.Update(ctx, "clip.mp4", map[string]any{"poster": "p.webp"}); err != nil {
		t.Fatalf("metadata update on terminal asset failed: %v", err)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.Update(context.Background(), "ghost.mp4", map[string]any{"poster": "x"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRemoteSourceKeyDerivation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := "https://example.com/videos/My Clip.mp4"
	if _, created, err := st.Create(ctx, asset.New(asset.StatusSourced, source, "mux", 0)); err != nil || !created {
		t.Fatalf("Create failed: created=%v err=%v", created, err)
	}

	path := st.SidecarPath(source)
	if filepath.Dir(path) != cfg.RemoteSidecarDir() {
		t.Fatalf("remote sidecar should live under %s, got %s", cfg.RemoteSidecarDir(), path)
	}
	if strings.ContainsAny(filepath.Base(path), " :/?") {
		t.Fatalf("remote key not sanitized: %s", path)
	}

	got, err := st.Get(ctx, source)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.OriginalFilePath != source {
		t.Fatalf("stored source mismatch: %s", got.OriginalFilePath)
	}
}

func TestListReturnsAllAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewPendingAsset(t, st, "b.mp4", 1)
	testsupport.NewPendingAsset(t, st, "a.mp4", 1)
	if _, _, err := st.Create(ctx, asset.New(asset.StatusSourced, "https://example.com/c.mp4", "mux", 0)); err != nil {
		t.Fatalf("Create remote failed: %v", err)
	}

	assets, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
	if assets[0].OriginalFilePath != "a.mp4" {
		t.Fatalf("expected ordering by source path, got %s first", assets[0].OriginalFilePath)
	}
}

func TestSourcesOnlyWhenReady(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewPendingAsset(t, st, "clip.mp4", 10)

	for _, next := range []asset.Status{asset.StatusUploading, asset.StatusProcessing} {
		updated, err := st.Update(ctx, "clip.mp4", map[string]any{"status": next})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if len(updated.Sources) != 0 {
			t.Fatalf("sources must stay empty before ready, found %d at %s", len(updated.Sources), next)
		}
	}

	updated, err := st.Update(ctx, "clip.mp4", map[string]any{
		"status":  asset.StatusReady,
		"sources": []asset.PlaybackSource{{Src: "https://stream.example/abc.m3u8", Type: "application/x-mpegURL"}},
	})
	if err != nil {
		t.Fatalf("transition to ready failed: %v", err)
	}
	if len(updated.Sources) != 1 {
		t.Fatalf("expected one source at ready, got %d", len(updated.Sources))
	}
}
