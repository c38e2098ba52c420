package transform_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"reel/internal/asset"
	"reel/internal/transform"
)

func TestMuxDerivesPlaybackSource(t *testing.T) {
	a := asset.Asset{
		Status:           asset.StatusProcessing,
		OriginalFilePath: "clip.mp4",
		Provider:         "mux",
		ProviderMetadata: map[string]map[string]any{
			"mux": {"assetId": "a-1", "playbackId": "pb-123"},
		},
	}

	got := transform.Mux(a)
	wantSources := []asset.PlaybackSource{{
		Src:  "https://stream.mux.com/pb-123.m3u8",
		Type: "application/x-mpegURL",
	}}
	if diff := cmp.Diff(wantSources, got.Sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
	if got.Poster != "https://image.mux.com/pb-123/thumbnail.webp" {
		t.Fatalf("poster = %q", got.Poster)
	}
}

func TestMuxWithoutPlaybackIDIsIdentity(t *testing.T) {
	a := asset.Asset{Status: asset.StatusPending, OriginalFilePath: "clip.mp4"}
	got := transform.Mux(a)
	if len(got.Sources) != 0 || got.Poster != "" {
		t.Fatalf("expected unchanged asset, got %#v", got)
	}
}

func TestMuxIsStableUnderRepeatedApplication(t *testing.T) {
	a := asset.Asset{
		ProviderMetadata: map[string]map[string]any{"mux": {"playbackId": "pb-9"}},
	}
	once := transform.Mux(a)
	twice := transform.Mux(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("transformer not stable (-once +twice):\n%s", diff)
	}
}

func TestS3DerivesFromEndpointMetadata(t *testing.T) {
	fn := transform.S3("")
	a := asset.Asset{
		ProviderMetadata: map[string]map[string]any{
			"s3": {"endpoint": "https://s3.example.com/", "bucket": "videos", "key": "clip.mp4"},
		},
	}
	got := fn(a)
	if len(got.Sources) != 1 || got.Sources[0].Src != "https://s3.example.com/videos/clip.mp4" {
		t.Fatalf("unexpected sources: %#v", got.Sources)
	}
	if got.Sources[0].Type != "video/mp4" {
		t.Fatalf("unexpected media type: %q", got.Sources[0].Type)
	}
}

func TestS3PublicBaseOverride(t *testing.T) {
	fn := transform.S3("https://cdn.example.com")
	a := asset.Asset{
		ProviderMetadata: map[string]map[string]any{"s3": {"key": "clip.webm"}},
	}
	got := fn(a)
	if len(got.Sources) != 1 || got.Sources[0].Src != "https://cdn.example.com/clip.webm" {
		t.Fatalf("unexpected sources: %#v", got.Sources)
	}
}

func TestS3WithoutKeyIsIdentity(t *testing.T) {
	fn := transform.S3("https://cdn.example.com")
	a := asset.Asset{OriginalFilePath: "clip.mp4"}
	if got := fn(a); len(got.Sources) != 0 {
		t.Fatalf("expected unchanged asset, got %#v", got)
	}
}
