package asset_test

import (
	"testing"

	"reel/internal/asset"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  asset.Status
		ok    bool
	}{
		{"pending", asset.StatusPending, true},
		{" Ready ", asset.StatusReady, true},
		{"UPLOADING", asset.StatusUploading, true},
		{"", "", false},
		{"encoding", "", false},
	}
	for _, tc := range cases {
		got, ok := asset.ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestCanTransitionForwardOnly(t *testing.T) {
	allowed := []struct{ from, to asset.Status }{
		{asset.StatusPending, asset.StatusUploading},
		{asset.StatusSourced, asset.StatusUploading},
		{asset.StatusSourced, asset.StatusProcessing},
		{asset.StatusUploading, asset.StatusProcessing},
		{asset.StatusUploading, asset.StatusReady},
		{asset.StatusProcessing, asset.StatusReady},
		{asset.StatusProcessing, asset.StatusError},
		{asset.StatusPending, asset.StatusError},
		{asset.StatusUploading, asset.StatusUploading},
		{asset.StatusReady, asset.StatusReady},
	}
	for _, tc := range allowed {
		if !asset.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to asset.Status }{
		{asset.StatusReady, asset.StatusPending},
		{asset.StatusReady, asset.StatusError},
		{asset.StatusError, asset.StatusPending},
		{asset.StatusError, asset.StatusReady},
		{asset.StatusProcessing, asset.StatusUploading},
		{asset.StatusUploading, asset.StatusPending},
		{asset.StatusPending, asset.StatusProcessing},
		{asset.StatusPending, asset.StatusReady},
	}
	for _, tc := range denied {
		if asset.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestStatusMonotonicity(t *testing.T) {
	// Walk every legal multi-step path and confirm no step ever reaches an
	// earlier non-terminal state again.
	order := map[asset.Status]int{
		asset.StatusSourced:    0,
		asset.StatusPending:    0,
		asset.StatusUploading:  1,
		asset.StatusProcessing: 2,
		asset.StatusReady:      3,
		asset.StatusError:      3,
	}
	for _, from := range asset.AllStatuses() {
		for _, to := range asset.AllStatuses() {
			if !asset.CanTransition(from, to) || from == to {
				continue
			}
			if order[to] <= order[from] {
				t.Errorf("transition %s -> %s moves backward", from, to)
			}
		}
	}
}

func TestMetadataHelpers(t *testing.T) {
	a := asset.New(asset.StatusPending, "videos/clip.mp4", "mux", 1024)
	if a.Metadata("mux") != nil {
		t.Fatal("expected nil metadata before any provider write")
	}
	a.ProviderMetadata = map[string]map[string]any{
		"mux": {"uploadId": "u-1", "attempts": 2},
	}
	if got := a.MetadataString("mux", "uploadId"); got != "u-1" {
		t.Fatalf("MetadataString = %q, want u-1", got)
	}
	if got := a.MetadataString("mux", "attempts"); got != "" {
		t.Fatalf("non-string leaf should yield empty string, got %q", got)
	}
	if got := a.MetadataString("s3", "key"); got != "" {
		t.Fatalf("unknown provider should yield empty string, got %q", got)
	}
}

func TestIsRemoteSource(t *testing.T) {
	if !asset.IsRemoteSource("https://example.com/a.mp4") {
		t.Fatal("https URL should be remote")
	}
	if !asset.IsRemoteSource("HTTP://example.com/a.mp4") {
		t.Fatal("scheme check should be case-insensitive")
	}
	if asset.IsRemoteSource("videos/a.mp4") {
		t.Fatal("relative path should not be remote")
	}
}
