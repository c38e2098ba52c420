package services_test

import (
	"errors"
	"strings"
	"testing"

	"reel/internal/asset"
	"reel/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrTransient, "mux", "create upload", "", base)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected transient marker to survive wrapping")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected cause to survive wrapping")
	}
	if !strings.Contains(err.Error(), "mux: create upload") {
		t.Fatalf("expected component detail in message, got %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("nil marker should default to transient")
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want asset.Status
	}{
		{"provider failure is terminal", services.Wrap(services.ErrProviderFailed, "mux", "poll", "asset errored", nil), asset.StatusError},
		{"transient keeps status", services.Wrap(services.ErrTransient, "mux", "create upload", "", errors.New("x")), ""},
		{"configuration keeps status", services.Wrap(services.ErrConfiguration, "mux", "credentials", "", nil), ""},
		{"plain error keeps status", errors.New("boom"), ""},
	}
	for _, tc := range cases {
		if got := services.FailureStatus(tc.err); got != tc.want {
			t.Errorf("%s: FailureStatus = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if services.IsRetryable(services.Wrap(services.ErrProviderFailed, "", "", "", nil)) {
		t.Fatal("provider-failed should not be retryable")
	}
	if !services.IsRetryable(errors.New("boom")) {
		t.Fatal("plain errors should be retryable")
	}
	if services.IsRetryable(nil) {
		t.Fatal("nil is not retryable")
	}
}
