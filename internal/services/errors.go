package services

import (
	"errors"
	"fmt"
	"strings"

	"reel/internal/asset"
)

var (
	// ErrConfiguration marks missing or invalid configuration, surfaced by
	// the operation that needed it.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks bad input local to one operation.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing record or file.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a retryable network or provider hiccup during an
	// initiating call; the asset keeps its status and the next sync pass
	// retries it.
	ErrTransient = errors.New("transient failure")
	// ErrProviderFailed marks an explicit terminal failure reported by the
	// provider for a processing job.
	ErrProviderFailed = errors.New("provider reported failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later status classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a lifecycle error to the asset status that should be
// persisted, or "" when the asset should keep its current status and stay
// retryable.
func FailureStatus(err error) asset.Status {
	if errors.Is(err, ErrProviderFailed) {
		return asset.StatusError
	}
	return ""
}

// IsRetryable reports whether an error leaves the asset eligible for the
// next discovery/sync pass.
func IsRetryable(err error) bool {
	return err != nil && !errors.Is(err, ErrProviderFailed)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
