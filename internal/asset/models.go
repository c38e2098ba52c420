package asset

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a tracked video.
type Status string

const (
	// StatusSourced marks a record adopted or pre-created without an
	// immediate upload intent (e.g. a string-specified remote source).
	StatusSourced Status = "sourced"
	// StatusPending marks a discovered video waiting for upload.
	StatusPending Status = "pending"
	// StatusUploading marks a video whose bytes are being sent to the
	// provider, or whose upload session has been created.
	StatusUploading Status = "uploading"
	// StatusProcessing marks a video the provider has received and is
	// encoding asynchronously. Object-store providers skip this state.
	StatusProcessing Status = "processing"
	// StatusReady marks a video with at least one playback source.
	StatusReady Status = "ready"
	// StatusError marks a terminal provider-reported failure.
	StatusError Status = "error"
)

var allStatuses = []Status{
	StatusSourced,
	StatusPending,
	StatusUploading,
	StatusProcessing,
	StatusReady,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// forwardTransitions enumerates the legal forward moves. Any non-terminal
// status may additionally move to StatusError, and any status may "move" to
// itself (resume re-enters the same state).
var forwardTransitions = map[Status][]Status{
	StatusSourced:    {StatusUploading, StatusProcessing},
	StatusPending:    {StatusUploading},
	StatusUploading:  {StatusProcessing, StatusReady},
	StatusProcessing: {StatusReady},
	StatusReady:      {},
	StatusError:      {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusError
}

// CanTransition reports whether moving from one status to another is legal.
// Re-entering the same state is always allowed so resume paths are no-ops at
// the state machine level; terminal states accept nothing else.
func CanTransition(from, to Status) bool {
	if _, ok := statusSet[from]; !ok {
		return false
	}
	if _, ok := statusSet[to]; !ok {
		return false
	}
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	if to == StatusError {
		return true
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PlaybackSource is one playback URL plus an optional media type.
type PlaybackSource struct {
	Src  string `json:"src"`
	Type string `json:"type,omitempty"`
}

// Asset is the persisted record for one tracked video. It is serialized as a
// JSON sidecar file; field names match the sidecar layout exactly.
type Asset struct {
	Status           Status                    `json:"status"`
	OriginalFilePath string                    `json:"originalFilePath"`
	Provider         string                    `json:"provider,omitempty"`
	ProviderMetadata map[string]map[string]any `json:"providerMetadata,omitempty"`
	Poster           string                    `json:"poster,omitempty"`
	BlurDataURL      string                    `json:"blurDataURL,omitempty"`
	Sources          []PlaybackSource          `json:"sources,omitempty"`
	Size             int64                     `json:"size,omitempty"`
	Error            any                       `json:"error,omitempty"`
	CreatedAt        int64                     `json:"createdAt"`
	UpdatedAt        int64                     `json:"updatedAt"`
}

// New builds a fresh Asset for the given source with both timestamps set.
func New(status Status, source, provider string, size int64) *Asset {
	now := time.Now().UnixMilli()
	return &Asset{
		Status:           status,
		OriginalFilePath: source,
		Provider:         provider,
		Size:             size,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Metadata returns the metadata bag recorded for the named provider, or nil
// when the provider has not written anything yet.
func (a *Asset) Metadata(provider string) map[string]any {
	if a == nil || a.ProviderMetadata == nil {
		return nil
	}
	return a.ProviderMetadata[provider]
}

// MetadataString returns a string-typed leaf from the provider metadata bag.
func (a *Asset) MetadataString(provider, key string) string {
	meta := a.Metadata(provider)
	if meta == nil {
		return ""
	}
	if value, ok := meta[key].(string); ok {
		return value
	}
	return ""
}

// IsTerminal reports whether the asset has reached ready or error.
func (a *Asset) IsTerminal() bool {
	return a != nil && a.Status.IsTerminal()
}

// IsRemote reports whether the asset's source is a remote URL rather than a
// local file path.
func (a *Asset) IsRemote() bool {
	return a != nil && IsRemoteSource(a.OriginalFilePath)
}

// IsRemoteSource reports whether a source string names a remote URL.
func IsRemoteSource(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
