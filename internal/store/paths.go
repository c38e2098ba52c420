package store

import (
	"path/filepath"
	"strings"

	"reel/internal/asset"
	"reel/internal/textutil"
)

const sidecarExt = ".json"

// SidecarPath derives the sidecar file location for a source. Local paths
// map 1:1 to a sibling <path>.json; remote URLs are sanitized into a safe
// token under the remote folder.
func (s *Store) SidecarPath(source string) string {
	source = strings.TrimSpace(source)
	if asset.IsRemoteSource(source) {
		return filepath.Join(s.remoteDir, textutil.SanitizeKey(source)+sidecarExt)
	}
	if filepath.IsAbs(source) {
		return source + sidecarExt
	}
	return filepath.Join(s.videosDir, source) + sidecarExt
}

// IsSidecar reports whether a file name looks like a sidecar record.
func IsSidecar(name string) bool {
	return strings.EqualFold(filepath.Ext(name), sidecarExt)
}
