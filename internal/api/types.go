package api

import "reel/internal/asset"

// DaemonStatus is the payload served by /api/status.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	VideosDir    string         `json:"videosDir"`
	LockFilePath string         `json:"lockFilePath"`
	Providers    []string       `json:"providers"`
	Counts       map[string]int `json:"counts"`
}

// AssetListResponse wraps the asset collection served by /api/assets.
type AssetListResponse struct {
	Assets []asset.Asset `json:"assets"`
}

// AssetResponse wraps a single asset record. Created reports whether the
// request minted a new record or found an existing one.
type AssetResponse struct {
	Asset   asset.Asset `json:"asset"`
	Created bool        `json:"created"`
}

// CreateAssetRequest registers a remote-URL source for processing.
type CreateAssetRequest struct {
	URL      string `json:"url"`
	Provider string `json:"provider,omitempty"`
}
