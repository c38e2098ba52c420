package transform

import (
	"strings"

	"reel/internal/asset"
	"reel/internal/fileutil"
)

const (
	muxStreamBase = "https://stream.mux.com"
	muxImageBase  = "https://image.mux.com"

	// HLS media type served by Mux playback URLs.
	hlsMediaType = "application/x-mpegURL"
)

// Mux derives the public playback source and poster for an asset from the
// playback id recorded by the Mux provider. Assets without a playback id are
// returned unchanged.
func Mux(a asset.Asset) asset.Asset {
	playbackID := a.MetadataString("mux", "playbackId")
	if playbackID == "" {
		return a
	}
	a.Sources = []asset.PlaybackSource{{
		Src:  muxStreamBase + "/" + playbackID + ".m3u8",
		Type: hlsMediaType,
	}}
	if a.Poster == "" {
		a.Poster = muxImageBase + "/" + playbackID + "/thumbnail.webp"
	}
	return a
}

// S3 builds a transformer that derives the object's public URL from the
// bucket/key metadata recorded by the object-store provider. publicBase
// overrides the derived prefix when the bucket sits behind a CDN.
func S3(publicBase string) func(asset.Asset) asset.Asset {
	publicBase = strings.TrimRight(publicBase, "/")
	return func(a asset.Asset) asset.Asset {
		key := a.MetadataString("s3", "key")
		if key == "" {
			return a
		}

		base := publicBase
		if base == "" {
			endpoint := strings.TrimRight(a.MetadataString("s3", "endpoint"), "/")
			bucket := a.MetadataString("s3", "bucket")
			if endpoint == "" || bucket == "" {
				return a
			}
			base = endpoint + "/" + bucket
		}

		a.Sources = []asset.PlaybackSource{{
			Src:  base + "/" + key,
			Type: fileutil.ContentTypeForName(key),
		}}
		return a
	}
}
