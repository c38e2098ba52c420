// Package mux implements the direct-upload delivery backend.
//
// The flow for a local file is: create a direct-upload session (paced by the
// per-provider throttle queue), stream the bytes to the session URL, poll the
// session for the minted asset id, then poll the asset until it is ready or
// errored. Each identifier (uploadId, uploadUrl, assetId, playbackId) is
// persisted to the sidecar as soon as it is learned, which is what makes the
// flow resumable: after a restart the provider re-enters at whichever step
// the persisted identifiers point to. Remote URLs skip the byte push and go
// through the ingest-by-URL API instead.
package mux
