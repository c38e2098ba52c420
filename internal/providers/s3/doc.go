// Package s3 implements the object-store delivery backend for any
// S3-compatible service (AWS S3, Backblaze B2, MinIO).
//
// Delivery is a single put: the asset moves uploading -> ready and never
// enters processing, because the store serves the bytes as-is. The put runs
// outside the throttle queue (pacing covers job-creation calls only, and this
// backend makes none), so concurrent assets upload in parallel. Resume
// after a restart repeats the put from the beginning; keys derive
// deterministically from the source, so the overwrite is harmless. Remote
// URLs are fetched to a temp file and re-streamed since object stores cannot
// ingest by URL.
package s3
