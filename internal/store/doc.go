// Package store persists asset records as JSON sidecar files and exposes the
// three operations the rest of the system mutates them through: fail-if-exists
// create, read, and deep-merge update.
//
// Local sources keep their sidecar next to the video file (<path>.json);
// remote-URL sources are keyed by a sanitized token under the configured
// remote folder. Creation uses O_EXCL so concurrent discovery of the same
// file yields exactly one record; the loser reads back the winner's record
// and reports created=false, which is not an error.
//
// Update is the sole write path after creation. It deep-merges a partial
// patch into the stored document (objects merge key by key, arrays
// concatenate, scalars overwrite), stamps updatedAt, and rejects status
// changes that would move backward through the lifecycle. The read-modify-
// write is not locked; the lifecycle engine guarantees a single logical
// writer per asset by funneling all mutations for one asset through its own
// poll chain.
package store
