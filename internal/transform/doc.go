// Package transform holds the pure per-provider functions that derive
// playback sources and poster URLs from persisted provider metadata.
//
// Transformers are applied both at write time (to persist sources when an
// asset becomes ready) and at read time (to render existing records), so
// they must be side-effect free and stable under repeated application. An
// asset missing the needed identifiers passes through unchanged; the absence
// of sources is how "not yet transformable" is signaled.
package transform
