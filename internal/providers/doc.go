// Package providers defines the capability interface every delivery backend
// implements and the registry that resolves an asset's provider by name.
//
// Two backend shapes exist: direct-upload services (an upload session is
// created, bytes are PUT to a one-time URL, and an asynchronous encoding job
// is polled to completion) and object stores (bytes are streamed straight to
// a bucket and the asset is ready as soon as the put succeeds). Both are
// hidden behind the same two-operation interface, selected by the asset's
// provider field.
package providers
