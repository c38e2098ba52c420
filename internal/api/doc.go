// Package api contains the wire types and store-backed services consumed by
// the watch-mode HTTP endpoints and the CLI status views.
package api
