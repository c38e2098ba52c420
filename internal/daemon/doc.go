// Package daemon coordinates watch mode: a flock-guarded single instance
// running the discovery watcher alongside an optional HTTP API for status
// reads and remote-URL registration.
package daemon
