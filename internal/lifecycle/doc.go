// Package lifecycle connects asset events to provider uploads. The engine
// subscribes to the added events, picks the provider recorded on the asset
// (or the configured default), and runs the matching upload operation. It
// never moves status itself; all persisted transitions happen inside the
// providers, which keeps the monotonic status rules in one place.
package lifecycle
