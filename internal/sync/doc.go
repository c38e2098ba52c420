// Package sync discovers video files and dispatches them for processing.
//
// A scan pass adopts new media files as pending records, re-dispatches
// non-terminal records left over from earlier runs, and waits for every
// dispatched asset to settle. Watch mode layers fsnotify on top: after the
// initial pass, file creation events feed the same adopt-and-publish path,
// with the store's fail-if-exists create keeping duplicate events harmless.
package sync
