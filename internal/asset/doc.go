// Package asset defines the persisted record tracking one video's delivery
// state and the status state machine that governs it.
//
// An Asset is created when a video file is discovered (or requested by URL)
// and moves forward through pending, uploading, processing, and finally ready
// or error. The transition graph is the single source of truth for which
// moves are legal; the store rejects writes that would regress a status.
// Object-store providers skip processing and go straight from uploading to
// ready because there is no provider-side encoding step to wait on.
package asset
