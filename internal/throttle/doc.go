// Package throttle paces provider job-creation calls so bursts of discovered
// videos do not trip provider rate limits.
//
// Each provider gets one FIFO queue enforcing a minimum delay between
// dispatched calls (1 s by default, matching typical "create processing job"
// rate limits). Raw byte uploads bypass the queue; only calls that create
// provider-side jobs go through it. There is no backoff or retry on task
// failure; a failed task simply resolves its own result and the queue moves
// on.
package throttle
