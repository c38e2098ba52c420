// Package services holds the shared error taxonomy and context annotations
// used between the lifecycle engine, providers, and the sync driver.
//
// Errors are tagged with sentinel markers (configuration, validation,
// transient, provider-failed) so callers can classify a failure with
// errors.Is instead of string matching. FailureStatus turns that
// classification into the asset status to persist: only an explicit
// provider-reported failure is terminal; everything else leaves the asset
// retryable on the next sync pass.
package services
