// Package state keeps the outcome of the most recent submission.
//
// The Presenter records each completed presentation, successful or
// fallback, and the terminal UI reads copies through Snapshot. All methods
// are safe for concurrent use; the zero Store is ready to use.
//
// Snapshot tracks:
//
//   - Last: the input, fragment and document of the latest presentation
//   - History: distinct recent inputs, most recent first
//   - LastError and ConsecutiveFailures for the failure streak
//
// IsOffline reports true after two failed submissions in a row, which the
// UI surfaces as a hint that the service is unreachable.
package state
