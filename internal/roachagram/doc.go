// Package roachagram provides the resilient HTTP client for the anagram API.
//
// # Requests
//
// Submit trims its input and rejects blank or overlong text with
// ErrInvalidInput before anything touches the network. Accepted input is
// sent as
//
//	GET {base}api/anagram?input=<url-encoded input>
//
// with an X-Device-ID header carrying the identity returned by the
// configured IdentityProvider. The identity is resolved once per Client.
// The response body is returned verbatim; formatting belongs to the
// textformat package.
//
// # Retries
//
// Any failed attempt (transport error, non-2xx status, unreadable body) is
// treated as transient. The client retries up to RetryPolicy.MaxRetries
// times, waiting BaseDelay, 2*BaseDelay, 4*BaseDelay between attempts
// (2s, 4s and 8s by default). Each retried failure is reported to the
// telemetry sink as a trace. When every attempt fails the error wraps
// ErrPersistentFailure and the last cause, and an exception event is
// emitted. Cancelling the context stops the loop immediately and returns
// the context's error.
//
// Each attempt is bounded by the HTTP client timeout (60s by default, see
// WithRequestTimeout) so a hung connection cannot stall the loop.
//
// # Concurrency
//
// Client is safe for concurrent use. Separate Submit calls do not share
// state beyond the cached device identity.
package roachagram
