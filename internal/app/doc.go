// Package app is the composition root of roachagram.
//
// # Overview
//
// NewRuntime wires the pieces a process needs from a loaded config.Config:
//
//  1. Identity storage (file, redis or memory, optionally AES-GCM encrypted)
//  2. The telemetry sink posting to {api_base_url}api/telemetry
//  3. The resilient API client carrying the X-Device-ID header
//  4. A connectivity probe aimed at the API host
//  5. The Presenter that turns input into a renderable document
//
// Runtime.Close flushes in-flight telemetry and releases storage.
//
// # Presenting
//
// Presenter.Present is the single user-facing operation:
//
//	input -> connectivity check -> Client.Submit -> textformat pipeline
//	      -> textformat.Finalize -> document.Build -> state.Store
//
// When the network is down or the client gives up, the fixed offline or
// fallback message runs through the same pipeline and builder, so callers
// always get a document to show. A failed fetch also emits a trace event
// tagged with Page, Handler, AppVersion, DeviceModel and OS.
//
// Reveal documents strip apostrophes from the fragment because it is
// embedded in a script literal.
package app
