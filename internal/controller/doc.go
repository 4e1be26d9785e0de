// Package controller owns the client-side view of the knowledge
// collections: the knowledge base list, the single selected base, and the
// files of that selected base.
//
// The controller is a pure state machine: it performs no I/O and starts no
// goroutines. Callers (the TUI event loop, the CLI commands) run the
// network operations themselves and feed outcomes back in. Every
// state-changing operation splits into an intent method, which returns a
// typed request tag, and a completion method, which takes that tag plus the
// outcome and answers what refresh, if any, to issue next.
//
// The tags are how stale responses die: a file listing is applied only if
// the base id it was fetched for still matches the selection when the
// response arrives. There is no locking and no cancellation primitive —
// the design assumes a single event-loop thread (Bubble Tea's Update), and
// "cancellation" is discarding responses whose tag no longer matches.
//
// Consistency model: after every successful create or delete the caller
// refetches the affected collection and the controller replaces it
// wholesale. There is no merging, no optimistic insertion, and no polling;
// a file observed as pending stays pending in the view until the next
// select, upload, or delete triggers a refresh.
package controller
