// Package session holds the client's bearer-token session.
//
// Exactly one session exists per store. The token pair (access token +
// token type) is produced by the login exchange and persisted as a
// 0600 JSON file (default ~/.ragnews/session.json) so it survives
// restarts. A logout removes the file.
//
// The store performs no validation of token well-formedness or expiry;
// an expired token is only discovered when the backend answers 401.
// Writes are guarded by an in-process mutex and a cross-process file
// lock via [github.com/gofrs/flock], since the TUI and scripted CLI
// invocations may run side by side.
package session
