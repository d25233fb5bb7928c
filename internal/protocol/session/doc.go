// Package session owns the detector control socket.
//
// Ownership boundary:
// - dialing the command or data channel
// - one blocking request/response round trip per Exchange
// - per-exchange logging and metrics
// - poll backoff for callers that wait on device state
//
// A Session is Connected from a successful dial until Close or the first
// socket error; there is no reconnect. Device status codes are returned to
// the caller untouched: turning a non-zero status into an error is the
// job of the layer that knows which logical variable was addressed.
package session
