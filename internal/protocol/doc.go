// Package protocol owns the detector control wire vocabulary.
//
// Ownership boundary:
// - exchange verbs and device status codes
// - protocol and transport failure types
//
// Framing lives in protocol/frame; the socket round trip lives in
// protocol/session.
package protocol
