// Package merlin is the detector's variable catalogue and control client.
//
// Every Variable has one catalogue Entry naming its wire field (or field
// template), a read pipeline decoding GET values and, unless read-only, a
// write pipeline that validates caller input and renders the wire value.
// Composite kinds fan one logical variable out over several fields.
//
// A Connection runs GET, SET and CMD exchanges one at a time over a
// session and records the last attempted exchange.
package merlin
