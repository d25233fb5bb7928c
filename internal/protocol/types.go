package protocol

import "fmt"

// Verb is the exchange kind carried in every request body.
type Verb string

const (
	VerbGet Verb = "GET"
	VerbSet Verb = "SET"
	VerbCmd Verb = "CMD"
)

func (v Verb) Valid() bool {
	switch v {
	case VerbGet, VerbSet, VerbCmd:
		return true
	}
	return false
}

// Status is the device's per-exchange result code, the last element of
// every response.
type Status int

const (
	StatusUnderstood     Status = 0
	StatusBusy           Status = 1
	StatusUnknownCommand Status = 2
	StatusOutOfRange     Status = 3

	// StatusNone marks an exchange that produced no response.
	StatusNone Status = -1
)

func (s Status) OK() bool { return s == StatusUnderstood }

func (s Status) String() string {
	switch s {
	case StatusUnderstood:
		return "understood"
	case StatusBusy:
		return "busy"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusOutOfRange:
		return "value out of range"
	case StatusNone:
		return "no response"
	}
	return fmt.Sprintf("status(%d)", int(s))
}
