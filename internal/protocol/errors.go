package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrStatus         = errors.New("protocol: device rejected exchange")
	ErrBusy           = errors.New("protocol: device busy")
	ErrUnknownCommand = errors.New("protocol: unknown command")
	ErrOutOfRange     = errors.New("protocol: value out of range")
	ErrTransport      = errors.New("protocol: transport failure")
)

// ProtocolError is a response carrying a non-zero status.
type ProtocolError struct {
	Subject string
	Verb    Verb
	Status  Status
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s %s: %s (status %d)", e.Verb, e.Subject, e.Status, int(e.Status))
}

func (e *ProtocolError) Is(target error) bool {
	switch target {
	case ErrStatus:
		return true
	case ErrBusy:
		return e.Status == StatusBusy
	case ErrUnknownCommand:
		return e.Status == StatusUnknownCommand
	case ErrOutOfRange:
		return e.Status == StatusOutOfRange
	}
	return false
}

// TransportError is a socket-level failure during one exchange.
type TransportError struct {
	Op      string
	Subject string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("protocol: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("protocol: %s %s: %v", e.Op, e.Subject, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
