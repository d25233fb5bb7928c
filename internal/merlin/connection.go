package merlin

import (
	"context"
	"errors"
	"fmt"

	"github.com/danmuck/merlinctl/internal/observability"
	"github.com/danmuck/merlinctl/internal/protocol"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/danmuck/merlinctl/internal/protocol/session"
	"github.com/danmuck/merlinctl/internal/validate"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownVariable = errors.New("merlin: unknown variable")
	ErrUnknownCommand  = errors.New("merlin: unknown command")
	ErrReadOnly        = errors.New("merlin: variable is read-only")
	ErrPrecondition    = errors.New("merlin: precondition not met")
	ErrClosed          = errors.New("merlin: connection closed")
)

// Exchanger performs one blocking request/response round trip.
// *session.Session is the production implementation.
type Exchanger interface {
	Exchange(req frame.Request) (frame.Response, error)
	Close() error
}

// State is the connection lifecycle state. There is no reconnect: a
// disconnected Connection stays disconnected.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Exchange records one attempted round trip. Subject is the variable or
// command the caller asked for; Field is the wire name actually sent.
type Exchange struct {
	Subject string
	Field   string
	Verb    protocol.Verb
	Status  protocol.Status
}

func (e Exchange) String() string {
	return fmt.Sprintf("%s %s (%s): %s", e.Verb, e.Subject, e.Field, e.Status)
}

// Connection is a detector control client. It is not safe for concurrent
// use; one caller owns it for the duration of each call.
type Connection struct {
	x     Exchanger
	state State
	last  *Exchange
}

// Connect dials the detector's command channel.
func Connect(ctx context.Context, addr string, cfg session.Config) (*Connection, error) {
	s, err := session.Dial(ctx, addr, cfg)
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

// New wraps an already connected exchanger.
func New(x Exchanger) *Connection {
	return &Connection{x: x, state: Connected}
}

func (c *Connection) State() State { return c.state }

// LastExchange reports the most recent attempted exchange, if any.
func (c *Connection) LastExchange() (Exchange, bool) {
	if c.last == nil {
		return Exchange{}, false
	}
	return *c.last, true
}

// Close releases the socket. Further calls are no-ops.
func (c *Connection) Close() error {
	if c.state == Disconnected {
		return nil
	}
	c.state = Disconnected
	return c.x.Close()
}

// Get reads v from the device and decodes it. A failed read returns a nil
// value; the exchange that failed is still recorded.
func (c *Connection) Get(v Variable) (any, error) {
	e, err := c.entry(v)
	if err != nil {
		return nil, err
	}
	var out any
	switch e.Kind {
	case KindSplitPath:
		out, err = c.getPath(e)
	case KindDetectorFlags:
		out, err = c.getDetectorFlags(v)
	case KindPerDetector:
		out, err = c.getPerDetector(e)
	case KindPrerequisite:
		out, err = c.getAfterCommand(e)
	default:
		out, err = c.getField(v, e.Field, e.Read)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set validates value, then writes it. A value that fails validation is
// rejected before any I/O and leaves LastExchange untouched. Composite
// writes that fail part way are not rolled back.
func (c *Connection) Set(v Variable, value any) error {
	e, err := c.entry(v)
	if err != nil {
		return err
	}
	if !e.Settable() {
		return fmt.Errorf("%w: %s", ErrReadOnly, v)
	}
	wire, err := e.Write.Process(value)
	if err != nil {
		observability.RecordRejectedSet(v.String())
		log.Debug().Str("variable", v.String()).Interface("value", value).Err(err).Msg("merlin.Connection.Set rejected")
		return fmt.Errorf("merlin: set %s: %w", v, err)
	}
	if c.state != Connected {
		return ErrClosed
	}
	switch e.Kind {
	case KindTriggerBase:
		return c.setStartTrigger(e, wire.(int))
	case KindTriggerModifier:
		return c.setTriggerModifier(e, wire.(TriggerModifier))
	case KindSplitPath:
		return c.setPath(e, wire.(string))
	case KindDetectorFlags:
		return c.setDetectorFlags(e, wire.(Detector))
	case KindPerDetector:
		return c.setPerDetector(e, wire.(detectorWire))
	case KindSideEffect:
		return c.setWithCompanion(e, wire.(string))
	case KindGuarded:
		return c.setGuarded(e, wire.(string))
	}
	return c.setField(v, e.Field, wire.(string))
}

// Exec sends a command.
func (c *Connection) Exec(cmd Command) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCommand, int(cmd))
	}
	_, err := c.exchange(cmd.String(), frame.Command(cmd.Wire()))
	return err
}

func (c *Connection) entry(v Variable) (Entry, error) {
	e, ok := catalogue[v]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownVariable, int(v))
	}
	return e, nil
}

// exchange performs one round trip and records it. A non-zero status is
// returned as a *protocol.ProtocolError; a transport failure disconnects
// the Connection. Requests refused before any I/O, such as a frame over
// the body limit, are not recorded.
func (c *Connection) exchange(subject string, req frame.Request) (frame.Response, error) {
	if c.state != Connected {
		return frame.Response{}, ErrClosed
	}
	resp, err := c.x.Exchange(req)
	status := resp.Status
	if err != nil {
		if errors.Is(err, session.ErrClosed) {
			c.state = Disconnected
		}
		if !errors.Is(err, protocol.ErrTransport) {
			return frame.Response{}, err
		}
		status = protocol.StatusNone
		c.state = Disconnected
	}
	c.last = &Exchange{Subject: subject, Field: req.Name, Verb: req.Verb, Status: status}
	if err != nil {
		return frame.Response{}, err
	}
	if !status.OK() {
		return resp, &protocol.ProtocolError{Subject: subject, Verb: req.Verb, Status: status}
	}
	return resp, nil
}

func (c *Connection) getField(v Variable, field string, read *validate.Pipeline) (any, error) {
	resp, err := c.exchange(v.String(), frame.Get(field))
	if err != nil {
		return nil, err
	}
	out, err := read.Process(resp.Value)
	if err != nil {
		return nil, fmt.Errorf("merlin: decode %s %q: %w", v, resp.Value, err)
	}
	return out, nil
}

func (c *Connection) setField(v Variable, field, value string) error {
	_, err := c.exchange(v.String(), frame.Set(field, value))
	return err
}
