package session

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/danmuck/merlinctl/internal/observability"
	"github.com/danmuck/merlinctl/internal/protocol"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

var (
	ErrAddressRequired = errors.New("session: device address required")
	ErrClosed          = errors.New("session: closed")
)

// Session owns one control socket. It is not safe for concurrent use.
type Session struct {
	conn   net.Conn
	cfg    Config
	closed bool
}

// Dial connects to addr. It makes a single attempt.
func Dial(ctx context.Context, addr string, cfg Config) (*Session, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, ErrAddressRequired
	}
	cfg = cfg.WithDefaults()
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Warn().Str("addr", addr).Err(err).Msg("session.Dial failed")
		return nil, &protocol.TransportError{Op: "dial", Subject: addr, Err: err}
	}
	log.Info().Str("addr", addr).Msg("session.Dial connected")
	return New(conn, cfg), nil
}

// New wraps an already connected socket.
func New(conn net.Conn, cfg Config) *Session {
	return &Session{conn: conn, cfg: cfg.WithDefaults()}
}

func (s *Session) Config() Config { return s.cfg }

func (s *Session) Closed() bool { return s.closed }

func (s *Session) RemoteAddr() string {
	if s.conn == nil || s.conn.RemoteAddr() == nil {
		return ""
	}
	return s.conn.RemoteAddr().String()
}

// Exchange sends req and blocks for its reply. Requests that cannot be
// framed fail before any I/O. A socket error closes the session and is
// returned as a *protocol.TransportError. A non-zero device status is not
// an error here; it is reported in the response.
func (s *Session) Exchange(req frame.Request) (frame.Response, error) {
	if s.closed {
		return frame.Response{}, ErrClosed
	}
	b, err := frame.EncodeRequest(req, s.cfg.Alignment, s.cfg.Limits)
	if err != nil {
		return frame.Response{}, err
	}

	start := time.Now()
	resp, op, err := s.roundTrip(b)
	rec := observability.ExchangeRecord{
		Verb:     string(req.Verb),
		Subject:  req.Name,
		Status:   int(resp.Status),
		Duration: time.Since(start),
	}
	if err != nil {
		rec.Status = int(protocol.StatusNone)
		rec.Err = err
		resp = frame.Response{Status: protocol.StatusNone}
		err = &protocol.TransportError{Op: op, Subject: req.String(), Err: err}
		_ = s.Close()
	}
	observability.RecordExchange(rec)
	observability.LogExchange(log.Logger, rec)
	return resp, err
}

func (s *Session) roundTrip(b []byte) (frame.Response, string, error) {
	if s.cfg.WriteTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return frame.Response{}, "write", err
		}
	}
	if _, err := s.conn.Write(b); err != nil {
		return frame.Response{}, "write", err
	}
	if s.cfg.ReadTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return frame.Response{}, "read", err
		}
	}
	resp, err := frame.ReadResponse(s.conn, s.cfg.Limits)
	if err != nil {
		return frame.Response{}, "read", err
	}
	return resp, "", nil
}

// Close releases the socket. Further calls are no-ops.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	log.Debug().Str("addr", s.RemoteAddr()).Msg("session.Close")
	return s.conn.Close()
}
