package session

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/danmuck/merlinctl/internal/protocol"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/danmuck/merlinctl/internal/testutil/fakedevice"
	"github.com/danmuck/merlinctl/internal/testutil/testlog"
)

func TestDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := cfg.Delay(1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := cfg.Delay(2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := cfg.Delay(3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := cfg.Delay(6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}

func TestDelayJitterStaysWithinBand(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: time.Second, Jitter: true}
	rng := rand.New(rand.NewSource(7))
	for attempt := 2; attempt < 8; attempt++ {
		base := BackoffConfig{InitialDelay: cfg.InitialDelay, Multiplier: 2, MaxDelay: time.Second}.Delay(attempt, nil)
		got := cfg.Delay(attempt, rng)
		if got < base/2 || got > base*3/2 {
			t.Fatalf("attempt%d: %v outside [%v, %v]", attempt, got, base/2, base*3/2)
		}
	}
}

func TestSleepStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := BackoffConfig{InitialDelay: time.Hour, Multiplier: 1}
	if err := cfg.Sleep(ctx, 1, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExchangeRoundTrip(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().With("COLOURMODE", "1")
	s := New(dev.Pipe(t), DefaultConfig())

	resp, err := s.Exchange(frame.Get("COLOURMODE"))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if resp.Value != "1" || resp.Status != protocol.StatusUnderstood {
		t.Fatalf("unexpected response: %+v", resp)
	}

	resp, err = s.Exchange(frame.Set("COLOURMODE", "0"))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if v, _ := dev.Field("COLOURMODE"); v != "0" {
		t.Fatalf("device field not written: %q", v)
	}

	reqs := dev.Requests()
	if len(reqs) != 2 || reqs[0].Verb != protocol.VerbGet || reqs[1].Value != "0" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
}

func TestExchangeReturnsNonZeroStatusWithoutError(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().Fail(protocol.VerbSet, "THRESHOLD0", protocol.StatusOutOfRange)
	s := New(dev.Pipe(t), DefaultConfig())
	resp, err := s.Exchange(frame.Set("THRESHOLD0", "5000"))
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if resp.Status != protocol.StatusOutOfRange {
		t.Fatalf("unexpected status: %v", resp.Status)
	}
	if s.Closed() {
		t.Fatalf("device status must not close the session")
	}
}

func TestExchangeTransportFailureClosesSession(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().With("GAIN", "2").DropAt(2)
	s := New(dev.Pipe(t), DefaultConfig())
	if _, err := s.Exchange(frame.Get("GAIN")); err != nil {
		t.Fatalf("first exchange: %v", err)
	}
	resp, err := s.Exchange(frame.Get("GAIN"))
	var terr *protocol.TransportError
	if !errors.As(err, &terr) || terr.Op != "read" {
		t.Fatalf("expected read transport error, got %v", err)
	}
	if resp.Status != protocol.StatusNone {
		t.Fatalf("unexpected status: %v", resp.Status)
	}
	if !s.Closed() {
		t.Fatalf("expected session closed after socket error")
	}
	if _, err := s.Exchange(frame.Get("GAIN")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestExchangeRejectsUnframeableRequestWithoutIO(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New()
	s := New(dev.Pipe(t), DefaultConfig())
	if _, err := s.Exchange(frame.Set("FILENAME", "a,b")); !errors.Is(err, frame.ErrIllegalCharacter) {
		t.Fatalf("expected ErrIllegalCharacter, got %v", err)
	}
	if len(dev.Requests()) != 0 {
		t.Fatalf("unexpected requests: %+v", dev.Requests())
	}
}

func TestReadTimeoutIsTransportFailure(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	go func() {
		buf := make([]byte, 128)
		_, _ = server.Read(buf)
	}()
	cfg := DefaultConfig()
	cfg.ReadTimeout = 20 * time.Millisecond
	s := New(client, cfg)
	_, err := s.Exchange(frame.Command("ABORT"))
	if !errors.Is(err, protocol.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var nerr net.Error
	if !errors.As(err, &nerr) || !nerr.Timeout() {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestDialRequiresAddressAndConnects(t *testing.T) {
	testlog.Start(t)
	if _, err := Dial(context.Background(), " ", DefaultConfig()); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	dev := fakedevice.New().With("DETECTORSTATUS", "0")
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_ = dev.Serve(conn)
	}()

	s, err := Dial(context.Background(), ln.Addr().String(), DefaultConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer s.Close()
	resp, err := s.Exchange(frame.Get("DETECTORSTATUS"))
	if err != nil || resp.Value != "0" {
		t.Fatalf("unexpected exchange: %+v %v", resp, err)
	}
	if s.RemoteAddr() != ln.Addr().String() {
		t.Fatalf("unexpected remote addr: %q", s.RemoteAddr())
	}
}
