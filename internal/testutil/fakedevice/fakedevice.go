// Package fakedevice is an in-process stand-in for the detector control
// service, for tests. It answers framed GET/SET/CMD requests from a field
// table and records every request it sees.
package fakedevice

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/danmuck/merlinctl/internal/protocol"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
)

// Device is safe for concurrent use by the serving goroutine and the test.
type Device struct {
	mu        sync.Mutex
	fields    map[string]string
	statuses  map[string]protocol.Status
	onCommand map[string]func(d *Device)
	requests  []frame.Request
	dropAt    int
	align     frame.Alignment
}

func New() *Device {
	return &Device{
		fields:    make(map[string]string),
		statuses:  make(map[string]protocol.Status),
		onCommand: make(map[string]func(d *Device)),
		align:     frame.AlignRight,
	}
}

// With preloads a field value.
func (d *Device) With(field, value string) *Device {
	d.Put(field, value)
	return d
}

func (d *Device) Put(field, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields[field] = value
}

func (d *Device) Field(field string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.fields[field]
	return v, ok
}

// Fail makes every verb request on name answer with status.
func (d *Device) Fail(verb protocol.Verb, name string, status protocol.Status) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[string(verb)+" "+name] = status
	return d
}

// OnCommand runs fn when the named command arrives.
func (d *Device) OnCommand(name string, fn func(d *Device)) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onCommand[name] = fn
	return d
}

// DropAt closes the connection instead of answering the nth request
// (1-based).
func (d *Device) DropAt(n int) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropAt = n
	return d
}

// Requests returns every request received so far.
func (d *Device) Requests() []frame.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]frame.Request(nil), d.requests...)
}

// Reset forgets recorded requests.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = nil
}

// Pipe starts serving one end of an in-memory connection and returns the
// other end.
func (d *Device) Pipe(t testing.TB) net.Conn {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Serve(server)
	}()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
		<-done
	})
	return client
}

// Serve answers requests on conn until it closes.
func (d *Device) Serve(conn net.Conn) error {
	defer conn.Close()
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		req, err := ParseRequest(string(buf[:n]))
		if err != nil {
			return err
		}
		reply, drop := d.handle(req)
		if drop {
			return nil
		}
		if _, err := conn.Write([]byte(reply)); err != nil {
			return err
		}
	}
}

func (d *Device) handle(req frame.Request) (string, bool) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	if d.dropAt > 0 && len(d.requests) == d.dropAt {
		d.mu.Unlock()
		return "", true
	}
	status, failing := d.statuses[string(req.Verb)+" "+req.Name]
	hook := d.onCommand[req.Name]
	value := ""
	switch {
	case failing:
	case req.Verb == protocol.VerbGet:
		v, ok := d.fields[req.Name]
		if !ok {
			status = protocol.StatusUnknownCommand
		}
		value = v
	case req.Verb == protocol.VerbSet:
		d.fields[req.Name] = req.Value
	}
	d.mu.Unlock()

	if req.Verb == protocol.VerbCmd && !failing && hook != nil {
		hook(d)
	}
	body := fmt.Sprintf(",%s,%s,%d", req.Verb, req.Name, int(status))
	if req.Verb == protocol.VerbGet {
		body = fmt.Sprintf(",%s,%s,%s,%d", req.Verb, req.Name, value, int(status))
	}
	return frame.Encode(body, d.align), false
}

// ParseRequest decodes one framed request.
func ParseRequest(raw string) (frame.Request, error) {
	prefix := frame.Prefix + ","
	if !strings.HasPrefix(raw, prefix) || len(raw) < len(prefix)+frame.LengthWidth {
		return frame.Request{}, fmt.Errorf("fakedevice: bad frame %q", raw)
	}
	body := raw[len(prefix)+frame.LengthWidth:]
	parts := strings.SplitN(strings.TrimPrefix(body, ","), ",", 3)
	if len(parts) < 2 {
		return frame.Request{}, fmt.Errorf("fakedevice: bad body %q", body)
	}
	req := frame.Request{Verb: protocol.Verb(parts[0]), Name: parts[1]}
	if len(parts) == 3 {
		req.Value = parts[2]
	}
	return req, nil
}
