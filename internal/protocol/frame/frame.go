package frame

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danmuck/merlinctl/internal/protocol"
)

const (
	Prefix      = "MPX"
	LengthWidth = 10

	CommandPort = 6341
	DataPort    = 6342

	headerLen = len(Prefix) + 1 + LengthWidth
)

var (
	ErrEmptyName        = errors.New("frame: empty field or command name")
	ErrIllegalCharacter = errors.New("frame: comma in field, command or value")
	ErrBodyTooLarge     = errors.New("frame: body too large")
	ErrEmptyResponse    = errors.New("frame: empty response")
	ErrMalformed        = errors.New("frame: malformed response")
	ErrResponseTooLarge = errors.New("frame: response too large")
)

// Alignment selects the padding direction of the length field.
type Alignment int

const (
	// AlignLeft writes the length digits first and pads with trailing
	// zeros. The detector service expects this form.
	AlignLeft Alignment = iota
	// AlignRight is the conventional leading-zero form.
	AlignRight
)

func ParseAlignment(raw string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("frame: unknown length alignment %q", raw)
}

func (a Alignment) String() string {
	if a == AlignRight {
		return "right"
	}
	return "left"
}

// Limits constrains frame encode/decode memory use.
type Limits struct {
	MaxBodyBytes     int
	MaxResponseBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes:     4096,
		MaxResponseBytes: 1024,
	}
}

// Request is one exchange body.
type Request struct {
	Verb  protocol.Verb
	Name  string
	Value string
}

func Get(field string) Request        { return Request{Verb: protocol.VerbGet, Name: field} }
func Set(field, value string) Request { return Request{Verb: protocol.VerbSet, Name: field, Value: value} }
func Command(name string) Request     { return Request{Verb: protocol.VerbCmd, Name: name} }

// Body renders ",CMD,<name>", ",GET,<field>" or ",SET,<field>,<value>".
func (r Request) Body() string {
	if r.Verb == protocol.VerbSet {
		return "," + string(r.Verb) + "," + r.Name + "," + r.Value
	}
	return "," + string(r.Verb) + "," + r.Name
}

func (r Request) String() string {
	if r.Verb == protocol.VerbSet {
		return fmt.Sprintf("%s %s=%s", r.Verb, r.Name, r.Value)
	}
	return fmt.Sprintf("%s %s", r.Verb, r.Name)
}

func (r Request) check() error {
	if !r.Verb.Valid() {
		return fmt.Errorf("frame: unknown verb %q", r.Verb)
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if strings.Contains(r.Name, ",") || strings.Contains(r.Value, ",") {
		return ErrIllegalCharacter
	}
	return nil
}

// Length renders the fixed-width length field.
func Length(n int, align Alignment) string {
	digits := strconv.Itoa(n)
	pad := strings.Repeat("0", max(0, LengthWidth-len(digits)))
	if align == AlignRight {
		return pad + digits
	}
	return digits + pad
}

// Encode frames body as "MPX," + length + body.
func Encode(body string, align Alignment) string {
	return Prefix + "," + Length(len(body), align) + body
}

// EncodeRequest checks and frames one request.
func EncodeRequest(r Request, align Alignment, limits Limits) ([]byte, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	body := r.Body()
	if limits.MaxBodyBytes > 0 && len(body) > limits.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return []byte(Encode(body, align)), nil
}

func WriteRequest(w io.Writer, r Request, align Alignment, limits Limits) error {
	b, err := EncodeRequest(r, align, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Response is one decoded reply. Value is the second-to-last element and
// Status the last.
type Response struct {
	Raw    string
	Parts  []string
	Value  string
	Status protocol.Status
}

func ParseResponse(raw string) (Response, error) {
	s := strings.TrimRight(strings.ToValidUTF8(raw, ""), "\r\n\x00 ")
	if s == "" {
		return Response{}, ErrEmptyResponse
	}
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return Response{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	status, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Response{}, fmt.Errorf("%w: status %q", ErrMalformed, parts[len(parts)-1])
	}
	return Response{
		Raw:    s,
		Parts:  parts,
		Value:  parts[len(parts)-2],
		Status: protocol.Status(status),
	}, nil
}

// ReadResponse reads one reply. The first read is taken as the whole reply
// unless it opens with a conventional length field announcing more bytes,
// in which case the remainder is read in full.
func ReadResponse(r io.Reader, limits Limits) (Response, error) {
	size := limits.MaxResponseBytes
	if size <= 0 {
		size = DefaultLimits().MaxResponseBytes
	}
	buf := make([]byte, size)
	n, err := r.Read(buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return Response{}, ErrEmptyResponse
		}
		return Response{}, err
	}
	if want, ok := announced(buf[:n]); ok && want > n {
		if want > size {
			return Response{}, ErrResponseTooLarge
		}
		if _, err := io.ReadFull(r, buf[n:want]); err != nil {
			return Response{}, err
		}
		n = want
	}
	return ParseResponse(string(buf[:n]))
}

func announced(b []byte) (int, bool) {
	if len(b) < headerLen || string(b[:len(Prefix)+1]) != Prefix+"," {
		return 0, false
	}
	field := string(b[len(Prefix)+1 : headerLen])
	length, err := strconv.ParseUint(field, 10, 31)
	if err != nil || field[0] != '0' {
		return 0, false
	}
	return headerLen + int(length), true
}
