package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Enum is an integer-backed enumeration with printable member names.
type Enum interface {
	~int
	String() string
}

// Members is the closed member list of one enumeration.
type Members[E Enum] struct {
	name   string
	list   []E
	byName map[string]E
	flags  bool
}

func NewMembers[E Enum](name string, list ...E) Members[E] {
	byName := make(map[string]E, len(list))
	for _, e := range list {
		byName[strings.ToUpper(e.String())] = e
	}
	return Members[E]{name: name, list: list, byName: byName}
}

// NewFlags declares a bit-flag enumeration: any non-empty union of
// members is a legal value.
func NewFlags[E Enum](name string, list ...E) Members[E] {
	m := NewMembers(name, list...)
	m.flags = true
	return m
}

func (m Members[E]) Name() string { return m.name }
func (m Members[E]) All() []E     { return append([]E(nil), m.list...) }
func (m Members[E]) IsFlags() bool { return m.flags }

// Mask is the union of every member's bits.
func (m Members[E]) Mask() int {
	mask := 0
	for _, e := range m.list {
		mask |= int(e)
	}
	return mask
}

func (m Members[E]) Contains(e E) bool {
	if m.flags {
		return e > 0 && int(e)&^m.Mask() == 0
	}
	for _, x := range m.list {
		if x == e {
			return true
		}
	}
	return false
}

// Lookup resolves a member name; case and surrounding quotes are ignored.
// Flag enumerations also accept names joined with '|'.
func (m Members[E]) Lookup(name string) (E, bool) {
	key := strings.ToUpper(strings.Trim(strings.TrimSpace(name), `'"`))
	if e, ok := m.byName[key]; ok {
		return e, true
	}
	if !m.flags || !strings.Contains(key, "|") {
		return 0, false
	}
	var out E
	for _, part := range strings.Split(key, "|") {
		e, ok := m.byName[strings.TrimSpace(part)]
		if !ok {
			return 0, false
		}
		out |= e
	}
	return out, true
}

func (m Members[E]) Validate(e E) error {
	if m.Contains(e) {
		return nil
	}
	return invalid(m, e, "not a %s", m.name)
}

func (m Members[E]) String() string {
	if m.flags {
		return "flags(" + m.name + ")"
	}
	return "enum(" + m.name + ")"
}

// EnumByName resolves member names.
func EnumByName[E Enum](m Members[E]) Translator[string, E] {
	return Func("by_name("+m.name+")", func(v string) (E, error) {
		e, ok := m.Lookup(v)
		if !ok {
			return e, fmt.Errorf("no %s member named %q", m.name, v)
		}
		return e, nil
	})
}

// EnumByValue resolves integer member values.
func EnumByValue[E Enum](m Members[E]) Translator[int, E] {
	return Func("by_value("+m.name+")", func(v int) (E, error) {
		e := E(v)
		if !m.Contains(e) {
			return e, fmt.Errorf("no %s member with value %d", m.name, v)
		}
		return e, nil
	})
}

// EnumValue yields a member's integer value.
func EnumValue[E Enum]() Translator[E, int] {
	return Map("value", func(e E) int { return int(e) })
}

// EnumName yields a member's name.
func EnumName[E Enum]() Translator[E, string] {
	return Map("name", func(e E) string { return e.String() })
}

// EnumMember accepts a member, a member name, or an integer member value
// given as a number or a numeric string.
func EnumMember[E Enum](m Members[E]) Translator[any, E] {
	return Func("member("+m.name+")", func(v any) (E, error) {
		switch x := v.(type) {
		case E:
			return x, nil
		case string:
			if e, ok := m.Lookup(x); ok {
				return e, nil
			}
			if _, err := cast.ToFloat64E(strings.TrimSpace(x)); err != nil {
				return 0, fmt.Errorf("no %s member named %q", m.name, x)
			}
			v = strings.TrimSpace(x)
		case bool, nil:
			return 0, fmt.Errorf("%T is not a %s", v, m.name)
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, err
		}
		if math.Trunc(f) != f {
			return 0, fmt.Errorf("%v is not a whole %s value", v, m.name)
		}
		return E(int(f)), nil
	})
}
