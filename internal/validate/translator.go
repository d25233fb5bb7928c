package validate

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Translator converts a value from one representation to another.
type Translator[S, D any] interface {
	Translate(v S) (D, error)
	String() string
}

type fn[S, D any] struct {
	name string
	f    func(S) (D, error)
}

// Func wraps a named pure conversion.
func Func[S, D any](name string, f func(S) (D, error)) Translator[S, D] {
	return fn[S, D]{name: name, f: f}
}

// Map wraps a named conversion that cannot fail.
func Map[S, D any](name string, f func(S) D) Translator[S, D] {
	return fn[S, D]{name: name, f: func(v S) (D, error) { return f(v), nil }}
}

func (t fn[S, D]) Translate(v S) (D, error) {
	d, err := t.f(v)
	if err != nil {
		var zero D
		return zero, untranslatable(t, v, typeName[D](), "%v", err)
	}
	return d, nil
}

func (t fn[S, D]) String() string { return t.name }

// Identity returns its input.
func Identity[T any]() Translator[T, T] {
	return Map("identity", func(v T) T { return v })
}

type castTo[D any] struct{}

// Cast converts loosely typed input (GUI strings, decoded TOML numbers)
// into D, failing when no faithful conversion exists.
func Cast[D any]() Translator[any, D] { return castTo[D]{} }

func (c castTo[D]) Translate(v any) (D, error) {
	var zero D
	if v == nil {
		return zero, untranslatable(c, v, typeName[D](), "nil value")
	}
	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(v)
	case int:
		out, err = cast.ToIntE(v)
	case int64:
		out, err = cast.ToInt64E(v)
	case float64:
		out, err = cast.ToFloat64E(v)
	case bool:
		out, err = cast.ToBoolE(v)
	default:
		d, ok := v.(D)
		if !ok {
			return zero, untranslatable(c, v, typeName[D](), "dynamic type is %T", v)
		}
		return d, nil
	}
	if err != nil {
		return zero, untranslatable(c, v, typeName[D](), "%v", err)
	}
	return out.(D), nil
}

func (castTo[D]) String() string { return "cast(" + typeName[D]() + ")" }

// Index picks element i of a sequence; negative i counts from the end.
func Index[T any](i int) Translator[[]T, T] {
	return Func(fmt.Sprintf("index(%d)", i), func(v []T) (T, error) {
		j := i
		if j < 0 {
			j += len(v)
		}
		if j < 0 || j >= len(v) {
			var zero T
			return zero, fmt.Errorf("index %d out of range for length %d", i, len(v))
		}
		return v[j], nil
	})
}

// Key looks up k in a map.
func Key[K comparable, V any](k K) Translator[map[K]V, V] {
	return Func(fmt.Sprintf("key(%v)", k), func(m map[K]V) (V, error) {
		v, ok := m[k]
		if !ok {
			return v, fmt.Errorf("missing key %v", k)
		}
		return v, nil
	})
}

// Attribute reads a named property through an accessor.
func Attribute[S, D any](name string, get func(S) D) Translator[S, D] {
	return Map("attr("+name+")", get)
}

// Template substitutes the input for every placeholder in tmpl.
func Template(tmpl, placeholder string) Translator[string, string] {
	return Map(fmt.Sprintf("template(%q)", tmpl), func(v string) string {
		return strings.ReplaceAll(tmpl, placeholder, v)
	})
}

// ParseBool accepts "true" or "false" in any letter case.
func ParseBool() Translator[string, bool] {
	return Func("parse_bool", func(v string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, fmt.Errorf("want true or false")
	})
}

// DigitBool decodes the device's "1"/"0" booleans.
func DigitBool() Translator[string, bool] {
	return Func("digit_bool", func(v string) (bool, error) {
		switch strings.TrimSpace(v) {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
		return false, fmt.Errorf("want 0 or 1")
	})
}

// SignedInt parses a decimal integer, handling a leading '-' before the
// digits are parsed.
func SignedInt() Translator[string, int] {
	return Func("signed_int", func(v string) (int, error) {
		s := strings.TrimSpace(v)
		neg := strings.HasPrefix(s, "-")
		if neg {
			s = s[1:]
		}
		u, err := strconv.ParseUint(s, 10, 63)
		if err != nil {
			return 0, err
		}
		if neg {
			return -int(u), nil
		}
		return int(u), nil
	})
}

func ParseFloat() Translator[string, float64] {
	return Func("parse_float", func(v string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	})
}

// Fields splits on runs of whitespace.
func Fields() Translator[string, []string] {
	return Map("fields", strings.Fields)
}

// Each applies t to every element.
func Each[S, D any](t Translator[S, D]) Translator[[]S, []D] {
	return Func("each("+t.String()+")", func(v []S) ([]D, error) {
		out := make([]D, len(v))
		for i, el := range v {
			d, err := t.Translate(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = d
		}
		return out, nil
	})
}

// Format renders a scalar in wire form: booleans as 1/0, floats in the
// shortest decimal form.
func Format[T any]() Translator[T, string] {
	return Func("format", func(v T) (string, error) {
		switch x := any(v).(type) {
		case string:
			return x, nil
		case bool:
			if x {
				return "1", nil
			}
			return "0", nil
		case int:
			return strconv.Itoa(x), nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		}
		return cast.ToStringE(v)
	})
}

// UnaryOp is a one-operand arithmetic operator.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Pos
	Invert
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "neg"
	case Pos:
		return "pos"
	case Invert:
		return "invert"
	}
	return fmt.Sprintf("unary(%d)", int(op))
}

func Unary[T Number](op UnaryOp) Translator[T, T] {
	return Func(op.String(), func(v T) (T, error) {
		switch op {
		case Neg:
			return -v, nil
		case Pos:
			return v, nil
		case Invert:
			if isFloat[T]() {
				return v, fmt.Errorf("bitwise invert of a float")
			}
			return T(^int64(v)), nil
		}
		return v, fmt.Errorf("unknown operator %v", op)
	})
}

// BinaryOp is a two-operand arithmetic or bitwise operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	FloorDiv
	Pow
	BitOr
	BitAnd
	BitXor
)

var binaryNames = [...]string{"add", "sub", "mul", "div", "floordiv", "pow", "or", "and", "xor"}

func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return fmt.Sprintf("binary(%d)", int(op))
}

// Binary applies op with a fixed operand: v op operand, or operand op v
// when reversed.
func Binary[T Number](op BinaryOp, operand T, reversed bool) Translator[T, T] {
	name := fmt.Sprintf("%s(%v)", op, operand)
	if reversed {
		name = fmt.Sprintf("%s(%v, _)", op, operand)
	}
	return Func(name, func(v T) (T, error) {
		a, b := v, operand
		if reversed {
			a, b = b, a
		}
		return arith(op, a, b)
	})
}

func arith[T Number](op BinaryOp, a, b T) (T, error) {
	float := isFloat[T]()
	switch op {
	case Add:
		return a + b, nil
	case Sub:
		return a - b, nil
	case Mul:
		return a * b, nil
	case Div:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		if !float && int64(a)%int64(b) != 0 {
			return 0, fmt.Errorf("inexact integer division %v / %v", a, b)
		}
		return a / b, nil
	case FloorDiv:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return T(math.Floor(float64(a) / float64(b))), nil
	case Pow:
		r := math.Pow(float64(a), float64(b))
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, fmt.Errorf("%v ** %v is not finite", a, b)
		}
		if !float && math.Trunc(r) != r {
			return 0, fmt.Errorf("%v ** %v is not an integer", a, b)
		}
		return T(r), nil
	case BitOr, BitAnd, BitXor:
		if float {
			return 0, fmt.Errorf("bitwise %s of a float", op)
		}
		x, y := int64(a), int64(b)
		switch op {
		case BitOr:
			return T(x | y), nil
		case BitAnd:
			return T(x & y), nil
		default:
			return T(x ^ y), nil
		}
	}
	return 0, fmt.Errorf("unknown operator %v", op)
}

func isFloat[T Number]() bool {
	half := 0.5
	return T(half) != 0
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
