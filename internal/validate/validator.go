package validate

import (
	"fmt"
	"math"
	"strings"
)

// Validator checks a value against one rule.
type Validator[T any] interface {
	Validate(v T) error
	String() string
}

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type Integral interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type pass[T any] struct{}

// Pass accepts every value.
func Pass[T any]() Validator[T] { return pass[T]{} }

func (pass[T]) Validate(T) error { return nil }
func (pass[T]) String() string   { return "pass" }

type predicate[T any] struct {
	name string
	fn   func(T) bool
}

// Predicate wraps a named boolean rule.
func Predicate[T any](name string, fn func(T) bool) Validator[T] {
	return predicate[T]{name: name, fn: fn}
}

func (p predicate[T]) Validate(v T) error {
	if p.fn(v) {
		return nil
	}
	return invalid(p, v, "")
}

func (p predicate[T]) String() string { return p.name }

// Inclusion selects which range bounds are part of the interval.
type Inclusion uint8

const (
	IncludeLow Inclusion = 1 << iota
	IncludeHigh

	IncludeNone Inclusion = 0
	IncludeBoth           = IncludeLow | IncludeHigh
)

// RangeValidator checks numeric interval membership. Either bound may be
// absent.
type RangeValidator[T Number] struct {
	Low, High       T
	HasLow, HasHigh bool
	Inclusion       Inclusion
}

func Range[T Number](low, high T, inc Inclusion) RangeValidator[T] {
	return RangeValidator[T]{Low: low, High: high, HasLow: true, HasHigh: true, Inclusion: inc}
}

func LowerBound[T Number](low T, inclusive bool) RangeValidator[T] {
	r := RangeValidator[T]{Low: low, HasLow: true}
	if inclusive {
		r.Inclusion = IncludeLow
	}
	return r
}

func UpperBound[T Number](high T, inclusive bool) RangeValidator[T] {
	r := RangeValidator[T]{High: high, HasHigh: true}
	if inclusive {
		r.Inclusion = IncludeHigh
	}
	return r
}

func (r RangeValidator[T]) Validate(v T) error {
	if math.IsNaN(float64(v)) {
		return invalid(r, v, "not a number")
	}
	if r.HasLow {
		if r.Inclusion&IncludeLow != 0 && v < r.Low {
			return invalid(r, v, "below lower bound")
		}
		if r.Inclusion&IncludeLow == 0 && v <= r.Low {
			return invalid(r, v, "at or below lower bound")
		}
	}
	if r.HasHigh {
		if r.Inclusion&IncludeHigh != 0 && v > r.High {
			return invalid(r, v, "above upper bound")
		}
		if r.Inclusion&IncludeHigh == 0 && v >= r.High {
			return invalid(r, v, "at or above upper bound")
		}
	}
	return nil
}

func (r RangeValidator[T]) String() string {
	lo, hi := "(-inf", "+inf)"
	if r.HasLow {
		br := "("
		if r.Inclusion&IncludeLow != 0 {
			br = "["
		}
		lo = fmt.Sprintf("%s%v", br, r.Low)
	}
	if r.HasHigh {
		br := ")"
		if r.Inclusion&IncludeHigh != 0 {
			br = "]"
		}
		hi = fmt.Sprintf("%v%s", r.High, br)
	}
	return "range" + lo + ", " + hi
}

// ContainerValidator checks exact membership in a fixed set.
type ContainerValidator[T comparable] struct {
	values []T
	set    map[T]struct{}
}

func Container[T comparable](values ...T) ContainerValidator[T] {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return ContainerValidator[T]{values: values, set: set}
}

func (c ContainerValidator[T]) Validate(v T) error {
	if _, ok := c.set[v]; ok {
		return nil
	}
	return invalid(c, v, "not a member")
}

func (c ContainerValidator[T]) String() string {
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "in{" + strings.Join(parts, ",") + "}"
}

// Value accepts exactly one value.
func Value[T comparable](want T) Validator[T] {
	return Predicate(fmt.Sprintf("equals(%v)", want), func(v T) bool { return v == want })
}

const factorTolerance = 1e-9

// FactorValidator accepts exact multiples of Stride, within floating point
// rounding.
type FactorValidator[T Number] struct {
	Stride T
}

func Factor[T Number](stride T) FactorValidator[T] {
	return FactorValidator[T]{Stride: stride}
}

func (f FactorValidator[T]) Validate(v T) error {
	if f.Stride == 0 {
		if v == 0 {
			return nil
		}
		return invalid(f, v, "only zero is a multiple of zero")
	}
	q := float64(v) / float64(f.Stride)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return invalid(f, v, "not finite")
	}
	if math.Abs(q-math.Round(q)) > factorTolerance*math.Max(1, math.Abs(q)) {
		return invalid(f, v, "not a multiple of %v", f.Stride)
	}
	return nil
}

func (f FactorValidator[T]) String() string { return fmt.Sprintf("factor(%v)", f.Stride) }

// BitWidthValidator accepts values representable in N bits, two's
// complement when Signed.
type BitWidthValidator[T Integral] struct {
	N      int
	Signed bool
}

func BitWidth[T Integral](n int, signed bool) BitWidthValidator[T] {
	if n < 1 || n > 64 {
		panic(fmt.Sprintf("validate: bit width %d out of range 1..64", n))
	}
	return BitWidthValidator[T]{N: n, Signed: signed}
}

func (b BitWidthValidator[T]) Min() int64 {
	if !b.Signed {
		return 0
	}
	return int64(-1) << (b.N - 1)
}

func (b BitWidthValidator[T]) Max() uint64 {
	if b.Signed {
		return uint64(1)<<(b.N-1) - 1
	}
	if b.N == 64 {
		return math.MaxUint64
	}
	return uint64(1)<<b.N - 1
}

func (b BitWidthValidator[T]) Validate(v T) error {
	if v < 0 {
		if int64(v) < b.Min() {
			return invalid(b, v, "below %d", b.Min())
		}
		return nil
	}
	if uint64(v) > b.Max() {
		return invalid(b, v, "above %d", b.Max())
	}
	return nil
}

func (b BitWidthValidator[T]) String() string {
	if b.Signed {
		return fmt.Sprintf("int%d", b.N)
	}
	return fmt.Sprintf("uint%d", b.N)
}

type integer struct{}

// Integer accepts finite floats with no fractional part.
func Integer() Validator[float64] { return integer{} }

func (integer) Validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Trunc(v) != v {
		return invalid(integer{}, v, "not a whole number")
	}
	return nil
}

func (integer) String() string { return "integer" }

type typeOf[T any] struct{}

// TypeOf accepts values whose dynamic type is exactly T.
func TypeOf[T any]() Validator[any] { return typeOf[T]{} }

func (t typeOf[T]) Validate(v any) error {
	if _, ok := v.(T); ok {
		return nil
	}
	return invalid(t, v, "dynamic type is %T", v)
}

func (typeOf[T]) String() string { return "type(" + typeName[T]() + ")" }

// Len accepts sequences of exactly n elements.
func Len[T any](n int) Validator[[]T] {
	return Predicate(fmt.Sprintf("len(%d)", n), func(v []T) bool { return len(v) == n })
}
