package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// AnyString accepts anything with a faithful string form.
func AnyString() *Pipeline {
	return MustPipeline(Morph(Cast[string]())).Named("any_string")
}

// AnyFloat accepts numbers and numeric strings.
func AnyFloat() *Pipeline {
	return MustPipeline(
		NewStep(Cast[float64](), Predicate("finite", func(v float64) bool {
			return !math.IsNaN(v) && !math.IsInf(v, 0)
		})),
	).Named("any_float")
}

// AnyInt accepts integers, whole floats and numeric strings that fit in an
// int. Integer inputs and decimal strings convert exactly; everything else
// goes through float64.
func AnyInt() *Pipeline {
	return MustPipeline(Morph(Func("any_int", looseInt))).Named("any_int")
}

// StrictInt accepts only Go integer values.
func StrictInt() *Pipeline {
	return MustPipeline(Morph(Func("strict_int", func(v any) (int, error) {
		n, ok, err := integerValue(v)
		if !ok {
			return 0, fmt.Errorf("%T is not an integer type", v)
		}
		return n, err
	}))).Named("strict_int")
}

func looseInt(v any) (int, error) {
	if n, ok, err := integerValue(v); ok {
		return n, err
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
		if err == nil {
			return int(n), nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%s overflows int", s)
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	// float64(math.MinInt) is exactly -2^63; 2^63 itself is already out of range.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, fmt.Errorf("%v overflows int", f)
	}
	return int(f), nil
}

// integerValue converts Go integer types to int. ok is false for any other
// dynamic type.
func integerValue(v any) (n int, ok bool, err error) {
	switch x := v.(type) {
	case int:
		return x, true, nil
	case int8:
		return int(x), true, nil
	case int16:
		return int(x), true, nil
	case int32:
		return int(x), true, nil
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			return 0, true, fmt.Errorf("%d overflows int", x)
		}
		return int(x), true, nil
	case uint8:
		return int(x), true, nil
	case uint16:
		return int(x), true, nil
	case uint32:
		return int(x), true, nil
	case uint:
		if x > math.MaxInt {
			return 0, true, fmt.Errorf("%d overflows int", x)
		}
		return int(x), true, nil
	case uint64:
		if x > math.MaxInt {
			return 0, true, fmt.Errorf("%d overflows int", x)
		}
		return int(x), true, nil
	}
	return 0, false, nil
}

// AnyBool accepts booleans and the strings "true"/"false" in any case.
func AnyBool() *Pipeline {
	return MustPipeline(
		Morph(Cast[string]()),
		NewStep(Map("lower", strings.ToLower), Container("true", "false")).Temp(),
		Morph(ParseBool()),
	).Named("any_bool")
}

// BoundInt is an integer further restricted by v.
func BoundInt(v Validator[int]) *Pipeline {
	return MustPipeline(StrictInt().Stage(), Check(v)).Named("int " + v.String())
}

// LooseInt is any_int further restricted by v.
func LooseInt(v Validator[int]) *Pipeline {
	return MustPipeline(AnyInt().Stage(), Check(v)).Named("int " + v.String())
}

// BoundFloat is any_float further restricted by v.
func BoundFloat(v Validator[float64]) *Pipeline {
	return MustPipeline(AnyFloat().Stage(), Check(v)).Named("float " + v.String())
}

// Bits is an integer that fits in n bits.
func Bits(n int, signed bool) *Pipeline {
	return LooseInt(BitWidth[int](n, signed))
}

// Charset restricts a string to the given characters.
func Charset(allowed string) *Pipeline {
	return MustPipeline(
		NewStep(Map("runes", func(s string) []rune { return []rune(s) }), All[rune](Container([]rune(allowed)...))).Temp(),
	).Named(fmt.Sprintf("charset(%q)", allowed))
}

// EnumOf accepts a member, its name, or its integer value.
func EnumOf[E Enum](m Members[E]) *Pipeline {
	return MustPipeline(NewStep(EnumMember(m), Validator[E](m))).Named(m.String())
}

// Wire renders p's output in wire form.
func Wire[T any](p *Pipeline) *Pipeline {
	out, err := p.Then(MustPipeline(Morph(Format[T]())))
	if err != nil {
		panic(err)
	}
	return out.Named(p.String())
}
