package validate

import (
	"fmt"
	"strings"
)

// UnionValidator passes when any member passes. Members run in order and
// the first success wins.
type UnionValidator[T any] struct {
	members []Validator[T]
}

func Union[T any](first Validator[T], rest ...Validator[T]) UnionValidator[T] {
	return UnionValidator[T]{members: append([]Validator[T]{first}, rest...)}
}

func (u UnionValidator[T]) Validate(v T) error {
	var last error
	for _, m := range u.members {
		if last = m.Validate(v); last == nil {
			return nil
		}
	}
	return invalid(u, v, "no member accepted: %v", last)
}

func (u UnionValidator[T]) String() string { return "union(" + joinNames(u.members) + ")" }

// Mode is the pass-count rule of a Combination.
type Mode int

const (
	And Mode = iota
	Or
	Xor
)

func (m Mode) String() string {
	switch m {
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// CombinationValidator counts passing members: And needs all, Or at least
// one, Xor exactly one.
type CombinationValidator[T any] struct {
	mode    Mode
	members []Validator[T]
}

func Combination[T any](mode Mode, members ...Validator[T]) CombinationValidator[T] {
	return CombinationValidator[T]{mode: mode, members: members}
}

func (c CombinationValidator[T]) Validate(v T) error {
	passed := 0
	for _, m := range c.members {
		if m.Validate(v) == nil {
			passed++
		}
	}
	ok := false
	switch c.mode {
	case And:
		ok = passed == len(c.members)
	case Or:
		ok = passed >= 1
	case Xor:
		ok = passed == 1
	}
	if ok {
		return nil
	}
	return invalid(c, v, "%d of %d members passed", passed, len(c.members))
}

func (c CombinationValidator[T]) String() string {
	return c.mode.String() + "(" + joinNames(c.members) + ")"
}

// BranchValidator runs only the selected member. The selection is mutable,
// so a Branch shared between goroutines must use ValidateAt instead of
// Select.
type BranchValidator[T any] struct {
	members []Validator[T]
	active  int
}

func Branch[T any](members ...Validator[T]) *BranchValidator[T] {
	return &BranchValidator[T]{members: members}
}

func (b *BranchValidator[T]) Select(i int) error {
	if i < 0 || i >= len(b.members) {
		return fmt.Errorf("%w: %d of %d", ErrBranchIndex, i, len(b.members))
	}
	b.active = i
	return nil
}

func (b *BranchValidator[T]) Active() int { return b.active }

func (b *BranchValidator[T]) Validate(v T) error {
	return b.ValidateAt(b.active, v)
}

// ValidateAt validates against member i without changing the selection.
func (b *BranchValidator[T]) ValidateAt(i int, v T) error {
	if i < 0 || i >= len(b.members) {
		return fmt.Errorf("%w: %d of %d", ErrBranchIndex, i, len(b.members))
	}
	return b.members[i].Validate(v)
}

func (b *BranchValidator[T]) String() string {
	return fmt.Sprintf("branch[%d](%s)", b.active, joinNames(b.members))
}

type all[T any] struct {
	inner Validator[T]
}

// All applies inner to every element.
func All[T any](inner Validator[T]) Validator[[]T] { return all[T]{inner: inner} }

func (a all[T]) Validate(v []T) error {
	for i, el := range v {
		if err := a.inner.Validate(el); err != nil {
			return invalid(a, v, "element %d: %v", i, err)
		}
	}
	return nil
}

func (a all[T]) String() string { return "all(" + a.inner.String() + ")" }

type not[T any] struct {
	inner Validator[T]
}

// Not passes exactly when inner fails.
func Not[T any](inner Validator[T]) Validator[T] { return not[T]{inner: inner} }

func (n not[T]) Validate(v T) error {
	if n.inner.Validate(v) == nil {
		return invalid(n, v, "")
	}
	return nil
}

func (n not[T]) String() string { return "not(" + n.inner.String() + ")" }

func joinNames[T any](vs []Validator[T]) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}
