package validate

import "reflect"

// Stage is one type-erased element of a Pipeline.
type Stage interface {
	In() reflect.Type
	Out() reflect.Type
	Temporary() bool
	String() string

	// validate translates and checks v, returning the translated value.
	validate(v any) (any, error)
	translate(v any) (any, error)
}

// Step couples one Translator with one Validator: translate, then check
// the translated value. A temporary step checks a derived view of the
// value and passes its input through unchanged.
type Step[S, D any] struct {
	translator Translator[S, D]
	validator  Validator[D]
	temporary  bool
}

func NewStep[S, D any](t Translator[S, D], v Validator[D]) Step[S, D] {
	return Step[S, D]{translator: t, validator: v}
}

// Morph is a translate-only step.
func Morph[S, D any](t Translator[S, D]) Step[S, D] {
	return NewStep(t, Pass[D]())
}

// Check is a validate-only step.
func Check[T any](v Validator[T]) Step[T, T] {
	return NewStep(Identity[T](), v)
}

func (s Step[S, D]) Temp() Step[S, D] {
	s.temporary = true
	return s
}

func (s Step[S, D]) Temporary() bool   { return s.temporary }
func (s Step[S, D]) In() reflect.Type  { return reflect.TypeFor[S]() }
func (s Step[S, D]) Out() reflect.Type { return reflect.TypeFor[D]() }

func (s Step[S, D]) String() string {
	name := s.translator.String() + " -> " + s.validator.String()
	if s.temporary {
		name += " (temporary)"
	}
	return name
}

func (s Step[S, D]) Translate(v S) (D, error) {
	return s.translator.Translate(v)
}

func (s Step[S, D]) Validate(v S) error {
	d, err := s.translator.Translate(v)
	if err != nil {
		return err
	}
	return s.validator.Validate(d)
}

func (s Step[S, D]) validate(v any) (any, error) {
	in, err := s.input(v)
	if err != nil {
		return nil, err
	}
	d, err := s.translator.Translate(in)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s Step[S, D]) translate(v any) (any, error) {
	in, err := s.input(v)
	if err != nil {
		return nil, err
	}
	return s.translator.Translate(in)
}

func (s Step[S, D]) input(v any) (S, error) {
	if in, ok := v.(S); ok {
		return in, nil
	}
	var zero S
	if v == nil && reflect.TypeFor[S]().Kind() == reflect.Interface {
		return zero, nil
	}
	return zero, TranslationError{
		Translator: s.translator.String(),
		Value:      v,
		Expected:   typeName[S](),
		Reason:     "unexpected input type",
	}
}
