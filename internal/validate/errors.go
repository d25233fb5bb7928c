package validate

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validate: validation failed")
	ErrTranslation  = errors.New("validate: translation failed")
	ErrTypeMismatch = errors.New("validate: pipeline type mismatch")
	ErrBranchIndex  = errors.New("validate: branch index out of range")
)

// ValidationError reports a value that failed a rule.
type ValidationError struct {
	Rule   string
	Value  any
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("validate: %s rejected %#v", e.Rule, e.Value)
	}
	return fmt.Sprintf("validate: %s rejected %#v: %s", e.Rule, e.Value, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TranslationError reports a value that could not be shaped into the
// expected representation.
type TranslationError struct {
	Translator string
	Value      any
	Expected   string
	Reason     string
}

func (e TranslationError) Error() string {
	msg := fmt.Sprintf("validate: %s cannot translate %#v", e.Translator, e.Value)
	if e.Expected != "" {
		msg += " into " + e.Expected
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e TranslationError) Is(target error) bool {
	return target == ErrTranslation
}

// StepError names the pipeline step that produced Err.
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func invalid(rule fmt.Stringer, v any, format string, args ...any) error {
	return ValidationError{Rule: rule.String(), Value: v, Reason: fmt.Sprintf(format, args...)}
}

func untranslatable(t fmt.Stringer, v any, expected string, format string, args ...any) error {
	return TranslationError{Translator: t.String(), Value: v, Expected: expected, Reason: fmt.Sprintf(format, args...)}
}
