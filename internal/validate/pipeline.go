package validate

import (
	"fmt"
	"reflect"
	"strings"
)

var anyType = reflect.TypeFor[any]()

// Pipeline is an ordered, type-chained sequence of stages acting as one
// Validator[any] and one Translator[any, any]. Pipelines are immutable
// once built and safe for concurrent use.
type Pipeline struct {
	name   string
	stages []Stage
	in     reflect.Type
	out    reflect.Type
}

// NewPipeline chains stages. A non-temporary stage's output type must be
// assignable to the next stage's input type; a temporary stage must accept
// the current type and leaves it unchanged.
func NewPipeline(stages ...Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return &Pipeline{in: anyType, out: anyType}, nil
	}
	in := stages[0].In()
	cur := in
	for i, st := range stages {
		if !assignable(cur, st.In()) {
			return nil, fmt.Errorf("%w: step %d (%s) takes %s, previous step yields %s",
				ErrTypeMismatch, i, st, st.In(), cur)
		}
		if !st.Temporary() {
			cur = st.Out()
		}
	}
	return &Pipeline{stages: append([]Stage(nil), stages...), in: in, out: cur}, nil
}

// MustPipeline is NewPipeline for static definitions; it panics on a type
// mismatch.
func MustPipeline(stages ...Stage) *Pipeline {
	p, err := NewPipeline(stages...)
	if err != nil {
		panic(err)
	}
	return p
}

// Concat joins pipelines end to end.
func Concat(first *Pipeline, rest ...*Pipeline) (*Pipeline, error) {
	out := first
	for _, p := range rest {
		next, err := out.Then(p)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Then appends q to p. The result takes p's input and yields q's output.
func (p *Pipeline) Then(q *Pipeline) (*Pipeline, error) {
	if !assignable(p.out, q.in) {
		return nil, fmt.Errorf("%w: %s yields %s, %s takes %s", ErrTypeMismatch, p, p.out, q, q.in)
	}
	stages := make([]Stage, 0, len(p.stages)+len(q.stages))
	stages = append(stages, p.stages...)
	stages = append(stages, q.stages...)
	in := p.in
	if len(p.stages) == 0 {
		in = q.in
	}
	return &Pipeline{stages: stages, in: in, out: q.out}, nil
}

// Named returns a copy of p that reports name in failures.
func (p *Pipeline) Named(name string) *Pipeline {
	cp := *p
	cp.name = name
	return &cp
}

func (p *Pipeline) In() reflect.Type  { return p.in }
func (p *Pipeline) Out() reflect.Type { return p.out }
func (p *Pipeline) Len() int          { return len(p.stages) }

func (p *Pipeline) String() string {
	if p.name != "" {
		return p.name
	}
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.String()
	}
	return "pipeline(" + strings.Join(names, " | ") + ")"
}

// Validate runs every stage's check against progressively translated data.
func (p *Pipeline) Validate(v any) error {
	_, err := p.run(v, true)
	return err
}

// Translate applies every non-temporary stage's translation in order.
func (p *Pipeline) Translate(v any) (any, error) {
	return p.run(v, false)
}

// Process validates v and returns its translation.
func (p *Pipeline) Process(v any) (any, error) {
	return p.run(v, true)
}

func (p *Pipeline) run(v any, check bool) (any, error) {
	cur := v
	for i, st := range p.stages {
		if !check && st.Temporary() {
			continue
		}
		var (
			out any
			err error
		)
		if check {
			out, err = st.validate(cur)
		} else {
			out, err = st.translate(cur)
		}
		if err != nil {
			return nil, &StepError{Index: i, Step: st.String(), Err: err}
		}
		if !st.Temporary() {
			cur = out
		}
	}
	return cur, nil
}

// Stage nests p as a single stage of another pipeline.
func (p *Pipeline) Stage() Stage { return nested{p: p} }

type nested struct {
	p    *Pipeline
	temp bool
}

func (n nested) In() reflect.Type  { return n.p.in }
func (n nested) Out() reflect.Type { return n.p.out }
func (n nested) Temporary() bool   { return n.temp }
func (n nested) String() string    { return n.p.String() }

func (n nested) validate(v any) (any, error)  { return n.p.run(v, true) }
func (n nested) translate(v any) (any, error) { return n.p.run(v, false) }

// Temp nests p as a temporary stage: it validates the value without
// carrying its translation forward.
func (p *Pipeline) Temp() Stage { return nested{p: p, temp: true} }

// Either is pipeline union: a value is validated and translated by the
// first member that accepts it. Members must share an output type.
func Either(first *Pipeline, rest ...*Pipeline) (*Pipeline, error) {
	members := append([]*Pipeline{first}, rest...)
	in := first.in
	for _, m := range rest {
		if m.out != first.out {
			return nil, fmt.Errorf("%w: union members yield %s and %s", ErrTypeMismatch, first.out, m.out)
		}
		if m.in != in {
			in = anyType
		}
	}
	u := union{members: members, in: in, out: first.out}
	return &Pipeline{stages: []Stage{u}, in: in, out: first.out}, nil
}

func MustEither(first *Pipeline, rest ...*Pipeline) *Pipeline {
	p, err := Either(first, rest...)
	if err != nil {
		panic(err)
	}
	return p
}

type union struct {
	members []*Pipeline
	in, out reflect.Type
}

func (u union) In() reflect.Type  { return u.in }
func (u union) Out() reflect.Type { return u.out }
func (u union) Temporary() bool   { return false }

func (u union) String() string {
	names := make([]string, len(u.members))
	for i, m := range u.members {
		names[i] = m.String()
	}
	return "either(" + strings.Join(names, ", ") + ")"
}

func (u union) validate(v any) (any, error) {
	var last error
	for _, m := range u.members {
		out, err := m.run(v, true)
		if err == nil {
			return out, nil
		}
		last = err
	}
	return nil, invalid(u, v, "no member accepted: %v", last)
}

func (u union) translate(v any) (any, error) {
	for _, m := range u.members {
		if _, err := m.run(v, true); err == nil {
			return m.run(v, false)
		}
	}
	return nil, untranslatable(u, v, u.out.String(), "no member accepted the value")
}

// Run validates v through p and asserts the translated type.
func Run[D any](p *Pipeline, v any) (D, error) {
	var zero D
	out, err := p.Process(v)
	if err != nil {
		return zero, err
	}
	d, ok := out.(D)
	if !ok {
		return zero, TranslationError{Translator: p.String(), Value: out, Expected: typeName[D](), Reason: "unexpected output type"}
	}
	return d, nil
}

func assignable(from, to reflect.Type) bool {
	return from == to || from.AssignableTo(to)
}
