package merlin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/danmuck/merlinctl/internal/validate"
)

func (c *Connection) rawTrigger(v Variable, field string) (int, error) {
	out, err := c.getField(v, field, intRead)
	if err != nil {
		return 0, err
	}
	return out.(int), nil
}

func (c *Connection) setStartTrigger(e Entry, base int) error {
	raw, err := c.rawTrigger(e.Variable, e.Field)
	if err != nil {
		return err
	}
	_, mod := splitTrigger(raw)
	return c.setField(e.Variable, e.Field, strconv.Itoa(joinTrigger(base, mod)))
}

func (c *Connection) setTriggerModifier(e Entry, mod TriggerModifier) error {
	raw, err := c.rawTrigger(e.Variable, e.Field)
	if err != nil {
		return err
	}
	base, _ := splitTrigger(raw)
	return c.setField(e.Variable, e.Field, strconv.Itoa(joinTrigger(base, mod)))
}

func (c *Connection) getPath(e Entry) (any, error) {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		out, err := c.getField(e.Variable, field, e.Read)
		if err != nil {
			return nil, err
		}
		parts = append(parts, out.(string))
	}
	return strings.Join(parts, "/"), nil
}

func (c *Connection) setPath(e Entry, path string) error {
	i := strings.LastIndex(path, "/")
	values := []string{path[:i], path[i+1:]}
	for n, field := range e.Fields {
		if err := c.setField(e.Variable, field, values[n]); err != nil {
			return err
		}
	}
	return nil
}

// getDetectorFlags reads each detector's enable field and combines the
// results. Exchanges are recorded against subject.
func (c *Connection) getDetectorFlags(subject Variable) (Detector, error) {
	enabled := catalogue[VarEnabledDetectors]
	var flags Detector
	for i, bit := range detectors.All() {
		out, err := c.getField(subject, enabled.FieldFor(i+1), enabled.Read)
		if err != nil {
			return 0, err
		}
		if out.(bool) {
			flags |= bit
		}
	}
	return flags, nil
}

func (c *Connection) setDetectorFlags(e Entry, flags Detector) error {
	for i, bit := range detectors.All() {
		on, _ := validate.Format[bool]().Translate(flags&bit != 0)
		if err := c.setField(e.Variable, e.FieldFor(i+1), on); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) getPerDetector(e Entry) (any, error) {
	flags, err := c.getDetectorFlags(e.Variable)
	if err != nil {
		return nil, err
	}
	out := PerDetector{Detectors: flags}
	for _, i := range flags.Indices() {
		v, err := c.getField(e.Variable, e.FieldFor(i), e.Read)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, v)
	}
	return out, nil
}

func (c *Connection) setPerDetector(e Entry, w detectorWire) error {
	for _, i := range w.detectors.Indices() {
		if err := c.setField(e.Variable, e.FieldFor(i), w.value); err != nil {
			return err
		}
	}
	return nil
}

// setWithCompanion writes the field, then flags in Companion whether the
// value is non-empty.
func (c *Connection) setWithCompanion(e Entry, value string) error {
	if err := c.setField(e.Variable, e.Field, value); err != nil {
		return err
	}
	on, _ := validate.Format[bool]().Translate(value != "")
	return c.setField(e.Variable, e.Companion, on)
}

func (c *Connection) getAfterCommand(e Entry) (any, error) {
	if _, err := c.exchange(e.Variable.String(), frame.Command(e.Prerequisite)); err != nil {
		return nil, err
	}
	return c.getField(e.Variable, e.Field, e.Read)
}

func (c *Connection) setGuarded(e Entry, value string) error {
	guard := catalogue[e.Guard]
	got, err := c.getField(e.Variable, guard.Field, guard.Read)
	if err != nil {
		return err
	}
	if got != e.GuardWant {
		return fmt.Errorf("%w: %s requires %s %v, device reports %v", ErrPrecondition, e.Variable, e.Guard, e.GuardWant, got)
	}
	return c.setField(e.Variable, e.Field, value)
}
