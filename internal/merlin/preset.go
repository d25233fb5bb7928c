package merlin

import (
	"fmt"
)

// Step is one SET of a preset.
type Step struct {
	Variable Variable
	Value    any
}

// Preset is a named, ordered sequence of SETs with an optional closing
// command. A zero Exec sends no command.
type Preset struct {
	Name  string
	Steps []Step
	Exec  Command
}

// Validate checks every step locally, without touching a device.
func (p Preset) Validate() error {
	for i, st := range p.Steps {
		e, ok := Lookup(st.Variable)
		if !ok {
			return fmt.Errorf("preset %s step %d: %w: %d", p.Name, i, ErrUnknownVariable, int(st.Variable))
		}
		if !e.Settable() {
			return fmt.Errorf("preset %s step %d: %w: %s", p.Name, i, ErrReadOnly, st.Variable)
		}
		if err := e.Write.Validate(st.Value); err != nil {
			return fmt.Errorf("preset %s step %d (%s): %w", p.Name, i, st.Variable, err)
		}
	}
	if p.Exec != 0 && !p.Exec.Valid() {
		return fmt.Errorf("preset %s: %w: %d", p.Name, ErrUnknownCommand, int(p.Exec))
	}
	return nil
}

// Apply validates p, then runs its steps in order and stops at the first
// failure. Steps already applied stay applied.
func (c *Connection) Apply(p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for i, st := range p.Steps {
		if err := c.Set(st.Variable, st.Value); err != nil {
			return fmt.Errorf("preset %s step %d (%s): %w", p.Name, i, st.Variable, err)
		}
	}
	if p.Exec != 0 {
		if err := c.Exec(p.Exec); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	return nil
}

// FourDSTEM arms the detector for a 4D-STEM scan of scanSize frames:
// rising TTL start and stop triggers, continuous read/write, one trigger
// per scan, and the given counter depth.
func FourDSTEM(scanSize, counterDepth int) Preset {
	return Preset{
		Name: "4dstem",
		Steps: []Step{
			{VarStartingTrigger, TriggerRisingTTL},
			{VarEndingTrigger, TriggerRisingTTL},
			{VarContinuous, true},
			{VarFrameAmount, scanSize},
			{VarFrameAmountPerPulse, scanSize},
			{VarBitDepth, counterDepth},
		},
	}
}

// ImageAcquisition takes frames images of frameTime each.
func ImageAcquisition(frames, frameTime int) Preset {
	return Preset{
		Name: "acquire",
		Steps: []Step{
			{VarFrameAmount, frames},
			{VarFrameTime, frameTime},
		},
		Exec: CmdStart,
	}
}

// DACScan sweeps dac from start to stop in step increments, one frame of
// frameTime per point.
func DACScan(dac, frameTime, start, stop, step int) Preset {
	return Preset{
		Name: "dacscan",
		Steps: []Step{
			{VarFrameAmount, 1},
			{VarFrameTime, frameTime},
			{VarUseDAC, dac},
			{VarDACStart, start},
			{VarDACStop, stop},
			{VarDACStep, step},
		},
		Exec: CmdDAC,
	}
}
