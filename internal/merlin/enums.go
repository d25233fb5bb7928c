package merlin

import (
	"fmt"
	"strings"

	"github.com/danmuck/merlinctl/internal/validate"
)

// ColourMode selects monochrome or colour counting. Catalogue values are
// one above the device's.
type ColourMode int

const (
	Monochrome ColourMode = 1
	Colour     ColourMode = 2
)

func (c ColourMode) String() string {
	switch c {
	case Monochrome:
		return "MONOCHROME"
	case Colour:
		return "COLOUR"
	}
	return unknownName("ColourMode", int(c))
}

// Counter is a flag set of the two pixel counters. The device field holds
// the flag value minus one.
type Counter int

const (
	CounterZero Counter = 1 << iota
	CounterOne
)

func (c Counter) String() string {
	return flagString(int(c), "Counter", []flagName{{int(CounterZero), "ZERO"}, {int(CounterOne), "ONE"}})
}

type GainMode int

const (
	GainSuperLow GainMode = iota
	GainLow
	GainHigh
	GainSuperHigh
)

func (g GainMode) String() string {
	return indexName(int(g), "GainMode", "SUPER_LOW", "LOW", "HIGH", "SUPER_HIGH")
}

// GapFill is how the pixels between chips are filled.
type GapFill int

const (
	FillNone GapFill = iota
	FillZero
	FillDistribute
	FillInterpolate
)

func (g GapFill) String() string {
	return indexName(int(g), "GapFill", "NONE", "ZERO", "DISTRIBUTE", "INTERPOLATE")
}

// Trigger is an acquisition start or stop source.
type Trigger int

const (
	TriggerInternal Trigger = iota
	TriggerRisingTTL
	TriggerFallingTTL
	TriggerRisingLVDS
	TriggerFallingLVDS
	TriggerSoft
)

func (t Trigger) String() string {
	return indexName(int(t), "Trigger", "INTERNAL", "RISING_TTL", "FALLING_TTL", "RISING_LVDS", "FALLING_LVDS", "SOFT")
}

// TriggerModifier is folded into the raw start trigger value: Multi adds
// triggerStride.
type TriggerModifier int

const (
	ModifierSingle TriggerModifier = 1
	ModifierMulti  TriggerModifier = 2
)

func (m TriggerModifier) String() string {
	switch m {
	case ModifierSingle:
		return "SINGLE"
	case ModifierMulti:
		return "MULTI"
	}
	return unknownName("TriggerModifier", int(m))
}

// OutTrigger is what drives an output trigger line.
type OutTrigger int

const (
	OutTTL OutTrigger = iota
	OutLVDS
	OutTTLDelayed
	OutLVDSDelayed
	OutFollowShutter
	OutOnePerBurst
	OutShutterAndSensor
	OutBusy
	OutSoft
	OutClock
	OutFrame
)

func (o OutTrigger) String() string {
	return indexName(int(o), "OutTrigger",
		"TTL", "LVDS", "TTL_DELAYED", "LVDS_DELAYED", "FOLLOW_SHUTTER", "ONE_PER_BURST",
		"SHUTTER_AND_SENSOR", "BUSY", "SOFT", "CLOCK", "FRAME")
}

// Chip is a flag set of the four sensor chips.
type Chip int

const (
	ChipOne Chip = 1 << iota
	ChipTwo
	ChipThree
	ChipFour
)

func (c Chip) String() string {
	return flagString(int(c), "Chip", []flagName{
		{int(ChipOne), "ONE"}, {int(ChipTwo), "TWO"}, {int(ChipThree), "THREE"}, {int(ChipFour), "FOUR"},
	})
}

// Detector is a flag set of the two virtual STEM detectors.
type Detector int

const (
	DetectorOne Detector = 1 << iota
	DetectorTwo
)

func (d Detector) String() string {
	return flagString(int(d), "Detector", []flagName{{int(DetectorOne), "ONE"}, {int(DetectorTwo), "TWO"}})
}

// Indices lists the 1-based detector numbers set in d, ascending.
func (d Detector) Indices() []int {
	var out []int
	for i, bit := range []Detector{DetectorOne, DetectorTwo} {
		if d&bit != 0 {
			out = append(out, i+1)
		}
	}
	return out
}

type DetectorType int

const (
	DetectorStandard DetectorType = iota
	DetectorDPC
	DetectorCOM
)

func (d DetectorType) String() string {
	return indexName(int(d), "DetectorType", "STANDARD", "DPC", "COM")
}

// ScanTrigger is the STEM scan trigger granularity.
type ScanTrigger int

const (
	ScanPixel ScanTrigger = iota
	ScanLine
	ScanCustom
)

func (s ScanTrigger) String() string {
	return indexName(int(s), "ScanTrigger", "PIXEL", "LINE", "CUSTOM")
}

type DetectorStatus int

const (
	StatusIdle DetectorStatus = iota
	StatusBusy
	StatusStandby
	StatusError
	StatusArmed
	StatusInitialising
)

func (s DetectorStatus) String() string {
	return indexName(int(s), "DetectorStatus", "IDLE", "BUSY", "STANDBY", "ERROR", "ARMED", "INITIALISING")
}

var (
	colourModes      = validate.NewMembers("ColourMode", Monochrome, Colour)
	counters         = validate.NewFlags("Counter", CounterZero, CounterOne)
	gainModes        = validate.NewMembers("GainMode", GainSuperLow, GainLow, GainHigh, GainSuperHigh)
	gapFills         = validate.NewMembers("GapFill", FillNone, FillZero, FillDistribute, FillInterpolate)
	triggers         = validate.NewMembers("Trigger", TriggerInternal, TriggerRisingTTL, TriggerFallingTTL, TriggerRisingLVDS, TriggerFallingLVDS, TriggerSoft)
	triggerModifiers = validate.NewMembers("TriggerModifier", ModifierSingle, ModifierMulti)
	outTriggers      = validate.NewMembers("OutTrigger",
		OutTTL, OutLVDS, OutTTLDelayed, OutLVDSDelayed, OutFollowShutter, OutOnePerBurst,
		OutShutterAndSensor, OutBusy, OutSoft, OutClock, OutFrame)
	chips          = validate.NewFlags("Chip", ChipOne, ChipTwo, ChipThree, ChipFour)
	detectors      = validate.NewFlags("Detector", DetectorOne, DetectorTwo)
	detectorTypes  = validate.NewMembers("DetectorType", DetectorStandard, DetectorDPC, DetectorCOM)
	scanTriggers   = validate.NewMembers("ScanTrigger", ScanPixel, ScanLine, ScanCustom)
	detectorStates = validate.NewMembers("DetectorStatus", StatusIdle, StatusBusy, StatusStandby, StatusError, StatusArmed, StatusInitialising)
)

type flagName struct {
	bit  int
	name string
}

func flagString(v int, kind string, names []flagName) string {
	var parts []string
	rest := v
	for _, f := range names {
		if v&f.bit != 0 {
			parts = append(parts, f.name)
			rest &^= f.bit
		}
	}
	if len(parts) == 0 || rest != 0 {
		return unknownName(kind, v)
	}
	return strings.Join(parts, "|")
}

func indexName(v int, kind string, names ...string) string {
	if v < 0 || v >= len(names) {
		return unknownName(kind, v)
	}
	return names[v]
}

func unknownName(kind string, v int) string {
	return fmt.Sprintf("%s(%d)", kind, v)
}
