package merlin

import (
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/merlinctl/internal/testutil/testlog"
	"github.com/danmuck/merlinctl/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueCoversEveryVariable(t *testing.T) {
	testlog.Start(t)
	require.Len(t, Variables(), len(catalogue))
	for _, v := range Variables() {
		e, ok := Lookup(v)
		require.True(t, ok, v.String())
		assert.Equal(t, v, e.Variable)
		assert.True(t, e.Gettable(), v.String())

		parsed, err := ParseVariable(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
}

func TestReadOnlyVariables(t *testing.T) {
	testlog.Start(t)
	readOnly := map[Variable]bool{
		VarStatus: true, VarTemp: true, VarChipTemp: true, VarUseTTLIn: true, VarUseLVDSIn: true,
	}
	for _, v := range Variables() {
		e, _ := Lookup(v)
		assert.Equal(t, !readOnly[v], e.Settable(), v.String())
	}
}

func TestSimpleVariablesRoundTrip(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		v    Variable
		in   any
		want any
	}{
		{VarColour, Colour, Colour},
		{VarColour, "monochrome", Monochrome},
		{VarColour, 2, Colour},
		{VarCounters, CounterZero | CounterOne, CounterZero | CounterOne},
		{VarCounters, "one", CounterOne},
		{VarWriteBuffer, true, true},
		{VarWriteBuffer, "False", false},
		{VarSum, "TRUE", true},
		{VarGain, "super_high", GainSuperHigh},
		{VarFillMode, FillDistribute, FillDistribute},
		{VarThreshold0, 12.5, 12.5},
		{VarEnergy, "0", 0.0},
		{VarBitDepth, 12, 12},
		{VarBitDepth, "6", 6},
		{VarFrameAmount, int64(1<<32 - 1), 1<<32 - 1},
		{VarFrameTime, 100.0, 100},
		{VarTTLDelay, 120, 120},
		{VarTrimValue, -31, -31},
		{VarDACStep, -255, -255},
		{VarEndingTrigger, TriggerFallingLVDS, TriggerFallingLVDS},
		{VarOutTriggerTTL, OutFrame, OutFrame},
		{VarOutTriggerLVDS, "clock", OutClock},
		{VarChipMode, ChipOne | ChipFour, ChipOne | ChipFour},
		{VarTriggerMode, ScanCustom, ScanCustom},
		{VarDACFile, "C:/dacs/chip_1.dacs", "C:/dacs/chip_1.dacs"},
		{VarHorizontalPoints, 10_000, 10_000},
	}
	for _, tc := range cases {
		e, _ := Lookup(tc.v)
		require.Equal(t, KindSimple, e.Kind, tc.v.String())
		wire, err := e.Write.Process(tc.in)
		require.NoError(t, err, "%s %v", tc.v, tc.in)
		require.IsType(t, "", wire)
		got, err := e.Read.Process(wire)
		require.NoError(t, err, "%s wire %q", tc.v, wire)
		assert.Equal(t, tc.want, got, "%s %v", tc.v, tc.in)
	}
}

func TestWireValues(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		v    Variable
		in   any
		want string
	}{
		{VarColour, Monochrome, "0"},
		{VarCounters, CounterZero, "0"},
		{VarCounters, CounterZero | CounterOne, "2"},
		{VarWriteBuffer, true, "0"},
		{VarSum, true, "1"},
		{VarThreshold3, 10.0, "10"},
		{VarThreshold3, "7.25", "7.25"},
		{VarChipMode, "ONE|THREE", "5"},
		{VarOutTriggerTTL, OutBusy, "7"},
	}
	for _, tc := range cases {
		e, _ := Lookup(tc.v)
		got, err := e.Write.Process(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %v", tc.v, tc.in)
	}
}

func TestWritePipelinesReject(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		v  Variable
		in any
	}{
		{VarThreshold0, 1000.0},
		{VarThreshold0, -0.5},
		{VarThreshold0, "warm"},
		{VarBitDepth, 8},
		{VarFrameAmount, int64(1 << 32)},
		{VarFrameAmount, -1},
		{VarFrameAmount, 1.5},
		{VarTTLDelay, 15},
		{VarDACValues, 512},
		{VarTrimMode, 2},
		{VarTrimValue, 32},
		{VarUseDAC, 28},
		{VarHorizontalPoints, 10_001},
		{VarEndingTrigger, TriggerSoft},
		{VarOutTriggerLVDS, OutFrame},
		{VarColour, 3},
		{VarColour, "purple"},
		{VarColour, true},
		{VarCounters, 4},
		{VarSum, 1},
		{VarDACFile, `C:\dacs\chip 1.dacs`},
		{VarPath, "run1"},
		{VarPath, "C:/data/"},
		{VarPath, "C:/" + strings.Repeat("d", maxPathLen)},
		{VarFlatFieldFile, strings.Repeat("f", maxPathLen+1)},
		{VarFrameTime, 1e30},
		{VarFrameTime, "1e30"},
		{VarImagesPerFile, "-1e25"},
		{VarTriggerCount, 9.3e18},
		{VarDetectorType, []any{DetectorOne}},
		{VarDetectorType, DetectorSetting{Detectors: DetectorOne, Value: 7}},
		{VarDetectorOuterR, DetectorSetting{Detectors: 4, Value: 10}},
		{VarEnabledDetectors, 0},
	}
	for _, tc := range cases {
		e, _ := Lookup(tc.v)
		_, err := e.Write.Process(tc.in)
		require.Error(t, err, "%s %v", tc.v, tc.in)
		var step *validate.StepError
		assert.True(t, errors.As(err, &step), "%s: %v", tc.v, err)
		assert.True(t, errors.Is(err, validate.ErrValidation) || errors.Is(err, validate.ErrTranslation), "%s: %v", tc.v, err)
	}
}

func TestTriggerModifierArithmetic(t *testing.T) {
	testlog.Start(t)
	base, mod := splitTrigger(7)
	assert.Equal(t, int(TriggerFallingTTL), base)
	assert.Equal(t, ModifierMulti, mod)

	base, mod = splitTrigger(5)
	assert.Equal(t, int(TriggerSoft), base)
	assert.Equal(t, ModifierSingle, mod)

	assert.Equal(t, 8, joinTrigger(int(TriggerRisingLVDS), ModifierMulti))
	// Internal+Multi and Soft+Single share raw value 5.
	assert.Equal(t, joinTrigger(int(TriggerInternal), ModifierMulti), joinTrigger(int(TriggerSoft), ModifierSingle))
}

func TestFieldTemplates(t *testing.T) {
	testlog.Start(t)
	e, _ := Lookup(VarDetectorType)
	assert.Equal(t, "SCANDETECTOR2TYPE", e.FieldFor(2))
	e, _ = Lookup(VarEnabledDetectors)
	assert.Equal(t, "SCANDETECTOR1ENABLE", e.FieldFor(1))
}

func TestParseNames(t *testing.T) {
	testlog.Start(t)
	v, err := ParseVariable(" frame-amount ")
	require.NoError(t, err)
	assert.Equal(t, VarFrameAmount, v)

	_, err = ParseVariable("FRAMES")
	assert.ErrorIs(t, err, ErrUnknownVariable)

	c, err := ParseCommand("start")
	require.NoError(t, err)
	assert.Equal(t, "STARTACQUISITION", c.Wire())
	assert.Len(t, Commands(), 13)

	_, err = ParseCommand("launch")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestEnumNames(t *testing.T) {
	testlog.Start(t)
	assert.Equal(t, "ZERO|ONE", (CounterZero | CounterOne).String())
	assert.Equal(t, "ONE|FOUR", (ChipOne | ChipFour).String())
	assert.Equal(t, "Detector(4)", Detector(4).String())
	assert.Equal(t, "RISING_LVDS", TriggerRisingLVDS.String())
	assert.Equal(t, "GainMode(9)", GainMode(9).String())
	assert.Equal(t, []int{1, 2}, (DetectorOne | DetectorTwo).Indices())
	assert.Nil(t, Detector(0).Indices())
}
