package merlin

import (
	"fmt"
	"strings"
)

// Variable names one logical detector setting. The set is closed; each
// value has exactly one catalogue entry.
type Variable int

const (
	// acquisition
	VarColour Variable = iota + 1
	VarSum
	VarGain
	VarContinuous
	VarWriteBuffer
	VarCounters
	VarThreshold0
	VarThreshold1
	VarThreshold2
	VarThreshold3
	VarThreshold4
	VarThreshold5
	VarThreshold6
	VarThreshold7
	VarEnergy
	VarBitDepth
	VarFillMode
	VarFlatFieldFile
	VarVerbose
	VarMask
	VarFrameAmount
	VarFrameTime

	// triggers
	VarStartingTrigger
	VarEndingTrigger
	VarStartingTriggerModifier
	VarFrameAmountPerPulse
	VarOutTriggerTTL
	VarOutTriggerLVDS
	VarTTLInversion
	VarLVDSInversion
	VarTTLDelay
	VarLVDSDelay
	VarUseDelay
	VarUseTTLOut
	VarUseLVDSOut
	VarUseTTLIn
	VarUseLVDSIn

	// set-up
	VarDACFile
	VarDACValues
	VarInputConfig
	VarOutputConfig
	VarTrimMode
	VarTrimValue
	VarChipMode
	VarTrackDAC

	// threshold scan
	VarUseThreshold
	VarThresholdStart
	VarThresholdStop
	VarThresholdStep
	VarThresholdSteps

	// DAC scan
	VarUseDAC
	VarDACStart
	VarDACStop
	VarDACStep

	// file control
	VarPath
	VarDoSave
	VarSaveAllToOne
	VarImagesPerFile
	VarTimestamp

	// STEM control
	VarHorizontalPoints
	VarVerticalPoints
	VarTriggerMode
	VarTriggerCount
	VarLineSkip
	VarStartSkip
	VarEndSkip
	VarEnabledDetectors
	VarDetectorType
	VarDetectorMiddleH
	VarDetectorMiddleV
	VarDetectorOuterR
	VarDetectorInnerR

	// status
	VarStatus
	VarTemp
	VarChipTemp

	variableEnd
)

var variableNames = map[Variable]string{
	VarColour:                  "COLOUR",
	VarSum:                     "SUM",
	VarGain:                    "GAIN",
	VarContinuous:              "CONTINUOUS",
	VarWriteBuffer:             "WRITE_BUFFER",
	VarCounters:                "COUNTERS",
	VarThreshold0:              "THRESHOLD_0",
	VarThreshold1:              "THRESHOLD_1",
	VarThreshold2:              "THRESHOLD_2",
	VarThreshold3:              "THRESHOLD_3",
	VarThreshold4:              "THRESHOLD_4",
	VarThreshold5:              "THRESHOLD_5",
	VarThreshold6:              "THRESHOLD_6",
	VarThreshold7:              "THRESHOLD_7",
	VarEnergy:                  "ENERGY",
	VarBitDepth:                "BIT_DEPTH",
	VarFillMode:                "FILL_MODE",
	VarFlatFieldFile:           "FLAT_FIELD_FILE",
	VarVerbose:                 "VERBOSE",
	VarMask:                    "MASK",
	VarFrameAmount:             "FRAME_AMOUNT",
	VarFrameTime:               "FRAME_TIME",
	VarStartingTrigger:         "STARTING_TRIGGER",
	VarEndingTrigger:           "ENDING_TRIGGER",
	VarStartingTriggerModifier: "STARTING_TRIGGER_MODIFIER",
	VarFrameAmountPerPulse:     "FRAME_AMOUNT_PER_PULSE",
	VarOutTriggerTTL:           "OUT_TRIGGER_TTL",
	VarOutTriggerLVDS:          "OUT_TRIGGER_LVDS",
	VarTTLInversion:            "TTL_INVERSION",
	VarLVDSInversion:           "LVDS_INVERSION",
	VarTTLDelay:                "TTL_DELAY",
	VarLVDSDelay:               "LVDS_DELAY",
	VarUseDelay:                "USE_DELAY",
	VarUseTTLOut:               "USE_TTL_OUT",
	VarUseLVDSOut:              "USE_LVDS_OUT",
	VarUseTTLIn:                "USE_TTL_IN",
	VarUseLVDSIn:               "USE_LVDS_IN",
	VarDACFile:                 "DAC_FILE",
	VarDACValues:               "DAC_VALUES",
	VarInputConfig:             "INPUT_CONFIG",
	VarOutputConfig:            "OUTPUT_CONFIG",
	VarTrimMode:                "TRIM_MODE",
	VarTrimValue:               "TRIM_VALUE",
	VarChipMode:                "CHIP_MODE",
	VarTrackDAC:                "TRACK_DAC",
	VarUseThreshold:            "USE_THRESHOLD",
	VarThresholdStart:          "THRESHOLD_START",
	VarThresholdStop:           "THRESHOLD_STOP",
	VarThresholdStep:           "THRESHOLD_STEP",
	VarThresholdSteps:          "THRESHOLD_STEPS",
	VarUseDAC:                  "USE_DAC",
	VarDACStart:                "DAC_START",
	VarDACStop:                 "DAC_STOP",
	VarDACStep:                 "DAC_STEP",
	VarPath:                    "PATH",
	VarDoSave:                  "DO_SAVE",
	VarSaveAllToOne:            "SAVE_ALL_TO_ONE",
	VarImagesPerFile:           "IMAGES_PER_FILE",
	VarTimestamp:               "TIMESTAMP",
	VarHorizontalPoints:        "HORIZONTAL_POINTS",
	VarVerticalPoints:          "VERTICAL_POINTS",
	VarTriggerMode:             "TRIGGER_MODE",
	VarTriggerCount:            "TRIGGER_COUNT",
	VarLineSkip:                "LINE_SKIP",
	VarStartSkip:               "START_SKIP",
	VarEndSkip:                 "END_SKIP",
	VarEnabledDetectors:        "ENABLED_DETECTORS",
	VarDetectorType:            "DETECTOR_TYPE",
	VarDetectorMiddleH:         "DETECTOR_MIDDLE_H",
	VarDetectorMiddleV:         "DETECTOR_MIDDLE_V",
	VarDetectorOuterR:          "DETECTOR_OUTER_R",
	VarDetectorInnerR:          "DETECTOR_INNER_R",
	VarStatus:                  "STATUS",
	VarTemp:                    "TEMP",
	VarChipTemp:                "CHIP_TEMP",
}

func (v Variable) String() string {
	if name, ok := variableNames[v]; ok {
		return name
	}
	return unknownName("Variable", int(v))
}

// Valid reports whether v is a member of the closed set.
func (v Variable) Valid() bool { return v > 0 && v < variableEnd }

// Variables lists every variable in declaration order.
func Variables() []Variable {
	out := make([]Variable, 0, int(variableEnd)-1)
	for v := VarColour; v < variableEnd; v++ {
		out = append(out, v)
	}
	return out
}

// ParseVariable resolves a variable by name. Case is ignored and '-' may
// stand in for '_'.
func ParseVariable(name string) (Variable, error) {
	key := normalizeName(name)
	for v, n := range variableNames {
		if n == key {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// Command is a one-shot device action.
type Command int

const (
	CmdStart Command = iota + 1
	CmdStop
	CmdAbort
	CmdStartSoftTrigger
	CmdThreshold
	CmdDAC
	CmdShutdown
	CmdRestart
	CmdEqualiseNoise
	CmdReset
	CmdClearErrors
	CmdSingleSTEM
	CmdContinuousSTEM

	commandEnd
)

var commands = map[Command]struct{ name, wire string }{
	CmdStart:            {"START", "STARTACQUISITION"},
	CmdStop:             {"STOP", "STOPACQUISITION"},
	CmdAbort:            {"ABORT", "ABORT"},
	CmdStartSoftTrigger: {"START_SOFT_TRIGGER", "SOFTTRIGGER"},
	CmdThreshold:        {"THRESHOLD", "THSCAN"},
	CmdDAC:              {"DAC", "DACSCAN"},
	CmdShutdown:         {"SHUTDOWN", "STANDBY"},
	CmdRestart:          {"RESTART", "RESTART"},
	CmdEqualiseNoise:    {"EQUALISE_NOISE", "NOISEEQUALISATION"},
	CmdReset:            {"RESET", "RESET"},
	CmdClearErrors:      {"CLEAR_ERRORS", "CLEARERROR"},
	CmdSingleSTEM:       {"SINGLE_STEM", "SCANSTARTRECORD"},
	CmdContinuousSTEM:   {"CONTINUOUS_STEM", "SCANSTARTSEARCH"},
}

func (c Command) String() string {
	if e, ok := commands[c]; ok {
		return e.name
	}
	return unknownName("Command", int(c))
}

// Wire is the device-side command name.
func (c Command) Wire() string { return commands[c].wire }

func (c Command) Valid() bool { return c > 0 && c < commandEnd }

// Commands lists every command in declaration order.
func Commands() []Command {
	out := make([]Command, 0, int(commandEnd)-1)
	for c := CmdStart; c < commandEnd; c++ {
		out = append(out, c)
	}
	return out
}

func ParseCommand(name string) (Command, error) {
	key := normalizeName(name)
	for c, e := range commands {
		if e.name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "-", "_")
}
