package merlin

import (
	"fmt"
	"strconv"

	"github.com/danmuck/merlinctl/internal/validate"
)

// Kind selects how a variable maps onto device fields.
type Kind int

const (
	// KindSimple is one field, one exchange.
	KindSimple Kind = iota
	// KindTriggerBase is the base start trigger; SET keeps the current
	// modifier folded into the raw value.
	KindTriggerBase
	// KindTriggerModifier is derived from the raw start trigger; SET keeps
	// the current base trigger.
	KindTriggerModifier
	// KindSplitPath is stored as a directory field and a name field.
	KindSplitPath
	// KindDetectorFlags combines one boolean field per detector into a flag.
	KindDetectorFlags
	// KindPerDetector is one templated field per enabled detector.
	KindPerDetector
	// KindSideEffect also writes Companion after the field.
	KindSideEffect
	// KindPrerequisite sends the Prerequisite command before reading.
	KindPrerequisite
	// KindGuarded may only be written while Guard reads GuardWant.
	KindGuarded
)

func (k Kind) String() string {
	return indexName(int(k), "Kind",
		"simple", "trigger_base", "trigger_modifier", "split_path", "detector_flags",
		"per_detector", "side_effect", "prerequisite", "guarded")
}

// Entry is one catalogue record. Read decodes the value of a GET response
// (per sub-field for composite kinds); Write turns caller input into the
// wire value. A nil Write marks a read-only variable.
type Entry struct {
	Variable Variable
	Kind     Kind
	// Field is the wire field, or a template containing placeholder.
	Field string
	// Fields are the directory and name fields of a split path.
	Fields       []string
	Companion    string
	Prerequisite string
	Guard        Variable
	GuardWant    any
	Read         *validate.Pipeline
	Write        *validate.Pipeline
}

func (e Entry) Gettable() bool { return e.Read != nil }
func (e Entry) Settable() bool { return e.Write != nil }

// FieldFor fills the detector placeholder of a templated field.
func (e Entry) FieldFor(detector int) string {
	out, _ := validate.Template(e.Field, placeholder).Translate(strconv.Itoa(detector))
	return out
}

// Lookup returns the catalogue entry for v.
func Lookup(v Variable) (Entry, bool) {
	e, ok := catalogue[v]
	return e, ok
}

var catalogue = buildCatalogue()

func simple(field string, read, write *validate.Pipeline) Entry {
	return Entry{Field: field, Read: read, Write: write}
}

func buildCatalogue() map[Variable]Entry {
	detectorInner := perDetectorWrite(dacWrite)
	c := map[Variable]Entry{
		VarColour:        simple("COLOURMODE", enumRead(colourModes, 1), enumWrite(colourModes, -1)),
		VarSum:           simple("CHARGESUMMING", boolRead, boolWrite),
		VarGain:          simple("GAIN", enumRead(gainModes, 0), enumWrite(gainModes, 0)),
		VarContinuous:    simple("CONTINUOUSRW", boolRead, boolWrite),
		VarWriteBuffer:   simple("RUNHEADLESS", invertedBoolRead, invertedBoolWrite),
		VarCounters:      simple("ENABLECOUNTER1", enumRead(counters, 1), enumWrite(counters, -1)),
		VarThreshold0:    simple("THRESHOLD0", floatRead, thresholdWrite),
		VarThreshold1:    simple("THRESHOLD1", floatRead, thresholdWrite),
		VarThreshold2:    simple("THRESHOLD2", floatRead, thresholdWrite),
		VarThreshold3:    simple("THRESHOLD3", floatRead, thresholdWrite),
		VarThreshold4:    simple("THRESHOLD4", floatRead, thresholdWrite),
		VarThreshold5:    simple("THRESHOLD5", floatRead, thresholdWrite),
		VarThreshold6:    simple("THRESHOLD6", floatRead, thresholdWrite),
		VarThreshold7:    simple("THRESHOLD7", floatRead, thresholdWrite),
		VarEnergy:        simple("OPERATINGENERGY", floatRead, thresholdWrite),
		VarBitDepth:      simple("COUNTERDEPTH", intRead, bitDepthWrite),
		VarFillMode:      simple("FILLMODE", enumRead(gapFills, 0), enumWrite(gapFills, 0)),
		VarFlatFieldFile: {Kind: KindSideEffect, Field: "FLATFIELDFILE", Companion: "FLATFIELDCORRECTION", Read: stringRead, Write: pathWrite},
		VarVerbose:       simple("USEAQUISITIONHEADERS", boolRead, boolWrite),
		VarMask:          simple("S/WMASKIMAGEDATA", boolRead, boolWrite),
		VarFrameAmount:   simple("NUMFRAMESTOACQUIRE", intRead, longIntWrite),
		VarFrameTime:     simple("ACQUISITIONTIME", intRead, anyIntWrite),

		VarStartingTrigger:         {Kind: KindTriggerBase, Field: "TRIGGERSTART", Read: triggerRead, Write: startTriggerWrite},
		VarEndingTrigger:           simple("TRIGGERSTOP", triggerRead, endTriggerWrite),
		VarStartingTriggerModifier: {Kind: KindTriggerModifier, Field: "TRIGGERSTART", Read: modifierRead, Write: modifierWrite},
		VarFrameAmountPerPulse:     simple("NUMFRAMESPERTRIGGER", intRead, longIntWrite),
		VarOutTriggerTTL:           simple("TriggerOutTTL", enumRead(outTriggers, 0), enumWrite(outTriggers, 0)),
		VarOutTriggerLVDS:          simple("TriggerOutLVDS", enumRead(outTriggers, 0), enumWriteWithin(outTriggers, validate.Range(0, 9, validate.IncludeBoth))),
		VarTTLInversion:            simple("TriggerOutTTLInvert", boolRead, boolWrite),
		VarLVDSInversion:           simple("TriggerOutLVDSInvert", boolRead, boolWrite),
		VarTTLDelay:                simple("TriggerInTTLDelay", intRead, delayWrite),
		VarLVDSDelay:               simple("TriggerInLVDSDelay", intRead, delayWrite),
		VarUseDelay:                simple("TriggerUseDelay", boolRead, boolWrite),
		VarUseTTLOut:               simple("SoftTriggerOutTTL", boolRead, boolWrite),
		VarUseLVDSOut:              simple("SoftTriggerOutLVDS", boolRead, boolWrite),
		VarUseTTLIn:                simple("TriggerInTTL", boolRead, nil),
		VarUseLVDSIn:               simple("TriggerInLVDS", boolRead, nil),

		VarDACFile:      simple("DACFILE", stringRead, pathWrite),
		VarDACValues:    simple("DACS", intRead, dacWrite),
		VarInputConfig:  simple("PIXELMATRIXLOADFILE", stringRead, pathWrite),
		VarOutputConfig: simple("PIXELMATRIXSAVEFILE", stringRead, pathWrite),
		VarTrimMode:     simple("SELECTTRIM", intRead, boundedWrite(0, 1)),
		VarTrimValue:    simple("ADJUSTTRIM", intRead, boundedWrite(-31, 31)),
		VarChipMode:     simple("SELECTCHIPS", enumRead(chips, 0), enumWrite(chips, 0)),
		VarTrackDAC:     simple("TRACKVFBK", boolRead, boolWrite),

		VarUseThreshold:   simple("THSCAN", intRead, boundedWrite(0, 7)),
		VarThresholdStart: simple("THSTART", floatRead, thresholdWrite),
		VarThresholdStop:  simple("THSTOP", floatRead, thresholdWrite),
		VarThresholdStep:  simple("THSTEP", floatRead, thresholdWrite),
		VarThresholdSteps: simple("THNUMSTEPS", intRead, dacWrite),

		VarUseDAC:   simple("DACSCANDAC", intRead, boundedWrite(0, 27)),
		VarDACStart: simple("DACSCANSTART", intRead, dacWrite),
		VarDACStop:  simple("DACSCANSTOP", intRead, dacWrite),
		VarDACStep:  simple("DACSCANSTEP", intRead, boundedWrite(-255, 255)),

		VarPath:          {Kind: KindSplitPath, Fields: []string{"FILEDIRECTORY", "FILENAME"}, Read: stringRead, Write: splitPathWrite},
		VarDoSave:        simple("FILEENABLE", boolRead, boolWrite),
		VarSaveAllToOne:  simple("SAVEALLTOFILE", boolRead, boolWrite),
		VarImagesPerFile: simple("IMAGESPERFILE", intRead, anyIntWrite),
		VarTimestamp:     simple("USETIMESTAMPING", boolRead, boolWrite),

		VarHorizontalPoints: simple("SCANX", intRead, stemLimitWrite),
		VarVerticalPoints:   simple("SCANY", intRead, stemLimitWrite),
		VarTriggerMode:      simple("SCANTRIGGERMODE", enumRead(scanTriggers, 0), enumWrite(scanTriggers, 0)),
		VarTriggerCount:     {Kind: KindGuarded, Field: "SCANTRIGGERFRAMECOUNT", Guard: VarTriggerMode, GuardWant: ScanCustom, Read: intRead, Write: anyIntWrite},
		VarLineSkip:         simple("SCANLINESKIP", intRead, stemLimitWrite),
		VarStartSkip:        simple("SCANSTARTSKIP", intRead, stemLimitWrite),
		VarEndSkip:          simple("SCANENDSKIP", intRead, stemLimitWrite),
		VarEnabledDetectors: {Kind: KindDetectorFlags, Field: "SCANDETECTOR" + placeholder + "ENABLE", Read: boolRead, Write: detectorFlagWrite},
		VarDetectorType:     perDetector("TYPE", enumRead(detectorTypes, 0), perDetectorWrite(enumWrite(detectorTypes, 0))),
		VarDetectorMiddleH:  perDetector("CENTREX", intRead, detectorInner),
		VarDetectorMiddleV:  perDetector("CENTREY", intRead, detectorInner),
		VarDetectorOuterR:   perDetector("OUTERRADIUS", intRead, detectorInner),
		VarDetectorInnerR:   perDetector("INNERRADIUS", intRead, detectorInner),

		VarStatus:   simple("DETECTORSTATUS", enumRead(detectorStates, 0), nil),
		VarTemp:     simple("TEMPERATURE", floatRead, nil),
		VarChipTemp: {Kind: KindPrerequisite, Field: "CHIPTEMPS", Prerequisite: "READCHIPTEMPS", Read: floatsRead},
	}
	for v, e := range c {
		e.Variable = v
		c[v] = e
	}
	if err := checkCatalogue(c); err != nil {
		panic(err)
	}
	return c
}

func perDetector(suffix string, read, write *validate.Pipeline) Entry {
	return Entry{Kind: KindPerDetector, Field: "SCANDETECTOR" + placeholder + suffix, Read: read, Write: write}
}

// checkCatalogue rejects a catalogue with a missing variable or an entry
// without a read rule.
func checkCatalogue(c map[Variable]Entry) error {
	for _, v := range Variables() {
		e, ok := c[v]
		if !ok {
			return fmt.Errorf("merlin: catalogue has no entry for %s", v)
		}
		if e.Read == nil {
			return fmt.Errorf("merlin: %s has no read rule", v)
		}
		if e.Kind == KindSimple && e.Field == "" {
			return fmt.Errorf("merlin: %s has no field", v)
		}
	}
	if len(c) != len(Variables()) {
		return fmt.Errorf("merlin: catalogue has %d entries for %d variables", len(c), len(Variables()))
	}
	return nil
}
