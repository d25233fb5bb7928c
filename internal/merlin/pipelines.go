package merlin

import (
	"fmt"
	"strings"

	"github.com/danmuck/merlinctl/internal/validate"
	"github.com/spf13/cast"
)

const (
	// triggerStride separates single from multi start triggers in the raw
	// TRIGGERSTART value.
	triggerStride = 5

	// placeholder is replaced by a 1-based detector number in templated
	// field names.
	placeholder = "<>"

	pathChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_/.-:"
	// maxPathLen keeps path SETs well inside the default frame body limit.
	maxPathLen = 1024
)

// Write pipelines take loosely typed caller input and yield the wire value.
var (
	boolWrite         = validate.Wire[bool](validate.AnyBool())
	invertedBoolWrite = validate.MustPipeline(
		validate.AnyBool().Stage(),
		validate.Morph(validate.Map("not", func(b bool) bool { return !b })),
		validate.Morph(validate.Format[bool]()),
	).Named("inverted_bool")

	thresholdWrite = validate.Wire[float64](validate.BoundFloat(validate.Range(0.0, 1000.0, validate.IncludeLow)))
	bitDepthWrite  = validate.Wire[int](validate.LooseInt(validate.Container(1, 6, 12)))
	longIntWrite   = validate.Wire[int](validate.Bits(32, false))
	anyIntWrite    = validate.Wire[int](validate.AnyInt())
	dacWrite       = validate.Wire[int](validate.Bits(9, false))
	stemLimitWrite = boundedWrite(0, 10_000)
	delayWrite     = validate.Wire[int](validate.LooseInt(validate.Combination[int](validate.And,
		validate.BitWidth[int](32, false),
		validate.Factor(10),
	)))

	pathWrite = validate.MustPipeline(
		validate.AnyString().Stage(),
		validate.Charset(pathChars).Stage(),
		validate.Check(validate.Predicate(fmt.Sprintf("at most %d bytes", maxPathLen), func(p string) bool {
			return len(p) <= maxPathLen
		})),
	).Named("merlin_path")
	// A leading "/" alone leaves the directory empty.
	splitPathWrite = validate.MustPipeline(
		pathWrite.Stage(),
		validate.Check(validate.Predicate("directory/name", func(p string) bool {
			i := strings.LastIndex(p, "/")
			return i >= 0 && i < len(p)-1
		})),
	).Named("merlin_path directory/name")

	startTriggerWrite = validate.MustPipeline(
		validate.EnumOf(triggers).Stage(),
		validate.Morph(validate.EnumValue[Trigger]()),
	)
	endTriggerWrite   = enumWriteWithin(triggers, validate.Range(0, 4, validate.IncludeBoth))
	modifierWrite     = validate.EnumOf(triggerModifiers)
	detectorFlagWrite = validate.EnumOf(detectors)
)

// Read pipelines decode the value element of a GET response.
var (
	intRead          = validate.MustPipeline(validate.Morph(validate.SignedInt()))
	floatRead        = validate.MustPipeline(validate.Morph(validate.ParseFloat()))
	floatsRead       = validate.MustPipeline(validate.Morph(validate.Fields()), validate.Morph(validate.Each(validate.ParseFloat())))
	stringRead       = validate.MustPipeline(validate.Morph(validate.Identity[string]()))
	boolRead         = validate.MustPipeline(validate.Morph(validate.DigitBool()))
	invertedBoolRead = validate.MustPipeline(
		validate.Morph(validate.DigitBool()),
		validate.Morph(validate.Map("not", func(b bool) bool { return !b })),
	)
	triggerRead = validate.MustPipeline(
		validate.Morph(validate.SignedInt()),
		validate.Morph(validate.Map("strip_modifier", func(raw int) int {
			base, _ := splitTrigger(raw)
			return base
		})),
		validate.Morph(validate.EnumByValue(triggers)),
	)
	modifierRead = validate.MustPipeline(
		validate.Morph(validate.SignedInt()),
		validate.Morph(validate.Map("modifier", func(raw int) TriggerModifier {
			_, mod := splitTrigger(raw)
			return mod
		})),
	)
)

func boundedWrite(low, high int) *validate.Pipeline {
	return validate.Wire[int](validate.LooseInt(validate.Range(low, high, validate.IncludeBoth)))
}

// enumWrite accepts a member, name or value of m and yields the device
// value, shifted by offset.
func enumWrite[E validate.Enum](m validate.Members[E], offset int) *validate.Pipeline {
	stages := []validate.Stage{
		validate.EnumOf(m).Stage(),
		validate.Morph(validate.EnumValue[E]()),
	}
	if offset != 0 {
		stages = append(stages, validate.Morph(validate.Binary(validate.Add, offset, false)))
	}
	stages = append(stages, validate.Morph(validate.Format[int]()))
	return validate.MustPipeline(stages...).Named(m.String())
}

// enumWithin is enumWrite restricted to the member values the device
// field accepts.
func enumWriteWithin[E validate.Enum](m validate.Members[E], within validate.Validator[int]) *validate.Pipeline {
	return validate.MustPipeline(
		validate.EnumOf(m).Stage(),
		validate.NewStep(validate.EnumValue[E](), within),
		validate.Morph(validate.Format[int]()),
	).Named(m.String() + " " + within.String())
}

// enumRead decodes a device integer into a member of m, shifted by offset.
func enumRead[E validate.Enum](m validate.Members[E], offset int) *validate.Pipeline {
	stages := []validate.Stage{validate.Morph(validate.SignedInt())}
	if offset != 0 {
		stages = append(stages, validate.Morph(validate.Binary(validate.Add, offset, false)))
	}
	stages = append(stages, validate.Morph(validate.EnumByValue(m)))
	return validate.MustPipeline(stages...)
}

// splitTrigger separates a raw TRIGGERSTART value into the base trigger
// and its modifier.
func splitTrigger(raw int) (int, TriggerModifier) {
	if raw > triggerStride {
		return raw - triggerStride, ModifierMulti
	}
	return raw, ModifierSingle
}

// joinTrigger is the inverse of splitTrigger. Internal with Multi yields
// the same raw value as Soft with Single.
func joinTrigger(base int, mod TriggerModifier) int {
	return base + (int(mod)-1)*triggerStride
}

// DetectorSetting is the SET input of a per-detector variable: Value is
// written once for every detector in Detectors. A two-element slice
// {detectors, value} is accepted in its place.
type DetectorSetting struct {
	Detectors Detector
	Value     any
}

// PerDetector is the GET result of a per-detector variable. Values holds
// one decoded value per enabled detector, in ascending detector order.
type PerDetector struct {
	Detectors Detector
	Values    []any
}

type detectorWire struct {
	detectors Detector
	value     string
}

// perDetectorWrite validates a DetectorSetting: the detectors against the
// flag set and the value against inner.
func perDetectorWrite(inner *validate.Pipeline) *validate.Pipeline {
	return validate.MustPipeline(
		validate.NewStep(validate.Func("detector_pair", detectorPair), validate.Len[any](2)),
		validate.Morph(validate.Func("detector_setting", func(pair []any) (detectorWire, error) {
			d, err := validate.Run[Detector](detectorFlagWrite, pair[0])
			if err != nil {
				return detectorWire{}, err
			}
			v, err := validate.Run[string](inner, pair[1])
			if err != nil {
				return detectorWire{}, err
			}
			return detectorWire{detectors: d, value: v}, nil
		})),
	).Named("per_detector " + inner.String())
}

func detectorPair(v any) ([]any, error) {
	switch x := v.(type) {
	case DetectorSetting:
		return []any{x.Detectors, x.Value}, nil
	case *DetectorSetting:
		if x == nil {
			return nil, fmt.Errorf("nil detector setting")
		}
		return []any{x.Detectors, x.Value}, nil
	}
	return cast.ToSliceE(v)
}
