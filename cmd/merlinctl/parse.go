package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/merlinctl/internal/merlin"
	"github.com/spf13/cast"
)

func parseVariables(names []string) ([]merlin.Variable, error) {
	out := make([]merlin.Variable, 0, len(names))
	for _, name := range names {
		v, err := merlin.ParseVariable(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseAssignments turns VARIABLE VALUE pairs into a preset. Values stay
// strings; the catalogue pipelines accept numeric and named strings.
func parseAssignments(args []string) (merlin.Preset, error) {
	p := merlin.Preset{Name: "command line"}
	for i := 0; i+1 < len(args); i += 2 {
		v, err := merlin.ParseVariable(args[i])
		if err != nil {
			return merlin.Preset{}, err
		}
		e, _ := merlin.Lookup(v)
		p.Steps = append(p.Steps, merlin.Step{Variable: v, Value: parseValue(e, args[i+1])})
	}
	return p, nil
}

func parseValue(e merlin.Entry, raw string) any {
	if e.Kind == merlin.KindPerDetector {
		if det, val, ok := strings.Cut(raw, ":"); ok {
			return []any{det, val}
		}
	}
	return raw
}

func parseStatus(raw string) (merlin.DetectorStatus, error) {
	for s := merlin.StatusIdle; s <= merlin.StatusInitialising; s++ {
		if strings.EqualFold(s.String(), strings.TrimSpace(raw)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown detector status %q", raw)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case merlin.PerDetector:
		parts := make([]string, len(x.Values))
		for i, val := range x.Values {
			parts[i] = formatValue(val)
		}
		return fmt.Sprintf("%s: [%s]", x.Detectors, strings.Join(parts, ", "))
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = cast.ToString(f)
		}
		return strings.Join(parts, " ")
	case fmt.Stringer:
		return x.String()
	}
	return cast.ToString(v)
}
