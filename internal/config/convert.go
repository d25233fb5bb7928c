package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/merlinctl/internal/merlin"
)

// parsePresets resolves [[preset]] tables into catalogue presets. Step
// values are kept as decoded; the catalogue pipelines accept TOML's
// int64, float64, string and bool forms.
func parsePresets(in []filePreset) ([]merlin.Preset, error) {
	out := make([]merlin.Preset, 0, len(in))
	for i, fp := range in {
		p := merlin.Preset{Name: strings.TrimSpace(fp.Name)}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: preset[%d] missing name", ErrInvalid, i)
		}
		for j, st := range fp.Steps {
			v, err := merlin.ParseVariable(st.Variable)
			if err != nil {
				return nil, fmt.Errorf("preset %s step %d: %w", p.Name, j, err)
			}
			if st.Value == nil {
				return nil, fmt.Errorf("%w: preset %s step %d missing value", ErrInvalid, p.Name, j)
			}
			p.Steps = append(p.Steps, merlin.Step{Variable: v, Value: st.Value})
		}
		if strings.TrimSpace(fp.Exec) != "" {
			cmd, err := merlin.ParseCommand(fp.Exec)
			if err != nil {
				return nil, fmt.Errorf("preset %s: %w", p.Name, err)
			}
			p.Exec = cmd
		}
		out = append(out, p)
	}
	return out, nil
}
