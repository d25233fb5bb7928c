package config

import (
	"fmt"
	"os"
)

// Template is a commented starting config.
func Template() string { return merlinctlTemplate }

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(merlinctlTemplate), 0o600)
}

const merlinctlTemplate = `# detector control PC
host = "192.168.0.10"
channel = "command"        # command (6341) or data (6342)
# port = 6341              # overrides channel

connect_timeout = "5s"
read_timeout = "15s"
write_timeout = "15s"
length_alignment = "left"  # left pads the length field with trailing zeros
max_response_bytes = 1024
log_level = "info"

[[preset]]
name = "search"
exec = "continuous_stem"

[[preset.step]]
variable = "HORIZONTAL_POINTS"
value = 256

[[preset.step]]
variable = "VERTICAL_POINTS"
value = 256

[[preset.step]]
variable = "TRIGGER_MODE"
value = "PIXEL"

[[preset]]
name = "threshold-scan"
exec = "threshold"

[[preset.step]]
variable = "USE_THRESHOLD"
value = 0

[[preset.step]]
variable = "THRESHOLD_START"
value = 5.0

[[preset.step]]
variable = "THRESHOLD_STOP"
value = 50.0

[[preset.step]]
variable = "THRESHOLD_STEP"
value = 0.5
`
