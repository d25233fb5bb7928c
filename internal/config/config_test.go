package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/merlinctl/internal/merlin"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/danmuck/merlinctl/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplate(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, Template()))
	require.NoError(t, err)

	assert.Equal(t, "192.168.0.10:6341", cfg.Addr())
	assert.Equal(t, frame.AlignLeft, cfg.Alignment)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	require.Len(t, cfg.Presets, 2)

	p, ok := cfg.Preset("SEARCH")
	require.True(t, ok)
	assert.Equal(t, merlin.CmdContinuousSTEM, p.Exec)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, merlin.VarHorizontalPoints, p.Steps[0].Variable)
	assert.Equal(t, int64(256), p.Steps[0].Value)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, `
host = "merlin.lab"
channel = "data"
read_timeout = "2s"
length_alignment = "right"
`))
	require.NoError(t, err)

	assert.Equal(t, "merlin.lab:6342", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)

	s := cfg.Session()
	assert.Equal(t, frame.AlignRight, s.Alignment)
	assert.Equal(t, 1024, s.Limits.MaxResponseBytes)
	assert.Equal(t, 2*time.Second, s.ReadTimeout)
}

func TestLoadPortOverridesChannel(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, "port = 7000\n"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr())
}

func TestLoadRejects(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad duration":   `read_timeout = "soon"`,
		"bad alignment":  `length_alignment = "centre"`,
		"empty host":     `host = " "`,
		"bad channel":    `channel = "video"`,
		"bad limit":      `max_response_bytes = 0`,
		"bad level":      `log_level = "loud"`,
		"unknown key":    `hostname = "x"`,
		"bad variable":   "[[preset]]\nname = \"p\"\n[[preset.step]]\nvariable = \"WARP\"\nvalue = 1\n",
		"bad value":      "[[preset]]\nname = \"p\"\n[[preset.step]]\nvariable = \"BIT_DEPTH\"\nvalue = 8\n",
		"missing value":  "[[preset]]\nname = \"p\"\n[[preset.step]]\nvariable = \"BIT_DEPTH\"\n",
		"bad command":    "[[preset]]\nname = \"p\"\nexec = \"launch\"\n",
		"unnamed preset": "[[preset]]\nexec = \"start\"\n",
		"duplicate":      "[[preset]]\nname = \"p\"\n[[preset]]\nname = \"p\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteTemplate(path, false))
	assert.Error(t, WriteTemplate(path, false))
	assert.NoError(t, WriteTemplate(path, true))
}
