package commands

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "savegen", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"version", "infer", "parse", "check"} {
		assert.True(t, names[expected], "expected command %s to be registered", expected)
	}

	for _, flag := range []string{"config", "verbose", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "expected --%s flag", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"

	stdout, _, err := runRoot(t, "version")
	require.NoError(t, err)

	assert.Contains(t, stdout, "savegen version: 1.0.0-test")
	assert.Contains(t, stdout, "Git commit: abc123")
	assert.Contains(t, stdout, "Go version: go1.23")
}

func TestNewLogger(t *testing.T) {
	verbose = false

	log, err := newLogger("info")
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = newLogger("chatty")
	assert.Error(t, err)

	verbose = true
	defer func() { verbose = false }()
	log, err = newLogger("chatty")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	configFile = "/nonexistent/savegen.yml"
	defer func() { configFile = "" }()

	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	_, err := loadConfig(&buf)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "CONFIGURATION ERROR")
}
