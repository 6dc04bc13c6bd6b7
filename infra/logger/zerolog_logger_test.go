package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerWritesComponent(t *testing.T) {
	require.NoError(t, Setup("info", FormatJSON))
	defer func() { _ = Setup("", "") }()

	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "dispatch")
	l.Debugf("hidden")
	l.Infof("car %d assigned", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "dispatch", line["component"])
	assert.Equal(t, "car 2 assigned", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	defer func() { _ = Setup("", "") }()
	assert.Error(t, Setup("loud", ""))
	assert.Error(t, Setup("info", "xml"))
	require.NoError(t, Setup("debug", FormatConsole))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
