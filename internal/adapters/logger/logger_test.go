package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_Pretty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Info("compiling main.cs")
	l.Warn("import lib.cs not found")
	l.Error(zerr.With(zerr.Wrap(zerr.New("exit status 1"), "compile failed"), "backend", "go"))
	l.Error(nil)

	want := "compiling main.cs\n" +
		"! import lib.cs not found\n" +
		"✗ Error: compile failed\n" +
		"       backend: go\n\n" +
		"  Caused by:\n" +
		"    → exit status 1\n"
	assert.Equal(t, want, buf.String())
}

func TestLogger_Quiet(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)
	l.SetQuiet(true)

	l.Info("hidden")
	l.Warn("shown")

	assert.Equal(t, "! shown\n", buf.String())
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)
	l.SetJSON(true)

	l.Warn("careful")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "careful", record["msg"])
}

func TestPrettyHandler_LevelAndAttrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	log := slog.New(logger.NewPrettyHandler(&buf, slog.LevelWarn)).With("script", "main.cs")

	log.Info("hidden")
	log.Warn("stale artifact", "fingerprint", "abc")
	log.WithGroup("cache").Error("store failed")

	assert.Equal(t, "! stale artifact\n✗ store failed\n", buf.String())
}
