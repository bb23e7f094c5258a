package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestConsoleLogger_SplitsByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewConsoleLogger(slog.LevelInfo, &stdout, &stderr)

	logger.Debug("hidden")
	logger.Info("wrote factory", "file", "fruit_factory.go")
	logger.Warn("shadowed id", "id", 7)
	logger.Error("pass rejected")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "wrote factory")
	assert.Contains(t, stdout.String(), "shadowed id")
	assert.NotContains(t, stdout.String(), "pass rejected")
	assert.Contains(t, stderr.String(), "pass rejected")
	assert.NotContains(t, stderr.String(), "wrote factory")
}

func TestConsoleLogger_Trace(t *testing.T) {
	var stdout bytes.Buffer
	logger := NewConsoleLogger(LevelTrace, &stdout, &bytes.Buffer{})

	logger.With("iface", "Fruit").Log(t.Context(), LevelTrace, "dispatch table")
	assert.Contains(t, stdout.String(), "level=TRACE")
	assert.Contains(t, stdout.String(), "iface=Fruit")
}

func TestSourceLogger(t *testing.T) {
	var buf bytes.Buffer
	NewSource(&buf, true).Log("fruits/fruit_factory.go", []byte("package fruits\n\ntype FruitFactory struct{}\n"))

	assert.Equal(t, "--- fruits/fruit_factory.go (43 bytes)\n"+
		"   1  package fruits\n"+
		"   2  \n"+
		"   3  type FruitFactory struct{}\n", buf.String())

	buf.Reset()
	NewSource(&buf, false).Log("x.go", []byte("package x"))
	assert.Equal(t, "--- x.go (9 bytes)\npackage x\n", buf.String())

	assert.NotPanics(t, func() { NewSource(nil, false).Log("x.go", []byte("package x")) })
}
