package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelInfo)

	l.Debug("hidden")
	l.Info("shown", String("component", "arena"), Int("entities", 5))
	l.Warn("warned", Error(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "shown", first.Message)
	assert.Equal(t, "arena", first.ContextMap()["component"])
	assert.EqualValues(t, 5, first.ContextMap()["entities"])
	assert.Equal(t, "boom", logs.All()[1].ContextMap()["error"])
}

func TestLogger_SetLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelError)

	l.Info("dropped")
	assert.Equal(t, 0, logs.Len())

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("kept")
	assert.Equal(t, 1, logs.Len())

	l.SetLevel(LevelSilent)
	l.Error("silenced")
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_WithSharesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelInfo)
	child := l.With(String("component", "driver"))

	l.SetLevel(LevelWarn)
	child.Info("dropped after parent level change")
	child.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "driver", logs.All()[0].ContextMap()["component"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, LevelInfo, got)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("nothing", Error(nil))
	})
	assert.Equal(t, LevelSilent, l.GetLevel())
}

func TestNewWithOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.log")
	l, err := NewWithOutput(LevelInfo, path)
	require.NoError(t, err)

	l.Info("written", String("component", "test"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
	assert.Contains(t, string(data), `"component":"test"`)
}
