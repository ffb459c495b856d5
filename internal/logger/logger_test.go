package logger

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level LogLevel) *AppLogger {
	l := NewAppLogger(buf, level)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestAppLogger_FormatsAndFilters(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LevelInfo)

	l.Debug("hidden %d", 1)
	l.Info("Teleporting to quest number %d", 3)
	l.Warn("still loading")

	assert.Equal(t, "[03:04:05] INFO: Teleporting to quest number 3\n[03:04:05] WARN: still loading\n", buf.String())
	assert.False(t, l.Color(), "buffer is not a terminal")
}

func TestAppLogger_HistoryIsBounded(t *testing.T) {
	l := Nop()
	for i := 0; i < 150; i++ {
		l.Info("line %d", i)
	}
	h := l.History()
	require.Len(t, h, 100)
	assert.Contains(t, h[0], "line 50")
	assert.Contains(t, h[99], "line 149")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
	}
	for in, want := range cases {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "x", Colorize(false, ColorRed, "x"))
	assert.Equal(t, ColorRed+"x"+ColorReset, Colorize(true, ColorRed, "x"))
}
