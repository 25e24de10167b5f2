package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", levelPtr(zapcore.DebugLevel)},
		{"info", levelPtr(zapcore.InfoLevel)},
		{"warn", levelPtr(zapcore.WarnLevel)},
		{"error", levelPtr(zapcore.ErrorLevel)},
		{"verbose", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New("debug", false)
	require.NoError(t, err)

	child := l.With(String("component", "test"))
	child.Info("message", Int("n", 1), Bool("ok", true), Error(errors.New("boom")))
	_ = l.Sync()
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Errorf("ignored %d", 1)
	assert.NotNil(t, l.With(String("k", "v")))
}

func levelPtr(l zapcore.Level) *zapcore.Level { return &l }
