package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, min Level) *Logger {
	return &Logger{l: log.New(buf, "", 0), level: min}
}

func TestLevelString(t *testing.T) {
	cases := []struct {
		l    Level
		want string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.l.String(); got != c.want {
			t.Errorf("Level(%d).String() = %q, want %q", c.l, got, c.want)
		}
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := newTestLogger(&buf, LevelWarn)
	lg.Debugf("debug message")
	lg.Infof("info message")
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty (debug/info below warn threshold)", buf.String())
	}
	lg.Warnf("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("buf = %q, want it to contain %q", buf.String(), "warn message")
	}
}

func TestLoggerIncludesLevelTag(t *testing.T) {
	var buf bytes.Buffer
	lg := newTestLogger(&buf, LevelDebug)
	lg.Errorf("boom: %d", 42)
	if !strings.Contains(buf.String(), "[error] boom: 42") {
		t.Errorf("buf = %q, want it to contain %q", buf.String(), "[error] boom: 42")
	}
}
