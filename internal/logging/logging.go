// Package logging extends the standard library logger with the leveled,
// prefix-per-concern idiom the CLI uses for compiler diagnostics versus
// realtime transport warnings.
package logging

import (
	"log"
	"os"
)

// Level selects how severe a message is; higher levels are more severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger wraps *log.Logger with a minimum level filter, so e.g. the
// realtime transport can log dropped cycles at debug without spamming a
// user's terminal by default.
type Logger struct {
	l     *log.Logger
	level Level
}

// New returns a Logger writing to os.Stderr with no flags, matching the
// CLI's "<prefix>: <message>" convention, filtering anything below min.
func New(prefix string, min Level) *Logger {
	return &Logger{
		l:     log.New(os.Stderr, prefix, 0),
		level: min,
	}
}

func (lg *Logger) log(lvl Level, format string, args []any) {
	if lvl < lg.level {
		return
	}
	lg.l.Printf("["+lvl.String()+"] "+format, args...)
}

func (lg *Logger) Debugf(format string, args ...any) { lg.log(LevelDebug, format, args) }
func (lg *Logger) Infof(format string, args ...any)  { lg.log(LevelInfo, format, args) }
func (lg *Logger) Warnf(format string, args ...any)  { lg.log(LevelWarn, format, args) }
func (lg *Logger) Errorf(format string, args ...any) { lg.log(LevelError, format, args) }

// Fatalf logs at error level and exits the process with status 1, matching
// the CLI's use of log.Fatal for unrecoverable startup errors.
func (lg *Logger) Fatalf(format string, args ...any) {
	lg.log(LevelError, format, args)
	os.Exit(1)
}
