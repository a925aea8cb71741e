package memol

import (
	"fmt"
	"os"
)

// PosError is a compile error anchored to a byte offset in a source file.
// Display resolves that offset to a 0-based row/column by rescanning the
// file, matching the original compiler's error formatter.
type PosError struct {
	Path    string
	Index   int
	Message string
}

func (e *PosError) Error() string {
	buf, err := os.ReadFile(e.Path)
	if err != nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}

	row, col := 0, 0
	for n, c := range string(buf) {
		if n >= e.Index {
			break
		}
		switch c {
		case '\r':
			// ignored, does not advance row or column.
		case '\n':
			row++
			col = 0
		default:
			col++
		}
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, row, col, e.Message)
}

func newPosError(path string, index int, format string, args ...any) *PosError {
	return &PosError{Path: path, Index: index, Message: fmt.Sprintf(format, args...)}
}

// HostError wraps a failure from the real-time host binding (JACK or the
// default rtmidi/virtual-port transport).
type HostError struct {
	Op  string
	Err error
}

func (e *HostError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("memol: host: %s", e.Op)
	}
	return fmt.Sprintf("memol: host: %s: %v", e.Op, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }
