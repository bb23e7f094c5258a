package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"
)

// SourceLogger dumps generated files, for --dry-run and trace output.
type SourceLogger interface {
	Log(dest string, src []byte)
}

type sourceLogger struct {
	w       io.Writer
	numbers bool
	mu      sync.Mutex
}

// NewSource creates a SourceLogger writing to w. If w is nil, returns a
// no-op logger. With numbers set every line is prefixed with its number.
func NewSource(w io.Writer, numbers bool) SourceLogger {
	return &sourceLogger{w: w, numbers: numbers}
}

// Log writes a banner naming dest followed by src.
func (s *sourceLogger) Log(dest string, src []byte) {
	if s.w == nil {
		return
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s (%d bytes)\n", dest, len(src))
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), len(src)+1)
	for n := 1; sc.Scan(); n++ {
		if s.numbers {
			fmt.Fprintf(&buf, "%4d  ", n)
		}
		buf.Write(sc.Bytes())
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	_, _ = s.w.Write(buf.Bytes())
	s.mu.Unlock()
}
