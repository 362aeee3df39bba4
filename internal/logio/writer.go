package logio

import (
	"bytes"
	"sync"
)

// Writer is an io.Writer that passes each complete line to Logf, with an
// optional Prefix; tests use it to route trace output into t.Logf.
type Writer struct {
	Logf   func(mess string, args ...interface{})
	Prefix string

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p and logs any completed lines.
func (lw *Writer) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf.Write(p)
	for {
		i := bytes.IndexByte(lw.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		lw.logLine(lw.buf.Next(i + 1)[:i])
	}
	return len(p), nil
}

// Close logs any final incomplete line.
func (lw *Writer) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.buf.Len() > 0 {
		lw.logLine(lw.buf.Next(lw.buf.Len()))
	}
	return nil
}

func (lw *Writer) logLine(line []byte) {
	lw.Logf("%s%s", lw.Prefix, line)
}
