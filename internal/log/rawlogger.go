package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records raw schema compiler output with optional file output.
type RawLogger interface {
	Log(stream string, data []byte)
}

// rawLogger implements RawLogger with thread-safe writes.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits one timestamped line per line of data, prefixed with the stream
// name (e.g. "protoc stderr").
func (r *rawLogger) Log(stream string, data []byte) {
	if len(data) == 0 {
		return
	}
	if r.w == nil {
		return
	}

	ts := time.Now().Format("2006/01/02 15:04:05")
	var buf bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		fmt.Fprintf(&buf, "%s %s: %s\n", ts, stream, sc.Text())
	}

	r.mu.Lock()
	_, _ = r.w.Write(buf.Bytes())
	r.mu.Unlock()
}

// Writer adapts a RawLogger to an io.Writer for the given stream, so it can be
// attached to a subprocess. Output is passed on in whole lines; call Flush once
// the process has exited to emit a trailing line without a newline.
func Writer(r RawLogger, stream string) *LineWriter {
	return &LineWriter{r: r, stream: stream}
}

// LineWriter buffers writes until a newline so a line split across pipe reads
// is logged once.
type LineWriter struct {
	r      RawLogger
	stream string

	mu  sync.Mutex
	buf []byte
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	if i := bytes.LastIndexByte(w.buf, '\n'); i >= 0 {
		w.r.Log(w.stream, w.buf[:i+1])
		w.buf = append(w.buf[:0], w.buf[i+1:]...)
	}
	return len(p), nil
}

// Flush logs whatever is left after the last newline.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.r.Log(w.stream, w.buf)
		w.buf = w.buf[:0]
	}
}
