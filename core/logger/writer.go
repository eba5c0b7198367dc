package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter moves log output off the caller's goroutine. A flush request
// is a nil line carrying an ack channel.
type asyncWriter struct {
	lines chan entry
	done  chan struct{}
	sinks []*bufio.Writer

	mu     sync.RWMutex // guards closed against sends on a closed channel
	closed bool

	errMu sync.Mutex
	err   error
}

type entry struct {
	line []byte
	ack  chan error
}

func newAsyncWriter(writers []io.Writer) *asyncWriter {
	w := &asyncWriter{
		lines: make(chan entry, 256),
		done:  make(chan struct{}),
	}
	for _, s := range writers {
		if s != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(s, 64*1024))
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for e := range w.lines {
		if e.ack != nil {
			e.ack <- w.flush()
			continue
		}
		for _, s := range w.sinks {
			if _, err := s.Write(e.line); err != nil {
				w.fail(err)
			}
		}
		if len(w.lines) == 0 {
			if err := w.flush(); err != nil {
				w.fail(err)
			}
		}
	}
	if err := w.flush(); err != nil {
		w.fail(err)
	}
}

// Write queues a copy of p; it blocks while the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	if err := w.firstErr(); err != nil {
		return err
	}
	w.lines <- entry{line: append([]byte(nil), p...)}
	return nil
}

// Flush waits until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return errWriterClosed
	}
	ack := make(chan error, 1)
	w.lines <- entry{ack: ack}
	w.mu.RUnlock()
	return <-ack
}

// Close drains the queue and returns the first write error.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
