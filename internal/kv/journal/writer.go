package journal

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	errClosed     = errors.New("journal writer is closed")
	errBufferFull = errors.New("journal buffer full")
)

// Writer appends JSON lines to a size-rotated file from a background goroutine.
type Writer struct {
	out     *lumberjack.Logger
	writeCh chan any
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewWriter starts a writer for filename rotated at maxSizeMB.
func NewWriter(filename string, bufferSize, maxSizeMB int) *Writer {
	w := &Writer{
		out: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    maxSizeMB,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		},
		writeCh: make(chan any, bufferSize),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.writeLoop()
	return w
}

// Write queues a record. It never blocks; a full buffer drops the record.
func (w *Writer) Write(record any) error {
	select {
	case <-w.done:
		return errClosed
	default:
	}
	select {
	case w.writeCh <- record:
		return nil
	default:
		slog.Warn("journal write buffer full, dropping record")
		return errBufferFull
	}
}

// Close flushes queued records and closes the file.
func (w *Writer) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.out.Close()
	})
	return err
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-timeout:
			slog.Warn("journal close timeout, some records may be lost")
			return
		default:
			return
		}
	}
}

func (w *Writer) writeRecord(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("journal marshal failed", "error", err)
		return
	}
	if _, err := w.out.Write(append(data, '\n')); err != nil {
		slog.Error("journal write failed", "error", err, "file", w.out.Filename)
	}
}
