package interactionlog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Recorder is implemented by both the real and the noop logger
type Recorder interface {
	Write(rec *Record)
	Close() error
}

// Logger provides async buffered logging with batch writes. Records
// accumulate in a channel and are flushed to storage when the batch
// fills or on a timer.
type Logger struct {
	store  Store
	buffer chan *Record
	done   chan struct{}
	wg     sync.WaitGroup

	flushInterval time.Duration
}

const batchSize = 100

// NewLogger creates an async buffered Logger and starts its background
// flush goroutine.
func NewLogger(store Store, cfg Config) *Logger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	l := &Logger{
		store:         store,
		buffer:        make(chan *Record, cfg.BufferSize),
		done:          make(chan struct{}),
		flushInterval: cfg.FlushInterval,
	}

	l.wg.Add(1)
	go l.flushLoop()

	return l
}

// Write queues a record without blocking. When the buffer is full the
// record is dropped with a warning; callers never wait on the log.
func (l *Logger) Write(rec *Record) {
	if rec == nil {
		return
	}

	select {
	case l.buffer <- rec:
	default:
		slog.Warn("interaction log buffer full, dropping record",
			"id", rec.ID,
			"mode", rec.Mode,
		)
	}
}

// Close stops the logger, flushes remaining records, and closes the
// store. Call during graceful shutdown.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.store.Close()
}

func (l *Logger) flushLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.flushInterval)
	defer ticker.Stop()

	batch := make([]*Record, 0, batchSize)

	for {
		select {
		case rec := <-l.buffer:
			batch = append(batch, rec)
			if len(batch) >= batchSize {
				l.flushBatch(batch)
				batch = make([]*Record, 0, batchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flushBatch(batch)
				batch = make([]*Record, 0, batchSize)
			}

		case <-l.done:
			// Drain whatever is still queued before the final flush
			close(l.buffer)
			for rec := range l.buffer {
				batch = append(batch, rec)
			}
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := l.store.Flush(ctx); err != nil {
				slog.Error("failed to flush interaction log store", "error", err)
			}
			cancel()
			return
		}
	}
}

func (l *Logger) flushBatch(batch []*Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := l.store.WriteBatch(ctx, batch); err != nil {
		slog.Error("failed to write interaction log batch",
			"error", err,
			"count", len(batch),
		)
	}
}

// NoopLogger is used when interaction logging is disabled
type NoopLogger struct{}

func (l *NoopLogger) Write(_ *Record) {}

func (l *NoopLogger) Close() error {
	return nil
}
