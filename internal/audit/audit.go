// Package audit implements the bitácora: a dedicated append-only event
// sink with its own failure isolation. Recording an event never fails the
// operation that produced it.
package audit

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"kiwillet/internal/models"

	"go.uber.org/zap"
)

type Log struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// Open opens (or creates) the audit log at path for appending.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open audit log %s: %w", path, err)
	}
	return &Log{f: f, w: bufio.NewWriter(f)}, nil
}

// Event appends a timestamped event line. Best-effort: write failures are
// logged and swallowed.
func (l *Log) Event(name, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s;%s;%s\n", time.Now().Format(models.TimestampLayout), name, detail)
	if _, err := l.w.WriteString(line); err != nil {
		zap.L().Warn("Failed to record audit event",
			zap.String("event", name),
			zap.Error(err))
	}
}

// Flush forces buffered events to disk.
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}

// Close flushes pending events and closes the underlying file.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Flush(); err != nil {
		zap.L().Warn("Failed to flush audit log", zap.Error(err))
	}
	if err := l.f.Close(); err != nil {
		zap.L().Warn("Failed to close audit log", zap.Error(err))
	}
}
