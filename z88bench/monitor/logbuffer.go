package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is a single captured log record.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// Format renders the entry as one line.
func (e LogEntry) Format() string {
	level := "???"
	switch {
	case e.Level >= slog.LevelError:
		level = "ERR"
	case e.Level >= slog.LevelWarn:
		level = "WRN"
	case e.Level >= slog.LevelInfo:
		level = "INF"
	case e.Level >= slog.LevelDebug:
		level = "DBG"
	}
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), level, e.Message)
}

// Ring is a fixed capacity buffer keeping the newest items.
type Ring[T any] struct {
	mu    sync.RWMutex
	items []T
	next  int
	count int
}

// NewRing creates a ring holding up to size items.
func NewRing[T any](size int) *Ring[T] {
	return &Ring[T]{items: make([]T, max(size, 1))}
}

// Add inserts an item, dropping the oldest when full.
func (r *Ring[T]) Add(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.next] = item
	r.next = (r.next + 1) % len(r.items)
	if r.count < len(r.items) {
		r.count++
	}
}

// Recent returns up to n items, newest first. n <= 0 returns all of them.
func (r *Ring[T]) Recent(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]T, n)
	for i := range out {
		out[i] = r.items[(r.next-1-i+len(r.items))%len(r.items)]
	}
	return out
}

// Len is the number of items held.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// LogHandler is a slog.Handler that captures records into a ring, for
// display while the terminal is taken over by the dashboard.
type LogHandler struct {
	ring  *Ring[LogEntry]
	level slog.Leveler
	attrs string
	group string
}

// NewLogHandler creates a handler capturing records at or above level.
func NewLogHandler(ring *Ring[LogEntry], level slog.Leveler) *LogHandler {
	return &LogHandler{ring: ring, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&sb, a)
		return true
	})
	h.ring.Add(LogEntry{Time: record.Time, Level: record.Level, Message: sb.String()})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		h.writeAttr(&sb, a)
	}
	clone := *h
	clone.attrs = sb.String()
	return &clone
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

func (h *LogHandler) writeAttr(sb *strings.Builder, a slog.Attr) {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value)
}
