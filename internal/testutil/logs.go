package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is one record captured by LogRecorder.
type LogEntry struct {
	Level slog.Level
	Msg   string
	Attrs map[string]string
}

// LogRecorder is a slog.Handler that keeps every record in memory,
// including the attributes added through Logger.With.
type LogRecorder struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
}

// NewLogRecorder returns an empty recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

// Logger returns a logger writing into r.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	entry := LogEntry{
		Level: rec.Level,
		Msg:   rec.Message,
		Attrs: make(map[string]string, len(r.attrs)+rec.NumAttrs()),
	}
	for _, a := range r.attrs {
		entry.Attrs[a.Key] = a.Value.String()
	}
	rec.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.String()
		return true
	})

	r.mu.Lock()
	*r.entries = append(*r.entries, entry)
	r.mu.Unlock()
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{
		mu:      r.mu,
		entries: r.entries,
		attrs:   append(append([]slog.Attr{}, r.attrs...), attrs...),
	}
}

func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}

// Entries returns a snapshot of the captured records.
func (r *LogRecorder) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), *r.entries...)
}

// Find returns the first record with msg.
func (r *LogRecorder) Find(msg string) (LogEntry, bool) {
	for _, e := range r.Entries() {
		if e.Msg == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}
