/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package logbuffer keeps the most recent log lines in memory so a front end
// can show which bundles a scan skipped and why.
package logbuffer

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogEntry represents a single log entry.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component,omitempty"`
	ScanID    string         `json:"scan_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Text renders the entry as one human readable line.
func (e LogEntry) Text() string {
	var b strings.Builder
	b.WriteString(e.Timestamp.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(e.Level))
	b.WriteByte(' ')
	b.WriteString(e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		if s, ok := e.Fields[k].(string); ok {
			b.WriteString(s)
		} else {
			v, _ := json.Marshal(e.Fields[k])
			b.Write(v)
		}
	}
	return b.String()
}

// Buffer is a thread-safe ring buffer for log entries.
type Buffer struct {
	mu       sync.RWMutex
	entries  []LogEntry
	capacity int
	head     int
	count    int
}

// New creates a new log buffer with the specified capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 2000
	}
	return &Buffer{
		entries:  make([]LogEntry, capacity),
		capacity: capacity,
	}
}

// Add adds a log entry to the buffer, evicting the oldest when full.
func (b *Buffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = entry
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// GetAll returns all log entries in chronological order.
func (b *Buffer) GetAll() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]LogEntry, b.count)
	start := 0
	if b.count == b.capacity {
		start = b.head
	}
	for i := 0; i < b.count; i++ {
		result[i] = b.entries[(start+i)%b.capacity]
	}
	return result
}

// QueryParams narrows Query results. Zero values match everything.
type QueryParams struct {
	Level      string
	Component  string
	ScanID     string
	Search     string // case-insensitive, matched against message and string fields
	Since      time.Time
	Limit      int
	Descending bool
}

// Query returns log entries matching the filter criteria.
func (b *Buffer) Query(params QueryParams) []LogEntry {
	search := strings.ToLower(params.Search)

	filtered := make([]LogEntry, 0)
	for _, entry := range b.GetAll() {
		if params.Level != "" && entry.Level != params.Level {
			continue
		}
		if params.Component != "" && entry.Component != params.Component {
			continue
		}
		if params.ScanID != "" && entry.ScanID != params.ScanID {
			continue
		}
		if !params.Since.IsZero() && entry.Timestamp.Before(params.Since) {
			continue
		}
		if search != "" && !entry.contains(search) {
			continue
		}
		filtered = append(filtered, entry)
	}

	if params.Descending {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}
	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	return filtered
}

func (e LogEntry) contains(lowerNeedle string) bool {
	if strings.Contains(strings.ToLower(e.Message), lowerNeedle) {
		return true
	}
	for _, v := range e.Fields {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), lowerNeedle) {
			return true
		}
	}
	return false
}

// Stats returns buffer statistics.
type Stats struct {
	Capacity   int            `json:"capacity"`
	Count      int            `json:"count"`
	LevelCount map[string]int `json:"level_count"`
}

func (b *Buffer) Stats() Stats {
	stats := Stats{
		Capacity:   b.capacity,
		LevelCount: make(map[string]int),
	}
	for _, e := range b.GetAll() {
		stats.Count++
		stats.LevelCount[e.Level]++
	}
	return stats
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.count = 0
}

// Writer adapts the buffer to io.Writer so zerolog can write JSON lines into it.
type Writer struct {
	buffer   *Buffer
	fallback io.Writer
	now      func() time.Time
}

// NewWriter creates a writer that captures logs to the buffer and copies
// them to fallback when it is not nil.
func NewWriter(buffer *Buffer, fallback io.Writer) *Writer {
	return &Writer{buffer: buffer, fallback: fallback, now: time.Now}
}

// Write implements io.Writer. Lines that are not JSON objects are only
// forwarded to the fallback.
func (w *Writer) Write(p []byte) (n int, err error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err == nil {
		entry := LogEntry{Timestamp: w.now()}
		if v, ok := raw["level"].(string); ok {
			entry.Level = v
			delete(raw, "level")
		}
		if v, ok := raw["message"].(string); ok {
			entry.Message = v
			delete(raw, "message")
		}
		if v, ok := raw["component"].(string); ok {
			entry.Component = v
			delete(raw, "component")
		}
		if v, ok := raw["scan_id"].(string); ok {
			entry.ScanID = v
			delete(raw, "scan_id")
		}
		switch ts := raw["time"].(type) {
		case string:
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				entry.Timestamp = t
			}
		case float64:
			entry.Timestamp = time.Unix(int64(ts), 0)
		}
		delete(raw, "time")
		if len(raw) > 0 {
			entry.Fields = raw
		}
		w.buffer.Add(entry)
	}

	if w.fallback != nil {
		return w.fallback.Write(p)
	}
	return len(p), nil
}
