package logbuffer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBufferWrapsAround(t *testing.T) {
	buf := New(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		buf.Add(LogEntry{Message: msg})
	}

	all := buf.GetAll()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	got := all[0].Message + all[1].Message + all[2].Message
	if got != "bcd" {
		t.Fatalf("order = %q, want bcd", got)
	}

	buf.Clear()
	if n := len(buf.GetAll()); n != 0 {
		t.Fatalf("after Clear len = %d", n)
	}
}

func TestBufferQuery(t *testing.T) {
	buf := New(10)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	buf.Add(LogEntry{Timestamp: base, Level: "info", Message: "scan started", Component: "catalog", ScanID: "s1"})
	buf.Add(LogEntry{Timestamp: base.Add(time.Second), Level: "warn", Message: "skipping bundle", Component: "catalog", ScanID: "s1",
		Fields: map[string]any{"path": "/banks/Boss.bnk"}})
	buf.Add(LogEntry{Timestamp: base.Add(2 * time.Second), Level: "warn", Message: "skipping malformed media entry", Component: "sidecar", ScanID: "s2"})

	tests := []struct {
		name   string
		params QueryParams
		want   []string
	}{
		{"all", QueryParams{}, []string{"scan started", "skipping bundle", "skipping malformed media entry"}},
		{"level", QueryParams{Level: "warn"}, []string{"skipping bundle", "skipping malformed media entry"}},
		{"component", QueryParams{Component: "sidecar"}, []string{"skipping malformed media entry"}},
		{"scan", QueryParams{ScanID: "s1", Descending: true}, []string{"skipping bundle", "scan started"}},
		{"search fields", QueryParams{Search: "boss.BNK"}, []string{"skipping bundle"}},
		{"since", QueryParams{Since: base.Add(time.Second)}, []string{"skipping bundle", "skipping malformed media entry"}},
		{"limit", QueryParams{Limit: 1, Descending: true}, []string{"skipping malformed media entry"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buf.Query(tt.params)
			if len(got) != len(tt.want) {
				t.Fatalf("Query() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Message != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, got[i].Message, tt.want[i])
				}
			}
		})
	}

	stats := buf.Stats()
	if stats.Count != 3 || stats.LevelCount["warn"] != 2 {
		t.Fatalf("Stats() = %+v", stats)
	}
}

func TestWriterCapturesZerologLines(t *testing.T) {
	buf := New(10)
	var fallback bytes.Buffer
	logger := zerolog.New(NewWriter(buf, &fallback)).With().Timestamp().Logger()

	logger.Warn().Str("component", "catalog").Str("scan_id", "abc").Str("path", "/b.bnk").Msg("skipping bundle")

	entries := buf.GetAll()
	if len(entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != "warn" || e.Message != "skipping bundle" || e.Component != "catalog" || e.ScanID != "abc" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Fields["path"] != "/b.bnk" {
		t.Fatalf("fields = %v", e.Fields)
	}
	if !strings.Contains(fallback.String(), "skipping bundle") {
		t.Fatalf("fallback did not receive the line: %q", fallback.String())
	}
	if !strings.Contains(e.Text(), "WARN skipping bundle path=/b.bnk") {
		t.Fatalf("Text() = %q", e.Text())
	}
}

func TestWriterIgnoresNonJSON(t *testing.T) {
	buf := New(10)
	w := NewWriter(buf, nil)
	n, err := w.Write([]byte("plain text\n"))
	if err != nil || n != len("plain text\n") {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if len(buf.GetAll()) != 0 {
		t.Fatal("non-JSON line was captured")
	}
}
