package sidecar

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const wellFormed = `{
  "SoundBanksInfo": {
    "Platform": "Windows",
    "SoundBanks": [
      {
        "Id": "3991942870",
        "Type": "User",
        "GUID": "{2D6C0E0C-5E5B-4F0B-8D5A-55D1D6C7A9E1}",
        "Language": "English(US)",
        "ShortName": "boss_intro",
        "Path": "English(US)/boss_intro.bnk",
        "Media": [
          {"Id": "10001", "Language": "English(US)", "ShortName": "boss_line_01.wav", "Path": "English(US)/10001.wem"},
          {"Id": "10002", "Language": "", "ShortName": "boss_roar.wav", "Path": "10002.wem"}
        ]
      }
    ]
  }
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		bundle string
		ext    string
		want   string
	}{
		{"/banks/Init.bnk", ".json", "/banks/Init.json"},
		{"/banks/boss.intro.bnk", ".json", "/banks/boss.intro.json"},
		{"/banks/noext", ".json", "/banks/noext.json"},
		{"/banks/Init.bnk", ".txt", "/banks/Init.txt"},
	}
	for _, tt := range tests {
		if got := SidecarPath(tt.bundle, tt.ext); got != tt.want {
			t.Errorf("SidecarPath(%q, %q) = %q, want %q", tt.bundle, tt.ext, got, tt.want)
		}
	}
}

func TestParsePreservesFields(t *testing.T) {
	dir := t.TempDir()
	bank := filepath.Join(dir, "boss_intro.bnk")
	writeFile(t, bank, "BKHD")
	writeFile(t, filepath.Join(dir, "boss_intro.json"), wellFormed)

	sc, err := NewParser(DefaultExt, zerolog.Nop()).Parse(bank)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sc == nil {
		t.Fatal("Parse() returned nil sidecar")
	}
	if sc.Platform != "Windows" || sc.Language != "English(US)" || sc.ID != "3991942870" || sc.Category != "User" {
		t.Fatalf("unexpected bank fields: %+v", sc)
	}
	if sc.GUID != "{2D6C0E0C-5E5B-4F0B-8D5A-55D1D6C7A9E1}" {
		t.Fatalf("GUID = %q", sc.GUID)
	}
	if len(sc.Media) != 2 {
		t.Fatalf("len(Media) = %d, want 2", len(sc.Media))
	}
	first, second := sc.Media[0], sc.Media[1]
	if first.Name != "boss_line_01.wav" || first.Path != "English(US)/10001.wem" || first.ID != "10001" || first.Language != "English(US)" {
		t.Errorf("first media = %+v", first)
	}
	if second.Name != "boss_roar.wav" || second.Language != "" {
		t.Errorf("second media = %+v", second)
	}
	for _, m := range sc.Media {
		if m.Category != "Media" || m.Size != 0 {
			t.Errorf("media %s: category=%q size=%d", m.Name, m.Category, m.Size)
		}
	}
}

func TestParseMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	bank := filepath.Join(dir, "Init.bnk")
	writeFile(t, bank, "BKHD")

	sc, err := NewParser(DefaultExt, zerolog.Nop()).Parse(bank)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sc != nil {
		t.Fatalf("Parse() = %+v, want nil for missing sidecar", sc)
	}
}

func TestParseMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	bank := filepath.Join(dir, "broken.bnk")
	writeFile(t, bank, "BKHD")
	sidecarPath := filepath.Join(dir, "broken.json")
	writeFile(t, sidecarPath, `{"SoundBanksInfo": {"SoundBanks": [`)

	_, err := NewParser(DefaultExt, zerolog.Nop()).Parse(bank)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if perr.Path != sidecarPath {
		t.Fatalf("ParseError.Path = %q, want %q", perr.Path, sidecarPath)
	}
}

func TestParseMissingKeysDefaultToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
		media   int
	}{
		{"empty object", `{}`, 0},
		{"no bank records", `{"SoundBanksInfo": {"Platform": "PS5"}}`, 0},
		{"bank without optional keys", `{"SoundBanksInfo": {"SoundBanks": [{"ShortName": "x"}]}}`, 0},
		{"bank without media key", `{"SoundBanksInfo": {"SoundBanks": [{"Id": "1", "Language": "SFX"}]}}`, 0},
		{"single object instead of array", `{"SoundBanksInfo": {"SoundBanks": {"Media": [{"ShortName": "a", "Path": "a.wem"}]}}}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			bank := filepath.Join(dir, "b.bnk")
			writeFile(t, bank, "BKHD")
			writeFile(t, filepath.Join(dir, "b.json"), tt.content)

			sc, err := NewParser(DefaultExt, zerolog.Nop()).Parse(bank)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if sc == nil || sc.Media == nil {
				t.Fatalf("Parse() = %+v, want non-nil sidecar with non-nil media", sc)
			}
			if len(sc.Media) != tt.media {
				t.Fatalf("len(Media) = %d, want %d", len(sc.Media), tt.media)
			}
		})
	}
}

func TestParseSkipsMalformedMediaEntries(t *testing.T) {
	dir := t.TempDir()
	bank := filepath.Join(dir, "mixed.bnk")
	writeFile(t, bank, "BKHD")
	writeFile(t, filepath.Join(dir, "mixed.json"), `{"SoundBanksInfo": {"SoundBanks": [{
		"Id": "7", "Language": "SFX",
		"Media": [
			{"Id": "1", "ShortName": "a.wav", "Path": "1.wem"},
			{"Id": "2", "Path": "2.wem"},
			{"Id": "3", "ShortName": "c.wav"},
			{"Id": "4", "ShortName": null, "Path": "4.wem"},
			"not an object",
			{"Id": 5, "ShortName": "e.wav", "Path": "5.wem"}
		]
	}]}}`)

	sc, err := NewParser(DefaultExt, zerolog.Nop()).Parse(bank)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(sc.Media) != 2 {
		t.Fatalf("len(Media) = %d, want 2: %+v", len(sc.Media), sc.Media)
	}
	if sc.Media[0].Name != "a.wav" || sc.Media[1].Name != "e.wav" {
		t.Fatalf("media order = %q, %q", sc.Media[0].Name, sc.Media[1].Name)
	}
	if sc.Media[1].ID != "5" {
		t.Fatalf("numeric id = %q, want \"5\"", sc.Media[1].ID)
	}
	if sc.Media[0].Language != "" {
		t.Fatalf("absent language = %q, want empty", sc.Media[0].Language)
	}
}

func TestParseToleratesMistypedBankKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		check   func(t *testing.T, sc *Sidecar)
	}{
		{
			name:    "object id",
			content: `{"SoundBanks": [{"Id": {"x": 1}, "Language": "SFX", "Media": [{"ShortName": "m", "Path": "p"}]}]}`,
			key:     "Id",
			check: func(t *testing.T, sc *Sidecar) {
				if sc.ID != "" || sc.Language != "SFX" || len(sc.Media) != 1 {
					t.Fatalf("sidecar = %+v", sc)
				}
			},
		},
		{
			name:    "array language",
			content: `{"SoundBanks": [{"Id": "7", "Language": ["a", "b"], "Type": "User"}]}`,
			key:     "Language",
			check: func(t *testing.T, sc *Sidecar) {
				if sc.Language != "" || sc.ID != "7" || sc.Category != "User" {
					t.Fatalf("sidecar = %+v", sc)
				}
			},
		},
		{
			name:    "object media",
			content: `{"SoundBanks": [{"Id": "7", "Media": {"ShortName": "m", "Path": "p"}}]}`,
			key:     "Media",
			check: func(t *testing.T, sc *Sidecar) {
				if sc.ID != "7" || sc.Media == nil || len(sc.Media) != 0 {
					t.Fatalf("sidecar = %+v", sc)
				}
			},
		},
		{
			name:    "object platform",
			content: `{"Platform": {"name": "PS5"}, "SoundBanks": [{"Id": "7"}]}`,
			key:     "Platform",
			check: func(t *testing.T, sc *Sidecar) {
				if sc.Platform != "" || sc.ID != "7" {
					t.Fatalf("sidecar = %+v", sc)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			bank := filepath.Join(dir, "a.bnk")
			writeFile(t, bank, "BKHD")
			writeFile(t, filepath.Join(dir, "a.json"), `{"SoundBanksInfo": `+tt.content+`}`)

			var logs bytes.Buffer
			sc, err := NewParser(DefaultExt, zerolog.New(&logs).Level(zerolog.DebugLevel)).Parse(bank)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if sc == nil {
				t.Fatal("Parse() returned nil sidecar")
			}
			tt.check(t, sc)
			if !strings.Contains(logs.String(), `"key":"`+tt.key+`"`) {
				t.Fatalf("no debug line for %s: %s", tt.key, logs.String())
			}
		})
	}
}

func TestParseSkipsMistypedMediaEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"object language", `{"Id": "1", "Language": {"x": 1}, "ShortName": "bad.wav", "Path": "1.wem"}`},
		{"array short name", `{"Id": "2", "ShortName": ["bad.wav"], "Path": "2.wem"}`},
		{"bare number", `5`},
		{"bare array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			bank := filepath.Join(dir, "m.bnk")
			writeFile(t, bank, "BKHD")
			writeFile(t, filepath.Join(dir, "m.json"), `{"SoundBanksInfo": {"SoundBanks": [{"Id": "9", "Media": [
				`+tt.entry+`,
				{"Id": "3", "ShortName": "ok.wav", "Path": "3.wem"}
			]}]}}`)

			sc, err := NewParser(DefaultExt, zerolog.Nop()).Parse(bank)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if sc.ID != "9" || len(sc.Media) != 1 || sc.Media[0].Name != "ok.wav" {
				t.Fatalf("sidecar = %+v", sc)
			}
		})
	}
}

func TestParseCustomExtension(t *testing.T) {
	dir := t.TempDir()
	bank := filepath.Join(dir, "b.bnk")
	writeFile(t, bank, "BKHD")
	writeFile(t, filepath.Join(dir, "b.meta"), wellFormed)

	p := NewParser("meta", zerolog.Nop())
	if p.Ext() != ".meta" {
		t.Fatalf("Ext() = %q, want .meta", p.Ext())
	}
	sc, err := p.Parse(bank)
	if err != nil || sc == nil {
		t.Fatalf("Parse() = %v, %v", sc, err)
	}
}
