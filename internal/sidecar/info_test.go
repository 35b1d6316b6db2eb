package sidecar

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, InfoFileName)
	writeFile(t, path, `{"SoundBanksInfo": {
		"Platform": "PS5",
		"SoundBanks": [
			{"Id": "1", "Type": "User", "GUID": "g1", "Language": "SFX", "ShortName": "Init", "Path": "Init.bnk"},
			{"Id": "2", "Type": "User", "Language": "English(US)", "ShortName": "vo", "Path": "English(US)/vo.bnk",
			 "Media": [{"Id": "9", "Language": "English(US)", "ShortName": "line.wav", "Path": "9.wem"}, {"Id": "10"}]},
			{"Id": "3", "Language": "SFX", "ShortName": "amb", "Path": "amb.bnk"}
		]
	}}`)

	info, err := LoadInfo(path)
	if err != nil {
		t.Fatalf("LoadInfo() error = %v", err)
	}
	if info.Platform != "PS5" {
		t.Fatalf("Platform = %q", info.Platform)
	}
	if len(info.Banks) != 3 {
		t.Fatalf("len(Banks) = %d, want 3", len(info.Banks))
	}
	if info.Banks[0].GUID != "g1" || info.Banks[1].ShortName != "vo" {
		t.Fatalf("banks = %+v", info.Banks)
	}
	if len(info.Banks[1].Media) != 1 {
		t.Fatalf("vo media = %+v", info.Banks[1].Media)
	}
	if len(info.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want one entry", info.Skipped)
	}
	if got, want := info.Languages(), []string{"SFX", "English(US)"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Languages() = %v, want %v", got, want)
	}
}

func TestLoadInfoErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadInfo(filepath.Join(dir, "missing.json"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("missing file: error = %v, want *ParseError", err)
	}

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"SoundBanksInfo": {"SoundBanks": "nope"}}`)
	if _, err := LoadInfo(bad); !errors.As(err, &perr) {
		t.Fatalf("bad SoundBanks: error = %v, want *ParseError", err)
	}
}

func TestIsInfoFile(t *testing.T) {
	dir := t.TempDir()
	info := filepath.Join(dir, InfoFileName)
	other := filepath.Join(dir, "Init.json")
	writeFile(t, info, "{}")
	writeFile(t, other, "{}")

	if !IsInfoFile(info) {
		t.Errorf("IsInfoFile(%q) = false, want true", info)
	}
	if IsInfoFile(other) {
		t.Errorf("IsInfoFile(%q) = true, want false", other)
	}
	if IsInfoFile(dir) {
		t.Errorf("IsInfoFile(dir) = true, want false")
	}
	if IsInfoFile(filepath.Join(dir, "nope", InfoFileName)) {
		t.Errorf("IsInfoFile(missing) = true, want false")
	}
}
