package filter

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseJSONDocument(t *testing.T) {
	chain, err := ParseJSON([]byte(`{"filters": [
		{"kind": "language", "languages": ["English(US)"], "filter_media": false},
		{"kind": "name", "pattern": "^boss", "use_regex": true}
	]}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("len(chain) = %d, want 2", len(chain))
	}

	lang, ok := chain[0].(*LanguageFilter)
	if !ok {
		t.Fatalf("chain[0] = %T, want *LanguageFilter", chain[0])
	}
	if !reflect.DeepEqual(lang.Languages, []string{"English(US)"}) || !lang.Bundles || lang.Media {
		t.Fatalf("language filter = %+v", lang)
	}

	name, ok := chain[1].(*NameFilter)
	if !ok {
		t.Fatalf("chain[1] = %T, want *NameFilter", chain[1])
	}
	if name.Pattern != "^boss" || !name.UseRegex || name.CaseSensitive || name.Scope() != ScopeAll {
		t.Fatalf("name filter = %+v", name)
	}
}

func TestParseJSONBareArray(t *testing.T) {
	chain, err := ParseJSON([]byte(` [{"kind": "name"}]`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if f := chain[0].(*NameFilter); f.Pattern != "*" {
		t.Fatalf("Pattern = %q, want default *", f.Pattern)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := ParseYAML([]byte("filters:\n  - kind: size\n"))
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Kind != "size" {
		t.Fatalf("ParseYAML() error = %v, want ConfigError for kind size", err)
	}
}

func TestParseRejectsBadPattern(t *testing.T) {
	_, err := ParseJSON([]byte(`[{"kind": "name", "pattern": "(", "use_regex": true}]`))
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Index != 0 {
		t.Fatalf("ParseJSON() error = %v, want ConfigError at index 0", err)
	}
}

func TestChainYAMLRoundTrip(t *testing.T) {
	name := NewNameFilter()
	name.Pattern = "vo_*"
	name.CaseSensitive = true
	lang := NewLanguageFilter("fr", "")
	lang.Bundles = false
	chain := Chain{name, lang}

	data, err := yaml.Marshal(chain)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	back, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v\n%s", err, data)
	}
	if !reflect.DeepEqual(back.Specs(), chain.Specs()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back.Specs(), chain.Specs())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "filters.yml")
	if err := os.WriteFile(yml, []byte("filters:\n  - kind: language\n    languages: [en]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	chain, err := LoadFile(yml)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(chain) != 1 || chain[0].Kind() != KindLanguage {
		t.Fatalf("chain = %v", chain)
	}

	txt := filepath.Join(dir, "filters.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(txt); err == nil {
		t.Fatal("LoadFile() accepted unsupported extension")
	}
}

func TestRegisterKind(t *testing.T) {
	const kind Kind = "everything"
	RegisterKind(kind, func(Spec) (Filter, error) { return NewNameFilter(), nil })
	defer delete(decoders, kind)

	f, err := Spec{Kind: kind}.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if f.Kind() != KindName {
		t.Fatalf("Kind() = %q", f.Kind())
	}
}
