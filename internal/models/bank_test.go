package models

import (
	"reflect"
	"testing"
)

func TestTotalSize(t *testing.T) {
	tests := []struct {
		name    string
		bundles []Bundle
		want    int64
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name: "zero sized media contribute nothing",
			bundles: []Bundle{
				{Name: "a.bnk", Size: 100, Media: []MediaEntry{{Name: "x"}, {Name: "y"}}},
			},
			want: 100,
		},
		{
			name: "media sizes are added on top of the bundle",
			bundles: []Bundle{
				{Name: "a.bnk", Size: 100, Media: []MediaEntry{{Name: "x", Size: 40}}},
				{Name: "b.bnk", Size: 50},
			},
			want: 190,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalSize(tt.bundles); got != tt.want {
				t.Errorf("TotalSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSortBundles(t *testing.T) {
	bundles := []Bundle{{Path: "/b/z.bnk"}, {Path: "/a/y.bnk"}, {Path: "/b/a.bnk"}}
	SortBundles(bundles)

	got := []string{bundles[0].Path, bundles[1].Path, bundles[2].Path}
	want := []string{"/a/y.bnk", "/b/a.bnk", "/b/z.bnk"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortBundles() order = %v, want %v", got, want)
	}
}

func TestCatalogLanguagesIncludesShared(t *testing.T) {
	c := &Catalog{Bundles: []Bundle{
		{Language: "English(US)", Media: []MediaEntry{{Language: ""}, {Language: "English(US)"}}},
		{Language: "French(France)"},
	}}

	want := []string{"", "English(US)", "French(France)"}
	if got := c.Languages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Languages() = %v, want %v", got, want)
	}
	if got := c.MediaCount(); got != 2 {
		t.Fatalf("MediaCount() = %d, want 2", got)
	}
}

func TestCatalogRecord(t *testing.T) {
	c := &Catalog{
		TotalSize: 12,
		Bundles: []Bundle{{
			Name:     "Init.bnk",
			Path:     "/banks/Init.bnk",
			Size:     12,
			Language: "SFX",
			ID:       "1355168291",
			Category: "SoundBank",
			Media: []MediaEntry{{
				Name: "hit.wav", Path: "Media/1.wem", ID: "1", Category: CategoryMedia,
			}},
		}},
	}

	rec := c.Record()
	if rec["size"] != int64(12) {
		t.Fatalf("size = %v, want 12", rec["size"])
	}
	banks, ok := rec["banks"].([]map[string]any)
	if !ok || len(banks) != 1 {
		t.Fatalf("banks = %#v", rec["banks"])
	}
	bank := banks[0]
	for key, want := range map[string]any{
		"name": "Init.bnk", "path": "/banks/Init.bnk", "id": "1355168291",
		"type": "SoundBank", "language": "SFX",
	} {
		if bank[key] != want {
			t.Errorf("bank[%q] = %v, want %v", key, bank[key], want)
		}
	}
	media := bank["wem_list"].([]map[string]any)
	if len(media) != 1 || media[0]["type"] != "Media" || media[0]["language"] != "" {
		t.Fatalf("wem_list = %#v", media)
	}
}
