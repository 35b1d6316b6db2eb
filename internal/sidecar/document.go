/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/friendsincode/bankscope/internal/models"
)

// Key names follow the build tool's output and are case-sensitive.
type document struct {
	Info *infoDocument `json:"SoundBanksInfo"`
}

type infoDocument struct {
	Platform   field           `json:"Platform"`
	SoundBanks json.RawMessage `json:"SoundBanks"`
}

type bankRecord struct {
	ID        field     `json:"Id"`
	Type      field     `json:"Type"`
	GUID      field     `json:"GUID"`
	Language  field     `json:"Language"`
	ShortName field     `json:"ShortName"`
	Path      field     `json:"Path"`
	Media     mediaList `json:"Media"`
}

// Media records are strict: a record whose keys carry the wrong type is
// reported and left out.
type mediaRecord struct {
	ID        text  `json:"Id"`
	Language  text  `json:"Language"`
	ShortName *text `json:"ShortName"`
	Path      *text `json:"Path"`
}

// text decodes a JSON string or number into its textual form. Identifiers
// are emitted as strings by most versions of the build tool but as numbers
// by some.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return err
		}
		*t = text(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*t = text(n.String())
	}
	return nil
}

// field is a bank-level value. Vendors disagree on these keys, so a value of
// any other JSON type decodes as "" and is marked dropped.
type field struct {
	value   text
	dropped bool
}

func (f *field) UnmarshalJSON(data []byte) error {
	if err := f.value.UnmarshalJSON(data); err != nil {
		f.value, f.dropped = "", true
	}
	return nil
}

func (f field) String() string { return string(f.value) }

// mediaList is the Media array of a bank record. Anything but an array is
// treated as no media and marked dropped.
type mediaList struct {
	records []json.RawMessage
	dropped bool
}

func (l *mediaList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		l.records, l.dropped = nil, true
	}
	return nil
}

func decodeDocument(data []byte) (*infoDocument, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Info == nil {
		return &infoDocument{}, nil
	}
	return doc.Info, nil
}

// bankRecords accepts SoundBanks as an array of records or as a single record.
func (d *infoDocument) bankRecords() ([]json.RawMessage, error) {
	raw := bytes.TrimSpace(d.SoundBanks)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
		return records, nil
	case '{':
		return []json.RawMessage{raw}, nil
	default:
		return nil, fmt.Errorf("SoundBanks: unexpected value %s", raw)
	}
}

func decodeBank(raw json.RawMessage) (bankRecord, error) {
	var rec bankRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return bankRecord{}, err
	}
	return rec, nil
}

// droppedKeys names the bank-level keys whose values had an unusable type.
func (r *bankRecord) droppedKeys() []string {
	var keys []string
	for _, f := range []struct {
		key     string
		dropped bool
	}{
		{"Id", r.ID.dropped},
		{"Type", r.Type.dropped},
		{"GUID", r.GUID.dropped},
		{"Language", r.Language.dropped},
		{"ShortName", r.ShortName.dropped},
		{"Path", r.Path.dropped},
		{"Media", r.Media.dropped},
	} {
		if f.dropped {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// mediaEntries maps media records one to one, in order. Records that cannot be
// decoded or that lack a name or path are reported and left out.
func (r *bankRecord) mediaEntries(path string) ([]models.MediaEntry, []*MalformedEntryError) {
	entries := make([]models.MediaEntry, 0, len(r.Media.records))
	var skipped []*MalformedEntryError
	for i, raw := range r.Media.records {
		var m mediaRecord
		if err := json.Unmarshal(raw, &m); err != nil {
			skipped = append(skipped, &MalformedEntryError{Path: path, Index: i, Field: "valid record"})
			continue
		}
		if m.ShortName == nil || *m.ShortName == "" {
			skipped = append(skipped, &MalformedEntryError{Path: path, Index: i, Field: "ShortName"})
			continue
		}
		if m.Path == nil || *m.Path == "" {
			skipped = append(skipped, &MalformedEntryError{Path: path, Index: i, Field: "Path"})
			continue
		}
		entries = append(entries, models.MediaEntry{
			Name:     string(*m.ShortName),
			Path:     string(*m.Path),
			Language: string(m.Language),
			ID:       string(m.ID),
			Category: models.CategoryMedia,
		})
	}
	return entries, skipped
}
