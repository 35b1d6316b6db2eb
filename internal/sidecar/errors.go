/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sidecar

import "fmt"

// ParseError reports a sidecar that exists but could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sidecar %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedEntryError reports a media record missing its name or path.
// The record is skipped; the rest of the sidecar is kept.
type MalformedEntryError struct {
	Path  string
	Index int
	Field string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("%s: media entry %d missing %s", e.Path, e.Index, e.Field)
}
