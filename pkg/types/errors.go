// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

var (
	// ErrInvalidNote reports an input that cannot be opened as a note
	// container (not a zip archive, not a directory).
	ErrInvalidNote = errors.New("invalid note file")

	// ErrParse reports note metadata or stroke geometry that cannot be
	// decoded. Conversion of that input cannot continue.
	ErrParse = errors.New("parse error")
)
