// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"errors"
	"fmt"
)

// ErrFormatMismatch is wrapped by FormatError.
var ErrFormatMismatch = errors.New("format mismatch")

// FormatError reports a #fileformat= line whose tag does not start with the
// expected prefix. It aborts the conversion.
type FormatError struct {
	Source string
	Line   int
	Tag    string
	Want   string
}

func (e *FormatError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("%s:%d: not a %s script according to #fileformat line (got %q)",
		src, e.Line, e.Want, e.Tag)
}

func (e *FormatError) Unwrap() error { return ErrFormatMismatch }
