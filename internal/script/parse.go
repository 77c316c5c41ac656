// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package script converts between .sos script text and notebook cells.
// Parse recovers cells from a script; Emit writes a document back as a
// script.
package script

import (
	"strings"

	"github.com/pdiddy/sos-convert/internal/syntax"
	"github.com/pdiddy/sos-convert/pkg/types"
)

const (
	defaultFormatTag  = "SOS"
	defaultHostKernel = "SoS"
)

// Options configures Parse.
type Options struct {
	// Source names the input in errors and conditions.
	Source string

	// FormatTag is the required prefix of a #fileformat= tag.
	FormatTag string

	// HostKernel tags cells opened by a section header.
	HostKernel string

	// Header recognizes section headers.
	Header syntax.Matcher

	// Reporter receives recoverable conditions.
	Reporter types.Reporter
}

func (o Options) withDefaults() Options {
	if o.FormatTag == "" {
		o.FormatTag = defaultFormatTag
	}
	if o.HostKernel == "" {
		o.HostKernel = defaultHostKernel
	}
	if o.Header == nil {
		o.Header = syntax.SectionHeader
	}
	if o.Reporter == nil {
		o.Reporter = types.Discard
	}
	return o
}

// Result is the outcome of Parse.
type Result struct {
	Mode  ParseMode
	Cells []types.Cell
}

// Parse splits script text into cells. The parse mode is decided by one
// scan of the whole input before any cell is assembled. The only error is
// a *FormatError for a mismatching #fileformat= line.
func Parse(text string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	lines := SplitLines(text)

	mode := DetectMode(lines)
	a := newAssembler(opts, mode)
	for i, line := range lines {
		if err := a.feed(line, i+1); err != nil {
			return nil, err
		}
	}
	a.flush()

	return &Result{Mode: mode, Cells: a.cells}, nil
}

// SplitLines splits text into lines without their terminators. CRLF line
// endings are treated as LF, and a final newline does not produce an
// empty trailing line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
