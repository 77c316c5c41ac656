// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"github.com/pdiddy/sos-convert/internal/syntax"
)

// ParseMode decides which lines act as cell boundaries.
type ParseMode int

const (
	// SplitMode is used when the input has no %cell markers. Section
	// headers and markdown-prefixed lines start new cells.
	SplitMode ParseMode = iota

	// MarkerMode is used when the input has at least one %cell marker.
	// Only marker lines start new cells.
	MarkerMode
)

func (m ParseMode) String() string {
	if m == MarkerMode {
		return "marker"
	}
	return "split"
}

// DetectMode scans every line once and returns MarkerMode if any line is a
// %cell marker.
func DetectMode(lines []string) ParseMode {
	for _, l := range lines {
		if syntax.IsCellMarker(l) {
			return MarkerMode
		}
	}
	return SplitMode
}

// TokenKind is the structural class of a script line.
type TokenKind int

const (
	TokenPlain TokenKind = iota
	TokenSectionHeader
	TokenCellMarker
	TokenInclude
	TokenMarkdown
)

func (k TokenKind) String() string {
	switch k {
	case TokenSectionHeader:
		return "section-header"
	case TokenCellMarker:
		return "cell-marker"
	case TokenInclude:
		return "include"
	case TokenMarkdown:
		return "markdown"
	}
	return "plain"
}

// LineToken is a classified line.
type LineToken struct {
	Kind TokenKind
	Text string

	// Marker is set for TokenCellMarker.
	Marker syntax.CellMarker
}

// Classifier assigns a TokenKind to lines under a fixed ParseMode.
type Classifier struct {
	mode   ParseMode
	header syntax.Matcher
}

// NewClassifier returns a classifier for mode using header to recognize
// section headers.
func NewClassifier(mode ParseMode, header syntax.Matcher) Classifier {
	return Classifier{mode: mode, header: header}
}

// Mode returns the mode the classifier was built for.
func (c Classifier) Mode() ParseMode { return c.mode }

// Classify returns the token for line. In MarkerMode only markers and
// include directives are structural; in SplitMode markers do not occur and
// section headers and markdown lines are.
func (c Classifier) Classify(line string) LineToken {
	if syntax.IsIncludeDirective(line) {
		return LineToken{Kind: TokenInclude, Text: line}
	}
	if c.mode == MarkerMode {
		if m, ok := syntax.ParseCellMarker(line); ok {
			return LineToken{Kind: TokenCellMarker, Text: line, Marker: m}
		}
		return LineToken{Kind: TokenPlain, Text: line}
	}
	if c.header.MatchString(line) {
		return LineToken{Kind: TokenSectionHeader, Text: line}
	}
	if syntax.IsMarkdownLine(line) {
		return LineToken{Kind: TokenMarkdown, Text: line}
	}
	return LineToken{Kind: TokenPlain, Text: line}
}
