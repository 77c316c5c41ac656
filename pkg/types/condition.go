// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ConditionKind classifies a recoverable problem found during conversion.
type ConditionKind string

const (
	// MalformedMetadataToken is a metadata token without "=". The key is
	// kept with an empty value.
	MalformedMetadataToken ConditionKind = "malformed-metadata-token"

	// UnrecognizedCellType is a cell type other than code or markdown.
	// The cell is treated as code.
	UnrecognizedCellType ConditionKind = "unrecognized-cell-type"

	// MarkdownPrefixViolation is a markdown cell with a line that lacks
	// the "#! " prefix. The cell is treated as code, content unchanged.
	MarkdownPrefixViolation ConditionKind = "markdown-prefix-violation"
)

// Condition is a recoverable problem. Conditions never drop content.
type Condition struct {
	Kind ConditionKind `json:"kind" yaml:"kind"`

	// Source names the input (usually a file path). May be empty.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Line is the 1-based input line, or 0 when not tied to a line.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`

	// Detail describes the offending token or cell.
	Detail string `json:"detail" yaml:"detail"`
}

func (c Condition) String() string {
	switch {
	case c.Source != "" && c.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", c.Source, c.Line, c.Kind, c.Detail)
	case c.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", c.Line, c.Kind, c.Detail)
	case c.Source != "":
		return fmt.Sprintf("%s: %s: %s", c.Source, c.Kind, c.Detail)
	}
	return fmt.Sprintf("%s: %s", c.Kind, c.Detail)
}

// Reporter receives recoverable conditions. Delivery (logging, collection)
// is up to the implementation.
type Reporter interface {
	Report(Condition)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Condition)

// Report calls f(c).
func (f ReporterFunc) Report(c Condition) { f(c) }

// Conditions collects reported conditions in order.
type Conditions []Condition

// Report appends c.
func (cs *Conditions) Report(c Condition) { *cs = append(*cs, c) }

// Kinds returns the kind of each collected condition, in order.
func (cs Conditions) Kinds() []ConditionKind {
	out := make([]ConditionKind, len(cs))
	for i, c := range cs {
		out[i] = c.Kind
	}
	return out
}

// Discard is a Reporter that drops every condition.
var Discard Reporter = ReporterFunc(func(Condition) {})
