// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package syntax holds the line-level grammar of .sos scripts: cell marker
// lines, include directives, the markdown prefix, and the default
// section-header grammar of the SoS workflow language.
package syntax

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// MarkdownPrefix starts every line of a markdown cell in a script.
	MarkdownPrefix = "#! "

	// markdownMark is the bare prefix; a line "#!" is an empty markdown line.
	markdownMark = "#!"

	cellKeyword       = "%cell"
	fileFormatKeyword = "#fileformat="
)

// Matcher decides whether a line is a section header. *regexp.Regexp
// satisfies it, so a compiled pattern can be injected directly.
type Matcher interface {
	MatchString(line string) bool
}

// MatcherFunc adapts a predicate to Matcher.
type MatcherFunc func(line string) bool

// MatchString calls f(line).
func (f MatcherFunc) MatchString(line string) bool { return f(line) }

// sectionName is a step name such as default, A_1, *_0 or 10, with an
// optional parenthesized alias.
const sectionName = `[\w*][\w*.-]*(?:\(\s*[\w.]*\s*\))?`

// SectionHeader matches SoS section headers: [name], [name_1, name_2] and
// [name: options].
var SectionHeader = regexp.MustCompile(
	`^\[\s*` + sectionName + `(?:\s*,\s*` + sectionName + `)*\s*(?::.*)?\]\s*$`)

// CellMarker is a parsed "%cell <type> [<count>] [<key>=<value> ...]" line.
type CellMarker struct {
	// Type is the declared cell type, "" when absent.
	Type string

	// Count is the explicit execution count, nil when absent.
	Count *int

	// Meta is the raw key=value text, "" when absent.
	Meta string
}

// IsCellMarker reports whether line is a %cell marker line.
func IsCellMarker(line string) bool {
	if !strings.HasPrefix(line, cellKeyword) {
		return false
	}
	rest := line[len(cellKeyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r'
}

// ParseCellMarker parses a marker line. The type is the first word unless
// that word is a number (a count) or contains "=" (metadata).
func ParseCellMarker(line string) (CellMarker, bool) {
	if !IsCellMarker(line) {
		return CellMarker{}, false
	}
	fields := strings.Fields(line[len(cellKeyword):])

	var m CellMarker
	i := 0
	if i < len(fields) && !isCount(fields[i]) && !strings.Contains(fields[i], "=") {
		m.Type = fields[i]
		i++
	}
	if i < len(fields) && isCount(fields[i]) {
		n, _ := strconv.Atoi(fields[i])
		m.Count = &n
		i++
	}
	m.Meta = strings.Join(fields[i:], " ")
	return m, true
}

func isCount(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// IsIncludeDirective reports whether line imports another script.
func IsIncludeDirective(line string) bool {
	return strings.HasPrefix(line, "%include") || strings.HasPrefix(line, "%from")
}

// IsMarkdownLine reports whether line starts with the markdown mark "#!".
func IsMarkdownLine(line string) bool {
	return strings.HasPrefix(line, markdownMark)
}

// StripMarkdownPrefix removes the markdown prefix from line. ok is false
// when line does not carry it; whitespace-only lines count as empty
// markdown lines.
func StripMarkdownPrefix(line string) (text string, ok bool) {
	switch {
	case strings.HasPrefix(line, MarkdownPrefix):
		return line[len(MarkdownPrefix):], true
	case strings.TrimRight(line, " \t\r") == markdownMark:
		return "", true
	case strings.TrimSpace(line) == "":
		return "", true
	}
	return line, false
}

// FileFormat returns the tag of a "#fileformat=<TAG>" line.
func FileFormat(line string) (tag string, ok bool) {
	if !strings.HasPrefix(line, fileFormatKeyword) {
		return "", false
	}
	return strings.TrimSpace(line[len(fileFormatKeyword):]), true
}

// FileFormatLine renders the "#fileformat=" line for version.
func FileFormatLine(version string) string {
	return fileFormatKeyword + version
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
