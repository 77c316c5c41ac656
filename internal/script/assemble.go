// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"fmt"
	"strings"

	"github.com/pdiddy/sos-convert/internal/metacodec"
	"github.com/pdiddy/sos-convert/internal/syntax"
	"github.com/pdiddy/sos-convert/pkg/types"
)

// state is the assembler state.
type state int

const (
	stateBeforePreamble state = iota
	stateInCode
	stateInMarkdown
)

// openCell describes the cell whose lines are being buffered.
type openCell struct {
	// declared is the cell type as written; it may be unrecognized.
	declared string
	count    *int
	meta     types.Metadata
	line     int
	buf      []string
}

// assembler turns classified lines into cells. One assembler serves one
// parse; counter holds the count of the last emitted cell.
type assembler struct {
	opts       Options
	classifier Classifier
	state      state
	preamble   int
	counter    int
	cur        openCell
	cells      []types.Cell
}

func newAssembler(opts Options, mode ParseMode) *assembler {
	return &assembler{
		opts:       opts,
		classifier: NewClassifier(mode, opts.Header),
		state:      stateBeforePreamble,
	}
}

// feed processes one input line; lineNo is 1-based.
func (a *assembler) feed(line string, lineNo int) error {
	if a.state == stateBeforePreamble {
		done, err := a.preambleLine(line, lineNo)
		if err != nil || done {
			return err
		}
		a.open(string(types.CellCode), nil, types.Metadata{}, lineNo)
	}

	tok := a.classifier.Classify(line)
	switch tok.Kind {
	case TokenCellMarker:
		a.flush()
		meta, conds := metacodec.Decode(tok.Marker.Meta)
		for _, c := range conds {
			a.report(c.Kind, lineNo, c.Detail)
		}
		declared := tok.Marker.Type
		if declared == "" {
			declared = string(types.CellCode)
		}
		a.open(declared, tok.Marker.Count, meta, lineNo)
		return nil

	case TokenSectionHeader:
		a.flush()
		meta := types.NewMetadata(types.Entry{Key: "kernel", Value: types.StringValue(a.opts.HostKernel)})
		a.open(string(types.CellCode), nil, meta, lineNo)

	case TokenMarkdown:
		if a.state != stateInMarkdown {
			a.flush()
			a.open(string(types.CellMarkdown), nil, types.Metadata{}, lineNo)
		}
	}

	a.cur.buf = append(a.cur.buf, line)
	return nil
}

// preambleLine consumes the optional shebang and #fileformat= lines. It
// returns done=true when line belongs to the preamble.
func (a *assembler) preambleLine(line string, lineNo int) (bool, error) {
	if a.preamble == 0 && syntax.IsMarkdownLine(line) && !strings.HasPrefix(line, syntax.MarkdownPrefix) {
		a.preamble++
		return true, nil
	}
	if tag, ok := syntax.FileFormat(line); ok && a.preamble < 2 {
		if !strings.HasPrefix(tag, a.opts.FormatTag) {
			return false, &FormatError{
				Source: a.opts.Source,
				Line:   lineNo,
				Tag:    tag,
				Want:   a.opts.FormatTag,
			}
		}
		a.preamble = 2
		return true, nil
	}
	return false, nil
}

// open starts buffering a new cell.
func (a *assembler) open(declared string, count *int, meta types.Metadata, lineNo int) {
	a.cur = openCell{declared: declared, count: count, meta: meta, line: lineNo}
	if declared == string(types.CellMarkdown) {
		a.state = stateInMarkdown
	} else {
		a.state = stateInCode
	}
}

// flush emits the buffered cell unless its content is blank.
func (a *assembler) flush() {
	cur := a.cur
	a.cur = openCell{}

	lines := trimBlankLines(cur.buf)
	if len(lines) == 0 {
		// An explicit count still resets the counter.
		if cur.count != nil {
			a.counter = *cur.count
		}
		return
	}

	cellType := types.CellType(cur.declared)
	if !cellType.Known() {
		a.report(types.UnrecognizedCellType, cur.line,
			fmt.Sprintf("unrecognized cell type %q, code assumed", cur.declared))
		cellType = types.CellCode
	}

	if cellType == types.CellMarkdown {
		text, ok := stripMarkdown(lines)
		if ok {
			lines = trimBlankLines(text)
		} else {
			a.report(types.MarkdownPrefixViolation, cur.line,
				fmt.Sprintf("markdown lines not starting with %q, code cell assumed", syntax.MarkdownPrefix))
			cellType = types.CellCode
		}
	}

	count := a.counter + 1
	if cur.count != nil {
		count = *cur.count
	}
	a.counter = count

	cell := types.Cell{
		Type:     cellType,
		Source:   lines,
		Metadata: cur.meta,
	}
	if cellType == types.CellCode {
		cell.ExecutionCount = types.IntPtr(count)
	}
	a.cells = append(a.cells, cell)
}

func (a *assembler) report(kind types.ConditionKind, line int, detail string) {
	a.opts.Reporter.Report(types.Condition{
		Kind:   kind,
		Source: a.opts.Source,
		Line:   line,
		Detail: detail,
	})
}

// stripMarkdown removes the markdown prefix from every line. ok is false if
// any line lacks it, in which case lines are returned unchanged.
func stripMarkdown(lines []string) ([]string, bool) {
	out := make([]string, len(lines))
	for i, l := range lines {
		text, ok := syntax.StripMarkdownPrefix(l)
		if !ok {
			return lines, false
		}
		out[i] = text
	}
	return out, true
}

// trimBlankLines drops leading and trailing whitespace-only lines.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && syntax.IsBlank(lines[start]) {
		start++
	}
	for end > start && syntax.IsBlank(lines[end-1]) {
		end--
	}
	if start == end {
		return nil
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}
