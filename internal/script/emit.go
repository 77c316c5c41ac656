// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/sos-convert/internal/metacodec"
	"github.com/pdiddy/sos-convert/internal/notebook"
	"github.com/pdiddy/sos-convert/internal/syntax"
	"github.com/pdiddy/sos-convert/pkg/types"
)

const (
	defaultShebang       = "#!/usr/bin/env sos-runner"
	defaultFormatVersion = "SOS1.0"
)

// EmitOptions configures Emit.
type EmitOptions struct {
	// Source names the document in conditions.
	Source string

	// Shebang is the first line of the output.
	Shebang string

	// FormatVersion is written as #fileformat=<FormatVersion>.
	FormatVersion string

	// HostKernel is the workflow language; workflow export keeps only its cells.
	HostKernel string

	// Header recognizes section headers.
	Header syntax.Matcher

	// Reporter receives recoverable conditions.
	Reporter types.Reporter
}

func (o EmitOptions) withDefaults() EmitOptions {
	if o.Shebang == "" {
		o.Shebang = defaultShebang
	}
	if o.FormatVersion == "" {
		o.FormatVersion = defaultFormatVersion
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

// Emit serializes doc as script text. WorkflowOnly writes only section
// cells of the host language; ExportAll writes every cell behind a %cell
// marker so that Parse can rebuild it.
func Emit(doc types.Document, variant types.Variant, opts EmitOptions) string {
	opts = opts.withDefaults()

	var b strings.Builder
	b.WriteString(opts.Shebang)
	b.WriteByte('\n')
	b.WriteString(syntax.FileFormatLine(opts.FormatVersion))
	b.WriteString("\n\n")

	for i, cell := range doc.Cells {
		if variant == types.ExportAll {
			emitMarked(&b, cell, i, opts)
		} else {
			emitWorkflow(&b, cell, opts)
		}
	}
	return b.String()
}

// EmittedCells returns how many cells of doc Emit writes for variant.
func EmittedCells(doc types.Document, variant types.Variant, opts EmitOptions) int {
	if variant == types.ExportAll {
		return len(doc.Cells)
	}
	opts = opts.withDefaults()
	n := 0
	for _, cell := range doc.Cells {
		if notebook.IsWorkflowCell(cell, opts.Header, opts.HostKernel) {
			n++
		}
	}
	return n
}

// emitWorkflow writes a section cell verbatim followed by a blank line.
// Include directives of host-language cells without a section header are
// still written, without a separator.
func emitWorkflow(b *strings.Builder, cell types.Cell, opts EmitOptions) {
	if notebook.IsWorkflowCell(cell, opts.Header, opts.HostKernel) {
		writeLines(b, trimBlankLines(cell.Source))
		b.WriteByte('\n')
		return
	}
	if cell.Type == types.CellMarkdown || !notebook.IsHostKernel(cell.Kernel(), opts.HostKernel) {
		return
	}
	for _, line := range cell.Source {
		if syntax.IsIncludeDirective(line) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
}

// emitMarked writes "%cell <type> [<count>] [<meta>]" and the cell content
// followed by a blank line.
func emitMarked(b *strings.Builder, cell types.Cell, idx int, opts EmitOptions) {
	cellType := cell.Type
	if !cellType.Known() {
		opts.Reporter.Report(types.Condition{
			Kind:   types.UnrecognizedCellType,
			Source: opts.Source,
			Detail: fmt.Sprintf("cell %d: unrecognized cell type %q, code assumed", idx+1, cell.Type),
		})
		cellType = types.CellCode
	}

	parts := []string{"%cell", string(cellType)}
	if n, ok := cell.Count(); ok && cellType == types.CellCode {
		parts = append(parts, strconv.Itoa(n))
	}
	for _, c := range metacodec.Check(cell.Metadata) {
		c.Source = opts.Source
		c.Detail = fmt.Sprintf("cell %d: %s", idx+1, c.Detail)
		opts.Reporter.Report(c)
	}
	if meta := metacodec.Encode(cell.Metadata); meta != "" {
		parts = append(parts, meta)
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteByte('\n')

	if cellType == types.CellMarkdown {
		lines := trimBlankLines(cell.Source)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for _, line := range lines {
			b.WriteString(syntax.MarkdownPrefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	} else {
		writeLines(b, trimBlankLines(cell.Source))
	}
	b.WriteByte('\n')
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
