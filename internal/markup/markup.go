// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup converts R Markdown text into a notebook Document. Headings
// and prose become markdown cells; fenced code blocks become code cells of
// a single secondary language. Inline expressions are left as text.
package markup

import (
	"regexp"
	"strings"

	"github.com/pdiddy/sos-convert/internal/notebook"
	"github.com/pdiddy/sos-convert/pkg/types"
)

var (
	headingPattern    = regexp.MustCompile(`(?m)^(#+[ \t]+(.*))$`)
	fenceOpenPattern  = regexp.MustCompile("(?m)^\\s*(```\\{.*\\})$")
	fenceClosePattern = regexp.MustCompile("(?m)^\\s*```$")
)

// Options configures Split.
type Options struct {
	// Language names the fenced code language (default "R").
	Language string

	// Kernel is the Jupyter kernel of Language (default "ir").
	Kernel string

	// HostKernel is the notebook host language (default "SoS").
	HostKernel string

	// KeepHeadingMarker keeps the leading #s in heading cells. By default a
	// heading cell holds only the heading title.
	KeepHeadingMarker bool
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = "R"
	}
	if o.Kernel == "" {
		o.Kernel = "ir"
	}
	if o.HostKernel == "" {
		o.HostKernel = "SoS"
	}
	return o
}

// Split converts markup text into a Document whose default kernel is the
// code language. Text before the first heading is dropped when blank.
func Split(text string, opts Options) types.Document {
	opts = opts.withDefaults()
	text = strings.ReplaceAll(text, "\r\n", "\n")

	group := 2
	if opts.KeepHeadingMarker {
		group = 1
	}

	s := splitter{opts: opts}
	for i, segment := range splitCaptured(headingPattern, text, group) {
		if i%2 == 1 {
			s.markdown(segment)
			continue
		}
		s.body(segment, i == 0)
	}

	return types.Document{
		Cells: s.cells,
		Metadata: notebook.Template(opts.HostKernel, opts.Language,
			types.KernelInfo{Name: opts.Language, Kernel: opts.Kernel}),
	}
}

type splitter struct {
	opts  Options
	count int
	cells []types.Cell
}

// body splits the text between headings on fenced code blocks.
func (s *splitter) body(text string, leading bool) {
	for i, piece := range splitCaptured(fenceOpenPattern, text, 1) {
		switch {
		case i == 0:
			if leading && strings.TrimSpace(piece) == "" {
				continue
			}
			s.markdown(piece)
		case i%2 == 1:
			// fence line
		default:
			parts := fenceClosePattern.Split(piece, -1)
			s.code(parts[0])
			for _, trailing := range parts[1:] {
				s.markdown(trailing)
			}
		}
	}
}

func (s *splitter) markdown(text string) {
	s.cells = append(s.cells, types.Cell{
		Type:   types.CellMarkdown,
		Source: lines(strings.TrimSpace(text)),
	})
}

func (s *splitter) code(text string) {
	s.count++
	s.cells = append(s.cells, types.Cell{
		Type:           types.CellCode,
		Source:         trimBlankLines(lines(text)),
		ExecutionCount: types.IntPtr(s.count),
		Metadata:       types.NewMetadata(types.Entry{Key: "kernel", Value: types.StringValue(s.opts.Language)}),
	})
}

// splitCaptured splits text around every match of re and keeps the given
// capture group of each match between the surrounding pieces, so odd
// indexes hold captures and even indexes the text between them.
func splitCaptured(re *regexp.Regexp, text string, group int) []string {
	var out []string
	prev := 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, text[prev:loc[0]], text[loc[2*group]:loc[2*group+1]])
		prev = loc[1]
	}
	return append(out, text[prev:])
}

func lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func trimBlankLines(ls []string) []string {
	for len(ls) > 0 && strings.TrimSpace(ls[0]) == "" {
		ls = ls[1:]
	}
	for len(ls) > 0 && strings.TrimSpace(ls[len(ls)-1]) == "" {
		ls = ls[:len(ls)-1]
	}
	if len(ls) == 0 {
		return nil
	}
	return ls
}
