// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sos-convert/internal/notebook"
	"github.com/pdiddy/sos-convert/internal/syntax"
	"github.com/pdiddy/sos-convert/pkg/types"
)

func parse(t *testing.T, text string) ([]types.Cell, types.Conditions) {
	t.Helper()
	var conds types.Conditions
	res, err := Parse(text, Options{Source: "test.sos", Reporter: &conds})
	require.NoError(t, err)
	return res.Cells, conds
}

func TestParseWorkflowScript(t *testing.T) {
	cells, conds := parse(t, "#!/usr/bin/env sos-runner\n#fileformat=SOS1.0\n\n[10]\na=1\n")
	assert.Empty(t, conds)
	require.Len(t, cells, 1)

	c := cells[0]
	assert.Equal(t, types.CellCode, c.Type)
	assert.Equal(t, "[10]\na=1", c.Text())
	n, ok := c.Count()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "SoS", c.Kernel())
}

func TestParseSplitMode(t *testing.T) {
	text := "#!/usr/bin/env sos-runner\n" +
		"#fileformat=SOS1.0\n" +
		"\n" +
		"#! # Analysis\n" +
		"#!\n" +
		"#! Some notes.\n" +
		"\n" +
		"[1]\n" +
		"a = 1\n" +
		"\n" +
		"[2: shared='a']\n" +
		"print(a)\n"

	res, err := Parse(text, Options{})
	require.NoError(t, err)
	assert.Equal(t, SplitMode, res.Mode)
	require.Len(t, res.Cells, 3)

	md := res.Cells[0]
	assert.Equal(t, types.CellMarkdown, md.Type)
	assert.Equal(t, []string{"# Analysis", "", "Some notes."}, md.Source)
	assert.Nil(t, md.ExecutionCount)
	assert.Equal(t, 0, md.Metadata.Len())

	assert.Equal(t, "[1]\na = 1", res.Cells[1].Text())
	assert.Equal(t, 2, *res.Cells[1].ExecutionCount)
	assert.Equal(t, "[2: shared='a']\nprint(a)", res.Cells[2].Text())
	assert.Equal(t, 3, *res.Cells[2].ExecutionCount)
}

func TestParseMarkerMode(t *testing.T) {
	text := "#!/usr/bin/env sos-runner\n" +
		"#fileformat=SOS1.0\n" +
		"\n" +
		"%cell markdown\n" +
		"#! # Title\n" +
		"\n" +
		"%cell code 5 kernel=R collapsed=True\n" +
		"x <- 1\n" +
		"[not a header here]\n" +
		"\n" +
		"%cell code\n" +
		"y <- 2\n"

	res, err := Parse(text, Options{})
	require.NoError(t, err)
	assert.Equal(t, MarkerMode, res.Mode)
	require.Len(t, res.Cells, 3)

	assert.Equal(t, types.CellMarkdown, res.Cells[0].Type)
	assert.Equal(t, "# Title", res.Cells[0].Text())

	code := res.Cells[1]
	assert.Equal(t, "x <- 1\n[not a header here]", code.Text())
	assert.Equal(t, 5, *code.ExecutionCount)
	assert.Equal(t, []string{"kernel", "collapsed"}, code.Metadata.Keys())
	collapsed, _ := code.Metadata.Get("collapsed")
	b, isBool := collapsed.Bool()
	assert.True(t, isBool)
	assert.True(t, b)

	assert.Equal(t, 6, *res.Cells[2].ExecutionCount)
}

func TestDetectMode(t *testing.T) {
	assert.Equal(t, SplitMode, DetectMode([]string{"[1]", "a=1", "x = '%cell code'"}))
	assert.Equal(t, MarkerMode, DetectMode([]string{"[1]", "%cell code"}))
	assert.Equal(t, MarkerMode, DetectMode([]string{"%cell"}))
}

func TestParseDropsBlankCells(t *testing.T) {
	text := "%cell code 1\n\n   \n%cell markdown\n#!\n%cell code\nz\n"
	cells, _ := parse(t, text)
	require.Len(t, cells, 2)
	assert.Equal(t, types.CellMarkdown, cells[0].Type)
	assert.Empty(t, cells[0].Source)
	assert.Equal(t, "z", cells[1].Text())
	assert.Equal(t, 3, *cells[1].ExecutionCount)
}

func TestParseBlankCellKeepsExplicitCount(t *testing.T) {
	cells, _ := parse(t, "%cell code 5\n\n%cell code\nx\n")
	require.Len(t, cells, 1)
	assert.Equal(t, "x", cells[0].Text())
	assert.Equal(t, 6, *cells[0].ExecutionCount)
}

func TestParseTrimsOnlyBlankLines(t *testing.T) {
	cells, _ := parse(t, "%cell code\n\n    indented()\n\tmore()\n\n")
	require.Len(t, cells, 1)
	assert.Equal(t, []string{"    indented()", "\tmore()"}, cells[0].Source)
}

func TestParseCRLF(t *testing.T) {
	cells, _ := parse(t, "#fileformat=SOS1.0\r\n[1]\r\na=1\r\n")
	require.Len(t, cells, 1)
	assert.Equal(t, []string{"[1]", "a=1"}, cells[0].Source)
}

func TestParseConditions(t *testing.T) {
	t.Run("malformed metadata token", func(t *testing.T) {
		cells, conds := parse(t, "%cell code 1 kernel=R c\nx\n")
		require.Len(t, cells, 1)
		assert.Equal(t, []types.ConditionKind{types.MalformedMetadataToken}, conds.Kinds())
		assert.Equal(t, 1, conds[0].Line)
		assert.Equal(t, "test.sos", conds[0].Source)
		v, ok := cells[0].Metadata.Get("c")
		assert.True(t, ok)
		assert.Equal(t, "", v.String())
	})

	t.Run("unrecognized cell type", func(t *testing.T) {
		cells, conds := parse(t, "%cell raw\nsome text\n")
		require.Len(t, cells, 1)
		assert.Equal(t, []types.ConditionKind{types.UnrecognizedCellType}, conds.Kinds())
		assert.Equal(t, types.CellCode, cells[0].Type)
		assert.Equal(t, "some text", cells[0].Text())
	})

	t.Run("markdown prefix violation", func(t *testing.T) {
		cells, conds := parse(t, "%cell markdown\n#! fine\nnot prefixed\n")
		require.Len(t, cells, 1)
		assert.Equal(t, []types.ConditionKind{types.MarkdownPrefixViolation}, conds.Kinds())
		assert.Equal(t, types.CellCode, cells[0].Type)
		assert.Equal(t, []string{"#! fine", "not prefixed"}, cells[0].Source)
	})
}

func TestParseFormatMismatch(t *testing.T) {
	res, err := Parse("#!/usr/bin/env sos-runner\n#fileformat=XYZ1.0\n[1]\n", Options{Source: "bad.sos"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrFormatMismatch))

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "bad.sos", fe.Source)
	assert.Equal(t, 2, fe.Line)
	assert.Equal(t, "XYZ1.0", fe.Tag)
	assert.Contains(t, err.Error(), "bad.sos:2")
}

func TestParseLeadingMarkdownWithoutShebang(t *testing.T) {
	cells, _ := parse(t, "#! # Heading\n[1]\na\n")
	require.Len(t, cells, 2)
	assert.Equal(t, types.CellMarkdown, cells[0].Type)
	assert.Equal(t, "# Heading", cells[0].Text())
}

func TestParseCustomHeaderMatcher(t *testing.T) {
	header := syntax.MatcherFunc(func(line string) bool { return line == "---" })
	res, err := Parse("---\na\n---\nb\n", Options{Header: header, HostKernel: "Host"})
	require.NoError(t, err)
	require.Len(t, res.Cells, 2)
	assert.Equal(t, "Host", res.Cells[1].Kernel())
}

func TestEmitWorkflow(t *testing.T) {
	doc := notebook.Build([]types.Cell{
		{Type: types.CellMarkdown, Source: []string{"# Title"}},
		{Type: types.CellCode, Source: []string{"", "[1]", "a=1", ""}, ExecutionCount: types.IntPtr(1)},
		{Type: types.CellCode, Source: []string{"%include lib", "b=2"}},
		{Type: types.CellCode, Source: []string{"[2]", "x"}, Metadata: types.NewMetadata(
			types.Entry{Key: "kernel", Value: types.StringValue("R")})},
		{Type: types.CellCode, Source: []string{"[3]", "c=3"}},
	}, types.ExportAll, notebook.BuildOptions{})

	got := Emit(doc, types.WorkflowOnly, EmitOptions{})
	want := "#!/usr/bin/env sos-runner\n" +
		"#fileformat=SOS1.0\n" +
		"\n" +
		"[1]\na=1\n" +
		"\n" +
		"%include lib\n" +
		"[3]\nc=3\n" +
		"\n"
	assert.Equal(t, want, got)
}

func TestEmitExportAll(t *testing.T) {
	doc := types.Document{Cells: []types.Cell{
		{Type: types.CellMarkdown, Source: []string{"# Title", "", "text"}},
		{Type: types.CellMarkdown},
		{
			Type:           types.CellCode,
			Source:         []string{"x <- 1"},
			ExecutionCount: types.IntPtr(4),
			Metadata: types.NewMetadata(
				types.Entry{Key: "kernel", Value: types.StringValue("R")},
				types.Entry{Key: "collapsed", Value: types.BoolValue(false)},
			),
		},
		{Type: types.CellCode, Source: []string{"y"}},
	}}

	got := Emit(doc, types.ExportAll, EmitOptions{})
	want := "#!/usr/bin/env sos-runner\n" +
		"#fileformat=SOS1.0\n" +
		"\n" +
		"%cell markdown\n#! # Title\n#! \n#! text\n\n" +
		"%cell markdown\n#! \n\n" +
		"%cell code 4 kernel=R collapsed=False\nx <- 1\n\n" +
		"%cell code\ny\n\n"
	assert.Equal(t, want, got)
}

func TestEmitUnrecognizedCellType(t *testing.T) {
	var conds types.Conditions
	doc := types.Document{Cells: []types.Cell{{Type: "raw", Source: []string{"data"}}}}
	got := Emit(doc, types.ExportAll, EmitOptions{Reporter: &conds})
	assert.Contains(t, got, "%cell code\ndata\n")
	assert.Equal(t, []types.ConditionKind{types.UnrecognizedCellType}, conds.Kinds())
}

func TestEmitReportsLossyMetadata(t *testing.T) {
	var conds types.Conditions
	cell := types.Cell{Type: types.CellCode, Source: []string{"x"}, ExecutionCount: types.IntPtr(1)}
	cell.Metadata.Set("title", types.StringValue("two words"))
	got := Emit(types.Document{Cells: []types.Cell{cell}}, types.ExportAll, EmitOptions{Source: "nb.ipynb", Reporter: &conds})

	assert.Contains(t, got, "%cell code 1 title=two words\n")
	require.Equal(t, []types.ConditionKind{types.MalformedMetadataToken}, conds.Kinds())
	assert.Equal(t, "nb.ipynb", conds[0].Source)
	assert.Contains(t, conds[0].Detail, "cell 1")
}

func TestSplitModePlainLineJoinsMarkdownRun(t *testing.T) {
	cells, conds := parse(t, "#! note\na=1\n")
	require.Len(t, cells, 1)
	assert.Equal(t, types.CellCode, cells[0].Type)
	assert.Equal(t, []string{"#! note", "a=1"}, cells[0].Source)
	assert.Equal(t, []types.ConditionKind{types.MarkdownPrefixViolation}, conds.Kinds())
}

func TestMarkdownPrefixViolationKeepsContent(t *testing.T) {
	cells, conds := parse(t, "%cell markdown\n#! fine\nnot prefixed\n")
	require.Len(t, cells, 1)
	assert.Equal(t, []types.ConditionKind{types.MarkdownPrefixViolation}, conds.Kinds())

	text := Emit(types.Document{Cells: cells}, types.ExportAll, EmitOptions{})
	assert.Contains(t, text, "%cell code 1\n#! fine\nnot prefixed\n")

	again, conds := parse(t, text)
	assert.Empty(t, conds)
	require.Len(t, again, 1)
	assert.Equal(t, types.CellCode, again[0].Type)
	assert.Equal(t, []string{"#! fine", "not prefixed"}, again[0].Source)
}

func TestExportAllRoundTrip(t *testing.T) {
	cells := []types.Cell{
		{Type: types.CellMarkdown, Source: []string{"# Title", "", "  indented text"}},
		{
			Type:           types.CellCode,
			Source:         []string{"[1]", "a = 1"},
			ExecutionCount: types.IntPtr(3),
			Metadata:       types.NewMetadata(types.Entry{Key: "kernel", Value: types.StringValue("SoS")}),
		},
		{
			Type:           types.CellCode,
			Source:         []string{"x <- c(1, 2)", "", "print(x)"},
			ExecutionCount: types.IntPtr(7),
			Metadata: types.NewMetadata(
				types.Entry{Key: "kernel", Value: types.StringValue("R")},
				types.Entry{Key: "scrolled", Value: types.BoolValue(true)},
			),
		},
		{Type: types.CellMarkdown, Source: []string{"closing"}},
	}

	doc := notebook.Build(cells, types.ExportAll, notebook.BuildOptions{})
	text := Emit(doc, types.ExportAll, EmitOptions{})

	back, conds := parse(t, text)
	assert.Empty(t, conds)
	require.Len(t, back, len(cells))
	for i := range cells {
		assert.Equal(t, cells[i].Type, back[i].Type, "cell %d", i)
		assert.Equal(t, cells[i].Source, back[i].Source, "cell %d", i)
		assert.Equal(t, cells[i].ExecutionCount, back[i].ExecutionCount, "cell %d", i)
		assert.True(t, cells[i].Metadata.Equal(back[i].Metadata), "cell %d", i)
	}
}

func TestEmitIdempotent(t *testing.T) {
	text := "#!/usr/bin/env sos-runner\n" +
		"#fileformat=SOS1.0\n" +
		"\n" +
		"%cell markdown\n#! notes\n\n" +
		"%cell code 2 kernel=SoS\n[a]\nprint(1)\n\n"

	for _, variant := range []types.Variant{types.ExportAll, types.WorkflowOnly} {
		t.Run(string(variant), func(t *testing.T) {
			res, err := Parse(text, Options{})
			require.NoError(t, err)
			doc := notebook.Build(res.Cells, variant, notebook.BuildOptions{})
			first := Emit(doc, variant, EmitOptions{})

			res2, err := Parse(first, Options{})
			require.NoError(t, err)
			doc2 := notebook.Build(res2.Cells, variant, notebook.BuildOptions{})
			second := Emit(doc2, variant, EmitOptions{})

			assert.Equal(t, first, second)
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\n\r\nb"))
}
