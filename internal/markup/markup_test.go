// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markup

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sos-convert/pkg/types"
)

type wantCell struct {
	typ    types.CellType
	text   string
	kernel string
	count  int
}

func check(t *testing.T, doc types.Document, want []wantCell) {
	t.Helper()
	require.Len(t, doc.Cells, len(want))
	for i, w := range want {
		c := doc.Cells[i]
		assert.Equal(t, w.typ, c.Type, "cell %d", i)
		assert.Equal(t, w.text, c.Text(), "cell %d", i)
		assert.Equal(t, w.kernel, c.Kernel(), "cell %d", i)
		if w.typ == types.CellCode {
			n, ok := c.Count()
			require.True(t, ok, "cell %d", i)
			assert.Equal(t, w.count, n, "cell %d", i)
		} else {
			assert.Nil(t, c.ExecutionCount, "cell %d", i)
		}
	}
}

func TestSplitHeadingAndFence(t *testing.T) {
	doc := Split("# Title\n\n```{r}\nx<-1\n```\nmore text", Options{})
	check(t, doc, []wantCell{
		{typ: types.CellMarkdown, text: "Title"},
		{typ: types.CellMarkdown, text: ""},
		{typ: types.CellCode, text: "x<-1", kernel: "R", count: 1},
		{typ: types.CellMarkdown, text: "more text"},
	})
}

func TestSplitDocument(t *testing.T) {
	text := "---\ntitle: Report\n---\n\n" +
		"Intro with `r 1+1` inline.\n\n" +
		"## Load\n\n" +
		"```{r setup}\nlibrary(x)\n\n  y <- 2\n```\n\n" +
		"```{r}\nplot(y)\n```\n" +
		"### Done\nbye\n"

	doc := Split(text, Options{})
	check(t, doc, []wantCell{
		{typ: types.CellMarkdown, text: "---\ntitle: Report\n---\n\nIntro with `r 1+1` inline."},
		{typ: types.CellMarkdown, text: "Load"},
		{typ: types.CellMarkdown, text: ""},
		{typ: types.CellCode, text: "library(x)\n\n  y <- 2", kernel: "R", count: 1},
		{typ: types.CellMarkdown, text: ""},
		{typ: types.CellCode, text: "plot(y)", kernel: "R", count: 2},
		{typ: types.CellMarkdown, text: ""},
		{typ: types.CellMarkdown, text: "Done"},
		{typ: types.CellMarkdown, text: "bye"},
	})
}

func TestSplitKeepHeadingMarker(t *testing.T) {
	doc := Split("## Results\nsee below\n", Options{KeepHeadingMarker: true})
	check(t, doc, []wantCell{
		{typ: types.CellMarkdown, text: "## Results"},
		{typ: types.CellMarkdown, text: "see below"},
	})
}

func TestSplitNoStructure(t *testing.T) {
	check(t, Split("just prose\n", Options{}), []wantCell{
		{typ: types.CellMarkdown, text: "just prose"},
	})
	assert.Empty(t, Split("", Options{}).Cells)
	assert.Empty(t, Split("\n\n", Options{}).Cells)
}

func TestSplitHashWithoutSpaceIsNotHeading(t *testing.T) {
	check(t, Split("#notaheading\ntext", Options{}), []wantCell{
		{typ: types.CellMarkdown, text: "#notaheading\ntext"},
	})
}

func TestSplitMetadata(t *testing.T) {
	doc := Split("```{python}\nprint(1)\n```", Options{Language: "Python3", Kernel: "python3"})
	require.Len(t, doc.Cells, 2)
	assert.Equal(t, "Python3", doc.Cells[0].Kernel())

	md := doc.Metadata
	assert.Equal(t, "sos", md.KernelSpec.Name)
	assert.Equal(t, []types.KernelInfo{{Name: "SoS", Kernel: "sos"}, {Name: "Python3", Kernel: "python3"}}, md.Kernels)
	assert.Equal(t, "Python3", md.DefaultKernel)

	def := Split("x", Options{})
	assert.Equal(t, "R", def.Metadata.DefaultKernel)
	assert.Equal(t, []types.KernelInfo{{Name: "SoS", Kernel: "sos"}, {Name: "R", Kernel: "ir"}}, def.Metadata.Kernels)
}

func TestSplitCaptured(t *testing.T) {
	re := regexp.MustCompile(`<(\w+)>`)
	assert.Equal(t, []string{"a", "x", "b", "y", ""}, splitCaptured(re, "a<x>b<y>", 1))
	assert.Equal(t, []string{"a", "<x>", "b"}, splitCaptured(re, "a<x>b", 0))
	assert.Equal(t, []string{"plain"}, splitCaptured(re, "plain", 1))
}
