// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionHeader(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"[10]", true},
		{"[default]", true},
		{"[A_1]", true},
		{"[*_0]", true},
		{"[ step_10 ]", true},
		{"[a_1, b_2]", true},
		{"[global]  ", true},
		{"[step: shared='data', skip=False]", true},
		{"[align(name)]", true},
		{"a=1", false},
		{"[]", false},
		{"  [10]", false},
		{"[10] trailing", false},
		{"#! [10]", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SectionHeader.MatchString(tt.line), tt.line)
	}
}

func TestMatcherFunc(t *testing.T) {
	var m Matcher = MatcherFunc(func(line string) bool { return line == "##" })
	assert.True(t, m.MatchString("##"))
	assert.False(t, m.MatchString("#"))
}

func TestParseCellMarker(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantType  string
		wantCount *int
		wantMeta  string
	}{
		{name: "bare", line: "%cell"},
		{name: "type only", line: "%cell markdown", wantType: "markdown"},
		{name: "type and count", line: "%cell code 12", wantType: "code", wantCount: intPtr(12)},
		{
			name: "type count meta", line: "%cell code 3 kernel=R collapsed=True",
			wantType: "code", wantCount: intPtr(3), wantMeta: "kernel=R collapsed=True",
		},
		{name: "count without type", line: "%cell 7 kernel=R", wantCount: intPtr(7), wantMeta: "kernel=R"},
		{name: "meta without type", line: "%cell kernel=R", wantMeta: "kernel=R"},
		{name: "trailing space", line: "%cell code 1 ", wantType: "code", wantCount: intPtr(1)},
		{name: "unknown type", line: "%cell raw", wantType: "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ParseCellMarker(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, m.Type)
			assert.Equal(t, tt.wantCount, m.Count)
			assert.Equal(t, tt.wantMeta, m.Meta)
		})
	}
}

func TestIsCellMarker(t *testing.T) {
	assert.True(t, IsCellMarker("%cell"))
	assert.True(t, IsCellMarker("%cell code"))
	assert.False(t, IsCellMarker("%cells"))
	assert.False(t, IsCellMarker(" %cell code"))
	assert.False(t, IsCellMarker("print('%cell ')"))

	_, ok := ParseCellMarker("%cellar")
	assert.False(t, ok)
}

func TestIncludeAndMarkdownLines(t *testing.T) {
	assert.True(t, IsIncludeDirective("%include other"))
	assert.True(t, IsIncludeDirective("%from lib include step"))
	assert.False(t, IsIncludeDirective("include other"))

	assert.True(t, IsMarkdownLine("#! Title"))
	assert.True(t, IsMarkdownLine("#!"))
	assert.False(t, IsMarkdownLine("# comment"))
}

func TestStripMarkdownPrefix(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"#! Title", "Title", true},
		{"#!   indented", "  indented", true},
		{"#! ", "", true},
		{"#!", "", true},
		{"", "", true},
		{"   ", "", true},
		{"#!bash", "#!bash", false},
		{"plain", "plain", false},
	}
	for _, tt := range tests {
		got, ok := StripMarkdownPrefix(tt.line)
		assert.Equal(t, tt.wantOK, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestFileFormat(t *testing.T) {
	tag, ok := FileFormat("#fileformat=SOS1.0")
	assert.True(t, ok)
	assert.Equal(t, "SOS1.0", tag)

	_, ok = FileFormat("# fileformat=SOS1.0")
	assert.False(t, ok)

	assert.Equal(t, "#fileformat=SOS1.0", FileFormatLine("SOS1.0"))
}

func intPtr(n int) *int { return &n }
