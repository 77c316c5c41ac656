// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sos-convert/pkg/types"
)

func TestReporterLogsConditions(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	r := l.Reporter("a.sos")
	r.Report(types.Condition{Kind: types.MalformedMetadataToken, Line: 3, Detail: `metadata token "c" has no value`})

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "malformed-metadata-token")
	assert.Contains(t, out, "source=a.sos")
	assert.Contains(t, out, "line=3")
}

func TestReporterKeepsConditionSource(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Reporter("fallback").Report(types.Condition{Kind: types.UnrecognizedCellType, Source: "real.ipynb"})
	assert.Contains(t, buf.String(), "source=real.ipynb")
	assert.NotContains(t, buf.String(), "fallback")
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.WarnLevel)
	l.Skipped("a.sos", "unchanged")
	l.Converted("a.sos", "a.ipynb", "sos-ipynb", 2)
	assert.Empty(t, buf.String())

	l.ConversionError("a.sos", "a.ipynb", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)

	level, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.ConfigLoaded("", types.DefaultConvertConfig())
	l.Reporter("x").Report(types.Condition{Kind: types.MarkdownPrefixViolation})
}
