// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Direction names a source format and a target format.
type Direction string

const (
	ScriptToNotebook   Direction = "sos-ipynb"
	NotebookToScript   Direction = "ipynb-sos"
	MarkupToNotebook   Direction = "rmd-ipynb"
	NotebookToNotebook Direction = "ipynb-ipynb"
)

// ErrUnsupported is returned for format combinations with no converter.
var ErrUnsupported = errors.New("unsupported conversion")

const (
	formatScript   = "sos"
	formatNotebook = "ipynb"
	formatMarkup   = "rmd"
)

// formatOf maps a file extension to a format name.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sos":
		return formatScript
	case ".ipynb":
		return formatNotebook
	case ".rmd":
		return formatMarkup
	}
	return ""
}

// DetectDirection decides the conversion for src. The target format is
// to when set, else the extension of dst, else the natural counterpart of
// the source format.
func DetectDirection(src, dst, to string) (Direction, error) {
	from := formatOf(src)
	if from == "" {
		return "", fmt.Errorf("%w: unknown source format %q", ErrUnsupported, filepath.Ext(src))
	}

	target := strings.ToLower(strings.TrimPrefix(to, "."))
	if target == "" && dst != "" {
		target = formatOf(dst)
		if target == "" {
			return "", fmt.Errorf("%w: unknown destination format %q", ErrUnsupported, filepath.Ext(dst))
		}
	}
	if target == "" {
		target = formatNotebook
		if from == formatNotebook {
			target = formatScript
		}
	}

	d := Direction(from + "-" + target)
	switch d {
	case ScriptToNotebook, NotebookToScript, MarkupToNotebook, NotebookToNotebook:
		return d, nil
	}
	return "", fmt.Errorf("%w: %s to %s", ErrUnsupported, from, target)
}

// DefaultDest returns src with the extension of the direction's target.
func DefaultDest(src string, d Direction) string {
	ext := ".ipynb"
	if d == NotebookToScript {
		ext = ".sos"
	}
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}
