// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorGreen   = "#A9DC76"
	colorRed     = "#FF6188"
	colorComment = "#727072"
	colorMagenta = "#AB9DF2"
)

var (
	convertedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorMagenta))
)

// statusWriter colors the status lines written by the converter by their
// leading word. Each Write is expected to carry whole lines.
type statusWriter struct {
	w io.Writer
}

func (s statusWriter) Write(p []byte) (int, error) {
	text := string(p)
	trimmed := strings.TrimLeft(text, "\n")
	lead := text[:len(text)-len(trimmed)]
	body := strings.TrimRight(trimmed, "\n")
	tail := trimmed[len(body):]

	var style *lipgloss.Style
	switch {
	case strings.HasPrefix(body, "converted:"):
		style = &convertedStyle
	case strings.HasPrefix(body, "failed:"), strings.HasPrefix(body, "cancelled:"):
		style = &failedStyle
	case strings.HasPrefix(body, "skipped:"):
		style = &skippedStyle
	case strings.HasPrefix(body, "Batch summary:"):
		style = &headerStyle
	}
	if style == nil || body == "" {
		return s.w.Write(p)
	}
	if _, err := io.WriteString(s.w, lead+style.Render(body)+tail); err != nil {
		return 0, err
	}
	return len(p), nil
}
