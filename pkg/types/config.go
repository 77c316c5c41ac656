// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// ScriptConfig holds settings for the script side of a conversion.
type ScriptConfig struct {
	// FormatTag is the prefix a #fileformat= value must start with (default "SOS").
	FormatTag string `json:"format_tag" yaml:"format_tag" mapstructure:"format_tag"`

	// FormatVersion is written in the #fileformat= line on emit (default "SOS1.0").
	FormatVersion string `json:"format_version" yaml:"format_version" mapstructure:"format_version"`

	// Shebang is the first line written on emit (default "#!/usr/bin/env sos-runner").
	Shebang string `json:"shebang" yaml:"shebang" mapstructure:"shebang"`

	// HostKernel is the language name of the workflow language (default "SoS").
	// Section cells are tagged with it and workflow export keeps only its cells.
	HostKernel string `json:"host_kernel" yaml:"host_kernel" mapstructure:"host_kernel"`
}

// MarkupConfig holds settings for the R Markdown pipeline.
type MarkupConfig struct {
	// Language is the language name of fenced code cells (default "R").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// Kernel is the Jupyter kernel id of Language (default "ir").
	Kernel string `json:"kernel" yaml:"kernel" mapstructure:"kernel"`

	// KeepHeadingMarker keeps the leading #s in heading cells.
	KeepHeadingMarker bool `json:"keep_heading_marker" yaml:"keep_heading_marker" mapstructure:"keep_heading_marker"`
}

// NotebookConfig holds settings for writing .ipynb files.
type NotebookConfig struct {
	// CellIDs writes nbformat 4.5 cell ids.
	CellIDs bool `json:"cell_ids" yaml:"cell_ids" mapstructure:"cell_ids"`
}

// LedgerConfig holds settings for the conversion ledger.
type LedgerConfig struct {
	// Dir is the directory holding ledger.db (default ".sos-convert").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ConvertConfig groups all settings of the converter.
type ConvertConfig struct {
	Script   ScriptConfig   `json:"script" yaml:"script" mapstructure:"script"`
	Markup   MarkupConfig   `json:"markup" yaml:"markup" mapstructure:"markup"`
	Notebook NotebookConfig `json:"notebook" yaml:"notebook" mapstructure:"notebook"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger" mapstructure:"ledger"`

	// ExportAll selects the export-all variant by default.
	ExportAll bool `json:"export_all" yaml:"export_all" mapstructure:"export_all"`

	// LogLevel is one of debug, info, warn, error (default "info").
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConvertConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		Script: ScriptConfig{
			FormatTag:     "SOS",
			FormatVersion: "SOS1.0",
			Shebang:       "#!/usr/bin/env sos-runner",
			HostKernel:    "SoS",
		},
		Markup: MarkupConfig{
			Language: "R",
			Kernel:   "ir",
		},
		Ledger: LedgerConfig{
			Dir:        ".sos-convert",
			MaxResults: 20,
		},
		LogLevel: "info",
	}
}

// Variant returns the variant selected by ExportAll.
func (c ConvertConfig) Variant() Variant {
	if c.ExportAll {
		return ExportAll
	}
	return WorkflowOnly
}

// Validate checks that required settings are present.
func (c ConvertConfig) Validate() error {
	if c.Script.FormatTag == "" {
		return fmt.Errorf("script.format_tag cannot be empty")
	}
	if c.Script.FormatVersion == "" {
		return fmt.Errorf("script.format_version cannot be empty")
	}
	if !strings.HasPrefix(c.Script.FormatVersion, c.Script.FormatTag) {
		return fmt.Errorf("script.format_version %q must start with script.format_tag %q",
			c.Script.FormatVersion, c.Script.FormatTag)
	}
	if c.Script.HostKernel == "" {
		return fmt.Errorf("script.host_kernel cannot be empty")
	}
	if c.Markup.Language == "" || c.Markup.Kernel == "" {
		return fmt.Errorf("markup.language and markup.kernel cannot be empty")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
